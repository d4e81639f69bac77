package binding

import (
	"testing"
	"time"

	"github.com/mcgru/gulfmex/internal/value"
)

func lt(v value.Value, confidence, linesLeft int) VariableLifetime {
	return VariableLifetime{
		Value: v, Confidence: confidence, LinesLeft: linesLeft,
		CanBeReset: true, CanEditValue: true, CreatedAt: time.Now(),
	}
}

func TestAddLifetimeOrdersByConfidence(t *testing.T) {
	v := &Variable{Name: "x"}
	v.AddLifetime(lt(value.Number{V: 1}, 5, 100))
	v.AddLifetime(lt(value.Number{V: 2}, 10, 100))
	v.AddLifetime(lt(value.Number{V: 3}, 1, 100))

	want := []float64{3, 1, 2}
	for i, w := range want {
		got := v.Lifetimes[i].Value.(value.Number).V
		if got != w {
			t.Fatalf("Lifetimes[%d] = %v, want %v (order: %v)", i, got, w, v.Lifetimes)
		}
	}
}

func TestAddLifetimeEqualConfidenceNewerWinsHead(t *testing.T) {
	v := &Variable{Name: "x"}
	v.AddLifetime(lt(value.Number{V: 1}, 5, 100))
	v.AddLifetime(lt(value.Number{V: 2}, 5, 100))

	head, ok := v.Head()
	if !ok {
		t.Fatal("expected a head lifetime")
	}
	if head.Value.(value.Number).V != 2 {
		t.Fatalf("head = %v, want the newer same-confidence value (2)", head.Value.Inspect())
	}
	if len(v.History) != 1 || v.History[0].(value.Number).V != 1 {
		t.Fatalf("expected the displaced head to be pushed to History, got %v", v.History)
	}
}

func TestAddLifetimeLowerConfidenceDoesNotDisplaceHead(t *testing.T) {
	v := &Variable{Name: "x"}
	v.AddLifetime(lt(value.Number{V: 1}, 5, 100))
	v.AddLifetime(lt(value.Number{V: 2}, 10, 100))

	head, _ := v.Head()
	if head.Value.(value.Number).V != 1 {
		t.Fatalf("head = %v, want 1 (lower confidence must stay head)", head.Value.Inspect())
	}
	if len(v.History) != 0 {
		t.Fatalf("head was never displaced, History should stay empty, got %v", v.History)
	}
}

func TestClearOutdatedRemovesExpiredLifetimesOnly(t *testing.T) {
	v := &Variable{Name: "x"}
	v.AddLifetime(lt(value.Number{V: 1}, 0, 0))  // already expired
	v.AddLifetime(lt(value.Number{V: 2}, 1, 100)) // alive

	emptied := v.ClearOutdated(time.Now())
	if emptied {
		t.Fatal("variable still has a live lifetime, should not report emptied")
	}
	if len(v.Lifetimes) != 1 || v.Lifetimes[0].Value.(value.Number).V != 2 {
		t.Fatalf("expected only the live lifetime to remain, got %v", v.Lifetimes)
	}
}

func TestClearOutdatedReportsEmptiedWhenAllExpire(t *testing.T) {
	v := &Variable{Name: "x"}
	v.AddLifetime(lt(value.Number{V: 1}, 0, 0))

	if !v.ClearOutdated(time.Now()) {
		t.Fatal("expected ClearOutdated to report the variable as emptied")
	}
}

func TestTemporalLifetimeExpiresByDuration(t *testing.T) {
	v := &Variable{Name: "x"}
	v.AddLifetime(VariableLifetime{
		Value: value.Number{V: 1}, Confidence: 0, LinesLeft: 100,
		IsTemporal: true, TemporalDuration: time.Millisecond, CreatedAt: time.Now().Add(-time.Second),
	})

	if !v.ClearOutdated(time.Now()) {
		t.Fatal("expected the temporal lifetime to have expired by wall-clock duration")
	}
}

func TestDecrementLinesNeverGoesNegative(t *testing.T) {
	v := &Variable{Name: "x"}
	v.AddLifetime(lt(value.Number{V: 1}, 0, 1))

	v.DecrementLines()
	v.DecrementLines()

	if v.Lifetimes[0].LinesLeft != 0 {
		t.Fatalf("LinesLeft = %d, want 0 (should clamp, not go negative)", v.Lifetimes[0].LinesLeft)
	}
}

func TestReadUndefinedVariable(t *testing.T) {
	v := &Variable{Name: "x"}
	if _, err := v.Read(); err != ErrUndefinedVariable {
		t.Fatalf("Read() on empty Variable error = %v, want ErrUndefinedVariable", err)
	}
}
