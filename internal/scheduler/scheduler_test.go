package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/mcgru/gulfmex/internal/binding"
	"github.com/mcgru/gulfmex/internal/value"
)

func TestRunReturnsMainFrameResult(t *testing.T) {
	s := New()
	result, err := s.Run(func(y *Yielder) (value.Value, error) {
		return value.Number{V: 42}, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.(value.Number).V != 42 {
		t.Fatalf("Run() result = %v, want 42", result.Inspect())
	}
}

// TestAwaitSuspendsUntilResolved drives two frames by hand: the awaiter
// (spawned and ticked first, so it parks itself in the waiter list) and the
// resolver (spawned and ticked second). The resolver's own post-body tick,
// fired automatically by Spawn's wrapper, is what wakes the awaiter back up
// -- nothing in the test re-ticks it directly.
func TestAwaitSuspendsUntilResolved(t *testing.T) {
	s := New()
	defer s.Stop()
	p := &value.Promise{}
	done := make(chan error, 1)

	s.Spawn(func(y *Yielder) {
		v, err := y.Await(p)
		if err == nil {
			if n, ok := v.(value.Number); !ok || n.V != 7 {
				err = fmt.Errorf("Await() = %v, want 7", v.Inspect())
			}
		}
		done <- err
	})
	s.tick()

	s.Spawn(func(y *Yielder) {
		s.Resolve(p, value.Number{V: 7}, nil)
	})
	s.tick()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the awaiter frame to resume")
	}
}

func TestResolveSettlesOnlyOnce(t *testing.T) {
	s := New()
	defer s.Stop()
	p := &value.Promise{}

	s.Resolve(p, value.Number{V: 1}, nil)
	s.Resolve(p, value.Number{V: 2}, nil)

	if !p.Resolved {
		t.Fatal("promise should be resolved")
	}
	if p.Value.(value.Number).V != 1 {
		t.Fatalf("second Resolve must be a no-op, got value %v", p.Value.Inspect())
	}
}

func TestRecordWriteFiresDependentWatcherOnce(t *testing.T) {
	s := New()
	defer s.Stop()
	v := &binding.Variable{Name: "x"}

	fireCount := 0
	w := &Watcher{
		ID:   uuidForTest(1),
		Deps: map[*binding.Variable]bool{v: true},
		Body: func(y *Yielder) { fireCount++ },
	}
	s.RegisterWatcher(w)

	s.RecordWrite(nil, v, value.Number{V: 1})
	if fireCount != 1 {
		t.Fatalf("fireCount after first write = %d, want 1", fireCount)
	}

	// A repeat write of the identical value is not a "change" (spec.md
	// §4.5: watchers fire on value changes, by equality) and must not
	// refire the watcher.
	s.RecordWrite(nil, v, value.Number{V: 1})
	if fireCount != 1 {
		t.Fatalf("fireCount after a no-op repeat write = %d, want still 1", fireCount)
	}
}

func TestRecordWriteSkipsCancelledWatcher(t *testing.T) {
	s := New()
	defer s.Stop()
	v := &binding.Variable{Name: "x"}

	fired := false
	w := &Watcher{
		ID:   uuidForTest(2),
		Deps: map[*binding.Variable]bool{v: true},
		Body: func(y *Yielder) { fired = true },
	}
	s.RegisterWatcher(w)
	s.UnregisterWatcher(w.ID)

	s.RecordWrite(nil, v, value.Number{V: 1})

	if fired {
		t.Fatal("a cancelled watcher must not fire")
	}
}

func TestLineTimerFiresAfterDecrements(t *testing.T) {
	s := New()
	defer s.Stop()

	fired := make(chan struct{}, 1)
	s.RegisterLineTimer(2, func(y *Yielder) { fired <- struct{}{} })

	s.DecrementTimers()
	s.tick()
	select {
	case <-fired:
		t.Fatal("timer fired before its line budget reached zero")
	case <-time.After(50 * time.Millisecond):
	}

	s.DecrementTimers()
	s.tick()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired once its line budget reached zero")
	}
}

func TestCancelTimerPreventsFiring(t *testing.T) {
	s := New()
	defer s.Stop()

	fired := false
	id := s.RegisterLineTimer(1, func(y *Yielder) { fired = true })
	s.CancelTimer(id)
	s.DecrementTimers()
	s.tick()
	time.Sleep(50 * time.Millisecond)

	if fired {
		t.Fatal("a cancelled timer must not fire")
	}
}

// uuidForTest mints a distinct watcher id without importing google/uuid
// into this file; any distinct comparable value works as the map key
// Watcher.ID is used as.
func uuidForTest(n byte) (id [16]byte) {
	id[0] = n
	return id
}
