package pipeline_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/pipeline"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	ctx := pipeline.New(source, "", &out, nil)
	_, err := ctx.Run()
	if len(ctx.Errors) > 0 {
		t.Fatalf("parse errors for %q: %v", source, ctx.Errors)
	}
	return out.String(), err
}

func TestNumberDigitMutation(t *testing.T) {
	out, err := run(t, `var var n = 123! n[0] = 9! print n!`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if strings.TrimRight(out, "\n") != "193" {
		t.Fatalf("stdout = %q, want %q", out, "193")
	}
}

func TestFractionalListInsert(t *testing.T) {
	out, err := run(t, `var var xs = [1, 2, 3]! xs[0.5] = 9! print xs[0.5]! print xs[0]!`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	got := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{"9", "2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("stdout lines = %v, want %v", got, want)
	}
}

func TestConfidenceRankedRedeclaration(t *testing.T) {
	out, err := run(t, `const const x = 1? const const x = 2! print x!`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if strings.TrimRight(out, "\n") != "1" {
		t.Fatalf("stdout = %q, want %q (the lower-confidence declaration must stay head)", out, "1")
	}
}

func TestWhenWatcherFiresExactlyOnce(t *testing.T) {
	out, err := run(t, `var var c = 0! when c == 3 { print "hit"! }! c = 1! c = 3! c = 3! c = 4!`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if strings.TrimRight(out, "\n") != "hit" {
		t.Fatalf("stdout = %q, want exactly one %q (repeat writes of the same value must not refire the watcher)", out, "hit")
	}
}

func TestAsyncAwaitReturnsPromiseValue(t *testing.T) {
	out, err := run(t, `async function slow() { sleep 0! return 42! }! const const p = slow()! print (await p)!`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if strings.TrimRight(out, "\n") != "42" {
		t.Fatalf("stdout = %q, want %q", out, "42")
	}
}

func TestMaybeConditionalRunsBothBranches(t *testing.T) {
	out, err := run(t, `if maybe { print "then"! } else { print "else"! }!`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	got := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{"then", "else"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("stdout lines = %v, want %v (a maybe condition must run then and then else)", got, want)
	}
}

func TestTemporalLifetimeExpiresBeforeRead(t *testing.T) {
	out, err := run(t, `const const<"50ms"> g = "hi"! sleep 0.2! print g!`)
	if err == nil {
		t.Fatalf("expected an UndefinedVariable error once g's temporal lifetime expires, got none (stdout: %q)", out)
	}
	dErr, ok := err.(*diagnostics.Error)
	if !ok {
		t.Fatalf("error type = %T, want *diagnostics.Error", err)
	}
	if dErr.Kind != diagnostics.UndefinedVariable {
		t.Fatalf("error kind = %v, want %v", dErr.Kind, diagnostics.UndefinedVariable)
	}
}
