package builtins

import (
	"path/filepath"
	"testing"

	"github.com/mcgru/gulfmex/internal/value"
)

func testContext() *value.Context {
	return &value.Context{
		Exit:  func(int) {},
		Sleep: func(float64) {},
	}
}

func TestRootFlattensMathBuiltinsAtTopLevel(t *testing.T) {
	root := Root()
	fn, ok := root["sqrt"].(value.BuiltinFunction)
	if !ok {
		t.Fatalf(`Root()["sqrt"] = %T, want a top-level value.BuiltinFunction (not a member of a "math" namespace)`, root["sqrt"])
	}
	got, err := fn.Fn(testContext(), []value.Value{value.Number{V: 4}})
	if err != nil {
		t.Fatalf("sqrt(4) error: %v", err)
	}
	if got.(value.Number).V != 2 {
		t.Fatalf("sqrt(4) = %v, want 2", got.Inspect())
	}
	if _, ok := root["math"]; ok {
		t.Fatal(`Root() must not bind a "math" namespace object once math names are flattened`)
	}
}

func TestUseReturnsSetterGetterCell(t *testing.T) {
	cellFn, err := builtinUse(testContext(), []value.Value{value.Number{V: 1}})
	if err != nil {
		t.Fatalf("use(1) error: %v", err)
	}
	setter, ok := cellFn.(value.BuiltinFunction)
	if !ok {
		t.Fatalf("use(1) = %T, want a callable value.BuiltinFunction", cellFn)
	}

	got, err := setter.Fn(testContext(), []value.Value{value.Blank{}})
	if err != nil {
		t.Fatalf("reading cell error: %v", err)
	}
	if got.(value.Number).V != 1 {
		t.Fatalf("cell(BlankSpecial) = %v, want 1 (the initial value)", got.Inspect())
	}

	if _, err := setter.Fn(testContext(), []value.Value{value.Number{V: 9}}); err != nil {
		t.Fatalf("writing cell error: %v", err)
	}

	got, err = setter.Fn(testContext(), []value.Value{value.Blank{}})
	if err != nil {
		t.Fatalf("reading cell after write error: %v", err)
	}
	if got.(value.Number).V != 9 {
		t.Fatalf("cell(BlankSpecial) after write = %v, want 9", got.Inspect())
	}
}

func TestReadWriteRoundTripThroughFilesystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	if _, err := builtinWrite(testContext(), []value.Value{value.NewStr(path), value.NewStr("hello")}); err != nil {
		t.Fatalf("write error: %v", err)
	}

	got, err := builtinRead(testContext(), []value.Value{value.NewStr(path)})
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(got.(value.Str).Runes) != "hello" {
		t.Fatalf("read(write(path, %q)) = %q, want %q", "hello", got.Inspect(), "hello")
	}
}

func TestRegexBuiltinsTakeCommaJoinedArgument(t *testing.T) {
	matched, err := builtinRegexMatch(testContext(), []value.Value{value.NewStr("a+,baaab")})
	if err != nil {
		t.Fatalf("regex_match error: %v", err)
	}
	if !matched.(value.Boolean).IsTrue() {
		t.Fatalf("regex_match(%q) = %v, want true", "a+,baaab", matched.Inspect())
	}

	found, err := builtinRegexFindAll(testContext(), []value.Value{value.NewStr("a+,baaab caa")})
	if err != nil {
		t.Fatalf("regex_findall error: %v", err)
	}
	list, ok := found.(*value.List)
	if !ok || len(list.Elements) != 2 {
		t.Fatalf("regex_findall(%q) = %v, want a 2-element list", "a+,baaab caa", found.Inspect())
	}

	replaced, err := builtinRegexReplace(testContext(), []value.Value{value.NewStr("a+,X,baaab")})
	if err != nil {
		t.Fatalf("regex_replace error: %v", err)
	}
	if string(replaced.(value.Str).Runes) != "bXb" {
		t.Fatalf("regex_replace(%q) = %q, want %q", "a+,X,baaab", replaced.Inspect(), "bXb")
	}
}
