// Package builtins implements spec.md §6's builtin table: print, read,
// write, sleep, exit, Map(), Boolean/Number/String(v), use(initial), the
// regex_* family, new(v), current(v), the math module names, and the
// number-word constants zero through ninety. Grounded on funxy's
// internal/evaluator/builtins.go (`var Builtins = map[string]*Builtin{...}`)
// and its per-concern builtins_math.go / builtins_regex.go split.
package builtins

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mcgru/gulfmex/internal/config"
	"github.com/mcgru/gulfmex/internal/value"
)

// Builtin pairs a callable with the metadata internal/namespace's root
// scope needs to bind it as a Name.
type Builtin struct {
	Name  string
	Arity int // -1 means variadic
	Fn    func(ctx *value.Context, args []value.Value) (value.Value, error)
}

func asBuiltinFunction(b *Builtin) value.BuiltinFunction {
	return value.BuiltinFunction{Name: b.Name, Arity: b.Arity, Fn: b.Fn}
}

// Root returns every global builtin's Name -> Value binding for seeding the
// program's root namespace, the way internal/evaluator.Builtins seeds
// funxy's global environment.
func Root() map[string]value.Value {
	out := make(map[string]value.Value)
	for name, b := range table {
		out[name] = asBuiltinFunction(b)
	}
	for i, name := range config.NumberWordsZeroToNineteen {
		out[name] = value.Number{V: float64(i)}
	}
	for i, name := range config.NumberWordsTens {
		tens := float64(20 + 10*i)
		out[name] = value.BuiltinFunction{
			Name: name, Arity: 1,
			Fn: func(ctx *value.Context, args []value.Value) (value.Value, error) {
				n, err := value.ToNumber(args[0])
				if err != nil {
					return nil, err
				}
				return value.Number{V: tens + n.V}, nil
			},
		}
	}
	for name, b := range MathBuiltins() {
		out[name] = asBuiltinFunction(b)
	}
	out["true"] = value.True()
	out["false"] = value.False()
	out["maybe"] = value.MaybeV()
	out["undefined"] = value.Undefined{}
	out[""] = value.Blank{}
	out["previous"] = value.Keyword{Name: "previous"}
	out["next"] = value.Keyword{Name: "next"}
	return out
}

var table = map[string]*Builtin{
	"print":   {Name: "print", Arity: -1, Fn: builtinPrint},
	"read":    {Name: "read", Arity: 1, Fn: builtinRead},
	"write":   {Name: "write", Arity: 2, Fn: builtinWrite},
	"sleep":   {Name: "sleep", Arity: 1, Fn: builtinSleep},
	"exit":    {Name: "exit", Arity: -1, Fn: builtinExit},
	"Map":     {Name: "Map", Arity: 0, Fn: builtinMap},
	"Boolean": {Name: "Boolean", Arity: 1, Fn: builtinBoolean},
	"Number":  {Name: "Number", Arity: 1, Fn: builtinNumber},
	"String":  {Name: "String", Arity: 1, Fn: builtinString},
	"use":     {Name: "use", Arity: 1, Fn: builtinUse},
	"signal":  {Name: "signal", Arity: 1, Fn: builtinUse},
	"new":     {Name: "new", Arity: 1, Fn: builtinNew},
	"current": {Name: "current", Arity: 1, Fn: builtinCurrent},

	"regex_match":   {Name: "regex_match", Arity: 1, Fn: builtinRegexMatch},
	"regex_findall": {Name: "regex_findall", Arity: 1, Fn: builtinRegexFindAll},
	"regex_replace": {Name: "regex_replace", Arity: 1, Fn: builtinRegexReplace},
}

func builtinPrint(ctx *value.Context, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = string(value.ToString(a).Runes)
	}
	fmt.Fprintln(ctx.Stdout, strings.Join(parts, " "))
	return value.Undefined{}, nil
}

func builtinWrite(ctx *value.Context, args []value.Value) (value.Value, error) {
	path, ok := args[0].(value.Str)
	if !ok {
		return nil, value.ErrTypeMismatch
	}
	content := string(value.ToString(args[1]).Runes)
	if err := os.WriteFile(string(path.Runes), []byte(content), 0o644); err != nil {
		return nil, err
	}
	return value.Undefined{}, nil
}

func builtinRead(ctx *value.Context, args []value.Value) (value.Value, error) {
	path, ok := args[0].(value.Str)
	if !ok {
		return nil, value.ErrTypeMismatch
	}
	contents, err := os.ReadFile(string(path.Runes))
	if err != nil {
		return nil, err
	}
	return value.NewStr(string(contents)), nil
}

func builtinSleep(ctx *value.Context, args []value.Value) (value.Value, error) {
	n, err := value.ToNumber(args[0])
	if err != nil {
		return nil, err
	}
	// sleep's argument is a count of seconds; Context.Sleep's contract is
	// milliseconds.
	ctx.Sleep(n.V * 1000)
	return value.Undefined{}, nil
}

func builtinExit(ctx *value.Context, args []value.Value) (value.Value, error) {
	code := 0
	if len(args) > 0 {
		if n, err := value.ToNumber(args[0]); err == nil {
			code = int(n.V)
		}
	}
	ctx.Exit(code)
	return value.Undefined{}, nil
}

func builtinMap(ctx *value.Context, args []value.Value) (value.Value, error) {
	return value.NewMap(), nil
}

func builtinBoolean(ctx *value.Context, args []value.Value) (value.Value, error) {
	return value.ToBoolean(args[0]), nil
}

func builtinNumber(ctx *value.Context, args []value.Value) (value.Value, error) {
	return value.ToNumber(args[0])
}

func builtinString(ctx *value.Context, args []value.Value) (value.Value, error) {
	return value.ToString(args[0]), nil
}

// builtinUse is spec.md §6's `use(initial)` (aliased as `signal`): it
// returns a callable setter-getter closing over a mutable cell, grounded on
// the original's db_signal. Calling the returned function with the blank
// marker (`""`) reads the cell's current value; calling it with anything
// else writes that value into the cell and returns nothing.
func builtinUse(ctx *value.Context, args []value.Value) (value.Value, error) {
	cell := args[0]
	fn := func(_ *value.Context, setterArgs []value.Value) (value.Value, error) {
		if _, isBlank := setterArgs[0].(value.Blank); isBlank {
			return cell, nil
		}
		cell = setterArgs[0]
		return value.Undefined{}, nil
	}
	return value.BuiltinFunction{Name: "signal", Arity: 1, Fn: fn}, nil
}

// builtinNew and builtinCurrent mirror use/read semantics for the watcher
// idiom `when (new(x) != current(x))`: both are pass-throughs at the value
// layer because the distinction only matters to R, which compares each
// write against the last value it recorded for that variable rather than
// asking the value itself.
func builtinNew(ctx *value.Context, args []value.Value) (value.Value, error) {
	return args[0], nil
}

func builtinCurrent(ctx *value.Context, args []value.Value) (value.Value, error) {
	return args[0], nil
}

func builtinRegexMatch(ctx *value.Context, args []value.Value) (value.Value, error) {
	parts := strings.SplitN(string(value.ToString(args[0]).Runes), ",", 2)
	if len(parts) != 2 {
		return nil, value.ErrTypeMismatch
	}
	pattern, subject := parts[0], parts[1]
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, value.ErrTypeMismatch
	}
	return value.ToBoolean(boolVal(re.MatchString(subject))), nil
}

func boolVal(b bool) value.Value {
	if b {
		return value.True()
	}
	return value.False()
}

func builtinRegexFindAll(ctx *value.Context, args []value.Value) (value.Value, error) {
	parts := strings.SplitN(string(value.ToString(args[0]).Runes), ",", 2)
	if len(parts) != 2 {
		return nil, value.ErrTypeMismatch
	}
	pattern, subject := parts[0], parts[1]
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, value.ErrTypeMismatch
	}
	matches := re.FindAllString(subject, -1)
	elems := make([]value.Value, len(matches))
	for i, m := range matches {
		elems[i] = value.NewStr(m)
	}
	return value.NewList(elems), nil
}

func builtinRegexReplace(ctx *value.Context, args []value.Value) (value.Value, error) {
	parts := strings.SplitN(string(value.ToString(args[0]).Runes), ",", 3)
	if len(parts) != 3 {
		return nil, value.ErrTypeMismatch
	}
	pattern, replacement, subject := parts[0], parts[1], parts[2]
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, value.ErrTypeMismatch
	}
	return value.NewStr(re.ReplaceAllString(subject, replacement)), nil
}
