// Package pipeline wires the lexer, parser, executor and scheduler into one
// runnable program, the way funxy's internal/pipeline.Pipeline/PipelineContext
// sequences LexerProcessor -> ParserProcessor -> analyzer -> backend. The
// Language has no static analyzer or bytecode backend, so the sequence
// collapses to parse-then-run, but the shape (a context built once up front
// and threaded through each stage, errors accumulated rather than panicking)
// is carried over unchanged.
package pipeline

import (
	"io"

	"github.com/mcgru/gulfmex/internal/builtins"
	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/executor"
	"github.com/mcgru/gulfmex/internal/lexer"
	"github.com/mcgru/gulfmex/internal/modules"
	"github.com/mcgru/gulfmex/internal/parser"
	"github.com/mcgru/gulfmex/internal/runtimestore"
	"github.com/mcgru/gulfmex/internal/scheduler"
	"github.com/mcgru/gulfmex/internal/value"
)

// Context holds the data threaded between a run's stages, modeled on funxy's
// PipelineContext: source in, diagnostics and a result value out.
type Context struct {
	SourceCode string
	FilePath   string

	Errors []*diagnostics.Error

	Stdout io.Writer
	Stdin  io.Reader

	// Store, when non-nil, persists and reloads global bindings across
	// runs (spec.md §6.4's .gulfmex_runtime file).
	Store *runtimestore.Store

	Result value.Value
}

// New builds a Context with the given source, wired to os.Stdout/os.Stdin by
// the caller (normally cmd/gulfmex).
func New(source, filePath string, stdout io.Writer, stdin io.Reader) *Context {
	return &Context{
		SourceCode: source,
		FilePath:   filePath,
		Stdout:     stdout,
		Stdin:      stdin,
	}
}

// Run lexes, parses and executes the context's source code, returning the
// value of a top-level `return` statement (Undefined when the program has
// none) and any runtime error. Parse-time diagnostics are
// left on ctx.Errors rather than returned, mirroring funxy's
// "accumulate and report, don't stop at the first error" parser contract.
func (ctx *Context) Run() (value.Value, error) {
	l := lexer.New(ctx.SourceCode)
	p := parser.New(l)
	program := p.ParseProgram()
	ctx.Errors = append(ctx.Errors, p.Errors...)
	if len(ctx.Errors) > 0 {
		return nil, nil
	}

	exitCode := new(int)
	exitCalled := new(bool)

	vctx := &value.Context{
		Stdout: ctx.Stdout,
		Stdin:  ctx.Stdin,
		Exit: func(code int) {
			*exitCode = code
			*exitCalled = true
		},
	}

	sched := scheduler.New()
	mods := modules.NewRegistry()
	ex := executor.New(sched, vctx, mods)

	root := builtins.Root()
	if ctx.Store != nil {
		saved, err := ctx.Store.Load()
		if err == nil {
			for name, v := range saved {
				root[name] = v
			}
		}
	}
	ex.SeedRoot(root)

	result, err := ex.ExecuteProgram(program)
	ctx.Result = result

	if ctx.Store != nil {
		_ = ctx.Store.Save(ex.GlobalSnapshot())
	}

	if *exitCalled {
		return result, &ExitError{Code: *exitCode}
	}
	return result, err
}

// ExitError signals that the program called `exit(code)`; cmd/gulfmex
// translates it into the process's own os.Exit rather than treating it as a
// runtime failure to report.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return "program requested exit" }
