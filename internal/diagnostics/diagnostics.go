// Package diagnostics formats runtime errors with file/line/column context.
// Modeled directly on funxy's internal/diagnostics package (Phase,
// ErrorCode, DiagnosticError, the "[phase] error at L:C [CODE]: msg"
// format), with the error-kind set replaced by spec.md §7's list.
package diagnostics

import (
	"fmt"

	"github.com/mcgru/gulfmex/internal/token"
)

type Phase string

const (
	PhaseLexer   Phase = "lexer"
	PhaseParser  Phase = "parser"
	PhaseRuntime Phase = "runtime"
)

// Kind enumerates spec.md §7's error kinds.
type Kind string

const (
	LexSyntax           Kind = "LexSyntax"
	ParseSyntax         Kind = "ParseSyntax"
	TypeMismatch        Kind = "TypeMismatch"
	IndexOutOfBounds    Kind = "IndexOutOfBounds"
	UnassignedIndex     Kind = "UnassignedIndex"
	UndefinedVariable   Kind = "UndefinedVariable"
	UndeclaredAssignment Kind = "UndeclaredAssignment"
	ImmutableBinding    Kind = "ImmutableBinding"
	RedeclarationBlocked Kind = "RedeclarationBlocked"
	ArityMismatch       Kind = "ArityMismatch"
	InvalidRegex        Kind = "InvalidRegex"
	IO                  Kind = "IO"
	ConversionImpossible Kind = "ConversionImpossible"
	InternalInvariant   Kind = "InternalInvariant"
	KeyError            Kind = "KeyError"
)

// Error is a single-frame diagnostic: a kind, a source location, and a
// human message. It implements the standard `error` interface.
type Error struct {
	Kind    Kind
	Phase   Phase
	Message string
	File    string
	Token   token.Token
}

func (e *Error) Error() string {
	prefix := ""
	if e.File != "" {
		prefix = fmt.Sprintf("%s: ", e.File)
	}
	phaseStr := ""
	if e.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", e.Phase)
	}
	if e.Token.Line > 0 {
		return fmt.Sprintf("%s%serror at %d:%d [%s]: %s", prefix, phaseStr, e.Token.Line, e.Token.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s%serror [%s]: %s", prefix, phaseStr, e.Kind, e.Message)
}

// New builds a runtime-phase diagnostic at tok's location.
func New(kind Kind, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Phase:   PhaseRuntime,
		Message: fmt.Sprintf(format, args...),
		Token:   tok,
	}
}

// NewPhase builds a diagnostic tagged with an explicit phase (lexer/parser).
func NewPhase(phase Phase, kind Kind, tok token.Token, format string, args ...interface{}) *Error {
	e := New(kind, tok, format, args...)
	e.Phase = phase
	return e
}

// Caret renders the single-line e.Error() diagnostic followed
// by the offending source line and a caret under the token, matching
// spec.md §7's "single-line diagnostic ... with a caret under the
// offending token" requirement. Caller supplies the full source so the
// line can be sliced out; sourceLines may be nil, in which case only the
// header line is returned.
func Caret(e *Error, sourceLines []string) string {
	header := e.Error()
	if sourceLines == nil || e.Token.Line < 1 || e.Token.Line > len(sourceLines) {
		return header
	}
	line := sourceLines[e.Token.Line-1]
	col := e.Token.Column
	if col < 1 {
		col = 1
	}
	caretLine := ""
	for i := 1; i < col; i++ {
		if i-1 < len(line) && line[i-1] == '\t' {
			caretLine += "\t"
		} else {
			caretLine += " "
		}
	}
	caretLine += "^"
	return fmt.Sprintf("%s\n%s\n%s", header, line, caretLine)
}
