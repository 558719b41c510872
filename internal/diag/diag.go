// Package diag provides the structured diagnostics buffer used by the
// semantic analyzer. Diagnostics are accumulated, never thrown: the
// analyzer keeps visiting the tree after recording one so that a single
// run surfaces as many problems as possible, substituting types.Unknown
// wherever a resolution failed.
package diag

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Span locates a diagnostic in the original source text.
type Span struct {
	Line int // 1-based line number.
	Col  int // 1-based column number.
}

// Code differentiates the kinds of diagnostics this compiler can emit.
// The taxonomy matches the one named in the specification verbatim;
// DivisionByZero is kept for completeness even though nothing raises it.
type Code int

const (
	RedefinitionOfType Code = iota
	RedefinitionOfFunction
	RedefinitionOfVariable
	UndefinedIdentifier
	UndeclaredFunction
	UndefinedType
	ParamNameAlreadyExist

	CycleDetected

	InvalidArgumentsCount
	InvalidTypeArgumentCount

	InvalidTypeArgument
	InvalidFunctionReturn
	InvalidBinaryOperation
	InvalidUnaryOperation
	InvalidConditionType
	InvalidIterable
	InvalidPrint

	InvalidTypeFunctionAccess
	InvalidTypePropertyAccess
	InvalidTypeProperty

	DivisionByZero
	UnknownError
)

var codeNames = [...]string{
	"RedefinitionOfType",
	"RedefinitionOfFunction",
	"RedefinitionOfVariable",
	"UndefinedIdentifier",
	"UndeclaredFunction",
	"UndefinedType",
	"ParamNameAlreadyExist",
	"CycleDetected",
	"InvalidArgumentsCount",
	"InvalidTypeArgumentCount",
	"InvalidTypeArgument",
	"InvalidFunctionReturn",
	"InvalidBinaryOperation",
	"InvalidUnaryOperation",
	"InvalidConditionType",
	"InvalidIterable",
	"InvalidPrint",
	"InvalidTypeFunctionAccess",
	"InvalidTypePropertyAccess",
	"InvalidTypeProperty",
	"DivisionByZero",
	"UnknownError",
}

// String returns the print friendly name of the diagnostic Code c.
func (c Code) String() string {
	if int(c) < 0 || int(c) >= len(codeNames) {
		return "UnknownCode"
	}
	return codeNames[c]
}

// Diagnostic is a single accumulated error report, tagged with the Code
// that produced it and the message describing the specific occurrence.
type Diagnostic struct {
	Code Code
	Msg  string
	At   Span
}

// New constructs a Diagnostic at span sp with code c, formatting Msg from
// format and args the same way fmt.Sprintf would.
func New(c Code, sp Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: c, Msg: fmt.Sprintf(format, args...), At: sp}
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped anywhere Go code expects one, even though the analyzer itself
// never short-circuits on it.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at line %d:%d: %s", d.Code, d.At.Line, d.At.Col, d.Msg)
}

// Report renders d against the original source src, producing a single
// multi-line, 1-based line/column report with the offending source line
// and a caret column marker. color enables ANSI red/reset escapes around
// the whole report.
//
// Grounded on the original compiler's SemanticError::report /
// get_line_context / build_caret_point (semantic_analyzer/semantic_errors.rs),
// translated from byte offsets into the Span's line/col representation.
func (d Diagnostic) Report(src string, color bool) string {
	line := sourceLine(src, d.At.Line)
	caret := strings.Repeat(" ", max(d.At.Col-1, 0)) + "^"
	body := fmt.Sprintf("Error (line %d, column %d): %s\n  %s\n  %s",
		d.At.Line, d.At.Col, d.Msg, line, caret)
	if !color {
		return body
	}
	return "\x1b[31m" + body + "\x1b[0m"
}

// sourceLine returns the 1-based nth line of src, or an empty string if
// src has fewer than n lines.
func sourceLine(src string, n int) string {
	if n < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if n-1 >= len(lines) {
		return ""
	}
	return lines[n-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ----------------------
// ----- functions ------
// ----------------------

// Bag is an append-only collection of diagnostics. The zero value is a
// usable, empty Bag.
type Bag struct {
	items []Diagnostic
}

// Add appends a new diagnostic to the bag.
func (b *Bag) Add(c Code, sp Span, format string, args ...interface{}) {
	b.items = append(b.items, New(c, sp, format, args...))
}

// Len returns the number of accumulated diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Empty reports whether no diagnostics have been recorded.
func (b *Bag) Empty() bool {
	return len(b.items) == 0
}

// All returns the accumulated diagnostics in the order they were added.
func (b *Bag) All() []Diagnostic {
	return b.items
}
