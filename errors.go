// errors.go: engine error kinds and caret-snippet rendering.
//
// Two things live here. First, *EngineError, the closed set of failures the
// evaluator can produce; every one of them is terminal for the current
// ExecuteSource call. Second, WrapErrorWithSource, which turns lexer/parser
// diagnostics into readable snippets with a caret pointing at the offending
// column:
//
//	PARSE ERROR at 1:9: expected expression, got ';'
//
//	   1 | let x = ;
//	       |        ^
//
// Engine errors carry no source position (they are all name- or
// operator-shaped) and pass through unchanged.
package jslet

import (
	"fmt"
	"strings"
)

// EngineErrorKind discriminates the evaluator's failure conditions.
type EngineErrorKind int

const (
	ErrIdentifierNotFound EngineErrorKind = iota
	ErrInvalidAssignmentTarget
	ErrDuplicateBinding
	ErrUnsupportedOperator
	ErrNestingTooDeep
)

// EngineError is a terminal evaluation failure. The engine never catches or
// retries one; the first error aborts the run and reaches the caller as-is.
type EngineError struct {
	Kind EngineErrorKind
	Msg  string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR: %s", e.Msg)
}

func identifierNotFound(name string) *EngineError {
	return &EngineError{Kind: ErrIdentifierNotFound, Msg: fmt.Sprintf("no variable %s found in the scope", name)}
}

func invalidAssignmentTarget(target Expression) *EngineError {
	return &EngineError{Kind: ErrInvalidAssignmentTarget, Msg: fmt.Sprintf("expected identifier in assignment, got: %s", target.String())}
}

// duplicateBinding wraps the error Scope.Define produced; the message is
// owned by the scope, only the kind is attached here.
func duplicateBinding(cause error) *EngineError {
	return &EngineError{Kind: ErrDuplicateBinding, Msg: cause.Error()}
}

func unsupportedOperator(op Operator) *EngineError {
	return &EngineError{Kind: ErrUnsupportedOperator, Msg: fmt.Sprintf("unsupported binary operator: %s", op.Lexeme)}
}

func nestingTooDeep() *EngineError {
	return &EngineError{Kind: ErrNestingTooDeep, Msg: "expression nesting exceeds the evaluation depth limit"}
}

// WrapErrorWithSource returns err augmented with a caret-annotated snippet
// of src. It recognizes *LexError and *ParseError; any other error is
// returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with an optional source name
// ("repl", a file path) included in the header line.
func WrapErrorWithName(err error, srcName, src string) error {
	switch e := err.(type) {
	case *LexError:
		// Lexer cols are 0-based; render 1-based.
		return fmt.Errorf("%s", caretSnippet(src, "LEXICAL ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", caretSnippet(src, "PARSE ERROR", srcName, e.Line, e.Col+1, e.Msg))
	default:
		return err
	}
}

// caretSnippet builds the header plus up to one line of context on each
// side, with the caret under the 1-based column. Coordinates are clamped so
// out-of-range positions never break rendering.
func caretSnippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
