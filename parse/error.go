package parse

import (
	"fmt"

	"github.com/Imperatorn/ctod/cpp"
)

// ParseErrorKind classifies declaration parsing failures.
type ParseErrorKind int

const (
	UnexpectedToken ParseErrorKind = iota
	UnbalancedParens
	MissingSemicolon
	ConflictingSpecifiers
	BadArrayBound
)

var parseErrorKindToStr = map[ParseErrorKind]string{
	UnexpectedToken:       "unexpected token",
	UnbalancedParens:      "unbalanced parentheses",
	MissingSemicolon:      "missing semicolon",
	ConflictingSpecifiers: "conflicting declaration specifiers",
	BadArrayBound:         "bad array bound",
}

func (k ParseErrorKind) String() string {
	s, ok := parseErrorKindToStr[k]
	if !ok {
		return "unknown parse error"
	}
	return s
}

// ParseError is a syntax failure with the position it occurred at.
type ParseError struct {
	Kind   ParseErrorKind
	Pos    cpp.FilePos
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("syntax error: %s at %s", e.Kind, e.Pos)
	}
	return fmt.Sprintf("syntax error: %s: %s at %s", e.Kind, e.Detail, e.Pos)
}

// Position returns the source position of the error. It is picked up
// by cpp.PosOf for diagnostics.
func (e *ParseError) Position() cpp.FilePos {
	return e.Pos
}
