package cpp

import "fmt"

// LexErrorKind classifies failures while scanning raw source text.
type LexErrorKind int

const (
	UnterminatedComment LexErrorKind = iota
	UnterminatedString
	UnterminatedChar
	InvalidConstant
	StrayCharacter
)

var lexErrorKindToStr = map[LexErrorKind]string{
	UnterminatedComment: "unterminated comment",
	UnterminatedString:  "unterminated string literal",
	UnterminatedChar:    "unterminated character literal",
	InvalidConstant:     "invalid numeric constant",
	StrayCharacter:      "stray character",
}

func (k LexErrorKind) String() string {
	s, ok := lexErrorKindToStr[k]
	if !ok {
		return "unknown lex error"
	}
	return s
}

// LexError is a scanning failure with the position it occurred at.
type LexError struct {
	Kind   LexErrorKind
	Pos    FilePos
	Detail string
}

func (e *LexError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at %s", e.Kind, e.Pos)
	}
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Detail, e.Pos)
}

// PreprocessErrorKind classifies failures while running directives
// and expanding macros.
type PreprocessErrorKind int

const (
	UnmatchedEndif PreprocessErrorKind = iota
	UnterminatedConditional
	ElifAfterElse
	ElseAfterElse
	MacroRecursionLimit
	MalformedDirective
	UnknownDirective
	MacroRedefinition
	BadIfExpression
	ErrorDirective
	BadInclude
)

var ppErrorKindToStr = map[PreprocessErrorKind]string{
	UnmatchedEndif:          "#endif without matching #if",
	UnterminatedConditional: "unterminated preprocessor conditional",
	ElifAfterElse:           "#elif after #else",
	ElseAfterElse:           "#else after #else",
	MacroRecursionLimit:     "macro expansion depth limit exceeded",
	MalformedDirective:      "malformed preprocessor directive",
	UnknownDirective:        "unknown preprocessor directive",
	MacroRedefinition:       "macro redefinition",
	BadIfExpression:         "bad #if expression",
	ErrorDirective:          "#error",
	BadInclude:              "bad #include",
}

func (k PreprocessErrorKind) String() string {
	s, ok := ppErrorKindToStr[k]
	if !ok {
		return "unknown preprocessor error"
	}
	return s
}

// PreprocessError is a directive or macro failure with the position
// it occurred at.
type PreprocessError struct {
	Kind   PreprocessErrorKind
	Pos    FilePos
	Detail string
}

func (e *PreprocessError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at %s", e.Kind, e.Pos)
	}
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Detail, e.Pos)
}

// PosOf returns the source position attached to err and true if it
// carries one. Used by callers printing diagnostics.
func PosOf(err error) (FilePos, bool) {
	switch e := err.(type) {
	case *LexError:
		return e.Pos, true
	case *PreprocessError:
		return e.Pos, true
	}
	type positioned interface {
		Position() FilePos
	}
	if e, ok := err.(positioned); ok {
		return e.Position(), true
	}
	return FilePos{}, false
}
