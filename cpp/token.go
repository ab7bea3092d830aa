package cpp

import (
	"fmt"
)

// The list of tokens.
const (

	// Single char tokens are themselves.
	ADD       TokenKind = '+'
	SUB       TokenKind = '-'
	MUL       TokenKind = '*'
	QUO       TokenKind = '/'
	REM       TokenKind = '%'
	AND       TokenKind = '&'
	OR        TokenKind = '|'
	XOR       TokenKind = '^'
	QUESTION  TokenKind = '?'
	HASH      TokenKind = '#'
	LSS       TokenKind = '<'
	GTR       TokenKind = '>'
	ASSIGN    TokenKind = '='
	NOT       TokenKind = '!'
	BNOT      TokenKind = '~'
	LPAREN    TokenKind = '('
	LBRACK    TokenKind = '['
	LBRACE    TokenKind = '{'
	COMMA     TokenKind = ','
	PERIOD    TokenKind = '.'
	RPAREN    TokenKind = ')'
	RBRACK    TokenKind = ']'
	RBRACE    TokenKind = '}'
	SEMICOLON TokenKind = ';'
	COLON     TokenKind = ':'

	ERROR TokenKind = 10000 + iota
	EOF
	// Preprocessor-only tokens.
	FUNCLIKE_DEFINE // Occurs after the ident in #define ident(
	DIRECTIVE       // #if #include etc
	END_DIRECTIVE   // The newline ending a directive
	HEADER          // <foo.h> or "foo.h" after #include
	// Identifiers and literal classes.
	TYPENAME       // Same as ident, but typedefed.
	IDENT          // main
	INT_CONSTANT   // 12345, 0x12ULL
	FLOAT_CONSTANT // 123.45f
	CHAR_CONSTANT  // 'a'
	STRING         // "abc"

	SHL        // <<
	SHR        // >>
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	QUO_ASSIGN // /=
	REM_ASSIGN // %=
	AND_ASSIGN // &=
	OR_ASSIGN  // |=
	XOR_ASSIGN // ^=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
	LAND       // &&
	LOR        // ||
	ARROW      // ->
	INC        // ++
	DEC        // --
	EQL        // ==
	NEQ        // !=
	LEQ        // <=
	GEQ        // >=
	ELLIPSIS   // ...

	// Keywords
	REGISTER
	EXTERN
	STATIC
	INLINE
	SHORT
	BREAK
	CASE
	DO
	CONST
	CONTINUE
	DEFAULT
	ELSE
	FOR
	WHILE
	GOTO
	IF
	RETURN
	STRUCT
	UNION
	VOLATILE
	SWITCH
	TYPEDEF
	SIZEOF
	VOID
	BOOL
	CHAR
	INT
	FLOAT
	DOUBLE
	SIGNED
	UNSIGNED
	LONG
)

var tokenKindToStr = [...]string{
	HASH:            "#",
	EOF:             "EOF",
	FUNCLIKE_DEFINE: "funclikedefine",
	DIRECTIVE:       "cppdirective",
	END_DIRECTIVE:   "enddirective",
	HEADER:          "header",
	CHAR_CONSTANT:   "charconst",
	INT_CONSTANT:    "intconst",
	FLOAT_CONSTANT:  "floatconst",
	TYPENAME:        "typename",
	IDENT:           "ident",
	VOID:            "void",
	BOOL:            "_Bool",
	INT:             "int",
	SHORT:           "short",
	LONG:            "long",
	SIGNED:          "signed",
	UNSIGNED:        "unsigned",
	FLOAT:           "float",
	DOUBLE:          "double",
	CHAR:            "char",
	STRING:          "string",
	ADD:             "'+'",
	SUB:             "'-'",
	MUL:             "'*'",
	QUO:             "'/'",
	REM:             "'%'",
	AND:             "'&'",
	OR:              "'|'",
	XOR:             "'^'",
	SHL:             "'<<'",
	SHR:             "'>>'",
	ADD_ASSIGN:      "'+='",
	SUB_ASSIGN:      "'-='",
	MUL_ASSIGN:      "'*='",
	QUO_ASSIGN:      "'/='",
	REM_ASSIGN:      "'%='",
	AND_ASSIGN:      "'&='",
	OR_ASSIGN:       "'|='",
	XOR_ASSIGN:      "'^='",
	SHL_ASSIGN:      "'<<='",
	SHR_ASSIGN:      "'>>='",
	LAND:            "'&&'",
	LOR:             "'||'",
	ARROW:           "'->'",
	INC:             "'++'",
	DEC:             "'--'",
	EQL:             "'=='",
	LSS:             "'<'",
	GTR:             "'>'",
	ASSIGN:          "'='",
	NOT:             "'!'",
	BNOT:            "'~'",
	NEQ:             "'!='",
	LEQ:             "'<='",
	GEQ:             "'>='",
	ELLIPSIS:        "'...'",
	LPAREN:          "'('",
	LBRACK:          "'['",
	LBRACE:          "'{'",
	COMMA:           "','",
	PERIOD:          "'.'",
	RPAREN:          "')'",
	RBRACK:          "']'",
	RBRACE:          "'}'",
	SEMICOLON:       "';'",
	COLON:           "':'",
	QUESTION:        "'?'",
	SIZEOF:          "sizeof",
	TYPEDEF:         "typedef",
	BREAK:           "break",
	CASE:            "case",
	CONST:           "const",
	VOLATILE:        "volatile",
	CONTINUE:        "continue",
	DEFAULT:         "default",
	ELSE:            "else",
	FOR:             "for",
	DO:              "do",
	WHILE:           "while",
	GOTO:            "goto",
	IF:              "if",
	RETURN:          "return",
	STRUCT:          "struct",
	UNION:           "union",
	SWITCH:          "switch",
	STATIC:          "static",
	EXTERN:          "extern",
	REGISTER:        "register",
	INLINE:          "inline",
}

var keywordLUT = map[string]TokenKind{
	"for":      FOR,
	"while":    WHILE,
	"do":       DO,
	"if":       IF,
	"else":     ELSE,
	"goto":     GOTO,
	"break":    BREAK,
	"continue": CONTINUE,
	"case":     CASE,
	"default":  DEFAULT,
	"switch":   SWITCH,
	"struct":   STRUCT,
	"union":    UNION,
	"signed":   SIGNED,
	"unsigned": UNSIGNED,
	"typedef":  TYPEDEF,
	"return":   RETURN,
	"void":     VOID,
	"_Bool":    BOOL,
	"char":     CHAR,
	"int":      INT,
	"short":    SHORT,
	"long":     LONG,
	"float":    FLOAT,
	"double":   DOUBLE,
	"sizeof":   SIZEOF,
	"static":   STATIC,
	"extern":   EXTERN,
	"register": REGISTER,
	"inline":   INLINE,
	"const":    CONST,
	"volatile": VOLATILE,
}

type TokenKind uint32

func (tk TokenKind) String() string {
	if uint32(tk) >= uint32(len(tokenKindToStr)) {
		return "Unknown"
	}
	ret := tokenKindToStr[tk]
	if ret == "" {
		return "Unknown"
	}
	return ret
}

// FilePos is a position inside a source buffer.
// Off is the byte offset from the start of the buffer.
type FilePos struct {
	File string
	Line int
	Col  int
	Off  int
}

func (pos FilePos) String() string {
	return fmt.Sprintf("%s:%d:%d", pos.File, pos.Line, pos.Col)
}

// Token represents a grouping of characters
// that provide semantic meaning in a C program.
// It is immutable once produced.
type Token struct {
	Kind             TokenKind
	Val              string
	Pos              FilePos
	WasMacroExpanded bool
	hs               *hideset
}

func (t *Token) copy() *Token {
	ret := *t
	return &ret
}

func (t Token) String() string {
	if t.WasMacroExpanded {
		return fmt.Sprintf("%s expanded from macro at %s", t.Val, t.Pos)
	}
	return fmt.Sprintf("%s at %s", t.Val, t.Pos)
}
