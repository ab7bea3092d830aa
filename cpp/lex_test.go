package cpp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []*Token {
	t.Helper()
	lx := Lex("lex_test.c", strings.NewReader(src))
	var toks []*Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func lexUntilError(t *testing.T, src string) error {
	t.Helper()
	lx := Lex("lex_test.c", strings.NewReader(src))
	for {
		tok, err := lx.Next()
		if err != nil {
			return err
		}
		if tok.Kind == EOF {
			return nil
		}
	}
}

func kindsOf(toks []*Token) []TokenKind {
	ret := make([]TokenKind, len(toks))
	for i, t := range toks {
		ret[i] = t.Kind
	}
	return ret
}

func TestLexTokenKinds(t *testing.T) {
	testCases := []struct {
		src   string
		kinds []TokenKind
	}{
		{"int a = 5;", []TokenKind{INT, IDENT, ASSIGN, INT_CONSTANT, SEMICOLON}},
		{"a->b.c", []TokenKind{IDENT, ARROW, IDENT, PERIOD, IDENT}},
		{"x <<= 1; y >>= 2;", []TokenKind{IDENT, SHL_ASSIGN, INT_CONSTANT, SEMICOLON, IDENT, SHR_ASSIGN, INT_CONSTANT, SEMICOLON}},
		{"a<<b>>c<d>e<=f>=g", []TokenKind{IDENT, SHL, IDENT, SHR, IDENT, LSS, IDENT, GTR, IDENT, LEQ, IDENT, GEQ, IDENT}},
		{"a+++b", []TokenKind{IDENT, INC, ADD, IDENT}},
		{"a---b", []TokenKind{IDENT, DEC, SUB, IDENT}},
		{"a==b!=c&&d||e", []TokenKind{IDENT, EQL, IDENT, NEQ, IDENT, LAND, IDENT, LOR, IDENT}},
		{"a&b|c^d~e!f", []TokenKind{IDENT, AND, IDENT, OR, IDENT, XOR, IDENT, BNOT, IDENT, NOT, IDENT}},
		{"a+=b-=c*=d/=e%=f&=g|=h^=i", []TokenKind{IDENT, ADD_ASSIGN, IDENT, SUB_ASSIGN, IDENT, MUL_ASSIGN, IDENT, QUO_ASSIGN, IDENT, REM_ASSIGN, IDENT, AND_ASSIGN, IDENT, OR_ASSIGN, IDENT, XOR_ASSIGN, IDENT}},
		{"f(a, ...)", []TokenKind{IDENT, LPAREN, IDENT, COMMA, ELLIPSIS, RPAREN}},
		{"a ? b : c", []TokenKind{IDENT, QUESTION, IDENT, COLON, IDENT}},
		{"while (1) { break; }", []TokenKind{WHILE, LPAREN, INT_CONSTANT, RPAREN, LBRACE, BREAK, SEMICOLON, RBRACE}},
		{"static register int _Bool_ish;", []TokenKind{STATIC, REGISTER, INT, IDENT, SEMICOLON}},
		{"_Bool b;", []TokenKind{BOOL, IDENT, SEMICOLON}},
		{"struct union typedef sizeof", []TokenKind{STRUCT, UNION, TYPEDEF, SIZEOF}},
		{"'a' \"abc\"", []TokenKind{CHAR_CONSTANT, STRING}},
		{"/* comment */ a // line\nb", []TokenKind{IDENT, IDENT}},
		{"a[3]", []TokenKind{IDENT, LBRACK, INT_CONSTANT, RBRACK}},
	}
	for _, tc := range testCases {
		toks := lexAll(t, tc.src)
		assert.Equal(t, tc.kinds, kindsOf(toks), "src: %s", tc.src)
	}
}

func TestLexConstants(t *testing.T) {
	testCases := []struct {
		src  string
		kind TokenKind
		val  string
	}{
		{"0", INT_CONSTANT, "0"},
		{"017", INT_CONSTANT, "017"},
		{"42", INT_CONSTANT, "42"},
		{"0x1f", INT_CONSTANT, "0x1f"},
		{"0xABCDEF", INT_CONSTANT, "0xABCDEF"},
		{"1u", INT_CONSTANT, "1u"},
		{"1UL", INT_CONSTANT, "1UL"},
		{"0x12ULL", INT_CONSTANT, "0x12ULL"},
		{"123456789012345", INT_CONSTANT, "123456789012345"},
		{"1.5", FLOAT_CONSTANT, "1.5"},
		{".5", FLOAT_CONSTANT, ".5"},
		{"1.", FLOAT_CONSTANT, "1."},
		{"1e9", FLOAT_CONSTANT, "1e9"},
		{"1.5e-3", FLOAT_CONSTANT, "1.5e-3"},
		{"2E+10", FLOAT_CONSTANT, "2E+10"},
		{"1.5f", FLOAT_CONSTANT, "1.5f"},
		{"123.45L", FLOAT_CONSTANT, "123.45L"},
	}
	for _, tc := range testCases {
		toks := lexAll(t, tc.src)
		require.Len(t, toks, 1, "src: %s", tc.src)
		assert.Equal(t, tc.kind, toks[0].Kind, "src: %s", tc.src)
		assert.Equal(t, tc.val, toks[0].Val, "src: %s", tc.src)
	}
}

func TestLexStringsAndChars(t *testing.T) {
	toks := lexAll(t, `"hello \"world\"" 'x' '\n' '\''`)
	require.Len(t, toks, 4)
	assert.Equal(t, `"hello \"world\""`, toks[0].Val)
	assert.Equal(t, `'x'`, toks[1].Val)
	assert.Equal(t, `'\n'`, toks[2].Val)
	assert.Equal(t, `'\''`, toks[3].Val)
}

func TestLexDirectives(t *testing.T) {
	toks := lexAll(t, "#define FOO 1\n")
	require.Equal(t, []TokenKind{DIRECTIVE, IDENT, INT_CONSTANT, END_DIRECTIVE}, kindsOf(toks))
	assert.Equal(t, "define", toks[0].Val)
	assert.Equal(t, "FOO", toks[1].Val)

	toks = lexAll(t, "#define MAX(a, b) ((a) > (b) ? (a) : (b))\n")
	require.True(t, len(toks) > 4)
	assert.Equal(t, DIRECTIVE, toks[0].Kind)
	assert.Equal(t, IDENT, toks[1].Kind)
	assert.Equal(t, FUNCLIKE_DEFINE, toks[2].Kind)
	assert.Equal(t, LPAREN, toks[3].Kind)
	assert.Equal(t, END_DIRECTIVE, toks[len(toks)-1].Kind)

	// Whitespace before the paren makes it an object macro.
	toks = lexAll(t, "#define NOTFUNC (1)\n")
	require.Equal(t, []TokenKind{DIRECTIVE, IDENT, LPAREN, INT_CONSTANT, RPAREN, END_DIRECTIVE}, kindsOf(toks))

	toks = lexAll(t, "#include <stdio.h>\n")
	require.Equal(t, []TokenKind{DIRECTIVE, HEADER, END_DIRECTIVE}, kindsOf(toks))
	assert.Equal(t, "<stdio.h>", toks[1].Val)

	toks = lexAll(t, "#include \"foo.h\"\n")
	require.Equal(t, []TokenKind{DIRECTIVE, HEADER, END_DIRECTIVE}, kindsOf(toks))
	assert.Equal(t, `"foo.h"`, toks[1].Val)

	// A # in the middle of a line is not a directive.
	toks = lexAll(t, "a # b")
	require.Equal(t, []TokenKind{IDENT, HASH, IDENT}, kindsOf(toks))

	// A directive line without a trailing newline still terminates.
	toks = lexAll(t, "#define X 2")
	require.Equal(t, []TokenKind{DIRECTIVE, IDENT, INT_CONSTANT, END_DIRECTIVE}, kindsOf(toks))
}

func TestLexLineCommentInDirective(t *testing.T) {
	toks := lexAll(t, "#define FOO 1 // trailing\nint x;")
	require.Equal(t, []TokenKind{DIRECTIVE, IDENT, INT_CONSTANT, END_DIRECTIVE, INT, IDENT, SEMICOLON}, kindsOf(toks))
}

func TestLexPositions(t *testing.T) {
	toks := lexAll(t, "int a;\nchar b;")
	require.Len(t, toks, 6)
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 1, toks[0].Pos.Col)
	assert.Equal(t, 1, toks[1].Pos.Line)
	assert.Equal(t, 5, toks[1].Pos.Col)
	assert.Equal(t, 2, toks[3].Pos.Line)
	assert.Equal(t, 1, toks[3].Pos.Col)
	assert.Equal(t, 2, toks[4].Pos.Line)
	assert.Equal(t, 6, toks[4].Pos.Col)
	assert.Equal(t, "lex_test.c", toks[0].Pos.File)
	// Byte offsets.
	assert.Equal(t, 0, toks[0].Pos.Off)
	assert.Equal(t, 4, toks[1].Pos.Off)
	assert.Equal(t, 7, toks[3].Pos.Off)
}

func TestLexErrors(t *testing.T) {
	testCases := []struct {
		src  string
		kind LexErrorKind
	}{
		{"/* never closed", UnterminatedComment},
		{"\"never closed", UnterminatedString},
		{"'x", UnterminatedChar},
		{"0xzz", InvalidConstant},
		{"123abc", InvalidConstant},
		{"1.5fg", InvalidConstant},
		{"1e;", InvalidConstant},
		{"int a; @", StrayCharacter},
		{"a .. b", StrayCharacter},
	}
	for _, tc := range testCases {
		err := lexUntilError(t, tc.src)
		require.Error(t, err, "src: %s", tc.src)
		var lexErr *LexError
		require.ErrorAs(t, err, &lexErr, "src: %s", tc.src)
		assert.Equal(t, tc.kind, lexErr.Kind, "src: %s", tc.src)
		pos, ok := PosOf(err)
		require.True(t, ok)
		assert.Equal(t, "lex_test.c", pos.File)
	}
}

func TestLexAtResumesPositions(t *testing.T) {
	full := "int x;\nchar y;\n"
	toks := lexAll(t, full)
	require.Len(t, toks, 6)

	// Restart lexing from the byte offset of the second declaration
	// and check positions line up with the full lex.
	resumeAt := toks[3].Pos
	lx := LexAt("lex_test.c", strings.NewReader(full[resumeAt.Off:]), resumeAt)
	for _, want := range toks[3:] {
		got, err := lx.Next()
		require.NoError(t, err)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.Pos, got.Pos)
	}
}
