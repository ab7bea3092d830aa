package cpp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cppTokens(t *testing.T, src string) []*Token {
	t.Helper()
	pp := New(Lex("cpp_test.c", strings.NewReader(src)), nil)
	var toks []*Token
	for {
		tok, err := pp.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func cppVals(t *testing.T, src string) string {
	t.Helper()
	toks := cppTokens(t, src)
	vals := make([]string, len(toks))
	for i, tok := range toks {
		vals[i] = tok.Val
	}
	return strings.Join(vals, " ")
}

func cppUntilError(t *testing.T, src string) error {
	t.Helper()
	pp := New(Lex("cpp_test.c", strings.NewReader(src)), nil)
	for {
		tok, err := pp.Next()
		if err != nil {
			return err
		}
		if tok.Kind == EOF {
			return nil
		}
	}
}

func TestObjMacroExpansion(t *testing.T) {
	testCases := []struct {
		src      string
		expected string
	}{
		{"#define N 5\nint a[N];", "int a [ 5 ] ;"},
		{"#define A B\n#define B 3\nA", "3"},
		{"#define EMPTY\nint EMPTY x;", "int x ;"},
		{"#define TWO 1 + 1\nTWO", "1 + 1"},
		// A macro is not expanded inside its own expansion.
		{"#define X X\nX", "X"},
		{"#define A B\n#define B A\nA", "A"},
		// #undef removes both flavors.
		{"#define N 5\n#undef N\nN", "N"},
		{"#define F(x) x\n#undef F\nF(1)", "F ( 1 )"},
		// Undefining an unknown name is not an error.
		{"#undef NEVER\nok", "ok"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, cppVals(t, tc.src), "src: %s", tc.src)
	}
}

func TestFuncMacroExpansion(t *testing.T) {
	testCases := []struct {
		src      string
		expected string
	}{
		{"#define ID(x) x\nID(hello)", "hello"},
		{"#define MAX(a, b) ((a) > (b) ? (a) : (b))\nMAX(1, 2)", "( ( 1 ) > ( 2 ) ? ( 1 ) : ( 2 ) )"},
		{"#define ADD(a, b) a + b\nADD(1, ADD(2, 3))", "1 + 2 + 3"},
		// A macro invoked again inside its own argument list expands;
		// only body tokens carry the invoking macro's hide-set.
		{"#define SQR(x) (x*x)\nSQR(SQR(2))", "( ( 2 * 2 ) * ( 2 * 2 ) )"},
		// Self-reference in the body stays unexpanded.
		{"#define F(x) F(x)\nF(1)", "F ( 1 )"},
		// Commas inside parens don't split arguments.
		{"#define FST(p) p\nFST((a, b))", "( a , b )"},
		// The name alone, without an argument list, is left as is.
		{"#define F(x) x\nint F;", "int F ;"},
		// Arguments substitute into the body by name.
		{"#define SWAP(a, b) b a\nSWAP(x, y)", "y x"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, cppVals(t, tc.src), "src: %s", tc.src)
	}
}

func TestMacroExpansionMetadata(t *testing.T) {
	toks := cppTokens(t, "#define N 5\nint a[N];")
	require.Len(t, toks, 6)
	five := toks[3]
	assert.Equal(t, "5", five.Val)
	assert.True(t, five.WasMacroExpanded)
	// Expanded tokens point at the invocation site.
	assert.Equal(t, 2, five.Pos.Line)
	assert.False(t, toks[0].WasMacroExpanded)
}

func TestFuncMacroArgumentCount(t *testing.T) {
	err := cppUntilError(t, "#define ADD(a, b) a + b\nADD(1)")
	require.Error(t, err)
	var ppErr *PreprocessError
	require.ErrorAs(t, err, &ppErr)
	assert.Equal(t, MalformedDirective, ppErr.Kind)
}

func TestConditionals(t *testing.T) {
	testCases := []struct {
		src      string
		expected string
	}{
		{"#if 1\na\n#endif", "a"},
		{"#if 0\na\n#endif", ""},
		{"#if 1\na\n#else\nb\n#endif", "a"},
		{"#if 0\na\n#else\nb\n#endif", "b"},
		{"#if 0\na\n#elif 1\nb\n#else\nc\n#endif", "b"},
		{"#if 1\na\n#elif 1\nb\n#else\nc\n#endif", "a"},
		{"#if 0\na\n#elif 0\nb\n#elif 1\nc\n#else\nd\n#endif", "c"},
		{"#if 0\na\n#elif 0\nb\n#else\nc\n#endif", "c"},
		// Whole nested conditionals are skipped with dead branches.
		{"#if 0\n#if 1\na\n#endif\nb\n#else\nc\n#endif", "c"},
		{"#if 1\n#if 0\na\n#else\nb\n#endif\n#endif", "b"},
		// ifdef / ifndef.
		{"#define X 1\n#ifdef X\na\n#endif", "a"},
		{"#ifdef X\na\n#endif", ""},
		{"#ifndef X\na\n#endif", "a"},
		{"#define X 1\n#ifndef X\na\n#else\nb\n#endif", "b"},
		// defined in both spellings.
		{"#define TEST 1\n#if defined(TEST)\nyes\n#endif", "yes"},
		{"#define TEST 1\n#if defined TEST\nyes\n#endif", "yes"},
		{"#if !defined(TEST)\nyes\n#endif", "yes"},
		{"#if 0\nx\n#elif defined(TEST)\ny\n#endif", ""},
		{"#define TEST 1\n#if 0\nx\n#elif defined(TEST)\ny\n#endif", "y"},
		// Object macros substitute into the controlling expression.
		{"#define V 3\n#if V == 3\nok\n#endif", "ok"},
		{"#define V 3\n#if V > 5\nbig\n#else\nsmall\n#endif", "small"},
		// Unknown identifiers evaluate to zero.
		{"#if FOO\nx\n#endif", ""},
		{"#if FOO == 0\nx\n#endif", "x"},
		// Function-like macros count as defined.
		{"#define F(x) x\n#ifdef F\nyes\n#endif", "yes"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, cppVals(t, tc.src), "src: %s", tc.src)
	}
}

func TestConditionalErrors(t *testing.T) {
	testCases := []struct {
		src  string
		kind PreprocessErrorKind
	}{
		{"#endif", UnmatchedEndif},
		{"#else\n#endif", UnmatchedEndif},
		{"#elif 1\n#endif", UnmatchedEndif},
		{"#if 1\nint a;", UnterminatedConditional},
		{"#if 0\nint a;", UnterminatedConditional},
		{"#if 1\n#if 0\n#endif\nint a;", UnterminatedConditional},
		{"#if 1\n#else\na\n#else\nb\n#endif", ElseAfterElse},
		{"#if 0\n#else\n#else\n#endif", ElseAfterElse},
		{"#if 1\n#else\n#elif 1\n#endif", ElifAfterElse},
		{"#if 0\n#else\n#elif 1\n#endif", ElifAfterElse},
		{"#if\n#endif", BadIfExpression},
		{"#if 1 +\n#endif", BadIfExpression},
		{"#if (1\n#endif", BadIfExpression},
		{"#if 1 / 0\n#endif", BadIfExpression},
	}
	for _, tc := range testCases {
		err := cppUntilError(t, tc.src)
		require.Error(t, err, "src: %s", tc.src)
		var ppErr *PreprocessError
		require.ErrorAs(t, err, &ppErr, "src: %s", tc.src)
		assert.Equal(t, tc.kind, ppErr.Kind, "src: %s", tc.src)
	}
}

func TestDirectiveErrors(t *testing.T) {
	testCases := []struct {
		src  string
		kind PreprocessErrorKind
	}{
		{"#define X 1\n#define X 2\n", MacroRedefinition},
		{"#define F(x) x\n#define F(y) y\n", MacroRedefinition},
		{"#define X 1\n#define X(y) y\n", MacroRedefinition},
		{"#pragma once\n", UnknownDirective},
		{"#define 1 2\n", MalformedDirective},
		{"#ifdef 1\n#endif", MalformedDirective},
		{"#error something went wrong\n", ErrorDirective},
	}
	for _, tc := range testCases {
		err := cppUntilError(t, tc.src)
		require.Error(t, err, "src: %s", tc.src)
		var ppErr *PreprocessError
		require.ErrorAs(t, err, &ppErr, "src: %s", tc.src)
		assert.Equal(t, tc.kind, ppErr.Kind, "src: %s", tc.src)
	}
}

func TestErrorDirectiveMessage(t *testing.T) {
	err := cppUntilError(t, "#error not supported here\n")
	var ppErr *PreprocessError
	require.ErrorAs(t, err, &ppErr)
	assert.Contains(t, ppErr.Detail, "not supported here")
}

func TestWarningDirectiveIgnored(t *testing.T) {
	assert.Equal(t, "int a ;", cppVals(t, "#warning deprecated header\nint a;"))
}

func TestMacroExpansionLimit(t *testing.T) {
	// A chain of distinct macro names defeats hidesets; the depth cap
	// has to stop it.
	var sb strings.Builder
	n := macroExpansionLimit + 10
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "#define M%d M%d\n", i, i+1)
	}
	fmt.Fprintf(&sb, "#define M%d 1\n", n)
	sb.WriteString("M0\n")
	err := cppUntilError(t, sb.String())
	require.Error(t, err)
	var ppErr *PreprocessError
	require.ErrorAs(t, err, &ppErr)
	assert.Equal(t, MacroRecursionLimit, ppErr.Kind)
}

func TestIncludeSkippedWithoutSearcher(t *testing.T) {
	assert.Equal(t, "int a ;", cppVals(t, "#include <stdio.h>\n#include \"local.h\"\nint a;"))
}

func TestIncludeWithSearcher(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "inc.h"), []byte("#define FROMHEADER 42\n"), 0o644)
	require.NoError(t, err)

	src := "#include \"inc.h\"\nint a[FROMHEADER];"
	pp := New(Lex(filepath.Join(dir, "main.c"), strings.NewReader(src)), NewStandardIncludeSearcher(dir))
	var vals []string
	for {
		tok, err := pp.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			break
		}
		vals = append(vals, tok.Val)
	}
	assert.Equal(t, "int a [ 42 ] ;", strings.Join(vals, " "))
}

func TestIncludeNotFound(t *testing.T) {
	src := "#include <no/such/header.h>\nint a;"
	pp := New(Lex("cpp_test.c", strings.NewReader(src)), NewStandardIncludeSearcher(t.TempDir()))
	for {
		tok, err := pp.Next()
		if err != nil {
			var ppErr *PreprocessError
			require.ErrorAs(t, err, &ppErr)
			assert.Equal(t, BadInclude, ppErr.Kind)
			return
		}
		require.NotEqual(t, EOF, tok.Kind, "expected an include failure")
	}
}
