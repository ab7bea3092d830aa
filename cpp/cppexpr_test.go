package cpp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalExprStr(t *testing.T, expr string, isDefined func(string) bool) (int64, error) {
	t.Helper()
	if isDefined == nil {
		isDefined = func(string) bool { return false }
	}
	lx := Lex("expr_test.c", strings.NewReader(expr))
	tl := newTokenList()
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			break
		}
		tl.append(tok)
	}
	return evalIfExpr(isDefined, tl)
}

func TestEvalIfExpr(t *testing.T) {
	testCases := []struct {
		expr     string
		expected int64
	}{
		{"0", 0},
		{"1", 1},
		{"2", 2},
		{"0x10", 16},
		{"010", 8},
		{"1UL", 1},
		{"2L + 2", 4},
		{"2 + 2", 4},
		{"2 - 3", -1},
		{"2 * 3", 6},
		{"7 / 2", 3},
		{"7 % 2", 1},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"1 << 4", 16},
		{"256 >> 4", 16},
		{"-2 + 3", 1},
		{"+2 + 3", 5},
		{"!0", 1},
		{"!1", 0},
		{"!!1", 1},
		{"~0", -1},
		{"~0xf & 0xff", 0xf0},
		{"0xf0 | 0x0f", 0xff},
		{"0xff ^ 0x0f", 0xf0},
		{"1 == 1", 1},
		{"1 == 2", 0},
		{"1 != 2", 1},
		{"1 < 2", 1},
		{"2 < 1", 0},
		{"2 > 1", 1},
		{"1 <= 1", 1},
		{"2 <= 1", 0},
		{"1 >= 1", 1},
		{"1 >= 2", 0},
		{"1 && 1", 1},
		{"1 && 0", 0},
		{"0 || 0", 0},
		{"0 || 1", 1},
		{"1 && 2 || 0", 1},
		{"1 ? 2 : 3", 2},
		{"0 ? 2 : 3", 3},
		{"1 ? 2 : 0 ? 3 : 4", 2},
		{"0 ? 2 : 0 ? 3 : 4", 4},
		{"0 ? 2 : 1 ? 3 : 4", 3},
		{"1, 2", 2},
		{"UNDEFINED", 0},
		{"UNDEFINED + 1", 1},
	}
	for _, tc := range testCases {
		v, err := evalExprStr(t, tc.expr, nil)
		require.NoError(t, err, "expr: %s", tc.expr)
		assert.Equal(t, tc.expected, v, "expr: %s", tc.expr)
	}
}

func TestEvalIfExprDefined(t *testing.T) {
	isDefined := func(s string) bool { return s == "FOO" }
	testCases := []struct {
		expr     string
		expected int64
	}{
		{"defined FOO", 1},
		{"defined(FOO)", 1},
		{"defined BAR", 0},
		{"defined(BAR)", 0},
		{"!defined(BAR)", 1},
		{"defined(FOO) && defined(BAR)", 0},
		{"defined(FOO) || defined(BAR)", 1},
		{"defined(FOO) && !defined(BAR)", 1},
	}
	for _, tc := range testCases {
		v, err := evalExprStr(t, tc.expr, isDefined)
		require.NoError(t, err, "expr: %s", tc.expr)
		assert.Equal(t, tc.expected, v, "expr: %s", tc.expr)
	}
}

func TestEvalIfExprErrors(t *testing.T) {
	badExprs := []string{
		"",
		"1 +",
		"+",
		"(1",
		"1)",
		"1 2",
		"1 / 0",
		"1 % 0",
		"'a'",
		"1 ? 2",
		"defined",
		"defined(FOO",
	}
	for _, expr := range badExprs {
		_, err := evalExprStr(t, expr, nil)
		assert.Error(t, err, "expr: %s", expr)
	}
}
