package ctod

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Imperatorn/ctod/cpp"
	"github.com/Imperatorn/ctod/parse"
)

const sampleSrc = `
#define DEPTH 3

typedef unsigned long ulong_t;

static char buf[DEPTH];
int (*rows)[DEPTH];
ulong_t counter;

int main(void) {
	counter = counter + 1;
	return 0;
}
`

func TestParseSource(t *testing.T) {
	decls, err := ParseSource("sample.c", strings.NewReader(sampleSrc))
	require.NoError(t, err)
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"ulong_t", "buf", "rows", "counter", "main"}, names)
	assert.Equal(t, &parse.Ptr{PointsTo: &parse.Array{
		MemberType: &parse.Primitive{Kind: parse.Int},
		Dim:        3,
		HasDim:     true,
	}}, decls[2].Type)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.c")
	require.NoError(t, os.WriteFile(path, []byte(sampleSrc), 0o644))

	decls, err := ParseFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, decls)
	assert.Equal(t, path, decls[0].Pos.File)

	_, err = ParseFile(filepath.Join(dir, "missing.c"))
	require.Error(t, err)
}

func TestParseWithIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "size.h"), []byte("#define SIZE 8\n"), 0o644))
	src := "#include \"size.h\"\nint a[SIZE];"

	decls, err := Parse(filepath.Join(dir, "main.c"), strings.NewReader(src), cpp.NewStandardIncludeSearcher(dir))
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, &parse.Array{
		MemberType: &parse.Primitive{Kind: parse.Int},
		Dim:        8,
		HasDim:     true,
	}, decls[0].Type)
}

func TestPreprocess(t *testing.T) {
	toks, err := Preprocess("pp.c", strings.NewReader("#define ONE 1\nint a[ONE];"), nil)
	require.NoError(t, err)
	vals := make([]string, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind == cpp.EOF {
			continue
		}
		vals = append(vals, tok.Val)
	}
	assert.Equal(t, "int a [ 1 ] ;", strings.Join(vals, " "))
	assert.Equal(t, cpp.EOF, toks[len(toks)-1].Kind)
}

func TestErrorsCarryPositions(t *testing.T) {
	_, err := ParseSource("bad.c", strings.NewReader("int x"))
	require.Error(t, err)
	pos, ok := cpp.PosOf(err)
	require.True(t, ok)
	assert.Equal(t, "bad.c", pos.File)

	_, err = ParseSource("bad.c", strings.NewReader("#if 1\nint x;"))
	require.Error(t, err)
	var ppErr *cpp.PreprocessError
	require.ErrorAs(t, err, &ppErr)
	assert.Equal(t, cpp.UnterminatedConditional, ppErr.Kind)
}
