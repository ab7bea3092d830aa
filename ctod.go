// Package ctod parses C declarations into structural type trees.
//
// The pipeline is lexing (package cpp), preprocessing (package cpp)
// and declaration parsing (package parse). This package just wires
// the stages together for the common cases.
package ctod

import (
	"io"
	"os"

	"github.com/Imperatorn/ctod/cpp"
	"github.com/Imperatorn/ctod/parse"
)

// ParseSource parses a single in-memory translation unit. Include
// directives are ignored; use Parse with a cpp.IncludeSearcher when
// headers should be resolved.
func ParseSource(fname string, src io.Reader) ([]*parse.Declaration, error) {
	return Parse(fname, src, nil)
}

// ParseFile parses the translation unit stored at path.
func ParseFile(path string) ([]*parse.Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSource(path, f)
}

// Parse runs the full pipeline over src with is resolving includes.
func Parse(fname string, src io.Reader, is cpp.IncludeSearcher) ([]*parse.Declaration, error) {
	pp := cpp.New(cpp.Lex(fname, src), is)
	return parse.Parse(pp)
}

// Preprocess runs only the lexer and preprocessor over src and
// returns the reduced token stream, EOF token included.
func Preprocess(fname string, src io.Reader, is cpp.IncludeSearcher) ([]*cpp.Token, error) {
	pp := cpp.New(cpp.Lex(fname, src), is)
	var toks []*cpp.Token
	for {
		t, err := pp.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == cpp.EOF {
			return toks, nil
		}
	}
}
