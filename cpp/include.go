package cpp

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// IncludeSearcher resolves #include directives to file contents.
// A nil IncludeSearcher given to New makes the preprocessor ignore
// include directives entirely, which is the mode used when a single
// in-memory buffer is the whole translation unit.
type IncludeSearcher interface {
	// IncludeQuote is invoked when the preprocessor encounters an
	// include of the form #include "foo.h". Returns the full path of
	// the file and a reader of the contents.
	IncludeQuote(requestingFile, headerPath string) (string, io.Reader, error)
	// IncludeAngled is invoked when the preprocessor encounters an
	// include of the form #include <foo.h>. Returns the full path of
	// the file and a reader of the contents.
	IncludeAngled(requestingFile, headerPath string) (string, io.Reader, error)
}

type StandardIncludeSearcher struct {
	// Priority ordered list of directories to search for headers.
	systemHeadersPath []string
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (is *StandardIncludeSearcher) IncludeQuote(requestingFile, headerPath string) (string, io.Reader, error) {
	dir := path.Dir(requestingFile)
	p := path.Join(dir, headerPath)
	exists, err := fileExists(p)
	if err != nil {
		return "", nil, err
	}
	if !exists {
		return is.IncludeAngled(requestingFile, headerPath)
	}
	rdr, err := os.Open(p)
	return p, rdr, err
}

func (is *StandardIncludeSearcher) IncludeAngled(requestingFile, headerPath string) (string, io.Reader, error) {
	for idx := range is.systemHeadersPath {
		p := path.Join(is.systemHeadersPath[idx], headerPath)
		exists, err := fileExists(p)
		if err != nil {
			return "", nil, err
		}
		if exists {
			rdr, err := os.Open(p)
			return p, rdr, err
		}
	}
	return "", nil, fmt.Errorf("header %s not found", headerPath)
}

// NewStandardIncludeSearcher takes a ; separated list of directories.
func NewStandardIncludeSearcher(includePaths string) IncludeSearcher {
	ret := &StandardIncludeSearcher{}
	ret.systemHeadersPath = strings.Split(includePaths, ";")
	return ret
}
