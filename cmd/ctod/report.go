package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/Imperatorn/ctod/cpp"
)

// reportError prints err to stderr. When the error carries a source
// position and the file is readable, the offending line is shown with
// a caret under the column.
func reportError(err error) {
	fmt.Fprintln(os.Stderr, err)
	pos, ok := cpp.PosOf(err)
	if !ok {
		return
	}
	line, lineErr := readSourceLine(pos)
	if lineErr != nil {
		return
	}
	fmt.Fprintln(os.Stderr, line)
	for i := 0; i < pos.Col-1 && i < len(line); i++ {
		c := line[i]
		// Tabs are copied so the caret lines up with the source.
		if c != '\t' {
			c = ' '
		}
		fmt.Fprintf(os.Stderr, "%c", c)
	}
	fmt.Fprintln(os.Stderr, "^")
}

func readSourceLine(pos cpp.FilePos) (string, error) {
	f, err := os.Open(pos.File)
	if err != nil {
		return "", err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno += 1
		if lineno == pos.Line {
			return scanner.Text(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("line %d not found in %s", pos.Line, pos.File)
}
