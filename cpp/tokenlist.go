package cpp

// tokenList is the pushback queue the preprocessor works over.
// Macro expansion prepends replacement tokens, directive handling
// appends saved ones.
type tokenList struct {
	toks []*Token
}

func newTokenList() *tokenList {
	return &tokenList{}
}

func (tl *tokenList) isEmpty() bool {
	return len(tl.toks) == 0
}

func (tl *tokenList) len() int {
	return len(tl.toks)
}

func (tl *tokenList) popFront() *Token {
	if tl.isEmpty() {
		panic("internal error")
	}
	ret := tl.toks[0]
	tl.toks = tl.toks[1:]
	return ret
}

func (tl *tokenList) peekFront() *Token {
	if tl.isEmpty() {
		return nil
	}
	return tl.toks[0]
}

func (tl *tokenList) append(tok *Token) {
	tl.toks = append(tl.toks, tok)
}

func (tl *tokenList) appendList(toAdd *tokenList) {
	tl.toks = append(tl.toks, toAdd.toks...)
}

func (tl *tokenList) prepend(tok *Token) {
	tl.toks = append([]*Token{tok}, tl.toks...)
}

func (tl *tokenList) prependList(toAdd *tokenList) {
	tl.toks = append(append([]*Token{}, toAdd.toks...), tl.toks...)
}

// copy performs a deep copy so that expansions never share Token
// values with the macro definition.
func (tl *tokenList) copy() *tokenList {
	ret := newTokenList()
	for _, t := range tl.toks {
		ret.append(t.copy())
	}
	return ret
}

func (tl *tokenList) setPositions(pos FilePos) {
	for _, t := range tl.toks {
		t.Pos = pos
		t.WasMacroExpanded = true
	}
}

func (tl *tokenList) addToHideSets(src *Token) {
	for _, t := range tl.toks {
		t.hs = t.hs.add(src.Val).union(src.hs)
	}
}
