package cpp

// Macro definitions stored by the preprocessor. These are immutable
// once defined; expansion always copies.

type objMacro struct {
	tokens *tokenList
}

func newObjMacro(tokens *tokenList) *objMacro {
	return &objMacro{tokens}
}

type funcMacro struct {
	// Map of parameter name to 0-based argument position.
	args   map[string]int
	nargs  int
	tokens *tokenList
}

// args must be a list of ident tokens.
func newFuncMacro(args *tokenList, tokens *tokenList) *funcMacro {
	ret := new(funcMacro)
	ret.args = make(map[string]int)
	for idx, tok := range args.toks {
		ret.args[tok.Val] = idx
	}
	ret.nargs = args.len()
	ret.tokens = tokens
	return ret
}

func (m *funcMacro) isArg(t *Token) (int, bool) {
	if t.Kind != IDENT {
		return 0, false
	}
	idx, ok := m.args[t.Val]
	return idx, ok
}

// The hideset of a token is the set of macro names whose expansion
// produced the token. A token hidden by a name is never expanded by
// that name again, which stops self-referential macros. Implemented
// as an immutable singly linked list; hidesets stay tiny in practice.
type hideset struct {
	r   *hideset
	val string
}

var emptyHS *hideset = nil

func (hs *hideset) rest() *hideset {
	if hs == emptyHS {
		return emptyHS
	}
	return hs.r
}

func (hs *hideset) contains(s string) bool {
	for h := hs; h != emptyHS; h = h.rest() {
		if h.val == s {
			return true
		}
	}
	return false
}

func (hs *hideset) add(s string) *hideset {
	if hs.contains(s) {
		return hs
	}
	return &hideset{
		r:   hs,
		val: s,
	}
}

// union returns a hideset containing every name in hs or b.
func (hs *hideset) union(b *hideset) *hideset {
	ret := b
	for h := hs; h != emptyHS; h = h.rest() {
		ret = ret.add(h.val)
	}
	return ret
}

// intersection returns a hideset containing the names in both hs and b.
func (hs *hideset) intersection(b *hideset) *hideset {
	ret := emptyHS
	for h := hs; h != emptyHS; h = h.rest() {
		if b.contains(h.val) {
			ret = ret.add(h.val)
		}
	}
	return ret
}
