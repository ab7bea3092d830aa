package cpp

import (
	"fmt"
	"io"
)

// Cap on chained macro expansions between two emitted tokens.
// Hidesets already stop direct self-reference, the cap makes the
// failure mode deterministic for pathological chains.
const macroExpansionLimit = 512

type Preprocessor struct {
	lxidx  int
	lexers [1024]*Lexer

	is IncludeSearcher
	// List of all pushed back tokens.
	tl *tokenList
	// Map of defined object macros.
	objMacros map[string]*objMacro
	// Map of defined function-like macros.
	funcMacros map[string]*funcMacro

	// Stack of open #if/#ifdef regions, innermost last.
	conditionalStack []*condFrame

	// Number of macro expansions since the last emitted token.
	expansions int
}

// condFrame tracks one open conditional chain.
type condFrame struct {
	// Some branch of this chain has been taken.
	wasTaken bool
	// An #else has been seen, later #elif/#else are errors.
	seenElse bool
	// Position of the opening #if/#ifdef/#ifndef.
	pos FilePos
}

func (pp *Preprocessor) pushCondFrame(taken bool, pos FilePos) *condFrame {
	f := &condFrame{wasTaken: taken, pos: pos}
	pp.conditionalStack = append(pp.conditionalStack, f)
	return f
}

func (pp *Preprocessor) popCondFrame() {
	if pp.condDepth() == 0 {
		panic("internal bug")
	}
	pp.conditionalStack = pp.conditionalStack[:len(pp.conditionalStack)-1]
}

func (pp *Preprocessor) topCondFrame() *condFrame {
	if pp.condDepth() == 0 {
		return nil
	}
	return pp.conditionalStack[len(pp.conditionalStack)-1]
}

func (pp *Preprocessor) condDepth() int {
	return len(pp.conditionalStack)
}

// New creates a preprocessor reading from l. is resolves #include
// directives; a nil searcher makes the preprocessor skip includes,
// which is the mode used when processing a single in-memory buffer.
func New(l *Lexer, is IncludeSearcher) *Preprocessor {
	ret := new(Preprocessor)
	ret.lexers[0] = l
	ret.is = is
	ret.tl = newTokenList()
	ret.objMacros = make(map[string]*objMacro)
	ret.funcMacros = make(map[string]*funcMacro)
	return ret
}

type cppbreakout struct {
	t   *Token
	err error
}

func (pp *Preprocessor) nextNoExpand() *Token {
	if pp.tl.isEmpty() {
		for {
			t, err := pp.lexers[pp.lxidx].Next()
			if err != nil {
				panic(&cppbreakout{t, err})
			}
			if t.Kind == EOF {
				if pp.lxidx == 0 {
					return t
				}
				pp.lxidx -= 1
				continue
			}
			return t
		}
	}
	return pp.tl.popFront()
}

func (pp *Preprocessor) cppError(kind PreprocessErrorKind, pos FilePos, detail string) {
	panic(&cppbreakout{
		t:   &Token{Kind: ERROR, Pos: pos},
		err: &PreprocessError{Kind: kind, Pos: pos, Detail: detail},
	})
}

// Next returns the next token of the reduced stream: directives are
// executed, macros expanded and inactive conditional branches removed.
func (pp *Preprocessor) Next() (t *Token, err error) {

	defer func() {
		if e := recover(); e != nil {
			b := e.(*cppbreakout) // Will re-panic if not a breakout.
			t = b.t
			err = b.err
		}
	}()

	t = pp.nextNoExpand()

	for t.Kind == DIRECTIVE {
		pp.handleDirective(t)
		t = pp.nextNoExpand()
	}

	if t.Kind == EOF {
		if f := pp.topCondFrame(); f != nil {
			pp.cppError(UnterminatedConditional, f.pos, "")
		}
		pp.expansions = 0
		return t, nil
	}

	if t.Kind == END_DIRECTIVE {
		// Pseudo token, invisible to consumers of the reduced stream.
		return pp.Next()
	}

	if t.hs.contains(t.Val) {
		pp.expansions = 0
		return t, nil
	}
	macro, ok := pp.objMacros[t.Val]
	if ok {
		pp.noteExpansion(t.Pos)
		replacementTokens := macro.tokens.copy()
		replacementTokens.addToHideSets(t)
		replacementTokens.setPositions(t.Pos)
		pp.ungetTokens(replacementTokens)
		return pp.Next()
	}
	fmacro, ok := pp.funcMacros[t.Val]
	if ok {
		opening := pp.nextNoExpand()
		if opening.Kind == LPAREN {
			pp.noteExpansion(t.Pos)
			args, rparen, err := pp.readMacroInvokeArguments()
			if err != nil {
				return &Token{}, err
			}
			if len(args) != fmacro.nargs {
				return &Token{}, &PreprocessError{
					Kind: MalformedDirective,
					Pos:  t.Pos,
					Detail: fmt.Sprintf("macro %s invoked with %d arguments but %d were expected",
						t.Val, len(args), fmacro.nargs),
				}
			}
			hs := t.hs.intersection(rparen.hs)
			hs = hs.add(t.Val)
			pp.subst(fmacro, t.Pos, args, hs)
			return pp.Next()
		}
		pp.ungetToken(opening)
	}
	pp.expansions = 0
	return t, nil
}

func (pp *Preprocessor) noteExpansion(pos FilePos) {
	pp.expansions += 1
	if pp.expansions > macroExpansionLimit {
		pp.cppError(MacroRecursionLimit, pos, "")
	}
}

// subst builds the replacement list for one function-like macro
// invocation. The invoking macro's hide-set is stamped onto body
// tokens only; argument tokens keep their own hide-sets, so an
// argument may invoke the same macro again.
func (pp *Preprocessor) subst(macro *funcMacro, invokePos FilePos, args []*tokenList, hs *hideset) {
	expandedTokens := newTokenList()
	for _, t := range macro.tokens.toks {
		idx, tIsArg := macro.isArg(t)
		if tIsArg {
			// Deep copy so a parameter used twice in the body
			// does not share Token values across both uses.
			expandedTokens.appendList(args[idx].copy())
		} else {
			tcpy := t.copy()
			tcpy.Pos = invokePos
			tcpy.WasMacroExpanded = true
			tcpy.hs = hs
			expandedTokens.append(tcpy)
		}
	}
	pp.ungetTokens(expandedTokens)
}

// Read the tokens that are part of a macro invocation, not including
// the opening paren but including the closing one. Handles nested
// parens. Each returned token list is one macro argument.
// e.g. FOO(BAR,(A,B),C) -> { <BAR> , <(A,B)> , <C> } , )
// where FOO( has already been consumed.
func (pp *Preprocessor) readMacroInvokeArguments() ([]*tokenList, *Token, error) {
	parenDepth := 1
	argIdx := 0
	ret := make([]*tokenList, 0, 16)
	ret = append(ret, newTokenList())
	for {
		t := pp.nextNoExpand()
		if t.Kind == EOF {
			return nil, nil, &PreprocessError{
				Kind:   MalformedDirective,
				Pos:    t.Pos,
				Detail: "end of input while reading macro arguments",
			}
		}
		switch t.Kind {
		case LPAREN:
			parenDepth += 1
			if parenDepth != 1 {
				ret[argIdx].append(t)
			}
		case RPAREN:
			parenDepth -= 1
			if parenDepth == 0 {
				return ret, t, nil
			}
			ret[argIdx].append(t)
		case COMMA:
			if parenDepth == 1 {
				argIdx += 1
				ret = append(ret, newTokenList())
			} else {
				ret[argIdx].append(t)
			}
		default:
			ret[argIdx].append(t)
		}
	}
}

func (pp *Preprocessor) ungetTokens(tl *tokenList) {
	pp.tl.prependList(tl)
}

func (pp *Preprocessor) ungetToken(t *Token) {
	pp.tl.prepend(t)
}

func (pp *Preprocessor) handleDirective(dirTok *Token) {
	if dirTok.Kind != DIRECTIVE {
		pp.cppError(MalformedDirective, dirTok.Pos, dirTok.String())
	}
	switch dirTok.Val {
	case "if":
		pp.handleIf(dirTok.Pos)
	case "ifdef":
		pp.handleIfDef(dirTok.Pos, false)
	case "ifndef":
		pp.handleIfDef(dirTok.Pos, true)
	case "elif":
		pp.handleElif(dirTok.Pos)
	case "else":
		pp.handleElse(dirTok.Pos)
	case "endif":
		pp.handleEndif(dirTok.Pos)
	case "undef":
		pp.handleUndefine()
	case "define":
		pp.handleDefine()
	case "include":
		pp.handleInclude()
	case "error":
		pp.handleError(dirTok.Pos)
	case "warning":
		// Warnings don't terminate preprocessing, drop the message.
		pp.readTillEndDirective()
	default:
		pp.cppError(UnknownDirective, dirTok.Pos, dirTok.Val)
	}
}

// handleIf evaluates the controlling expression of an #if and either
// lets the branch body through or skips forward to the branch of the
// chain that is taken.
func (pp *Preprocessor) handleIf(pos FilePos) {
	v := pp.evalIfDirectiveExpr(pos)
	f := pp.pushCondFrame(v != 0, pos)
	if !f.wasTaken {
		pp.skipBranches(f)
	}
}

func (pp *Preprocessor) handleIfDef(pos FilePos, negate bool) {
	ident := pp.nextNoExpand()
	if ident.Kind != IDENT {
		pp.cppError(MalformedDirective, ident.Pos, "#ifdef expects an identifier")
	}
	end := pp.nextNoExpand()
	if end.Kind != END_DIRECTIVE {
		pp.cppError(MalformedDirective, end.Pos, "unexpected token after #ifdef")
	}
	taken := pp.isDefined(ident.Val)
	if negate {
		taken = !taken
	}
	f := pp.pushCondFrame(taken, pos)
	if !f.wasTaken {
		pp.skipBranches(f)
	}
}

// handleElif is reached when an #elif arrives in the live stream,
// meaning the branch before it was taken. The rest of the chain is
// skipped.
func (pp *Preprocessor) handleElif(pos FilePos) {
	f := pp.topCondFrame()
	if f == nil {
		pp.cppError(UnmatchedEndif, pos, "#elif outside a conditional")
	}
	if f.seenElse {
		pp.cppError(ElifAfterElse, pos, "")
	}
	pp.readTillEndDirective()
	pp.skipBranches(f)
}

func (pp *Preprocessor) handleElse(pos FilePos) {
	f := pp.topCondFrame()
	if f == nil {
		pp.cppError(UnmatchedEndif, pos, "#else outside a conditional")
	}
	if f.seenElse {
		pp.cppError(ElseAfterElse, pos, "")
	}
	f.seenElse = true
	end := pp.nextNoExpand()
	if end.Kind != END_DIRECTIVE {
		pp.cppError(MalformedDirective, end.Pos, "unexpected token after #else")
	}
	// The previous branch was live, so the #else body is not.
	pp.skipBranches(f)
}

func (pp *Preprocessor) handleEndif(pos FilePos) {
	if pp.condDepth() <= 0 {
		pp.cppError(UnmatchedEndif, pos, "")
	}
	pp.popCondFrame()
	endTok := pp.nextNoExpand()
	if endTok.Kind != END_DIRECTIVE {
		pp.cppError(MalformedDirective, endTok.Pos, "unexpected token after #endif")
	}
}

// skipBranches discards tokens after a branch that is not (or no
// longer) live, stopping at the next branch of f's chain that should
// be emitted, or popping f at its #endif.
func (pp *Preprocessor) skipBranches(f *condFrame) {
	for {
		dir := pp.skipToChainDirective(f)
		switch dir.Val {
		case "endif":
			pp.popCondFrame()
			end := pp.nextNoExpand()
			if end.Kind != END_DIRECTIVE {
				pp.cppError(MalformedDirective, end.Pos, "unexpected token after #endif")
			}
			return
		case "else":
			if f.seenElse {
				pp.cppError(ElseAfterElse, dir.Pos, "")
			}
			f.seenElse = true
			end := pp.nextNoExpand()
			if end.Kind != END_DIRECTIVE {
				pp.cppError(MalformedDirective, end.Pos, "unexpected token after #else")
			}
			if !f.wasTaken {
				f.wasTaken = true
				return
			}
		case "elif":
			if f.seenElse {
				pp.cppError(ElifAfterElse, dir.Pos, "")
			}
			if f.wasTaken {
				pp.readTillEndDirective()
				continue
			}
			v := pp.evalIfDirectiveExpr(dir.Pos)
			if v != 0 {
				f.wasTaken = true
				return
			}
		default:
			panic("internal bug")
		}
	}
}

// skipToChainDirective consumes tokens until the next #elif/#else/
// #endif belonging to f's chain. Whole nested conditionals inside the
// skipped text are discarded without interpretation.
func (pp *Preprocessor) skipToChainDirective(f *condFrame) *Token {
	depth := 0
	for {
		t := pp.nextNoExpand()
		if t.Kind == EOF {
			pp.cppError(UnterminatedConditional, f.pos, "")
		}
		if t.Kind != DIRECTIVE {
			continue
		}
		switch t.Val {
		case "if", "ifdef", "ifndef":
			depth += 1
		case "endif":
			if depth == 0 {
				return t
			}
			depth -= 1
		case "elif", "else":
			if depth == 0 {
				return t
			}
		}
	}
}

// readTillEndDirective consumes and returns the remaining tokens of
// the current directive line.
func (pp *Preprocessor) readTillEndDirective() *tokenList {
	tl := newTokenList()
	for {
		t := pp.nextNoExpand()
		if t.Kind == EOF {
			pp.cppError(MalformedDirective, t.Pos, "end of input inside directive")
		}
		if t.Kind == END_DIRECTIVE {
			return tl
		}
		tl.append(t)
	}
}

// evalIfDirectiveExpr reads the rest of an #if/#elif line and
// evaluates it as a preprocessor constant expression.
func (pp *Preprocessor) evalIfDirectiveExpr(pos FilePos) int64 {
	raw := pp.readTillEndDirective()
	if raw.isEmpty() {
		pp.cppError(BadIfExpression, pos, "missing expression")
	}
	expanded := pp.expandIfExpr(raw, pos)
	v, err := evalIfExpr(pp.isDefined, expanded)
	if err != nil {
		pp.cppError(BadIfExpression, pos, err.Error())
	}
	return v
}

// expandIfExpr substitutes object macros into a conditional
// expression. The operand of defined is left untouched. Substitution
// is depth-capped the same way as stream expansion.
func (pp *Preprocessor) expandIfExpr(raw *tokenList, pos FilePos) *tokenList {
	out := newTokenList()
	steps := 0
	work := raw.toks
	for len(work) > 0 {
		t := work[0]
		work = work[1:]
		if t.Kind == IDENT && t.Val == "defined" {
			out.append(t)
			if len(work) > 0 && work[0].Kind == LPAREN {
				out.append(work[0])
				work = work[1:]
				if len(work) > 0 {
					out.append(work[0])
					work = work[1:]
				}
				if len(work) > 0 && work[0].Kind == RPAREN {
					out.append(work[0])
					work = work[1:]
				}
			} else if len(work) > 0 {
				out.append(work[0])
				work = work[1:]
			}
			continue
		}
		if t.Kind == IDENT && !t.hs.contains(t.Val) {
			if m, ok := pp.objMacros[t.Val]; ok {
				steps += 1
				if steps > macroExpansionLimit {
					pp.cppError(MacroRecursionLimit, pos, "")
				}
				replacement := m.tokens.copy()
				replacement.addToHideSets(t)
				replacement.setPositions(t.Pos)
				work = append(replacement.toks, work...)
				continue
			}
		}
		out.append(t)
	}
	return out
}

func (pp *Preprocessor) handleError(pos FilePos) {
	tl := pp.readTillEndDirective()
	msg := ""
	for _, t := range tl.toks {
		if msg != "" {
			msg += " "
		}
		msg += t.Val
	}
	pp.cppError(ErrorDirective, pos, msg)
}

func (pp *Preprocessor) handleInclude() {
	tok := pp.nextNoExpand()
	if tok.Kind != HEADER {
		pp.cppError(BadInclude, tok.Pos, "expected a header name")
	}
	headerStr := tok.Val
	path := headerStr[1 : len(headerStr)-1]
	end := pp.nextNoExpand()
	if end.Kind != END_DIRECTIVE {
		pp.cppError(BadInclude, end.Pos, "expected newline after include")
	}
	if pp.is == nil {
		// Single translation unit mode.
		return
	}
	var err error
	var headerName string
	var rdr io.Reader
	switch headerStr[0] {
	case '<':
		headerName, rdr, err = pp.is.IncludeAngled(tok.Pos.File, path)
	case '"':
		headerName, rdr, err = pp.is.IncludeQuote(tok.Pos.File, path)
	default:
		pp.cppError(BadInclude, tok.Pos, "internal error")
	}
	if err != nil {
		pp.cppError(BadInclude, tok.Pos, err.Error())
	}
	pp.lxidx += 1
	pp.lexers[pp.lxidx] = Lex(headerName, rdr)
}

func (pp *Preprocessor) handleUndefine() {
	ident := pp.nextNoExpand()
	if ident.Kind != IDENT {
		pp.cppError(MalformedDirective, ident.Pos, "#undef expects an identifier")
	}
	delete(pp.objMacros, ident.Val)
	delete(pp.funcMacros, ident.Val)
	end := pp.nextNoExpand()
	if end.Kind != END_DIRECTIVE {
		pp.cppError(MalformedDirective, end.Pos, "unexpected token after #undef")
	}
}

func (pp *Preprocessor) handleDefine() {
	ident := pp.nextNoExpand()
	if ident.Kind != IDENT {
		pp.cppError(MalformedDirective, ident.Pos, "#define expects an identifier")
	}
	t := pp.nextNoExpand()
	if t.Kind == FUNCLIKE_DEFINE {
		pp.handleFuncLikeDefine(ident)
	} else {
		pp.ungetToken(t)
		pp.handleObjDefine(ident)
	}
}

// isDefined reports whether s names a live macro of either flavor.
func (pp *Preprocessor) isDefined(s string) bool {
	_, ok1 := pp.funcMacros[s]
	_, ok2 := pp.objMacros[s]
	return ok1 || ok2
}

func (pp *Preprocessor) handleFuncLikeDefine(ident *Token) {
	// First read the parameter list.
	paren := pp.nextNoExpand()
	if paren.Kind != LPAREN {
		panic("internal bug, func like define without opening LPAREN")
	}

	if pp.isDefined(ident.Val) {
		pp.cppError(MacroRedefinition, ident.Pos, ident.Val)
	}

	args := newTokenList()
	tokens := newTokenList()

	for {
		t := pp.nextNoExpand()
		if t.Kind == RPAREN {
			break
		}
		if t.Kind != IDENT {
			pp.cppError(MalformedDirective, t.Pos, "expected macro parameter")
		}
		args.append(t)
		t2 := pp.nextNoExpand()
		if t2.Kind == COMMA {
			continue
		} else if t2.Kind == RPAREN {
			break
		} else {
			pp.cppError(MalformedDirective, t2.Pos, "expected ',' or ')' in macro parameters")
		}
	}

	for {
		t := pp.nextNoExpand()
		if t.Kind == END_DIRECTIVE {
			break
		}
		if t.Kind == EOF {
			pp.cppError(MalformedDirective, t.Pos, "end of input inside #define")
		}
		tokens.append(t)
	}

	pp.funcMacros[ident.Val] = newFuncMacro(args, tokens)
}

func (pp *Preprocessor) handleObjDefine(ident *Token) {
	if pp.isDefined(ident.Val) {
		pp.cppError(MacroRedefinition, ident.Pos, ident.Val)
	}
	tl := newTokenList()
	for {
		t := pp.nextNoExpand()
		if t.Kind == END_DIRECTIVE {
			break
		}
		if t.Kind == EOF {
			pp.cppError(MalformedDirective, t.Pos, "end of input inside #define")
		}
		tl.append(t)
	}
	pp.objMacros[ident.Val] = newObjMacro(tl)
}
