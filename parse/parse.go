package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Imperatorn/ctod/cpp"
)

// TokenSource is where the parser pulls tokens from, normally a
// *cpp.Preprocessor. A bare *cpp.Lexer satisfies it too, which is
// handy for tests that don't need preprocessing.
type TokenSource interface {
	Next() (*cpp.Token, error)
}

type parser struct {
	// Typedef names in scope. A new child scope is pushed per block.
	types       *scope
	ts          TokenSource
	curt, nextt *cpp.Token
	decls       []*Declaration
}

type parseErrorBreakOut struct {
	err error
}

// Parse reads a whole translation unit from ts and returns one
// Declaration per declared identifier, in source order. The first
// error aborts the parse and is returned verbatim.
func Parse(ts TokenSource) (decls []*Declaration, errRet error) {
	p := &parser{}
	p.ts = ts
	p.types = newScope(nil)

	defer func() {
		if e := recover(); e != nil {
			peb := e.(parseErrorBreakOut) // Will re-panic if not a breakout.
			errRet = peb.err
		}
	}()
	p.next()
	p.next()
	p.parseTranslationUnit()
	return p.decls, nil
}

// ParseDeclaration parses a single declaration from ts. Used when the
// caller wants one statement rather than a whole translation unit.
func ParseDeclaration(ts TokenSource) (decls []*Declaration, errRet error) {
	p := &parser{}
	p.ts = ts
	p.types = newScope(nil)

	defer func() {
		if e := recover(); e != nil {
			peb := e.(parseErrorBreakOut)
			errRet = peb.err
		}
	}()
	p.next()
	p.next()
	p.parseDeclaration(true)
	return p.decls, nil
}

func (p *parser) errorPos(kind ParseErrorKind, pos cpp.FilePos, detail string) {
	panic(parseErrorBreakOut{&ParseError{Kind: kind, Pos: pos, Detail: detail}})
}

func (p *parser) passErr(err error) {
	panic(parseErrorBreakOut{err})
}

func (p *parser) expect(k cpp.TokenKind) {
	if p.curt.Kind != k {
		kind := UnexpectedToken
		switch k {
		case cpp.RPAREN:
			kind = UnbalancedParens
		case cpp.SEMICOLON:
			kind = MissingSemicolon
		}
		p.errorPos(kind, p.curt.Pos, fmt.Sprintf("expected %s got %s", k, p.curt.Kind))
	}
	p.next()
}

func (p *parser) next() {
	p.curt = p.nextt
	t, err := p.ts.Next()
	if err != nil {
		p.passErr(err)
	}
	p.nextt = t
}

func (p *parser) parseTranslationUnit() {
	for p.curt.Kind != cpp.EOF {
		if p.curt.Kind == cpp.SEMICOLON {
			p.next()
			continue
		}
		p.parseDeclaration(true)
	}
}

// isDeclSpecStart reports whether tok can begin a declaration.
func (p *parser) isDeclSpecStart(tok *cpp.Token) bool {
	switch tok.Kind {
	case cpp.VOID, cpp.BOOL, cpp.CHAR, cpp.SHORT, cpp.INT, cpp.LONG, cpp.FLOAT,
		cpp.DOUBLE, cpp.SIGNED, cpp.UNSIGNED, cpp.STRUCT, cpp.UNION,
		cpp.CONST, cpp.VOLATILE, cpp.STATIC, cpp.EXTERN, cpp.REGISTER,
		cpp.TYPEDEF, cpp.INLINE:
		return true
	case cpp.IDENT:
		_, ok := p.types.lookup(tok.Val)
		return ok
	}
	return false
}

// Specifier merging
// -----------------
//
// All base type keywords are accumulated into a single counter with a
// few bits per keyword, so "unsigned long long int" and
// "long unsigned long" merge identically and invalid mixes like
// "int float" fall out of a single switch.
const (
	cntVOID     = 1 << 0
	cntBOOL     = 1 << 2
	cntCHAR     = 1 << 4
	cntSHORT    = 1 << 6
	cntINT      = 1 << 8
	cntLONG     = 1 << 10
	cntFLOAT    = 1 << 12
	cntDOUBLE   = 1 << 14
	cntSIGNED   = 1 << 17
	cntUNSIGNED = 1 << 18
)

type declSpecs struct {
	storage SClass
	inline  bool
	konst   bool
	vol     bool
	// Finalized base type with qualifiers applied.
	base CType
}

func (p *parser) checkCounter(counter int, pos cpp.FilePos) {
	if counter&cntSIGNED != 0 && counter&cntUNSIGNED != 0 {
		p.errorPos(ConflictingSpecifiers, pos, "both signed and unsigned")
	}
	switch counter &^ (cntSIGNED | cntUNSIGNED) {
	case 0, cntVOID, cntBOOL, cntCHAR, cntSHORT, cntSHORT + cntINT, cntINT,
		cntLONG, cntLONG + cntINT, cntLONG + cntLONG, cntLONG + cntLONG + cntINT,
		cntFLOAT, cntDOUBLE, cntLONG + cntDOUBLE:
	default:
		p.errorPos(ConflictingSpecifiers, pos, "invalid type specifier combination")
	}
	if counter&(cntSIGNED|cntUNSIGNED) != 0 {
		switch counter &^ (cntSIGNED | cntUNSIGNED) {
		case cntVOID, cntBOOL, cntFLOAT, cntDOUBLE, cntLONG + cntDOUBLE:
			p.errorPos(ConflictingSpecifiers, pos, "signedness on a non-integer type")
		}
	}
}

func counterToPrimitive(counter int) *Primitive {
	prim := &Primitive{}
	prim.Unsigned = counter&cntUNSIGNED != 0
	switch counter &^ (cntSIGNED | cntUNSIGNED) {
	case cntVOID:
		prim.Kind = Void
	case cntBOOL:
		prim.Kind = Bool
	case cntCHAR:
		prim.Kind = Char
	case cntSHORT, cntSHORT + cntINT:
		prim.Kind = Short
	case 0, cntINT:
		prim.Kind = Int
	case cntLONG, cntLONG + cntINT:
		prim.Kind = Long
	case cntLONG + cntLONG, cntLONG + cntLONG + cntINT:
		prim.Kind = LLong
	case cntFLOAT:
		prim.Kind = Float
	case cntDOUBLE:
		prim.Kind = Double
	case cntLONG + cntDOUBLE:
		prim.Kind = LDouble
	default:
		panic("internal bug")
	}
	return prim
}

func (p *parser) parseDeclarationSpecifiers() *declSpecs {
	ds := &declSpecs{}
	counter := 0
	var other CType

loop:
	for {
		switch p.curt.Kind {
		case cpp.STATIC:
			ds.storage |= SC_STATIC
		case cpp.EXTERN:
			ds.storage |= SC_EXTERN
		case cpp.REGISTER:
			ds.storage |= SC_REGISTER
		case cpp.TYPEDEF:
			ds.storage |= SC_TYPEDEF
		case cpp.INLINE:
			ds.inline = true
		case cpp.CONST:
			ds.konst = true
		case cpp.VOLATILE:
			ds.vol = true
		case cpp.STRUCT, cpp.UNION:
			if counter != 0 || other != nil {
				p.errorPos(ConflictingSpecifiers, p.curt.Pos, "struct after other type specifiers")
			}
			other = p.parseStructOrUnion()
			continue
		case cpp.IDENT:
			ty, ok := p.types.lookup(p.curt.Val)
			if !ok || counter != 0 || other != nil {
				break loop
			}
			other = &TypedefRef{Name: p.curt.Val, Type: cloneType(ty)}
		case cpp.VOID:
			counter += cntVOID
			p.checkCounter(counter, p.curt.Pos)
		case cpp.BOOL:
			counter += cntBOOL
			p.checkCounter(counter, p.curt.Pos)
		case cpp.CHAR:
			counter += cntCHAR
			p.checkCounter(counter, p.curt.Pos)
		case cpp.SHORT:
			counter += cntSHORT
			p.checkCounter(counter, p.curt.Pos)
		case cpp.INT:
			counter += cntINT
			p.checkCounter(counter, p.curt.Pos)
		case cpp.LONG:
			counter += cntLONG
			p.checkCounter(counter, p.curt.Pos)
		case cpp.FLOAT:
			counter += cntFLOAT
			p.checkCounter(counter, p.curt.Pos)
		case cpp.DOUBLE:
			counter += cntDOUBLE
			p.checkCounter(counter, p.curt.Pos)
		case cpp.SIGNED:
			counter |= cntSIGNED
			p.checkCounter(counter, p.curt.Pos)
		case cpp.UNSIGNED:
			counter |= cntUNSIGNED
			p.checkCounter(counter, p.curt.Pos)
		default:
			break loop
		}
		p.next()
	}

	if other != nil {
		if counter != 0 {
			p.errorPos(ConflictingSpecifiers, p.curt.Pos, "type specifiers after struct or typedef name")
		}
		applyQuals(other, ds.konst, ds.vol)
		ds.base = other
	} else {
		prim := counterToPrimitive(counter)
		prim.Const = ds.konst
		prim.Volatile = ds.vol
		ds.base = prim
	}
	return ds
}

func applyQuals(t CType, konst, vol bool) {
	switch t := t.(type) {
	case *Primitive:
		t.Const = t.Const || konst
		t.Volatile = t.Volatile || vol
	case *Struct:
		t.Const = t.Const || konst
		t.Volatile = t.Volatile || vol
	case *TypedefRef:
		t.Const = t.Const || konst
		t.Volatile = t.Volatile || vol
	}
}

// cloneType deep copies a type tree. Declarators sharing a specifier
// set must not share nodes.
func cloneType(t CType) CType {
	switch t := t.(type) {
	case *Primitive:
		c := *t
		return &c
	case *Ptr:
		c := *t
		c.PointsTo = cloneType(t.PointsTo)
		return &c
	case *Array:
		c := *t
		c.MemberType = cloneType(t.MemberType)
		return &c
	case *FunctionType:
		c := *t
		c.Params = make([]Param, len(t.Params))
		for i, param := range t.Params {
			c.Params[i] = Param{Name: param.Name, Type: cloneType(param.Type)}
		}
		return &c
	case *Struct:
		c := *t
		c.Fields = make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			c.Fields[i] = Field{Name: f.Name, Type: cloneType(f.Type)}
		}
		if t.Fields == nil {
			c.Fields = nil
		}
		return &c
	case *TypedefRef:
		c := *t
		c.Type = cloneType(t.Type)
		return &c
	default:
		panic("internal bug")
	}
}

func (p *parser) specBase(ds *declSpecs) CType {
	return cloneType(ds.base)
}

func (p *parser) parseStructOrUnion() *Struct {
	isUnion := p.curt.Kind == cpp.UNION
	p.next()
	ret := &Struct{IsUnion: isUnion}
	if p.curt.Kind == cpp.IDENT {
		ret.Tag = p.curt.Val
		p.next()
	}
	if p.curt.Kind != cpp.LBRACE {
		if ret.Tag == "" {
			p.errorPos(UnexpectedToken, p.curt.Pos, "struct without tag or body")
		}
		return ret
	}
	p.next()
	for p.curt.Kind != cpp.RBRACE {
		specs := p.parseDeclarationSpecifiers()
		for {
			name, _, build := p.parseDeclarator()
			ret.Fields = append(ret.Fields, Field{Name: name, Type: build(p.specBase(specs))})
			if p.curt.Kind == cpp.COMMA {
				p.next()
				continue
			}
			break
		}
		p.expect(cpp.SEMICOLON)
	}
	p.expect(cpp.RBRACE)
	ret.Complete = true
	return ret
}

// Declarators
// -----------
//
// A declarator is the part of a declaration that specifies the name
// that is to be introduced into the program:
//
// unsigned int a, *b, **c, *const*d, *volatile*e;
//              ^  ^^  ^^^  ^^^^^^^^  ^^^^^^^^^^
//
// Postfix [] and () bind tighter than prefix *, and parentheses around
// a sub-declarator invert the default binding. Instead of re-scanning
// the nested declarator once the outer type is known, parseDeclarator
// returns a type constructor which the caller applies to the specifier
// base type; nesting composes the constructors in the right order for
// free.

type typeBuilder func(CType) CType

type ptrQual struct {
	konst bool
	vol   bool
}

type declSuffix struct {
	isFunc   bool
	params   []Param
	variadic bool
	dim      int64
	hasDim   bool
}

func (s *declSuffix) apply(base CType) CType {
	if s.isFunc {
		return &FunctionType{RetType: base, Params: s.params, IsVarArg: s.variadic}
	}
	return &Array{MemberType: base, Dim: s.dim, HasDim: s.hasDim}
}

// startsParamList disambiguates "(" after a direct declarator head:
// a parameter list begins with ")" or a declaration specifier, a
// nested declarator with anything else ("*", "(", an identifier).
func (p *parser) startsParamList(tok *cpp.Token) bool {
	if tok.Kind == cpp.RPAREN {
		return true
	}
	return p.isDeclSpecStart(tok)
}

func (p *parser) parseDeclarator() (string, cpp.FilePos, typeBuilder) {
	startPos := p.curt.Pos
	var quals []ptrQual
	for p.curt.Kind == cpp.MUL {
		p.next()
		var q ptrQual
		for p.curt.Kind == cpp.CONST || p.curt.Kind == cpp.VOLATILE {
			if p.curt.Kind == cpp.CONST {
				q.konst = true
			} else {
				q.vol = true
			}
			p.next()
		}
		quals = append(quals, q)
	}

	var name string
	pos := startPos
	var innerBuild typeBuilder
	switch {
	case p.curt.Kind == cpp.IDENT:
		name = p.curt.Val
		pos = p.curt.Pos
		p.next()
	case p.curt.Kind == cpp.LPAREN && !p.startsParamList(p.nextt):
		p.next()
		name, pos, innerBuild = p.parseDeclarator()
		if p.curt.Kind != cpp.RPAREN {
			p.errorPos(UnbalancedParens, p.curt.Pos, "expected ')' after declarator")
		}
		p.next()
	default:
		// Abstract declarator, no identifier.
	}

	suffixes := p.parseDeclaratorSuffixes()

	build := func(base CType) CType {
		for _, q := range quals {
			base = &Ptr{PointsTo: base, Const: q.konst, Volatile: q.vol}
		}
		for i := len(suffixes) - 1; i >= 0; i-- {
			base = suffixes[i].apply(base)
		}
		if innerBuild != nil {
			base = innerBuild(base)
		}
		return base
	}
	return name, pos, build
}

func (p *parser) parseDeclaratorSuffixes() []*declSuffix {
	var suffixes []*declSuffix
	for {
		switch p.curt.Kind {
		case cpp.LBRACK:
			p.next()
			suffixes = append(suffixes, p.parseArraySuffix())
		case cpp.LPAREN:
			p.next()
			params, variadic := p.parseParamList()
			suffixes = append(suffixes, &declSuffix{isFunc: true, params: params, variadic: variadic})
		default:
			return suffixes
		}
	}
}

// parseArraySuffix is entered after "[". A plain integer literal is a
// validated bound, anything else (including the empty "[]") becomes
// an unbounded marker with the expression consumed opaquely.
func (p *parser) parseArraySuffix() *declSuffix {
	if p.curt.Kind == cpp.RBRACK {
		p.next()
		return &declSuffix{}
	}
	if p.curt.Kind == cpp.INT_CONSTANT && p.nextt.Kind == cpp.RBRACK {
		v, err := strconv.ParseInt(strings.TrimRight(p.curt.Val, "uUlL"), 0, 64)
		if err != nil || v < 0 {
			p.errorPos(BadArrayBound, p.curt.Pos, p.curt.Val)
		}
		p.next()
		p.next()
		return &declSuffix{dim: v, hasDim: true}
	}
	p.skipBalanced(cpp.RBRACK)
	return &declSuffix{}
}

// skipBalanced consumes tokens up to and including the close token,
// tracking nesting of all three bracket pairs.
func (p *parser) skipBalanced(close cpp.TokenKind) {
	depth := 0
	for {
		switch p.curt.Kind {
		case cpp.EOF:
			p.errorPos(UnbalancedParens, p.curt.Pos, "unexpected end of input")
		case cpp.LPAREN, cpp.LBRACK, cpp.LBRACE:
			depth += 1
		case cpp.RPAREN, cpp.RBRACK, cpp.RBRACE:
			if depth == 0 {
				if p.curt.Kind != close {
					p.errorPos(UnbalancedParens, p.curt.Pos, fmt.Sprintf("expected %s got %s", close, p.curt.Kind))
				}
				p.next()
				return
			}
			depth -= 1
		}
		p.next()
	}
}

// parseParamList is entered after "(". "(void)" and "()" both yield
// an empty list. Parameters are kept exactly as written, no
// array-to-pointer decay.
func (p *parser) parseParamList() ([]Param, bool) {
	if p.curt.Kind == cpp.RPAREN {
		p.next()
		return nil, false
	}
	if p.curt.Kind == cpp.VOID && p.nextt.Kind == cpp.RPAREN {
		p.next()
		p.next()
		return nil, false
	}
	var params []Param
	variadic := false
	for {
		if p.curt.Kind == cpp.ELLIPSIS {
			variadic = true
			p.next()
			break
		}
		specs := p.parseDeclarationSpecifiers()
		name, _, build := p.parseDeclarator()
		params = append(params, Param{Name: name, Type: build(p.specBase(specs))})
		if p.curt.Kind == cpp.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(cpp.RPAREN)
	return params, variadic
}

// Declarations

func (p *parser) parseDeclaration(isGlobal bool) {
	specs := p.parseDeclarationSpecifiers()
	if p.curt.Kind == cpp.SEMICOLON {
		// A bare struct/union definition or stray specifiers,
		// nothing is declared.
		p.next()
		return
	}
	firstDecl := true
	for {
		name, pos, build := p.parseDeclarator()
		ty := build(p.specBase(specs))
		d := &Declaration{
			Name:    name,
			Pos:     pos,
			Storage: specs.storage,
			Inline:  specs.inline,
			Type:    ty,
		}
		if specs.storage&SC_TYPEDEF != 0 && name != "" {
			p.types.define(name, ty)
		}

		if firstDecl && isGlobal && p.curt.Kind == cpp.LBRACE && IsFuncType(ty) {
			d.HasBody = true
			p.parseBlock()
			p.decls = append(p.decls, d)
			return
		}

		if p.curt.Kind == cpp.ASSIGN {
			p.next()
			d.Init = p.readInitializerSpan()
		}
		if isGlobal {
			p.decls = append(p.decls, d)
		}
		if p.curt.Kind != cpp.COMMA {
			break
		}
		p.next()
		firstDecl = false
	}
	if p.curt.Kind != cpp.SEMICOLON {
		p.errorPos(MissingSemicolon, p.curt.Pos, fmt.Sprintf("got %s", p.curt.Kind))
	}
	p.next()
}

// readInitializerSpan consumes an initializer as an opaque balanced
// token span, stopping before the next top level ',' or ';'.
func (p *parser) readInitializerSpan() []*cpp.Token {
	var span []*cpp.Token
	depth := 0
	for {
		switch p.curt.Kind {
		case cpp.EOF:
			p.errorPos(MissingSemicolon, p.curt.Pos, "unexpected end of input in initializer")
		case cpp.LPAREN, cpp.LBRACK, cpp.LBRACE:
			depth += 1
		case cpp.RPAREN, cpp.RBRACK, cpp.RBRACE:
			if depth == 0 {
				p.errorPos(UnbalancedParens, p.curt.Pos, "in initializer")
			}
			depth -= 1
		case cpp.COMMA, cpp.SEMICOLON:
			if depth == 0 {
				if len(span) == 0 {
					p.errorPos(UnexpectedToken, p.curt.Pos, "empty initializer")
				}
				return span
			}
		}
		span = append(span, p.curt)
		p.next()
	}
}

// Statements
//
// Function bodies are parsed for syntax only; the emitted Declaration
// carries just the function type. Local declarations go through the
// same declaration machinery but are not collected.

func (p *parser) parseStatement() {
	if p.curt.Kind == cpp.IDENT && p.nextt.Kind == cpp.COLON {
		p.next()
		p.next()
		p.parseStatement()
		return
	}

	switch p.curt.Kind {
	case cpp.GOTO:
		p.next()
		p.expect(cpp.IDENT)
		p.expect(cpp.SEMICOLON)
	case cpp.SEMICOLON:
		p.next()
	case cpp.BREAK, cpp.CONTINUE:
		p.next()
		p.expect(cpp.SEMICOLON)
	case cpp.RETURN:
		p.next()
		if p.curt.Kind != cpp.SEMICOLON {
			p.parseExpression()
		}
		p.expect(cpp.SEMICOLON)
	case cpp.WHILE:
		p.parseWhile()
	case cpp.DO:
		p.parseDoWhile()
	case cpp.FOR:
		p.parseFor()
	case cpp.IF:
		p.parseIf()
	case cpp.LBRACE:
		p.parseBlock()
	default:
		if p.isDeclSpecStart(p.curt) {
			p.parseDeclaration(false)
			return
		}
		p.parseExpression()
		p.expect(cpp.SEMICOLON)
	}
}

func (p *parser) parseIf() {
	p.expect(cpp.IF)
	p.expect(cpp.LPAREN)
	p.parseExpression()
	p.expect(cpp.RPAREN)
	p.parseStatement()
	if p.curt.Kind == cpp.ELSE {
		p.next()
		p.parseStatement()
	}
}

func (p *parser) parseFor() {
	p.expect(cpp.FOR)
	p.expect(cpp.LPAREN)
	if p.curt.Kind != cpp.SEMICOLON {
		p.parseExpression()
	}
	p.expect(cpp.SEMICOLON)
	if p.curt.Kind != cpp.SEMICOLON {
		p.parseExpression()
	}
	p.expect(cpp.SEMICOLON)
	if p.curt.Kind != cpp.RPAREN {
		p.parseExpression()
	}
	p.expect(cpp.RPAREN)
	p.parseStatement()
}

func (p *parser) parseWhile() {
	p.expect(cpp.WHILE)
	p.expect(cpp.LPAREN)
	p.parseExpression()
	p.expect(cpp.RPAREN)
	p.parseStatement()
}

func (p *parser) parseDoWhile() {
	p.expect(cpp.DO)
	p.parseStatement()
	p.expect(cpp.WHILE)
	p.expect(cpp.LPAREN)
	p.parseExpression()
	p.expect(cpp.RPAREN)
	p.expect(cpp.SEMICOLON)
}

func (p *parser) parseBlock() {
	p.expect(cpp.LBRACE)
	p.types = newScope(p.types)
	for p.curt.Kind != cpp.RBRACE {
		if p.curt.Kind == cpp.EOF {
			p.errorPos(UnexpectedToken, p.curt.Pos, "unexpected end of input in block")
		}
		p.parseStatement()
	}
	p.types = p.types.parent
	p.expect(cpp.RBRACE)
}

// Expressions
//
// The usual C precedence ladder, checked for syntax and discarded.

func isAssignmentOperator(k cpp.TokenKind) bool {
	switch k {
	case cpp.ASSIGN, cpp.ADD_ASSIGN, cpp.SUB_ASSIGN, cpp.MUL_ASSIGN,
		cpp.QUO_ASSIGN, cpp.REM_ASSIGN, cpp.AND_ASSIGN, cpp.OR_ASSIGN,
		cpp.XOR_ASSIGN, cpp.SHL_ASSIGN, cpp.SHR_ASSIGN:
		return true
	}
	return false
}

func (p *parser) parseExpression() {
	for {
		p.parseAssignmentExpression()
		if p.curt.Kind != cpp.COMMA {
			break
		}
		p.next()
	}
}

func (p *parser) parseAssignmentExpression() {
	p.parseConditionalExpression()
	if isAssignmentOperator(p.curt.Kind) {
		p.next()
		p.parseAssignmentExpression()
	}
}

func (p *parser) parseConditionalExpression() {
	p.parseLogicalOrExpression()
	if p.curt.Kind == cpp.QUESTION {
		p.next()
		p.parseExpression()
		p.expect(cpp.COLON)
		p.parseConditionalExpression()
	}
}

func (p *parser) parseLogicalOrExpression() {
	p.parseLogicalAndExpression()
	for p.curt.Kind == cpp.LOR {
		p.next()
		p.parseLogicalAndExpression()
	}
}

func (p *parser) parseLogicalAndExpression() {
	p.parseInclusiveOrExpression()
	for p.curt.Kind == cpp.LAND {
		p.next()
		p.parseInclusiveOrExpression()
	}
}

func (p *parser) parseInclusiveOrExpression() {
	p.parseExclusiveOrExpression()
	for p.curt.Kind == cpp.OR {
		p.next()
		p.parseExclusiveOrExpression()
	}
}

func (p *parser) parseExclusiveOrExpression() {
	p.parseAndExpression()
	for p.curt.Kind == cpp.XOR {
		p.next()
		p.parseAndExpression()
	}
}

func (p *parser) parseAndExpression() {
	p.parseEqualityExpression()
	for p.curt.Kind == cpp.AND {
		p.next()
		p.parseEqualityExpression()
	}
}

func (p *parser) parseEqualityExpression() {
	p.parseRelationalExpression()
	for p.curt.Kind == cpp.EQL || p.curt.Kind == cpp.NEQ {
		p.next()
		p.parseRelationalExpression()
	}
}

func (p *parser) parseRelationalExpression() {
	p.parseShiftExpression()
	for p.curt.Kind == cpp.GTR || p.curt.Kind == cpp.LSS ||
		p.curt.Kind == cpp.LEQ || p.curt.Kind == cpp.GEQ {
		p.next()
		p.parseShiftExpression()
	}
}

func (p *parser) parseShiftExpression() {
	p.parseAdditiveExpression()
	for p.curt.Kind == cpp.SHL || p.curt.Kind == cpp.SHR {
		p.next()
		p.parseAdditiveExpression()
	}
}

func (p *parser) parseAdditiveExpression() {
	p.parseMultiplicativeExpression()
	for p.curt.Kind == cpp.ADD || p.curt.Kind == cpp.SUB {
		p.next()
		p.parseMultiplicativeExpression()
	}
}

func (p *parser) parseMultiplicativeExpression() {
	p.parseCastExpression()
	for p.curt.Kind == cpp.MUL || p.curt.Kind == cpp.QUO || p.curt.Kind == cpp.REM {
		p.next()
		p.parseCastExpression()
	}
}

func (p *parser) parseCastExpression() {
	if p.curt.Kind == cpp.LPAREN && p.isDeclSpecStart(p.nextt) {
		p.next()
		specs := p.parseDeclarationSpecifiers()
		_, _, build := p.parseDeclarator()
		build(p.specBase(specs))
		p.expect(cpp.RPAREN)
		p.parseCastExpression()
		return
	}
	p.parseUnaryExpression()
}

func (p *parser) parseUnaryExpression() {
	switch p.curt.Kind {
	case cpp.INC, cpp.DEC:
		p.next()
		p.parseUnaryExpression()
	case cpp.MUL, cpp.ADD, cpp.SUB, cpp.NOT, cpp.BNOT, cpp.AND:
		p.next()
		p.parseCastExpression()
	case cpp.SIZEOF:
		p.next()
		if p.curt.Kind == cpp.LPAREN && p.isDeclSpecStart(p.nextt) {
			p.next()
			specs := p.parseDeclarationSpecifiers()
			_, _, build := p.parseDeclarator()
			build(p.specBase(specs))
			p.expect(cpp.RPAREN)
			return
		}
		p.parseUnaryExpression()
	default:
		p.parsePostfixExpression()
	}
}

func (p *parser) parsePostfixExpression() {
	p.parsePrimaryExpression()
loop:
	for {
		switch p.curt.Kind {
		case cpp.LBRACK:
			p.next()
			p.parseExpression()
			p.expect(cpp.RBRACK)
		case cpp.PERIOD, cpp.ARROW:
			p.next()
			p.expect(cpp.IDENT)
		case cpp.LPAREN:
			p.next()
			if p.curt.Kind != cpp.RPAREN {
				for {
					p.parseAssignmentExpression()
					if p.curt.Kind == cpp.COMMA {
						p.next()
						continue
					}
					break
				}
			}
			p.expect(cpp.RPAREN)
		case cpp.INC, cpp.DEC:
			p.next()
		default:
			break loop
		}
	}
}

func (p *parser) parsePrimaryExpression() {
	switch p.curt.Kind {
	case cpp.IDENT, cpp.INT_CONSTANT, cpp.FLOAT_CONSTANT,
		cpp.CHAR_CONSTANT, cpp.STRING:
		p.next()
	case cpp.LPAREN:
		p.next()
		p.parseExpression()
		p.expect(cpp.RPAREN)
	default:
		p.errorPos(UnexpectedToken, p.curt.Pos,
			fmt.Sprintf("expected an identifier, constant, string or expression, got %s", p.curt.Kind))
	}
}
