package parse

import "github.com/Imperatorn/ctod/cpp"

// CType is the structural representation of a C type. The variants
// form a strict tree with a single owner and never share nodes, so
// two independently parsed types compare with deep equality.
// Positions are deliberately kept out of type nodes.
type CType interface {
	ctype()
}

type PrimitiveKind int

const (
	Void PrimitiveKind = iota
	Bool
	Char
	Short
	Int
	Long
	LLong
	Float
	Double
	LDouble
)

var primitiveKindToStr = [...]string{
	Void:    "void",
	Bool:    "_Bool",
	Char:    "char",
	Short:   "short",
	Int:     "int",
	Long:    "long",
	LLong:   "long long",
	Float:   "float",
	Double:  "double",
	LDouble: "long double",
}

func (k PrimitiveKind) String() string {
	if int(k) >= len(primitiveKindToStr) {
		return "?"
	}
	return primitiveKindToStr[k]
}

// Primitive is a builtin base type after specifier merging, e.g.
// "unsigned long long int" becomes {Kind: LLong, Unsigned: true}.
type Primitive struct {
	Kind     PrimitiveKind
	Unsigned bool
	Const    bool
	Volatile bool
}

func (*Primitive) ctype() {}

// Ptr is a pointer level. Const/Volatile qualify the pointer itself
// (the "* const" position), not the pointee.
type Ptr struct {
	PointsTo CType
	Const    bool
	Volatile bool
}

func (*Ptr) ctype() {}

// Array is one array dimension. HasDim is false both for [] and for
// dimension expressions that are not plain integer literals; those
// are treated as opaque unbounded markers.
type Array struct {
	MemberType CType
	Dim        int64
	HasDim     bool
}

func (*Array) ctype() {}

type Param struct {
	Name string
	Type CType
}

type FunctionType struct {
	RetType  CType
	Params   []Param
	IsVarArg bool
}

func (*FunctionType) ctype() {}

type Field struct {
	Name string
	Type CType
}

// Struct is a struct or union. A tag reference without a body has
// Complete false and nil Fields.
type Struct struct {
	Tag      string
	Fields   []Field
	Complete bool
	IsUnion  bool
	Const    bool
	Volatile bool
}

func (*Struct) ctype() {}

// TypedefRef is a use of a typedef name. Type is the registered
// underlying type at the point of use.
type TypedefRef struct {
	Name     string
	Type     CType
	Const    bool
	Volatile bool
}

func (*TypedefRef) ctype() {}

// SClass is a bit set of storage class specifiers. C permits at most
// one, but the parser is structural and keeps whatever was written
// ("static register" appears in the wild).
type SClass int

const (
	SC_AUTO     SClass = 0
	SC_TYPEDEF  SClass = 1 << 0
	SC_EXTERN   SClass = 1 << 1
	SC_STATIC   SClass = 1 << 2
	SC_REGISTER SClass = 1 << 3
)

func (sc SClass) String() string {
	s := ""
	if sc&SC_TYPEDEF != 0 {
		s += "typedef "
	}
	if sc&SC_EXTERN != 0 {
		s += "extern "
	}
	if sc&SC_STATIC != 0 {
		s += "static "
	}
	if sc&SC_REGISTER != 0 {
		s += "register "
	}
	if s == "" {
		return ""
	}
	return s[:len(s)-1]
}

// Declaration is one declared identifier: the merged specifier set
// folded together with its declarator type tree. Init, when present,
// is the unparsed initializer token span.
type Declaration struct {
	Name    string
	Pos     cpp.FilePos
	Storage SClass
	Inline  bool
	Type    CType
	Init    []*cpp.Token
	// HasBody marks a function definition rather than a prototype.
	HasBody bool
}

func IsPtrType(t CType) bool {
	_, ok := t.(*Ptr)
	return ok
}

func IsArrayType(t CType) bool {
	_, ok := t.(*Array)
	return ok
}

func IsFuncType(t CType) bool {
	_, ok := t.(*FunctionType)
	return ok
}
