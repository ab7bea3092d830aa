package parse

import (
	"fmt"
	"strings"
)

// CanonString renders a declaration back into canonical C. The output
// is normalized (one space between words, "(void)" for empty
// parameter lists, struct bodies spelled out when complete) and
// re-parsing it yields a structurally identical Declaration, as long
// as no typedef names are involved.
func CanonString(d *Declaration) string {
	var sb strings.Builder
	storage := d.Storage.String()
	if storage != "" {
		sb.WriteString(storage)
		sb.WriteString(" ")
	}
	if d.Inline {
		sb.WriteString("inline ")
	}
	sb.WriteString(declString(d.Type, d.Name))
	sb.WriteString(";")
	return sb.String()
}

// TypeString renders a bare type the way it would appear in a cast,
// i.e. with an abstract declarator.
func TypeString(t CType) string {
	return declString(t, "")
}

// declString implements the usual inside out unparse: the declarator
// string grows around the name, and postfix suffixes force parens
// around any pointer already accumulated.
func declString(t CType, inner string) string {
	switch t := t.(type) {
	case *Primitive:
		return joinSpec(primitiveSpec(t), inner)
	case *Struct:
		return joinSpec(structSpec(t), inner)
	case *TypedefRef:
		return joinSpec(typedefSpec(t), inner)
	case *Ptr:
		star := "*"
		if t.Const {
			star += "const"
		}
		if t.Volatile {
			star += "volatile"
		}
		if t.Const || t.Volatile {
			if inner != "" {
				star += " "
			}
		}
		return declString(t.PointsTo, star+inner)
	case *Array:
		if strings.HasPrefix(inner, "*") {
			inner = "(" + inner + ")"
		}
		if t.HasDim {
			inner = fmt.Sprintf("%s[%d]", inner, t.Dim)
		} else {
			inner = inner + "[]"
		}
		return declString(t.MemberType, inner)
	case *FunctionType:
		if strings.HasPrefix(inner, "*") {
			inner = "(" + inner + ")"
		}
		inner = inner + "(" + paramListString(t) + ")"
		return declString(t.RetType, inner)
	default:
		panic("internal bug")
	}
}

func joinSpec(spec, inner string) string {
	if inner == "" {
		return spec
	}
	return spec + " " + inner
}

func paramListString(t *FunctionType) string {
	if len(t.Params) == 0 && !t.IsVarArg {
		return "void"
	}
	parts := make([]string, 0, len(t.Params)+1)
	for _, param := range t.Params {
		parts = append(parts, declString(param.Type, param.Name))
	}
	if t.IsVarArg {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

func primitiveSpec(t *Primitive) string {
	var parts []string
	if t.Const {
		parts = append(parts, "const")
	}
	if t.Volatile {
		parts = append(parts, "volatile")
	}
	if t.Unsigned {
		parts = append(parts, "unsigned")
	}
	parts = append(parts, t.Kind.String())
	return strings.Join(parts, " ")
}

func structSpec(t *Struct) string {
	var parts []string
	if t.Const {
		parts = append(parts, "const")
	}
	if t.Volatile {
		parts = append(parts, "volatile")
	}
	if t.IsUnion {
		parts = append(parts, "union")
	} else {
		parts = append(parts, "struct")
	}
	if t.Tag != "" {
		parts = append(parts, t.Tag)
	}
	if t.Complete {
		var body strings.Builder
		body.WriteString("{")
		for _, f := range t.Fields {
			body.WriteString(" ")
			body.WriteString(declString(f.Type, f.Name))
			body.WriteString(";")
		}
		body.WriteString(" }")
		parts = append(parts, body.String())
	}
	return strings.Join(parts, " ")
}

func typedefSpec(t *TypedefRef) string {
	var parts []string
	if t.Const {
		parts = append(parts, "const")
	}
	if t.Volatile {
		parts = append(parts, "volatile")
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, " ")
}

// Explain renders a declaration in the style of cdecl:
//
//	void (*f[4])(void)[5];
//
// becomes
//
//	declare f as array 4 of pointer to function (void) returning array 5 of void
func Explain(d *Declaration) string {
	var sb strings.Builder
	sb.WriteString("declare ")
	if d.Name == "" {
		sb.WriteString("(anonymous)")
	} else {
		sb.WriteString(d.Name)
	}
	sb.WriteString(" as ")
	storage := d.Storage.String()
	if storage != "" {
		sb.WriteString(storage)
		sb.WriteString(" ")
	}
	if d.Inline {
		sb.WriteString("inline ")
	}
	sb.WriteString(ExplainType(d.Type))
	return sb.String()
}

// ExplainType renders a type as an English phrase, outermost
// constructor first.
func ExplainType(t CType) string {
	switch t := t.(type) {
	case *Primitive:
		return primitiveSpec(t)
	case *Struct:
		var parts []string
		if t.Const {
			parts = append(parts, "const")
		}
		if t.Volatile {
			parts = append(parts, "volatile")
		}
		if t.IsUnion {
			parts = append(parts, "union")
		} else {
			parts = append(parts, "struct")
		}
		if t.Tag != "" {
			parts = append(parts, t.Tag)
		}
		return strings.Join(parts, " ")
	case *TypedefRef:
		return typedefSpec(t) + " (aka " + ExplainType(t.Type) + ")"
	case *Ptr:
		quals := ""
		if t.Const {
			quals = "const "
		}
		if t.Volatile {
			quals += "volatile "
		}
		return quals + "pointer to " + ExplainType(t.PointsTo)
	case *Array:
		if t.HasDim {
			return fmt.Sprintf("array %d of %s", t.Dim, ExplainType(t.MemberType))
		}
		return "array of " + ExplainType(t.MemberType)
	case *FunctionType:
		return "function (" + paramListString(t) + ") returning " + ExplainType(t.RetType)
	default:
		panic("internal bug")
	}
}
