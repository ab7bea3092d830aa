package parse

// scope is a lexical name table for typedef names. A child scope is
// pushed per block and the chain only exists for the duration of one
// Parse call.
type scope struct {
	parent *scope
	kv     map[string]CType
}

func newScope(parent *scope) *scope {
	return &scope{
		parent: parent,
		kv:     make(map[string]CType),
	}
}

func (s *scope) lookup(k string) (CType, bool) {
	ty, ok := s.kv[k]
	if ok {
		return ty, true
	}
	if s.parent != nil {
		return s.parent.lookup(k)
	}
	return nil, false
}

func (s *scope) define(k string, ty CType) {
	s.kv[k] = ty
}
