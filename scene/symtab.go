package scene

import "github.com/oxy-lang/pngb/token"

// symtab is one namespace's name -> dense-index table. Each reference
// namespace has its own, so names do not collide across namespaces.
type symtab struct {
	index map[string]uint32
}

func newSymtab() *symtab {
	return &symtab{index: make(map[string]uint32)}
}

// declare records name -> id, returning false if name was already present
// (the caller reports DuplicateDecl; the first declaration wins so later
// references still resolve to something).
func (s *symtab) declare(name string, id uint32) bool {
	if _, exists := s.index[name]; exists {
		return false
	}
	s.index[name] = id
	return true
}

func (s *symtab) lookup(name string) (uint32, bool) {
	id, ok := s.index[name]
	return id, ok
}

// namespaces bundles the per-RefKind symbol tables the declare pass
// populates and the field/reference-resolution pass consults.
type namespaces struct {
	tables map[RefKind]*symtab
}

func newNamespaces() *namespaces {
	n := &namespaces{tables: make(map[RefKind]*symtab)}
	for k := range refKindNames {
		n.tables[k] = newSymtab()
	}
	return n
}

func (n *namespaces) declare(k RefKind, name string, id uint32) bool {
	return n.tables[k].declare(name, id)
}

func (n *namespaces) lookup(k RefKind, name string) (uint32, bool) {
	return n.tables[k].lookup(name)
}

// refKindForTag is a small indirection so callers can go from a macro's
// token.Tag straight to the RefKind other declarations use to address it.
func refKindForTag(tag token.Tag) (RefKind, bool) {
	k, ok := namespaceTagToRefKind[tag]
	return k, ok
}
