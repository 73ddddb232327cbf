// Package ast defines the compact, structure-of-arrays AST produced by the
// parser. There are no per-node allocations: nodes live in a single
// slice indexed by NodeId, and any node needing more than two children
// overflows into a shared ExtraData buffer as a half-open range.
package ast

import "github.com/oxy-lang/pngb/token"

// NodeId indexes into a Tree's Nodes slice.
type NodeId uint32

// NoNode is the sentinel NodeId, the maximum value of the type.
const NoNode NodeId = ^NodeId(0)

// Tag identifies what kind of node an entry is. Records reuse List (see
// Parser docs).
type Tag uint8

const (
	// List holds a half-open range [Lhs, Rhs) into ExtraData of child
	// NodeIds. Used both for bracketed value lists (`[a, b]`) and for
	// brace-delimited field lists (a macro body or a record value) whose
	// ExtraData entries are Field nodes instead of bare value nodes.
	// SourceToken points at the opening '[' or '{'.
	List Tag = iota

	// MacroDecl is a top-level `#keyword name { ... }` declaration.
	// SourceToken is the macro keyword token (its Tag identifies which
	// macro kind). Lhs is the token index of the name identifier. Rhs is
	// the NodeId of the List node holding the declaration's fields.
	MacroDecl

	// Field is `ident = value`. SourceToken is the field name identifier
	// token. Lhs is the NodeId of the value node.
	Field

	// Reference is an atomic `$ns.name` token. SourceToken is that token.
	Reference

	// String is a double-quoted string literal token.
	String

	// Number is an integer or float literal token.
	Number

	// Ident is a bare identifier used as an enum-style value (e.g. VERTEX
	// in `usage=[VERTEX,INDEX]`), distinct from a quoted String and from
	// the identifiers consumed directly as macro/field names.
	Ident
)

// Node is one structure-of-arrays entry: (tag, lhs, rhs, source_token).
// The meaning of Lhs/Rhs is documented per Tag above.
type Node struct {
	Tag         Tag
	SourceToken token.Index
	Lhs, Rhs    uint32
}

// Tree is the parser's output: a compact node array plus the ExtraData
// overflow buffer, alongside the token stream and source bytes needed to
// recover text. Nodes[0] is always the root List of top-level MacroDecl
// ids.
type Tree struct {
	Source    []byte
	Tokens    []token.Token
	Nodes     []Node
	ExtraData []uint32
}

// Root returns the NodeId of the tree's root node (always 0).
func (t *Tree) Root() NodeId { return 0 }

// Node returns the Node at id.
func (t *Tree) Node(id NodeId) Node { return t.Nodes[id] }

// ListRange returns the ExtraData range for a List node as NodeIds.
func (t *Tree) ListRange(n Node) []NodeId {
	ids := make([]NodeId, 0, n.Rhs-n.Lhs)
	for _, v := range t.ExtraData[n.Lhs:n.Rhs] {
		ids = append(ids, NodeId(v))
	}
	return ids
}

// TokenText slices Source to recover a token's raw text.
func (t *Tree) TokenText(idx token.Index) []byte {
	return t.Tokens[idx].Range.Text(t.Source)
}

// TokenRange returns the source Range spanned by a token, for diagnostics.
func (t *Tree) TokenRange(idx token.Index) token.Range {
	return t.Tokens[idx].Range
}
