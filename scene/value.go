package scene

// ValueKind tags a resolved field Value's dynamic type, post field-pass.
type ValueKind uint8

const (
	ValInt ValueKind = iota
	ValFloat
	ValString
	ValIdent // bare enum-style identifier, e.g. VERTEX
	ValRef
	ValList
	ValRecord
)

// Value is a fully resolved field value: literals carry their Go-native
// form, references carry a resolved Ref, and List/Record carry nested
// Values (the ast.Tree is no longer needed once a Value tree is built).
type Value struct {
	Kind ValueKind

	Int    int64
	Float  float64
	Str    string
	Ident  string
	Ref    Ref
	List   []Value
	Fields map[string]Value
}

// Int32 narrows Int to int32. Nothing in this module calls it; the
// emitter narrows field values with plain conversions.
func (v Value) Int32() int32 { return int32(v.Int) }

// AsFloat returns a numeric field's value regardless of whether it lexed
// as an integer or float literal; TFloat-schema fields accept both.
func (v Value) AsFloat() float64 {
	if v.Kind == ValFloat {
		return v.Float
	}
	return float64(v.Int)
}
