package scene

import "github.com/oxy-lang/pngb/diag"

// opSchemas is the field table for one entry of a pass/queue's "ops"
// list; the record names lower one-to-one onto the pass and queue
// opcodes. Validating them here, rather than in the emitter, keeps
// emission infallible on a validated scene.
var opSchemas = map[string]MacroSchema{
	"setPipeline": {Fields: []FieldSchema{
		{Name: "pipeline", Type: TRef, Required: true},
	}},
	"setBindGroup": {Fields: []FieldSchema{
		{Name: "slot", Type: TInt, Required: true},
		{Name: "bindGroup", Type: TRef, Required: true, RefKinds: []RefKind{RefBindGroup}},
		{Name: "pingPong", Type: TInt, Required: false},
	}},
	"setVertexBuffer": {Fields: []FieldSchema{
		{Name: "slot", Type: TInt, Required: true},
		{Name: "buffer", Type: TRef, Required: true, RefKinds: []RefKind{RefBuffer}},
		{Name: "pingPong", Type: TInt, Required: false},
	}},
	"setIndexBuffer": {Fields: []FieldSchema{
		{Name: "buffer", Type: TRef, Required: true, RefKinds: []RefKind{RefBuffer}},
		{Name: "format", Type: TIdent, Required: false},
	}},
	"draw": {Fields: []FieldSchema{
		{Name: "vertexCount", Type: TInt, Required: true},
		{Name: "instanceCount", Type: TInt, Required: false},
	}},
	"drawIndexed": {Fields: []FieldSchema{
		{Name: "indexCount", Type: TInt, Required: true},
		{Name: "instanceCount", Type: TInt, Required: false},
	}},
	"dispatch": {Fields: []FieldSchema{
		{Name: "x", Type: TInt, Required: true},
		{Name: "y", Type: TInt, Required: false},
		{Name: "z", Type: TInt, Required: false},
	}},
	"writeBuffer": {Fields: []FieldSchema{
		{Name: "buffer", Type: TRef, Required: true, RefKinds: []RefKind{RefBuffer}},
		{Name: "offset", Type: TInt, Required: false},
		{Name: "data", Type: TRef, Required: true, RefKinds: []RefKind{RefData}},
	}},
	"writeTimeUniform": {Fields: []FieldSchema{
		{Name: "buffer", Type: TRef, Required: true, RefKinds: []RefKind{RefBuffer}},
	}},
	"submit": {Fields: nil},
}

// opsPass validates the optional "ops" list every render pass, compute
// pass, and queue declaration may carry.
func (a *analyzer) opsPass() {
	a.checkOpsField(a.scene.RenderPasses)
	a.checkOpsField(a.scene.ComputePasses)
	a.checkOpsField(a.scene.Queues)
}

func (a *analyzer) checkOpsField(decls []Decl) {
	for _, d := range decls {
		ops, ok := d.field("ops")
		if !ok {
			continue
		}
		for _, entry := range ops.List {
			a.checkOpRecord(d, entry)
		}
	}
}

func (a *analyzer) checkOpRecord(d Decl, v Value) {
	if v.Kind != ValRecord {
		a.errorf(diag.TypeMismatch, a.tree.TokenRange(d.DeclToken),
			"%s %q has a non-record entry in its ops list", d.Tag, d.Name)
		return
	}
	opName, ok := v.Fields["op"]
	if !ok || opName.Kind != ValIdent {
		a.errorf(diag.MissingField, a.tree.TokenRange(d.DeclToken),
			"%s %q has an ops entry with no \"op\" name", d.Tag, d.Name)
		return
	}
	schema, known := opSchemas[opName.Ident]
	if !known {
		a.errorf(diag.UnknownField, a.tree.TokenRange(d.DeclToken),
			"%s %q has an ops entry with unknown op %q", d.Tag, d.Name, opName.Ident)
		return
	}
	for _, fs := range schema.Fields {
		fv, present := v.Fields[fs.Name]
		if !present {
			if fs.Required {
				a.errorf(diag.MissingField, a.tree.TokenRange(d.DeclToken),
					"%s %q op %q missing required field %q", d.Tag, d.Name, opName.Ident, fs.Name)
			}
			continue
		}
		if !valueMatchesType(fv, fs) {
			a.errorf(diag.TypeMismatch, a.tree.TokenRange(d.DeclToken),
				"%s %q op %q field %q has the wrong type", d.Tag, d.Name, opName.Ident, fs.Name)
		}
	}
	for name := range v.Fields {
		if name == "op" {
			continue
		}
		if _, known := schema.lookup(name); !known {
			a.errorf(diag.UnknownField, a.tree.TokenRange(d.DeclToken),
				"%s %q op %q has no field %q", d.Tag, d.Name, opName.Ident, name)
		}
	}
}

func valueMatchesType(v Value, fs FieldSchema) bool {
	switch fs.Type {
	case TAny:
		return true
	case TInt:
		return v.Kind == ValInt
	case TFloat:
		return v.Kind == ValInt || v.Kind == ValFloat
	case TString:
		return v.Kind == ValString
	case TIdent:
		return v.Kind == ValIdent
	case TRef:
		if v.Kind != ValRef {
			return false
		}
		if len(fs.RefKinds) == 0 {
			return true
		}
		for _, k := range fs.RefKinds {
			if v.Ref.Kind == k {
				return true
			}
		}
		return false
	case TList:
		return v.Kind == ValList
	case TRecord:
		return v.Kind == ValRecord
	case TDim:
		return v.Kind == ValInt || (v.Kind == ValIdent && canvasDims[v.Ident])
	}
	return false
}
