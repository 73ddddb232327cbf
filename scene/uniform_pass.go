package scene

import "github.com/oxy-lang/pngb/diag"

// UniformSize is attached to a pipeline Decl's Fields under this key once
// the uniform layout pass resolves a byte size for it, either via the
// reflector or by summing a user-declared layout record.
const uniformSizeField = "__uniformSize"

// uniformLayoutPass derives a uniform block's byte size for every
// pipeline that names one, preferring the optional Reflector over a
// hand-declared layout. A pipeline that names a uniform struct but has
// neither gets no computed size and a Warning diagnostic; the emitter then
// leaves the size out of its descriptor.
func (a *analyzer) uniformLayoutPass() {
	a.resolveUniformSize(a.scene.RenderPipelines)
	a.resolveUniformSize(a.scene.ComputePipelines)
}

func (a *analyzer) resolveUniformSize(decls []Decl) {
	for i := range decls {
		d := &decls[i]
		structName, hasStruct := d.field("uniformStruct")
		if !hasStruct {
			continue
		}

		wgslRef, ok := d.field("vertex")
		if !ok {
			wgslRef, ok = d.field("compute")
		}
		if !ok || wgslRef.Kind != ValRef {
			continue
		}

		if a.reflector != nil {
			src := a.wgslSource(wgslRef.Ref.ID)
			if size, ok := a.reflector.Reflect(src, structName.Str); ok {
				d.Fields[uniformSizeField] = Value{Kind: ValInt, Int: int64(size)}
				continue
			}
		}

		if layout, ok := d.field("uniformLayout"); ok {
			d.Fields[uniformSizeField] = Value{Kind: ValInt, Int: int64(sumLayoutSize(layout))}
			continue
		}

		a.diags = append(a.diags, diag.New(diag.Warning, a.tree.TokenRange(d.DeclToken),
			"%s %q names uniform struct %q but has no reflector result and no uniformLayout fallback",
			d.Tag, d.Name, structName.Str))
	}
}

// uniformTablePass flattens every buffer's optional "uniforms" field
// (list of {offset, size, source} records) into Scene.UniformEntries, in
// buffer declaration order.
func (a *analyzer) uniformTablePass() {
	for bufID := range a.scene.Buffers {
		d := &a.scene.Buffers[bufID]
		uniforms, ok := d.field("uniforms")
		if !ok {
			continue
		}
		for _, entry := range uniforms.List {
			if entry.Kind != ValRecord {
				a.errorf(diag.TypeMismatch, a.tree.TokenRange(d.DeclToken),
					"buffer %q has a non-record entry in its uniforms list", d.Name)
				continue
			}
			off, hasOff := entry.Fields["offset"]
			size, hasSize := entry.Fields["size"]
			src, hasSrc := entry.Fields["source"]
			if !hasOff || !hasSize || !hasSrc || off.Kind != ValInt || size.Kind != ValInt || src.Kind != ValIdent {
				a.errorf(diag.MissingField, a.tree.TokenRange(d.DeclToken),
					"buffer %q uniforms entry needs integer \"offset\"/\"size\" and ident \"source\"", d.Name)
				continue
			}
			a.scene.UniformEntries = append(a.scene.UniformEntries, UniformEntry{
				BufferID: uint32(bufID),
				Offset:   uint32(off.Int),
				Size:     uint32(size.Int),
				Source:   src.Ident,
			})
		}
	}
}

func (a *analyzer) wgslSource(id uint32) string {
	if int(id) >= len(a.scene.WGSL) {
		return ""
	}
	if v, ok := a.scene.WGSL[id].field("source"); ok {
		return v.Str
	}
	return ""
}

// sumLayoutSize totals a user-declared `{field = size, ...}` layout
// record's integer field values, the fallback used when no reflector is
// configured.
func sumLayoutSize(layout Value) uint32 {
	var total uint32
	for _, v := range layout.Fields {
		if v.Kind == ValInt {
			total += uint32(v.Int)
		}
	}
	return total
}
