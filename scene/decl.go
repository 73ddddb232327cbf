package scene

import (
	"github.com/oxy-lang/pngb/ast"
	"github.com/oxy-lang/pngb/token"
)

// Decl is one top-level macro declaration, captured during the declare
// pass before its fields are type-checked or its references resolved.
type Decl struct {
	Name      string
	Tag       token.Tag
	NameToken token.Index
	DeclToken token.Index // the macro keyword token, for diagnostics

	// FieldsRaw maps field name to its value node, as written. Populated
	// by the declare pass; consumed by the field pass.
	FieldsRaw map[string]ast.NodeId
	// fieldToks maps field name to the field's name token, for diagnostics
	// that need to point at the field rather than the whole declaration.
	fieldToks map[string]token.Index

	// Fields holds the resolved values once the field pass has run.
	Fields map[string]Value
}

func (d *Decl) field(name string) (Value, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// Field looks up a resolved field value by name; the emitter uses this to
// read schema fields without reaching into the unexported Fields map
// directly, matching how the analyzer's own passes read them.
func (d Decl) Field(name string) (Value, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// UniformSize returns the byte size the uniform layout pass computed for
// this pipeline declaration, if any (see uniform_pass.go).
func (d Decl) UniformSize() (uint32, bool) {
	v, ok := d.Fields[uniformSizeField]
	if !ok {
		return 0, false
	}
	return uint32(v.Int), true
}

// namespaceTagToRefKind maps a declaration's macro Tag to the RefKind
// other declarations use to refer to it.
var namespaceTagToRefKind = map[token.Tag]RefKind{
	token.MacroBuffer:          RefBuffer,
	token.MacroTexture:         RefTexture,
	token.MacroSampler:         RefSampler,
	token.MacroWGSL:            RefWGSL,
	token.MacroBindGroupLayout: RefBindGroupLayout,
	token.MacroPipelineLayout:  RefPipelineLayout,
	token.MacroRenderPipeline:  RefRenderPipeline,
	token.MacroComputePipeline: RefComputePipeline,
	token.MacroBindGroup:       RefBindGroup,
	token.MacroRenderPass:      RefRenderPass,
	token.MacroComputePass:     RefComputePass,
	token.MacroFrame:           RefFrame,
	token.MacroQueue:           RefQueue,
	token.MacroAnimation:       RefAnimation,
}
