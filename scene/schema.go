package scene

import "github.com/oxy-lang/pngb/token"

// FieldType constrains what a declaration field's value may resolve to.
// The field pass checks every declared field against its macro kind's
// schema after building the field's value, references already resolved.
type FieldType uint8

const (
	TAny FieldType = iota
	TInt
	TFloat
	TString
	TIdent
	TRef // any reference namespace; Schema.RefKinds narrows it
	TList
	TRecord
	// TDim is a texture dimension: an integer literal or one of the
	// canvas builtins (canvas.width, canvas.height) the platform resolves
	// at runtime.
	TDim
)

// canvasDims are the platform-resolved dimension sources a TDim field
// accepts in place of an integer literal.
var canvasDims = map[string]bool{
	"canvas.width":  true,
	"canvas.height": true,
}

// FieldSchema describes one named field a macro kind accepts.
type FieldSchema struct {
	Name     string
	Type     FieldType
	Required bool
	RefKinds []RefKind // non-empty narrows TRef to these namespaces
}

// MacroSchema is the full field table for one macro keyword.
type MacroSchema struct {
	Fields []FieldSchema
}

func (s MacroSchema) lookup(name string) (FieldSchema, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// schemas is the closed table of field schemas per macro keyword.
// Declarations not listed here (define, wasmCall) are handled by
// dedicated passes instead of the generic field-pass loop.
var schemas = map[token.Tag]MacroSchema{
	token.MacroBuffer: {Fields: []FieldSchema{
		{Name: "size", Type: TInt, Required: true},
		{Name: "usage", Type: TList, Required: true},
		{Name: "pool", Type: TInt, Required: false},
		{Name: "mappedAtCreation", Type: TIdent, Required: false},
		{Name: "initialData", Type: TRef, Required: false, RefKinds: []RefKind{RefData}},
		// uniforms is a list of {offset=int, size=int, source=ident}
		// records, one per live region of the buffer the dispatcher
		// refreshes every frame without an explicit opcode.
		{Name: "uniforms", Type: TList, Required: false},
	}},
	token.MacroTexture: {Fields: []FieldSchema{
		{Name: "width", Type: TDim, Required: true},
		{Name: "height", Type: TDim, Required: true},
		{Name: "format", Type: TIdent, Required: true},
		{Name: "usage", Type: TList, Required: true},
		{Name: "pool", Type: TInt, Required: false},
		{Name: "sampleCount", Type: TInt, Required: false},
		{Name: "mipLevelCount", Type: TInt, Required: false},
		// source names the external image/video bytes the platform uploads
		// into the texture; declaring one requires the texture plugin at
		// runtime.
		{Name: "source", Type: TRef, Required: false, RefKinds: []RefKind{RefData}},
	}},
	token.MacroSampler: {Fields: []FieldSchema{
		{Name: "magFilter", Type: TIdent, Required: false},
		{Name: "minFilter", Type: TIdent, Required: false},
		{Name: "addressModeU", Type: TIdent, Required: false},
		{Name: "addressModeV", Type: TIdent, Required: false},
	}},
	token.MacroWGSL: {Fields: []FieldSchema{
		{Name: "source", Type: TString, Required: true},
		{Name: "imports", Type: TList, Required: false},
	}},
	token.MacroBindGroupLayout: {Fields: []FieldSchema{
		{Name: "entries", Type: TList, Required: true},
	}},
	token.MacroPipelineLayout: {Fields: []FieldSchema{
		{Name: "bindGroupLayouts", Type: TList, Required: true},
	}},
	token.MacroRenderPipeline: {Fields: []FieldSchema{
		{Name: "layout", Type: TRef, Required: true, RefKinds: []RefKind{RefPipelineLayout}},
		{Name: "vertex", Type: TRef, Required: true, RefKinds: []RefKind{RefWGSL}},
		{Name: "vertexEntryPoint", Type: TString, Required: false},
		{Name: "fragment", Type: TRef, Required: false, RefKinds: []RefKind{RefWGSL}},
		{Name: "fragmentEntryPoint", Type: TString, Required: false},
		{Name: "topology", Type: TIdent, Required: false},
		{Name: "targets", Type: TList, Required: true},
		{Name: "primitive", Type: TRecord, Required: false},
		{Name: "depthStencil", Type: TRecord, Required: false},
		{Name: "multisample", Type: TRecord, Required: false},
		{Name: "uniformStruct", Type: TString, Required: false},
		{Name: "uniformLayout", Type: TRecord, Required: false},
	}},
	token.MacroComputePipeline: {Fields: []FieldSchema{
		{Name: "layout", Type: TRef, Required: true, RefKinds: []RefKind{RefPipelineLayout}},
		{Name: "compute", Type: TRef, Required: true, RefKinds: []RefKind{RefWGSL}},
		{Name: "computeEntryPoint", Type: TString, Required: false},
		{Name: "uniformStruct", Type: TString, Required: false},
		{Name: "uniformLayout", Type: TRecord, Required: false},
	}},
	token.MacroBindGroup: {Fields: []FieldSchema{
		{Name: "layout", Type: TRef, Required: true, RefKinds: []RefKind{RefBindGroupLayout}},
		{Name: "entries", Type: TList, Required: true},
		{Name: "pool", Type: TInt, Required: false},
	}},
	token.MacroRenderPass: {Fields: []FieldSchema{
		{Name: "colorAttachments", Type: TList, Required: true},
		{Name: "depthStencilAttachment", Type: TRecord, Required: false},
		{Name: "pipeline", Type: TRef, Required: true, RefKinds: []RefKind{RefRenderPipeline}},
		{Name: "bindGroups", Type: TList, Required: false},
		{Name: "draw", Type: TRecord, Required: false},
		{Name: "drawIndexed", Type: TRecord, Required: false},
		// ops is a generic escape hatch for an ordered list of sub-commands;
		// each entry is a record validated against ops_pass.go's op schemas.
		{Name: "ops", Type: TList, Required: false},
	}},
	token.MacroComputePass: {Fields: []FieldSchema{
		{Name: "pipeline", Type: TRef, Required: true, RefKinds: []RefKind{RefComputePipeline}},
		{Name: "bindGroups", Type: TList, Required: false},
		{Name: "dispatch", Type: TRecord, Required: false},
		{Name: "ops", Type: TList, Required: false},
	}},
	token.MacroFrame: {Fields: []FieldSchema{
		// A frame carries three ordered lists of pass references. An entry
		// may name a $renderPass, a $computePass, or a $queue declaration;
		// anything else fails the frame pass.
		{Name: "before", Type: TList, Required: false},
		{Name: "init", Type: TList, Required: false},
		{Name: "perform", Type: TList, Required: false},
	}},
	token.MacroQueue: {Fields: []FieldSchema{
		{Name: "ops", Type: TList, Required: true},
	}},
	token.MacroAnimation: {Fields: []FieldSchema{
		// target names the $frame this timeline entry drives. The emitted
		// animation row is (scene_id, start_ms, duration_ms, frame_id);
		// scene_id is this declaration's own dense id.
		{Name: "target", Type: TRef, Required: true, RefKinds: []RefKind{RefFrame}},
		{Name: "start", Type: TFloat, Required: false},
		{Name: "duration", Type: TFloat, Required: true},
		{Name: "easing", Type: TIdent, Required: false},
	}},
}
