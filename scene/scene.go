// Package scene implements the analyzer: it takes a parsed ast.Tree,
// validates it against the field schema per macro kind, resolves every
// reference into a typed (kind, id) pair, checks WGSL import cycles, pool
// and frame/queue consistency, and computes the plugin capability bitfield
// the emitter will need for the PNGB header.
package scene

import "github.com/oxy-lang/pngb/token"

// Plugin is a single bit in the PNGB header's plugin bitfield: the flags
// a runtime needs to check before it can execute the module at all. Bits
// are additive; a module with no optional capabilities sets none of them.
type Plugin uint8

const (
	PluginRender Plugin = 1 << iota
	PluginCompute
	PluginAnimation
	PluginWasm
	PluginTexture
)

// Scene is the fully analyzed program: every declaration resolved and
// validated, ready for the emitter to lower into PNGB bytes.
type Scene struct {
	Buffers          []Decl
	Textures         []Decl
	Samplers         []Decl
	WGSL             []Decl
	BindGroupLayouts []Decl
	PipelineLayouts  []Decl
	RenderPipelines  []Decl
	ComputePipelines []Decl
	BindGroups       []Decl
	RenderPasses     []Decl
	ComputePasses    []Decl
	Frames           []Decl
	Queues           []Decl
	Animations       []Decl
	WasmCalls        []WasmCallDecl

	// Defines holds folded #define constants, name -> literal Value.
	Defines map[string]Value

	// DataNames and StringNames hold the $data.*/$string.* table names in
	// id order, populated by the plugin pass once every reference has been
	// seen.
	DataNames   []string
	StringNames []string

	// WGSLImports is WGSL decl index -> the indices of WGSL decls it
	// imports, resolved by name, for the dispatcher's dependency
	// ordering and already verified acyclic.
	WGSLImports [][]uint32

	// UniformEntries is the flattened uniform table: every buffer-declared
	// "uniforms" region, in declaration order. The dispatcher refreshes
	// these every frame, outside the opcode stream.
	UniformEntries []UniformEntry

	Plugins Plugin
}

// UniformEntry is one resolved region of a buffer the dispatcher keeps
// current every frame: (buffer_id, field_offset, field_size, source_tag).
type UniformEntry struct {
	BufferID uint32
	Offset   uint32
	Size     uint32
	Source   string
}

// BuiltinUniformSources names the source tags the dispatcher computes
// itself from frame inputs; anything else is a user-named uniform
// supplied via the dispatcher's Frame inputs map.
var BuiltinUniformSources = map[string]bool{
	"time": true, "width": true, "height": true, "aspect": true,
	"sceneTime": true, "sceneDuration": true, "normalizedTime": true,
}

// WasmCallDecl is a #wasmCall declaration: it names a host export and the
// data blob passed to it, gated behind PluginWasm.
type WasmCallDecl struct {
	Name      string
	NameToken token.Index
	Export    string
	DataRef   Ref
}

func (s *Scene) declSliceFor(tag token.Tag) *[]Decl {
	switch tag {
	case token.MacroBuffer:
		return &s.Buffers
	case token.MacroTexture:
		return &s.Textures
	case token.MacroSampler:
		return &s.Samplers
	case token.MacroWGSL:
		return &s.WGSL
	case token.MacroBindGroupLayout:
		return &s.BindGroupLayouts
	case token.MacroPipelineLayout:
		return &s.PipelineLayouts
	case token.MacroRenderPipeline:
		return &s.RenderPipelines
	case token.MacroComputePipeline:
		return &s.ComputePipelines
	case token.MacroBindGroup:
		return &s.BindGroups
	case token.MacroRenderPass:
		return &s.RenderPasses
	case token.MacroComputePass:
		return &s.ComputePasses
	case token.MacroFrame:
		return &s.Frames
	case token.MacroQueue:
		return &s.Queues
	case token.MacroAnimation:
		return &s.Animations
	default:
		return nil
	}
}
