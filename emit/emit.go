// Package emit implements the bytecode emitter: it lowers an analyzed
// scene.Scene into a pngb.Build, ready for pngb.Encode. Emission is
// infallible on a validated scene except for one runtime-environment
// dependency: named $data references need their actual byte content
// supplied by the caller, since the DSL itself only ever names data, never
// embeds it (there is no byte-literal syntax).
package emit

import (
	"encoding/json"
	"fmt"

	"github.com/oxy-lang/pngb/pngb"
	"github.com/oxy-lang/pngb/scene"
)

// Assets supplies the raw bytes behind every $data.* name the scene
// references (vertex/index data, textures, wasm call payloads, ...).
// Compile's caller builds this from whatever asset pipeline surrounds the
// DSL; the compiler itself has no opinion on where bytes come from.
type Assets map[string][]byte

type emitter struct {
	scene  *scene.Scene
	assets Assets

	ops    []byte
	nextID uint32

	wgslGlobalID  []uint32 // scene WGSL index -> global resource id
	wgslTableIdx  []uint32 // scene WGSL index -> pngb WGSL table index
	bufferID      []uint32
	textureID     []uint32
	samplerID     []uint32
	bglID         []uint32
	plID          []uint32
	renderPipeID  []uint32
	computePipeID []uint32
	bindGroupID   []uint32
	renderPassID  []uint32
	computePassID []uint32

	data      [][]byte
	wgslTable []pngb.WGSLEntry
	uniforms  []pngb.UniformEntry
	anims     []pngb.AnimEntry

	strings   []string
	stringIdx map[string]uint32
}

// Emit lowers an analyzed Scene into a pngb.Build. The scene must already
// be the product of a successful scene.Analyze call (no diagnostics, or
// only Warning-kind ones); emit does not re-validate field shapes.
func Emit(s *scene.Scene, assets Assets) (pngb.Build, error) {
	e := &emitter{
		scene:     s,
		assets:    assets,
		stringIdx: make(map[string]uint32),
	}

	if err := e.emitWGSL(); err != nil {
		return pngb.Build{}, err
	}
	if err := e.emitBuffers(); err != nil {
		return pngb.Build{}, err
	}
	if err := e.emitTextures(); err != nil {
		return pngb.Build{}, err
	}
	e.emitSamplers()
	if err := e.emitBindGroupLayouts(); err != nil {
		return pngb.Build{}, err
	}
	e.emitPipelineLayouts()
	if err := e.emitRenderPipelines(); err != nil {
		return pngb.Build{}, err
	}
	if err := e.emitComputePipelines(); err != nil {
		return pngb.Build{}, err
	}
	if err := e.emitBindGroups(); err != nil {
		return pngb.Build{}, err
	}
	if err := e.emitPassDefinitions(); err != nil {
		return pngb.Build{}, err
	}
	if err := e.emitWasmCalls(); err != nil {
		return pngb.Build{}, err
	}
	if err := e.emitFrames(); err != nil {
		return pngb.Build{}, err
	}
	e.emitUniformTable()
	e.emitAnimTable()

	e.ops = pngb.EmitOpcode(e.ops, pngb.OpEnd)

	return pngb.Build{
		Plugins:  e.buildPlugins(),
		Opcodes:  e.ops,
		Strings:  e.strings,
		Data:     e.data,
		WGSL:     e.wgslTable,
		Uniforms: e.uniforms,
		Anims:    e.anims,
	}, nil
}

// buildPlugins maps the analyzer's plugin bits onto the header's; the
// derivation from declarations happens entirely in the plugin pass, so
// emission never invents a capability the scene does not use.
func (e *emitter) buildPlugins() pngb.Plugin {
	var p pngb.Plugin
	if e.scene.Plugins&scene.PluginRender != 0 {
		p |= pngb.PluginRender
	}
	if e.scene.Plugins&scene.PluginCompute != 0 {
		p |= pngb.PluginCompute
	}
	if e.scene.Plugins&scene.PluginAnimation != 0 {
		p |= pngb.PluginAnimation
	}
	if e.scene.Plugins&scene.PluginWasm != 0 {
		p |= pngb.PluginWasm
	}
	if e.scene.Plugins&scene.PluginTexture != 0 {
		p |= pngb.PluginTexture
	}
	return p
}

func (e *emitter) alloc() uint32 {
	id := e.nextID
	e.nextID++
	return id
}

func (e *emitter) addData(b []byte) uint32 {
	id := uint32(len(e.data))
	e.data = append(e.data, b)
	return id
}

func (e *emitter) addJSON(v any) (uint32, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("emit: marshal descriptor: %w", err)
	}
	return e.addData(b), nil
}

// internString dedupes identical string-table entries (frame names in
// particular repeat often across a scene's frame/queue ops).
func (e *emitter) internString(s string) uint32 {
	if id, ok := e.stringIdx[s]; ok {
		return id
	}
	id := uint32(len(e.strings))
	e.strings = append(e.strings, s)
	e.stringIdx[s] = id
	return id
}

// dataBytesFor resolves a $data reference (scene.Ref with Kind==RefData) to
// its caller-supplied bytes by name.
func (e *emitter) dataBytesFor(ref scene.Ref) ([]byte, error) {
	if ref.Kind != scene.RefData {
		return nil, fmt.Errorf("emit: expected a data reference, got %s", ref.Kind)
	}
	if int(ref.ID) >= len(e.scene.DataNames) {
		return nil, fmt.Errorf("emit: data reference id %d out of range", ref.ID)
	}
	name := e.scene.DataNames[ref.ID]
	b, ok := e.assets[name]
	if !ok {
		return nil, fmt.Errorf("emit: no asset bytes supplied for $data.%s", name)
	}
	return b, nil
}
