package emit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxy-lang/pngb/ast"
	"github.com/oxy-lang/pngb/emit"
	"github.com/oxy-lang/pngb/lex"
	"github.com/oxy-lang/pngb/pngb"
	"github.com/oxy-lang/pngb/scene"
)

func analyze(t *testing.T, src string) *scene.Scene {
	t.Helper()
	toks, lerr := lex.Lex([]byte(src))
	require.Nil(t, lerr)
	tree, perr := ast.Parse([]byte(src), toks)
	require.Nil(t, perr)
	s, diags := scene.Analyze(tree)
	for _, d := range diags {
		require.True(t, d.IsWarning(), "unexpected diagnostic: %v", d)
	}
	return s
}

const layeredShadersSrc = `
#wgsl util { source = "fn lerp1() {}" }
#wgsl noise { source = "fn noise() {}", imports = [$wgsl.util] }
#wgsl main { source = "@fragment fn fs() {}", imports = [$wgsl.noise, $wgsl.util] }
#pipelineLayout pl { bindGroupLayouts = [] }
#renderPipeline rp {
  layout = $pipelineLayout.pl,
  vertex = $wgsl.main,
  targets = [],
}
`

func TestEmitOrdersWGSLByImports(t *testing.T) {
	b, err := emit.Emit(analyze(t, layeredShadersSrc), nil)
	require.NoError(t, err)
	m, err := pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)

	// Table order is topological: every dependency's table index precedes
	// its dependents'.
	require.Len(t, m.WGSL, 3)
	for i, entry := range m.WGSL {
		for _, dep := range entry.Deps {
			assert.Less(t, int(dep), i, "dependency after dependent in WGSL table")
		}
	}
	// main imports both others, in declaration order of its imports list.
	assert.Len(t, m.WGSL[2].Deps, 2)
}

func TestEmitIsDeterministic(t *testing.T) {
	assets := emit.Assets{"verts": make([]byte, 48)}
	src := layeredShadersSrc + `
#buffer vbo { size = 48, usage = [VERTEX, COPY_DST], initialData = $data.verts }
#renderPass p {
  colorAttachments = [],
  pipeline = $renderPipeline.rp,
  draw = { vertexCount = 3 },
}
#frame f { perform = [$renderPass.p] }
`
	b1, err := emit.Emit(analyze(t, src), assets)
	require.NoError(t, err)
	b2, err := emit.Emit(analyze(t, src), assets)
	require.NoError(t, err)
	assert.Equal(t, pngb.Encode(b1), pngb.Encode(b2), "byte-for-byte module identity")
}

func TestEmittedModulePassesDecodeValidation(t *testing.T) {
	src := layeredShadersSrc + `
#buffer uniforms {
  size = 16,
  usage = [UNIFORM, COPY_DST],
  uniforms = [{ offset = 0, size = 16, source = pngineInputs }],
}
#renderPass p {
  colorAttachments = [],
  pipeline = $renderPipeline.rp,
  draw = { vertexCount = 3 },
}
#frame f { perform = [$renderPass.p] }
`
	b, err := emit.Emit(analyze(t, src), nil)
	require.NoError(t, err)

	// Decode re-validates every id an opcode or table references; a clean
	// decode is the reference-closure property.
	m, err := pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)

	require.Len(t, m.Uniforms, 1)
	assert.Equal(t, "pngineInputs", m.Strings[m.Uniforms[0].SourceID])
	assert.EqualValues(t, 16, m.Uniforms[0].Size)
}

func TestEmitPoolExpansion(t *testing.T) {
	src := `
#buffer particles { size = 64, usage = [STORAGE], pool = 3 }
#bindGroupLayout bgl { entries = [{ binding = 0, visibility = COMPUTE, kind = buffer }] }
#bindGroup bg {
  layout = $bindGroupLayout.bgl,
  pool = 3,
  entries = [{ binding = 0, resource = $buffer.particles, pingPong = 1 }],
}
`
	b, err := emit.Emit(analyze(t, src), nil)
	require.NoError(t, err)
	m, err := pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)

	var buffers, groups int
	pos := 0
	for pos < len(m.Opcodes) {
		instr, err := pngb.StepOpcode(m.Opcodes[pos:])
		require.NoError(t, err)
		switch instr.Op {
		case pngb.OpCreateBuffer:
			assert.EqualValues(t, 3, instr.Operands[3], "buffer pool operand")
			buffers++
		case pngb.OpCreateBindGroup:
			assert.EqualValues(t, 3, instr.Operands[2], "bind group pool operand")
			groups++
		}
		pos += instr.Len
	}
	assert.Equal(t, 3, buffers)
	assert.Equal(t, 3, groups)
}

func TestEmitPluginBitsFollowDeclarations(t *testing.T) {
	computeOnly := `
#wgsl cs { source = "@compute @workgroup_size(1) fn step() {}" }
#pipelineLayout pl { bindGroupLayouts = [] }
#computePipeline cp { layout = $pipelineLayout.pl, compute = $wgsl.cs }
#computePass p { pipeline = $computePipeline.cp, dispatch = { x = 1 } }
#frame sim { perform = [$computePass.p] }
`
	b, err := emit.Emit(analyze(t, computeOnly), nil)
	require.NoError(t, err)
	m, err := pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)
	assert.NotZero(t, m.Header.Plugins&pngb.PluginCompute)
	assert.Zero(t, m.Header.Plugins&pngb.PluginRender, "no render pipeline or pass was declared")
	assert.Zero(t, m.Header.Plugins&pngb.PluginTexture)
	assert.NotZero(t, m.Header.Plugins&pngb.PluginCore)

	b, err = emit.Emit(analyze(t, layeredShadersSrc), nil)
	require.NoError(t, err)
	m, err = pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)
	assert.NotZero(t, m.Header.Plugins&pngb.PluginRender)
	assert.Zero(t, m.Header.Plugins&pngb.PluginCompute)
}

func TestEmitTextureSourcesAndCanvasDims(t *testing.T) {
	src := `
#texture backbuffer { width = canvas.width, height = canvas.height, format = bgra8unorm, usage = [RENDER_ATTACHMENT] }
#texture photo { width = 2, height = 2, format = rgba8unorm, usage = [TEXTURE_BINDING, COPY_DST], source = $data.photoBytes }
`
	assets := emit.Assets{"photoBytes": {1, 2, 3, 4}}
	b, err := emit.Emit(analyze(t, src), assets)
	require.NoError(t, err)
	m, err := pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)

	assert.NotZero(t, m.Header.Plugins&pngb.PluginTexture)

	var descs [][]byte
	pos := 0
	for pos < len(m.Opcodes) {
		instr, err := pngb.StepOpcode(m.Opcodes[pos:])
		require.NoError(t, err)
		if instr.Op == pngb.OpCreateTexture {
			descs = append(descs, m.Data[instr.Operands[1]])
		}
		pos += instr.Len
	}
	require.Len(t, descs, 2)
	assert.Contains(t, string(descs[0]), `"widthSource":"canvas.width"`)
	assert.Contains(t, string(descs[0]), `"heightSource":"canvas.height"`)
	assert.Contains(t, string(descs[1]), `"source":`)

	// The photo's bytes landed in the data section, referenced by the
	// descriptor's source id.
	var desc struct {
		Source *uint32 `json:"source"`
	}
	require.NoError(t, json.Unmarshal(descs[1], &desc))
	require.NotNil(t, desc.Source)
	assert.Equal(t, []byte{1, 2, 3, 4}, m.Data[*desc.Source])
}

func TestEmitAnimationTable(t *testing.T) {
	src := `
#frame intro { perform = [] }
#animation opening {
  target = $frame.intro,
  start = 0.5,
  duration = 2.0,
  easing = easeInOut,
}
`
	b, err := emit.Emit(analyze(t, src), nil)
	require.NoError(t, err)
	m, err := pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)

	require.Len(t, m.Anims, 1)
	assert.EqualValues(t, 500, m.Anims[0].StartMS)
	assert.EqualValues(t, 2000, m.Anims[0].DurationMS)
	assert.EqualValues(t, 0, m.Anims[0].FrameID)
	assert.EqualValues(t, 3, m.Anims[0].Easing)
	assert.NotZero(t, m.Header.Plugins&pngb.PluginAnimation)
}

func TestEmitWasmCallCarriesExportName(t *testing.T) {
	src := `
#wasmCall step { export = "simulate_step", data = $data.params }
`
	b, err := emit.Emit(analyze(t, src), emit.Assets{"params": {1, 2}})
	require.NoError(t, err)
	m, err := pngb.Decode(pngb.Encode(b))
	require.NoError(t, err)

	var found bool
	pos := 0
	for pos < len(m.Opcodes) {
		instr, err := pngb.StepOpcode(m.Opcodes[pos:])
		require.NoError(t, err)
		if instr.Op == pngb.OpCallWasm {
			found = true
			assert.Equal(t, "simulate_step", m.Strings[instr.Operands[0]])
			assert.Equal(t, []byte{1, 2}, m.Data[instr.Operands[1]])
		}
		pos += instr.Len
	}
	assert.True(t, found)
	assert.NotZero(t, m.Header.Plugins&pngb.PluginWasm)
}
