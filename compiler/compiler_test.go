package compiler_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxy-lang/pngb/compiler"
	"github.com/oxy-lang/pngb/dispatch"
	"github.com/oxy-lang/pngb/mockbackend"
	"github.com/oxy-lang/pngb/pngb"
)

const triangleSrc = `
#wgsl tri {
  source = "@vertex fn vs_main() -> @builtin(position) vec4f { return vec4f(0); }",
}
#pipelineLayout pl {
  bindGroupLayouts = [],
}
#renderPipeline rp {
  layout = $pipelineLayout.pl,
  vertex = $wgsl.tri,
  targets = [{ format = bgra8unorm }],
}
#renderPass main {
  colorAttachments = [{ view = contextCurrentTexture, loadOp = clear, storeOp = store }],
  pipeline = $renderPipeline.rp,
  draw = { vertexCount = 3 },
}
#frame show {
  perform = [$renderPass.main],
}
`

func compileAndLoad(t *testing.T, src string, opts ...compiler.Option) *pngb.Module {
	t.Helper()
	blob, diags, err := compiler.Compile([]byte(src), opts...)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, blob)
	mod, err := pngb.Decode(blob)
	require.NoError(t, err)
	return mod
}

func TestMinimalTriangleEndToEnd(t *testing.T) {
	blob, diags, err := compiler.Compile([]byte(triangleSrc))
	require.NoError(t, err)
	require.Empty(t, diags)
	assert.Less(t, len(blob), 1024, "the minimal triangle compiles under 1 KiB")

	mod, err := pngb.Decode(blob)
	require.NoError(t, err)

	rec := mockbackend.NewRecorder()
	d := dispatch.NewDispatcher(mod, rec)
	require.NoError(t, d.Init())
	require.NoError(t, d.Frame(0, 512, 512, nil))

	var got []dispatch.Cmd
	for _, c := range rec.Calls() {
		got = append(got, c.Cmd)
	}
	assert.Equal(t, []dispatch.Cmd{
		dispatch.CmdCreateShaderModule,
		dispatch.CmdCreatePipelineLayout,
		dispatch.CmdCreateRenderPipeline,
		dispatch.CmdSubmit,
		dispatch.CmdBeginRenderPass,
		dispatch.CmdSetPipeline,
		dispatch.CmdDraw,
		dispatch.CmdEndPass,
		dispatch.CmdSubmit,
	}, got)

	draws := rec.CallsOf(dispatch.CmdDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, []uint32{3, 1}, draws[0].Args)
}

const movingTriangleSrc = triangleSrc + `
#buffer uniforms {
  size = 16,
  usage = [UNIFORM, COPY_DST],
}
#queue updates {
  ops = [{ op = writeTimeUniform, buffer = $buffer.uniforms }],
}
#frame moving {
  perform = [$queue.updates, $renderPass.main],
}
`

func TestTimeUniformWriteBeforePass(t *testing.T) {
	mod := compileAndLoad(t, movingTriangleSrc)

	rec := mockbackend.NewRecorder()
	d := dispatch.NewDispatcher(mod, rec, dispatch.WithActiveFrame("moving"))
	require.NoError(t, d.Init())
	require.NoError(t, d.Frame(1.0, 800, 600, nil))

	writes := rec.CallsOf(dispatch.CmdWriteBuffer)
	require.Len(t, writes, 1)
	require.Len(t, writes[0].Data, 16)

	want := make([]byte, 16)
	binary.LittleEndian.PutUint32(want[0:4], math.Float32bits(1.0))
	binary.LittleEndian.PutUint32(want[4:8], math.Float32bits(800))
	binary.LittleEndian.PutUint32(want[8:12], math.Float32bits(600))
	binary.LittleEndian.PutUint32(want[12:16], math.Float32bits(800.0/600.0))
	assert.Equal(t, want, writes[0].Data)

	// The write lands before the pass begins.
	var sawWrite bool
	for _, c := range rec.Calls() {
		if c.Cmd == dispatch.CmdWriteBuffer {
			sawWrite = true
		}
		if c.Cmd == dispatch.CmdBeginRenderPass {
			assert.True(t, sawWrite, "write_buffer must precede begin_render_pass")
		}
	}
}

const boidsSrc = `
#wgsl sim {
  source = "@compute @workgroup_size(64) fn step() {}",
}
#buffer particles {
  size = 64,
  usage = [VERTEX, STORAGE],
  pool = 2,
}
#bindGroupLayout simBGL {
  entries = [
    { binding = 0, visibility = COMPUTE, kind = buffer },
    { binding = 1, visibility = COMPUTE, kind = buffer },
  ],
}
#pipelineLayout simPL {
  bindGroupLayouts = [$bindGroupLayout.simBGL],
}
#computePipeline simPipe {
  layout = $pipelineLayout.simPL,
  compute = $wgsl.sim,
}
#bindGroup simBG {
  layout = $bindGroupLayout.simBGL,
  pool = 2,
  entries = [
    { binding = 0, resource = $buffer.particles, pingPong = 0 },
    { binding = 1, resource = $buffer.particles, pingPong = 1 },
  ],
}
#computePass stepPass {
  pipeline = $computePipeline.simPipe,
  ops = [
    { op = setBindGroup, slot = 0, bindGroup = $bindGroup.simBG, pingPong = 0 },
    { op = dispatch, x = 1 },
  ],
}
#frame simulate {
  perform = [$computePass.stepPass],
}
`

func TestBoidsPingPongAcrossFrames(t *testing.T) {
	mod := compileAndLoad(t, boidsSrc)

	rec := mockbackend.NewRecorder()
	d := dispatch.NewDispatcher(mod, rec)
	require.NoError(t, d.Init())
	require.NoError(t, d.Frame(0, 256, 256, nil))
	require.NoError(t, d.Frame(1, 256, 256, nil))

	// Two pool-2 buffers and two bind group variants were created.
	assert.Len(t, rec.CallsOf(dispatch.CmdCreateBuffer), 2)
	groups := rec.CallsOf(dispatch.CmdCreateBindGroup)
	require.Len(t, groups, 2)
	// Variant 0 binds (particles_0, particles_1); variant 1 swaps them.
	assert.Contains(t, string(groups[0].Data), `"id":1`)
	assert.Contains(t, string(groups[0].Data), `"id":2`)
	assert.NotEqual(t, groups[0].Data, groups[1].Data)

	// Frame 0 selects the base variant, frame 1 its partner.
	sets := rec.CallsOf(dispatch.CmdSetBindGroup)
	require.Len(t, sets, 2)
	assert.Equal(t, sets[0].Args[0], sets[1].Args[0], "same slot both frames")
	assert.Equal(t, sets[0].Args[1]+1, sets[1].Args[1], "the second frame picks the next pool member")
}

func TestImportCycleRejectsCompilation(t *testing.T) {
	src := `
#wgsl a { source = "a", imports = [$wgsl.b] }
#wgsl b { source = "b", imports = [$wgsl.c] }
#wgsl c { source = "c", imports = [$wgsl.a] }
`
	blob, diags, err := compiler.Compile([]byte(src))
	require.NoError(t, err)
	assert.Nil(t, blob, "no partial emission on a cyclic scene")

	var cycle string
	for _, d := range diags {
		if string(d.Kind) == "import-cycle" {
			cycle = d.Message
		}
	}
	require.NotEmpty(t, cycle)
	assert.Contains(t, cycle, "a")
	assert.Contains(t, cycle, "b")
	assert.Contains(t, cycle, "c")
}

func TestLexErrorStopsCompilation(t *testing.T) {
	blob, diags, err := compiler.Compile([]byte(`#notAMacro x {}`))
	require.NoError(t, err)
	assert.Nil(t, blob)
	require.Len(t, diags, 1)
	assert.Equal(t, "unexpected-byte", string(diags[0].Kind))
}

func TestMissingAssetIsAnError(t *testing.T) {
	src := `
#buffer vbo {
  size = 16,
  usage = [VERTEX, COPY_DST],
  initialData = $data.vertices,
}
`
	_, diags, err := compiler.Compile([]byte(src))
	require.Empty(t, diags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertices")

	blob, diags, err := compiler.Compile([]byte(src),
		compiler.WithAssets(map[string][]byte{"vertices": make([]byte, 16)}))
	require.NoError(t, err)
	require.Empty(t, diags)
	assert.NotNil(t, blob)
}

func TestExecutorBlobIsCarriedOpaque(t *testing.T) {
	exec := []byte{0x00, 0x61, 0x73, 0x6D} // wasm magic, but nothing reads it
	blob, diags, err := compiler.Compile([]byte(triangleSrc), compiler.WithExecutor(exec))
	require.NoError(t, err)
	require.Empty(t, diags)

	mod, err := pngb.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, exec, mod.Exec)
}

func TestCompiledModuleRoundtripsThroughEncode(t *testing.T) {
	blob, _, err := compiler.Compile([]byte(boidsSrc))
	require.NoError(t, err)
	mod, err := pngb.Decode(blob)
	require.NoError(t, err)

	run := func(m *pngb.Module) []byte {
		rec := mockbackend.NewRecorder()
		d := dispatch.NewDispatcher(m, rec)
		require.NoError(t, d.Init())
		require.NoError(t, d.Frame(0, 64, 64, nil))
		return rec.Trace()
	}

	reencoded, err := pngb.Decode(pngb.Encode(pngb.Build{
		Plugins: mod.Header.Plugins, Exec: mod.Exec, Opcodes: mod.Opcodes,
		Strings: mod.Strings, Data: mod.Data, WGSL: mod.WGSL,
		Uniforms: mod.Uniforms, Anims: mod.Anims,
	}))
	require.NoError(t, err)
	assert.Equal(t, run(mod), run(reencoded), "identical traces before and after a re-encode")
}
