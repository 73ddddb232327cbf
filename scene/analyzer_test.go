package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxy-lang/pngb/ast"
	"github.com/oxy-lang/pngb/lex"
)

func parseSrc(t *testing.T, src string) *ast.Tree {
	t.Helper()
	toks, lerr := lex.Lex([]byte(src))
	require.Nil(t, lerr, "lex error: %v", lerr)
	tree, perr := ast.Parse([]byte(src), toks)
	require.Nil(t, perr, "parse error: %v", perr)
	return tree
}

func TestAnalyzeSimpleBufferAndPipeline(t *testing.T) {
	src := `
#buffer vbo {
  size = 256,
  usage = [VERTEX],
}
#wgsl vs {
  source = "vertex shader source",
}
#bindGroupLayout bgl {
  entries = [],
}
#pipelineLayout pl {
  bindGroupLayouts = [$bindGroupLayout.bgl],
}
#renderPipeline rp {
  layout = $pipelineLayout.pl,
  vertex = $wgsl.vs,
  targets = [],
}
`
	tree := parseSrc(t, src)
	sc, errs := Analyze(tree)
	require.Empty(t, errs)
	require.Len(t, sc.Buffers, 1)
	assert.Equal(t, "vbo", sc.Buffers[0].Name)
	size, ok := sc.Buffers[0].field("size")
	require.True(t, ok)
	assert.EqualValues(t, 256, size.Int)

	require.Len(t, sc.RenderPipelines, 1)
	layout, ok := sc.RenderPipelines[0].field("layout")
	require.True(t, ok)
	assert.Equal(t, RefPipelineLayout, layout.Ref.Kind)
	assert.EqualValues(t, 0, layout.Ref.ID)
}

func TestAnalyzeMissingRequiredField(t *testing.T) {
	src := `
#buffer vbo {
  usage = [VERTEX],
}
`
	tree := parseSrc(t, src)
	_, errs := Analyze(tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "missing-field", string(errs[0].Kind))
}

func TestAnalyzeUnresolvedReference(t *testing.T) {
	src := `
#renderPipeline rp {
  layout = $pipelineLayout.nope,
  vertex = $wgsl.nope,
  targets = [],
}
`
	tree := parseSrc(t, src)
	_, errs := Analyze(tree)
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, "unresolved-reference", string(e.Kind))
	}
}

func TestAnalyzeDuplicateDeclaration(t *testing.T) {
	src := `
#buffer vbo { size = 1, usage = [] }
#buffer vbo { size = 2, usage = [] }
`
	tree := parseSrc(t, src)
	sc, errs := Analyze(tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "duplicate-declaration", string(errs[0].Kind))
	// the first declaration wins
	require.Len(t, sc.Buffers, 1)
}

func TestAnalyzeWGSLImportCycle(t *testing.T) {
	src := `
#wgsl a { source = "a", imports = [$wgsl.b] }
#wgsl b { source = "b", imports = [$wgsl.a] }
`
	tree := parseSrc(t, src)
	_, errs := Analyze(tree)
	var found bool
	for _, e := range errs {
		if string(e.Kind) == "import-cycle" {
			found = true
		}
	}
	assert.True(t, found, "expected an import-cycle diagnostic, got %v", errs)
}

func TestAnalyzeDefineFolding(t *testing.T) {
	src := `
#define BUFFER_SIZE { value = 1024 }
#buffer vbo {
  size = BUFFER_SIZE,
  usage = [VERTEX],
}
`
	tree := parseSrc(t, src)
	sc, errs := Analyze(tree)
	require.Empty(t, errs)
	size, ok := sc.Buffers[0].field("size")
	require.True(t, ok)
	assert.EqualValues(t, 1024, size.Int)
}

func TestAnalyzeFrameValidity(t *testing.T) {
	src := `
#buffer vbo { size = 1, usage = [] }
#frame f {
  perform = [$buffer.vbo],
}
`
	tree := parseSrc(t, src)
	_, errs := Analyze(tree)
	var found bool
	for _, e := range errs {
		if string(e.Kind) == "invalid-frame" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzePluginBitfield(t *testing.T) {
	src := `
#wgsl cs { source = "compute" }
#pipelineLayout pl { bindGroupLayouts = [] }
#computePipeline cp {
  layout = $pipelineLayout.pl,
  compute = $wgsl.cs,
}
`
	tree := parseSrc(t, src)
	sc, errs := Analyze(tree)
	require.Empty(t, errs)
	assert.NotZero(t, sc.Plugins&PluginCompute)
	assert.Zero(t, sc.Plugins&PluginRender, "a compute-only scene must not require the render plugin")
	assert.Zero(t, sc.Plugins&PluginAnimation)
	assert.Zero(t, sc.Plugins&PluginTexture)
}

func TestAnalyzeTexturePluginNeedsExternalSource(t *testing.T) {
	plain := `
#texture target { width = 256, height = 256, format = bgra8unorm, usage = [RENDER_ATTACHMENT] }
`
	tree := parseSrc(t, plain)
	sc, errs := Analyze(tree)
	require.Empty(t, errs)
	assert.Zero(t, sc.Plugins&PluginTexture, "a plain render target needs no texture plugin")

	sourced := `
#texture photo { width = 256, height = 256, format = rgba8unorm, usage = [TEXTURE_BINDING, COPY_DST], source = $data.photoBytes }
`
	tree = parseSrc(t, sourced)
	sc, errs = Analyze(tree)
	require.Empty(t, errs)
	assert.NotZero(t, sc.Plugins&PluginTexture)
}

func TestAnalyzeCanvasSizedTexture(t *testing.T) {
	src := `
#texture backbuffer { width = canvas.width, height = canvas.height, format = bgra8unorm, usage = [RENDER_ATTACHMENT] }
`
	tree := parseSrc(t, src)
	sc, errs := Analyze(tree)
	require.Empty(t, errs)
	w, ok := sc.Textures[0].field("width")
	require.True(t, ok)
	assert.Equal(t, ValIdent, w.Kind)
	assert.Equal(t, "canvas.width", w.Ident)

	bad := `
#texture t { width = somethingElse, height = 1, format = bgra8unorm, usage = [] }
`
	tree = parseSrc(t, bad)
	_, errs = Analyze(tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "type-mismatch", string(errs[0].Kind))
}

func TestAnalyzeWasmCall(t *testing.T) {
	src := `
#wasmCall wc {
  export = "my_export",
  data = $data.blob,
}
`
	tree := parseSrc(t, src)
	sc, errs := Analyze(tree)
	require.Empty(t, errs)
	require.Len(t, sc.WasmCalls, 1)
	assert.Equal(t, "my_export", sc.WasmCalls[0].Export)
	assert.Equal(t, RefData, sc.WasmCalls[0].DataRef.Kind)
	assert.NotZero(t, sc.Plugins&PluginWasm)
	require.Len(t, sc.DataNames, 1)
	assert.Equal(t, "blob", sc.DataNames[0])
}

func TestAnalyzeWasmCallDataMustBeDataRef(t *testing.T) {
	src := `
#buffer b { size = 4, usage = [] }
#wasmCall wc {
  export = "my_export",
  data = $buffer.b,
}
`
	tree := parseSrc(t, src)
	sc, errs := Analyze(tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "type-mismatch", string(errs[0].Kind))
	assert.Empty(t, sc.WasmCalls)
	assert.Zero(t, sc.Plugins&PluginWasm)
}
