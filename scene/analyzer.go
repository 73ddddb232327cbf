package scene

import (
	"strconv"
	"strings"

	"github.com/oxy-lang/pngb/ast"
	"github.com/oxy-lang/pngb/diag"
	"github.com/oxy-lang/pngb/token"
)

// AnalyzerOption is a functional option for configuring an Analyze call.
type AnalyzerOption func(*analyzer)

// WithReflector supplies an external WGSL reflector used to derive
// uniform struct sizes from shader source directly. Without one,
// render/compute pipelines must declare their layouts by hand; a missing
// reflector only produces a Warning diagnostic, never a fatal one.
func WithReflector(r Reflector) AnalyzerOption {
	return func(a *analyzer) { a.reflector = r }
}

// Reflector derives binding metadata from WGSL source. A real
// implementation wraps a WGSL parser; tests and reflector-less scenes use
// nil (see uniform_pass.go's resolveUniformSize).
type Reflector interface {
	// Reflect returns the std140/std430-style byte size of a uniform
	// struct named structName as declared in src.
	Reflect(src string, structName string) (size uint32, ok bool)
}

type analyzer struct {
	tree      *ast.Tree
	ns        *namespaces
	diags     []diag.Diagnostic
	reflector Reflector

	scene *Scene
}

// Analyze runs all analysis passes over tree and returns the fully
// resolved Scene. Unlike lex/parse, analysis never stops at the first
// error: every pass accumulates diagnostics so a single run reports as
// many problems as it can.
func Analyze(tree *ast.Tree, opts ...AnalyzerOption) (*Scene, []diag.Diagnostic) {
	a := &analyzer{
		tree:  tree,
		ns:    newNamespaces(),
		scene: &Scene{Defines: make(map[string]Value)},
	}
	for _, o := range opts {
		o(a)
	}

	a.declarePass()
	a.definePass()
	a.fieldPass()
	a.opsPass()
	a.wgslImportPass()
	a.uniformLayoutPass()
	a.uniformTablePass()
	a.poolConsistencyPass()
	a.frameQueuePass()
	a.pluginPass()

	return a.scene, a.diags
}

func (a *analyzer) errorf(kind diag.Kind, rng token.Range, format string, args ...any) {
	a.diags = append(a.diags, diag.New(kind, rng, format, args...))
}

// declarePass walks the root's top-level MacroDecl list once, routing
// each into its namespace's Decl slice and symbol table (or, for #define
// and #wasmCall, into their own dedicated lists; they have no
// general-purpose field schema, see schema.go's doc comment).
func (a *analyzer) declarePass() {
	root := a.tree.Node(a.tree.Root())
	for _, id := range a.tree.ListRange(root) {
		n := a.tree.Node(id)
		if n.Tag != ast.MacroDecl {
			continue
		}
		name := string(a.tree.TokenText(token.Index(n.Lhs)))
		fieldsList := a.tree.Node(ast.NodeId(n.Rhs))
		tag := a.tree.Tokens[n.SourceToken].Tag
		switch tag {
		case token.MacroDefine:
			a.declareDefine(name, token.Index(n.Lhs), fieldsList)
		case token.MacroWasmCall:
			a.declareWasmCall(name, token.Index(n.Lhs), n.SourceToken, fieldsList)
		default:
			a.declareGeneric(tag, name, token.Index(n.Lhs), n.SourceToken, fieldsList)
		}
	}
}

func (a *analyzer) declareGeneric(tag token.Tag, name string, nameTok token.Index, declTok token.Index, fieldsList ast.Node) {
	slice := a.scene.declSliceFor(tag)
	if slice == nil {
		a.errorf(diag.UnexpectedToken, a.tree.TokenRange(declTok), "unsupported declaration kind")
		return
	}

	raw, toks := a.rawFields(fieldsList)
	d := Decl{
		Name:      name,
		Tag:       tag,
		NameToken: nameTok,
		DeclToken: declTok,
		FieldsRaw: raw,
		fieldToks: toks,
	}

	kind, ok := refKindForTag(tag)
	if !ok {
		a.errorf(diag.UnexpectedToken, a.tree.TokenRange(declTok), "declaration kind has no reference namespace")
		return
	}
	id := uint32(len(*slice))
	if !a.ns.declare(kind, name, id) {
		a.errorf(diag.DuplicateDecl, a.tree.TokenRange(nameTok), "%s %q already declared", kind, name)
		return
	}
	*slice = append(*slice, d)
}

func (a *analyzer) declareWasmCall(name string, nameTok token.Index, declTok token.Index, fieldsList ast.Node) {
	raw, _ := a.rawFields(fieldsList)

	exportNode, hasExport := raw["export"]
	dataNode, hasData := raw["data"]
	if !hasExport {
		a.errorf(diag.MissingField, a.tree.TokenRange(declTok), "#wasmCall %q missing required field \"export\"", name)
		return
	}
	if !hasData {
		a.errorf(diag.MissingField, a.tree.TokenRange(declTok), "#wasmCall %q missing required field \"data\"", name)
		return
	}

	exportN := a.tree.Node(exportNode)
	if exportN.Tag != ast.String {
		a.errorf(diag.TypeMismatch, a.tree.TokenRange(exportN.SourceToken), "\"export\" must be a string")
		return
	}
	export := unquote(string(a.tree.TokenText(exportN.SourceToken)))

	dataN := a.tree.Node(dataNode)
	if dataN.Tag != ast.Reference {
		a.errorf(diag.TypeMismatch, a.tree.TokenRange(dataN.SourceToken), "\"data\" must be a $data reference")
		return
	}
	ref, ok := a.parseReferenceToken(dataN.SourceToken, RefData)
	if !ok {
		return
	}

	a.scene.WasmCalls = append(a.scene.WasmCalls, WasmCallDecl{
		Name: name, NameToken: nameTok, Export: export, DataRef: ref,
	})
}

func (a *analyzer) rawFields(fieldsList ast.Node) (map[string]ast.NodeId, map[string]token.Index) {
	raw := make(map[string]ast.NodeId)
	toks := make(map[string]token.Index)
	for _, fid := range a.tree.ListRange(fieldsList) {
		f := a.tree.Node(fid)
		if f.Tag != ast.Field {
			continue
		}
		name := string(a.tree.TokenText(f.SourceToken))
		if _, dup := raw[name]; dup {
			a.errorf(diag.DuplicateDecl, a.tree.TokenRange(f.SourceToken), "duplicate field %q", name)
			continue
		}
		raw[name] = ast.NodeId(f.Lhs)
		toks[name] = f.SourceToken
	}
	return raw, toks
}

// unquote strips the surrounding quotes and resolves the lexer's closed
// escape set from a raw string-literal token's text.
func unquote(raw string) string {
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

func parseIntLiteral(text string) (int64, bool) {
	v, err := strconv.ParseInt(text, 10, 64)
	return v, err == nil
}

func parseFloatLiteral(text string) (float64, bool) {
	v, err := strconv.ParseFloat(text, 64)
	return v, err == nil
}
