// Package token defines the tagged-token vocabulary shared by the lexer,
// parser, and analyzer. Tokens never own their text; they carry a tag and a
// source byte range, and every downstream consumer slices the original
// source to recover the text it needs.
package token

// Tag identifies the lexical class of a Token.
type Tag uint8

const (
	// Invalid is the zero Tag; it never appears in a token stream produced
	// by a successful lex, only as a sentinel default.
	Invalid Tag = iota

	EOF

	Ident
	String
	Integer
	Float
	Reference // an atomic $ns.name unit

	Equals    // =
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Comma     // ,
	Dollar    // $ (only ever seen as part of Reference; kept for error messages)
	Dot       // .
	Colon     // :

	macroBegin
	MacroBuffer
	MacroTexture
	MacroSampler
	MacroWGSL
	MacroBindGroupLayout
	MacroPipelineLayout
	MacroRenderPipeline
	MacroComputePipeline
	MacroBindGroup
	MacroRenderPass
	MacroComputePass
	MacroFrame
	MacroQueue
	MacroAnimation
	MacroDefine
	MacroWasmCall
	macroEnd
)

// String renders a Tag for diagnostics; it is not used for lexing.
func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "unknown"
}

// IsMacro reports whether t is one of the closed set of macro keywords
// recognized after a leading '#'.
func (t Tag) IsMacro() bool {
	return t > macroBegin && t < macroEnd
}

var tagNames = map[Tag]string{
	Invalid:              "invalid",
	EOF:                  "eof",
	Ident:                "identifier",
	String:               "string",
	Integer:              "integer",
	Float:                "float",
	Reference:            "reference",
	Equals:               "'='",
	LBrace:               "'{'",
	RBrace:               "'}'",
	LBracket:             "'['",
	RBracket:             "']'",
	Comma:                "','",
	Dollar:               "'$'",
	Dot:                  "'.'",
	Colon:                "':'",
	MacroBuffer:          "#buffer",
	MacroTexture:         "#texture",
	MacroSampler:         "#sampler",
	MacroWGSL:            "#wgsl",
	MacroBindGroupLayout: "#bindGroupLayout",
	MacroPipelineLayout:  "#pipelineLayout",
	MacroRenderPipeline:  "#renderPipeline",
	MacroComputePipeline: "#computePipeline",
	MacroBindGroup:       "#bindGroup",
	MacroRenderPass:      "#renderPass",
	MacroComputePass:     "#computePass",
	MacroFrame:           "#frame",
	MacroQueue:           "#queue",
	MacroAnimation:       "#animation",
	MacroDefine:          "#define",
	MacroWasmCall:        "#wasmCall",
}

// macroKeywords is the closed set of macro names recognized after a
// leading '#'. Looked up once per '#' by the lexer; a name outside this
// set is an error.
var macroKeywords = map[string]Tag{
	"buffer":           MacroBuffer,
	"texture":          MacroTexture,
	"sampler":          MacroSampler,
	"wgsl":             MacroWGSL,
	"bindGroupLayout":  MacroBindGroupLayout,
	"pipelineLayout":   MacroPipelineLayout,
	"renderPipeline":   MacroRenderPipeline,
	"computePipeline":  MacroComputePipeline,
	"bindGroup":        MacroBindGroup,
	"renderPass":       MacroRenderPass,
	"computePass":      MacroComputePass,
	"frame":            MacroFrame,
	"queue":            MacroQueue,
	"animation":        MacroAnimation,
	"define":           MacroDefine,
	"wasmCall":         MacroWasmCall,
}

// LookupMacro resolves the text following a '#' to its macro Tag. ok is
// false when name is not one of the closed set of macro keywords.
func LookupMacro(name string) (Tag, bool) {
	tag, ok := macroKeywords[name]
	return tag, ok
}

// referenceNamespaces is the closed set of namespace keywords recognized
// in the position after '$' in an atomic reference token: one per
// declarable resource kind, plus "data" and "string" which have no
// corresponding macro declaration of their own.
var referenceNamespaces = map[string]bool{
	"buffer":          true,
	"texture":         true,
	"sampler":         true,
	"wgsl":            true,
	"bindGroup":       true,
	"bindGroupLayout": true,
	"pipelineLayout":  true,
	"renderPipeline":  true,
	"computePipeline": true,
	"renderPass":      true,
	"computePass":     true,
	"frame":           true,
	"queue":           true,
	"data":            true,
	"string":          true,
}

// IsReferenceNamespace reports whether name is a recognized reference
// namespace keyword (the part of "$ns.name" before the dot).
func IsReferenceNamespace(name string) bool {
	return referenceNamespaces[name]
}

// Range is a half-open byte range [Start, End) into the source buffer the
// lexer was given. Invariant: Start <= End <= source length.
type Range struct {
	Start uint32
	End   uint32
}

// Text slices src to recover the token's raw text. src must be the same
// buffer (or an equivalent copy) the lexer consumed.
func (r Range) Text(src []byte) []byte {
	return src[r.Start:r.End]
}

// Token is a tagged source range; it owns no text.
type Token struct {
	Tag   Tag
	Range Range
}

// Index identifies a Token's position within a Lexer's output slice.
type Index uint32
