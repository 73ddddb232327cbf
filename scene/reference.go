package scene

// RefKind identifies which resource namespace a resolved Reference points
// into; a reference is a (kind, local id) pair.
type RefKind uint8

const (
	RefBuffer RefKind = iota
	RefTexture
	RefSampler
	RefWGSL
	RefBindGroup
	RefBindGroupLayout
	RefPipelineLayout
	RefRenderPipeline
	RefComputePipeline
	RefRenderPass
	RefComputePass
	RefFrame
	RefQueue
	RefData
	RefString
	RefAnimation

	// refAny is the no-narrowing sentinel for parseReferenceToken; it can
	// never collide with a real namespace since RefBuffer is the zero
	// value.
	refAny RefKind = 0xFF
)

func (k RefKind) String() string {
	if s, ok := refKindNames[k]; ok {
		return s
	}
	return "unknown"
}

var refKindNames = map[RefKind]string{
	RefBuffer:          "buffer",
	RefTexture:         "texture",
	RefSampler:         "sampler",
	RefWGSL:            "wgsl",
	RefBindGroup:       "bindGroup",
	RefBindGroupLayout: "bindGroupLayout",
	RefPipelineLayout:  "pipelineLayout",
	RefRenderPipeline:  "renderPipeline",
	RefComputePipeline: "computePipeline",
	RefRenderPass:      "renderPass",
	RefComputePass:     "computePass",
	RefFrame:           "frame",
	RefQueue:           "queue",
	RefData:            "data",
	RefString:          "string",
	RefAnimation:       "animation",
}

// namespaceToRefKind maps the reference-namespace keyword (the token
// package's closed set) to the RefKind it addresses.
var namespaceToRefKind = map[string]RefKind{
	"buffer":          RefBuffer,
	"texture":         RefTexture,
	"sampler":         RefSampler,
	"wgsl":            RefWGSL,
	"bindGroup":       RefBindGroup,
	"bindGroupLayout": RefBindGroupLayout,
	"pipelineLayout":  RefPipelineLayout,
	"renderPipeline":  RefRenderPipeline,
	"computePipeline": RefComputePipeline,
	"renderPass":      RefRenderPass,
	"computePass":     RefComputePass,
	"frame":           RefFrame,
	"queue":           RefQueue,
	"data":            RefData,
	"string":          RefString,
}

// Ref is a resolved, typed reference: a namespace kind plus the resolved
// local id (dense index) within that namespace's declaration slice.
type Ref struct {
	Kind RefKind
	ID   uint32

	// PoolOffset is never set by the analyzer and is always nil: a bind
	// group entry's ping-pong offset stays in that entry record's own
	// "pingPong" field, where pool_pass.go and the emitter read it.
	PoolOffset *uint32
}
