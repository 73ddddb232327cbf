package emit

// The structures below are too structured for opcode operands (pipeline
// state, bind group entries), so they are JSON-encoded into the PNGB data
// section and referenced by data_id. Field names are lowerCamelCase to
// match the DSL's own field spelling, which keeps a hand round-trip
// (JSON -> scene field) readable when debugging a compiled module.

type textureDescriptor struct {
	Width  uint32 `json:"width,omitempty"`
	Height uint32 `json:"height,omitempty"`
	// WidthSource/HeightSource carry a canvas builtin (canvas.width,
	// canvas.height) when the dimension is platform-resolved instead of a
	// literal; exactly one of the pair per axis is set.
	WidthSource   string `json:"widthSource,omitempty"`
	HeightSource  string `json:"heightSource,omitempty"`
	Format        string `json:"format"`
	Usage         uint32 `json:"usage"`
	SampleCount   uint32 `json:"sampleCount,omitempty"`
	MipLevelCount uint32 `json:"mipLevelCount,omitempty"`
	Pool          uint32 `json:"pool,omitempty"`
	// Source is the data id of the external image/video bytes the
	// platform uploads into the texture, when the declaration names one.
	Source *uint32 `json:"source,omitempty"`
}

type samplerDescriptor struct {
	MagFilter    string `json:"magFilter,omitempty"`
	MinFilter    string `json:"minFilter,omitempty"`
	AddressModeU string `json:"addressModeU,omitempty"`
	AddressModeV string `json:"addressModeV,omitempty"`
}

type bindGroupLayoutEntry struct {
	Binding    uint32 `json:"binding"`
	Visibility string `json:"visibility,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

type bindGroupLayoutDescriptor struct {
	Entries []bindGroupLayoutEntry `json:"entries"`
}

type renderPipelineDescriptor struct {
	LayoutID           uint32           `json:"layoutId"`
	VertexWGSLID       uint32           `json:"vertexWgslId"`
	VertexEntryPoint   string           `json:"vertexEntryPoint,omitempty"`
	FragmentWGSLID     *uint32          `json:"fragmentWgslId,omitempty"`
	FragmentEntryPoint string           `json:"fragmentEntryPoint,omitempty"`
	Topology           string           `json:"topology,omitempty"`
	Targets            []map[string]any `json:"targets"`
	Primitive          map[string]any   `json:"primitive,omitempty"`
	DepthStencil       map[string]any   `json:"depthStencil,omitempty"`
	Multisample        map[string]any   `json:"multisample,omitempty"`
	UniformStruct      string           `json:"uniformStruct,omitempty"`
	UniformSize        uint32           `json:"uniformSize,omitempty"`
}

type computePipelineDescriptor struct {
	LayoutID          uint32 `json:"layoutId"`
	ComputeWGSLID     uint32 `json:"computeWgslId"`
	ComputeEntryPoint string `json:"computeEntryPoint,omitempty"`
	UniformStruct     string `json:"uniformStruct,omitempty"`
	UniformSize       uint32 `json:"uniformSize,omitempty"`
}

type bindGroupEntry struct {
	Binding uint32 `json:"binding"`
	Kind    string `json:"kind"` // "buffer", "texture", "sampler"
	ID      uint32 `json:"id"`
}

type bindGroupDescriptor struct {
	LayoutID uint32           `json:"layoutId"`
	Entries  []bindGroupEntry `json:"entries"`
}
