package emit

// usage bit layout mirrors the WebGPU GPUBufferUsage/GPUTextureUsage
// convention (one bit per capability, additive), so the mock backend and
// a real backend can share one constant set.
const (
	UsageMapRead  uint32 = 1 << 0
	UsageMapWrite uint32 = 1 << 1
	UsageCopySrc  uint32 = 1 << 2
	UsageCopyDst  uint32 = 1 << 3
	UsageIndex    uint32 = 1 << 4
	UsageVertex   uint32 = 1 << 5
	UsageUniform  uint32 = 1 << 6
	UsageStorage  uint32 = 1 << 7
	UsageIndirect uint32 = 1 << 8
	UsageQuery    uint32 = 1 << 9

	// TextureUsage bits reuse CopySrc/CopyDst above, plus:
	UsageTextureBinding  uint32 = 1 << 10
	UsageRenderAttach    uint32 = 1 << 11
	UsageStorageBinding  uint32 = 1 << 12

	// mappedAtCreation has no WebGPU usage-bit equivalent; it rides in the
	// same operand as a high reserved bit so create_buffer's operand list
	// stays fixed.
	UsageMappedAtCreation uint32 = 1 << 15
)

var usageNames = map[string]uint32{
	"MAP_READ": UsageMapRead, "MAP_WRITE": UsageMapWrite,
	"COPY_SRC": UsageCopySrc, "COPY_DST": UsageCopyDst,
	"INDEX": UsageIndex, "VERTEX": UsageVertex,
	"UNIFORM": UsageUniform, "STORAGE": UsageStorage,
	"INDIRECT": UsageIndirect, "QUERY_RESOLVE": UsageQuery,
	"TEXTURE_BINDING": UsageTextureBinding, "RENDER_ATTACHMENT": UsageRenderAttach,
	"STORAGE_BINDING": UsageStorageBinding,
}

func usageBits(idents []string) uint32 {
	var bits uint32
	for _, name := range idents {
		bits |= usageNames[name]
	}
	return bits
}
