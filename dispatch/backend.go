package dispatch

// Backend is the abstract GPU capability a Dispatcher drives. A mock
// implementation suffices for the entire test suite; a real one would
// translate each call into WebGPU/Vulkan/Metal work. Every method may
// fail, and the dispatcher treats any returned error as a
// backend-reported dispatch failure for the current init/frame.
//
// Descriptor arguments (desc, entries, attachments) are the JSON blobs
// the emitter wrote into the module's data section, passed through
// verbatim: the dispatcher never parses them.
type Backend interface {
	// CreateBuffer allocates a GPU buffer. pool is the declared pool
	// count (1 for unpooled buffers); backends that don't care about
	// pooling may ignore it, since the dispatcher resolves pool member
	// selection to concrete ids before every set call.
	CreateBuffer(id, size, usage, pool uint32) error
	CreateTexture(id uint32, desc []byte) error
	CreateSampler(id uint32, desc []byte) error

	// CreateShaderModule receives the module's own WGSL source plus the
	// concatenation of its transitive imports in dependency order, the
	// wgsl_id -> data_id join the dispatcher performs over the WGSL
	// table.
	CreateShaderModule(id uint32, source, imports string) error

	CreateBindGroupLayout(id uint32, entries []byte) error
	CreatePipelineLayout(id uint32, bindGroupLayoutIDs []uint32) error
	CreateRenderPipeline(id uint32, desc []byte) error
	CreateComputePipeline(id uint32, desc []byte) error
	CreateBindGroup(id uint32, desc []byte) error

	BeginRenderPass(attachments []byte) error
	BeginComputePass() error
	SetPipeline(id uint32) error
	SetBindGroup(slot, id uint32) error
	SetVertexBuffer(slot, id uint32) error
	SetIndexBuffer(id, format uint32) error
	Draw(vertexCount, instanceCount uint32) error
	DrawIndexed(indexCount, instanceCount uint32) error
	Dispatch(x, y, z uint32) error
	EndPass() error

	WriteBuffer(id, offset uint32, data []byte) error

	// Submit marks the end of one batch of encoded work: once after init's
	// resource creation, once per frame.
	Submit() error

	// Destroy releases one resource handle; Shutdown calls it in reverse
	// creation order before End.
	Destroy(id uint32) error

	// End marks the end of the dispatcher's lifetime.
	End() error
}

// WasmBackend is the optional capability behind the wasm plugin bit:
// modules compiled from scenes with #wasmCall declarations require their
// backend to also implement this; backends for wasm-free modules never
// need it.
type WasmBackend interface {
	CallExport(name string, args []byte) error
}
