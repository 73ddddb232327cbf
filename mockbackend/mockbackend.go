// Package mockbackend provides the recording Backend implementation the
// test suite validates the dispatcher against. Every backend call is
// captured as a tagged Call with its arguments copied by value; byte
// payloads are duped into an arena owned by the recorder, so assertions
// stay valid no matter what the caller does with its buffers afterwards.
package mockbackend

import (
	"github.com/oxy-lang/pngb/dispatch"
)

// Call is one recorded backend invocation.
type Call struct {
	Cmd  dispatch.Cmd
	Args []uint32
	Data []byte // descriptor/payload bytes, arena-owned
	Str  string // shader source or wasm export name, when the call carries one
}

// Recorder implements dispatch.Backend and dispatch.WasmBackend by
// recording every call. The zero value is not usable; construct with
// NewRecorder.
type Recorder struct {
	calls []Call
	trace []byte
	arena []byte

	failures map[dispatch.Cmd]error
}

// NewRecorder builds an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{failures: make(map[dispatch.Cmd]error)}
}

// Calls returns every recorded call in invocation order.
func (r *Recorder) Calls() []Call { return r.calls }

// CallsOf returns the recorded calls with the given command tag, in order.
func (r *Recorder) CallsOf(c dispatch.Cmd) []Call {
	var out []Call
	for _, call := range r.calls {
		if call.Cmd == c {
			out = append(out, call)
		}
	}
	return out
}

// Trace returns the fixed-size command-stream encoding of everything
// recorded so far: one header byte plus 4-byte operands per call, with
// byte payloads contributing their length as a final operand. Two
// dispatchers fed the same module and inputs produce identical traces.
func (r *Recorder) Trace() []byte { return r.trace }

// FailOn makes every subsequent call with the given command tag return
// err, for exercising the dispatcher's failure paths.
func (r *Recorder) FailOn(c dispatch.Cmd, err error) {
	r.failures[c] = err
}

func (r *Recorder) dup(b []byte) []byte {
	if b == nil {
		return nil
	}
	off := len(r.arena)
	r.arena = append(r.arena, b...)
	return r.arena[off : off+len(b) : off+len(b)]
}

func (r *Recorder) record(c dispatch.Cmd, data []byte, str string, args ...uint32) error {
	call := Call{Cmd: c, Args: args, Data: r.dup(data), Str: str}
	r.calls = append(r.calls, call)
	traceArgs := args
	if data != nil {
		traceArgs = append(append([]uint32{}, args...), uint32(len(data)))
	}
	r.trace = dispatch.AppendCommand(r.trace, c, traceArgs...)
	return r.failures[c]
}

func (r *Recorder) CreateBuffer(id, size, usage, pool uint32) error {
	return r.record(dispatch.CmdCreateBuffer, nil, "", id, size, usage, pool)
}

func (r *Recorder) CreateTexture(id uint32, desc []byte) error {
	return r.record(dispatch.CmdCreateTexture, desc, "", id)
}

func (r *Recorder) CreateSampler(id uint32, desc []byte) error {
	return r.record(dispatch.CmdCreateSampler, desc, "", id)
}

func (r *Recorder) CreateShaderModule(id uint32, source, imports string) error {
	return r.record(dispatch.CmdCreateShaderModule, []byte(imports+source), source, id)
}

func (r *Recorder) CreateBindGroupLayout(id uint32, entries []byte) error {
	return r.record(dispatch.CmdCreateBindGroupLayout, entries, "", id)
}

func (r *Recorder) CreatePipelineLayout(id uint32, bindGroupLayoutIDs []uint32) error {
	args := append([]uint32{id}, bindGroupLayoutIDs...)
	return r.record(dispatch.CmdCreatePipelineLayout, nil, "", args...)
}

func (r *Recorder) CreateRenderPipeline(id uint32, desc []byte) error {
	return r.record(dispatch.CmdCreateRenderPipeline, desc, "", id)
}

func (r *Recorder) CreateComputePipeline(id uint32, desc []byte) error {
	return r.record(dispatch.CmdCreateComputePipeline, desc, "", id)
}

func (r *Recorder) CreateBindGroup(id uint32, desc []byte) error {
	return r.record(dispatch.CmdCreateBindGroup, desc, "", id)
}

func (r *Recorder) BeginRenderPass(attachments []byte) error {
	return r.record(dispatch.CmdBeginRenderPass, attachments, "")
}

func (r *Recorder) BeginComputePass() error {
	return r.record(dispatch.CmdBeginComputePass, nil, "")
}

func (r *Recorder) SetPipeline(id uint32) error {
	return r.record(dispatch.CmdSetPipeline, nil, "", id)
}

func (r *Recorder) SetBindGroup(slot, id uint32) error {
	return r.record(dispatch.CmdSetBindGroup, nil, "", slot, id)
}

func (r *Recorder) SetVertexBuffer(slot, id uint32) error {
	return r.record(dispatch.CmdSetVertexBuffer, nil, "", slot, id)
}

func (r *Recorder) SetIndexBuffer(id, format uint32) error {
	return r.record(dispatch.CmdSetIndexBuffer, nil, "", id, format)
}

func (r *Recorder) Draw(vertexCount, instanceCount uint32) error {
	return r.record(dispatch.CmdDraw, nil, "", vertexCount, instanceCount)
}

func (r *Recorder) DrawIndexed(indexCount, instanceCount uint32) error {
	return r.record(dispatch.CmdDrawIndexed, nil, "", indexCount, instanceCount)
}

func (r *Recorder) Dispatch(x, y, z uint32) error {
	return r.record(dispatch.CmdDispatch, nil, "", x, y, z)
}

func (r *Recorder) EndPass() error {
	return r.record(dispatch.CmdEndPass, nil, "")
}

func (r *Recorder) WriteBuffer(id, offset uint32, data []byte) error {
	return r.record(dispatch.CmdWriteBuffer, data, "", id, offset)
}

func (r *Recorder) Submit() error {
	return r.record(dispatch.CmdSubmit, nil, "")
}

func (r *Recorder) Destroy(id uint32) error {
	return r.record(dispatch.CmdDestroy, nil, "", id)
}

func (r *Recorder) End() error {
	return r.record(dispatch.CmdEnd, nil, "")
}

func (r *Recorder) CallExport(name string, args []byte) error {
	return r.record(dispatch.CmdCallExport, args, name)
}
