package dispatch

import (
	"encoding/binary"
	"fmt"
)

// Cmd identifies one emitted GPU command. This numbering is deliberately
// disjoint from pngb.Op: the stored bytecode space and the command space
// the dispatcher emits against a backend must never be conflated, and a
// table-driven test asserts the only byte the two spaces share is the
// common `end` terminator.
//
// Unlike stored opcodes, commands are fixed-size: a one-byte header
// followed by 4-byte little-endian operands, no varints. Byte-carrying
// commands encode the payload length as their final operand; the payload
// itself travels out of band (the backend receives it as a Go slice).
type Cmd byte

const (
	CmdCreateBuffer          Cmd = 0x80
	CmdCreateTexture         Cmd = 0x81
	CmdCreateSampler         Cmd = 0x82
	CmdCreateShaderModule    Cmd = 0x83
	CmdCreateBindGroupLayout Cmd = 0x84
	CmdCreatePipelineLayout  Cmd = 0x85
	CmdCreateRenderPipeline  Cmd = 0x86
	CmdCreateComputePipeline Cmd = 0x87
	CmdCreateBindGroup       Cmd = 0x88

	CmdBeginRenderPass  Cmd = 0x90
	CmdBeginComputePass Cmd = 0x91
	CmdSetPipeline      Cmd = 0x92
	CmdSetBindGroup     Cmd = 0x93
	CmdSetVertexBuffer  Cmd = 0x94
	CmdSetIndexBuffer   Cmd = 0x95
	CmdDraw             Cmd = 0x96
	CmdDrawIndexed      Cmd = 0x97
	CmdDispatch         Cmd = 0x98
	CmdEndPass          Cmd = 0x99

	CmdWriteBuffer Cmd = 0xA0
	CmdCallExport  Cmd = 0xA1

	CmdDestroy Cmd = 0xE0

	// CmdEnd shares 0xFF with the stored opcode space's terminator on
	// purpose; it is the single sanctioned collision between the two
	// spaces.
	CmdSubmit Cmd = 0xF0
	CmdEnd    Cmd = 0xFF
)

// CmdNames maps every command to its wire name. Exported so the
// disjointness test can line this table up against the stored opcode
// space's names without reaching into either package's internals.
var CmdNames = map[Cmd]string{
	CmdCreateBuffer: "create_buffer", CmdCreateTexture: "create_texture",
	CmdCreateSampler: "create_sampler", CmdCreateShaderModule: "create_shader_module",
	CmdCreateBindGroupLayout: "create_bind_group_layout", CmdCreatePipelineLayout: "create_pipeline_layout",
	CmdCreateRenderPipeline: "create_render_pipeline", CmdCreateComputePipeline: "create_compute_pipeline",
	CmdCreateBindGroup: "create_bind_group",
	CmdBeginRenderPass: "begin_render_pass", CmdBeginComputePass: "begin_compute_pass",
	CmdSetPipeline: "set_pipeline", CmdSetBindGroup: "set_bind_group",
	CmdSetVertexBuffer: "set_vertex_buffer", CmdSetIndexBuffer: "set_index_buffer",
	CmdDraw: "draw", CmdDrawIndexed: "draw_indexed", CmdDispatch: "dispatch",
	CmdEndPass:     "end_pass",
	CmdWriteBuffer: "write_buffer", CmdCallExport: "call_export",
	CmdDestroy: "destroy",
	CmdSubmit:  "submit", CmdEnd: "end",
}

func (c Cmd) String() string {
	if s, ok := CmdNames[c]; ok {
		return s
	}
	return fmt.Sprintf("cmd(0x%02x)", byte(c))
}

// AppendCommand appends one fixed-size command frame to buf: the command
// byte followed by each operand as 4 little-endian bytes.
func AppendCommand(buf []byte, c Cmd, operands ...uint32) []byte {
	buf = append(buf, byte(c))
	var b [4]byte
	for _, v := range operands {
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	return buf
}
