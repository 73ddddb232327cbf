package pngb

import "fmt"

// Op identifies one stored PNGB opcode. This is a distinct numbering from
// the dispatcher's GPU command set; the two spaces intentionally never
// share a Go type or constant set, so they cannot be conflated.
type Op byte

const (
	// Resource creation, 0x00-0x0F.
	OpCreateBuffer           Op = 0x00
	OpCreateTexture          Op = 0x01
	OpCreateSampler          Op = 0x02
	OpCreateShaderModule     Op = 0x03
	OpCreateBindGroupLayout  Op = 0x04
	OpCreatePipelineLayout   Op = 0x05
	OpCreateRenderPipeline   Op = 0x06
	OpCreateComputePipeline  Op = 0x07
	OpCreateBindGroup        Op = 0x08

	// Pass ops, 0x10-0x1F.
	OpBeginRenderPass  Op = 0x10
	OpBeginComputePass Op = 0x11
	OpSetPipeline      Op = 0x12
	OpSetBindGroup     Op = 0x13
	OpSetVertexBuffer  Op = 0x14
	OpSetIndexBuffer   Op = 0x15
	OpDraw             Op = 0x16
	OpDrawIndexed      Op = 0x17
	OpDispatch         Op = 0x18
	OpEndPass          Op = 0x19

	// Queue ops, 0x20-0x2F.
	OpWriteBuffer      Op = 0x20
	OpWriteTimeUniform Op = 0x21
	OpSubmit           Op = 0x22

	// Frame control, 0x30-0x3F.
	OpDefineFrame Op = 0x30
	OpExecPass    Op = 0x31
	OpExecOnce    Op = 0x32
	OpEndFrame    Op = 0x33
	// OpCallWasm invokes a host wasm export, sequenced with the other
	// frame-control ops. Operands are (export_string_id, args_data_id).
	OpCallWasm Op = 0x34

	// Pool ops, 0x40-0x4F.
	OpSetVertexBufferPool Op = 0x40
	OpSetBindGroupPool    Op = 0x41

	// Terminator.
	OpEnd Op = 0xFF
)

var opNames = map[Op]string{
	OpCreateBuffer: "create_buffer", OpCreateTexture: "create_texture",
	OpCreateSampler: "create_sampler", OpCreateShaderModule: "create_shader_module",
	OpCreateBindGroupLayout: "create_bind_group_layout", OpCreatePipelineLayout: "create_pipeline_layout",
	OpCreateRenderPipeline: "create_render_pipeline", OpCreateComputePipeline: "create_compute_pipeline",
	OpCreateBindGroup: "create_bind_group",
	OpBeginRenderPass:   "begin_render_pass", OpBeginComputePass: "begin_compute_pass",
	OpSetPipeline: "set_pipeline", OpSetBindGroup: "set_bind_group",
	OpSetVertexBuffer: "set_vertex_buffer", OpSetIndexBuffer: "set_index_buffer",
	OpDraw: "draw", OpDrawIndexed: "draw_indexed", OpDispatch: "dispatch", OpEndPass: "end_pass",
	OpWriteBuffer: "write_buffer", OpWriteTimeUniform: "write_time_uniform", OpSubmit: "submit",
	OpDefineFrame: "define_frame", OpExecPass: "exec_pass", OpExecOnce: "exec_pass_once",
	OpEndFrame: "end_frame", OpCallWasm: "call_wasm",
	OpSetVertexBufferPool: "set_vertex_buffer_pool", OpSetBindGroupPool: "set_bind_group_pool",
	OpEnd: "end",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(0x%02x)", byte(o))
}

// IsKnownOp reports whether o is a recognized opcode. Decode and dispatch
// both reject anything else; an unknown opcode is never silently skipped.
func IsKnownOp(o Op) bool {
	_, ok := opNames[o]
	return ok
}

// arity is the number of varint operands each opcode carries, for opcodes
// with a fixed operand count. create_pipeline_layout is variadic
// (count-prefixed) and handled separately by StepOpcode.
//
// create_buffer is (id, size, usage, pool) and create_bind_group is
// (id, desc_data_id, pool): the trailing pool count (1 for unpooled
// resources) is what lets the dispatcher compute
// `actual = base + (frame + offset) mod pool` without ever parsing a
// descriptor blob, which stays opaque to it.
var arity = map[Op]int{
	OpCreateBuffer: 4, OpCreateTexture: 2, OpCreateSampler: 2, OpCreateShaderModule: 2,
	OpCreateBindGroupLayout: 2, OpCreateRenderPipeline: 2, OpCreateComputePipeline: 2,
	OpCreateBindGroup: 3,
	OpBeginRenderPass: 1, OpBeginComputePass: 0,
	OpSetPipeline: 1, OpSetBindGroup: 2, OpSetVertexBuffer: 2, OpSetIndexBuffer: 2,
	OpDraw: 2, OpDrawIndexed: 2, OpDispatch: 3, OpEndPass: 0,
	OpWriteBuffer: 3, OpWriteTimeUniform: 1, OpSubmit: 0,
	OpDefineFrame: 2, OpExecPass: 1, OpExecOnce: 1, OpEndFrame: 0, OpCallWasm: 2,
	OpSetVertexBufferPool: 3, OpSetBindGroupPool: 3,
	OpEnd: 0,
}

// Arity returns the fixed operand count of an opcode. ok is false for
// create_pipeline_layout, whose operand list is count-prefixed and
// variable-length; callers that step the stream themselves (the
// dispatcher's frame loop does, to stay allocation-free) must handle it
// separately, the way StepOpcode does.
func Arity(o Op) (n int, ok bool) {
	if o == OpCreatePipelineLayout {
		return 0, false
	}
	n, ok = arity[o]
	return n, ok
}

// Instr is one decoded opcode step: the opcode, its operands in
// declaration order, and the byte length consumed from the stream.
type Instr struct {
	Op       Op
	Operands []uint32
	Len      int
}

// StepOpcode decodes a single instruction starting at buf[0]. It handles
// create_pipeline_layout's variadic bind-group-layout-id list (a varint
// count followed by that many varint ids) as a special case; every other
// opcode has the fixed arity from the table above.
func StepOpcode(buf []byte) (Instr, error) {
	if len(buf) == 0 {
		return Instr{}, ErrTruncatedOpcode
	}
	op := Op(buf[0])
	if !IsKnownOp(op) && op != OpCreatePipelineLayout {
		return Instr{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(op))
	}
	pos := 1

	readOperand := func() (uint32, error) {
		if pos >= len(buf) {
			return 0, ErrTruncatedOpcode
		}
		v, n, err := ReadVarint(buf[pos:])
		if err != nil {
			return 0, err
		}
		pos += n
		return v, nil
	}

	var operands []uint32
	if op == OpCreatePipelineLayout {
		id, err := readOperand()
		if err != nil {
			return Instr{}, err
		}
		count, err := readOperand()
		if err != nil {
			return Instr{}, err
		}
		operands = append(operands, id, count)
		for i := uint32(0); i < count; i++ {
			v, err := readOperand()
			if err != nil {
				return Instr{}, err
			}
			operands = append(operands, v)
		}
	} else {
		n := arity[op]
		operands = make([]uint32, 0, n)
		for i := 0; i < n; i++ {
			v, err := readOperand()
			if err != nil {
				return Instr{}, err
			}
			operands = append(operands, v)
		}
	}

	return Instr{Op: op, Operands: operands, Len: pos}, nil
}

// EmitOpcode appends one instruction to buf. For create_pipeline_layout,
// operands must be [id, bglID0, bglID1, ...]; EmitOpcode inserts the
// count itself.
func EmitOpcode(buf []byte, op Op, operands ...uint32) []byte {
	buf = append(buf, byte(op))
	if op == OpCreatePipelineLayout {
		buf = PutVarint(buf, operands[0])
		buf = PutVarint(buf, uint32(len(operands)-1))
		for _, v := range operands[1:] {
			buf = PutVarint(buf, v)
		}
		return buf
	}
	for _, v := range operands {
		buf = PutVarint(buf, v)
	}
	return buf
}
