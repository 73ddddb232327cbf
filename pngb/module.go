package pngb

import "fmt"

// Module is the fully decoded in-memory form of a PNGB blob. It is
// immutable after Decode; the dispatcher holds a borrowed reference to one
// and never mutates it.
type Module struct {
	Header   Header
	Exec     []byte // opaque executor blob bytes, verbatim; never interpreted
	Opcodes  []byte // the raw, validated opcode stream
	Strings  []string
	Data     [][]byte
	WGSL     []WGSLEntry
	Uniforms []UniformEntry
	Anims    []AnimEntry
}

// Build collects everything the emitter produces before Encode lays it
// out into the final byte layout.
type Build struct {
	Plugins  Plugin
	Exec     []byte
	Opcodes  []byte
	Strings  []string
	Data     [][]byte
	WGSL     []WGSLEntry
	Uniforms []UniformEntry
	Anims    []AnimEntry
}

// Encode lays out a Build into the on-disk PNGB byte layout: header
// (offsets zeroed), executor blob, opcode stream, string table, data
// section, WGSL table, uniform table, animation table, then the header is
// patched with the real offsets.
func Encode(b Build) []byte {
	h := Header{
		Version: FormatVersion,
		Plugins: b.Plugins | PluginCore,
		ExecOff: HeaderSize,
		ExecLen: uint32(len(b.Exec)),
	}

	buf := make([]byte, HeaderSize)
	buf = append(buf, b.Exec...)
	buf = append(buf, b.Opcodes...)

	h.StringOff = uint32(len(buf))
	buf = append(buf, encodeStringTable(b.Strings)...)

	h.DataOff = uint32(len(buf))
	buf = append(buf, encodeDataTable(b.Data)...)

	h.WGSLOff = uint32(len(buf))
	buf = append(buf, encodeWGSLTable(b.WGSL)...)

	h.UniformOff = uint32(len(buf))
	buf = append(buf, encodeUniformTable(b.Uniforms)...)

	h.AnimOff = uint32(len(buf))
	buf = append(buf, encodeAnimTable(b.Anims)...)

	copy(buf[0:HeaderSize], h.encode())
	return buf
}

// Decode parses a PNGB blob into a Module. It fails fast on any structural
// problem, never returning a partial module, and validates every id an
// opcode references is in range for its table before returning.
func Decode(buf []byte) (*Module, error) {
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}

	// Section ordering per Encode: exec, opcodes, string, data, wgsl,
	// uniform, anim. Each offset must be within the blob and the sections
	// must appear in non-decreasing order.
	offsets := []struct {
		name string
		off  uint32
	}{
		{"exec", h.ExecOff}, {"string", h.StringOff}, {"data", h.DataOff},
		{"wgsl", h.WGSLOff}, {"uniform", h.UniformOff}, {"anim", h.AnimOff},
	}
	for _, o := range offsets {
		if o.off > uint32(len(buf)) {
			return nil, fmt.Errorf("%w: %s offset %d exceeds module length %d", ErrOffsetOutOfRange, o.name, o.off, len(buf))
		}
	}
	if h.ExecOff+h.ExecLen > uint32(len(buf)) {
		return nil, fmt.Errorf("%w: executor blob", ErrOffsetOutOfRange)
	}

	exec := buf[h.ExecOff : h.ExecOff+h.ExecLen]
	opcodeStart := h.ExecOff + h.ExecLen
	if opcodeStart > h.StringOff {
		return nil, fmt.Errorf("%w: opcode stream overruns string table", ErrOffsetOutOfRange)
	}
	opcodes := buf[opcodeStart:h.StringOff]

	if h.StringOff > h.DataOff || h.DataOff > h.WGSLOff || h.WGSLOff > h.UniformOff || h.UniformOff > h.AnimOff || h.AnimOff > uint32(len(buf)) {
		return nil, fmt.Errorf("%w: section offsets out of order", ErrOffsetOutOfRange)
	}

	strs, err := decodeStringTable(buf[h.StringOff:h.DataOff])
	if err != nil {
		return nil, err
	}
	data, err := decodeDataTable(buf[h.DataOff:h.WGSLOff])
	if err != nil {
		return nil, err
	}
	wgsl, _, err := decodeWGSLTable(buf[h.WGSLOff:h.UniformOff])
	if err != nil {
		return nil, err
	}
	uniforms, err := decodeUniformTable(buf[h.UniformOff:h.AnimOff])
	if err != nil {
		return nil, err
	}
	anims, err := decodeAnimTable(buf[h.AnimOff:])
	if err != nil {
		return nil, err
	}

	m := &Module{
		Header: h, Exec: exec, Opcodes: opcodes,
		Strings: strs, Data: data, WGSL: wgsl, Uniforms: uniforms, Anims: anims,
	}

	if err := m.validateOpcodeStream(); err != nil {
		return nil, err
	}
	if err := m.validateTableRefs(); err != nil {
		return nil, err
	}

	return m, nil
}

// validateOpcodeStream walks the whole opcode stream once, rejecting any
// unknown opcode, truncation, or varint overflow, and confirming the
// stream is self-terminating.
func (m *Module) validateOpcodeStream() error {
	pos := 0
	sawEnd := false
	for pos < len(m.Opcodes) {
		instr, err := StepOpcode(m.Opcodes[pos:])
		if err != nil {
			return err
		}
		if instr.Op == OpEnd {
			sawEnd = true
		}
		if err := m.checkOperandRanges(instr); err != nil {
			return err
		}
		pos += instr.Len
	}
	if !sawEnd {
		return fmt.Errorf("%w: opcode stream missing terminating end", ErrTruncatedOpcode)
	}
	return nil
}

// checkOperandRanges validates the subset of each instruction's operands
// that name a string_id, data_id, or wgsl_id against this module's table
// lengths.
func (m *Module) checkOperandRanges(instr Instr) error {
	dataOps := map[Op]int{
		OpCreateTexture: 1, OpCreateSampler: 1, OpCreateBindGroupLayout: 1,
		OpCreateRenderPipeline: 1, OpCreateComputePipeline: 1, OpCreateBindGroup: 1,
		OpBeginRenderPass: 0, OpCallWasm: 1,
	}
	if idx, ok := dataOps[instr.Op]; ok {
		if int(instr.Operands[idx]) >= len(m.Data) {
			return fmt.Errorf("%w: %s", ErrDataIDRange, instr.Op)
		}
	}
	if instr.Op == OpWriteBuffer {
		if int(instr.Operands[2]) >= len(m.Data) {
			return fmt.Errorf("%w: write_buffer", ErrDataIDRange)
		}
	}
	if instr.Op == OpCreateShaderModule {
		if int(instr.Operands[1]) >= len(m.WGSL) {
			return fmt.Errorf("%w: create_shader_module", ErrWGSLIDRange)
		}
	}
	if instr.Op == OpDefineFrame {
		if int(instr.Operands[1]) >= len(m.Strings) {
			return fmt.Errorf("%w: define_frame", ErrStringIDRange)
		}
	}
	if instr.Op == OpCallWasm {
		if int(instr.Operands[0]) >= len(m.Strings) {
			return fmt.Errorf("%w: call_wasm", ErrStringIDRange)
		}
	}
	return nil
}

// validateTableRefs checks the WGSL table's own internal references
// (data_id per entry, dep wgsl_ids) and the uniform table's string ids.
func (m *Module) validateTableRefs() error {
	for i, e := range m.WGSL {
		if int(e.DataID) >= len(m.Data) {
			return fmt.Errorf("%w: wgsl entry %d", ErrDataIDRange, i)
		}
		for _, dep := range e.Deps {
			if int(dep) >= len(m.WGSL) {
				return fmt.Errorf("%w: wgsl entry %d dependency", ErrWGSLIDRange, i)
			}
		}
	}
	for i, u := range m.Uniforms {
		if int(u.SourceID) >= len(m.Strings) {
			return fmt.Errorf("%w: uniform entry %d", ErrStringIDRange, i)
		}
	}
	return nil
}
