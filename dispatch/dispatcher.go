// Package dispatch implements the PNGB interpreter: it walks a
// decoded module once to create every resource against an abstract GPU
// backend, then replays the active frame's opcode spans on every Frame
// call. A dispatcher owns its backend and module reference exclusively;
// running two modules means running two dispatchers.
package dispatch

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/oxy-lang/pngb/common"
	"github.com/oxy-lang/pngb/pngb"
)

// Dispatcher drives one full run of a decoded module: a resource-creation
// pass at Init, a per-frame opcode walk on each Frame call, and a
// reverse-order release at Shutdown.
type Dispatcher interface {
	// Init executes all resource-creation opcodes once, records every
	// pass and frame definition span, and ends the batch with a submit
	// marker. A creation failure unwinds already-created resources in
	// reverse order and reports the failing resource's kind and id.
	Init() error

	// Frame refreshes the module's uniform table from the given inputs,
	// then executes the active frame's opcode span. exec_pass_once
	// entries run at most once per dispatcher lifetime. The frame counter
	// increments after the frame's submit; a frame error aborts the
	// current frame only, leaving created resources intact.
	Frame(timeSeconds float64, width, height uint32, inputs map[string][]byte) error

	// Shutdown releases backend handles in reverse creation order and
	// emits the end marker. The dispatcher is unusable afterwards.
	Shutdown() error
}

type passState uint8

const (
	notEncoding passState = iota
	inRenderPass
	inComputePass
)

type span struct{ start, end int }

type resourceKind uint8

const (
	rkNone resourceKind = iota
	rkBuffer
	rkTexture
	rkSampler
	rkShaderModule
	rkBindGroupLayout
	rkPipelineLayout
	rkRenderPipeline
	rkComputePipeline
	rkBindGroup
)

var resourceKindNames = map[resourceKind]string{
	rkBuffer: "buffer", rkTexture: "texture", rkSampler: "sampler",
	rkShaderModule: "shaderModule", rkBindGroupLayout: "bindGroupLayout",
	rkPipelineLayout: "pipelineLayout", rkRenderPipeline: "renderPipeline",
	rkComputePipeline: "computePipeline", rkBindGroup: "bindGroup",
}

type resourceInfo struct {
	kind resourceKind
	size uint32 // buffers only
	pool uint32 // pool member count, 1 for unpooled
	live bool
}

type frameDef struct {
	id   uint32
	name string
	body span
}

// dispatcher is the implementation of the Dispatcher interface.
type dispatcher struct {
	mod     *pngb.Module
	backend Backend
	wasm    WasmBackend

	activeFrame string

	resources []resourceInfo
	created   []uint32 // creation order, for shutdown's reverse unwind
	passes    map[uint32]span
	frames    []frameDef
	frameIdx  map[string]int
	nextID    uint32

	// onceDone is keyed by the byte offset of each exec_pass_once
	// instruction; all keys are inserted during Init so the frame loop
	// only flips existing entries and never grows the map.
	onceDone map[int]bool

	frameNum uint32
	state    passState
	inited   bool
	shutdown bool

	// Reused per-frame scratch, so the frame loop allocates nothing
	// after Init.
	operands [8]uint32
	quad     [16]byte // pngineInputs: time, width, height, aspect
	triple   [12]byte // sceneTimeInputs: sceneTime, sceneDuration, normalizedTime
}

// NewDispatcher builds a Dispatcher over a decoded module and a backend.
// The module must outlive the dispatcher; it is never mutated.
func NewDispatcher(mod *pngb.Module, backend Backend, opts ...DispatcherOption) Dispatcher {
	d := &dispatcher{
		mod:      mod,
		backend:  backend,
		passes:   make(map[uint32]span),
		frameIdx: make(map[string]int),
		onceDone: make(map[int]bool),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *dispatcher) Init() error {
	if d.shutdown {
		return ErrAlreadyShutdown
	}
	if d.mod.Header.Plugins&pngb.PluginWasm != 0 {
		wb, ok := d.backend.(WasmBackend)
		if !ok {
			return ErrNoWasmBackend
		}
		d.wasm = wb
	}

	ops := d.mod.Opcodes
	pos := 0
	for pos < len(ops) {
		instr, err := pngb.StepOpcode(ops[pos:])
		if err != nil {
			return fmt.Errorf("%w: at offset %d: %v", ErrUnknownOpcode, pos, err)
		}

		switch instr.Op {
		case pngb.OpBeginRenderPass, pngb.OpBeginComputePass:
			id := d.nextID
			d.nextID++
			end, err := d.scanPassSpan(pos)
			if err != nil {
				return err
			}
			d.passes[id] = span{start: pos, end: end}
			pos = end
			continue

		case pngb.OpDefineFrame:
			end, err := d.recordFrame(instr, pos)
			if err != nil {
				return err
			}
			pos = end
			continue

		case pngb.OpEnd:
			pos += instr.Len
			continue

		default:
			if err := d.initStep(instr); err != nil {
				d.unwind()
				return err
			}
		}
		pos += instr.Len
	}

	if err := d.backend.Submit(); err != nil {
		return fmt.Errorf("dispatch: init submit: %w", err)
	}
	d.inited = true
	return nil
}

// initStep executes one resource-creation or init-time queue opcode.
func (d *dispatcher) initStep(instr pngb.Instr) error {
	o := instr.Operands
	switch instr.Op {
	case pngb.OpCreateBuffer:
		return d.create(rkBuffer, o[0], o[1], o[3], func() error {
			return d.backend.CreateBuffer(o[0], o[1], o[2], o[3])
		})
	case pngb.OpCreateTexture:
		return d.create(rkTexture, o[0], 0, 1, func() error {
			return d.backend.CreateTexture(o[0], d.mod.Data[o[1]])
		})
	case pngb.OpCreateSampler:
		return d.create(rkSampler, o[0], 0, 1, func() error {
			return d.backend.CreateSampler(o[0], d.mod.Data[o[1]])
		})
	case pngb.OpCreateShaderModule:
		src, imports := d.shaderSource(o[1])
		return d.create(rkShaderModule, o[0], 0, 1, func() error {
			return d.backend.CreateShaderModule(o[0], src, imports)
		})
	case pngb.OpCreateBindGroupLayout:
		return d.create(rkBindGroupLayout, o[0], 0, 1, func() error {
			return d.backend.CreateBindGroupLayout(o[0], d.mod.Data[o[1]])
		})
	case pngb.OpCreatePipelineLayout:
		return d.create(rkPipelineLayout, o[0], 0, 1, func() error {
			return d.backend.CreatePipelineLayout(o[0], o[2:2+o[1]])
		})
	case pngb.OpCreateRenderPipeline:
		return d.create(rkRenderPipeline, o[0], 0, 1, func() error {
			return d.backend.CreateRenderPipeline(o[0], d.mod.Data[o[1]])
		})
	case pngb.OpCreateComputePipeline:
		return d.create(rkComputePipeline, o[0], 0, 1, func() error {
			return d.backend.CreateComputePipeline(o[0], d.mod.Data[o[1]])
		})
	case pngb.OpCreateBindGroup:
		return d.create(rkBindGroup, o[0], 0, o[2], func() error {
			return d.backend.CreateBindGroup(o[0], d.mod.Data[o[1]])
		})

	case pngb.OpWriteBuffer:
		if err := d.requireLive(o[0]); err != nil {
			return err
		}
		return d.backend.WriteBuffer(o[0], o[1], d.mod.Data[o[2]])

	case pngb.OpCallWasm:
		if d.wasm == nil {
			return ErrNoWasmBackend
		}
		return d.wasm.CallExport(d.mod.Strings[o[0]], d.mod.Data[o[1]])

	case pngb.OpSubmit:
		return d.backend.Submit()

	default:
		return fmt.Errorf("%w: %s is not valid outside a pass or frame", ErrBadPassState, instr.Op)
	}
}

func (d *dispatcher) create(kind resourceKind, id, size, pool uint32, call func() error) error {
	if err := call(); err != nil {
		return fmt.Errorf("dispatch: create %s %d: %w", resourceKindNames[kind], id, err)
	}
	for int(id) >= len(d.resources) {
		d.resources = append(d.resources, resourceInfo{})
	}
	d.resources[id] = resourceInfo{kind: kind, size: size, pool: max(pool, 1), live: true}
	d.created = append(d.created, id)
	if id >= d.nextID {
		d.nextID = id + 1
	}
	return nil
}

// unwind destroys everything created so far, newest first, after a failed
// init.
func (d *dispatcher) unwind() {
	for i := len(d.created) - 1; i >= 0; i-- {
		_ = d.backend.Destroy(d.created[i])
		d.resources[d.created[i]].live = false
	}
	d.created = d.created[:0]
}

// shaderSource joins wgsl_id -> data_id via the WGSL table and
// concatenates the entry's dependency sources in table order.
func (d *dispatcher) shaderSource(wgslID uint32) (src, imports string) {
	entry := d.mod.WGSL[wgslID]
	var joined []byte
	for _, dep := range entry.Deps {
		joined = append(joined, d.mod.Data[d.mod.WGSL[dep].DataID]...)
		joined = append(joined, '\n')
	}
	return string(d.mod.Data[entry.DataID]), string(joined)
}

// scanPassSpan walks from a begin_*_pass opcode to its end_pass and
// returns the byte offset just past the end. Nested begins are rejected.
func (d *dispatcher) scanPassSpan(start int) (int, error) {
	ops := d.mod.Opcodes
	pos := start
	first := true
	for pos < len(ops) {
		instr, err := pngb.StepOpcode(ops[pos:])
		if err != nil {
			return 0, fmt.Errorf("%w: inside pass at offset %d: %v", ErrUnknownOpcode, pos, err)
		}
		switch instr.Op {
		case pngb.OpBeginRenderPass, pngb.OpBeginComputePass:
			if !first {
				return 0, fmt.Errorf("%w: begin inside an open pass at offset %d", ErrBadPassState, pos)
			}
		case pngb.OpEndPass:
			return pos + instr.Len, nil
		case pngb.OpEnd, pngb.OpDefineFrame, pngb.OpEndFrame:
			return 0, fmt.Errorf("%w: pass at offset %d never closed", ErrBadPassState, start)
		}
		first = false
		pos += instr.Len
	}
	return 0, fmt.Errorf("%w: pass at offset %d never closed", ErrBadPassState, start)
}

// recordFrame captures a define_frame ... end_frame span and registers
// every exec_pass_once offset inside it so the frame loop's once-tracking
// never has to grow the map.
func (d *dispatcher) recordFrame(instr pngb.Instr, pos int) (int, error) {
	ops := d.mod.Opcodes
	id, nameID := instr.Operands[0], instr.Operands[1]
	bodyStart := pos + instr.Len
	cur := bodyStart
	for cur < len(ops) {
		in, err := pngb.StepOpcode(ops[cur:])
		if err != nil {
			return 0, fmt.Errorf("%w: inside frame at offset %d: %v", ErrUnknownOpcode, cur, err)
		}
		if in.Op == pngb.OpExecOnce {
			d.onceDone[cur] = false
		}
		if in.Op == pngb.OpEndFrame {
			name := d.mod.Strings[nameID]
			d.frameIdx[name] = len(d.frames)
			d.frames = append(d.frames, frameDef{id: id, name: name, body: span{start: bodyStart, end: cur}})
			if id >= d.nextID {
				d.nextID = id + 1
			}
			return cur + in.Len, nil
		}
		cur += in.Len
	}
	return 0, fmt.Errorf("%w: frame %d never closed", ErrBadPassState, id)
}

func (d *dispatcher) Frame(timeSeconds float64, width, height uint32, inputs map[string][]byte) error {
	if d.shutdown {
		return ErrAlreadyShutdown
	}
	if !d.inited {
		return ErrNotInitialized
	}
	if len(d.frames) == 0 {
		return fmt.Errorf("%w: module defines no frames", ErrUnknownFrame)
	}

	d.fillQuad(timeSeconds, width, height)
	frame, hasClock := d.selectFrame(timeSeconds)
	if err := d.writeUniforms(inputs, hasClock); err != nil {
		return err
	}

	if err := d.execFrameBody(frame.body); err != nil {
		return err
	}
	if err := d.backend.Submit(); err != nil {
		return fmt.Errorf("dispatch: frame submit: %w", err)
	}
	d.frameNum++
	return nil
}

func (d *dispatcher) fillQuad(timeSeconds float64, width, height uint32) {
	aspect := float32(0)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}
	binary.LittleEndian.PutUint32(d.quad[0:4], math.Float32bits(float32(timeSeconds)))
	binary.LittleEndian.PutUint32(d.quad[4:8], math.Float32bits(float32(width)))
	binary.LittleEndian.PutUint32(d.quad[8:12], math.Float32bits(float32(height)))
	binary.LittleEndian.PutUint32(d.quad[12:16], math.Float32bits(aspect))
}

// selectFrame picks the active frame: the animation timeline when the
// module carries one, otherwise the configured frame name, otherwise the
// first defined frame. When the timeline drives selection it also fills
// the sceneTimeInputs scratch (sceneTime, sceneDuration, normalizedTime
// with the entry's easing applied).
func (d *dispatcher) selectFrame(timeSeconds float64) (frameDef, bool) {
	if d.mod.Header.Plugins&pngb.PluginAnimation != 0 && len(d.mod.Anims) > 0 {
		ms := timeSeconds * 1000
		entry := d.mod.Anims[len(d.mod.Anims)-1]
		for _, a := range d.mod.Anims {
			if ms >= float64(a.StartMS) && ms < float64(a.StartMS)+float64(a.DurationMS) {
				entry = a
				break
			}
		}
		sceneTime := ms - float64(entry.StartMS)
		normalized := 0.0
		if entry.DurationMS > 0 {
			normalized = sceneTime / float64(entry.DurationMS)
		}
		normalized = ease(entry.Easing, clamp01(normalized))
		binary.LittleEndian.PutUint32(d.triple[0:4], math.Float32bits(float32(sceneTime/1000)))
		binary.LittleEndian.PutUint32(d.triple[4:8], math.Float32bits(float32(entry.DurationMS)/1000))
		binary.LittleEndian.PutUint32(d.triple[8:12], math.Float32bits(float32(normalized)))
		if int(entry.FrameID) < len(d.frames) {
			return d.frames[entry.FrameID], true
		}
	}

	name := common.Coalesce(d.activeFrame, d.frames[0].name)
	if i, ok := d.frameIdx[name]; ok {
		return d.frames[i], false
	}
	return d.frames[0], false
}

// writeUniforms refreshes every uniform table entry before the frame's
// passes run. Built-in sources come from the frame inputs; user-named
// sources come from the caller's inputs map and are skipped (keeping
// their previous GPU contents) when absent this frame.
func (d *dispatcher) writeUniforms(inputs map[string][]byte, hasClock bool) error {
	for _, u := range d.mod.Uniforms {
		src := d.mod.Strings[u.SourceID]
		var b []byte
		switch src {
		case "pngineInputs":
			b = d.quad[:]
		case "time":
			b = d.quad[0:4]
		case "width":
			b = d.quad[4:8]
		case "height":
			b = d.quad[8:12]
		case "aspect":
			b = d.quad[12:16]
		case "sceneTimeInputs":
			if !hasClock {
				continue
			}
			b = d.triple[:]
		case "sceneTime":
			if !hasClock {
				continue
			}
			b = d.triple[0:4]
		case "sceneDuration":
			if !hasClock {
				continue
			}
			b = d.triple[4:8]
		case "normalizedTime":
			if !hasClock {
				continue
			}
			b = d.triple[8:12]
		default:
			v, ok := inputs[src]
			if !ok {
				continue
			}
			b = v
		}
		if len(b) != int(u.Size) {
			return fmt.Errorf("%w: uniform source %q supplies %d bytes, table entry wants %d", ErrUniformSize, src, len(b), u.Size)
		}
		if err := d.requireLive(u.BufferID); err != nil {
			return err
		}
		if err := d.backend.WriteBuffer(u.BufferID, u.Offset, b); err != nil {
			return fmt.Errorf("dispatch: write uniform %q: %w", src, err)
		}
	}
	return nil
}

// execFrameBody interprets one frame's opcode span: exec_pass and
// exec_pass_once references plus inlined queue ops. Pass-encoding ops at
// this level have no open pass and are rejected.
func (d *dispatcher) execFrameBody(body span) error {
	ops := d.mod.Opcodes
	pos := body.start
	for pos < body.end {
		op, n, next, err := d.step(ops, pos, body.end)
		if err != nil {
			return err
		}
		o := d.operands[:n]

		switch op {
		case pngb.OpExecPass:
			if err := d.execPass(o[0]); err != nil {
				return err
			}
		case pngb.OpExecOnce:
			if !d.onceDone[pos] {
				if err := d.execPass(o[0]); err != nil {
					return err
				}
				d.onceDone[pos] = true
			}
		case pngb.OpWriteBuffer:
			if err := d.requireLive(o[0]); err != nil {
				return err
			}
			if err := d.backend.WriteBuffer(o[0], o[1], d.mod.Data[o[2]]); err != nil {
				return fmt.Errorf("dispatch: write_buffer %d: %w", o[0], err)
			}
		case pngb.OpWriteTimeUniform:
			if err := d.writeTimeUniform(o[0]); err != nil {
				return err
			}
		case pngb.OpSubmit:
			if err := d.backend.Submit(); err != nil {
				return fmt.Errorf("dispatch: submit: %w", err)
			}
		default:
			return fmt.Errorf("%w: %s outside a pass", ErrBadPassState, op)
		}
		pos = next
	}
	return nil
}

// execPass replays one recorded pass span through the pass state machine.
func (d *dispatcher) execPass(id uint32) error {
	body, ok := d.passes[id]
	if !ok {
		return fmt.Errorf("%w: pass %d", ErrUnknownResource, id)
	}
	ops := d.mod.Opcodes
	pos := body.start
	for pos < body.end {
		op, n, next, err := d.step(ops, pos, body.end)
		if err != nil {
			d.state = notEncoding
			return err
		}
		if err := d.passStep(op, d.operands[:n]); err != nil {
			d.state = notEncoding
			return err
		}
		pos = next
	}
	if d.state != notEncoding {
		d.state = notEncoding
		return fmt.Errorf("%w: pass %d left open", ErrBadPassState, id)
	}
	return nil
}

func (d *dispatcher) passStep(op pngb.Op, o []uint32) error {
	switch op {
	case pngb.OpBeginRenderPass:
		if d.state != notEncoding {
			return fmt.Errorf("%w: begin_render_pass while encoding", ErrBadPassState)
		}
		if err := d.backend.BeginRenderPass(d.mod.Data[o[0]]); err != nil {
			return fmt.Errorf("dispatch: begin_render_pass: %w", err)
		}
		d.state = inRenderPass
	case pngb.OpBeginComputePass:
		if d.state != notEncoding {
			return fmt.Errorf("%w: begin_compute_pass while encoding", ErrBadPassState)
		}
		if err := d.backend.BeginComputePass(); err != nil {
			return fmt.Errorf("dispatch: begin_compute_pass: %w", err)
		}
		d.state = inComputePass
	case pngb.OpEndPass:
		if d.state == notEncoding {
			return fmt.Errorf("%w: end_pass without begin", ErrBadPassState)
		}
		if err := d.backend.EndPass(); err != nil {
			return fmt.Errorf("dispatch: end_pass: %w", err)
		}
		d.state = notEncoding

	case pngb.OpSetPipeline:
		if d.state == notEncoding {
			return fmt.Errorf("%w: set_pipeline outside a pass", ErrBadPassState)
		}
		if err := d.requireLive(o[0]); err != nil {
			return err
		}
		return d.backend.SetPipeline(o[0])
	case pngb.OpSetBindGroup:
		if d.state == notEncoding {
			return fmt.Errorf("%w: set_bind_group outside a pass", ErrBadPassState)
		}
		if err := d.requireLive(o[1]); err != nil {
			return err
		}
		return d.backend.SetBindGroup(o[0], o[1])
	case pngb.OpSetBindGroupPool:
		if d.state == notEncoding {
			return fmt.Errorf("%w: set_bind_group_pool outside a pass", ErrBadPassState)
		}
		if err := d.requireLive(o[1]); err != nil {
			return err
		}
		return d.backend.SetBindGroup(o[0], d.poolMember(o[1], o[2]))
	case pngb.OpSetVertexBuffer:
		if d.state != inRenderPass {
			return fmt.Errorf("%w: set_vertex_buffer outside a render pass", ErrBadPassState)
		}
		if err := d.requireLive(o[1]); err != nil {
			return err
		}
		return d.backend.SetVertexBuffer(o[0], o[1])
	case pngb.OpSetVertexBufferPool:
		if d.state != inRenderPass {
			return fmt.Errorf("%w: set_vertex_buffer_pool outside a render pass", ErrBadPassState)
		}
		if err := d.requireLive(o[1]); err != nil {
			return err
		}
		return d.backend.SetVertexBuffer(o[0], d.poolMember(o[1], o[2]))
	case pngb.OpSetIndexBuffer:
		if d.state != inRenderPass {
			return fmt.Errorf("%w: set_index_buffer outside a render pass", ErrBadPassState)
		}
		if err := d.requireLive(o[0]); err != nil {
			return err
		}
		return d.backend.SetIndexBuffer(o[0], o[1])
	case pngb.OpDraw:
		if d.state != inRenderPass {
			return fmt.Errorf("%w: draw outside a render pass", ErrBadPassState)
		}
		return d.backend.Draw(o[0], o[1])
	case pngb.OpDrawIndexed:
		if d.state != inRenderPass {
			return fmt.Errorf("%w: draw_indexed outside a render pass", ErrBadPassState)
		}
		return d.backend.DrawIndexed(o[0], o[1])
	case pngb.OpDispatch:
		if d.state != inComputePass {
			return fmt.Errorf("%w: dispatch outside a compute pass", ErrBadPassState)
		}
		return d.backend.Dispatch(o[0], o[1], o[2])

	case pngb.OpWriteBuffer:
		if err := d.requireLive(o[0]); err != nil {
			return err
		}
		return d.backend.WriteBuffer(o[0], o[1], d.mod.Data[o[2]])
	case pngb.OpWriteTimeUniform:
		return d.writeTimeUniform(o[0])

	default:
		return fmt.Errorf("%w: %s inside a pass", ErrBadPassState, op)
	}
	return nil
}

// writeTimeUniform uploads the 16-byte pngineInputs quad. The target
// buffer's size must be exactly 16.
func (d *dispatcher) writeTimeUniform(id uint32) error {
	if err := d.requireLive(id); err != nil {
		return err
	}
	if d.resources[id].size != 16 {
		return fmt.Errorf("%w: write_time_uniform target %d has size %d, want 16", ErrUniformSize, id, d.resources[id].size)
	}
	if err := d.backend.WriteBuffer(id, 0, d.quad[:]); err != nil {
		return fmt.Errorf("dispatch: write_time_uniform %d: %w", id, err)
	}
	return nil
}

// poolMember resolves a pooled resource access to the concrete member id:
// base + (frame counter + offset) mod pool size.
func (d *dispatcher) poolMember(base, offset uint32) uint32 {
	n := d.resources[base].pool
	return base + (d.frameNum+offset)%n
}

func (d *dispatcher) requireLive(id uint32) error {
	if int(id) >= len(d.resources) || !d.resources[id].live {
		return fmt.Errorf("%w: %d", ErrUnknownResource, id)
	}
	return nil
}

// step decodes one instruction at pos into the reused operand scratch,
// returning the opcode, operand count, and the next offset. It handles
// only fixed-arity opcodes; the variadic create_pipeline_layout never
// appears inside pass or frame spans.
func (d *dispatcher) step(ops []byte, pos, end int) (pngb.Op, int, int, error) {
	op := pngb.Op(ops[pos])
	n, ok := pngb.Arity(op)
	if !ok || n > len(d.operands) {
		return 0, 0, 0, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnknownOpcode, byte(op), pos)
	}
	cur := pos + 1
	for i := 0; i < n; i++ {
		if cur >= end {
			return 0, 0, 0, fmt.Errorf("%w: truncated operands at offset %d", ErrUnknownOpcode, pos)
		}
		v, sz, err := pngb.ReadVarint(ops[cur:])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: at offset %d: %v", ErrUnknownOpcode, cur, err)
		}
		d.operands[i] = v
		cur += sz
	}
	return op, n, cur, nil
}

func (d *dispatcher) Shutdown() error {
	if d.shutdown {
		return ErrAlreadyShutdown
	}
	for i := len(d.created) - 1; i >= 0; i-- {
		id := d.created[i]
		if !d.resources[id].live {
			continue
		}
		if err := d.backend.Destroy(id); err != nil {
			return fmt.Errorf("dispatch: destroy %s %d: %w", resourceKindNames[d.resources[id].kind], id, err)
		}
		d.resources[id].live = false
	}
	d.shutdown = true
	if err := d.backend.End(); err != nil {
		return fmt.Errorf("dispatch: end: %w", err)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ease applies the animation table's easing tag to a normalized time;
// tag 0 is linear.
func ease(tag uint8, n float64) float64 {
	switch tag {
	case 1: // easeIn
		return n * n
	case 2: // easeOut
		return 1 - (1-n)*(1-n)
	case 3: // easeInOut
		return n * n * (3 - 2*n)
	default:
		return n
	}
}
