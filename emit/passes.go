package emit

import (
	"fmt"

	"github.com/oxy-lang/pngb/pngb"
	"github.com/oxy-lang/pngb/scene"
)

var indexFormats = map[string]uint32{"uint16": 0, "uint32": 1}

// emitPassDefinitions emits every render/compute pass's body once, as a
// begin_*_pass ... end_pass block. begin_render_pass carries only its
// attachment descriptor, not an explicit id operand; the pass's id is the
// same dense, first-emission-order id every other resource gets, assigned
// here by alloc() the moment its begin op is emitted. The
// dispatcher derives the identical id during init by walking the stream
// in the same order, so emitter and dispatcher never need to agree on
// anything beyond "walk the opcodes in order."
func (e *emitter) emitPassDefinitions() error {
	e.renderPassID = make([]uint32, len(e.scene.RenderPasses))
	for i, d := range e.scene.RenderPasses {
		attach := map[string]any{}
		if ca, ok := d.Fields["colorAttachments"]; ok {
			attach["colorAttachments"] = e.anyRecordList(ca)
		}
		if ds, ok := d.Fields["depthStencilAttachment"]; ok {
			attach["depthStencilAttachment"] = e.anyRecord(ds)
		}
		dataID, err := e.addJSON(attach)
		if err != nil {
			return err
		}
		id := e.alloc()
		e.renderPassID[i] = id
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpBeginRenderPass, dataID)

		if pipe, ok := d.Fields["pipeline"]; ok {
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetPipeline, e.globalIDFor(pipe.Ref))
		}
		if bgs, ok := d.Fields["bindGroups"]; ok {
			e.emitBindGroupSets(bgs)
		}
		if draw, ok := d.Fields["draw"]; ok {
			e.emitDraw(draw)
		}
		if draw, ok := d.Fields["drawIndexed"]; ok {
			e.emitDrawIndexed(draw)
		}
		if ops, ok := d.Fields["ops"]; ok {
			if err := e.emitOps(ops); err != nil {
				return err
			}
		}
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpEndPass)
	}

	e.computePassID = make([]uint32, len(e.scene.ComputePasses))
	for i, d := range e.scene.ComputePasses {
		id := e.alloc()
		e.computePassID[i] = id
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpBeginComputePass)

		if pipe, ok := d.Fields["pipeline"]; ok {
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetPipeline, e.globalIDFor(pipe.Ref))
		}
		if bgs, ok := d.Fields["bindGroups"]; ok {
			e.emitBindGroupSets(bgs)
		}
		if dispatch, ok := d.Fields["dispatch"]; ok {
			e.emitDispatch(dispatch)
		}
		if ops, ok := d.Fields["ops"]; ok {
			if err := e.emitOps(ops); err != nil {
				return err
			}
		}
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpEndPass)
	}
	return nil
}

func (e *emitter) emitBindGroupSets(list scene.Value) {
	for slot, v := range list.List {
		if v.Kind != scene.ValRef {
			continue
		}
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetBindGroup, uint32(slot), e.globalIDFor(v.Ref))
	}
}

func (e *emitter) emitDraw(v scene.Value) {
	count := v.Fields["vertexCount"]
	instances := uint32(1)
	if ic, ok := v.Fields["instanceCount"]; ok {
		instances = uint32(ic.Int)
	}
	e.ops = pngb.EmitOpcode(e.ops, pngb.OpDraw, uint32(count.Int), instances)
}

func (e *emitter) emitDrawIndexed(v scene.Value) {
	count := v.Fields["indexCount"]
	instances := uint32(1)
	if ic, ok := v.Fields["instanceCount"]; ok {
		instances = uint32(ic.Int)
	}
	e.ops = pngb.EmitOpcode(e.ops, pngb.OpDrawIndexed, uint32(count.Int), instances)
}

func (e *emitter) emitDispatch(v scene.Value) {
	x := v.Fields["x"]
	y, z := uint32(1), uint32(1)
	if yy, ok := v.Fields["y"]; ok {
		y = uint32(yy.Int)
	}
	if zz, ok := v.Fields["z"]; ok {
		z = uint32(zz.Int)
	}
	e.ops = pngb.EmitOpcode(e.ops, pngb.OpDispatch, uint32(x.Int), y, z)
}

// emitOps lowers one pass/queue's "ops" list (already schema-validated by
// scene's opsPass) into the matching opcode per entry.
func (e *emitter) emitOps(list scene.Value) error {
	for _, entry := range list.List {
		op := entry.Fields["op"].Ident
		switch op {
		case "setPipeline":
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetPipeline, e.globalIDFor(entry.Fields["pipeline"].Ref))
		case "setBindGroup":
			slot := uint32(entry.Fields["slot"].Int)
			id := e.globalIDFor(entry.Fields["bindGroup"].Ref)
			if pp, ok := entry.Fields["pingPong"]; ok {
				e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetBindGroupPool, slot, id, uint32(pp.Int))
			} else {
				e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetBindGroup, slot, id)
			}
		case "setVertexBuffer":
			slot := uint32(entry.Fields["slot"].Int)
			id := e.globalIDFor(entry.Fields["buffer"].Ref)
			if pp, ok := entry.Fields["pingPong"]; ok {
				e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetVertexBufferPool, slot, id, uint32(pp.Int))
			} else {
				e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetVertexBuffer, slot, id)
			}
		case "setIndexBuffer":
			id := e.globalIDFor(entry.Fields["buffer"].Ref)
			format := uint32(0)
			if fmtv, ok := entry.Fields["format"]; ok {
				format = indexFormats[fmtv.Ident]
			}
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpSetIndexBuffer, id, format)
		case "draw":
			e.emitDraw(entry)
		case "drawIndexed":
			e.emitDrawIndexed(entry)
		case "dispatch":
			e.emitDispatch(entry)
		case "writeBuffer":
			bufID := e.globalIDFor(entry.Fields["buffer"].Ref)
			offset := uint32(0)
			if off, ok := entry.Fields["offset"]; ok {
				offset = uint32(off.Int)
			}
			b, err := e.dataBytesFor(entry.Fields["data"].Ref)
			if err != nil {
				return err
			}
			dataID := e.addData(b)
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpWriteBuffer, bufID, offset, dataID)
		case "writeTimeUniform":
			bufID := e.globalIDFor(entry.Fields["buffer"].Ref)
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpWriteTimeUniform, bufID)
		case "submit":
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpSubmit)
		default:
			return fmt.Errorf("emit: unhandled op %q", op)
		}
	}
	return nil
}

// emitFrames lowers every frame's before/init/perform lists:
// before/perform entries repeat every Frame call (exec_pass), init
// entries fire once over the dispatcher's lifetime (exec_pass_once). A
// $queue entry inlines that queue's own ops directly in place, since
// queues have no pass envelope of their own to exec_pass into.
func (e *emitter) emitFrames() error {
	for _, d := range e.scene.Frames {
		name := e.internString(d.Name)
		id := e.alloc()
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpDefineFrame, id, name)

		for _, field := range []struct {
			name string
			op   pngb.Op
		}{{"before", pngb.OpExecPass}, {"init", pngb.OpExecOnce}, {"perform", pngb.OpExecPass}} {
			list, ok := d.Fields[field.name]
			if !ok {
				continue
			}
			for _, entry := range list.List {
				if entry.Kind != scene.ValRef {
					continue
				}
				switch entry.Ref.Kind {
				case scene.RefRenderPass:
					e.ops = pngb.EmitOpcode(e.ops, field.op, e.renderPassID[entry.Ref.ID])
				case scene.RefComputePass:
					e.ops = pngb.EmitOpcode(e.ops, field.op, e.computePassID[entry.Ref.ID])
				case scene.RefQueue:
					qd := e.scene.Queues[entry.Ref.ID]
					if ops, ok := qd.Fields["ops"]; ok {
						if err := e.emitOps(ops); err != nil {
							return err
						}
					}
				}
			}
		}

		e.ops = pngb.EmitOpcode(e.ops, pngb.OpEndFrame)
	}
	return nil
}
