package emit

import (
	"github.com/oxy-lang/pngb/pngb"
	"github.com/oxy-lang/pngb/scene"
)

func (e *emitter) emitRenderPipelines() error {
	decls := e.scene.RenderPipelines
	e.renderPipeID = make([]uint32, len(decls))

	for i, d := range decls {
		layout := d.Fields["layout"]
		vertex := d.Fields["vertex"]
		targets := d.Fields["targets"]

		desc := renderPipelineDescriptor{
			LayoutID:     e.plID[layout.Ref.ID],
			VertexWGSLID: e.wgslTableIdx[vertex.Ref.ID],
			Targets:      e.anyRecordList(targets),
		}
		if v, ok := d.Fields["vertexEntryPoint"]; ok {
			desc.VertexEntryPoint = v.Str
		}
		if frag, ok := d.Fields["fragment"]; ok {
			id := e.wgslTableIdx[frag.Ref.ID]
			desc.FragmentWGSLID = &id
		}
		if v, ok := d.Fields["fragmentEntryPoint"]; ok {
			desc.FragmentEntryPoint = v.Str
		}
		if v, ok := d.Fields["topology"]; ok {
			desc.Topology = v.Ident
		}
		if v, ok := d.Fields["primitive"]; ok {
			desc.Primitive = e.anyRecord(v)
		}
		if v, ok := d.Fields["depthStencil"]; ok {
			desc.DepthStencil = e.anyRecord(v)
		}
		if v, ok := d.Fields["multisample"]; ok {
			desc.Multisample = e.anyRecord(v)
		}
		if v, ok := d.Fields["uniformStruct"]; ok {
			desc.UniformStruct = v.Str
		}
		if size, ok := d.UniformSize(); ok {
			desc.UniformSize = size
		}

		dataID, err := e.addJSON(desc)
		if err != nil {
			return err
		}
		id := e.alloc()
		e.renderPipeID[i] = id
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateRenderPipeline, id, dataID)
	}
	return nil
}

func (e *emitter) emitComputePipelines() error {
	decls := e.scene.ComputePipelines
	e.computePipeID = make([]uint32, len(decls))

	for i, d := range decls {
		layout := d.Fields["layout"]
		compute := d.Fields["compute"]

		desc := computePipelineDescriptor{
			LayoutID:      e.plID[layout.Ref.ID],
			ComputeWGSLID: e.wgslTableIdx[compute.Ref.ID],
		}
		if v, ok := d.Fields["computeEntryPoint"]; ok {
			desc.ComputeEntryPoint = v.Str
		}
		if v, ok := d.Fields["uniformStruct"]; ok {
			desc.UniformStruct = v.Str
		}
		if size, ok := d.UniformSize(); ok {
			desc.UniformSize = size
		}

		dataID, err := e.addJSON(desc)
		if err != nil {
			return err
		}
		id := e.alloc()
		e.computePipeID[i] = id
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateComputePipeline, id, dataID)
	}
	return nil
}

func (e *emitter) emitBindGroups() error {
	decls := e.scene.BindGroups
	e.bindGroupID = make([]uint32, len(decls))

	for i, d := range decls {
		layout := d.Fields["layout"]
		entries := d.Fields["entries"]

		n := 1
		if pool, ok := d.Fields["pool"]; ok {
			n = int(pool.Int)
		}

		// A pooled bind group expands to n concrete variants, consecutive
		// ids with the base first, exactly like pooled buffers. Variant k
		// resolves every pingPong entry to the member the pool formula
		// selects at frame counter k, so runtime selection is pure id
		// arithmetic and the descriptor blob stays free of pool state.
		for variant := 0; variant < n; variant++ {
			desc := bindGroupDescriptor{LayoutID: e.bglID[layout.Ref.ID]}
			for _, ent := range entries.List {
				var be bindGroupEntry
				if b, ok := ent.Fields["binding"]; ok {
					be.Binding = uint32(b.Int)
				}
				if res, ok := ent.Fields["resource"]; ok && res.Kind == scene.ValRef {
					be.Kind = res.Ref.Kind.String()
					be.ID = e.globalIDFor(res.Ref)
					if pp, ok := ent.Fields["pingPong"]; ok {
						be.ID += uint32((variant + int(pp.Int)) % e.poolSizeOf(res.Ref))
					}
				}
				desc.Entries = append(desc.Entries, be)
			}

			dataID, err := e.addJSON(desc)
			if err != nil {
				return err
			}
			id := e.alloc()
			if variant == 0 {
				e.bindGroupID[i] = id
			}
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateBindGroup, id, dataID, uint32(n))
		}
	}
	return nil
}

// poolSizeOf returns the declared pool count of the buffer or texture a
// reference names, defaulting to 1 for unpooled resources.
func (e *emitter) poolSizeOf(r scene.Ref) int {
	var d *scene.Decl
	switch r.Kind {
	case scene.RefBuffer:
		d = &e.scene.Buffers[r.ID]
	case scene.RefTexture:
		d = &e.scene.Textures[r.ID]
	default:
		return 1
	}
	if v, ok := d.Field("pool"); ok && v.Int > 0 {
		return int(v.Int)
	}
	return 1
}

// globalIDFor resolves a resolved reference to whatever resource's global
// emission id it names, across the namespaces the emitter tracks.
func (e *emitter) globalIDFor(r scene.Ref) uint32 {
	switch r.Kind {
	case scene.RefBuffer:
		return e.bufferID[r.ID]
	case scene.RefTexture:
		return e.textureID[r.ID]
	case scene.RefSampler:
		return e.samplerID[r.ID]
	case scene.RefBindGroup:
		return e.bindGroupID[r.ID]
	case scene.RefRenderPipeline:
		return e.renderPipeID[r.ID]
	case scene.RefComputePipeline:
		return e.computePipeID[r.ID]
	case scene.RefBindGroupLayout:
		return e.bglID[r.ID]
	case scene.RefPipelineLayout:
		return e.plID[r.ID]
	case scene.RefWGSL:
		return e.wgslGlobalID[r.ID]
	}
	return 0
}
