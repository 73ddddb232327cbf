package emit

import (
	"github.com/oxy-lang/pngb/pngb"
	"github.com/oxy-lang/pngb/scene"
)

// emitWGSL walks scene.WGSL in import-topological order (dependencies
// before dependents) and emits one create_shader_module per module. The
// WGSL table index assigned here (not the global resource id) is what
// pipeline descriptors embed: pipeline creation never carries a raw
// data_id for shader source, only a wgsl_id.
func (e *emitter) emitWGSL() error {
	n := len(e.scene.WGSL)
	e.wgslGlobalID = make([]uint32, n)
	e.wgslTableIdx = make([]uint32, n)

	visited := make([]bool, n)
	var order []uint32

	var visit func(i uint32)
	visit = func(i uint32) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, dep := range e.scene.WGSLImports[i] {
			visit(dep)
		}
		order = append(order, i)
	}
	for i := 0; i < n; i++ {
		visit(uint32(i))
	}

	for _, i := range order {
		d := e.scene.WGSL[i]
		src, _ := d.Fields["source"]
		dataID := e.addData([]byte(src.Str))

		deps := make([]uint32, 0, len(e.scene.WGSLImports[i]))
		for _, dep := range e.scene.WGSLImports[i] {
			deps = append(deps, e.wgslTableIdx[dep])
		}

		tableIdx := uint32(len(e.wgslTable))
		e.wgslTable = append(e.wgslTable, pngb.WGSLEntry{DataID: dataID, Deps: deps})
		e.wgslTableIdx[i] = tableIdx

		id := e.alloc()
		e.wgslGlobalID[i] = id
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateShaderModule, id, tableIdx)
	}
	return nil
}

func (e *emitter) emitBuffers() error {
	decls := e.scene.Buffers
	e.bufferID = make([]uint32, len(decls))

	for i, d := range decls {
		size, _ := d.Fields["size"]
		usageList, _ := d.Fields["usage"]
		var idents []string
		for _, v := range usageList.List {
			idents = append(idents, v.Ident)
		}
		usage := usageBits(idents)
		if mac, ok := d.Fields["mappedAtCreation"]; ok && mac.Ident == "true" {
			usage |= UsageMappedAtCreation
		}

		n := 1
		if pool, ok := d.Fields["pool"]; ok {
			n = int(pool.Int)
		}

		base := e.alloc()
		e.bufferID[i] = base
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateBuffer, base, uint32(size.Int), usage, uint32(n))
		for k := 1; k < n; k++ {
			id := e.alloc()
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateBuffer, id, uint32(size.Int), usage, uint32(n))
		}

		if initial, ok := d.Fields["initialData"]; ok {
			b, err := e.dataBytesFor(initial.Ref)
			if err != nil {
				return err
			}
			dataID := e.addData(b)
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpWriteBuffer, base, 0, dataID)
		}
	}
	return nil
}

func (e *emitter) emitTextures() error {
	decls := e.scene.Textures
	e.textureID = make([]uint32, len(decls))

	for i, d := range decls {
		width, _ := d.Fields["width"]
		height, _ := d.Fields["height"]
		format, _ := d.Fields["format"]
		usageList, _ := d.Fields["usage"]
		var idents []string
		for _, v := range usageList.List {
			idents = append(idents, v.Ident)
		}

		desc := textureDescriptor{
			Format: format.Ident,
			Usage:  usageBits(idents),
		}
		if width.Kind == scene.ValInt {
			desc.Width = uint32(width.Int)
		} else {
			desc.WidthSource = width.Ident
		}
		if height.Kind == scene.ValInt {
			desc.Height = uint32(height.Int)
		} else {
			desc.HeightSource = height.Ident
		}
		if src, ok := d.Fields["source"]; ok {
			b, err := e.dataBytesFor(src.Ref)
			if err != nil {
				return err
			}
			srcID := e.addData(b)
			desc.Source = &srcID
		}
		if sc, ok := d.Fields["sampleCount"]; ok {
			desc.SampleCount = uint32(sc.Int)
		}
		if mlc, ok := d.Fields["mipLevelCount"]; ok {
			desc.MipLevelCount = uint32(mlc.Int)
		}
		n := 1
		if pool, ok := d.Fields["pool"]; ok {
			n = int(pool.Int)
			desc.Pool = uint32(n)
		}

		dataID, err := e.addJSON(desc)
		if err != nil {
			return err
		}

		base := e.alloc()
		e.textureID[i] = base
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateTexture, base, dataID)
		for k := 1; k < n; k++ {
			id := e.alloc()
			e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateTexture, id, dataID)
		}
	}
	return nil
}

func (e *emitter) emitSamplers() {
	decls := e.scene.Samplers
	e.samplerID = make([]uint32, len(decls))
	for i, d := range decls {
		desc := samplerDescriptor{}
		if v, ok := d.Fields["magFilter"]; ok {
			desc.MagFilter = v.Ident
		}
		if v, ok := d.Fields["minFilter"]; ok {
			desc.MinFilter = v.Ident
		}
		if v, ok := d.Fields["addressModeU"]; ok {
			desc.AddressModeU = v.Ident
		}
		if v, ok := d.Fields["addressModeV"]; ok {
			desc.AddressModeV = v.Ident
		}
		dataID, err := e.addJSON(desc)
		if err != nil {
			// samplerDescriptor always marshals cleanly; unreachable.
			dataID = e.addData(nil)
		}
		id := e.alloc()
		e.samplerID[i] = id
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateSampler, id, dataID)
	}
}

func (e *emitter) emitBindGroupLayouts() error {
	decls := e.scene.BindGroupLayouts
	e.bglID = make([]uint32, len(decls))
	for i, d := range decls {
		entries, _ := d.Fields["entries"]
		var bgl bindGroupLayoutDescriptor
		for _, ent := range entries.List {
			var e2 bindGroupLayoutEntry
			if b, ok := ent.Fields["binding"]; ok {
				e2.Binding = uint32(b.Int)
			}
			if v, ok := ent.Fields["visibility"]; ok {
				e2.Visibility = v.Ident
			}
			if v, ok := ent.Fields["kind"]; ok {
				e2.Kind = v.Ident
			}
			bgl.Entries = append(bgl.Entries, e2)
		}
		dataID, err := e.addJSON(bgl)
		if err != nil {
			return err
		}
		id := e.alloc()
		e.bglID[i] = id
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreateBindGroupLayout, id, dataID)
	}
	return nil
}

func (e *emitter) emitPipelineLayouts() {
	decls := e.scene.PipelineLayouts
	e.plID = make([]uint32, len(decls))
	for i, d := range decls {
		bgls, _ := d.Fields["bindGroupLayouts"]
		ids := make([]uint32, 0, len(bgls.List)+1)
		id := e.alloc()
		e.plID[i] = id
		ids = append(ids, id)
		for _, v := range bgls.List {
			ids = append(ids, e.bglID[v.Ref.ID])
		}
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCreatePipelineLayout, ids...)
	}
}
