package emit

import "github.com/oxy-lang/pngb/pngb"

// emitUniformTable lowers Scene.UniformEntries into the pngb table,
// interning each source tag into the string table so built-in and
// user-named sources cost the dispatcher one string lookup each.
func (e *emitter) emitUniformTable() {
	for _, u := range e.scene.UniformEntries {
		e.uniforms = append(e.uniforms, pngb.UniformEntry{
			BufferID: e.bufferID[u.BufferID],
			Offset:   u.Offset,
			Size:     u.Size,
			SourceID: e.internString(u.Source),
		})
	}
}

var easingTags = map[string]uint8{
	"linear": 0, "easeIn": 1, "easeOut": 2, "easeInOut": 3,
}

// emitAnimTable lowers every #animation declaration into one animation
// table row. duration/start are authored in seconds (matching the rest of
// the DSL's float fields) and converted to the milliseconds the wire row
// carries.
func (e *emitter) emitAnimTable() {
	for i, d := range e.scene.Animations {
		target := d.Fields["target"]
		duration := d.Fields["duration"]
		startMS := uint32(0)
		if start, ok := d.Fields["start"]; ok {
			startMS = uint32(start.AsFloat() * 1000)
		}
		easing := uint8(0)
		if ev, ok := d.Fields["easing"]; ok {
			easing = easingTags[ev.Ident]
		}
		e.anims = append(e.anims, pngb.AnimEntry{
			SceneID:    uint32(i),
			StartMS:    startMS,
			DurationMS: uint32(duration.AsFloat() * 1000),
			FrameID:    target.Ref.ID,
			Easing:     easing,
		})
	}
}

// emitWasmCalls lowers every #wasmCall declaration into a call_wasm
// opcode. The DSL has no way yet for a frame's before/init/perform list
// to name a #wasmCall, so these run once, immediately after pass
// definitions and before any frame is defined, the same once-per-lifetime
// timing exec_pass_once entries get.
func (e *emitter) emitWasmCalls() error {
	for _, w := range e.scene.WasmCalls {
		b, err := e.dataBytesFor(w.DataRef)
		if err != nil {
			return err
		}
		dataID := e.addData(b)
		e.ops = pngb.EmitOpcode(e.ops, pngb.OpCallWasm, e.internString(w.Export), dataID)
	}
	return nil
}
