package emit

import "github.com/oxy-lang/pngb/scene"

// anyValue converts an analyzed scene.Value into a plain Go value suitable
// for encoding/json, for the handful of schema fields (targets, primitive,
// depthStencil, multisample, colorAttachments, ...) that the analyzer
// leaves as opaque records because their shape varies by backend rather
// than by this DSL's own grammar. References embedded inside these
// records are resolved to the same global resource id the dispatcher's
// handle table will use, so a descriptor stays fully self-contained for
// an opaque consumer.
func (e *emitter) anyValue(v scene.Value) any {
	switch v.Kind {
	case scene.ValInt:
		return v.Int
	case scene.ValFloat:
		return v.Float
	case scene.ValString:
		return v.Str
	case scene.ValIdent:
		return v.Ident
	case scene.ValRef:
		return map[string]any{"kind": v.Ref.Kind.String(), "id": e.globalIDFor(v.Ref)}
	case scene.ValList:
		out := make([]any, len(v.List))
		for i, el := range v.List {
			out[i] = e.anyValue(el)
		}
		return out
	case scene.ValRecord:
		out := make(map[string]any, len(v.Fields))
		for k, el := range v.Fields {
			out[k] = e.anyValue(el)
		}
		return out
	}
	return nil
}

func (e *emitter) anyRecord(v scene.Value) map[string]any {
	if v.Kind != scene.ValRecord {
		return nil
	}
	out := make(map[string]any, len(v.Fields))
	for k, el := range v.Fields {
		out[k] = e.anyValue(el)
	}
	return out
}

func (e *emitter) anyRecordList(v scene.Value) []map[string]any {
	out := make([]map[string]any, 0, len(v.List))
	for _, el := range v.List {
		out = append(out, e.anyRecord(el))
	}
	return out
}
