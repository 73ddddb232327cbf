package scene

import (
	"strings"

	"github.com/oxy-lang/pngb/ast"
	"github.com/oxy-lang/pngb/diag"
	"github.com/oxy-lang/pngb/token"
)

// fieldPass type-checks every generic declaration's fields against its
// macro kind's schema and resolves every reference it contains. By this
// point declarePass has finished, so every namespace's symbol table is
// complete and forward references resolve correctly regardless of
// declaration order.
func (a *analyzer) fieldPass() {
	for _, slicePtr := range a.allDeclSlices() {
		for i := range *slicePtr {
			a.checkDecl(&(*slicePtr)[i])
		}
	}
}

func (a *analyzer) allDeclSlices() []*[]Decl {
	return []*[]Decl{
		&a.scene.Buffers, &a.scene.Textures, &a.scene.Samplers, &a.scene.WGSL,
		&a.scene.BindGroupLayouts, &a.scene.PipelineLayouts,
		&a.scene.RenderPipelines, &a.scene.ComputePipelines, &a.scene.BindGroups,
		&a.scene.RenderPasses, &a.scene.ComputePasses, &a.scene.Frames,
		&a.scene.Queues, &a.scene.Animations,
	}
}

func (a *analyzer) checkDecl(d *Decl) {
	schema, ok := schemas[d.Tag]
	if !ok {
		return
	}
	d.Fields = make(map[string]Value, len(schema.Fields))

	for _, fs := range schema.Fields {
		nodeID, present := d.FieldsRaw[fs.Name]
		if !present {
			if fs.Required {
				a.errorf(diag.MissingField, a.tree.TokenRange(d.DeclToken),
					"%s %q missing required field %q", d.Tag, d.Name, fs.Name)
			}
			continue
		}
		v, ok := a.buildValue(nodeID)
		if !ok {
			continue
		}
		if !a.checkFieldType(d, fs, v) {
			continue
		}
		d.Fields[fs.Name] = v
	}

	for name, tok := range d.fieldToks {
		if _, known := schema.lookup(name); !known {
			a.errorf(diag.UnknownField, a.tree.TokenRange(tok), "%s %q has no field %q", d.Tag, d.Name, name)
		}
	}
}

func (a *analyzer) checkFieldType(d *Decl, fs FieldSchema, v Value) bool {
	ok := false
	switch fs.Type {
	case TAny:
		ok = true
	case TInt:
		ok = v.Kind == ValInt
	case TFloat:
		ok = v.Kind == ValInt || v.Kind == ValFloat
	case TString:
		ok = v.Kind == ValString
	case TIdent:
		ok = v.Kind == ValIdent
	case TRef:
		ok = v.Kind == ValRef
		if ok && len(fs.RefKinds) > 0 {
			ok = false
			for _, k := range fs.RefKinds {
				if v.Ref.Kind == k {
					ok = true
					break
				}
			}
		}
	case TList:
		ok = v.Kind == ValList
	case TRecord:
		ok = v.Kind == ValRecord
	case TDim:
		ok = v.Kind == ValInt || (v.Kind == ValIdent && canvasDims[v.Ident])
	}
	if !ok {
		a.errorf(diag.TypeMismatch, a.tree.TokenRange(d.fieldToks[fs.Name]),
			"%s %q field %q has the wrong type", d.Tag, d.Name, fs.Name)
	}
	return ok
}

// buildValue converts an ast.Node into a resolved Value, substituting
// #define constants for bare identifiers that name one and resolving
// reference tokens against the namespace symbol tables.
func (a *analyzer) buildValue(id ast.NodeId) (Value, bool) {
	n := a.tree.Node(id)
	switch n.Tag {
	case ast.Number:
		text := string(a.tree.TokenText(n.SourceToken))
		if iv, ok := parseIntLiteral(text); ok {
			return Value{Kind: ValInt, Int: iv}, true
		}
		if fv, ok := parseFloatLiteral(text); ok {
			return Value{Kind: ValFloat, Float: fv}, true
		}
		a.errorf(diag.BadNumber, a.tree.TokenRange(n.SourceToken), "malformed number")
		return Value{}, false

	case ast.String:
		return Value{Kind: ValString, Str: unquote(string(a.tree.TokenText(n.SourceToken)))}, true

	case ast.Ident:
		name := string(a.tree.TokenText(n.SourceToken))
		if dv, ok := a.scene.Defines[name]; ok {
			return dv, true
		}
		return Value{Kind: ValIdent, Ident: name}, true

	case ast.Reference:
		ref, ok := a.parseReferenceToken(n.SourceToken, refAny)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: ValRef, Ref: ref}, true

	case ast.List:
		kids := a.tree.ListRange(n)
		// A List node delivers either bare values (a value-list) or Field
		// nodes (a record) depending on what the parser produced for it;
		// distinguish by peeking the first child, matching how the parser
		// itself treats '{' and '[' bodies identically until this point.
		if len(kids) > 0 && a.tree.Node(kids[0]).Tag == ast.Field {
			fields := make(map[string]Value, len(kids))
			for _, fid := range kids {
				fn := a.tree.Node(fid)
				name := string(a.tree.TokenText(fn.SourceToken))
				fv, ok := a.buildValue(ast.NodeId(fn.Lhs))
				if !ok {
					continue
				}
				fields[name] = fv
			}
			return Value{Kind: ValRecord, Fields: fields}, true
		}
		list := make([]Value, 0, len(kids))
		for _, kid := range kids {
			v, ok := a.buildValue(kid)
			if !ok {
				continue
			}
			list = append(list, v)
		}
		return Value{Kind: ValList, List: list}, true

	default:
		a.errorf(diag.TypeMismatch, a.tree.TokenRange(n.SourceToken), "value expected")
		return Value{}, false
	}
}

// parseReferenceToken splits a "$ns.name" token's text and resolves it
// against the namespace symbol tables. want narrows the accepted
// namespace; pass refAny when any namespace is acceptable.
func (a *analyzer) parseReferenceToken(tok token.Index, want RefKind) (Ref, bool) {
	text := string(a.tree.TokenText(tok))
	// text is "$ns.name"
	rest := text[1:]
	dot := strings.IndexByte(rest, '.')
	ns := rest[:dot]
	name := rest[dot+1:]

	kind, ok := namespaceToRefKind[ns]
	if !ok {
		a.errorf(diag.UnresolvedReference, a.tree.TokenRange(tok), "unknown reference namespace %q", ns)
		return Ref{}, false
	}
	if want != refAny && kind != want {
		a.errorf(diag.TypeMismatch, a.tree.TokenRange(tok), "expected a $%s reference, got $%s", want, kind)
		return Ref{}, false
	}

	id, ok := a.ns.lookup(kind, name)
	if !ok {
		// $data.* and $string.* have no declaring macro of their own (see
		// token.referenceNamespaces' doc comment): the first reference to a
		// given name registers it, in first-seen order, in the data or
		// string table the emitter writes out.
		if kind == RefData || kind == RefString {
			id = uint32(len(a.ns.tables[kind].index))
			a.ns.tables[kind].index[name] = id
			return Ref{Kind: kind, ID: id}, true
		}
		a.errorf(diag.UnresolvedReference, a.tree.TokenRange(tok), "unresolved %s reference %q", kind, name)
		return Ref{}, false
	}
	return Ref{Kind: kind, ID: id}, true
}
