package scene

import (
	"github.com/oxy-lang/pngb/ast"
	"github.com/oxy-lang/pngb/diag"
	"github.com/oxy-lang/pngb/token"
)

// declareDefine resolves a #define's single literal value immediately
// during the declare pass, so the constant table is complete before the
// field pass consults it. A #define body is exactly one field,
// `value = <literal>`; anything else is a diagnostic.
func (a *analyzer) declareDefine(name string, nameTok token.Index, fieldsList ast.Node) {
	raw, _ := a.rawFields(fieldsList)
	valueNode, ok := raw["value"]
	if !ok || len(raw) != 1 {
		a.errorf(diag.MissingField, a.tree.TokenRange(nameTok), "#define %q must have exactly one field \"value\"", name)
		return
	}

	n := a.tree.Node(valueNode)
	var v Value
	switch n.Tag {
	case ast.Number:
		text := string(a.tree.TokenText(n.SourceToken))
		if iv, ok := parseIntLiteral(text); ok {
			v = Value{Kind: ValInt, Int: iv}
		} else if fv, ok := parseFloatLiteral(text); ok {
			v = Value{Kind: ValFloat, Float: fv}
		} else {
			a.errorf(diag.BadNumber, a.tree.TokenRange(n.SourceToken), "malformed #define value")
			return
		}
	case ast.String:
		v = Value{Kind: ValString, Str: unquote(string(a.tree.TokenText(n.SourceToken)))}
	case ast.Ident:
		v = Value{Kind: ValIdent, Ident: string(a.tree.TokenText(n.SourceToken))}
	default:
		a.errorf(diag.TypeMismatch, a.tree.TokenRange(n.SourceToken), "#define value must be a literal")
		return
	}

	if _, dup := a.scene.Defines[name]; dup {
		a.errorf(diag.DuplicateDecl, a.tree.TokenRange(nameTok), "#define %q already declared", name)
		return
	}
	a.scene.Defines[name] = v
}

// definePass exists only to keep the pass ordering explicit in Analyze;
// folding happens eagerly in declareDefine since defines have no forward
// dependency on anything declared later.
func (a *analyzer) definePass() {}
