package scene

import "github.com/oxy-lang/pngb/diag"

// color marks a WGSL node's DFS state during cycle detection.
type color uint8

const (
	white color = iota // unvisited
	gray               // on the current DFS path
	black              // fully explored, acyclic from here
)

// wgslImportPass resolves each #wgsl declaration's "imports" list
// (already Ref-resolved by fieldPass) into Scene.WGSLImports, then walks
// the resulting graph with the standard three-color DFS to reject any
// import cycle, direct or transitive. Accumulates one diagnostic per
// cycle root found, not one per edge in the cycle.
func (a *analyzer) wgslImportPass() {
	n := len(a.scene.WGSL)
	a.scene.WGSLImports = make([][]uint32, n)

	for i, d := range a.scene.WGSL {
		imports, ok := d.field("imports")
		if !ok {
			continue
		}
		ids := make([]uint32, 0, len(imports.List))
		for _, v := range imports.List {
			if v.Kind != ValRef || v.Ref.Kind != RefWGSL {
				a.errorf(diag.TypeMismatch, a.tree.TokenRange(d.DeclToken),
					"#wgsl %q import list must contain only $wgsl references", d.Name)
				continue
			}
			ids = append(ids, v.Ref.ID)
		}
		a.scene.WGSLImports[i] = ids
	}

	colors := make([]color, n)
	var path []uint32

	var visit func(i uint32)
	visit = func(i uint32) {
		switch colors[i] {
		case black:
			return
		case gray:
			a.reportCycle(path, i)
			return
		}
		colors[i] = gray
		path = append(path, i)
		for _, dep := range a.scene.WGSLImports[i] {
			visit(dep)
		}
		path = path[:len(path)-1]
		colors[i] = black
	}

	for i := range a.scene.WGSL {
		if colors[i] == white {
			visit(uint32(i))
		}
	}
}

func (a *analyzer) reportCycle(path []uint32, closingAt uint32) {
	start := 0
	for i, id := range path {
		if id == closingAt {
			start = i
			break
		}
	}
	names := make([]string, 0, len(path)-start+1)
	for _, id := range path[start:] {
		names = append(names, a.scene.WGSL[id].Name)
	}
	names = append(names, a.scene.WGSL[closingAt].Name)

	tok := a.scene.WGSL[path[len(path)-1]].DeclToken
	a.errorf(diag.ImportCycle, a.tree.TokenRange(tok), "wgsl import cycle: %s", joinArrow(names))
}

func joinArrow(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}
