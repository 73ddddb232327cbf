package scene

import "github.com/oxy-lang/pngb/diag"

// frameQueuePass checks the structural invariant on frames: every entry
// in a frame's before/init/perform lists must resolve to a render pass,
// compute pass, or queue declaration.
func (a *analyzer) frameQueuePass() {
	for _, d := range a.scene.Frames {
		a.checkFrameList(d, "before")
		a.checkFrameList(d, "init")
		a.checkFrameList(d, "perform")
	}
}

func (a *analyzer) checkFrameList(d Decl, field string) {
	v, ok := d.field(field)
	if !ok {
		return
	}
	for _, entry := range v.List {
		if entry.Kind != ValRef || !isPassOrQueue(entry.Ref.Kind) {
			a.errorf(diag.InvalidFrame, a.tree.TokenRange(d.DeclToken),
				"frame %q's %q list may only contain $renderPass/$computePass/$queue references", d.Name, field)
		}
	}
}

func isPassOrQueue(k RefKind) bool {
	return k == RefRenderPass || k == RefComputePass || k == RefQueue
}
