package scene

import "github.com/oxy-lang/pngb/diag"

// poolConsistencyPass validates the optional "pool" field buffers,
// textures, and bind groups may declare: it must be a positive count,
// since the dispatcher computes `actual = base(L) + (F+O) mod N` for
// every pooled resource access and a non-positive N makes that
// arithmetic meaningless.
//
// It also enforces the agreement invariant between bind groups and the
// pooled resources their entries name: an entry carrying a pingPong
// offset must point into a pooled resource, the offset must be in range
// for that pool, and a bind group that ping-pongs must declare the same
// pool count as the resource it cycles through.
func (a *analyzer) poolConsistencyPass() {
	a.checkPoolField(a.scene.Buffers)
	a.checkPoolField(a.scene.Textures)
	a.checkPoolField(a.scene.BindGroups)
	a.checkBindGroupPools()
}

func (a *analyzer) checkPoolField(decls []Decl) {
	for _, d := range decls {
		v, ok := d.field("pool")
		if !ok {
			continue
		}
		if v.Kind != ValInt || v.Int <= 0 {
			a.errorf(diag.PoolMismatch, a.tree.TokenRange(d.DeclToken),
				"%s %q has an invalid pool count (must be a positive integer)", d.Tag, d.Name)
		}
	}
}

func (a *analyzer) checkBindGroupPools() {
	for _, d := range a.scene.BindGroups {
		groupPool := int64(1)
		if v, ok := d.field("pool"); ok && v.Kind == ValInt {
			groupPool = v.Int
		}

		entries, ok := d.field("entries")
		if !ok {
			continue
		}
		for _, ent := range entries.List {
			if ent.Kind != ValRecord {
				continue
			}
			pp, hasPP := ent.Fields["pingPong"]
			res, hasRes := ent.Fields["resource"]
			if !hasPP {
				continue
			}
			if !hasRes || res.Kind != ValRef {
				continue
			}
			resPool := a.declaredPool(res.Ref)
			if resPool <= 1 {
				a.errorf(diag.PoolMismatch, a.tree.TokenRange(d.DeclToken),
					"bindGroup %q entry carries pingPong=%d but its resource is not pooled", d.Name, pp.Int)
				continue
			}
			if pp.Kind != ValInt || pp.Int < 0 || pp.Int >= resPool {
				a.errorf(diag.PoolMismatch, a.tree.TokenRange(d.DeclToken),
					"bindGroup %q entry pingPong offset %d is out of range for pool size %d", d.Name, pp.Int, resPool)
				continue
			}
			if groupPool != resPool {
				a.errorf(diag.PoolMismatch, a.tree.TokenRange(d.DeclToken),
					"bindGroup %q declares pool=%d but entry resource has pool=%d; ping-pong groups must match their resource's pool", d.Name, groupPool, resPool)
			}
		}
	}
}

// declaredPool returns the pool count a referenced buffer/texture declares,
// or 1 when the reference is unpooled or of another kind.
func (a *analyzer) declaredPool(r Ref) int64 {
	var decls []Decl
	switch r.Kind {
	case RefBuffer:
		decls = a.scene.Buffers
	case RefTexture:
		decls = a.scene.Textures
	default:
		return 1
	}
	if int(r.ID) >= len(decls) {
		return 1
	}
	if v, ok := decls[r.ID].field("pool"); ok && v.Kind == ValInt && v.Int > 0 {
		return v.Int
	}
	return 1
}
