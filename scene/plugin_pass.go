package scene

// pluginPass computes the header plugin bitfield from what the scene
// actually uses: a module only sets the bits for capabilities its own
// bytecode requires the runtime to support.
func (a *analyzer) pluginPass() {
	if len(a.scene.RenderPipelines) > 0 || len(a.scene.RenderPasses) > 0 {
		a.scene.Plugins |= PluginRender
	}
	if len(a.scene.ComputePipelines) > 0 || len(a.scene.ComputePasses) > 0 {
		a.scene.Plugins |= PluginCompute
	}
	if len(a.scene.Animations) > 0 {
		a.scene.Plugins |= PluginAnimation
	}
	if len(a.scene.WasmCalls) > 0 {
		a.scene.Plugins |= PluginWasm
	}
	// Only textures fed from an external source need the texture plugin;
	// plain render targets are covered by the core capability.
	for _, d := range a.scene.Textures {
		if _, ok := d.field("source"); ok {
			a.scene.Plugins |= PluginTexture
			break
		}
	}

	a.finalizeTables()
}

// finalizeTables exports the lazily-registered $data/$string name tables
// in first-seen id order, so the emitter can write them without knowing
// anything about how the analyzer assigned ids.
func (a *analyzer) finalizeTables() {
	a.scene.DataNames = orderedNames(a.ns.tables[RefData])
	a.scene.StringNames = orderedNames(a.ns.tables[RefString])
}

func orderedNames(s *symtab) []string {
	out := make([]string, len(s.index))
	for name, id := range s.index {
		out[id] = name
	}
	return out
}
