package dispatch

// DispatcherOption is a functional option for configuring a Dispatcher.
// Use the With* functions to create options that are applied directly to
// the dispatcher instance.
type DispatcherOption func(*dispatcher)

// WithActiveFrame selects which defined frame Frame executes when the
// module has no animation timeline driving frame selection. The default
// is the first frame the module defines; an unknown name falls back to
// the same default.
func WithActiveFrame(name string) DispatcherOption {
	return func(d *dispatcher) {
		d.activeFrame = name
	}
}
