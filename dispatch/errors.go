package dispatch

import "errors"

// Dispatch error sentinels: unknown opcode, bad pass state (draw without
// begin, nested begin), unknown resource id. Backend-reported failures
// get no sentinel of their own: creation failures are wrapped with the
// resource kind and id, and most other failures with the failing
// command's name; the commands inside a pass other than begin and end
// return the backend's error as is.
var (
	ErrNotInitialized  = errors.New("dispatch: Init has not run")
	ErrAlreadyShutdown = errors.New("dispatch: dispatcher is shut down")
	ErrUnknownOpcode   = errors.New("dispatch: unknown opcode")
	ErrBadPassState    = errors.New("dispatch: bad pass state")
	ErrUnknownResource = errors.New("dispatch: unknown resource id")
	ErrUnknownFrame    = errors.New("dispatch: unknown frame")
	ErrUniformSize     = errors.New("dispatch: uniform size mismatch")
	ErrNoWasmBackend   = errors.New("dispatch: module requires the wasm capability but the backend does not implement WasmBackend")
)
