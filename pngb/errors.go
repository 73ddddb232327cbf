package pngb

import "errors"

// Decode failure sentinels: bad magic, unsupported version, offset out of
// range, truncated section, varint overflow, id out of range. Decode wraps
// these with context via fmt.Errorf("%w..."); callers can still errors.Is
// against the sentinel.
var (
	ErrBadMagic           = errors.New("pngb: bad magic")
	ErrUnsupportedVersion = errors.New("pngb: unsupported version")
	ErrTruncatedHeader    = errors.New("pngb: truncated header")
	ErrOffsetOutOfRange   = errors.New("pngb: offset out of range")
	ErrTruncatedTable     = errors.New("pngb: truncated table")
	ErrTruncatedOpcode    = errors.New("pngb: truncated opcode stream")
	ErrUnknownOpcode      = errors.New("pngb: unknown opcode")
	ErrVarintOverflow     = errors.New("pngb: varint overflow")
	ErrStringIDRange      = errors.New("pngb: string id out of range")
	ErrDataIDRange        = errors.New("pngb: data id out of range")
	ErrWGSLIDRange        = errors.New("pngb: wgsl id out of range")
)
