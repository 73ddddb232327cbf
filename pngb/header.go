package pngb

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed 40-byte header length.
const HeaderSize = 40

var magic = [4]byte{'P', 'N', 'G', 'B'}

// FormatVersion is the only version this package recognizes. Decode
// rejects anything else with ErrUnsupportedVersion rather than guessing at
// forward compatibility.
const FormatVersion uint16 = 1

// Plugin is the module header's capability bitfield. Encode sets Core on
// every module; the other bits name the same capabilities as scene.Plugin
// (at different bit positions) and are set only when the scene uses them.
type Plugin uint8

const (
	PluginCore Plugin = 1 << iota
	PluginRender
	PluginCompute
	PluginWasm
	PluginAnimation
	PluginTexture
)

// Header is the 40-byte fixed preamble of a PNGB module. All offsets are
// byte offsets from the start of the module, not relative to the header.
type Header struct {
	Version   uint16
	Flags     uint16
	Plugins   Plugin
	ExecOff   uint32
	ExecLen   uint32
	StringOff uint32
	DataOff   uint32
	WGSLOff   uint32
	UniformOff uint32
	AnimOff   uint32
}

func (h Header) encode() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], magic[:])
	binary.LittleEndian.PutUint16(b[4:6], h.Version)
	binary.LittleEndian.PutUint16(b[6:8], h.Flags)
	b[8] = byte(h.Plugins)
	// b[9:12] reserved, left zero
	binary.LittleEndian.PutUint32(b[12:16], h.ExecOff)
	binary.LittleEndian.PutUint32(b[16:20], h.StringOff)
	binary.LittleEndian.PutUint32(b[20:24], h.DataOff)
	binary.LittleEndian.PutUint32(b[24:28], h.WGSLOff)
	binary.LittleEndian.PutUint32(b[28:32], h.UniformOff)
	binary.LittleEndian.PutUint32(b[32:36], h.AnimOff)
	binary.LittleEndian.PutUint32(b[36:40], h.ExecLen)
	return b
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedHeader, len(b), HeaderSize)
	}
	if [4]byte(b[0:4]) != magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Version:    binary.LittleEndian.Uint16(b[4:6]),
		Flags:      binary.LittleEndian.Uint16(b[6:8]),
		Plugins:    Plugin(b[8]),
		ExecOff:    binary.LittleEndian.Uint32(b[12:16]),
		StringOff:  binary.LittleEndian.Uint32(b[16:20]),
		DataOff:    binary.LittleEndian.Uint32(b[20:24]),
		WGSLOff:    binary.LittleEndian.Uint32(b[24:28]),
		UniformOff: binary.LittleEndian.Uint32(b[28:32]),
		AnimOff:    binary.LittleEndian.Uint32(b[32:36]),
		ExecLen:    binary.LittleEndian.Uint32(b[36:40]),
	}
	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	// No flag bit is defined yet, so any nonzero Flags is unsupported
	// rather than forward-compatible.
	if h.Flags != 0 {
		return Header{}, fmt.Errorf("%w: unknown header flags 0x%04x", ErrUnsupportedVersion, h.Flags)
	}
	return h, nil
}
