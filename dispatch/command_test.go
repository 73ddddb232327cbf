package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxy-lang/pngb/dispatch"
	"github.com/oxy-lang/pngb/pngb"
)

// The stored opcode space and the emitted command space must never map
// different semantics onto the same byte. The single sanctioned collision
// is the `end` terminator, which both spaces fix at 0xFF.
func TestOpcodeSpacesAreDisjoint(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		storedKnown := pngb.IsKnownOp(pngb.Op(b))
		cmdName, cmdKnown := dispatch.CmdNames[dispatch.Cmd(b)]
		if !storedKnown || !cmdKnown {
			continue
		}
		assert.Equal(t, "end", cmdName, "byte 0x%02x is claimed by both opcode spaces", b)
		assert.Equal(t, "end", pngb.Op(b).String(), "byte 0x%02x is claimed by both opcode spaces", b)
	}
}

// Shared names must sit on different bytes across the two spaces (again
// excepting `end`): a stored draw and an emitted draw are different
// encodings on purpose.
func TestSharedNamesDifferInByteValue(t *testing.T) {
	stored := make(map[string]byte)
	for b := 0; b <= 0xFF; b++ {
		if pngb.IsKnownOp(pngb.Op(b)) {
			stored[pngb.Op(b).String()] = byte(b)
		}
	}
	for c, name := range dispatch.CmdNames {
		if name == "end" {
			continue
		}
		if sb, ok := stored[name]; ok {
			assert.NotEqual(t, sb, byte(c), "name %q maps to the same byte in both spaces", name)
		}
	}
}

func TestAppendCommandIsFixedSize(t *testing.T) {
	buf := dispatch.AppendCommand(nil, dispatch.CmdDraw, 3, 1)
	require.Len(t, buf, 1+4+4)
	assert.Equal(t, byte(dispatch.CmdDraw), buf[0])
	assert.Equal(t, []byte{3, 0, 0, 0, 1, 0, 0, 0}, buf[1:])

	buf = dispatch.AppendCommand(buf, dispatch.CmdSubmit)
	assert.Equal(t, byte(dispatch.CmdSubmit), buf[9])
}
