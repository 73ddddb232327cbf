package pngb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBuild() Build {
	var ops []byte
	ops = EmitOpcode(ops, OpCreateShaderModule, 0, 0)
	ops = EmitOpcode(ops, OpCreateRenderPipeline, 0, 0)
	ops = EmitOpcode(ops, OpDefineFrame, 0, 0)
	ops = EmitOpcode(ops, OpExecPass, 0)
	ops = EmitOpcode(ops, OpEndFrame)
	ops = EmitOpcode(ops, OpEnd)

	return Build{
		Plugins: PluginRender,
		Opcodes: ops,
		Strings: []string{"main_frame"},
		Data:    [][]byte{[]byte(`{"desc":true}`)},
		WGSL:    []WGSLEntry{{DataID: 0}},
	}
}

func TestModuleEncodeDecodeRoundtrip(t *testing.T) {
	b := sampleBuild()
	blob := Encode(b)

	assert.Equal(t, []byte("PNGB"), blob[0:4])

	m, err := Decode(blob)
	require.NoError(t, err)
	require.Equal(t, FormatVersion, m.Header.Version)
	assert.Equal(t, PluginRender|PluginCore, m.Header.Plugins)
	assert.Equal(t, b.Strings, m.Strings)
	assert.Equal(t, b.Data, m.Data)
	assert.Equal(t, b.Opcodes, m.Opcodes)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	blob := Encode(sampleBuild())
	blob[0] = 'X'
	_, err := Decode(blob)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{'P', 'N', 'G', 'B'})
	require.ErrorIs(t, err, ErrTruncatedHeader)
}

func TestDecodeRejectsTruncatedAnimationTable(t *testing.T) {
	blob := Encode(sampleBuild())
	truncated := blob[:len(blob)-1]
	_, err := Decode(truncated)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownOpcode(t *testing.T) {
	b := sampleBuild()
	b.Opcodes = append([]byte{0x0F}, b.Opcodes...)
	blob := Encode(b)
	_, err := Decode(blob)
	require.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestDecodeRejectsMissingTerminator(t *testing.T) {
	b := sampleBuild()
	b.Opcodes = b.Opcodes[:len(b.Opcodes)-1] // drop the trailing OpEnd byte
	blob := Encode(b)
	_, err := Decode(blob)
	require.Error(t, err)
}

func TestDecodeRejectsWGSLIDOutOfRange(t *testing.T) {
	b := sampleBuild()
	var ops []byte
	ops = EmitOpcode(ops, OpCreateShaderModule, 0, 5) // wgsl id 5 doesn't exist
	ops = EmitOpcode(ops, OpEnd)
	b.Opcodes = ops
	blob := Encode(b)
	_, err := Decode(blob)
	require.ErrorIs(t, err, ErrWGSLIDRange)
}
