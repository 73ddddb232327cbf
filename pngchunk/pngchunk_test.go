package pngchunk

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tinyPNG builds a structurally valid 1x1 PNG: signature, IHDR, a stub
// IDAT, IEND. The IDAT payload is not a real zlib stream; nothing here
// decodes image data.
func tinyPNG() []byte {
	ihdr := []byte{
		0, 0, 0, 1, // width
		0, 0, 0, 1, // height
		8, 6, 0, 0, 0, // bit depth, color type, compression, filter, interlace
	}
	out := append([]byte{}, pngSignature...)
	out = appendChunk(out, "IHDR", ihdr)
	out = appendChunk(out, "IDAT", []byte{0x78, 0x9c, 0x01, 0x00})
	out = appendChunk(out, "IEND", nil)
	return out
}

func randomPayload(n int) []byte {
	rng := rand.New(rand.NewSource(42))
	b := make([]byte, n)
	rng.Read(b)
	return b
}

func TestEmbedExtractRoundtrip(t *testing.T) {
	payload := randomPayload(500)
	png, err := Embed(tinyPNG(), payload)
	require.NoError(t, err)

	got, err := Extract(png)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestEmbedExtractCompressedRoundtrip(t *testing.T) {
	payload := bytes.Repeat([]byte("PNGB module bytes "), 64)
	png, err := Embed(tinyPNG(), payload, WithCompression())
	require.NoError(t, err)

	info, err := Info(png)
	require.NoError(t, err)
	assert.True(t, info.Compressed)
	assert.Less(t, info.PayloadLen, len(payload))

	got, err := Extract(png)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestChunkSitsBetweenIHDRAndIDAT(t *testing.T) {
	png, err := Embed(tinyPNG(), []byte("module"))
	require.NoError(t, err)

	chunks, err := scanChunks(png)
	require.NoError(t, err)
	var order []string
	for _, c := range chunks {
		order = append(order, c.typ)
	}
	assert.Equal(t, []string{"IHDR", TypeModule, "IDAT", "IEND"}, order)
}

func TestEmbedReplacesExistingChunk(t *testing.T) {
	png, err := Embed(tinyPNG(), []byte("first"))
	require.NoError(t, err)
	png, err = Embed(png, []byte("second"))
	require.NoError(t, err)

	got, err := Extract(png)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	chunks, err := scanChunks(png)
	require.NoError(t, err)
	count := 0
	for _, c := range chunks {
		if c.typ == TypeModule {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestHasChunkAndInfo(t *testing.T) {
	assert.False(t, HasChunk(tinyPNG()))

	png, err := Embed(tinyPNG(), []byte("abc"))
	require.NoError(t, err)
	assert.True(t, HasChunk(png))

	info, err := Info(png)
	require.NoError(t, err)
	assert.EqualValues(t, ChunkVersion, info.Version)
	assert.False(t, info.Compressed)
	assert.Equal(t, 3, info.PayloadLen)

	_, err = Info(tinyPNG())
	require.ErrorIs(t, err, ErrNoChunk)
}

func TestExecutorChunkIsIndependent(t *testing.T) {
	png, err := Embed(tinyPNG(), []byte("module"))
	require.NoError(t, err)
	png, err = Embed(png, []byte("executor"), WithChunkType(TypeExecutor))
	require.NoError(t, err)

	mod, err := Extract(png)
	require.NoError(t, err)
	assert.Equal(t, []byte("module"), mod)

	exec, err := Extract(png, WithChunkType(TypeExecutor))
	require.NoError(t, err)
	assert.Equal(t, []byte("executor"), exec)
}

func TestExtractRejectsCorruptCRC(t *testing.T) {
	png, err := Embed(tinyPNG(), []byte("module"))
	require.NoError(t, err)

	chunks, err := scanChunks(png)
	require.NoError(t, err)
	for _, c := range chunks {
		if c.typ == TypeModule {
			png[c.start+8] ^= 0xFF // flip a payload byte under the CRC
		}
	}
	_, err = Extract(png)
	require.ErrorIs(t, err, ErrCRCMismatch)
}

func TestExtractRejectsMissingChunk(t *testing.T) {
	_, err := Extract(tinyPNG())
	require.ErrorIs(t, err, ErrNoChunk)
}

func TestExtractRejectsNonPNG(t *testing.T) {
	_, err := Extract([]byte("not a png at all"))
	require.ErrorIs(t, err, ErrMalformedPNG)
}

func TestExtractEnforcesDecompressionBound(t *testing.T) {
	payload := bytes.Repeat([]byte{0}, 4096)
	png, err := Embed(tinyPNG(), payload, WithCompression())
	require.NoError(t, err)

	_, err = Extract(png, WithMaxDecompressedSize(1024))
	require.ErrorIs(t, err, ErrTooLarge)

	got, err := Extract(png, WithMaxDecompressedSize(4096))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestEmbedRejectsTruncatedPNG(t *testing.T) {
	png := tinyPNG()
	_, err := Embed(png[:len(png)-2], []byte("x"))
	require.ErrorIs(t, err, ErrMalformedPNG)
}
