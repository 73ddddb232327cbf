// Package pngchunk embeds and extracts PNGB modules as a private
// ancillary PNG chunk. The chunk type is "pnGb" (ancillary, private,
// copy-safe per the PNG chunk-naming rules) and its payload is
// a one-byte version, a one-byte flag field (bit 0: raw-DEFLATE
// compressed), and the module bytes. A second chunk type, "pnGx", carries
// the optional platform-side executor image with the same payload layout.
package pngchunk

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/oxy-lang/pngb/common"
)

// ChunkVersion is the payload layout version this package writes and the
// only one it accepts back.
const ChunkVersion = 1

// DefaultMaxDecompressedSize bounds Extract's DEFLATE output when the
// caller doesn't supply their own limit.
const DefaultMaxDecompressedSize = 16 << 20

const (
	// TypeModule is the chunk carrying the PNGB module.
	TypeModule = "pnGb"
	// TypeExecutor is the chunk carrying the optional executor image.
	TypeExecutor = "pnGx"
)

const flagCompressed = 0x01

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var (
	ErrMalformedPNG    = errors.New("pngchunk: malformed PNG")
	ErrNoChunk         = errors.New("pngchunk: no module chunk present")
	ErrCRCMismatch     = errors.New("pngchunk: chunk CRC mismatch")
	ErrDecompress      = errors.New("pngchunk: decompression failed")
	ErrTooLarge        = errors.New("pngchunk: decompressed payload exceeds limit")
	ErrBadChunkVersion = errors.New("pngchunk: unsupported chunk version")
)

// ChunkInfo describes an embedded chunk without decoding its payload.
type ChunkInfo struct {
	Version    uint8
	Compressed bool
	PayloadLen int
}

type config struct {
	compress        bool
	maxDecompressed int
	chunkType       string
}

// Option configures Embed and Extract via the functional options
// convention.
type Option func(*config)

// WithCompression makes Embed DEFLATE-compress the payload (raw stream,
// no zlib framing) and set the compressed flag bit.
func WithCompression() Option {
	return func(c *config) { c.compress = true }
}

// WithMaxDecompressedSize overrides Extract's decompression bound.
func WithMaxDecompressedSize(n int) Option {
	return func(c *config) { c.maxDecompressed = n }
}

// WithChunkType selects which chunk a call operates on; the default is
// TypeModule. Pass TypeExecutor to carry the executor image instead.
func WithChunkType(t string) Option {
	return func(c *config) { c.chunkType = t }
}

func buildConfig(opts []Option) config {
	var c config
	for _, o := range opts {
		o(&c)
	}
	c.maxDecompressed = common.Coalesce(c.maxDecompressed, DefaultMaxDecompressedSize)
	c.chunkType = common.Coalesce(c.chunkType, TypeModule)
	return c
}

// chunk is one parsed PNG chunk: type, raw data, and the byte range it
// occupies in the containing file.
type chunk struct {
	typ        string
	data       []byte
	start, end int
}

// scanChunks walks the PNG chunk list, verifying structure but not CRCs
// (CRC checking happens only on the chunk actually read back).
func scanChunks(png []byte) ([]chunk, error) {
	if !bytes.HasPrefix(png, pngSignature) {
		return nil, fmt.Errorf("%w: missing signature", ErrMalformedPNG)
	}
	var chunks []chunk
	pos := len(pngSignature)
	for pos < len(png) {
		if pos+8 > len(png) {
			return nil, fmt.Errorf("%w: truncated chunk header at %d", ErrMalformedPNG, pos)
		}
		length := int(binary.BigEndian.Uint32(png[pos : pos+4]))
		end := pos + 8 + length + 4
		if end > len(png) {
			return nil, fmt.Errorf("%w: chunk overruns file at %d", ErrMalformedPNG, pos)
		}
		chunks = append(chunks, chunk{
			typ:   string(png[pos+4 : pos+8]),
			data:  png[pos+8 : pos+8+length],
			start: pos,
			end:   end,
		})
		pos = end
	}
	if len(chunks) == 0 || chunks[0].typ != "IHDR" {
		return nil, fmt.Errorf("%w: first chunk is not IHDR", ErrMalformedPNG)
	}
	return chunks, nil
}

func findChunk(chunks []chunk, typ string) (chunk, bool) {
	for _, c := range chunks {
		if c.typ == typ {
			return c, true
		}
	}
	return chunk{}, false
}

func appendChunk(out []byte, typ string, data []byte) []byte {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(data)))
	copy(hdr[4:8], typ)
	out = append(out, hdr[:]...)
	out = append(out, data...)

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], crc.Sum32())
	return append(out, trailer[:]...)
}

func verifyCRC(png []byte, c chunk) error {
	crc := crc32.NewIEEE()
	crc.Write(png[c.start+4 : c.end-4])
	if crc.Sum32() != binary.BigEndian.Uint32(png[c.end-4:c.end]) {
		return fmt.Errorf("%w: chunk %s", ErrCRCMismatch, c.typ)
	}
	return nil
}

// Embed inserts (or replaces) the module chunk carrying payload,
// immediately after IHDR and before everything else, recomputing the
// chunk CRC per the PNG spec.
func Embed(png, payload []byte, opts ...Option) ([]byte, error) {
	cfg := buildConfig(opts)
	chunks, err := scanChunks(png)
	if err != nil {
		return nil, err
	}

	body := payload
	flags := byte(0)
	if cfg.compress {
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, fmt.Errorf("pngchunk: %w", err)
		}
		if _, err := w.Write(payload); err != nil {
			return nil, fmt.Errorf("pngchunk: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("pngchunk: %w", err)
		}
		body = buf.Bytes()
		flags |= flagCompressed
	}

	data := make([]byte, 0, 2+len(body))
	data = append(data, ChunkVersion, flags)
	data = append(data, body...)

	out := make([]byte, 0, len(png)+len(data)+12)
	out = append(out, pngSignature...)
	inserted := false
	for _, c := range chunks {
		if c.typ == cfg.chunkType {
			continue // replaced below
		}
		out = append(out, png[c.start:c.end]...)
		if c.typ == "IHDR" && !inserted {
			out = appendChunk(out, cfg.chunkType, data)
			inserted = true
		}
	}
	return out, nil
}

// Extract locates the first module chunk, verifies its CRC, and returns
// the payload bytes, raw-DEFLATE-decompressing them when the flag bit is
// set. Decompression output is capped by the configured bound.
func Extract(png []byte, opts ...Option) ([]byte, error) {
	cfg := buildConfig(opts)
	chunks, err := scanChunks(png)
	if err != nil {
		return nil, err
	}
	c, ok := findChunk(chunks, cfg.chunkType)
	if !ok {
		return nil, ErrNoChunk
	}
	if err := verifyCRC(png, c); err != nil {
		return nil, err
	}
	if len(c.data) < 2 {
		return nil, fmt.Errorf("%w: chunk too short", ErrMalformedPNG)
	}
	if c.data[0] != ChunkVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadChunkVersion, c.data[0])
	}
	body := c.data[2:]
	if c.data[1]&flagCompressed == 0 {
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	}

	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, int64(cfg.maxDecompressed)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if len(out) > cfg.maxDecompressed {
		return nil, ErrTooLarge
	}
	return out, nil
}

// HasChunk reports whether png carries a module chunk.
func HasChunk(png []byte, opts ...Option) bool {
	cfg := buildConfig(opts)
	chunks, err := scanChunks(png)
	if err != nil {
		return false
	}
	_, ok := findChunk(chunks, cfg.chunkType)
	return ok
}

// Info describes the embedded chunk without decoding its payload.
func Info(png []byte, opts ...Option) (ChunkInfo, error) {
	cfg := buildConfig(opts)
	chunks, err := scanChunks(png)
	if err != nil {
		return ChunkInfo{}, err
	}
	c, ok := findChunk(chunks, cfg.chunkType)
	if !ok {
		return ChunkInfo{}, ErrNoChunk
	}
	if len(c.data) < 2 {
		return ChunkInfo{}, fmt.Errorf("%w: chunk too short", ErrMalformedPNG)
	}
	return ChunkInfo{
		Version:    c.data[0],
		Compressed: c.data[1]&flagCompressed != 0,
		PayloadLen: len(c.data) - 2,
	}, nil
}
