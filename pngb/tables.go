package pngb

import (
	"encoding/binary"
	"fmt"
)

// WGSLEntry maps one wgsl_id to its data_id and the (already
// transitive-closure-ordered) list of wgsl_ids it depends on.
type WGSLEntry struct {
	DataID uint32
	Deps   []uint32
}

// UniformEntry is one row of the uniform table:
// (buffer_id, field_offset, field_size, source_tag), with source_tag
// stored as a string-table id so user-named sources cost nothing extra.
type UniformEntry struct {
	BufferID  uint32
	Offset    uint32
	Size      uint32
	SourceID  uint32
}

// AnimEntry is one scene-timeline row. Easing defaults to 0 (linear).
type AnimEntry struct {
	SceneID    uint32
	StartMS    uint32
	DurationMS uint32
	FrameID    uint32
	Easing     uint8
}

func encodeStringTable(strs []string) []byte {
	if len(strs) > 0xFFFF {
		panic("pngb: string table exceeds 65535 entries")
	}
	var blob []byte
	offsets := make([]uint16, len(strs))
	for i, s := range strs {
		offsets[i] = uint16(len(blob))
		blob = append(blob, s...)
	}
	out := make([]byte, 2+2*len(strs))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(strs)))
	for i, off := range offsets {
		binary.LittleEndian.PutUint16(out[2+2*i:4+2*i], off)
	}
	return append(out, blob...)
}

// decodeStringTable parses the string table starting at buf[0] and
// returns the strings; each string runs to the next entry's offset, the
// last one to the end of buf.
func decodeStringTable(buf []byte) ([]string, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: string", ErrTruncatedTable)
	}
	count := int(binary.LittleEndian.Uint16(buf[0:2]))
	headerLen := 2 + 2*count
	if len(buf) < headerLen {
		return nil, fmt.Errorf("%w: string", ErrTruncatedTable)
	}
	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		offsets[i] = int(binary.LittleEndian.Uint16(buf[2+2*i : 4+2*i]))
	}
	blob := buf[headerLen:]
	strs := make([]string, count)
	for i := 0; i < count; i++ {
		start := offsets[i]
		end := len(blob)
		if i+1 < count {
			end = offsets[i+1]
		}
		if start > len(blob) || end > len(blob) || start > end {
			return nil, fmt.Errorf("%w: string", ErrTruncatedTable)
		}
		strs[i] = string(blob[start:end])
	}
	return strs, nil
}

func encodeDataTable(chunks [][]byte) []byte {
	if len(chunks) > 0xFFFF {
		panic("pngb: data table exceeds 65535 entries")
	}
	var blob []byte
	type ofl struct{ off, length uint16 }
	entries := make([]ofl, len(chunks))
	for i, c := range chunks {
		if len(c) > 0xFFFF {
			panic("pngb: data entry exceeds 65535 bytes")
		}
		entries[i] = ofl{uint16(len(blob)), uint16(len(c))}
		blob = append(blob, c...)
	}
	out := make([]byte, 2+4*len(chunks))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(chunks)))
	for i, e := range entries {
		binary.LittleEndian.PutUint16(out[2+4*i:4+4*i], e.off)
		binary.LittleEndian.PutUint16(out[4+4*i:6+4*i], e.length)
	}
	return append(out, blob...)
}

func decodeDataTable(buf []byte) ([][]byte, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: data", ErrTruncatedTable)
	}
	count := int(binary.LittleEndian.Uint16(buf[0:2]))
	headerLen := 2 + 4*count
	if len(buf) < headerLen {
		return nil, fmt.Errorf("%w: data", ErrTruncatedTable)
	}
	blob := buf[headerLen:]
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		off := int(binary.LittleEndian.Uint16(buf[2+4*i : 4+4*i]))
		length := int(binary.LittleEndian.Uint16(buf[4+4*i : 6+4*i]))
		if off < 0 || length < 0 || off+length > len(blob) {
			return nil, fmt.Errorf("%w: data", ErrTruncatedTable)
		}
		out[i] = blob[off : off+length]
	}
	return out, nil
}

func encodeWGSLTable(entries []WGSLEntry) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(entries)))
	for _, e := range entries {
		row := make([]byte, 4)
		binary.LittleEndian.PutUint16(row[0:2], uint16(e.DataID))
		binary.LittleEndian.PutUint16(row[2:4], uint16(len(e.Deps)))
		out = append(out, row...)
		for _, d := range e.Deps {
			b := make([]byte, 2)
			binary.LittleEndian.PutUint16(b, uint16(d))
			out = append(out, b...)
		}
	}
	return out
}

func decodeWGSLTable(buf []byte) ([]WGSLEntry, int, error) {
	if len(buf) < 2 {
		return nil, 0, fmt.Errorf("%w: wgsl", ErrTruncatedTable)
	}
	count := int(binary.LittleEndian.Uint16(buf[0:2]))
	pos := 2
	out := make([]WGSLEntry, count)
	for i := 0; i < count; i++ {
		if pos+4 > len(buf) {
			return nil, 0, fmt.Errorf("%w: wgsl", ErrTruncatedTable)
		}
		dataID := binary.LittleEndian.Uint16(buf[pos : pos+2])
		depCount := int(binary.LittleEndian.Uint16(buf[pos+2 : pos+4]))
		pos += 4
		deps := make([]uint32, depCount)
		for j := 0; j < depCount; j++ {
			if pos+2 > len(buf) {
				return nil, 0, fmt.Errorf("%w: wgsl", ErrTruncatedTable)
			}
			deps[j] = uint32(binary.LittleEndian.Uint16(buf[pos : pos+2]))
			pos += 2
		}
		out[i] = WGSLEntry{DataID: uint32(dataID), Deps: deps}
	}
	return out, pos, nil
}

func encodeUniformTable(entries []UniformEntry) []byte {
	out := make([]byte, 2+8*len(entries))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(entries)))
	for i, e := range entries {
		base := 2 + 8*i
		binary.LittleEndian.PutUint16(out[base:base+2], uint16(e.BufferID))
		binary.LittleEndian.PutUint16(out[base+2:base+4], uint16(e.Offset))
		binary.LittleEndian.PutUint16(out[base+4:base+6], uint16(e.Size))
		binary.LittleEndian.PutUint16(out[base+6:base+8], uint16(e.SourceID))
	}
	return out
}

func decodeUniformTable(buf []byte) ([]UniformEntry, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: uniform", ErrTruncatedTable)
	}
	count := int(binary.LittleEndian.Uint16(buf[0:2]))
	need := 2 + 8*count
	if len(buf) < need {
		return nil, fmt.Errorf("%w: uniform", ErrTruncatedTable)
	}
	out := make([]UniformEntry, count)
	for i := 0; i < count; i++ {
		base := 2 + 8*i
		out[i] = UniformEntry{
			BufferID: uint32(binary.LittleEndian.Uint16(buf[base : base+2])),
			Offset:   uint32(binary.LittleEndian.Uint16(buf[base+2 : base+4])),
			Size:     uint32(binary.LittleEndian.Uint16(buf[base+4 : base+6])),
			SourceID: uint32(binary.LittleEndian.Uint16(buf[base+6 : base+8])),
		}
	}
	return out, nil
}

func encodeAnimTable(entries []AnimEntry) []byte {
	out := make([]byte, 2+15*len(entries))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(entries)))
	for i, e := range entries {
		base := 2 + 15*i
		binary.LittleEndian.PutUint16(out[base:base+2], uint16(e.SceneID))
		binary.LittleEndian.PutUint32(out[base+2:base+6], e.StartMS)
		binary.LittleEndian.PutUint32(out[base+6:base+10], e.DurationMS)
		binary.LittleEndian.PutUint16(out[base+10:base+12], uint16(e.FrameID))
		out[base+12] = e.Easing
		// base+13, base+14 reserved, left zero
	}
	return out
}

func decodeAnimTable(buf []byte) ([]AnimEntry, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: animation", ErrTruncatedTable)
	}
	count := int(binary.LittleEndian.Uint16(buf[0:2]))
	need := 2 + 15*count
	if len(buf) < need {
		return nil, fmt.Errorf("%w: animation", ErrTruncatedTable)
	}
	out := make([]AnimEntry, count)
	for i := 0; i < count; i++ {
		base := 2 + 15*i
		out[i] = AnimEntry{
			SceneID:    uint32(binary.LittleEndian.Uint16(buf[base : base+2])),
			StartMS:    binary.LittleEndian.Uint32(buf[base+2 : base+6]),
			DurationMS: binary.LittleEndian.Uint32(buf[base+6 : base+10]),
			FrameID:    uint32(binary.LittleEndian.Uint16(buf[base+10 : base+12])),
			Easing:     buf[base+12],
		}
	}
	return out, nil
}
