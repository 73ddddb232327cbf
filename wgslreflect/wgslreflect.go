// Package wgslreflect derives uniform-struct byte sizes from WGSL source
// text. It is the in-tree implementation of the analyzer's optional
// Reflector: struct declarations are located with a regex scan over
// comment-stripped source, and each struct's size is computed with WGSL's
// buffer layout rules (fields placed at aligned offsets, total size
// rounded up to the struct's max field alignment).
package wgslreflect

import (
	"regexp"
	"strconv"
	"strings"
)

// typeLayout is the size and alignment of one WGSL type in a buffer.
type typeLayout struct {
	size  uint64
	align uint64
}

// primitiveLayouts maps WGSL scalar/vector/matrix type names to their
// buffer layout. Both the shorthand (vec3f) and parameterized
// (vec3<f32>) spellings are listed.
var primitiveLayouts = map[string]typeLayout{
	"f32": {4, 4}, "i32": {4, 4}, "u32": {4, 4},
	"vec2f": {8, 8}, "vec2<f32>": {8, 8},
	"vec3f": {12, 16}, "vec3<f32>": {12, 16},
	"vec4f": {16, 16}, "vec4<f32>": {16, 16},
	"vec2i": {8, 8}, "vec2<i32>": {8, 8},
	"vec3i": {12, 16}, "vec3<i32>": {12, 16},
	"vec4i": {16, 16}, "vec4<i32>": {16, 16},
	"vec2u": {8, 8}, "vec2<u32>": {8, 8},
	"vec3u": {12, 16}, "vec3<u32>": {12, 16},
	"vec4u": {16, 16}, "vec4<u32>": {16, 16},
	"mat2x2<f32>": {16, 8}, "mat3x3<f32>": {48, 16}, "mat4x4<f32>": {64, 16},
	"mat2x4<f32>": {32, 16}, "mat4x2<f32>": {32, 8},
	"mat3x4<f32>": {48, 16}, "mat4x3<f32>": {64, 16},
	"atomic<u32>": {4, 4}, "atomic<i32>": {4, 4},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// builtinRegex matches @builtin(...) attributes; builtin fields are
	// not part of a buffer layout.
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name,
	// colon, type. The type capture is greedy to handle array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)
)

type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}

// Reflector implements the analyzer's Reflector capability over plain
// WGSL source text.
type Reflector struct{}

// New returns a Reflector. It is stateless and safe to share.
func New() Reflector { return Reflector{} }

// Reflect returns the buffer byte size of the struct named structName as
// declared in src, and whether it could be resolved. Structs whose field
// types are unknown report ok as false; a runtime-sized array field counts
// as one element.
func (Reflector) Reflect(src string, structName string) (uint32, bool) {
	sizes := structSizes(parseStructBlocks(stripComments(src)))
	layout, ok := sizes[structName]
	if !ok {
		return 0, false
	}
	return uint32(layout.size), true
}

func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var f parsedField
		f.isBuiltin = builtinRegex.MatchString(line)
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		f.name = fm[1]
		f.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, f)
	}
	return fields
}

func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a type name against primitives, known
// structs, and fixed-size arrays. Runtime-sized arrays resolve to one
// element stride, the minimum useful binding size.
func resolveTypeLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := primitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	if strings.HasPrefix(typeName, "array<") && strings.HasSuffix(typeName, ">") {
		inner := typeName[6 : len(typeName)-1]
		parts := strings.SplitN(inner, ",", 2)
		elem, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), known)
		if !ok {
			return typeLayout{}, false
		}
		stride := roundUpAlign(elem.align, elem.size)
		if len(parts) == 2 {
			count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
			if err != nil {
				return typeLayout{}, false
			}
			return typeLayout{count * stride, elem.align}, true
		}
		return typeLayout{stride, elem.align}, true
	}
	return typeLayout{}, false
}

// structLayout computes one struct's size and alignment: each field at
// the next aligned offset, total rounded up to the max field alignment.
func structLayout(ps parsedStruct, known map[string]typeLayout) (typeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(f.typeName, known)
		if !ok {
			return typeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset)
		offset += fl.size
		if fl.align > maxAlign {
			maxAlign = fl.align
		}
	}
	return typeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// structSizes resolves every struct iteratively, so structs whose fields
// are typed as other structs settle once their dependencies have.
func structSizes(structs []parsedStruct) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	remaining := structs
	for {
		progress := false
		next := remaining[:0]
		for _, ps := range remaining {
			if l, ok := structLayout(ps, resolved); ok {
				resolved[ps.name] = l
				progress = true
			} else {
				next = append(next, ps)
			}
		}
		remaining = next
		if !progress || len(remaining) == 0 {
			return resolved
		}
	}
}

// stripComments removes // line comments and /* block */ comments so the
// struct regex never matches commented-out declarations.
func stripComments(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(source); {
		if strings.HasPrefix(source[i:], "//") {
			if nl := strings.IndexByte(source[i:], '\n'); nl >= 0 {
				i += nl
			} else {
				break
			}
			continue
		}
		if strings.HasPrefix(source[i:], "/*") {
			if end := strings.Index(source[i+2:], "*/"); end >= 0 {
				i += 2 + end + 2
			} else {
				break
			}
			continue
		}
		b.WriteByte(source[i])
		i++
	}
	return b.String()
}

// splitAtTopLevelCommas splits a struct body on commas that are not
// nested inside <> or () so array<T, N> fields stay whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
