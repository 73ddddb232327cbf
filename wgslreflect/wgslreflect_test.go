package wgslreflect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shaderSrc = `
// Per-frame inputs.
struct FrameInputs {
    time: f32,
    width: f32,
    height: f32,
    aspect: f32,
}

struct Particle {
    position: vec3f,   // 12 bytes at align 16
    velocity: vec3f,
    age: f32,
}

struct Simulation {
    particles: array<Particle, 4>,
    bounds: vec4<f32>,
}

/* commented out entirely:
struct Ghost { x: f32 }
*/

@group(0) @binding(0) var<uniform> inputs: FrameInputs;

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4f {
    return vec4f(0.0);
}
`

func TestReflectScalarStruct(t *testing.T) {
	size, ok := New().Reflect(shaderSrc, "FrameInputs")
	require.True(t, ok)
	assert.EqualValues(t, 16, size)
}

func TestReflectAlignedStruct(t *testing.T) {
	// vec3f at align 16: position 0..12, velocity 16..28, age 28..32,
	// struct rounds to 32.
	size, ok := New().Reflect(shaderSrc, "Particle")
	require.True(t, ok)
	assert.EqualValues(t, 32, size)
}

func TestReflectNestedStructAndArray(t *testing.T) {
	// array<Particle, 4> strides 32 -> 128, then vec4 -> 144.
	size, ok := New().Reflect(shaderSrc, "Simulation")
	require.True(t, ok)
	assert.EqualValues(t, 144, size)
}

func TestReflectIgnoresCommentedStructs(t *testing.T) {
	_, ok := New().Reflect(shaderSrc, "Ghost")
	assert.False(t, ok)
}

func TestReflectUnknownStruct(t *testing.T) {
	_, ok := New().Reflect(shaderSrc, "Nope")
	assert.False(t, ok)
}

func TestReflectSkipsBuiltinFields(t *testing.T) {
	src := `
struct VSOut {
    @builtin(position) pos: vec4f,
    uv: vec2f,
}
`
	size, ok := New().Reflect(src, "VSOut")
	require.True(t, ok)
	assert.EqualValues(t, 8, size)
}

func TestReflectMatrixAndRuntimeArray(t *testing.T) {
	src := `
struct Camera {
    viewProj: mat4x4<f32>,
    eye: vec3f,
}
struct ParticleBuf {
    items: array<vec4f>,
}
`
	size, ok := New().Reflect(src, "Camera")
	require.True(t, ok)
	assert.EqualValues(t, 80, size)

	// Runtime-sized arrays resolve to one element stride.
	size, ok = New().Reflect(src, "ParticleBuf")
	require.True(t, ok)
	assert.EqualValues(t, 16, size)
}
