// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "fmt"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each context implementation
// maintains a mapping between IDs and actual backend resources.

// ProgramID is an opaque handle to a linked vertex+fragment program.
type ProgramID uint64

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a sampled 2D texture.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageCopyDst indicates the buffer can be written by the CPU.
	BufferUsageCopyDst BufferUsage = 1 << 0

	// BufferUsageVertex indicates the buffer can be used as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << 1

	// BufferUsageUniform indicates the buffer can be used as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 2
)

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm TextureFormat = iota + 1

	// TextureFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer.
	TextureFormatBGRA8Unorm
)

// BytesPerPixel returns the size of one texel.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatRGBA8Unorm, TextureFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

// FilterMode selects texture sampling interpolation.
type FilterMode uint8

const (
	// FilterNearest samples the closest texel.
	FilterNearest FilterMode = iota
	// FilterLinear interpolates between neighbouring texels.
	FilterLinear
)

func (f FilterMode) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	default:
		return fmt.Sprintf("FilterMode(%d)", f)
	}
}

// VertexFormat describes one vertex attribute element.
type VertexFormat uint8

// Vertex formats.
const (
	VertexFormatFloat32 VertexFormat = iota + 1
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// VertexFormatForComponents returns the float32 format with n components.
// It returns 0 when n is outside 1..4.
func VertexFormatForComponents(n int) VertexFormat {
	if n < 1 || n > 4 {
		return 0
	}
	return VertexFormat(n)
}

// Components returns the number of float32 components.
func (f VertexFormat) Components() int {
	if f < VertexFormatFloat32 || f > VertexFormatFloat32x4 {
		return 0
	}
	return int(f)
}

// Size returns the byte size of one element.
func (f VertexFormat) Size() uint64 { return uint64(f.Components()) * 4 }

var vertexFormatNames = [...]string{
	VertexFormatFloat32:   "float32",
	VertexFormatFloat32x2: "float32x2",
	VertexFormatFloat32x3: "float32x3",
	VertexFormatFloat32x4: "float32x4",
}

func (f VertexFormat) String() string {
	if int(f) < len(vertexFormatNames) && vertexFormatNames[f] != "" {
		return vertexFormatNames[f]
	}
	return fmt.Sprintf("VertexFormat(%d)", f)
}

// PrimitiveKind selects how vertices are assembled into primitives.
type PrimitiveKind uint8

// Primitive kinds.
const (
	PrimitiveTriangles PrimitiveKind = iota
	PrimitiveTriangleStrip
	PrimitiveLines
	PrimitiveLineStrip
	PrimitivePoints
)

var primitiveKindNames = [...]string{
	PrimitiveTriangles:     "triangles",
	PrimitiveTriangleStrip: "triangle_strip",
	PrimitiveLines:         "lines",
	PrimitiveLineStrip:     "line_strip",
	PrimitivePoints:        "points",
}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveKindNames) {
		return primitiveKindNames[k]
	}
	return fmt.Sprintf("PrimitiveKind(%d)", k)
}

// AttributeDesc describes one vertex input of a program.
type AttributeDesc struct {
	// Name is the WGSL member name in the VertexInput struct.
	Name string

	// Location is the @location index.
	Location uint32

	// Format is the element format.
	Format VertexFormat
}

// TextureBindingDesc describes one sampled texture input of a program.
type TextureBindingDesc struct {
	// Name is the placeholder name the texture was declared under.
	Name string

	// TextureBinding is the @binding of the texture_2d<f32> variable.
	TextureBinding uint32

	// SamplerBinding is the @binding of the sampler variable.
	SamplerBinding uint32
}

// ProgramDesc describes a program to create from linked WGSL units.
// All bindings live in group 0.
type ProgramDesc struct {
	// Label is an optional debug label.
	Label string

	// VertexSource is the complete WGSL vertex unit.
	VertexSource string

	// FragmentSource is the complete WGSL fragment unit.
	FragmentSource string

	// VertexEntry is the entry point of the vertex unit.
	VertexEntry string

	// FragmentEntry is the entry point of the fragment unit.
	FragmentEntry string

	// Attributes are the vertex inputs, one buffer per attribute.
	Attributes []AttributeDesc

	// UniformSize is the byte size of the uniform block at binding 0.
	// Zero means the program has no uniforms.
	UniformSize uint64

	// Textures are the sampled textures.
	Textures []TextureBindingDesc
}

// BufferDesc describes a GPU buffer.
type BufferDesc struct {
	// Label is an optional debug label.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage is a bitmask of BufferUsage flags.
	Usage BufferUsage
}

// TextureDesc describes a sampled 2D texture.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture extent in texels.
	Width, Height uint32

	// Format is the texel format.
	Format TextureFormat

	// MinFilter and MagFilter select sampling interpolation.
	MinFilter, MagFilter FilterMode
}
