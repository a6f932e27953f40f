// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "errors"

// Errors returned by Context implementations.
var (
	// ErrInvalidID is returned when an ID does not name a live resource.
	ErrInvalidID = errors.New("gpucore: invalid resource id")

	// ErrOutOfRange is returned when a write exceeds the resource size.
	ErrOutOfRange = errors.New("gpucore: write out of range")
)

// Context abstracts the GPU used to run linked programs.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - IDs become invalid after destruction and are never reused
//
// Program inputs set with SetUniforms, SetAttribute and SetTexture persist
// until replaced. Draw uses the inputs set at the time of the call.
// Implementations are not required to be safe for concurrent use.
type Context interface {
	// CreateProgram compiles the two WGSL units of desc into a program.
	CreateProgram(desc *ProgramDesc) (ProgramID, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// CreateBuffer allocates a GPU buffer.
	CreateBuffer(desc *BufferDesc) (BufferID, error)

	// WriteBuffer copies data into a buffer at the given byte offset.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// CreateTexture allocates a sampled 2D texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// WriteTexture replaces the whole texture content.
	// data holds Height rows of Width texels, tightly packed.
	WriteTexture(id TextureID, data []byte) error

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// SetUniforms replaces the program's uniform block.
	SetUniforms(p ProgramID, data []byte) error

	// SetAttribute binds a vertex buffer to an attribute location.
	SetAttribute(p ProgramID, location uint32, buf BufferID) error

	// SetTexture binds a texture to the texture binding of a program input.
	SetTexture(p ProgramID, binding uint32, tex TextureID) error

	// Draw issues one draw of vertexCount vertices.
	Draw(p ProgramID, kind PrimitiveKind, vertexCount uint32) error
}
