// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"fmt"

	"github.com/gogpu/vis/gpucore"
)

// CommandType identifies the type of a command.
// Each command type corresponds to one gpucore.Context method.
type CommandType uint8

const (
	// Program commands
	CmdCreateProgram  CommandType = iota // Create a program
	CmdDestroyProgram                    // Destroy a program

	// Buffer commands
	CmdCreateBuffer  // Allocate a buffer
	CmdWriteBuffer   // Write buffer bytes
	CmdDestroyBuffer // Release a buffer

	// Texture commands
	CmdCreateTexture  // Allocate a texture
	CmdWriteTexture   // Write texels
	CmdDestroyTexture // Release a texture

	// Draw commands
	CmdSetUniforms  // Replace a program's uniform block
	CmdSetAttribute // Bind a vertex buffer
	CmdSetTexture   // Bind a texture
	CmdDraw         // Draw primitives
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdCreateProgram:  "CreateProgram",
	CmdDestroyProgram: "DestroyProgram",
	CmdCreateBuffer:   "CreateBuffer",
	CmdWriteBuffer:    "WriteBuffer",
	CmdDestroyBuffer:  "DestroyBuffer",
	CmdCreateTexture:  "CreateTexture",
	CmdWriteTexture:   "WriteTexture",
	CmdDestroyTexture: "DestroyTexture",
	CmdSetUniforms:    "SetUniforms",
	CmdSetAttribute:   "SetAttribute",
	CmdSetTexture:     "SetTexture",
	CmdDraw:           "Draw",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Program Commands
// --------------------------------------------------------------------------

// CreateProgramCommand records a program creation.
type CreateProgramCommand struct {
	ID   gpucore.ProgramID
	Desc gpucore.ProgramDesc
}

// Type implements Command.
func (CreateProgramCommand) Type() CommandType { return CmdCreateProgram }

func (c CreateProgramCommand) String() string {
	return fmt.Sprintf("CreateProgram id=%d label=%q attributes=%d textures=%d uniforms=%dB",
		c.ID, c.Desc.Label, len(c.Desc.Attributes), len(c.Desc.Textures), c.Desc.UniformSize)
}

// DestroyProgramCommand records a program release.
type DestroyProgramCommand struct {
	ID gpucore.ProgramID
}

// Type implements Command.
func (DestroyProgramCommand) Type() CommandType { return CmdDestroyProgram }

func (c DestroyProgramCommand) String() string { return fmt.Sprintf("DestroyProgram id=%d", c.ID) }

// --------------------------------------------------------------------------
// Buffer Commands
// --------------------------------------------------------------------------

// CreateBufferCommand records a buffer allocation.
type CreateBufferCommand struct {
	ID   gpucore.BufferID
	Desc gpucore.BufferDesc
}

// Type implements Command.
func (CreateBufferCommand) Type() CommandType { return CmdCreateBuffer }

func (c CreateBufferCommand) String() string {
	return fmt.Sprintf("CreateBuffer id=%d label=%q size=%d", c.ID, c.Desc.Label, c.Desc.Size)
}

// WriteBufferCommand records a buffer write.
type WriteBufferCommand struct {
	ID     gpucore.BufferID
	Offset uint64
	Size   int
}

// Type implements Command.
func (WriteBufferCommand) Type() CommandType { return CmdWriteBuffer }

func (c WriteBufferCommand) String() string {
	return fmt.Sprintf("WriteBuffer id=%d offset=%d size=%d", c.ID, c.Offset, c.Size)
}

// DestroyBufferCommand records a buffer release.
type DestroyBufferCommand struct {
	ID gpucore.BufferID
}

// Type implements Command.
func (DestroyBufferCommand) Type() CommandType { return CmdDestroyBuffer }

func (c DestroyBufferCommand) String() string { return fmt.Sprintf("DestroyBuffer id=%d", c.ID) }

// --------------------------------------------------------------------------
// Texture Commands
// --------------------------------------------------------------------------

// CreateTextureCommand records a texture allocation.
type CreateTextureCommand struct {
	ID   gpucore.TextureID
	Desc gpucore.TextureDesc
}

// Type implements Command.
func (CreateTextureCommand) Type() CommandType { return CmdCreateTexture }

func (c CreateTextureCommand) String() string {
	return fmt.Sprintf("CreateTexture id=%d %dx%d filter=%s/%s",
		c.ID, c.Desc.Width, c.Desc.Height, c.Desc.MinFilter, c.Desc.MagFilter)
}

// WriteTextureCommand records a texture upload.
type WriteTextureCommand struct {
	ID   gpucore.TextureID
	Size int
}

// Type implements Command.
func (WriteTextureCommand) Type() CommandType { return CmdWriteTexture }

func (c WriteTextureCommand) String() string {
	return fmt.Sprintf("WriteTexture id=%d size=%d", c.ID, c.Size)
}

// DestroyTextureCommand records a texture release.
type DestroyTextureCommand struct {
	ID gpucore.TextureID
}

// Type implements Command.
func (DestroyTextureCommand) Type() CommandType { return CmdDestroyTexture }

func (c DestroyTextureCommand) String() string { return fmt.Sprintf("DestroyTexture id=%d", c.ID) }

// --------------------------------------------------------------------------
// Draw Commands
// --------------------------------------------------------------------------

// SetUniformsCommand records a uniform block update.
type SetUniformsCommand struct {
	Program gpucore.ProgramID
	Data    []byte
}

// Type implements Command.
func (SetUniformsCommand) Type() CommandType { return CmdSetUniforms }

func (c SetUniformsCommand) String() string {
	return fmt.Sprintf("SetUniforms program=%d size=%d", c.Program, len(c.Data))
}

// SetAttributeCommand records a vertex buffer binding.
type SetAttributeCommand struct {
	Program  gpucore.ProgramID
	Location uint32
	Buffer   gpucore.BufferID
}

// Type implements Command.
func (SetAttributeCommand) Type() CommandType { return CmdSetAttribute }

func (c SetAttributeCommand) String() string {
	return fmt.Sprintf("SetAttribute program=%d location=%d buffer=%d", c.Program, c.Location, c.Buffer)
}

// SetTextureCommand records a texture binding.
type SetTextureCommand struct {
	Program gpucore.ProgramID
	Binding uint32
	Texture gpucore.TextureID
}

// Type implements Command.
func (SetTextureCommand) Type() CommandType { return CmdSetTexture }

func (c SetTextureCommand) String() string {
	return fmt.Sprintf("SetTexture program=%d binding=%d texture=%d", c.Program, c.Binding, c.Texture)
}

// DrawCommand records a draw.
type DrawCommand struct {
	Program     gpucore.ProgramID
	Kind        gpucore.PrimitiveKind
	VertexCount uint32
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

func (c DrawCommand) String() string {
	return fmt.Sprintf("Draw program=%d kind=%s vertices=%d", c.Program, c.Kind, c.VertexCount)
}
