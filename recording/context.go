// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/naga"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
)

// ErrIncompleteDraw is returned by Draw when a program input is unset.
var ErrIncompleteDraw = errors.New("recording: draw with unset program input")

// Option configures a Context.
type Option func(*options)

type options struct {
	compile bool
}

// WithShaderCompile makes CreateProgram compile both WGSL units to SPIR-V
// with naga, failing the way a driver would on invalid source.
func WithShaderCompile() Option {
	return func(o *options) { o.compile = true }
}

type program struct {
	desc       gpucore.ProgramDesc
	uniforms   []byte
	attributes map[uint32]gpucore.BufferID
	textures   map[uint32]gpucore.TextureID
}

type texture struct {
	desc gpucore.TextureDesc
	data []byte
}

// Context is a gpucore.Context that keeps every call as a Command.
// The zero value is not usable; call NewContext.
type Context struct {
	opts options

	nextID   uint64
	programs map[gpucore.ProgramID]*program
	buffers  map[gpucore.BufferID][]byte
	textures map[gpucore.TextureID]*texture

	commands []Command
	failures map[CommandType]error
}

var _ gpucore.Context = (*Context)(nil)

// NewContext creates an empty recording context.
func NewContext(opts ...Option) *Context {
	c := &Context{
		programs: make(map[gpucore.ProgramID]*program),
		buffers:  make(map[gpucore.BufferID][]byte),
		textures: make(map[gpucore.TextureID]*texture),
		failures: make(map[CommandType]error),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// FailNext makes the next call of the given type return err without
// recording anything.
func (c *Context) FailNext(t CommandType, err error) { c.failures[t] = err }

func (c *Context) injected(t CommandType) error {
	if err, ok := c.failures[t]; ok {
		delete(c.failures, t)
		return err
	}
	return nil
}

func (c *Context) id() uint64 {
	c.nextID++
	return c.nextID
}

func (c *Context) record(cmd Command) { c.commands = append(c.commands, cmd) }

// CreateProgram implements gpucore.Context.
func (c *Context) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if err := c.injected(CmdCreateProgram); err != nil {
		return gpucore.InvalidID, err
	}
	if c.opts.compile {
		if _, err := naga.Compile(desc.VertexSource); err != nil {
			return gpucore.InvalidID, fmt.Errorf("recording: vertex unit: %w", err)
		}
		if _, err := naga.Compile(desc.FragmentSource); err != nil {
			return gpucore.InvalidID, fmt.Errorf("recording: fragment unit: %w", err)
		}
	}
	id := gpucore.ProgramID(c.id())
	c.programs[id] = &program{
		desc:       *desc,
		attributes: make(map[uint32]gpucore.BufferID),
		textures:   make(map[uint32]gpucore.TextureID),
	}
	c.record(CreateProgramCommand{ID: id, Desc: *desc})
	return id, nil
}

// DestroyProgram implements gpucore.Context.
func (c *Context) DestroyProgram(id gpucore.ProgramID) {
	if _, ok := c.programs[id]; !ok {
		return
	}
	delete(c.programs, id)
	c.record(DestroyProgramCommand{ID: id})
}

// CreateBuffer implements gpucore.Context.
func (c *Context) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if err := c.injected(CmdCreateBuffer); err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.BufferID(c.id())
	c.buffers[id] = make([]byte, desc.Size)
	c.record(CreateBufferCommand{ID: id, Desc: *desc})
	return id, nil
}

// WriteBuffer implements gpucore.Context.
func (c *Context) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	if err := c.injected(CmdWriteBuffer); err != nil {
		return err
	}
	buf, ok := c.buffers[id]
	if !ok {
		return fmt.Errorf("recording: write buffer %d: %w", id, gpucore.ErrInvalidID)
	}
	if offset+uint64(len(data)) > uint64(len(buf)) {
		return fmt.Errorf("recording: write buffer %d: %d bytes at %d into %d: %w",
			id, len(data), offset, len(buf), gpucore.ErrOutOfRange)
	}
	copy(buf[offset:], data)
	c.record(WriteBufferCommand{ID: id, Offset: offset, Size: len(data)})
	return nil
}

// DestroyBuffer implements gpucore.Context.
func (c *Context) DestroyBuffer(id gpucore.BufferID) {
	if _, ok := c.buffers[id]; !ok {
		return
	}
	delete(c.buffers, id)
	c.record(DestroyBufferCommand{ID: id})
}

// CreateTexture implements gpucore.Context.
func (c *Context) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := c.injected(CmdCreateTexture); err != nil {
		return gpucore.InvalidID, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("recording: create texture: empty extent %dx%d", desc.Width, desc.Height)
	}
	id := gpucore.TextureID(c.id())
	c.textures[id] = &texture{desc: *desc}
	c.record(CreateTextureCommand{ID: id, Desc: *desc})
	return id, nil
}

// WriteTexture implements gpucore.Context.
func (c *Context) WriteTexture(id gpucore.TextureID, data []byte) error {
	if err := c.injected(CmdWriteTexture); err != nil {
		return err
	}
	tex, ok := c.textures[id]
	if !ok {
		return fmt.Errorf("recording: write texture %d: %w", id, gpucore.ErrInvalidID)
	}
	want := int(tex.desc.Width) * int(tex.desc.Height) * tex.desc.Format.BytesPerPixel()
	if len(data) != want {
		return fmt.Errorf("recording: write texture %d: %d bytes, want %d: %w", id, len(data), want, gpucore.ErrOutOfRange)
	}
	tex.data = append(tex.data[:0], data...)
	c.record(WriteTextureCommand{ID: id, Size: len(data)})
	return nil
}

// DestroyTexture implements gpucore.Context.
func (c *Context) DestroyTexture(id gpucore.TextureID) {
	if _, ok := c.textures[id]; !ok {
		return
	}
	delete(c.textures, id)
	c.record(DestroyTextureCommand{ID: id})
}

// SetUniforms implements gpucore.Context.
func (c *Context) SetUniforms(p gpucore.ProgramID, data []byte) error {
	prog, ok := c.programs[p]
	if !ok {
		return fmt.Errorf("recording: set uniforms: program %d: %w", p, gpucore.ErrInvalidID)
	}
	if uint64(len(data)) != prog.desc.UniformSize {
		return fmt.Errorf("recording: set uniforms: %d bytes, want %d: %w", len(data), prog.desc.UniformSize, gpucore.ErrOutOfRange)
	}
	prog.uniforms = append(prog.uniforms[:0], data...)
	c.record(SetUniformsCommand{Program: p, Data: append([]byte(nil), data...)})
	return nil
}

// SetAttribute implements gpucore.Context.
func (c *Context) SetAttribute(p gpucore.ProgramID, location uint32, buf gpucore.BufferID) error {
	prog, ok := c.programs[p]
	if !ok {
		return fmt.Errorf("recording: set attribute: program %d: %w", p, gpucore.ErrInvalidID)
	}
	if _, ok := c.buffers[buf]; !ok {
		return fmt.Errorf("recording: set attribute: buffer %d: %w", buf, gpucore.ErrInvalidID)
	}
	prog.attributes[location] = buf
	c.record(SetAttributeCommand{Program: p, Location: location, Buffer: buf})
	return nil
}

// SetTexture implements gpucore.Context.
func (c *Context) SetTexture(p gpucore.ProgramID, binding uint32, tex gpucore.TextureID) error {
	prog, ok := c.programs[p]
	if !ok {
		return fmt.Errorf("recording: set texture: program %d: %w", p, gpucore.ErrInvalidID)
	}
	if _, ok := c.textures[tex]; !ok {
		return fmt.Errorf("recording: set texture: texture %d: %w", tex, gpucore.ErrInvalidID)
	}
	prog.textures[binding] = tex
	c.record(SetTextureCommand{Program: p, Binding: binding, Texture: tex})
	return nil
}

// Draw implements gpucore.Context. Every attribute, texture and the
// uniform block of the program must have been set.
func (c *Context) Draw(p gpucore.ProgramID, kind gpucore.PrimitiveKind, vertexCount uint32) error {
	if err := c.injected(CmdDraw); err != nil {
		return err
	}
	prog, ok := c.programs[p]
	if !ok {
		return fmt.Errorf("recording: draw: program %d: %w", p, gpucore.ErrInvalidID)
	}
	for _, a := range prog.desc.Attributes {
		if _, ok := c.buffers[prog.attributes[a.Location]]; !ok {
			return fmt.Errorf("%w: attribute %q at location %d", ErrIncompleteDraw, a.Name, a.Location)
		}
	}
	for _, t := range prog.desc.Textures {
		if _, ok := c.textures[prog.textures[t.TextureBinding]]; !ok {
			return fmt.Errorf("%w: texture %q at binding %d", ErrIncompleteDraw, t.Name, t.TextureBinding)
		}
	}
	if prog.desc.UniformSize > 0 && prog.uniforms == nil {
		return fmt.Errorf("%w: uniform block", ErrIncompleteDraw)
	}
	c.record(DrawCommand{Program: p, Kind: kind, VertexCount: vertexCount})
	vis.Logger().Debug("recording: draw", "program", p, "kind", kind, "vertices", vertexCount)
	return nil
}

// Commands returns the recorded commands in call order.
func (c *Context) Commands() []Command { return c.commands }

// Count returns how many commands of type t were recorded.
func (c *Context) Count(t CommandType) int {
	n := 0
	for _, cmd := range c.commands {
		if cmd.Type() == t {
			n++
		}
	}
	return n
}

// Draws returns the recorded draw commands.
func (c *Context) Draws() []DrawCommand {
	var out []DrawCommand
	for _, cmd := range c.commands {
		if d, ok := cmd.(DrawCommand); ok {
			out = append(out, d)
		}
	}
	return out
}

// Reset drops the recorded commands but keeps all live resources.
func (c *Context) Reset() { c.commands = c.commands[:0] }

// Program returns the descriptor of a live program.
func (c *Context) Program(id gpucore.ProgramID) (gpucore.ProgramDesc, bool) {
	p, ok := c.programs[id]
	if !ok {
		return gpucore.ProgramDesc{}, false
	}
	return p.desc, true
}

// Uniforms returns the last uniform block set on a live program.
func (c *Context) Uniforms(id gpucore.ProgramID) []byte {
	if p, ok := c.programs[id]; ok {
		return p.uniforms
	}
	return nil
}

// BufferData returns the contents of a live buffer.
func (c *Context) BufferData(id gpucore.BufferID) ([]byte, bool) {
	b, ok := c.buffers[id]
	return b, ok
}

// TextureData returns the descriptor and texels of a live texture.
func (c *Context) TextureData(id gpucore.TextureID) (gpucore.TextureDesc, []byte, bool) {
	t, ok := c.textures[id]
	if !ok {
		return gpucore.TextureDesc{}, nil, false
	}
	return t.desc, t.data, true
}

// Live returns the number of live programs, buffers and textures.
func (c *Context) Live() (programs, buffers, textures int) {
	return len(c.programs), len(c.buffers), len(c.textures)
}

// Dump writes one line per recorded command.
func (c *Context) Dump(w io.Writer) error {
	for i, cmd := range c.commands {
		if _, err := fmt.Fprintf(w, "%4d %v\n", i, cmd); err != nil {
			return err
		}
	}
	return nil
}
