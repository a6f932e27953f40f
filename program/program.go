// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"fmt"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
	"github.com/gogpu/vis/shader"
)

// Program is a linked pair of units created on a context, plus the values
// bound to its inputs. Programs are owned by the Builder that built them
// and released when evicted or when the Builder is closed.
type Program struct {
	ctx       gpucore.Context
	id        gpucore.ProgramID
	key       string
	linked    *shader.Linked
	destroyed bool
}

// ID returns the context's program id.
func (p *Program) ID() gpucore.ProgramID { return p.id }

// Linked returns the link result the program was created from.
func (p *Program) Linked() *shader.Linked { return p.linked }

// VertexSource returns the generated vertex unit.
func (p *Program) VertexSource() string { return p.linked.Vertex.Source }

// FragmentSource returns the generated fragment unit.
func (p *Program) FragmentSource() string { return p.linked.Fragment.Source }

// Destroyed reports whether the program was released.
func (p *Program) Destroyed() bool { return p.destroyed }

// VertexCount returns the number of vertices one draw covers: the smallest
// vertex count among the bound buffers, or 0 without any.
func (p *Program) VertexCount() int {
	n := -1
	for _, a := range p.linked.Attributes {
		if c := a.Buffer.Count(); n < 0 || c < n {
			n = c
		}
	}
	return max(n, 0)
}

// Draw uploads whatever changed since the last draw and draws kind over
// VertexCount vertices.
//
// Dirty vertex buffers and textures are uploaded, the uniform block is
// packed from the current uniform values, and every input is set again
// since uploads may re-create GPU resources.
func (p *Program) Draw(kind gpucore.PrimitiveKind) error {
	n := p.VertexCount()
	if len(p.linked.Attributes) == 0 {
		return ErrNoVertices
	}
	return p.DrawN(kind, n)
}

// DrawN is like Draw with an explicit vertex count, for programs that
// derive positions from the vertex index.
func (p *Program) DrawN(kind gpucore.PrimitiveKind, vertices int) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if vertices < 0 {
		return fmt.Errorf("%w: %d", ErrVertexCount, vertices)
	}
	for _, a := range p.linked.Attributes {
		if err := a.Buffer.Upload(p.ctx); err != nil {
			return fmt.Errorf("program: attribute %s: %w", a.Name, err)
		}
		if err := p.ctx.SetAttribute(p.id, a.Location, a.Buffer.BufferID()); err != nil {
			return fmt.Errorf("program: attribute %s: %w", a.Name, err)
		}
	}
	for _, t := range p.linked.Textures {
		if err := t.Texture.Upload(p.ctx); err != nil {
			return fmt.Errorf("program: texture %s: %w", t.Name, err)
		}
		if err := p.ctx.SetTexture(p.id, t.TextureBinding, t.Texture.TextureID()); err != nil {
			return fmt.Errorf("program: texture %s: %w", t.Name, err)
		}
	}
	if p.linked.UniformSize > 0 {
		data := shader.PackUniforms(p.linked.Uniforms, p.linked.UniformSize)
		if err := p.ctx.SetUniforms(p.id, data); err != nil {
			return fmt.Errorf("program: uniforms: %w", err)
		}
	}
	if err := p.ctx.Draw(p.id, kind, uint32(vertices)); err != nil {
		return fmt.Errorf("program: draw: %w", err)
	}
	return nil
}

func (p *Program) release() {
	if p.destroyed {
		return
	}
	p.ctx.DestroyProgram(p.id)
	p.destroyed = true
	vis.Logger().Debug("program: destroyed", "program", p.id)
}
