// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package program links shader templates into GPU programs and caches them.
//
// A Builder turns a vertex and a fragment template, together with every
// function and value bound into them, into a Program on a gpucore.Context.
// Builds are memoized by the structural identity of the shader graph, so
// rebuilding an unchanged graph returns the same Program without linking
// or compiling again. Changing uniform data never changes that identity.
package program

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
	"github.com/gogpu/vis/internal/cache"
	"github.com/gogpu/vis/shader"
)

var (
	// ErrValidation is returned when a linked unit fails validation.
	ErrValidation = errors.New("program: invalid generated WGSL")

	// ErrDestroyed is returned when drawing a released program.
	ErrDestroyed = errors.New("program: destroyed")

	// ErrNoVertices is returned by Draw for a program without vertex
	// buffers, whose vertex count cannot be derived.
	ErrNoVertices = errors.New("program: no vertex buffers bound")

	// ErrVertexCount is returned by DrawN for a negative vertex count.
	ErrVertexCount = errors.New("program: negative vertex count")

	// ErrClosed is returned by Build after Close.
	ErrClosed = errors.New("program: builder closed")
)

// Builder links and caches programs on one context.
//
// A Builder is not safe for concurrent use; it belongs to the goroutine
// that owns the context.
type Builder struct {
	ctx    gpucore.Context
	opts   options
	cache  *cache.Cache[string, *Program]
	closed bool
}

// NewBuilder returns a Builder creating programs on ctx.
func NewBuilder(ctx gpucore.Context, opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := &Builder{ctx: ctx, opts: o}
	b.cache = cache.NewWithEvict(o.cacheSize, func(key string, p *Program) {
		vis.Logger().Debug("program: evicted", "program", p.id)
		p.release()
	})
	return b
}

// Context returns the context programs are created on.
func (b *Builder) Context() gpucore.Context { return b.ctx }

// Build links vs and fs, or returns the program already built for the same
// graph. Link errors are returned unwrapped, so *shader.LinkError and the
// shader sentinels can be matched directly. A failed build leaves the cache
// untouched.
func (b *Builder) Build(vs, fs *shader.Template) (*Program, error) {
	if b.closed {
		return nil, ErrClosed
	}
	key := shader.Key(vs, fs)
	p, hit, err := b.cache.GetOrCreate(key, func() (*Program, error) {
		return b.link(key, vs, fs)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		vis.Logger().Debug("program: cache hit", "program", p.id)
	}
	return p, nil
}

func (b *Builder) link(key string, vs, fs *shader.Template) (*Program, error) {
	linked, err := shader.Link(vs, fs)
	if err != nil {
		return nil, err
	}
	if err := validate(linked, b.opts.validation); err != nil {
		return nil, err
	}

	desc := &gpucore.ProgramDesc{
		Label:          fmt.Sprintf("%s+%s", linked.Vertex.Entry, linked.Fragment.Entry),
		VertexSource:   linked.Vertex.Source,
		FragmentSource: linked.Fragment.Source,
		VertexEntry:    linked.Vertex.Entry,
		FragmentEntry:  linked.Fragment.Entry,
		UniformSize:    linked.UniformSize,
	}
	for _, a := range linked.Attributes {
		desc.Attributes = append(desc.Attributes, gpucore.AttributeDesc{
			Name:     a.Name,
			Location: a.Location,
			Format:   gpucore.VertexFormatForComponents(a.Type.Components()),
		})
	}
	for _, t := range linked.Textures {
		desc.Textures = append(desc.Textures, gpucore.TextureBindingDesc{
			Name:           t.Name,
			TextureBinding: t.TextureBinding,
			SamplerBinding: t.SamplerBinding,
		})
	}

	id, err := b.ctx.CreateProgram(desc)
	if err != nil {
		return nil, fmt.Errorf("program: create: %w", err)
	}
	vis.Logger().Debug("program: linked",
		"program", id,
		"functions", linked.Functions,
		"uniform_bytes", linked.UniformSize,
		"attributes", len(linked.Attributes),
		"textures", len(linked.Textures))
	return &Program{ctx: b.ctx, id: id, key: key, linked: linked}, nil
}

func validate(l *shader.Linked, v Validation) error {
	if v == ValidateNone {
		return nil
	}
	for _, u := range []shader.Unit{l.Vertex, l.Fragment} {
		ast, err := naga.Parse(u.Source)
		if err != nil {
			return fmt.Errorf("%w: %s unit: %w", ErrValidation, u.Stage, err)
		}
		if v != ValidateIR {
			continue
		}
		mod, err := naga.LowerWithSource(ast, u.Source)
		if err != nil {
			return fmt.Errorf("%w: %s unit: %w", ErrValidation, u.Stage, err)
		}
		verrs, err := naga.Validate(mod)
		if err != nil {
			return fmt.Errorf("%w: %s unit: %w", ErrValidation, u.Stage, err)
		}
		if len(verrs) > 0 {
			return fmt.Errorf("%w: %s unit: %w", ErrValidation, u.Stage, &verrs[0])
		}
	}
	return nil
}

// Stats describes the program cache.
type Stats struct {
	Programs  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns cache statistics.
func (b *Builder) Stats() Stats {
	s := b.cache.Stats()
	return Stats{Programs: s.Len, Hits: s.Hits, Misses: s.Misses, Evictions: s.Evictions}
}

// Close destroys every cached program. Programs returned earlier become
// unusable.
func (b *Builder) Close() {
	b.closed = true
	b.cache.Clear()
}
