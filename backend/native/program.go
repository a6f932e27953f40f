// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
)

// program holds the GPU objects of a linked program. Pipelines are
// created per primitive kind on first draw.
type program struct {
	desc gpucore.ProgramDesc

	vertex, fragment hal.ShaderModule
	layout           hal.BindGroupLayout
	pipeLayout       hal.PipelineLayout
	pipelines        map[gpucore.PrimitiveKind]hal.RenderPipeline
	uniforms         hal.Buffer
	uniformsSet      bool

	attributes map[uint32]gpucore.BufferID
	textures   map[uint32]gpucore.TextureID
}

// CreateProgram implements gpucore.Context. Both units are compiled by
// the device; pipelines are deferred to Draw.
func (c *Context) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return gpucore.InvalidID, ErrClosed
	}
	p := &program{
		desc:       *desc,
		pipelines:  make(map[gpucore.PrimitiveKind]hal.RenderPipeline),
		attributes: make(map[uint32]gpucore.BufferID),
		textures:   make(map[uint32]gpucore.TextureID),
	}
	if err := p.create(c.device); err != nil {
		p.destroy(c.device)
		return gpucore.InvalidID, err
	}
	id := gpucore.ProgramID(c.newID())
	c.programs[id] = p
	vis.Logger().Debug("native: program created", "program", id, "label", desc.Label)
	return id, nil
}

func (p *program) create(device hal.Device) error {
	var err error
	p.vertex, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.desc.Label + "_vs",
		Source: hal.ShaderSource{WGSL: p.desc.VertexSource},
	})
	if err != nil {
		return fmt.Errorf("native: compile vertex unit: %w", err)
	}
	p.fragment, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.desc.Label + "_fs",
		Source: hal.ShaderSource{WGSL: p.desc.FragmentSource},
	})
	if err != nil {
		return fmt.Errorf("native: compile fragment unit: %w", err)
	}

	p.layout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.desc.Label + "_layout",
		Entries: p.layoutEntries(),
	})
	if err != nil {
		return fmt.Errorf("native: create bind group layout: %w", err)
	}
	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.desc.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.layout},
	})
	if err != nil {
		return fmt.Errorf("native: create pipeline layout: %w", err)
	}

	if p.desc.UniformSize > 0 {
		p.uniforms, err = device.CreateBuffer(&hal.BufferDescriptor{
			Label: p.desc.Label + "_uniforms",
			Size:  p.desc.UniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("native: create uniform buffer: %w", err)
		}
	}
	return nil
}

// layoutEntries mirrors the linker's group 0: the uniform block at binding
// 0, then a texture and a sampler per texture input.
func (p *program) layoutEntries() []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry
	if p.desc.UniformSize > 0 {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	for _, t := range p.desc.Textures {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    t.TextureBinding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    t.SamplerBinding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	return entries
}

// vertexLayouts returns one buffer slot per attribute, in descriptor order.
func (p *program) vertexLayouts() []gputypes.VertexBufferLayout {
	layouts := make([]gputypes.VertexBufferLayout, len(p.desc.Attributes))
	for i, a := range p.desc.Attributes {
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: a.Format.Size(),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: convertVertexFormat(a.Format), Offset: 0, ShaderLocation: a.Location},
			},
		}
	}
	return layouts
}

func (p *program) pipeline(device hal.Device, kind gpucore.PrimitiveKind, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if pl, ok := p.pipelines[kind]; ok {
		return pl, nil
	}
	pl, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s_%v", p.desc.Label, kind),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertex,
			EntryPoint: p.desc.VertexEntry,
			Buffers:    p.vertexLayouts(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: p.desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{Format: format, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: convertTopology(kind),
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create %v pipeline: %w", kind, err)
	}
	p.pipelines[kind] = pl
	return pl, nil
}

func (p *program) destroy(device hal.Device) {
	for k, pl := range p.pipelines {
		device.DestroyRenderPipeline(pl)
		delete(p.pipelines, k)
	}
	if p.uniforms != nil {
		device.DestroyBuffer(p.uniforms)
		p.uniforms = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.layout != nil {
		device.DestroyBindGroupLayout(p.layout)
		p.layout = nil
	}
	if p.fragment != nil {
		device.DestroyShaderModule(p.fragment)
		p.fragment = nil
	}
	if p.vertex != nil {
		device.DestroyShaderModule(p.vertex)
		p.vertex = nil
	}
}

// DestroyProgram implements gpucore.Context.
func (c *Context) DestroyProgram(id gpucore.ProgramID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.programs[id]; ok {
		delete(c.programs, id)
		p.destroy(c.device)
	}
}

// SetUniforms implements gpucore.Context.
func (c *Context) SetUniforms(id gpucore.ProgramID, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.programs[id]
	if !ok {
		return fmt.Errorf("native: set uniforms on program %d: %w", id, gpucore.ErrInvalidID)
	}
	if uint64(len(data)) != p.desc.UniformSize {
		return fmt.Errorf("native: %d uniform bytes for a %d-byte block: %w",
			len(data), p.desc.UniformSize, gpucore.ErrOutOfRange)
	}
	if len(data) > 0 {
		c.queue.WriteBuffer(p.uniforms, 0, data)
	}
	p.uniformsSet = true
	return nil
}

// SetAttribute implements gpucore.Context.
func (c *Context) SetAttribute(id gpucore.ProgramID, location uint32, buf gpucore.BufferID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.programs[id]
	if !ok {
		return fmt.Errorf("native: set attribute on program %d: %w", id, gpucore.ErrInvalidID)
	}
	if _, ok := c.buffers[buf]; !ok {
		return fmt.Errorf("native: set attribute %d to buffer %d: %w", location, buf, gpucore.ErrInvalidID)
	}
	if !p.hasAttribute(location) {
		return fmt.Errorf("native: program %d has no attribute at location %d: %w", id, location, gpucore.ErrInvalidID)
	}
	p.attributes[location] = buf
	return nil
}

func (p *program) hasAttribute(location uint32) bool {
	for _, a := range p.desc.Attributes {
		if a.Location == location {
			return true
		}
	}
	return false
}

// SetTexture implements gpucore.Context.
func (c *Context) SetTexture(id gpucore.ProgramID, binding uint32, tex gpucore.TextureID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.programs[id]
	if !ok {
		return fmt.Errorf("native: set texture on program %d: %w", id, gpucore.ErrInvalidID)
	}
	if _, ok := c.textures[tex]; !ok {
		return fmt.Errorf("native: set binding %d to texture %d: %w", binding, tex, gpucore.ErrInvalidID)
	}
	found := false
	for _, t := range p.desc.Textures {
		found = found || t.TextureBinding == binding
	}
	if !found {
		return fmt.Errorf("native: program %d has no texture at binding %d: %w", id, binding, gpucore.ErrInvalidID)
	}
	p.textures[binding] = tex
	return nil
}

// Draw implements gpucore.Context. The draw is encoded in its own render
// pass and waited for before returning.
func (c *Context) Draw(id gpucore.ProgramID, kind gpucore.PrimitiveKind, vertexCount uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.programs[id]
	if !ok {
		return fmt.Errorf("native: draw program %d: %w", id, gpucore.ErrInvalidID)
	}
	if err := c.checkInputs(id, p); err != nil {
		return err
	}
	pl, err := p.pipeline(c.device, kind, c.target.format)
	if err != nil {
		return err
	}
	group, err := c.bindGroup(p)
	if err != nil {
		return err
	}
	defer c.device.DestroyBindGroup(group)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "vis_draw"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("vis_draw"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	load := gputypes.LoadOpLoad
	if c.clear {
		load = gputypes.LoadOpClear
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "vis_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       c.target.view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.opts.clear,
		}},
	})
	rp.SetPipeline(pl)
	rp.SetBindGroup(0, group, nil)
	for slot, a := range p.desc.Attributes {
		rp.SetVertexBuffer(uint32(slot), c.buffers[p.attributes[a.Location]].buf, 0) //nolint:gosec // attribute count fits uint32
	}
	rp.Draw(vertexCount, 1, 0, 0)
	rp.End()

	if err := c.submit(encoder); err != nil {
		return err
	}
	c.clear = false
	return nil
}

func (c *Context) checkInputs(id gpucore.ProgramID, p *program) error {
	for _, a := range p.desc.Attributes {
		if _, ok := c.buffers[p.attributes[a.Location]]; !ok {
			return fmt.Errorf("native: program %d attribute %s: %w", id, a.Name, ErrIncompleteDraw)
		}
	}
	for _, t := range p.desc.Textures {
		if _, ok := c.textures[p.textures[t.TextureBinding]]; !ok {
			return fmt.Errorf("native: program %d texture %s: %w", id, t.Name, ErrIncompleteDraw)
		}
	}
	if p.desc.UniformSize > 0 && !p.uniformsSet {
		return fmt.Errorf("native: program %d uniforms: %w", id, ErrIncompleteDraw)
	}
	return nil
}

// bindGroup binds the current inputs of p. The caller destroys it.
func (c *Context) bindGroup(p *program) (hal.BindGroup, error) {
	var entries []gputypes.BindGroupEntry
	if p.desc.UniformSize > 0 {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: 0,
			Resource: gputypes.BufferBinding{
				Buffer: p.uniforms.NativeHandle(), Offset: 0, Size: p.desc.UniformSize,
			},
		})
	}
	for _, tb := range p.desc.Textures {
		t := c.textures[p.textures[tb.TextureBinding]]
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  tb.TextureBinding,
				Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  tb.SamplerBinding,
				Resource: gputypes.SamplerBinding{Sampler: t.sampler.NativeHandle()},
			},
		)
	}
	group, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.desc.Label + "_bind",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group: %w", err)
	}
	return group, nil
}
