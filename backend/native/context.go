// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package native runs linked programs on a GPU through gogpu/wgpu/hal.
//
// A Context draws into an offscreen render target that can be read back
// with ReadPixels. Every Draw is encoded in its own render pass and
// submitted immediately; the first pass after New or Clear clears the
// target.
package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
)

// Default render target size.
const (
	DefaultWidth  = 512
	DefaultHeight = 512
)

type options struct {
	width, height uint32
	format        gpucore.TextureFormat
	clear         gputypes.Color
}

// Option configures a Context.
type Option func(*options)

// WithTargetSize sets the render target size in pixels.
func WithTargetSize(width, height int) Option {
	return func(o *options) {
		o.width, o.height = uint32(max(width, 0)), uint32(max(height, 0)) //nolint:gosec // clamped
	}
}

// WithTargetFormat sets the render target format, RGBA8 (the default) or
// BGRA8. ReadPixels returns RGBA either way.
func WithTargetFormat(f gpucore.TextureFormat) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithClearColor sets the color the target is cleared to.
func WithClearColor(r, g, b, a float64) Option {
	return func(o *options) {
		o.clear = gputypes.Color{R: r, G: g, B: b, A: a}
	}
}

// Context implements gpucore.Context on a HAL device.
//
// Thread Safety: Context is safe for concurrent use. All resource
// operations are serialized by a mutex.
type Context struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	opts   options

	// Set when the context opened the device itself.
	instance hal.Instance
	owned    bool

	nextID   uint64
	programs map[gpucore.ProgramID]*program
	buffers  map[gpucore.BufferID]*buffer
	textures map[gpucore.TextureID]*texture

	target *target
	clear  bool
	closed bool
}

var _ gpucore.Context = (*Context)(nil)

// New creates a Context drawing with device and queue. The caller keeps
// ownership of both.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Context, error) {
	o := options{width: DefaultWidth, height: DefaultHeight, format: gpucore.TextureFormatRGBA8Unorm}
	for _, opt := range opts {
		opt(&o)
	}
	if o.width == 0 || o.height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, o.width, o.height)
	}
	c := &Context{
		device:   device,
		queue:    queue,
		opts:     o,
		programs: make(map[gpucore.ProgramID]*program),
		buffers:  make(map[gpucore.BufferID]*buffer),
		textures: make(map[gpucore.TextureID]*texture),
		clear:    true,
	}
	t, err := newTarget(device, o.width, o.height, convertTextureFormat(o.format))
	if err != nil {
		return nil, err
	}
	c.target = t
	vis.Logger().Debug("native: context created", "width", o.width, "height", o.height)
	return c, nil
}

// NewFromProvider creates a Context sharing the device of an external
// provider. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue, opts...)
}

// Open creates a standalone device on the first adapter of the given
// backend, preferring discrete and integrated GPUs. Close releases it.
func Open(backend gputypes.Backend, opts ...Option) (*Context, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%w: backend %v not registered", ErrNoGPU, backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}
	c, err := New(openDev.Device, openDev.Queue, opts...)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	c.instance, c.owned = instance, true
	vis.Logger().Info("native: device opened", "adapter", selected.Info.Name)
	return c, nil
}

// Size returns the render target size.
func (c *Context) Size() (width, height int) {
	return int(c.opts.width), int(c.opts.height)
}

// Clear makes the next draw clear the target first.
func (c *Context) Clear() {
	c.mu.Lock()
	c.clear = true
	c.mu.Unlock()
}

// Live returns the number of live programs, buffers and textures.
func (c *Context) Live() (programs, buffers, textures int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs), len(c.buffers), len(c.textures)
}

func (c *Context) newID() uint64 {
	c.nextID++
	return c.nextID
}

// Close destroys every live resource and the render target. A device
// opened by Open is destroyed too.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for id, p := range c.programs {
		p.destroy(c.device)
		delete(c.programs, id)
	}
	for id, b := range c.buffers {
		c.device.DestroyBuffer(b.buf)
		delete(c.buffers, id)
	}
	for id, t := range c.textures {
		t.destroy(c.device)
		delete(c.textures, id)
	}
	c.target.destroy(c.device)
	if c.owned {
		c.device.Destroy()
		c.instance.Destroy()
	}
	c.closed = true
}

// CreateBuffer implements gpucore.Context.
func (c *Context) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return gpucore.InvalidID, ErrClosed
	}
	if desc.Size == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: buffer %q: size must be positive", desc.Label)
	}
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: convertBufferUsage(desc.Usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer %q: %w", desc.Label, err)
	}
	id := gpucore.BufferID(c.newID())
	c.buffers[id] = &buffer{buf: buf, size: desc.Size}
	return id, nil
}

// WriteBuffer implements gpucore.Context.
func (c *Context) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		return fmt.Errorf("native: write buffer %d: %w", id, gpucore.ErrInvalidID)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("native: write %d bytes at %d into %d-byte buffer: %w",
			len(data), offset, b.size, gpucore.ErrOutOfRange)
	}
	if len(data) > 0 {
		c.queue.WriteBuffer(b.buf, offset, data)
	}
	return nil
}

// DestroyBuffer implements gpucore.Context.
func (c *Context) DestroyBuffer(id gpucore.BufferID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.buffers[id]; ok {
		delete(c.buffers, id)
		c.device.DestroyBuffer(b.buf)
	}
}

// CreateTexture implements gpucore.Context.
func (c *Context) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return gpucore.InvalidID, ErrClosed
	}
	t, err := newTexture(c.device, desc)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.TextureID(c.newID())
	c.textures[id] = t
	return id, nil
}

// WriteTexture implements gpucore.Context.
func (c *Context) WriteTexture(id gpucore.TextureID, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.textures[id]
	if !ok {
		return fmt.Errorf("native: write texture %d: %w", id, gpucore.ErrInvalidID)
	}
	return t.write(c.queue, data)
}

// DestroyTexture implements gpucore.Context.
func (c *Context) DestroyTexture(id gpucore.TextureID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.textures[id]; ok {
		delete(c.textures, id)
		t.destroy(c.device)
	}
}

// buffer is a live gpucore buffer.
type buffer struct {
	buf  hal.Buffer
	size uint64
}
