// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vis/gpucore"
)

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

// fenceTimeout bounds every submit.
const fenceTimeout = 5 * time.Second

// target is the offscreen color attachment.
type target struct {
	tex           hal.Texture
	view          hal.TextureView
	format        gputypes.TextureFormat
	width, height uint32
}

func newTarget(device hal.Device, w, h uint32, format gputypes.TextureFormat) (*target, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "vis_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create target: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "vis_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("native: create target view: %w", err)
	}
	return &target{tex: tex, view: view, format: format, width: w, height: h}, nil
}

func (t *target) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// submit ends encoder, submits it and waits for completion.
func (c *Context) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	ok, err := c.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("native: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// ReadPixels copies the render target back to the CPU.
func (c *Context) ReadPixels() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	w, h := c.target.width, c.target.height
	bytesPerRow := w * 4
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(aligned) * uint64(h)

	staging, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vis_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer c.device.DestroyBuffer(staging)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "vis_readback"})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("vis_readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(c.target.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: c.target.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := c.submit(encoder); err != nil {
		return nil, err
	}

	raw := make([]byte, size)
	if err := c.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("native: readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := 0; row < int(h); row++ {
		copy(img.Pix[row*img.Stride:row*img.Stride+int(bytesPerRow)], raw[row*int(aligned):])
	}
	if c.target.format == gputypes.TextureFormatBGRA8Unorm {
		for i := 0; i+3 < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
		}
	}
	return img, nil
}

// texture is a live gpucore texture with its view and sampler.
type texture struct {
	desc    gpucore.TextureDesc
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

func newTexture(device hal.Device, desc *gpucore.TextureDesc) (*texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: texture %q %dx%d", ErrInvalidDimensions, desc.Label, desc.Width, desc.Height)
	}
	format := convertTextureFormat(desc.Format)
	t := &texture{desc: *desc}
	var err error
	t.tex, err = device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	t.view, err = device.CreateTextureView(t.tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("native: create texture view %q: %w", desc.Label, err)
	}
	t.sampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    convertFilter(desc.MagFilter),
		MinFilter:    convertFilter(desc.MinFilter),
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("native: create sampler %q: %w", desc.Label, err)
	}
	return t, nil
}

func (t *texture) write(queue hal.Queue, data []byte) error {
	want := int(t.desc.Width) * int(t.desc.Height) * t.desc.Format.BytesPerPixel()
	if len(data) != want {
		return fmt.Errorf("native: write %d bytes to %dx%d texture, want %d: %w",
			len(data), t.desc.Width, t.desc.Height, want, gpucore.ErrOutOfRange)
	}
	queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  t.desc.Width * uint32(t.desc.Format.BytesPerPixel()), //nolint:gosec // 4 bytes
			RowsPerImage: t.desc.Height,
		},
		&hal.Extent3D{Width: t.desc.Width, Height: t.desc.Height, DepthOrArrayLayers: 1},
	)
	return nil
}

func (t *texture) destroy(device hal.Device) {
	if t.sampler != nil {
		device.DestroySampler(t.sampler)
		t.sampler = nil
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
