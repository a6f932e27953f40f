// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"fmt"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
)

// Texture2D owns a sampled RGBA8 texture built from an H×W or H×W×C
// array (C is 1, 3 or 4). Samples are converted to RGBA8 on upload:
// one channel becomes grey, three channels get an opaque alpha.
type Texture2D struct {
	id        uint64
	data      *Array
	minFilter gpucore.FilterMode
	magFilter gpucore.FilterMode

	ctx       gpucore.Context
	tex       gpucore.TextureID
	w, h      int
	dirty     bool
	recreate  bool
	destroyed bool
}

// NewTexture2D creates a texture handle with linear filtering.
// No GPU storage exists until the first Upload.
func NewTexture2D(a *Array) (*Texture2D, error) {
	if err := checkTexture("NewTexture2D", a); err != nil {
		return nil, err
	}
	return &Texture2D{
		id:        newID(),
		data:      a,
		minFilter: gpucore.FilterLinear,
		magFilter: gpucore.FilterLinear,
		dirty:     true,
	}, nil
}

func checkTexture(op string, a *Array) error {
	if a == nil {
		return &ShapeError{Op: op, Reason: "nil array"}
	}
	switch a.Rank() {
	case 2:
		return nil
	case 3:
		switch a.Dim(2) {
		case 1, 3, 4:
			return nil
		}
		return &ShapeError{Op: op, Shape: a.Shape(), DType: a.DType(), Reason: "channels must be 1, 3 or 4"}
	default:
		return &ShapeError{Op: op, Shape: a.Shape(), DType: a.DType(), Reason: "texture data must be rank 2 or 3"}
	}
}

// ValueID returns the handle identity. Replacing data keeps it.
func (t *Texture2D) ValueID() uint64 { return t.id }

// Width returns the texture width in texels (the array's second dimension).
func (t *Texture2D) Width() int { return t.data.Dim(1) }

// Height returns the texture height in texels (the array's first dimension).
func (t *Texture2D) Height() int { return t.data.Dim(0) }

// Filter returns the minification and magnification filters.
func (t *Texture2D) Filter() (minFilter, magFilter gpucore.FilterMode) {
	return t.minFilter, t.magFilter
}

// Dirty reports whether the GPU copy is missing or stale.
func (t *Texture2D) Dirty() bool { return t.dirty }

// TextureID returns the GPU texture, or gpucore.InvalidID before Upload.
func (t *Texture2D) TextureID() gpucore.TextureID { return t.tex }

// SetFilter changes sampling interpolation. The GPU texture is
// re-created on the next Upload.
func (t *Texture2D) SetFilter(minFilter, magFilter gpucore.FilterMode) {
	if minFilter == t.minFilter && magFilter == t.magFilter {
		return
	}
	t.minFilter, t.magFilter = minFilter, magFilter
	t.dirty, t.recreate = true, true
}

// Replace swaps the backing array and marks the handle dirty.
func (t *Texture2D) Replace(a *Array) error {
	if err := checkTexture("Texture2D.Replace", a); err != nil {
		return err
	}
	t.data = a
	t.dirty = true
	return nil
}

// Upload creates the GPU texture on first use and writes the texels when
// dirty. A size or filter change re-creates the texture.
func (t *Texture2D) Upload(ctx gpucore.Context) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if !t.dirty && t.ctx == ctx {
		return nil
	}
	w, h := t.Width(), t.Height()
	if t.tex != gpucore.InvalidID && (t.recreate || t.ctx != ctx || w != t.w || h != t.h) {
		t.release()
	}
	if t.tex == gpucore.InvalidID {
		id, err := ctx.CreateTexture(&gpucore.TextureDesc{
			Label:     "texture2d",
			Width:     uint32(w),
			Height:    uint32(h),
			Format:    gpucore.TextureFormatRGBA8Unorm,
			MinFilter: t.minFilter,
			MagFilter: t.magFilter,
		})
		if err != nil {
			return fmt.Errorf("%w: create texture: %w", ErrResourceUpload, err)
		}
		t.ctx, t.tex, t.w, t.h = ctx, id, w, h
		t.recreate = false
	}
	if err := ctx.WriteTexture(t.tex, RGBA8(t.data)); err != nil {
		return fmt.Errorf("%w: write texture: %w", ErrResourceUpload, err)
	}
	t.dirty = false
	vis.Logger().Debug("resource: texture uploaded", "width", w, "height", h, "filter", t.magFilter)
	return nil
}

// Destroy releases the GPU texture. The handle cannot be uploaded again.
func (t *Texture2D) Destroy() {
	t.release()
	t.destroyed = true
}

func (t *Texture2D) release() {
	if t.tex != gpucore.InvalidID && t.ctx != nil {
		t.ctx.DestroyTexture(t.tex)
	}
	t.tex, t.ctx = gpucore.InvalidID, nil
	t.dirty = true
}

// RGBA8 converts a rank-2 or rank-3 texture array to tightly packed
// RGBA8 texels. Float32 samples are clamped to 0..1.
func RGBA8(a *Array) []byte {
	h, w := a.Dim(0), a.Dim(1)
	c := a.Dim(2)
	out := make([]byte, w*h*4)
	for p := 0; p < w*h; p++ {
		o := out[p*4 : p*4+4]
		switch c {
		case 1:
			v := toByte(a, p)
			o[0], o[1], o[2], o[3] = v, v, v, 255
		case 3:
			o[0], o[1], o[2], o[3] = toByte(a, p*3), toByte(a, p*3+1), toByte(a, p*3+2), 255
		default:
			o[0], o[1], o[2], o[3] = toByte(a, p*4), toByte(a, p*4+1), toByte(a, p*4+2), toByte(a, p*4+3)
		}
	}
	return out
}

func toByte(a *Array, i int) byte {
	if a.DType() == Uint8 {
		return a.u8[i]
	}
	v := a.f32[i]
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return byte(v*255 + 0.5)
	}
}
