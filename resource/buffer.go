// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
)

// VertexBuffer owns a GPU vertex buffer holding an N×C Float32 array,
// one vertex per row and C (1..4) components per vertex.
type VertexBuffer struct {
	id     uint64
	data   *Array
	format gpucore.VertexFormat

	ctx       gpucore.Context
	buf       gpucore.BufferID
	size      uint64
	dirty     bool
	destroyed bool
}

// NewVertexBuffer creates a handle for a rank-2 Float32 array.
// No GPU storage exists until the first Upload.
func NewVertexBuffer(a *Array) (*VertexBuffer, error) {
	f, err := vertexFormat("NewVertexBuffer", a)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{id: newID(), data: a, format: f, dirty: true}, nil
}

func vertexFormat(op string, a *Array) (gpucore.VertexFormat, error) {
	if a == nil {
		return 0, &ShapeError{Op: op, Reason: "nil array"}
	}
	if a.DType() != Float32 {
		return 0, &ShapeError{Op: op, Shape: a.Shape(), DType: a.DType(), Reason: "vertex data must be float32"}
	}
	if a.Rank() != 2 {
		return 0, &ShapeError{Op: op, Shape: a.Shape(), DType: a.DType(), Reason: "vertex data must be rank 2"}
	}
	f := gpucore.VertexFormatForComponents(a.Dim(1))
	if f == 0 {
		return 0, &ShapeError{Op: op, Shape: a.Shape(), DType: a.DType(), Reason: "vertices need 1 to 4 components"}
	}
	return f, nil
}

// ValueID returns the handle identity. Replacing data keeps it.
func (b *VertexBuffer) ValueID() uint64 { return b.id }

// Format returns the per-vertex element format.
func (b *VertexBuffer) Format() gpucore.VertexFormat { return b.format }

// Count returns the number of vertices.
func (b *VertexBuffer) Count() int { return b.data.Dim(0) }

// Data returns the current backing array.
func (b *VertexBuffer) Data() *Array { return b.data }

// Dirty reports whether the GPU copy is missing or stale.
func (b *VertexBuffer) Dirty() bool { return b.dirty }

// BufferID returns the GPU buffer, or gpucore.InvalidID before Upload.
func (b *VertexBuffer) BufferID() gpucore.BufferID { return b.buf }

// Replace swaps the backing array. The component count must not change,
// since it is part of the attribute type a program was linked with.
func (b *VertexBuffer) Replace(a *Array) error {
	f, err := vertexFormat("VertexBuffer.Replace", a)
	if err != nil {
		return err
	}
	if f != b.format {
		return &ShapeError{Op: "VertexBuffer.Replace", Shape: a.Shape(), DType: a.DType(),
			Reason: fmt.Sprintf("format %s differs from %s", f, b.format)}
	}
	b.data = a
	b.dirty = true
	return nil
}

// Upload creates the GPU buffer on first use and writes the data when
// dirty. A larger array re-creates the buffer.
func (b *VertexBuffer) Upload(ctx gpucore.Context) error {
	if b.destroyed {
		return ErrDestroyed
	}
	if !b.dirty && b.ctx == ctx {
		return nil
	}
	bytes := float32Bytes(b.data.Float32())
	size := uint64(len(bytes))
	if b.buf != gpucore.InvalidID && (b.ctx != ctx || size > b.size) {
		b.release()
	}
	if b.buf == gpucore.InvalidID {
		id, err := ctx.CreateBuffer(&gpucore.BufferDesc{
			Label: "vertex buffer",
			Size:  size,
			Usage: gpucore.BufferUsageVertex | gpucore.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%w: create vertex buffer: %w", ErrResourceUpload, err)
		}
		b.ctx, b.buf, b.size = ctx, id, size
	}
	if err := ctx.WriteBuffer(b.buf, 0, bytes); err != nil {
		return fmt.Errorf("%w: write vertex buffer: %w", ErrResourceUpload, err)
	}
	b.dirty = false
	vis.Logger().Debug("resource: vertex buffer uploaded", "vertices", b.Count(), "bytes", size)
	return nil
}

// Destroy releases the GPU buffer. The handle cannot be uploaded again.
func (b *VertexBuffer) Destroy() {
	b.release()
	b.destroyed = true
}

func (b *VertexBuffer) release() {
	if b.buf != gpucore.InvalidID && b.ctx != nil {
		b.ctx.DestroyBuffer(b.buf)
	}
	b.buf, b.size, b.ctx = gpucore.InvalidID, 0, nil
	b.dirty = true
}

func float32Bytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}
