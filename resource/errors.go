// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is returned when an array's rank, dimensions or dtype are
	// not supported by the requested resource.
	ErrShape = errors.New("resource: unsupported shape")

	// ErrResourceUpload is returned when the GPU refuses a create or write.
	ErrResourceUpload = errors.New("resource: upload failed")

	// ErrDestroyed is returned when a destroyed handle is used.
	ErrDestroyed = errors.New("resource: handle destroyed")
)

// ShapeError describes an array that a resource cannot hold.
type ShapeError struct {
	Op     string
	Shape  []int
	DType  DType
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("resource: %s: unsupported shape %v (%s): %s", e.Op, e.Shape, e.DType, e.Reason)
}

// Unwrap lets errors.Is match ErrShape.
func (e *ShapeError) Unwrap() error { return ErrShape }
