// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import "fmt"

// DType is the element type of an Array.
type DType uint8

const (
	// Uint8 samples are 0..255 intensities.
	Uint8 DType = iota + 1
	// Float32 samples are positions or 0..1 intensities.
	Float32
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("DType(%d)", d)
	}
}

// Array is an n-dimensional, row-major block of samples.
// Arrays are treated as immutable once handed to a resource.
type Array struct {
	shape []int
	dtype DType
	u8    []uint8
	f32   []float32
}

// NewUint8Array wraps data with the given shape.
// It does not copy data.
func NewUint8Array(shape []int, data []uint8) (*Array, error) {
	if err := checkLen("NewUint8Array", shape, Uint8, len(data)); err != nil {
		return nil, err
	}
	return &Array{shape: append([]int(nil), shape...), dtype: Uint8, u8: data}, nil
}

// NewFloat32Array wraps data with the given shape.
// It does not copy data.
func NewFloat32Array(shape []int, data []float32) (*Array, error) {
	if err := checkLen("NewFloat32Array", shape, Float32, len(data)); err != nil {
		return nil, err
	}
	return &Array{shape: append([]int(nil), shape...), dtype: Float32, f32: data}, nil
}

func checkLen(op string, shape []int, dt DType, n int) error {
	if len(shape) == 0 {
		return &ShapeError{Op: op, Shape: shape, DType: dt, Reason: "rank 0"}
	}
	want := 1
	for _, d := range shape {
		if d <= 0 {
			return &ShapeError{Op: op, Shape: shape, DType: dt, Reason: "non-positive dimension"}
		}
		want *= d
	}
	if want != n {
		return &ShapeError{Op: op, Shape: shape, DType: dt,
			Reason: fmt.Sprintf("shape holds %d samples, data has %d", want, n)}
	}
	return nil
}

// Shape returns a copy of the array dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Dim returns dimension i, or 1 past the rank.
func (a *Array) Dim(i int) int {
	if i >= len(a.shape) {
		return 1
	}
	return a.shape[i]
}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Len returns the total number of samples.
func (a *Array) Len() int {
	if a.dtype == Uint8 {
		return len(a.u8)
	}
	return len(a.f32)
}

// Uint8 returns the samples of a Uint8 array, nil otherwise.
func (a *Array) Uint8() []uint8 { return a.u8 }

// Float32 returns the samples of a Float32 array, nil otherwise.
func (a *Array) Float32() []float32 { return a.f32 }

// At returns sample i normalised to 0..1 for Uint8 arrays and
// unchanged for Float32 arrays.
func (a *Array) At(i int) float32 {
	if a.dtype == Uint8 {
		return float32(a.u8[i]) / 255
	}
	return a.f32[i]
}
