// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgsleval

import (
	"strconv"
	"strings"
)

// Value is an f32 scalar, an f32 vector or a 4x4 column-major matrix.
// Booleans are scalars holding 0 or 1.
type Value struct {
	c   []float32
	mat bool
}

// Scalar returns an f32 value.
func Scalar(v float32) Value { return Value{c: []float32{v}} }

// Vec returns a vector with the given components.
func Vec(v ...float32) Value { return Value{c: append([]float32(nil), v...)} }

// Mat4 returns a 4x4 matrix from 16 column-major components.
func Mat4(m [16]float32) Value { return Value{c: append([]float32(nil), m[:]...), mat: true} }

// Len is the number of components; zero for the result of a void call.
func (v Value) Len() int { return len(v.c) }

// IsMatrix reports whether v is a 4x4 matrix.
func (v Value) IsMatrix() bool { return v.mat }

// Components returns a copy of the components.
func (v Value) Components() []float32 { return append([]float32(nil), v.c...) }

// At returns component i.
func (v Value) At(i int) float32 { return v.c[i] }

func (v Value) String() string {
	switch {
	case len(v.c) == 0:
		return "void"
	case len(v.c) == 1:
		return strconv.FormatFloat(float64(v.c[0]), 'g', -1, 32)
	}
	parts := make([]string, len(v.c))
	for i, c := range v.c {
		parts[i] = strconv.FormatFloat(float64(c), 'g', -1, 32)
	}
	name := "vec" + strconv.Itoa(len(v.c))
	if v.mat {
		name = "mat4x4"
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func (v Value) truthy() bool { return len(v.c) > 0 && v.c[0] != 0 }

func (v Value) clone() Value { return Value{c: append([]float32(nil), v.c...), mat: v.mat} }

func boolValue(b bool) Value {
	if b {
		return Scalar(1)
	}
	return Scalar(0)
}

func zero(n int, mat bool) Value { return Value{c: make([]float32, n), mat: mat} }
