// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package transform provides coordinate transforms that work both on the
// CPU and as WGSL mapping functions.
//
// Every transform maps homogeneous vec4 positions. Map applies it to data;
// ShaderMap returns a shader.Function with signature
// fn(vec4<f32>) -> vec4<f32> that computes the same mapping on the GPU.
// Both always agree.
package transform

import (
	"sync/atomic"

	"github.com/gogpu/vis/shader"
)

// MapSignature is the signature of every ShaderMap function.
var MapSignature = shader.Sig(shader.Vec4, shader.Vec4)

// Transform maps positions between two coordinate systems.
type Transform interface {
	// Map applies the transform to one position.
	Map(p [4]float32) [4]float32

	// ShaderMap returns the WGSL form of Map. The same Function is returned
	// on every call, so it can be bound repeatedly without relinking.
	ShaderMap() *shader.Function

	// Version changes whenever a parameter of the transform changes.
	Version() uint64
}

// Inverse is implemented by transforms that can map back.
type Inverse interface {
	Imap(p [4]float32) [4]float32
	ShaderImap() *shader.Function
}

var versions atomic.Uint64

// nextVersion returns a version no transform has used yet.
func nextVersion() uint64 { return versions.Add(1) }

// NullTransform returns its input unchanged.
type NullTransform struct {
	fn  *shader.Function
	ver uint64
}

// NewNull returns an identity transform.
func NewNull() *NullTransform {
	return &NullTransform{
		fn:  shader.MustFunction(`fn null_transform_map(pos: vec4<f32>) -> vec4<f32> { return pos; }`),
		ver: nextVersion(),
	}
}

// Map implements Transform.
func (t *NullTransform) Map(p [4]float32) [4]float32 { return p }

// Imap implements Inverse.
func (t *NullTransform) Imap(p [4]float32) [4]float32 { return p }

// ShaderMap implements Transform.
func (t *NullTransform) ShaderMap() *shader.Function { return t.fn }

// ShaderImap implements Inverse. The identity is its own inverse.
func (t *NullTransform) ShaderImap() *shader.Function { return t.fn }

// Version implements Transform. A NullTransform never changes.
func (t *NullTransform) Version() uint64 { return t.ver }
