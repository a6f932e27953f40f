// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource holds the data arrays a visual owns and the GPU
// resource handles built from them.
//
// A handle owns GPU storage for one [Array]. It is mutated only by
// replacing the whole array; replacement marks the handle dirty and the
// next Upload re-creates or re-writes the GPU copy.
//
//	a, _ := resource.NewFloat32Array([]int{6, 2}, positions)
//	vb, _ := resource.NewVertexBuffer(a)
//	if err := vb.Upload(ctx); err != nil { ... }
package resource
