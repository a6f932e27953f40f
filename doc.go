// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vis renders visual primitives onto a GPU canvas through a
// composable shader-function pipeline.
//
// # Overview
//
// A visual (see package visual) owns raw data, coordinate transforms and an
// ordered list of shader callbacks. At draw time it binds those pieces into
// the hooks of its WGSL templates and asks a program.Builder to link them
// into one executable program. Linking happens only when the composition
// changes; uniform updates re-upload without relinking.
//
// # Packages
//
//   - shader: typed WGSL functions, templates, hooks, bindings and the linker
//   - program: linked program cache and Program.Draw
//   - resource: data arrays, vertex buffers and 2D textures
//   - transform: NullTransform and STTransform
//   - visual: the Image visual and its state machine
//   - gpucore: the GPU context boundary
//   - backend/native: gpucore.Context over gogpu/wgpu HAL
//   - recording: gpucore.Context that records every call
//
// # Quick Start
//
//	ctx := recording.NewContext()
//	img, _ := resource.NewUint8Array([]int{16, 16}, pixels)
//	v, err := visual.NewImage(ctx, img)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Destroy()
//	v.SetTransform(transform.NewST([3]float32{2, 2, 1}, [3]float32{-1, -1, 0}))
//	if err := v.Paint(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Logging
//
// The module is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] logger.
package vis

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
