// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgsleval evaluates a subset of WGSL on the CPU.
//
// It walks the AST produced by naga's WGSL parser and supports the f32
// scalar, vector and mat4x4 arithmetic that mapping functions use:
// constructors, swizzles, the usual operators, local let/var, if, for,
// while and loop, calls between the module's functions, a handful of
// builtins, and members of uniform blocks. Texture sampling is not
// supported.
//
// It exists so that generated mapping code can be checked against the
// CPU side of the same mapping without a GPU.
package wgsleval
