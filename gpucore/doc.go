// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore defines the GPU context boundary used by vis.
//
// The [Context] interface is the only way the program and resource packages
// touch a GPU. It is deliberately small: programs, buffers and textures are
// created and destroyed through opaque IDs, and a draw is issued by setting
// a program's inputs and calling [Context.Draw].
//
//	          +------------------+
//	          |  program, resource |
//	          +---------+--------+
//	                    |
//	              gpucore.Context
//	                    |
//	      +-------------+-------------+
//	      |                           |
//	+-----v------+            +-------v------+
//	| native     |            | recording    |
//	| (wgpu HAL) |            | (in memory)  |
//	+------------+            +--------------+
//
// Implementations:
//   - backend/native: renders with gogpu/wgpu through the HAL layer
//   - recording: stores every call as a typed command, used by tests and tools
package gpucore
