// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader builds GPU programs from independently authored WGSL
// functions.
//
// A [Function] is the WGSL source of one fn whose runtime inputs are
// written as $name placeholders. Each placeholder is declared with a kind
// and a type, then bound to a value:
//
//   - DeclareValue: a [Const], a [*Uniform] or a zero-argument [*Function]
//   - DeclareFunction: a [*Function] with the declared [Signature]
//   - DeclareTexture: a [*resource.Texture2D]
//   - DeclareHook: an ordered chain of functions filled with AddToChain
//
// A [Template] is the WGSL skeleton of one shader stage, with its entry
// point. Vertex templates may also declare attributes fed from a
// [*resource.VertexBuffer].
//
// [Link] resolves both templates depth-first and emits one WGSL unit per
// stage: every function once, in dependency order, with names made unique,
// then the template. Hook chains become generated functions that call
// their members in order.
//
//	fn := shader.MustFunction(`fn scale_pos(p: vec4<f32>) -> vec4<f32> { return p * $s; }`)
//	fn.DeclareValue("s", shader.Vec4)
//	fn.Bind("s", shader.NewConst(shader.Vec4, 2, 2, 1, 1))
//	vs.Bind("map_local_to_nd", fn)
//	linked, err := shader.Link(vs, fs)
//
// # Placeholder expansion
//
//   - uniform: uniforms.<member> with a swizzle for types narrower than vec4
//   - constant: a WGSL literal
//   - function: the emitted function name
//   - hook: the generated chain function name
//   - texture: "<name>_texture, <name>_sampler", for use in textureSample
//   - attribute: in.<name>, a member of the generated VertexInput struct
//
// # Bindings
//
// All resources live in group 0. Binding 0 holds the Uniforms block shared
// by both stages; texture k uses bindings 1+2k (texture) and 2+2k (sampler).
package shader
