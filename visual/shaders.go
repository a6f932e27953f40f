// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package visual

// Placeholders of the image templates.
const (
	hookVertPost = "vert_post_hook"
	hookFragPost = "frag_post_hook"
	mapLocalToND = "map_local_to_nd"
	mapLocalToTx = "map_local_to_tex"
	inLocalPos   = "local_pos"
	inTexture    = "tex"
)

// imageVertex places the quad grid. local_pos is in image pixels. Vertex
// callbacks receive and return the clip position in chain order.
const imageVertex = `struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) image_pos: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = $map_local_to_nd(vec4<f32>($local_pos, 0.0, 1.0));
    out.image_pos = $local_pos;
    out.position = $vert_post_hook(out.position);
    return out;
}`

// imageFragment samples the image. Fragment callbacks receive and return
// the sampled color in chain order.
const imageFragment = `struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) image_pos: vec2<f32>,
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let tex_coord = $map_local_to_tex(vec4<f32>(in.image_pos, 0.0, 1.0));
    var color = textureSample($tex, tex_coord.xy);
    color = $frag_post_hook(color);
    return color;
}`
