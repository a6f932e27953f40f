// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import "github.com/gogpu/vis/shader"

const (
	stMapSource = `fn st_transform_map(pos: vec4<f32>) -> vec4<f32> {
    return vec4<f32>(pos.xyz * $scale + $offset * pos.w, pos.w);
}`
	stImapSource = `fn st_transform_imap(pos: vec4<f32>) -> vec4<f32> {
    return vec4<f32>((pos.xyz - $offset * pos.w) / $scale, pos.w);
}`
)

// STTransform scales and then translates x, y and z. W is left alone and
// the offset is applied in proportion to it, so points at infinity do not
// move.
//
// The shader functions read scale and offset from uniforms, so changing
// them never changes the linked program; it only bumps Version.
type STTransform struct {
	scale  [3]float32
	offset [3]float32

	uScale  *shader.Uniform
	uOffset *shader.Uniform
	fn      *shader.Function
	ifn     *shader.Function
	ver     uint64
}

// NewST returns a scale-translate transform.
func NewST(scale, offset [3]float32) *STTransform {
	t := &STTransform{
		scale:   scale,
		offset:  offset,
		uScale:  shader.MustUniform(shader.Vec3, scale[:]...),
		uOffset: shader.MustUniform(shader.Vec3, offset[:]...),
		fn:      shader.MustFunction(stMapSource),
		ifn:     shader.MustFunction(stImapSource),
		ver:     nextVersion(),
	}
	for _, f := range []*shader.Function{t.fn, t.ifn} {
		must(f.DeclareValue("scale", shader.Vec3))
		must(f.DeclareValue("offset", shader.Vec3))
		must(f.Bind("scale", t.uScale))
		must(f.Bind("offset", t.uOffset))
	}
	return t
}

// NewScale returns an STTransform with scale s and no offset.
func NewScale(s [3]float32) *STTransform { return NewST(s, [3]float32{}) }

// NewTranslate returns an STTransform with unit scale and offset o.
func NewTranslate(o [3]float32) *STTransform { return NewST([3]float32{1, 1, 1}, o) }

func must(err error) {
	if err != nil {
		panic("transform: " + err.Error())
	}
}

// Scale returns the current scale.
func (t *STTransform) Scale() [3]float32 { return t.scale }

// Offset returns the current offset.
func (t *STTransform) Offset() [3]float32 { return t.offset }

// SetScale replaces the scale.
func (t *STTransform) SetScale(s [3]float32) {
	t.scale = s
	must(t.uScale.Set(s[:]...))
	t.ver = nextVersion()
}

// SetOffset replaces the offset.
func (t *STTransform) SetOffset(o [3]float32) {
	t.offset = o
	must(t.uOffset.Set(o[:]...))
	t.ver = nextVersion()
}

// Map implements Transform.
func (t *STTransform) Map(p [4]float32) [4]float32 {
	return [4]float32{
		p[0]*t.scale[0] + t.offset[0]*p[3],
		p[1]*t.scale[1] + t.offset[1]*p[3],
		p[2]*t.scale[2] + t.offset[2]*p[3],
		p[3],
	}
}

// Imap implements Inverse. A zero scale component maps to ±Inf or NaN.
func (t *STTransform) Imap(p [4]float32) [4]float32 {
	return [4]float32{
		(p[0] - t.offset[0]*p[3]) / t.scale[0],
		(p[1] - t.offset[1]*p[3]) / t.scale[1],
		(p[2] - t.offset[2]*p[3]) / t.scale[2],
		p[3],
	}
}

// ShaderMap implements Transform.
func (t *STTransform) ShaderMap() *shader.Function { return t.fn }

// ShaderImap implements Inverse.
func (t *STTransform) ShaderImap() *shader.Function { return t.ifn }

// Version implements Transform.
func (t *STTransform) Version() uint64 { return t.ver }
