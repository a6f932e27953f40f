// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import "github.com/gogpu/vis/shader"

const chainSource = `fn chain_transform_map(pos: vec4<f32>) -> vec4<f32> {
    return $second($first(pos));
}`

// ChainTransform applies a fixed sequence of transforms, first to last.
type ChainTransform struct {
	ts []Transform
	fn *shader.Function
}

// NewChain returns the composition of ts. ts[0] is applied first.
// An empty chain is the identity.
func NewChain(ts ...Transform) *ChainTransform {
	c := &ChainTransform{ts: append([]Transform(nil), ts...)}
	switch len(ts) {
	case 0:
		c.fn = NewNull().ShaderMap()
	case 1:
		c.fn = ts[0].ShaderMap()
	default:
		// Fold left: compose(compose(t0, t1), t2)...
		fn := ts[0].ShaderMap()
		for _, t := range ts[1:] {
			fn = compose(fn, t.ShaderMap())
		}
		c.fn = fn
	}
	return c
}

func compose(first, second *shader.Function) *shader.Function {
	fn := shader.MustFunction(chainSource)
	must(fn.DeclareFunction("first", MapSignature))
	must(fn.DeclareFunction("second", MapSignature))
	must(fn.Bind("first", first))
	must(fn.Bind("second", second))
	return fn
}

// Transforms returns the members of the chain.
func (c *ChainTransform) Transforms() []Transform { return append([]Transform(nil), c.ts...) }

// Map implements Transform.
func (c *ChainTransform) Map(p [4]float32) [4]float32 {
	for _, t := range c.ts {
		p = t.Map(p)
	}
	return p
}

// ShaderMap implements Transform.
func (c *ChainTransform) ShaderMap() *shader.Function { return c.fn }

// Version implements Transform. Versions are drawn from one increasing
// counter, so the largest member version changes whenever any member does.
func (c *ChainTransform) Version() uint64 {
	var v uint64
	for _, t := range c.ts {
		v = max(v, t.Version())
	}
	return v
}
