// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package visual

import (
	"github.com/gogpu/vis/program"
	"github.com/gogpu/vis/transform"
)

// DefaultSubdivision is the number of quads along each image axis.
const DefaultSubdivision = 4

type options struct {
	subdiv    int
	transform transform.Transform
	builder   *program.Builder
}

// Option configures an Image.
type Option func(*options)

// WithSubdivision splits the image into an n×n grid of quads.
// Values below 1 fall back to DefaultSubdivision.
func WithSubdivision(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultSubdivision
		}
		o.subdiv = n
	}
}

// WithTransform sets the initial local-to-device transform.
// The default is a NullTransform.
func WithTransform(t transform.Transform) Option {
	return func(o *options) {
		o.transform = t
	}
}

// WithBuilder shares a program builder, and so its cache, between visuals.
// The builder must create programs on the image's context. Without it the
// image owns a private builder that Destroy closes.
func WithBuilder(b *program.Builder) Option {
	return func(o *options) {
		o.builder = b
	}
}
