// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package main

import (
	"image/png"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vis/backend/native"
)

// screenshot paints the scene on a Vulkan device and writes the render
// target to path.
func screenshot(s *scene, path string, width, height int) error {
	ctx, err := native.Open(gputypes.BackendVulkan,
		native.WithTargetSize(width, height),
		native.WithClearColor(0, 0, 0, 1))
	if err != nil {
		return err
	}
	defer ctx.Close()

	img, err := s.build(ctx)
	if err != nil {
		return err
	}
	defer img.Destroy()
	if err := img.Paint(); err != nil {
		return err
	}
	pixels, err := ctx.ReadPixels()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, pixels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
