// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"image"

	"golang.org/x/image/draw"
)

// ArrayFromImage converts img into an H×W×4 Uint8 array of
// non-premultiplied RGBA samples.
func ArrayFromImage(img image.Image) *Array {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return nrgbaArray(dst)
}

// ArrayFromImageScaled resamples img to width×height with bilinear
// filtering and returns it as an H×W×4 Uint8 array.
func ArrayFromImageScaled(img image.Image, width, height int) (*Array, error) {
	if width <= 0 || height <= 0 {
		return nil, &ShapeError{Op: "ArrayFromImageScaled", Shape: []int{height, width, 4}, DType: Uint8,
			Reason: "non-positive dimension"}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return nrgbaArray(dst), nil
}

// nrgbaArray wraps the pixels of an image created by image.NewNRGBA,
// whose stride is always 4*width.
func nrgbaArray(img *image.NRGBA) *Array {
	return &Array{shape: []int{img.Rect.Dy(), img.Rect.Dx(), 4}, dtype: Uint8, u8: img.Pix}
}
