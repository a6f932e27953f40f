// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors for the HAL context.
var (
	// ErrNoGPU is returned when no adapter of the requested backend exists.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrNoHAL is returned when a device provider does not expose HAL
	// device and queue handles.
	ErrNoHAL = errors.New("native: provider does not expose HAL types")

	// ErrInvalidDimensions is returned when the render target size is not
	// positive.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrIncompleteDraw is returned by Draw when a program input is unset.
	ErrIncompleteDraw = errors.New("native: draw with unset program input")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("native: context closed")
)
