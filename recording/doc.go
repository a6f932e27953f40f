// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recording provides a gpucore.Context that records GPU calls.
//
// Every call made through a [Context] is validated against the resources
// it has created and appended as a typed [Command]. Buffer and texture
// contents are kept in memory so callers can inspect what a draw would
// have consumed. Nothing is rendered.
//
// Design follows the typed command struct approach: commands are plain
// values that are easy to inspect, compare and print.
//
// # Example
//
//	ctx := recording.NewContext()
//	v, _ := visual.NewImage(ctx, img)
//	_ = v.Paint()
//	for _, d := range ctx.Draws() {
//	    fmt.Println(d.Kind, d.VertexCount)
//	}
package recording
