// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vis/gpucore"
)

func convertBufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u&gpucore.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	if u&gpucore.BufferUsageVertex != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if u&gpucore.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	return out
}

func convertTextureFormat(f gpucore.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

func convertFilter(f gpucore.FilterMode) gputypes.FilterMode {
	if f == gpucore.FilterNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

func convertVertexFormat(f gpucore.VertexFormat) gputypes.VertexFormat {
	switch f {
	case gpucore.VertexFormatFloat32:
		return gputypes.VertexFormatFloat32
	case gpucore.VertexFormatFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case gpucore.VertexFormatFloat32x3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

// convertTopology maps a primitive kind. Strip kinds need no index format
// since programs draw non-indexed.
func convertTopology(k gpucore.PrimitiveKind) gputypes.PrimitiveTopology {
	switch k {
	case gpucore.PrimitiveTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case gpucore.PrimitiveLines:
		return gputypes.PrimitiveTopologyLineList
	case gpucore.PrimitiveLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case gpucore.PrimitivePoints:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}
