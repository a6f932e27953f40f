// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/msl"
)

// Output languages for -target.
const (
	targetWGSL  = "wgsl"
	targetSPIRV = "spirv"
	targetGLSL  = "glsl"
	targetMSL   = "msl"
	targetHLSL  = "hlsl"
)

var targets = []string{targetWGSL, targetSPIRV, targetGLSL, targetMSL, targetHLSL}

// translate converts one linked WGSL unit to the target language.
// SPIR-V is returned as a hex dump.
func translate(src, target string) (string, error) {
	switch target {
	case targetWGSL:
		return src, nil
	case targetSPIRV:
		code, err := naga.Compile(src)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("; SPIR-V %d words\n%s", len(code)/4, hex.Dump(code)), nil
	}

	ast, err := naga.Parse(src)
	if err != nil {
		return "", err
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return "", err
	}
	var out string
	switch target {
	case targetGLSL:
		out, _, err = glsl.Compile(module, glsl.DefaultOptions())
	case targetMSL:
		out, _, err = msl.Compile(module, msl.DefaultOptions())
	case targetHLSL:
		out, _, err = hlsl.Compile(module, hlsl.DefaultOptions())
	default:
		return "", fmt.Errorf("unknown target %q", target)
	}
	return out, err
}
