// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"strings"
)

// Type is a WGSL type name in canonical form, e.g. "vec4<f32>".
type Type string

// Types understood by the linker.
const (
	Void    Type = ""
	F32     Type = "f32"
	Vec2    Type = "vec2<f32>"
	Vec3    Type = "vec3<f32>"
	Vec4    Type = "vec4<f32>"
	Mat4    Type = "mat4x4<f32>"
	Texture Type = "texture_2d<f32>"
	Sampler Type = "sampler"
)

// shorthands maps WGSL predeclared aliases to canonical names.
var shorthands = map[string]Type{
	"vec2f":   Vec2,
	"vec3f":   Vec3,
	"vec4f":   Vec4,
	"mat4x4f": Mat4,
}

// Components returns the number of float components of a value type,
// or 0 for types that cannot hold values.
func (t Type) Components() int {
	switch t {
	case F32:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4:
		return 4
	case Mat4:
		return 16
	default:
		return 0
	}
}

// String returns the WGSL spelling, "void" for Void.
func (t Type) String() string {
	if t == Void {
		return "void"
	}
	return string(t)
}

// Signature is a function's parameter types and return type.
type Signature struct {
	Params []Type
	Return Type
}

// Sig is shorthand for Signature{Params: params, Return: ret}.
func Sig(ret Type, params ...Type) Signature {
	return Signature{Params: params, Return: ret}
}

// Equal reports whether s and o have identical types.
func (s Signature) Equal(o Signature) bool {
	if s.Return != o.Return || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}

// IsValueHook reports whether s returns a value of its first parameter's
// type, which lets functions with s be chained output to input.
func (s Signature) IsValueHook() bool {
	return s.Return != Void && len(s.Params) > 0 && s.Params[0] == s.Return
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(p))
	}
	b.WriteString(")")
	if s.Return != Void {
		b.WriteString(" -> ")
		b.WriteString(string(s.Return))
	}
	return b.String()
}

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}
