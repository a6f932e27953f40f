// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// Value is anything that can be bound to a placeholder: [Const],
// [*Uniform], [*Function], *resource.VertexBuffer or *resource.Texture2D.
// ValueID is the value's identity; it is 0 for constants, which are
// compared by content.
type Value interface {
	ValueID() uint64
}

var nextID atomic.Uint64

func newID() uint64 { return nextID.Add(1) }

// Const is a value inlined into the generated source as a literal.
// Changing a constant means binding a new one, which re-links.
type Const struct {
	Type   Type
	Values []float32
}

// NewConst returns a constant of type t. Missing components are zero.
func NewConst(t Type, v ...float32) Const {
	vals := make([]float32, t.Components())
	copy(vals, v)
	return Const{Type: t, Values: vals}
}

// ValueID implements Value.
func (Const) ValueID() uint64 { return 0 }

// Literal returns the WGSL spelling of the constant.
func (c Const) Literal() string {
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = floatLiteral(v)
	}
	if c.Type == F32 && len(parts) == 1 {
		return parts[0]
	}
	return string(c.Type) + "(" + strings.Join(parts, ", ") + ")"
}

// floatLiteral formats v so WGSL reads it as an abstract float.
func floatLiteral(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Uniform is a value stored in the program's uniform block. Setting new
// data re-uploads on the next draw without re-linking.
type Uniform struct {
	id   uint64
	typ  Type
	data []float32
}

// NewUniform returns a uniform of type t holding v.
// t must be F32, Vec2, Vec3, Vec4 or Mat4.
func NewUniform(t Type, v ...float32) (*Uniform, error) {
	n := t.Components()
	if n == 0 {
		return nil, fmt.Errorf("shader: uniform of type %s: %w", t, ErrTypeMismatch)
	}
	u := &Uniform{id: newID(), typ: t, data: make([]float32, n)}
	if len(v) > 0 {
		if err := u.Set(v...); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// MustUniform is like NewUniform but panics on error.
func MustUniform(t Type, v ...float32) *Uniform {
	u, err := NewUniform(t, v...)
	if err != nil {
		panic(err)
	}
	return u
}

// ValueID implements Value.
func (u *Uniform) ValueID() uint64 { return u.id }

// Type returns the uniform's WGSL type.
func (u *Uniform) Type() Type { return u.typ }

// Set replaces the uniform data. len(v) must equal the type's components.
func (u *Uniform) Set(v ...float32) error {
	if len(v) != len(u.data) {
		return fmt.Errorf("shader: set %s uniform with %d values: %w", u.typ, len(v), ErrTypeMismatch)
	}
	copy(u.data, v)
	return nil
}

// Data returns a copy of the uniform data.
func (u *Uniform) Data() []float32 { return append([]float32(nil), u.data...) }

// slotSize returns the bytes the uniform occupies in the block.
// Every member is padded to a 16-byte vec4 slot; mat4 takes four.
func (u *Uniform) slotSize() uint64 {
	if u.typ == Mat4 {
		return 64
	}
	return 16
}

// memberType is the WGSL type of the uniform's member in the block.
func (u *Uniform) memberType() Type {
	if u.typ == Mat4 {
		return Mat4
	}
	return Vec4
}

// swizzle selects the uniform's components from its vec4 slot.
func (u *Uniform) swizzle() string {
	switch u.typ {
	case F32:
		return ".x"
	case Vec2:
		return ".xy"
	case Vec3:
		return ".xyz"
	default:
		return ""
	}
}

// UniformSlot is one member of a linked program's uniform block.
type UniformSlot struct {
	// Name is the member name in the Uniforms struct.
	Name string

	// Uniform supplies the data.
	Uniform *Uniform

	// Offset is the byte offset within the block.
	Offset uint64
}

// PackUniforms lays out the current data of every slot into a block of
// size bytes, little endian.
func PackUniforms(slots []UniformSlot, size uint64) []byte {
	out := make([]byte, size)
	for _, s := range slots {
		for i, v := range s.Uniform.data {
			binary.LittleEndian.PutUint32(out[s.Offset+uint64(i)*4:], math.Float32bits(v))
		}
	}
	return out
}
