// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgsleval

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/naga/wgsl"
)

type builtin func(args []Value) (Value, error)

var builtins = map[string]builtin{
	"abs":   unary(math32.Abs),
	"floor": unary(math32.Floor),
	"ceil":  unary(math32.Ceil),
	"round": unary(roundEven),
	"fract": unary(func(x float32) float32 { return x - math32.Floor(x) }),
	"sqrt":  unary(math32.Sqrt),
	"sin":   unary(math32.Sin),
	"cos":   unary(math32.Cos),
	"exp":   unary(math32.Exp),
	"log":   unary(math32.Log),
	"sign": unary(func(x float32) float32 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	}),
	"min": nary(2, func(a []float32) float32 { return math32.Min(a[0], a[1]) }),
	"max": nary(2, func(a []float32) float32 { return math32.Max(a[0], a[1]) }),
	"pow": nary(2, func(a []float32) float32 { return math32.Pow(a[0], a[1]) }),
	"step": nary(2, func(a []float32) float32 {
		if a[1] < a[0] {
			return 0
		}
		return 1
	}),
	"clamp": nary(3, func(a []float32) float32 { return math32.Min(math32.Max(a[0], a[1]), a[2]) }),
	"mix":   nary(3, func(a []float32) float32 { return a[0]*(1-a[2]) + a[1]*a[2] }),
	"select": nary(3, func(a []float32) float32 {
		if a[2] != 0 {
			return a[1]
		}
		return a[0]
	}),
	"dot":       dot,
	"length":    length,
	"normalize": normalize,
}

// roundEven rounds half-way cases to the nearest even integer, as WGSL
// round does.
func roundEven(x float32) float32 {
	t := math32.Floor(x)
	switch d := x - t; {
	case d > 0.5:
		return t + 1
	case d == 0.5 && math32.Mod(t, 2) != 0:
		return t + 1
	}
	return t
}

func unary(f func(float32) float32) builtin {
	return nary(1, func(a []float32) float32 { return f(a[0]) })
}

// nary applies f component-wise, broadcasting scalar arguments.
func nary(arity int, f func([]float32) float32) builtin {
	return func(args []Value) (Value, error) {
		if len(args) != arity {
			return Value{}, fmt.Errorf("%w: builtin takes %d arguments, got %d", ErrType, arity, len(args))
		}
		n := 1
		for _, a := range args {
			if a.mat {
				return Value{}, fmt.Errorf("%w: matrix argument", ErrType)
			}
			if a.Len() != 1 {
				if n != 1 && a.Len() != n {
					return Value{}, fmt.Errorf("%w: arguments of %d and %d components", ErrType, n, a.Len())
				}
				n = a.Len()
			}
		}
		out := zero(n, false)
		in := make([]float32, arity)
		for i := range out.c {
			for k, a := range args {
				if a.Len() == 1 {
					in[k] = a.c[0]
				} else {
					in[k] = a.c[i]
				}
			}
			out.c[i] = f(in)
		}
		return out, nil
	}
}

func dot(args []Value) (Value, error) {
	if len(args) != 2 || args[0].Len() != args[1].Len() || args[0].mat || args[1].mat {
		return Value{}, fmt.Errorf("%w: dot needs two vectors of equal size", ErrType)
	}
	var s float32
	for i := range args[0].c {
		s += args[0].c[i] * args[1].c[i]
	}
	return Scalar(s), nil
}

func length(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("%w: length takes one argument", ErrType)
	}
	d, err := dot([]Value{args[0], args[0]})
	if err != nil {
		return Value{}, err
	}
	return Scalar(math32.Sqrt(d.c[0])), nil
}

func normalize(args []Value) (Value, error) {
	l, err := length(args)
	if err != nil {
		return Value{}, err
	}
	out := args[0].clone()
	for i := range out.c {
		out.c[i] /= l.c[0]
	}
	return out, nil
}

// binary applies an arithmetic or comparison operator.
func binary(op wgsl.TokenKind, l, r Value) (Value, error) {
	if op == wgsl.TokenStar && (l.mat || r.mat) {
		return matMul(l, r)
	}
	if l.mat || r.mat {
		if l.mat && r.mat && l.Len() == r.Len() && (op == wgsl.TokenPlus || op == wgsl.TokenMinus) {
			return componentwise(op, l, r)
		}
		return Value{}, fmt.Errorf("%w: operator %s on a matrix", ErrType, op)
	}
	return componentwise(op, l, r)
}

func componentwise(op wgsl.TokenKind, l, r Value) (Value, error) {
	if l.Len() == 0 || r.Len() == 0 {
		return Value{}, fmt.Errorf("%w: %s on a void value", ErrType, op)
	}
	n := l.Len()
	switch {
	case l.Len() == r.Len():
	case l.Len() == 1:
		n = r.Len()
	case r.Len() == 1:
	default:
		return Value{}, fmt.Errorf("%w: %s on %d and %d components", ErrType, op, l.Len(), r.Len())
	}
	out := zero(n, l.mat || r.mat)
	for i := range out.c {
		a, b := l.c[0], r.c[0]
		if l.Len() > 1 {
			a = l.c[i]
		}
		if r.Len() > 1 {
			b = r.c[i]
		}
		var v float32
		switch op {
		case wgsl.TokenPlus:
			v = a + b
		case wgsl.TokenMinus:
			v = a - b
		case wgsl.TokenStar:
			v = a * b
		case wgsl.TokenSlash:
			v = a / b
		case wgsl.TokenPercent:
			v = math32.Mod(a, b)
		case wgsl.TokenLess:
			v = flag(a < b)
		case wgsl.TokenLessEqual:
			v = flag(a <= b)
		case wgsl.TokenGreater:
			v = flag(a > b)
		case wgsl.TokenGreaterEqual:
			v = flag(a >= b)
		case wgsl.TokenEqualEqual:
			v = flag(a == b)
		case wgsl.TokenBangEqual:
			v = flag(a != b)
		default:
			return Value{}, fmt.Errorf("%w: operator %s", ErrUnsupported, op)
		}
		out.c[i] = v
	}
	return out, nil
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// matMul multiplies column-major 4x4 matrices, vectors and scalars.
func matMul(l, r Value) (Value, error) {
	switch {
	case l.mat && r.mat:
		out := zero(16, true)
		for c := 0; c < 4; c++ {
			for row := 0; row < 4; row++ {
				var s float32
				for k := 0; k < 4; k++ {
					s += l.c[k*4+row] * r.c[c*4+k]
				}
				out.c[c*4+row] = s
			}
		}
		return out, nil
	case l.mat && r.Len() == 4:
		out := zero(4, false)
		for row := 0; row < 4; row++ {
			var s float32
			for c := 0; c < 4; c++ {
				s += l.c[c*4+row] * r.c[c]
			}
			out.c[row] = s
		}
		return out, nil
	case r.mat && l.Len() == 4:
		out := zero(4, false)
		for c := 0; c < 4; c++ {
			var s float32
			for row := 0; row < 4; row++ {
				s += l.c[row] * r.c[c*4+row]
			}
			out.c[c] = s
		}
		return out, nil
	case l.Len() == 1 || r.Len() == 1:
		return componentwise(wgsl.TokenStar, l, r)
	}
	return Value{}, fmt.Errorf("%w: cannot multiply %d by %d components", ErrType, l.Len(), r.Len())
}
