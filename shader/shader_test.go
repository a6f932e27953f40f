// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"testing"

	"github.com/gogpu/vis/resource"
)

func TestNewFunctionSignature(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Signature
	}{
		{"vec4 map", `fn m(p: vec4<f32>) -> vec4<f32> { return p * $s; }`, Sig(Vec4, Vec4)},
		{"void hook", `fn post() { }`, Sig(Void)},
		{"scalar", `fn k() -> f32 { return 1.0; }`, Sig(F32)},
		{"two params", `fn mix2(a: vec2<f32>, t: f32) -> vec2<f32> { return a * t; }`, Sig(Vec2, Vec2, F32)},
		{"shorthand", `fn s(p: vec4f) -> vec4f { return p; }`, Sig(Vec4, Vec4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFunction(tt.src)
			if err != nil {
				t.Fatalf("NewFunction() = %v", err)
			}
			if !f.Signature().Equal(tt.want) {
				t.Errorf("Signature() = %s, want %s", f.Signature(), tt.want)
			}
		})
	}
}

func TestNewFunctionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"two functions", `fn a() { } fn b() { }`},
		{"no function", `struct S { x: f32 }`},
		{"extra struct", `struct S { x: f32 } fn a() { }`},
		{"syntax", `fn a( { }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFunction(tt.src); !errors.Is(err, ErrParse) {
				t.Errorf("NewFunction() = %v, want ErrParse", err)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	f := MustFunction(`fn f(p: vec4<f32>) -> vec4<f32> { return $g($g(p)) * $s + $o; }`)
	got := f.Placeholders()
	want := []string{"g", "s", "o"}
	if len(got) != len(want) {
		t.Fatalf("Placeholders() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Placeholders()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPlaceholdersSkipComments(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"fn f(p: vec4<f32>) -> vec4<f32> {\n    // uses $foo\n    return $s * p;\n}", []string{"s"}},
		{"fn f(p: vec4<f32>) -> vec4<f32> {\n    /* $a\n       $b */\n    return p;\n}", nil},
		{"fn f(p: vec4<f32>) -> vec4<f32> {\n    return /* $a */ $s * p; // $b\n}", []string{"s"}},
	}
	for _, tt := range tests {
		got := MustFunction(tt.src).Placeholders()
		if len(got) != len(tt.want) {
			t.Errorf("Placeholders() = %v, want %v\n%s", got, tt.want, tt.src)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Placeholders()[%d] = %q, want %q", i, got[i], tt.want[i])
			}
		}
	}
}

func TestDeclareErrors(t *testing.T) {
	f := MustFunction(`fn f(p: vec4<f32>) -> vec4<f32> { return $hook(p) * $s; }`)

	if err := f.DeclareValue("missing", Vec4); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("DeclareValue(missing) = %v, want ErrUnknownParameter", err)
	}
	if err := f.DeclareValue("s", Texture); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("DeclareValue(s, texture) = %v, want ErrTypeMismatch", err)
	}
	if err := f.DeclareHook("hook", Sig(Vec4, F32)); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("DeclareHook() with mismatched return = %v, want ErrSignatureMismatch", err)
	}
	if err := f.DeclareHook("hook", Sig(Vec4, Vec4)); err != nil {
		t.Errorf("DeclareHook() = %v", err)
	}

	fs := MustTemplate(StageFragment, `@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>($a, 0.0, 0.0, 1.0); }`)
	if err := fs.DeclareAttribute("a", F32); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("DeclareAttribute() in fragment = %v, want ErrTypeMismatch", err)
	}
}

func TestBindErrors(t *testing.T) {
	f := MustFunction(`fn f(p: vec4<f32>) -> vec4<f32> { let c = textureSample($tex, vec2<f32>(0.0, 0.0)); return $map(p) * $s + $post(c); }`)
	if err := f.DeclareValue("s", Vec4); err != nil {
		t.Fatal(err)
	}
	if err := f.DeclareFunction("map", Sig(Vec4, Vec4)); err != nil {
		t.Fatal(err)
	}
	if err := f.DeclareTexture("tex"); err != nil {
		t.Fatal(err)
	}
	if err := f.DeclareHook("post", Sig(Vec4, Vec4)); err != nil {
		t.Fatal(err)
	}

	badSig := MustFunction(`fn g(p: vec2<f32>) -> vec2<f32> { return p; }`)
	scalarFn := MustFunction(`fn k() -> f32 { return 1.0; }`)
	vec4Fn := MustFunction(`fn k4() -> vec4<f32> { return vec4<f32>(1.0); }`)

	tests := []struct {
		name    string
		param   string
		value   Value
		wantErr error
	}{
		{"undeclared", "nope", NewConst(Vec4), ErrUnknownParameter},
		{"const wrong type", "s", NewConst(F32, 1), ErrTypeMismatch},
		{"uniform wrong type", "s", MustUniform(Vec2), ErrTypeMismatch},
		{"value from wrong fn", "s", scalarFn, ErrTypeMismatch},
		{"function wrong sig", "map", badSig, ErrTypeMismatch},
		{"function given const", "map", NewConst(Vec4), ErrTypeMismatch},
		{"texture given uniform", "tex", MustUniform(Vec4), ErrTypeMismatch},
		{"hook bound", "post", badSig, ErrTypeMismatch},
		{"const ok", "s", NewConst(Vec4, 1, 2, 3, 4), nil},
		{"uniform ok", "s", MustUniform(Vec4), nil},
		{"value fn ok", "s", vec4Fn, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Bind(tt.param, tt.value)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Bind() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Bind() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBindAttributeComponents(t *testing.T) {
	vs := MustTemplate(StageVertex, `@vertex fn main(in: VertexInput) -> @builtin(position) vec4<f32> { return vec4<f32>($pos, 0.0, 1.0); }`)
	if err := vs.DeclareAttribute("pos", Vec2); err != nil {
		t.Fatal(err)
	}
	a3, _ := resource.NewFloat32Array([]int{1, 3}, make([]float32, 3))
	vb3, _ := resource.NewVertexBuffer(a3)
	if err := vs.Bind("pos", vb3); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Bind(vec3 buffer to vec2) = %v, want ErrTypeMismatch", err)
	}
	a2, _ := resource.NewFloat32Array([]int{1, 2}, make([]float32, 2))
	vb2, _ := resource.NewVertexBuffer(a2)
	if err := vs.Bind("pos", vb2); err != nil {
		t.Errorf("Bind(vec2 buffer) = %v", err)
	}
}

func TestAddToChain(t *testing.T) {
	f := MustFunction(`fn f(p: vec4<f32>) -> vec4<f32> { return $post(p); }`)
	if err := f.DeclareHook("post", Sig(Vec4, Vec4)); err != nil {
		t.Fatal(err)
	}
	good := MustFunction(`fn inv(c: vec4<f32>) -> vec4<f32> { return vec4<f32>(1.0) - c; }`)
	bad := MustFunction(`fn half(c: f32) -> f32 { return c * 0.5; }`)

	if err := f.AddToChain("post", bad); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("AddToChain(bad) = %v, want ErrSignatureMismatch", err)
	}
	if err := f.AddToChain("nope", good); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("AddToChain(unknown hook) = %v, want ErrUnknownParameter", err)
	}
	if err := f.AddToChain("post", good); err != nil {
		t.Fatalf("AddToChain() = %v", err)
	}
	if n := len(f.Chain("post")); n != 1 {
		t.Errorf("len(Chain) = %d, want 1", n)
	}
	if err := f.ClearChain("post"); err != nil {
		t.Fatal(err)
	}
	if n := len(f.Chain("post")); n != 0 {
		t.Errorf("len(Chain) after ClearChain = %d, want 0", n)
	}
}

func TestConstLiteral(t *testing.T) {
	tests := []struct {
		c    Const
		want string
	}{
		{NewConst(F32, 1), "1.0"},
		{NewConst(F32, 0.5), "0.5"},
		{NewConst(F32, -2), "-2.0"},
		{NewConst(Vec2, 1, 2.5), "vec2<f32>(1.0, 2.5)"},
		{NewConst(Vec4, 1), "vec4<f32>(1.0, 0.0, 0.0, 0.0)"},
	}
	for _, tt := range tests {
		if got := tt.c.Literal(); got != tt.want {
			t.Errorf("Literal() = %q, want %q", got, tt.want)
		}
	}
}

func TestUniformSet(t *testing.T) {
	u := MustUniform(Vec3, 1, 2, 3)
	if err := u.Set(1, 2); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set() with 2 values = %v, want ErrTypeMismatch", err)
	}
	if _, err := NewUniform(Texture); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("NewUniform(texture) = %v, want ErrTypeMismatch", err)
	}
	if got := u.Data(); got[2] != 3 {
		t.Errorf("Data() = %v", got)
	}
}

func TestSignatureString(t *testing.T) {
	if got := Sig(Vec4, Vec4).String(); got != "fn(vec4<f32>) -> vec4<f32>" {
		t.Errorf("String() = %q", got)
	}
	if got := Sig(Void).String(); got != "fn()" {
		t.Errorf("String() = %q", got)
	}
}
