// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/vis/gpucore"
	"github.com/gogpu/vis/recording"
	"github.com/gogpu/vis/resource"
	"github.com/gogpu/vis/shader"
	"github.com/gogpu/vis/transform"
)

const vertexSrc = `struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = $map(vec4<f32>($pos, 0.0, 1.0));
    out.uv = $pos;
    return out;
}`

const fragmentSrc = `struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    var color = textureSample($tex, in.uv);
    color = $post(color);
    return color;
}`

type fixture struct {
	vs, fs *shader.Template
	vb     *resource.VertexBuffer
	tex    *resource.Texture2D
	st     *transform.STTransform
}

func newFixture(t *testing.T, vertices int) *fixture {
	t.Helper()
	vs := shader.MustTemplate(shader.StageVertex, vertexSrc)
	fs := shader.MustTemplate(shader.StageFragment, fragmentSrc)
	for _, err := range []error{
		vs.DeclareAttribute("pos", shader.Vec2),
		vs.DeclareFunction("map", transform.MapSignature),
		fs.DeclareTexture("tex"),
		fs.DeclareHook("post", shader.Sig(shader.Vec4, shader.Vec4)),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	pos, err := resource.NewFloat32Array([]int{vertices, 2}, make([]float32, vertices*2))
	if err != nil {
		t.Fatal(err)
	}
	vb, err := resource.NewVertexBuffer(pos)
	if err != nil {
		t.Fatal(err)
	}
	img, _ := resource.NewUint8Array([]int{2, 2}, []uint8{0, 64, 128, 255})
	tex, err := resource.NewTexture2D(img)
	if err != nil {
		t.Fatal(err)
	}
	st := transform.NewST([3]float32{2, 3, 1}, [3]float32{1, 1, 0})
	for _, err := range []error{
		vs.Bind("pos", vb),
		vs.Bind("map", st.ShaderMap()),
		fs.Bind("tex", tex),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return &fixture{vs: vs, fs: fs, vb: vb, tex: tex, st: st}
}

func TestBuildCachesProgram(t *testing.T) {
	ctx := recording.NewContext()
	b := NewBuilder(ctx)
	f := newFixture(t, 6)

	p1, err := b.Build(f.vs, f.fs)
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	p2, err := b.Build(f.vs, f.fs)
	if err != nil {
		t.Fatalf("second Build() = %v", err)
	}
	if p1 != p2 {
		t.Error("Build() twice returned different programs")
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 1 {
		t.Errorf("CreateProgram recorded %d times, want 1", n)
	}

	// Uniform data is not part of the identity.
	f.st.SetScale([3]float32{4, 4, 1})
	p3, err := b.Build(f.vs, f.fs)
	if err != nil {
		t.Fatal(err)
	}
	if p3 != p1 {
		t.Error("uniform change caused a relink")
	}

	// A chain change is.
	if err := f.fs.AddToChain("post", shader.MustFunction(`fn invert(c: vec4<f32>) -> vec4<f32> { return vec4<f32>(1.0) - c; }`)); err != nil {
		t.Fatal(err)
	}
	p4, err := b.Build(f.vs, f.fs)
	if err != nil {
		t.Fatal(err)
	}
	if p4 == p1 {
		t.Error("chain change returned the cached program")
	}

	s := b.Stats()
	if s.Programs != 2 || s.Hits != 2 || s.Misses != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestBuildDescriptor(t *testing.T) {
	ctx := recording.NewContext()
	f := newFixture(t, 3)
	p, err := NewBuilder(ctx).Build(f.vs, f.fs)
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	desc, ok := ctx.Program(p.ID())
	if !ok {
		t.Fatal("program not live")
	}
	if desc.VertexEntry != "vs_main" || desc.FragmentEntry != "fs_main" {
		t.Errorf("entries = %q, %q", desc.VertexEntry, desc.FragmentEntry)
	}
	if desc.VertexSource != p.VertexSource() || desc.FragmentSource != p.FragmentSource() {
		t.Error("descriptor sources differ from the linked units")
	}
	if len(desc.Attributes) != 1 || desc.Attributes[0].Format != gpucore.VertexFormatFloat32x2 {
		t.Errorf("Attributes = %+v", desc.Attributes)
	}
	if len(desc.Textures) != 1 || desc.Textures[0].TextureBinding != 1 || desc.Textures[0].SamplerBinding != 2 {
		t.Errorf("Textures = %+v", desc.Textures)
	}
	if desc.UniformSize != 32 {
		t.Errorf("UniformSize = %d, want 32", desc.UniformSize)
	}
}

func TestBuildLinkError(t *testing.T) {
	ctx := recording.NewContext()
	b := NewBuilder(ctx)
	vs := shader.MustTemplate(shader.StageVertex, vertexSrc)
	fs := shader.MustTemplate(shader.StageFragment, fragmentSrc)
	if err := vs.DeclareAttribute("pos", shader.Vec2); err != nil {
		t.Fatal(err)
	}

	_, err := b.Build(vs, fs)
	var le *shader.LinkError
	if !errors.As(err, &le) {
		t.Fatalf("Build() = %v, want *shader.LinkError", err)
	}
	if !errors.Is(err, shader.ErrLink) {
		t.Errorf("Build() = %v, want ErrLink", err)
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 0 {
		t.Errorf("CreateProgram recorded %d times after a link error", n)
	}
	if b.Stats().Programs != 0 {
		t.Error("failed build was cached")
	}
}

func TestBuildLinkErrorKeepsCachedProgram(t *testing.T) {
	ctx := recording.NewContext()
	b := NewBuilder(ctx)
	f := newFixture(t, 3)
	p, err := b.Build(f.vs, f.fs)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.vs.Bind("map", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(f.vs, f.fs); !errors.Is(err, shader.ErrLink) {
		t.Fatalf("Build() with unbound map = %v, want ErrLink", err)
	}
	if p.Destroyed() {
		t.Fatal("link error destroyed the cached program")
	}

	if err := f.vs.Bind("map", f.st.ShaderMap()); err != nil {
		t.Fatal(err)
	}
	again, err := b.Build(f.vs, f.fs)
	if err != nil {
		t.Fatal(err)
	}
	if again != p {
		t.Error("rebinding built a new program")
	}
	if p.Destroyed() {
		t.Error("cached program destroyed")
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 1 {
		t.Errorf("CreateProgram = %d, want 1", n)
	}
	if err := p.Draw(gpucore.PrimitiveTriangles); err != nil {
		t.Errorf("Draw() = %v", err)
	}
}

func TestBuildCreateError(t *testing.T) {
	ctx := recording.NewContext()
	boom := errors.New("device lost")
	ctx.FailNext(recording.CmdCreateProgram, boom)
	f := newFixture(t, 3)
	if _, err := NewBuilder(ctx).Build(f.vs, f.fs); !errors.Is(err, boom) {
		t.Errorf("Build() = %v, want device lost", err)
	}
}

func TestEvictionDestroysProgram(t *testing.T) {
	ctx := recording.NewContext()
	b := NewBuilder(ctx, WithCacheSize(1))

	a := newFixture(t, 3)
	pa, err := b.Build(a.vs, a.fs)
	if err != nil {
		t.Fatal(err)
	}
	c := newFixture(t, 3)
	if _, err := b.Build(c.vs, c.fs); err != nil {
		t.Fatal(err)
	}
	if !pa.Destroyed() {
		t.Error("evicted program not destroyed")
	}
	if _, ok := ctx.Program(pa.ID()); ok {
		t.Error("evicted program still live on the context")
	}
	if err := pa.Draw(gpucore.PrimitiveTriangles); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Draw() on evicted program = %v, want ErrDestroyed", err)
	}

	b.Close()
	if progs, _, _ := ctx.Live(); progs != 0 {
		t.Errorf("%d programs live after Close", progs)
	}
	if _, err := b.Build(a.vs, a.fs); !errors.Is(err, ErrClosed) {
		t.Errorf("Build() after Close = %v, want ErrClosed", err)
	}
}

func TestDraw(t *testing.T) {
	ctx := recording.NewContext()
	b := NewBuilder(ctx)
	f := newFixture(t, 6)
	p, err := b.Build(f.vs, f.fs)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Draw(gpucore.PrimitiveTriangles); err != nil {
		t.Fatalf("Draw() = %v", err)
	}
	draws := ctx.Draws()
	if len(draws) != 1 || draws[0].VertexCount != 6 || draws[0].Kind != gpucore.PrimitiveTriangles {
		t.Fatalf("Draws() = %+v", draws)
	}

	// Scale (2, 3, 1) then offset (1, 1, 0), each in its own vec4 slot.
	u := ctx.Uniforms(p.ID())
	want := []float32{2, 3, 1, 0, 1, 1, 0, 0}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(u[i*4:])); got != w {
			t.Errorf("uniform float %d = %v, want %v", i, got, w)
		}
	}

	// A second draw re-uploads only what changed.
	ctx.Reset()
	f.st.SetOffset([3]float32{0, 0, 0})
	if err := p.Draw(gpucore.PrimitiveLines); err != nil {
		t.Fatal(err)
	}
	if n := ctx.Count(recording.CmdWriteBuffer) + ctx.Count(recording.CmdWriteTexture); n != 0 {
		t.Errorf("%d resource writes without changes", n)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(ctx.Uniforms(p.ID())[16:])); got != 0 {
		t.Errorf("offset.x = %v after SetOffset, want 0", got)
	}
}

func TestDrawMinimumVertexCount(t *testing.T) {
	vs := shader.MustTemplate(shader.StageVertex, `@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>($a + $b, 0.0, 1.0);
}`)
	fs := shader.MustTemplate(shader.StageFragment, `@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}`)
	for _, name := range []string{"a", "b"} {
		if err := vs.DeclareAttribute(name, shader.Vec2); err != nil {
			t.Fatal(err)
		}
	}
	for name, n := range map[string]int{"a": 5, "b": 3} {
		arr, _ := resource.NewFloat32Array([]int{n, 2}, make([]float32, n*2))
		vb, err := resource.NewVertexBuffer(arr)
		if err != nil {
			t.Fatal(err)
		}
		if err := vs.Bind(name, vb); err != nil {
			t.Fatal(err)
		}
	}

	ctx := recording.NewContext()
	p, err := NewBuilder(ctx).Build(vs, fs)
	if err != nil {
		t.Fatal(err)
	}
	if p.VertexCount() != 3 {
		t.Errorf("VertexCount() = %d, want 3", p.VertexCount())
	}
	if err := p.Draw(gpucore.PrimitivePoints); err != nil {
		t.Fatal(err)
	}
	if d := ctx.Draws(); len(d) != 1 || d[0].VertexCount != 3 {
		t.Errorf("Draws() = %+v", d)
	}
}

func TestDrawWithoutVertices(t *testing.T) {
	vs := shader.MustTemplate(shader.StageVertex, `@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}`)
	fs := shader.MustTemplate(shader.StageFragment, `@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}`)
	ctx := recording.NewContext()
	p, err := NewBuilder(ctx).Build(vs, fs)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Draw(gpucore.PrimitiveTriangles); !errors.Is(err, ErrNoVertices) {
		t.Errorf("Draw() = %v, want ErrNoVertices", err)
	}
	if err := p.DrawN(gpucore.PrimitiveTriangles, -1); !errors.Is(err, ErrVertexCount) {
		t.Errorf("DrawN(-1) = %v, want ErrVertexCount", err)
	}
	if n := len(ctx.Draws()); n != 0 {
		t.Errorf("Draws() = %d after rejected counts, want 0", n)
	}
	if err := p.DrawN(gpucore.PrimitiveTriangles, 3); err != nil {
		t.Errorf("DrawN() = %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		give Validation
		want string
	}{
		{ValidateParse, "parse"},
		{ValidateNone, "none"},
		{ValidateIR, "ir"},
		{Validation(9), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.give.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if tt.want == "Unknown" {
			continue
		}
		if v, ok := ParseValidation(tt.want); !ok || v != tt.give {
			t.Errorf("ParseValidation(%q) = %v, %v", tt.want, v, ok)
		}
	}
}

func TestBuildWithFullValidation(t *testing.T) {
	vs := shader.MustTemplate(shader.StageVertex, `@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return $pos;
}`)
	fs := shader.MustTemplate(shader.StageFragment, `@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}`)
	if err := vs.DeclareValue("pos", shader.Vec4); err != nil {
		t.Fatal(err)
	}
	if err := vs.Bind("pos", shader.NewConst(shader.Vec4, 0, 0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	p, err := NewBuilder(recording.NewContext(), WithValidation(ValidateIR)).Build(vs, fs)
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if !strings.Contains(p.VertexSource(), "return vec4<f32>(0.0, 0.0, 0.0, 1.0);") {
		t.Errorf("constant not inlined:\n%s", p.VertexSource())
	}
}
