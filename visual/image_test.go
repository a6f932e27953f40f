// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package visual

import (
	"encoding/binary"
	"errors"
	"math"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/vis/gpucore"
	"github.com/gogpu/vis/internal/wgsleval"
	"github.com/gogpu/vis/program"
	"github.com/gogpu/vis/recording"
	"github.com/gogpu/vis/resource"
	"github.com/gogpu/vis/shader"
	"github.com/gogpu/vis/transform"
)

func gradient(t *testing.T, h, w int) *resource.Array {
	t.Helper()
	data := make([]float32, h*w)
	for i := range data {
		data[i] = float32(i) / float32(len(data))
	}
	a, err := resource.NewFloat32Array([]int{h, w}, data)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateNoData, "NoData"},
		{StateDataSet, "DataSet"},
		{StateResourcesBuilt, "ResourcesBuilt"},
		{StateProgramLinked, "ProgramLinked"},
		{State(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestImagePaint(t *testing.T) {
	ctx := recording.NewContext()
	img, err := NewImage(ctx, gradient(t, 16, 16))
	if err != nil {
		t.Fatal(err)
	}
	if img.State() != StateDataSet {
		t.Fatalf("state = %v, want DataSet", img.State())
	}
	if err := img.Paint(); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if img.State() != StateProgramLinked {
		t.Fatalf("state = %v, want ProgramLinked", img.State())
	}

	draws := ctx.Draws()
	if len(draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(draws))
	}
	if draws[0].VertexCount != 96 || draws[0].Kind != gpucore.PrimitiveTriangles {
		t.Errorf("draw = %+v, want 96 triangles", draws[0])
	}

	desc, texels, ok := ctx.TextureData(img.Texture().TextureID())
	if !ok {
		t.Fatal("texture not uploaded")
	}
	if desc.Width != 16 || desc.Height != 16 {
		t.Errorf("texture %dx%d, want 16x16", desc.Width, desc.Height)
	}
	if desc.MinFilter != gpucore.FilterNearest || desc.MagFilter != gpucore.FilterNearest {
		t.Errorf("filters = %v/%v, want nearest", desc.MinFilter, desc.MagFilter)
	}
	if len(texels) != 16*16*4 {
		t.Errorf("texels = %d bytes, want %d", len(texels), 16*16*4)
	}

	// Tex transform scale at offset 0, offset after it.
	u := floats(ctx.Uniforms(img.Program().ID()))
	if len(u) < 4 || u[0] != 1.0/16 || u[1] != 1.0/16 || u[2] != 1 {
		t.Errorf("uniforms = %v, want tex scale 1/16,1/16,1", u)
	}

	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 1 {
		t.Errorf("CreateProgram = %d after two paints, want 1", n)
	}
	if n := ctx.Count(recording.CmdWriteTexture); n != 1 {
		t.Errorf("WriteTexture = %d after two paints, want 1", n)
	}
}

func TestImageQuadGrid(t *testing.T) {
	ctx := recording.NewContext()
	img, err := NewImage(ctx, gradient(t, 8, 16), WithSubdivision(2))
	if err != nil {
		t.Fatal(err)
	}
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	raw, ok := ctx.BufferData(img.VertexBuffer().BufferID())
	if !ok {
		t.Fatal("vertex buffer not uploaded")
	}
	pos := floats(raw)
	if len(pos) != 2*2*6*2 {
		t.Fatalf("positions = %d floats, want %d", len(pos), 2*2*6*2)
	}
	// Cells are 8x4; the first quad, then the second cell at j=1.
	want := []float32{0, 0, 8, 4, 8, 0, 0, 0, 0, 4, 8, 4, 0, 4, 8, 8, 8, 4, 0, 4, 0, 8, 8, 8}
	for i, w := range want {
		if pos[i] != w {
			t.Fatalf("pos[%d] = %v, want %v (first cells %v)", i, pos[i], w, pos[:len(want)])
		}
	}
	xmax, ymax := float32(0), float32(0)
	for i := 0; i < len(pos); i += 2 {
		xmax, ymax = max(xmax, pos[i]), max(ymax, pos[i+1])
	}
	if xmax != 16 || ymax != 8 {
		t.Errorf("grid extent = %vx%v, want 16x8", xmax, ymax)
	}
}

func TestImageNoData(t *testing.T) {
	ctx := recording.NewContext()
	img, err := NewImage(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := img.Paint(); err != nil {
		t.Fatalf("Paint without data: %v", err)
	}
	if len(ctx.Commands()) != 0 {
		t.Errorf("commands = %d, want none", len(ctx.Commands()))
	}
	if img.State() != StateNoData {
		t.Errorf("state = %v, want NoData", img.State())
	}
}

func TestImageInvalidData(t *testing.T) {
	rank1, _ := resource.NewFloat32Array([]int{4}, make([]float32, 4))
	twoChan, _ := resource.NewUint8Array([]int{2, 2, 2}, make([]uint8, 8))
	empty, _ := resource.NewFloat32Array([]int{0, 4}, nil)

	tests := []struct {
		name string
		a    *resource.Array
	}{
		{"nil", nil},
		{"rank1", rank1},
		{"two channels", twoChan},
		{"empty", empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewImage(recording.NewContext(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := img.SetData(tt.a); !errors.Is(err, ErrInvalidData) {
				t.Fatalf("SetData = %v, want ErrInvalidData", err)
			}
			if img.State() != StateNoData {
				t.Errorf("state = %v after rejected data", img.State())
			}
		})
	}
}

func TestImageSetDataRebuilds(t *testing.T) {
	ctx := recording.NewContext()
	img, _ := NewImage(ctx, gradient(t, 16, 16))
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	oldTex := img.Texture().TextureID()

	if err := img.SetData(gradient(t, 4, 8)); err != nil {
		t.Fatal(err)
	}
	if img.State() != StateDataSet {
		t.Fatalf("state = %v, want DataSet", img.State())
	}
	if _, _, ok := ctx.TextureData(oldTex); ok {
		t.Error("old texture still live")
	}
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	desc, _, _ := ctx.TextureData(img.Texture().TextureID())
	if desc.Width != 8 || desc.Height != 4 {
		t.Errorf("texture %dx%d, want 8x4", desc.Width, desc.Height)
	}
	if s := img.TexTransform().Scale(); s[0] != 1.0/8 || s[1] != 1.0/4 {
		t.Errorf("tex scale = %v, want 1/8,1/4", s)
	}
	if _, buffers, textures := ctx.Live(); buffers != 1 || textures != 1 {
		t.Errorf("live buffers=%d textures=%d, want 1 each", buffers, textures)
	}
}

func TestImageTransformChanges(t *testing.T) {
	ctx := recording.NewContext()
	st := transform.NewST([3]float32{0.1, 0.1, 1}, [3]float32{-1, -1, 0})
	img, _ := NewImage(ctx, gradient(t, 16, 16), WithTransform(st))
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	first := img.Program()

	st.SetScale([3]float32{0.2, 0.2, 1})
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	if img.Program() != first {
		t.Error("scale change relinked a different program")
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 1 {
		t.Errorf("CreateProgram = %d after scale change, want 1", n)
	}
	u := floats(ctx.Uniforms(first.ID()))
	if u[0] != 0.2 || u[1] != 0.2 {
		t.Errorf("uniform scale = %v, want 0.2", u[:3])
	}

	img.SetTransform(transform.NewTranslate([3]float32{1, 0, 0}))
	if img.State() != StateResourcesBuilt || img.Program() != nil {
		t.Fatalf("state = %v program = %v after SetTransform", img.State(), img.Program())
	}
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 2 {
		t.Errorf("CreateProgram = %d after new transform, want 2", n)
	}

	img.SetTransform(nil)
	if _, ok := img.Transform().(*transform.NullTransform); !ok {
		t.Errorf("SetTransform(nil) = %T, want *NullTransform", img.Transform())
	}
}

func TestImageCallbacks(t *testing.T) {
	ctx := recording.NewContext()
	img, _ := NewImage(ctx, gradient(t, 4, 4))
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}

	invert := shader.MustFunction(`fn invert(c: vec4<f32>) -> vec4<f32> {
    return vec4<f32>(vec3<f32>(1.0) - c.rgb, c.a);
}`)
	if err := img.AddFragmentCallback(invert); err != nil {
		t.Fatal(err)
	}
	if img.State() != StateResourcesBuilt {
		t.Fatalf("state = %v after callback, want ResourcesBuilt", img.State())
	}
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(img.Program().FragmentSource(), "fn invert(") {
		t.Errorf("fragment unit lacks callback:\n%s", img.Program().FragmentSource())
	}

	shift := shader.MustFunction(`fn shift(p: vec4<f32>) -> vec4<f32> {
    return p + vec4<f32>(0.5, 0.0, 0.0, 0.0);
}`)
	if err := img.AddVertexCallback(shift); err != nil {
		t.Fatal(err)
	}
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(img.Program().VertexSource(), "fn shift(") {
		t.Errorf("vertex unit lacks callback:\n%s", img.Program().VertexSource())
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 3 {
		t.Errorf("CreateProgram = %d, want 3", n)
	}

	scalar := shader.MustFunction(`fn half(x: f32) -> f32 { return x * 0.5; }`)
	if err := img.AddFragmentCallback(scalar); !errors.Is(err, shader.ErrSignatureMismatch) {
		t.Errorf("AddFragmentCallback(f32) = %v, want ErrSignatureMismatch", err)
	}
	if err := img.AddVertexCallback(scalar); !errors.Is(err, shader.ErrSignatureMismatch) {
		t.Errorf("AddVertexCallback(f32) = %v, want ErrSignatureMismatch", err)
	}
	if err := img.AddFragmentCallback(nil); !errors.Is(err, shader.ErrSignatureMismatch) {
		t.Errorf("AddFragmentCallback(nil) = %v, want ErrSignatureMismatch", err)
	}
	if img.State() != StateProgramLinked {
		t.Errorf("rejected callbacks changed state to %v", img.State())
	}
}

var vertexHookCall = regexp.MustCompile(`out\.position = (\w+)\(out\.position\);`)

func TestImageVertexCallbackMovesPosition(t *testing.T) {
	ctx := recording.NewContext()
	img, _ := NewImage(ctx, gradient(t, 4, 4))
	shift := shader.MustFunction(`fn shift(p: vec4<f32>) -> vec4<f32> {
    return p + vec4<f32>(0.5, 0.0, 0.0, 0.0);
}`)
	for range 2 {
		if err := img.AddVertexCallback(shift); err != nil {
			t.Fatal(err)
		}
	}
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}

	src := img.Program().VertexSource()
	m := vertexHookCall.FindStringSubmatch(src)
	if m == nil {
		t.Fatalf("vertex unit does not pass the position through the hook:\n%s", src)
	}
	mod, err := wgsleval.Parse(src)
	if err != nil {
		t.Fatalf("wgsleval.Parse() = %v\n%s", err, src)
	}
	out, err := mod.Call(m[1], wgsleval.Vec(-1, 1, 0, 1))
	if err != nil {
		t.Fatalf("Call(%s) = %v\n%s", m[1], err, src)
	}
	want := []float32{0, 1, 0, 1}
	if got := out.Components(); !slices.Equal(got, want) {
		t.Errorf("%s(-1, 1, 0, 1) = %v, want %v", m[1], got, want)
	}
}

func TestImageUnboundCallbackReference(t *testing.T) {
	ctx := recording.NewContext()
	img, _ := NewImage(ctx, gradient(t, 4, 4))
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	linked := img.Program()

	tint := shader.MustFunction(`fn tint(c: vec4<f32>) -> vec4<f32> {
    return c * $k;
}`)
	if err := tint.DeclareValue("k", shader.Vec4); err != nil {
		t.Fatal(err)
	}
	if err := img.AddFragmentCallback(tint); err != nil {
		t.Fatal(err)
	}

	if err := img.Paint(); !errors.Is(err, shader.ErrLink) {
		t.Fatalf("Paint with unbound $k = %v, want ErrLink", err)
	}
	if img.State() != StateResourcesBuilt {
		t.Errorf("state = %v after link error, want ResourcesBuilt", img.State())
	}
	if n := len(ctx.Draws()); n != 1 {
		t.Errorf("draws = %d after link error, want 1", n)
	}
	if linked.Destroyed() {
		t.Error("link error destroyed the cached program")
	}

	if err := tint.Bind("k", shader.NewConst(shader.Vec4, 1, 0.5, 0.5, 1)); err != nil {
		t.Fatal(err)
	}
	if err := img.Paint(); err != nil {
		t.Fatalf("Paint after Bind = %v", err)
	}
	if img.State() != StateProgramLinked || len(ctx.Draws()) != 2 {
		t.Errorf("repaired state = %v draws = %d", img.State(), len(ctx.Draws()))
	}
	if n := ctx.Count(recording.CmdCreateProgram); n != 2 {
		t.Errorf("CreateProgram = %d, want 2", n)
	}
}

func TestImageLinkFailure(t *testing.T) {
	ctx := recording.NewContext()
	img, _ := NewImage(ctx, gradient(t, 4, 4))
	boom := errors.New("device lost")
	ctx.FailNext(recording.CmdCreateProgram, boom)

	if err := img.Paint(); !errors.Is(err, boom) {
		t.Fatalf("Paint = %v, want %v", err, boom)
	}
	if img.State() != StateResourcesBuilt {
		t.Errorf("state = %v, want ResourcesBuilt", img.State())
	}
	if len(ctx.Draws()) != 0 {
		t.Error("draw recorded after failed link")
	}

	if err := img.Paint(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if img.State() != StateProgramLinked || len(ctx.Draws()) != 1 {
		t.Errorf("retry state = %v draws = %d", img.State(), len(ctx.Draws()))
	}
}

func TestImageSharedBuilder(t *testing.T) {
	ctx := recording.NewContext()
	b := program.NewBuilder(ctx)
	defer b.Close()

	a, _ := NewImage(ctx, gradient(t, 4, 4), WithBuilder(b))
	c, _ := NewImage(ctx, gradient(t, 8, 8), WithBuilder(b))
	for _, img := range []*Image{a, c} {
		if err := img.Paint(); err != nil {
			t.Fatal(err)
		}
	}
	// Same structure, different texture and buffer handles.
	if n := ctx.Count(recording.CmdCreateProgram); n != 2 {
		t.Errorf("CreateProgram = %d, want 2", n)
	}
	a.Destroy()
	if p := c.Program(); p == nil || p.Destroyed() {
		t.Error("destroying one image released the shared builder's programs")
	}
}

func TestImageDestroy(t *testing.T) {
	ctx := recording.NewContext()
	img, _ := NewImage(ctx, gradient(t, 4, 4))
	if err := img.Paint(); err != nil {
		t.Fatal(err)
	}
	img.Destroy()
	if img.State() != StateNoData {
		t.Errorf("state = %v, want NoData", img.State())
	}
	if p, b, tx := ctx.Live(); p != 0 || b != 0 || tx != 0 {
		t.Errorf("live programs=%d buffers=%d textures=%d, want 0", p, b, tx)
	}
	if err := img.SetData(gradient(t, 2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := img.Paint(); err != nil {
		t.Fatalf("Paint after Destroy: %v", err)
	}
}
