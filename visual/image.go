// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package visual provides drawable objects built from linked shader
// programs.
//
// An Image draws a 2D array as a textured grid of quads. Its vertex
// positions pass through a coordinate Transform, and fragment callbacks can
// post-process the sampled color. The program is linked lazily on the first
// Paint and relinked only when something structural changes.
package visual

import (
	"errors"
	"fmt"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
	"github.com/gogpu/vis/program"
	"github.com/gogpu/vis/resource"
	"github.com/gogpu/vis/shader"
	"github.com/gogpu/vis/transform"
)

// ErrInvalidData is returned for image data an Image cannot display.
var ErrInvalidData = errors.New("visual: invalid image data")

// State is the lifecycle stage of an Image.
type State uint8

const (
	// StateNoData means no array was set; Paint draws nothing.
	StateNoData State = iota

	// StateDataSet means an array is set but GPU resources are not built.
	StateDataSet

	// StateResourcesBuilt means the vertex buffer and texture exist but no
	// program is linked.
	StateResourcesBuilt

	// StateProgramLinked means Paint draws without further work.
	StateProgramLinked
)

var stateNames = [...]string{
	StateNoData:         "NoData",
	StateDataSet:        "DataSet",
	StateResourcesBuilt: "ResourcesBuilt",
	StateProgramLinked:  "ProgramLinked",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// fragmentCallbackSig is the signature of fragment callbacks.
var fragmentCallbackSig = shader.Sig(shader.Vec4, shader.Vec4)

// vertexCallbackSig is the signature of vertex callbacks.
var vertexCallbackSig = shader.Sig(shader.Vec4, shader.Vec4)

// Image draws a rank-2 or rank-3 array as a textured quad grid.
//
// Local coordinates are image pixels: x runs along the array's second
// axis (width) and y along its first (height).
//
// An Image is not safe for concurrent use. Paint is called once per frame
// from the goroutine that owns the context.
type Image struct {
	ctx         gpucore.Context
	builder     *program.Builder
	ownsBuilder bool
	subdiv      int

	data *resource.Array
	vbo  *resource.VertexBuffer
	tex  *resource.Texture2D

	transform    transform.Transform
	texTransform *transform.STTransform
	fragCallback []*shader.Function
	vertCallback []*shader.Function

	vs, fs  *shader.Template
	prog    *program.Program
	progVer uint64
	state   State
}

// NewImage returns an Image drawing on ctx. data may be nil, in which case
// the image starts in StateNoData.
func NewImage(ctx gpucore.Context, data *resource.Array, opts ...Option) (*Image, error) {
	o := options{subdiv: DefaultSubdivision}
	for _, opt := range opts {
		opt(&o)
	}
	img := &Image{
		ctx:          ctx,
		builder:      o.builder,
		subdiv:       o.subdiv,
		transform:    o.transform,
		texTransform: transform.NewScale([3]float32{1, 1, 1}),
		vs:           shader.MustTemplate(shader.StageVertex, imageVertex),
		fs:           shader.MustTemplate(shader.StageFragment, imageFragment),
	}
	if img.builder == nil {
		img.builder = program.NewBuilder(ctx)
		img.ownsBuilder = true
	}
	if img.transform == nil {
		img.transform = transform.NewNull()
	}
	for _, err := range []error{
		img.vs.DeclareAttribute(inLocalPos, shader.Vec2),
		img.vs.DeclareFunction(mapLocalToND, transform.MapSignature),
		img.vs.DeclareHook(hookVertPost, vertexCallbackSig),
		img.fs.DeclareFunction(mapLocalToTx, transform.MapSignature),
		img.fs.DeclareTexture(inTexture),
		img.fs.DeclareHook(hookFragPost, fragmentCallbackSig),
	} {
		if err != nil {
			panic("visual: image templates: " + err.Error())
		}
	}
	if data != nil {
		if err := img.SetData(data); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// State returns the lifecycle stage.
func (img *Image) State() State { return img.state }

// Data returns the displayed array.
func (img *Image) Data() *resource.Array { return img.data }

// Transform returns the local-to-device transform.
func (img *Image) Transform() transform.Transform { return img.transform }

// TexTransform returns the transform from local to texture coordinates.
// It is rescaled whenever the data size changes.
func (img *Image) TexTransform() *transform.STTransform { return img.texTransform }

// Program returns the linked program, or nil before linking.
func (img *Image) Program() *program.Program { return img.prog }

// VertexBuffer returns the quad grid positions, or nil before Paint.
func (img *Image) VertexBuffer() *resource.VertexBuffer { return img.vbo }

// Texture returns the image texture, or nil before Paint.
func (img *Image) Texture() *resource.Texture2D { return img.tex }

// SetData replaces the displayed array. The array must be rank 2, or
// rank 3 with 1, 3 or 4 channels, and hold at least one sample. Resources
// and program are rebuilt on the next Paint.
func (img *Image) SetData(a *resource.Array) error {
	if err := checkData(a); err != nil {
		return err
	}
	img.releaseResources()
	img.data = a
	img.prog = nil
	img.state = StateDataSet
	return nil
}

func checkData(a *resource.Array) error {
	if a == nil {
		return fmt.Errorf("%w: nil array", ErrInvalidData)
	}
	if a.Len() == 0 {
		return fmt.Errorf("%w: empty array of shape %v", ErrInvalidData, a.Shape())
	}
	switch a.Rank() {
	case 2:
	case 3:
		if c := a.Dim(2); c != 1 && c != 3 && c != 4 {
			return fmt.Errorf("%w: %d channels, want 1, 3 or 4", ErrInvalidData, c)
		}
	default:
		return fmt.Errorf("%w: rank %d, want 2 or 3", ErrInvalidData, a.Rank())
	}
	return nil
}

// SetTransform replaces the local-to-device transform. A nil transform is
// a NullTransform.
func (img *Image) SetTransform(t transform.Transform) {
	if t == nil {
		t = transform.NewNull()
	}
	img.transform = t
	img.invalidate()
}

// AddFragmentCallback appends fn to the fragment post hook. fn receives
// the sampled color and returns the color to write.
func (img *Image) AddFragmentCallback(fn *shader.Function) error {
	if fn == nil || !fn.Signature().Equal(fragmentCallbackSig) {
		return fmt.Errorf("visual: fragment callback must be %s: %w", fragmentCallbackSig, shader.ErrSignatureMismatch)
	}
	img.fragCallback = append(img.fragCallback, fn)
	img.invalidate()
	return nil
}

// AddVertexCallback appends fn to the vertex post hook. fn receives the
// clip position computed by the transform and returns the position to
// emit.
func (img *Image) AddVertexCallback(fn *shader.Function) error {
	if fn == nil || !fn.Signature().Equal(vertexCallbackSig) {
		return fmt.Errorf("visual: vertex callback must be %s: %w", vertexCallbackSig, shader.ErrSignatureMismatch)
	}
	img.vertCallback = append(img.vertCallback, fn)
	img.invalidate()
	return nil
}

// invalidate drops the program but keeps the resources.
func (img *Image) invalidate() {
	img.prog = nil
	if img.state == StateProgramLinked {
		img.state = StateResourcesBuilt
	}
}

// Paint draws the image, building resources and linking the program first
// when needed. Painting without data does nothing.
func (img *Image) Paint() error {
	switch img.state {
	case StateNoData:
		return nil
	case StateDataSet:
		if err := img.buildResources(); err != nil {
			return err
		}
	}
	if img.prog != nil && (img.prog.Destroyed() || img.transform.Version() != img.progVer) {
		img.invalidate()
	}
	if img.prog == nil {
		if err := img.link(); err != nil {
			return err
		}
	}
	return img.prog.Draw(gpucore.PrimitiveTriangles)
}

// buildResources creates the quad grid and the texture.
func (img *Image) buildResources() error {
	w, h := img.data.Dim(1), img.data.Dim(0)
	vbo, err := resource.NewVertexBuffer(quadGrid(w, h, img.subdiv))
	if err != nil {
		return err
	}
	tex, err := resource.NewTexture2D(img.data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	tex.SetFilter(gpucore.FilterNearest, gpucore.FilterNearest)
	img.vbo, img.tex = vbo, tex
	img.texTransform.SetScale([3]float32{1 / float32(w), 1 / float32(h), 1})
	img.state = StateResourcesBuilt
	vis.Logger().Debug("visual: image resources built",
		"width", w, "height", h, "vertices", vbo.Count())
	return nil
}

// quadGrid returns n·n quads of two triangles covering w×h, as an
// (n·n·6)×2 array.
func quadGrid(w, h, n int) *resource.Array {
	cw, ch := float32(w)/float32(n), float32(h)/float32(n)
	quad := [6][2]float32{{0, 0}, {cw, ch}, {cw, 0}, {0, 0}, {0, ch}, {cw, ch}}
	pos := make([]float32, 0, n*n*6*2)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ox, oy := float32(i)*cw, float32(j)*ch
			for _, v := range quad {
				pos = append(pos, v[0]+ox, v[1]+oy)
			}
		}
	}
	a, err := resource.NewFloat32Array([]int{n * n * 6, 2}, pos)
	if err != nil {
		panic("visual: quad grid: " + err.Error())
	}
	return a
}

// link binds the current inputs and builds the program. On failure the
// state stays at StateResourcesBuilt.
func (img *Image) link() error {
	if err := img.bind(); err != nil {
		return fmt.Errorf("visual: link: %w", err)
	}
	prog, err := img.builder.Build(img.vs, img.fs)
	if err != nil {
		vis.Logger().Debug("visual: link failed", "err", err)
		return fmt.Errorf("visual: link: %w", err)
	}
	img.prog = prog
	img.progVer = img.transform.Version()
	img.state = StateProgramLinked
	return nil
}

func (img *Image) bind() error {
	binds := []struct {
		t    *shader.Template
		name string
		v    shader.Value
	}{
		{img.vs, inLocalPos, img.vbo},
		{img.vs, mapLocalToND, img.transform.ShaderMap()},
		{img.fs, mapLocalToTx, img.texTransform.ShaderMap()},
		{img.fs, inTexture, img.tex},
	}
	for _, b := range binds {
		if err := b.t.Bind(b.name, b.v); err != nil {
			return err
		}
	}
	if err := setChain(img.vs, hookVertPost, img.vertCallback); err != nil {
		return err
	}
	return setChain(img.fs, hookFragPost, img.fragCallback)
}

func setChain(t *shader.Template, hook string, fns []*shader.Function) error {
	if err := t.ClearChain(hook); err != nil {
		return err
	}
	for _, fn := range fns {
		if err := t.AddToChain(hook, fn); err != nil {
			return err
		}
	}
	return nil
}

// Destroy releases the GPU resources and, when the image owns its
// builder, every program it linked. The image returns to StateNoData.
func (img *Image) Destroy() {
	img.releaseResources()
	img.prog = nil
	if img.ownsBuilder {
		img.builder.Close()
		img.builder = program.NewBuilder(img.ctx)
	}
	img.data = nil
	img.state = StateNoData
}

func (img *Image) releaseResources() {
	if img.vbo != nil {
		img.vbo.Destroy()
		img.vbo = nil
	}
	if img.tex != nil {
		img.tex.Destroy()
		img.tex = nil
	}
}
