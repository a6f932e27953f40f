// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/gpucore"
	"github.com/gogpu/vis/resource"
	"github.com/gogpu/vis/shader"
	"github.com/gogpu/vis/transform"
	"github.com/gogpu/vis/visual"
)

// scene describes the image visual visdump builds. In TOML:
//
//	fragment_callbacks = ["fn invert(c: vec4<f32>) -> vec4<f32> { return vec4<f32>(1.0 - c.rgb, c.a); }"]
//	vertex_callbacks = ["fn lift(p: vec4<f32>) -> vec4<f32> { return p + vec4<f32>(0.0, 0.1, 0.0, 0.0); }"]
//
//	[image]
//	path = "photo.png"
//	subdivision = 2
//
//	[transform]
//	scale = [0.01, 0.01, 1.0]
//	offset = [-1.0, -1.0, 0.0]
type scene struct {
	Image     imageConfig     `toml:"image" yaml:"image"`
	Transform transformConfig `toml:"transform" yaml:"transform"`

	FragmentCallbacks []string `toml:"fragment_callbacks" yaml:"fragment_callbacks"`
	VertexCallbacks   []string `toml:"vertex_callbacks" yaml:"vertex_callbacks"`
}

type imageConfig struct {
	// Path is decoded with any registered image format. Empty means a
	// generated gradient of Size×Size pixels.
	Path        string `toml:"path" yaml:"path"`
	Size        int    `toml:"size" yaml:"size"`
	Subdivision int    `toml:"subdivision" yaml:"subdivision"`
}

type transformConfig struct {
	Scale  []float32 `toml:"scale" yaml:"scale"`
	Offset []float32 `toml:"offset" yaml:"offset"`
}

const defaultGradientSize = 16

func defaultScene() scene {
	return scene{Image: imageConfig{Size: defaultGradientSize, Subdivision: visual.DefaultSubdivision}}
}

// Scene file formats.
const (
	formatTOML = "toml"
	formatYAML = "yaml"
)

// sceneFormat picks the format from the file extension. TOML is the
// default.
func sceneFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatTOML
}

// decodeScene reads a scene over the defaults. Unknown keys are errors.
func decodeScene(r io.Reader, format string) (scene, error) {
	s := defaultScene()
	var err error
	switch format {
	case formatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err = dec.Decode(&s); errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err = dec.Decode(&s); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return s, fmt.Errorf("scene: %s", strict.String())
			}
		}
	}
	if err != nil {
		return s, fmt.Errorf("scene: %w", err)
	}
	if err := s.check(); err != nil {
		return s, err
	}
	return s, nil
}

func loadScene(path string) (scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return scene{}, err
	}
	defer f.Close()
	return decodeScene(f, sceneFormat(path))
}

func (s *scene) check() error {
	if n := len(s.Transform.Scale); n != 0 && n != 3 {
		return fmt.Errorf("scene: transform.scale has %d components, want 3", n)
	}
	if n := len(s.Transform.Offset); n != 0 && n != 3 {
		return fmt.Errorf("scene: transform.offset has %d components, want 3", n)
	}
	if s.Image.Path == "" && s.Image.Size < 1 {
		return fmt.Errorf("scene: image.size must be positive, got %d", s.Image.Size)
	}
	return nil
}

// data returns the image array: the decoded file, or a gradient.
func (s *scene) data() (*resource.Array, error) {
	if s.Image.Path == "" {
		return gradient(s.Image.Size), nil
	}
	f, err := os.Open(s.Image.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Image.Path, err)
	}
	a := resource.ArrayFromImage(img)
	vis.Logger().Debug("image decoded", "path", s.Image.Path, "format", format, "shape", a.Shape())
	return a, nil
}

// gradient is an n×n single-channel ramp from 0 to 1.
func gradient(n int) *resource.Array {
	v := make([]float32, n*n)
	for i := range v {
		v[i] = float32(i) / float32(len(v))
	}
	a, err := resource.NewFloat32Array([]int{n, n}, v)
	if err != nil {
		panic(err)
	}
	return a
}

// localTransform returns the scene's local-to-device transform. With no scale
// or offset it maps the image onto the [-1, 1] square.
func (s *scene) localTransform(width, height int) transform.Transform {
	scale := [3]float32{2 / float32(width), 2 / float32(height), 1}
	offset := [3]float32{-1, -1, 0}
	if len(s.Transform.Scale) == 3 {
		scale = [3]float32(s.Transform.Scale)
	}
	if len(s.Transform.Offset) == 3 {
		offset = [3]float32(s.Transform.Offset)
	}
	return transform.NewST(scale, offset)
}

// build creates the image visual on ctx with the scene callbacks attached.
func (s *scene) build(ctx gpucore.Context, opts ...visual.Option) (*visual.Image, error) {
	a, err := s.data()
	if err != nil {
		return nil, err
	}
	opts = append([]visual.Option{
		visual.WithSubdivision(s.Image.Subdivision),
		visual.WithTransform(s.localTransform(a.Dim(1), a.Dim(0))),
	}, opts...)
	img, err := visual.NewImage(ctx, a, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.attach(img); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

func (s *scene) attach(img *visual.Image) error {
	for i, src := range s.FragmentCallbacks {
		fn, err := shader.NewFunction(src)
		if err == nil {
			err = img.AddFragmentCallback(fn)
		}
		if err != nil {
			return fmt.Errorf("fragment callback %d: %w", i, err)
		}
	}
	for i, src := range s.VertexCallbacks {
		fn, err := shader.NewFunction(src)
		if err == nil {
			err = img.AddVertexCallback(fn)
		}
		if err != nil {
			return fmt.Errorf("vertex callback %d: %w", i, err)
		}
	}
	return nil
}
