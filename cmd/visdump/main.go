// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command visdump builds an image visual, links its program and prints the
// generated shaders and the GPU commands a paint issues.
//
// Usage:
//
//	visdump [-scene scene.toml] [-image photo.png] [-target wgsl|spirv|glsl|msl|hlsl]
//	visdump -o shot.png        # also render on the GPU and save the target
//	visdump -scene s.yaml -watch  # dump again whenever the scene changes
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/gogpu/vis"
	"github.com/gogpu/vis/program"
	"github.com/gogpu/vis/recording"
	"github.com/gogpu/vis/visual"
)

// dumpConfig selects what dump prints.
type dumpConfig struct {
	target     string
	validation program.Validation
	commands   bool
	compile    bool
}

func main() {
	var (
		scenePath = flag.String("scene", "", "TOML or YAML scene file")
		imagePath = flag.String("image", "", "image file (png, jpeg, bmp, tiff, webp); overrides the scene")
		size      = flag.Int("size", defaultGradientSize, "gradient size when no image is given")
		subdiv    = flag.Int("subdiv", visual.DefaultSubdivision, "quads along each image axis")
		target    = flag.String("target", targetWGSL, "shader output: wgsl, spirv, glsl, msl or hlsl")
		validate  = flag.String("validate", "parse", "linked unit validation: parse, ir or none")
		commands  = flag.Bool("commands", true, "print the recorded GPU commands")
		compile   = flag.Bool("compile", false, "compile both units to SPIR-V while recording")
		output    = flag.String("o", "", "render on the GPU and save the target as PNG")
		width     = flag.Int("width", 512, "render target width for -o")
		height    = flag.Int("height", 512, "render target height for -o")
		watchMode = flag.Bool("watch", false, "dump again whenever the scene file changes")
		verbose   = flag.Bool("v", false, "debug logging to stderr")
	)
	flag.Parse()

	if *verbose {
		vis.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if !slices.Contains(targets, *target) {
		log.Fatalf("unknown target %q, want one of %v", *target, targets)
	}
	validation, ok := program.ParseValidation(*validate)
	if !ok {
		log.Fatalf("unknown validation %q", *validate)
	}

	// load reads the scene file; flags set explicitly win over it.
	load := func() (scene, error) {
		s := defaultScene()
		if *scenePath != "" {
			var err error
			if s, err = loadScene(*scenePath); err != nil {
				return s, err
			}
		}
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "image":
				s.Image.Path = *imagePath
			case "size":
				s.Image.Size = *size
			case "subdiv":
				s.Image.Subdivision = *subdiv
			}
		})
		return s, s.check()
	}
	s, err := load()
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	cfg := dumpConfig{target: *target, validation: validation, commands: *commands, compile: *compile}
	if err := dump(os.Stdout, &s, cfg); err != nil {
		log.Fatalf("Failed to dump: %v", err)
	}

	if *output != "" {
		if err := screenshot(&s, *output, *width, *height); err != nil {
			log.Fatalf("Failed to render: %v", err)
		}
		log.Printf("Saved %s (%dx%d)\n", *output, *width, *height)
	}

	if !*watchMode {
		return
	}
	if *scenePath == "" {
		log.Fatal("-watch needs -scene")
	}
	sw, err := newSceneWatcher(*scenePath)
	if err != nil {
		log.Fatalf("Failed to watch scene: %v", err)
	}
	defer sw.Close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Printf("Watching %s\n", *scenePath)
	err = sw.run(ctx, func() {
		s, err := load()
		if err == nil {
			err = dump(os.Stdout, &s, cfg)
		}
		if err != nil {
			log.Printf("visdump: %v", err)
		}
	})
	if err != nil {
		log.Printf("Watch stopped: %v", err)
	}
}

// dump paints the scene on a recording context and writes both linked
// units and, optionally, the command log to w.
func dump(w io.Writer, s *scene, cfg dumpConfig) error {
	var opts []recording.Option
	if cfg.compile {
		opts = append(opts, recording.WithShaderCompile())
	}
	ctx := recording.NewContext(opts...)
	b := program.NewBuilder(ctx, program.WithValidation(cfg.validation))
	defer b.Close()

	img, err := s.build(ctx, visual.WithBuilder(b))
	if err != nil {
		return err
	}
	defer img.Destroy()
	if err := img.Paint(); err != nil {
		return err
	}
	p := img.Program()
	if p == nil {
		return fmt.Errorf("no program linked, image state %v", img.State())
	}

	units := []struct{ stage, src string }{
		{"vertex", p.VertexSource()},
		{"fragment", p.FragmentSource()},
	}
	for _, u := range units {
		out, err := translate(u.src, cfg.target)
		if err != nil {
			return fmt.Errorf("%s unit to %s: %w", u.stage, cfg.target, err)
		}
		fmt.Fprintf(w, "// %s (%s)\n%s\n\n", u.stage, cfg.target, out)
	}

	if cfg.commands {
		st := b.Stats()
		fmt.Fprintf(w, "// commands (programs=%d misses=%d hits=%d)\n", st.Programs, st.Misses, st.Hits)
		return ctx.Dump(w)
	}
	return nil
}
