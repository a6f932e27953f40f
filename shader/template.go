// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"slices"

	"github.com/gogpu/naga/wgsl"
)

// Template is the WGSL skeleton of one shader stage. It may declare
// structs and helper functions, and must contain exactly one entry point
// marked @vertex or @fragment.
//
// Vertex templates receive attributes through a generated VertexInput
// struct; the entry point takes it as "in: VertexInput".
type Template struct {
	scope
	id         uint64
	stage      Stage
	src        string
	entry      string
	names      []string
	attributes []string
}

// NewTemplate parses src as the template of stage.
func NewTemplate(stage Stage, src string) (*Template, error) {
	mod, err := parse(src)
	if err != nil {
		return nil, err
	}
	entry, err := entryPoint(mod, stage)
	if err != nil {
		return nil, err
	}
	return &Template{
		scope: newScope(stage.String()+" template", placeholders(src)),
		id:    newID(),
		stage: stage,
		src:   src,
		entry: entry,
		names: topLevelNames(mod),
	}, nil
}

// MustTemplate is like NewTemplate but panics on error.
func MustTemplate(stage Stage, src string) *Template {
	t, err := NewTemplate(stage, src)
	if err != nil {
		panic(err)
	}
	return t
}

func entryPoint(mod *wgsl.Module, stage Stage) (string, error) {
	var found []string
	for _, fn := range mod.Functions {
		for _, a := range fn.Attributes {
			if a.Name == stage.String() {
				found = append(found, fn.Name)
			}
		}
	}
	if len(found) != 1 {
		return "", fmt.Errorf("%w: %s template needs one @%s entry point, found %d", ErrParse, stage, stage, len(found))
	}
	return found[0], nil
}

// DeclareAttribute declares $name as a per-vertex input of type t.
// Only vertex templates have attributes.
func (t *Template) DeclareAttribute(name string, typ Type) error {
	if t.stage != StageVertex {
		return fmt.Errorf("shader: %s: attribute %q in %s stage: %w", t.owner, name, t.stage, ErrTypeMismatch)
	}
	if c := typ.Components(); c == 0 || c > 4 {
		return fmt.Errorf("shader: %s: attribute %q of type %s: %w", t.owner, name, typ, ErrTypeMismatch)
	}
	if err := t.declare(&param{name: name, kind: kindAttribute, typ: typ}); err != nil {
		return err
	}
	if !slices.Contains(t.attributes, name) {
		t.attributes = append(t.attributes, name)
	}
	return nil
}

// ID returns the template identity.
func (t *Template) ID() uint64 { return t.id }

// Stage returns the template's stage.
func (t *Template) Stage() Stage { return t.stage }

// Entry returns the entry point name.
func (t *Template) Entry() string { return t.entry }

// Source returns the unexpanded source.
func (t *Template) Source() string { return t.src }
