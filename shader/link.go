// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/vis/resource"
)

// Unit is one linked WGSL translation unit.
type Unit struct {
	Stage  Stage
	Source string
	Entry  string
}

// AttributeSlot is one member of the generated VertexInput struct.
type AttributeSlot struct {
	Name     string
	Location uint32
	Type     Type
	Buffer   *resource.VertexBuffer
}

// TextureSlot is one texture/sampler pair in group 0.
type TextureSlot struct {
	// Name is the placeholder the texture was first bound to.
	Name string

	TextureVar     string
	SamplerVar     string
	TextureBinding uint32
	SamplerBinding uint32
	Texture        *resource.Texture2D
}

// Linked is the result of linking a vertex and a fragment template.
// Slots hold the bound values so a program can upload them at draw time.
type Linked struct {
	Vertex   Unit
	Fragment Unit

	Uniforms    []UniformSlot
	UniformSize uint64
	Attributes  []AttributeSlot
	Textures    []TextureSlot

	// Functions is the number of functions emitted across both units,
	// generated chain functions included.
	Functions int
}

// Names shared by every unit.
const (
	uniformBlockVar  = "uniforms"
	uniformBlockType = "Uniforms"
	vertexInputType  = "VertexInput"
)

// Link resolves vs and fs into one WGSL unit per stage.
//
// Every placeholder reachable from the templates must be declared and
// bound; hooks may have empty chains. Linking never modifies its inputs.
func Link(vs, fs *Template) (*Linked, error) {
	if vs == nil || fs == nil {
		return nil, fmt.Errorf("shader: link: nil template: %w", ErrLink)
	}
	if vs.stage != StageVertex || fs.stage != StageFragment {
		return nil, fmt.Errorf("shader: link: want vertex and fragment templates, got %s and %s: %w",
			vs.stage, fs.stage, ErrLink)
	}

	l := newLinker()
	vu := l.newUnit(StageVertex, vs.names)
	fu := l.newUnit(StageFragment, fs.names)

	vbody, err := vu.template(vs)
	if err != nil {
		return nil, err
	}
	fbody, err := fu.template(fs)
	if err != nil {
		return nil, err
	}

	return &Linked{
		Vertex:      Unit{Stage: StageVertex, Source: l.assemble(vu, vbody), Entry: vs.entry},
		Fragment:    Unit{Stage: StageFragment, Source: l.assemble(fu, fbody), Entry: fs.entry},
		Uniforms:    l.uniforms,
		UniformSize: l.uniformSize,
		Attributes:  l.attributes,
		Textures:    l.textures,
		Functions:   len(vu.out) + len(fu.out),
	}, nil
}

// Standalone links fn and everything it depends on into a unit without a
// template. Entry is the emitted name of fn. Attributes are not available
// outside a vertex template; textures and uniforms are.
func Standalone(fn *Function) (*Linked, error) {
	if fn == nil {
		return nil, fmt.Errorf("shader: standalone: nil function: %w", ErrLink)
	}
	l := newLinker()
	u := l.newUnit(StageVertex, nil)
	name, err := u.function(fn)
	if err != nil {
		return nil, err
	}
	return &Linked{
		Vertex:      Unit{Stage: StageVertex, Source: l.assemble(u, ""), Entry: name},
		Uniforms:    l.uniforms,
		UniformSize: l.uniformSize,
		Textures:    l.textures,
		Functions:   len(u.out),
	}, nil
}

type namespace map[string]bool

// linker holds the state shared by both units of a program.
type linker struct {
	units  []*unit
	global namespace

	uniforms    []UniformSlot
	uniformIdx  map[*Uniform]int
	members     namespace
	uniformSize uint64

	textures   []TextureSlot
	textureIdx map[*resource.Texture2D]int

	attributes   []AttributeSlot
	attributeIdx map[string]int
}

func newLinker() *linker {
	return &linker{
		global:       namespace{uniformBlockVar: true, uniformBlockType: true, vertexInputType: true},
		uniformIdx:   make(map[*Uniform]int),
		members:      make(namespace),
		textureIdx:   make(map[*resource.Texture2D]int),
		attributeIdx: make(map[string]int),
	}
}

func (l *linker) newUnit(stage Stage, reserved []string) *unit {
	u := &unit{
		l:       l,
		stage:   stage,
		names:   make(namespace),
		state:   make(map[*Function]visit),
		emitted: make(map[*Function]string),
	}
	for _, n := range reserved {
		u.names[n] = true
	}
	l.units = append(l.units, u)
	return u
}

// taken reports whether a global name would collide in any unit.
func (l *linker) taken(name string) bool {
	if l.global[name] {
		return true
	}
	for _, u := range l.units {
		if u.names[name] {
			return true
		}
	}
	return false
}

func suffixed(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "_" + strconv.Itoa(n)
}

func (l *linker) uniform(u *Uniform, base string) UniformSlot {
	if i, ok := l.uniformIdx[u]; ok {
		return l.uniforms[i]
	}
	name := base
	for n := 1; l.members[name]; n++ {
		name = suffixed(base, n)
	}
	l.members[name] = true
	slot := UniformSlot{Name: name, Uniform: u, Offset: l.uniformSize}
	l.uniformSize += u.slotSize()
	l.uniformIdx[u] = len(l.uniforms)
	l.uniforms = append(l.uniforms, slot)
	return slot
}

func (l *linker) texture(t *resource.Texture2D, base string) TextureSlot {
	if i, ok := l.textureIdx[t]; ok {
		return l.textures[i]
	}
	var tv, sv string
	for n := 0; ; n++ {
		tv, sv = suffixed(base, n)+"_texture", suffixed(base, n)+"_sampler"
		if !l.taken(tv) && !l.taken(sv) {
			break
		}
	}
	l.global[tv], l.global[sv] = true, true
	k := uint32(len(l.textures))
	slot := TextureSlot{
		Name:           base,
		TextureVar:     tv,
		SamplerVar:     sv,
		TextureBinding: 1 + 2*k,
		SamplerBinding: 2 + 2*k,
		Texture:        t,
	}
	l.textureIdx[t] = len(l.textures)
	l.textures = append(l.textures, slot)
	return slot
}

func (l *linker) attribute(p *param) AttributeSlot {
	if i, ok := l.attributeIdx[p.name]; ok {
		return l.attributes[i]
	}
	slot := AttributeSlot{
		Name:     p.name,
		Location: uint32(len(l.attributes)),
		Type:     p.typ,
		Buffer:   p.bound.(*resource.VertexBuffer),
	}
	l.attributeIdx[p.name] = len(l.attributes)
	l.attributes = append(l.attributes, slot)
	return slot
}

// assemble prepends the shared declarations to a unit's functions and body.
func (l *linker) assemble(u *unit, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s unit generated by vis/shader.\n\n", u.stage)
	if len(l.uniforms) > 0 {
		b.WriteString("struct " + uniformBlockType + " {\n")
		for _, s := range l.uniforms {
			fmt.Fprintf(&b, "    %s: %s,\n", s.Name, s.Uniform.memberType())
		}
		b.WriteString("}\n\n")
		fmt.Fprintf(&b, "@group(0) @binding(0) var<uniform> %s: %s;\n\n", uniformBlockVar, uniformBlockType)
	}
	for _, t := range l.textures {
		fmt.Fprintf(&b, "@group(0) @binding(%d) var %s: %s;\n", t.TextureBinding, t.TextureVar, Texture)
		fmt.Fprintf(&b, "@group(0) @binding(%d) var %s: %s;\n", t.SamplerBinding, t.SamplerVar, Sampler)
	}
	if len(l.textures) > 0 {
		b.WriteString("\n")
	}
	if u.stage == StageVertex && len(l.attributes) > 0 {
		b.WriteString("struct " + vertexInputType + " {\n")
		for _, a := range l.attributes {
			fmt.Fprintf(&b, "    @location(%d) %s: %s,\n", a.Location, a.Name, a.Type)
		}
		b.WriteString("}\n\n")
	}
	for _, src := range u.out {
		b.WriteString(strings.TrimSpace(src))
		b.WriteString("\n\n")
	}
	if body != "" {
		b.WriteString(strings.TrimSpace(body))
		b.WriteString("\n")
	}
	return b.String()
}

type visit uint8

const (
	unvisited visit = iota
	visiting
	visited
)

// unit links the functions of one stage.
type unit struct {
	l       *linker
	stage   Stage
	names   namespace
	state   map[*Function]visit
	emitted map[*Function]string
	path    []*Function
	out     []string
}

func (u *unit) alloc(base string) string {
	name := base
	for n := 1; u.names[name] || u.l.global[name]; n++ {
		name = suffixed(base, n)
	}
	u.names[name] = true
	return name
}

func (u *unit) template(t *Template) (string, error) {
	repl, err := u.resolve(&t.scope)
	if err != nil {
		return "", err
	}
	return expand(t.src, repl), nil
}

// function emits f after everything it depends on and returns its name.
func (u *unit) function(f *Function) (string, error) {
	switch u.state[f] {
	case visited:
		return u.emitted[f], nil
	case visiting:
		return "", u.cycle(f)
	}
	u.state[f] = visiting
	u.path = append(u.path, f)

	repl, err := u.resolve(&f.scope)
	if err != nil {
		return "", err
	}
	name := u.alloc(f.name)
	u.out = append(u.out, renameFn(expand(f.src, repl), f.name, name))

	u.path = u.path[:len(u.path)-1]
	u.state[f] = visited
	u.emitted[f] = name
	return name, nil
}

func (u *unit) cycle(f *Function) error {
	start := 0
	for i, p := range u.path {
		if p == f {
			start = i
			break
		}
	}
	names := make([]string, 0, len(u.path)-start+1)
	for _, p := range u.path[start:] {
		names = append(names, p.name)
	}
	names = append(names, f.name)
	return fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(names, " -> "))
}

// resolve returns the replacement text of every placeholder in s.
func (u *unit) resolve(s *scope) (map[string]string, error) {
	repl := make(map[string]string, len(s.refs))
	for _, ref := range s.refs {
		p, ok := s.params[ref]
		if !ok {
			return nil, &LinkError{Stage: u.stage, Function: s.owner, Reference: ref, Reason: "placeholder is not declared"}
		}
		text, err := u.expandParam(s, p)
		if err != nil {
			return nil, err
		}
		repl[ref] = text
	}
	return repl, nil
}

func (u *unit) expandParam(s *scope, p *param) (string, error) {
	if p.kind == kindHook {
		return u.chain(p)
	}
	if p.bound == nil {
		return "", &LinkError{Stage: u.stage, Function: s.owner, Reference: p.name, Reason: "no " + p.kind.String() + " bound"}
	}
	if p.kind == kindAttribute {
		return "in." + u.l.attribute(p).Name, nil
	}
	switch v := p.bound.(type) {
	case Const:
		return v.Literal(), nil
	case *Uniform:
		return uniformBlockVar + "." + u.l.uniform(v, p.name).Name + v.swizzle(), nil
	case *Function:
		name, err := u.function(v)
		if err != nil {
			return "", err
		}
		if p.kind == kindValue {
			return name + "()", nil
		}
		return name, nil
	case *resource.Texture2D:
		t := u.l.texture(v, p.name)
		return t.TextureVar + ", " + t.SamplerVar, nil
	default:
		return "", &LinkError{Stage: u.stage, Function: s.owner, Reference: p.name, Reason: fmt.Sprintf("cannot expand %T", v)}
	}
}

// chain emits the function that runs a hook's chain and returns its name.
func (u *unit) chain(p *param) (string, error) {
	members := make([]string, len(p.chain))
	for i, fn := range p.chain {
		name, err := u.function(fn)
		if err != nil {
			return "", err
		}
		members[i] = name
	}

	name := u.alloc(p.name)
	args := make([]string, len(p.sig.Params))
	decls := make([]string, len(p.sig.Params))
	for i, t := range p.sig.Params {
		args[i] = "a" + strconv.Itoa(i)
		decls[i] = args[i] + ": " + string(t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "fn %s(%s)", name, strings.Join(decls, ", "))
	if p.sig.Return == Void {
		b.WriteString(" {\n")
		for _, m := range members {
			fmt.Fprintf(&b, "    %s(%s);\n", m, strings.Join(args, ", "))
		}
		b.WriteString("}")
	} else {
		fmt.Fprintf(&b, " -> %s {\n", p.sig.Return)
		if len(members) == 0 {
			b.WriteString("    return a0;\n}")
		} else {
			fmt.Fprintf(&b, "    var v: %s = a0;\n", p.sig.Return)
			rest := append([]string{"v"}, args[1:]...)
			for _, m := range members {
				fmt.Fprintf(&b, "    v = %s(%s);\n", m, strings.Join(rest, ", "))
			}
			b.WriteString("    return v;\n}")
		}
	}
	u.out = append(u.out, b.String())
	return name, nil
}
