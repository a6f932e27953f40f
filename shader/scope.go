// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"slices"

	"github.com/gogpu/vis/resource"
)

// paramKind is what a placeholder stands for.
type paramKind uint8

const (
	kindValue paramKind = iota
	kindFunction
	kindTexture
	kindHook
	kindAttribute
)

var paramKindNames = [...]string{
	kindValue:     "value",
	kindFunction:  "function",
	kindTexture:   "texture",
	kindHook:      "hook",
	kindAttribute: "attribute",
}

func (k paramKind) String() string { return paramKindNames[k] }

// param is one declared placeholder and its binding.
type param struct {
	name  string
	kind  paramKind
	typ   Type      // value, attribute
	sig   Signature // function, hook
	bound Value
	chain []*Function
}

// scope holds the placeholders of one Function or Template.
type scope struct {
	owner  string
	refs   []string // placeholder names in order of first appearance
	params map[string]*param
	order  []string // declaration order
}

func newScope(owner string, refs []string) scope {
	return scope{owner: owner, refs: refs, params: make(map[string]*param)}
}

func (s *scope) declare(p *param) error {
	if !slices.Contains(s.refs, p.name) {
		return fmt.Errorf("shader: %s: declare %s %q: no $%s in source: %w",
			s.owner, p.kind, p.name, p.name, ErrUnknownParameter)
	}
	if _, ok := s.params[p.name]; !ok {
		s.order = append(s.order, p.name)
	}
	s.params[p.name] = p
	return nil
}

// DeclareValue declares $name as a value of type t.
func (s *scope) DeclareValue(name string, t Type) error {
	if t.Components() == 0 {
		return fmt.Errorf("shader: %s: declare value %q of type %s: %w", s.owner, name, t, ErrTypeMismatch)
	}
	return s.declare(&param{name: name, kind: kindValue, typ: t})
}

// DeclareFunction declares $name as a function with signature sig.
func (s *scope) DeclareFunction(name string, sig Signature) error {
	return s.declare(&param{name: name, kind: kindFunction, sig: sig})
}

// DeclareTexture declares $name as a sampled 2D texture.
func (s *scope) DeclareTexture(name string) error {
	return s.declare(&param{name: name, kind: kindTexture, typ: Texture})
}

// DeclareHook declares $name as a hook with signature sig. A hook that
// returns a value must return its first parameter's type so the chain can
// pass each member's output to the next.
func (s *scope) DeclareHook(name string, sig Signature) error {
	if sig.Return != Void && !sig.IsValueHook() {
		return fmt.Errorf("shader: %s: hook %q with %s: return must match first parameter: %w",
			s.owner, name, sig, ErrSignatureMismatch)
	}
	return s.declare(&param{name: name, kind: kindHook, sig: sig})
}

// Bind sets the value of a declared placeholder. Binding nil clears it.
func (s *scope) Bind(name string, v Value) error {
	p, ok := s.params[name]
	if !ok {
		return fmt.Errorf("shader: %s: bind %q: %w", s.owner, name, ErrUnknownParameter)
	}
	if v == nil {
		p.bound = nil
		return nil
	}
	if err := p.accepts(v); err != nil {
		return fmt.Errorf("shader: %s: bind %q: %w", s.owner, name, err)
	}
	p.bound = v
	return nil
}

// Bound returns the value bound to name, or nil.
func (s *scope) Bound(name string) Value {
	if p, ok := s.params[name]; ok {
		return p.bound
	}
	return nil
}

// AddToChain appends fn to the chain of hook. Chain order is call order.
func (s *scope) AddToChain(hook string, fn *Function) error {
	p, ok := s.params[hook]
	if !ok || p.kind != kindHook {
		return fmt.Errorf("shader: %s: add to chain %q: %w", s.owner, hook, ErrUnknownParameter)
	}
	if fn == nil {
		return fmt.Errorf("shader: %s: add nil function to chain %q: %w", s.owner, hook, ErrSignatureMismatch)
	}
	if !fn.sig.Equal(p.sig) {
		return fmt.Errorf("shader: %s: add %s %s to hook %q %s: %w",
			s.owner, fn.name, fn.sig, hook, p.sig, ErrSignatureMismatch)
	}
	p.chain = append(p.chain, fn)
	return nil
}

// ClearChain empties the chain of hook.
func (s *scope) ClearChain(hook string) error {
	p, ok := s.params[hook]
	if !ok || p.kind != kindHook {
		return fmt.Errorf("shader: %s: clear chain %q: %w", s.owner, hook, ErrUnknownParameter)
	}
	p.chain = nil
	return nil
}

// Chain returns a copy of the chain of hook.
func (s *scope) Chain(hook string) []*Function {
	if p, ok := s.params[hook]; ok {
		return slices.Clone(p.chain)
	}
	return nil
}

// Placeholders returns the placeholder names found in the source, in
// order of first appearance.
func (s *scope) Placeholders() []string { return slices.Clone(s.refs) }

// accepts reports whether v may be bound to p.
func (p *param) accepts(v Value) error {
	switch p.kind {
	case kindValue:
		switch x := v.(type) {
		case Const:
			if x.Type != p.typ || len(x.Values) != p.typ.Components() {
				return fmt.Errorf("constant %s for %s: %w", x.Type, p.typ, ErrTypeMismatch)
			}
			return nil
		case *Uniform:
			if x.typ != p.typ {
				return fmt.Errorf("uniform %s for %s: %w", x.typ, p.typ, ErrTypeMismatch)
			}
			return nil
		case *Function:
			if want := Sig(p.typ); !x.sig.Equal(want) {
				return fmt.Errorf("function %s %s for value %s: %w", x.name, x.sig, p.typ, ErrTypeMismatch)
			}
			return nil
		}
	case kindFunction:
		if fn, ok := v.(*Function); ok {
			if !fn.sig.Equal(p.sig) {
				return fmt.Errorf("function %s %s for %s: %w", fn.name, fn.sig, p.sig, ErrTypeMismatch)
			}
			return nil
		}
	case kindTexture:
		if _, ok := v.(*resource.Texture2D); ok {
			return nil
		}
	case kindAttribute:
		if vb, ok := v.(*resource.VertexBuffer); ok {
			if vb.Format().Components() != p.typ.Components() {
				return fmt.Errorf("vertex buffer %s for %s: %w", vb.Format(), p.typ, ErrTypeMismatch)
			}
			return nil
		}
	case kindHook:
		return fmt.Errorf("hook is filled with AddToChain: %w", ErrTypeMismatch)
	}
	return fmt.Errorf("%T for %s: %w", v, p.kind, ErrTypeMismatch)
}
