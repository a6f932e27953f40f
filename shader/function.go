// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import "fmt"

// Function is the WGSL source of exactly one fn. Its signature is parsed
// once at creation and never changes; only bindings do.
//
// A Function is identified by pointer: two functions with the same source
// are distinct and both get emitted when linked.
type Function struct {
	scope
	id   uint64
	name string
	src  string
	sig  Signature
}

// NewFunction parses src, which must declare a single fn and nothing else.
func NewFunction(src string) (*Function, error) {
	mod, err := parse(src)
	if err != nil {
		return nil, err
	}
	if len(mod.Functions) != 1 {
		return nil, fmt.Errorf("%w: want exactly one fn, found %d", ErrParse, len(mod.Functions))
	}
	if n := len(mod.Structs) + len(mod.GlobalVars) + len(mod.Constants) + len(mod.Aliases); n > 0 {
		return nil, fmt.Errorf("%w: fn %s: %d global declarations besides the function", ErrParse, mod.Functions[0].Name, n)
	}
	decl := mod.Functions[0]
	return &Function{
		scope: newScope("fn "+decl.Name, placeholders(src)),
		id:    newID(),
		name:  decl.Name,
		src:   src,
		sig:   signatureOf(decl),
	}, nil
}

// MustFunction is like NewFunction but panics on error.
// It is intended for sources that are constants of the program.
func MustFunction(src string) *Function {
	f, err := NewFunction(src)
	if err != nil {
		panic(err)
	}
	return f
}

// ValueID implements Value.
func (f *Function) ValueID() uint64 { return f.id }

// Name returns the fn name as written in the source.
func (f *Function) Name() string { return f.name }

// Signature returns the parsed signature.
func (f *Function) Signature() Signature { return f.sig }

// Source returns the unexpanded source.
func (f *Function) Source() string { return f.src }

func (f *Function) String() string { return f.name + " " + f.sig.String() }
