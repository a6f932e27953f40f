// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/vis/resource"
)

// Key returns a string that identifies the composition of vs and fs: the
// identity of every template and function reachable from them, how each
// placeholder is declared, what it is bound to, and every chain's
// contents. Two calls return the same key exactly when Link would produce
// the same units. Uniform and resource data are not part of the key.
func Key(vs, fs *Template) string {
	k := keyWriter{seen: make(map[*Function]bool)}
	k.template(vs)
	k.b.WriteByte('|')
	k.template(fs)
	return k.b.String()
}

type keyWriter struct {
	b    strings.Builder
	seen map[*Function]bool
}

func (k *keyWriter) template(t *Template) {
	if t == nil {
		k.b.WriteString("nil")
		return
	}
	k.b.WriteString("T" + strconv.FormatUint(t.id, 10) + "{")
	k.scope(&t.scope)
	k.b.WriteByte('}')
}

func (k *keyWriter) function(f *Function) {
	k.b.WriteString("F" + strconv.FormatUint(f.id, 10))
	if k.seen[f] {
		return
	}
	k.seen[f] = true
	k.b.WriteByte('{')
	k.scope(&f.scope)
	k.b.WriteByte('}')
}

func (k *keyWriter) scope(s *scope) {
	for _, name := range s.order {
		p := s.params[name]
		k.b.WriteString(name)
		k.b.WriteByte(':')
		k.b.WriteString(p.kind.String())
		switch p.kind {
		case kindFunction, kindHook:
			k.b.WriteString(p.sig.String())
		default:
			k.b.WriteString(string(p.typ))
		}
		k.b.WriteByte('=')
		if p.kind == kindHook {
			k.b.WriteByte('[')
			for _, fn := range p.chain {
				k.function(fn)
				k.b.WriteByte(',')
			}
			k.b.WriteByte(']')
		} else {
			k.value(p.bound)
		}
		k.b.WriteByte(';')
	}
}

func (k *keyWriter) value(v Value) {
	switch x := v.(type) {
	case nil:
		k.b.WriteByte('_')
	case Const:
		k.b.WriteString("C" + x.Literal())
	case *Uniform:
		k.b.WriteString("U" + strconv.FormatUint(x.id, 10))
	case *Function:
		k.function(x)
	case *resource.Texture2D:
		k.b.WriteString("X" + strconv.FormatUint(x.ValueID(), 10))
	case *resource.VertexBuffer:
		k.b.WriteString("A" + strconv.FormatUint(x.ValueID(), 10))
	default:
		fmt.Fprintf(&k.b, "?%T%d", v, v.ValueID())
	}
}
