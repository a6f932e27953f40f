// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/wgsl"
)

var placeholderRe = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// placeholders returns the distinct $names in src in order of first use.
// Names inside comments are not placeholders.
func placeholders(src string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(stripComments(src), -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// stripComments blanks out line comments and nested block comments,
// keeping newlines.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case depth == 0 && c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			depth++
			i++
			b.WriteString("  ")
		case depth > 0 && c == '*' && i+1 < len(src) && src[i+1] == '/':
			depth--
			i++
			b.WriteString("  ")
		case depth > 0:
			if c == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// parse parses src after turning every $name into name, which keeps the
// source syntactically valid WGSL.
func parse(src string) (*wgsl.Module, error) {
	mod, err := naga.Parse(placeholderRe.ReplaceAllString(src, "$1"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return mod, nil
}

// expand replaces every placeholder with its resolved text. A $name with
// no replacement, which can only sit in a comment, loses its $.
func expand(src string, repl map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(src, func(m string) string {
		if r, ok := repl[m[1:]]; ok {
			return r
		}
		return m[1:]
	})
}

// typeOf converts a parsed type to canonical form.
func typeOf(t wgsl.Type) Type {
	if t == nil {
		return Void
	}
	return Type(typeString(t))
}

func typeString(t wgsl.Type) string {
	switch x := t.(type) {
	case *wgsl.NamedType:
		if s, ok := shorthands[x.Name]; ok && len(x.TypeParams) == 0 {
			return string(s)
		}
		if len(x.TypeParams) == 0 {
			return x.Name
		}
		params := make([]string, len(x.TypeParams))
		for i, p := range x.TypeParams {
			params[i] = typeString(p)
		}
		return x.Name + "<" + strings.Join(params, ", ") + ">"
	case *wgsl.ArrayType:
		return "array<" + typeString(x.Element) + ">"
	case *wgsl.PtrType:
		return "ptr<" + x.AddressSpace + ", " + typeString(x.PointeeType) + ">"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func signatureOf(fn *wgsl.FunctionDecl) Signature {
	sig := Signature{Return: typeOf(fn.ReturnType)}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, typeOf(p.Type))
	}
	return sig
}

// topLevelNames lists every name a module declares at global scope.
func topLevelNames(mod *wgsl.Module) []string {
	var names []string
	for _, s := range mod.Structs {
		names = append(names, s.Name)
	}
	for _, f := range mod.Functions {
		names = append(names, f.Name)
	}
	for _, v := range mod.GlobalVars {
		names = append(names, v.Name)
	}
	for _, c := range mod.Constants {
		names = append(names, c.Name)
	}
	for _, a := range mod.Aliases {
		names = append(names, a.Name)
	}
	return names
}

// renameFn rewrites the declaration "fn old(" in src to "fn name(".
func renameFn(src, old, name string) string {
	if old == name {
		return src
	}
	re := regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(old) + `\s*\(`)
	loc := re.FindStringIndex(src)
	if loc == nil {
		return src
	}
	return src[:loc[0]] + "fn " + name + "(" + src[loc[1]:]
}
