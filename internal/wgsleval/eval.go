// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgsleval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/wgsl"
)

var (
	// ErrUnsupported is returned for constructs the evaluator does not model.
	ErrUnsupported = errors.New("wgsleval: unsupported construct")

	// ErrUndefined is returned for unknown identifiers, functions or members.
	ErrUndefined = errors.New("wgsleval: undefined")

	// ErrType is returned when operand shapes do not fit an operation.
	ErrType = errors.New("wgsleval: type mismatch")

	// ErrLimit is returned when a loop or the call depth exceeds its bound.
	ErrLimit = errors.New("wgsleval: limit exceeded")
)

const (
	maxIterations = 1 << 16
	maxDepth      = 64
)

// Module is a parsed WGSL unit ready for evaluation.
// A Module is not safe for concurrent use.
type Module struct {
	funcs  map[string]*wgsl.FunctionDecl
	consts map[string]Value
	blocks map[string]*block
	depth  int
}

// block is a uniform variable of struct type.
type block struct {
	members map[string]Value
}

// Parse parses src and prepares its functions, constants and uniform
// blocks. Uniform members start out zeroed.
func Parse(src string) (*Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("wgsleval: parse: %w", err)
	}
	m := &Module{
		funcs:  make(map[string]*wgsl.FunctionDecl, len(ast.Functions)),
		consts: make(map[string]Value),
		blocks: make(map[string]*block),
	}
	for _, fn := range ast.Functions {
		m.funcs[fn.Name] = fn
	}

	structs := make(map[string]*wgsl.StructDecl, len(ast.Structs))
	for _, s := range ast.Structs {
		structs[s.Name] = s
	}
	for _, v := range ast.GlobalVars {
		if v.AddressSpace != "uniform" {
			continue
		}
		nt, ok := v.Type.(*wgsl.NamedType)
		if !ok {
			continue
		}
		s, ok := structs[nt.Name]
		if !ok {
			continue
		}
		b := &block{members: make(map[string]Value, len(s.Members))}
		for _, mem := range s.Members {
			n, mat, ok := shapeOf(mem.Type)
			if !ok {
				return nil, fmt.Errorf("%w: uniform member %s.%s", ErrUnsupported, v.Name, mem.Name)
			}
			b.members[mem.Name] = zero(n, mat)
		}
		m.blocks[v.Name] = b
	}

	for _, c := range ast.Constants {
		e := m.newExec()
		v, err := e.eval(c.Init)
		if err != nil {
			return nil, fmt.Errorf("wgsleval: const %s: %w", c.Name, err)
		}
		m.consts[c.Name] = v
	}
	return m, nil
}

// SetUniform stores data in the uniform member with the given name.
// Shorter data is zero-padded to the member's size.
func (m *Module) SetUniform(member string, data ...float32) error {
	for _, b := range m.blocks {
		cur, ok := b.members[member]
		if !ok {
			continue
		}
		if len(data) > cur.Len() {
			return fmt.Errorf("%w: uniform %s holds %d components, got %d", ErrType, member, cur.Len(), len(data))
		}
		v := zero(cur.Len(), cur.mat)
		copy(v.c, data)
		b.members[member] = v
		return nil
	}
	return fmt.Errorf("%w: uniform member %s", ErrUndefined, member)
}

// Call evaluates the named function with args and returns its result.
func (m *Module) Call(name string, args ...Value) (Value, error) {
	return m.newExec().call(name, args)
}

type flow uint8

const (
	flowNext flow = iota
	flowReturn
	flowBreak
	flowContinue
)

// exec is the state of one function activation.
type exec struct {
	m      *Module
	scopes []map[string]*Value
	ret    Value
}

func (m *Module) newExec() *exec { return &exec{m: m} }

func (e *exec) push() { e.scopes = append(e.scopes, make(map[string]*Value)) }
func (e *exec) pop()  { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *exec) declare(name string, v Value) {
	if len(e.scopes) == 0 {
		e.push()
	}
	e.scopes[len(e.scopes)-1][name] = &v
}

func (e *exec) lookup(name string) (*Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *exec) call(name string, args []Value) (Value, error) {
	fn, ok := e.m.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: function %s", ErrUndefined, name)
	}
	if len(args) != len(fn.Params) {
		return Value{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrType, name, len(fn.Params), len(args))
	}
	if e.m.depth >= maxDepth {
		return Value{}, fmt.Errorf("%w: call depth at %s", ErrLimit, name)
	}
	e.m.depth++
	defer func() { e.m.depth-- }()

	callee := &exec{m: e.m}
	callee.push()
	for i, p := range fn.Params {
		callee.declare(p.Name, args[i].clone())
	}
	if fn.Body != nil {
		if _, err := callee.block(fn.Body); err != nil {
			return Value{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	if fn.ReturnType == nil {
		return Value{}, nil
	}
	return callee.ret, nil
}

func (e *exec) block(b *wgsl.BlockStmt) (flow, error) {
	e.push()
	defer e.pop()
	for _, s := range b.Statements {
		f, err := e.stmt(s)
		if err != nil || f != flowNext {
			return f, err
		}
	}
	return flowNext, nil
}

func (e *exec) stmt(s wgsl.Stmt) (flow, error) {
	switch s := s.(type) {
	case *wgsl.VarDecl:
		return flowNext, e.local(s.Name, s.Type, s.Init)
	case *wgsl.ConstDecl:
		return flowNext, e.local(s.Name, s.Type, s.Init)
	case *wgsl.ReturnStmt:
		e.ret = Value{}
		if s.Value != nil {
			v, err := e.eval(s.Value)
			if err != nil {
				return flowNext, err
			}
			e.ret = v
		}
		return flowReturn, nil
	case *wgsl.IfStmt:
		cond, err := e.eval(s.Condition)
		if err != nil {
			return flowNext, err
		}
		if cond.truthy() {
			return e.block(s.Body)
		}
		if s.Else != nil {
			return e.stmt(s.Else)
		}
		return flowNext, nil
	case *wgsl.BlockStmt:
		return e.block(s)
	case *wgsl.AssignStmt:
		return flowNext, e.assign(s)
	case *wgsl.ExprStmt:
		_, err := e.eval(s.Expr)
		return flowNext, err
	case *wgsl.ForStmt:
		return e.forLoop(s)
	case *wgsl.WhileStmt:
		return e.loop(s.Condition, s.Body, nil, nil)
	case *wgsl.LoopStmt:
		return e.loop(nil, s.Body, nil, s.Continuing)
	case *wgsl.BreakStmt:
		return flowBreak, nil
	case *wgsl.ContinueStmt:
		return flowContinue, nil
	default:
		return flowNext, fmt.Errorf("%w: statement %T", ErrUnsupported, s)
	}
}

func (e *exec) local(name string, t wgsl.Type, init wgsl.Expr) error {
	if init == nil {
		n, mat, ok := shapeOf(t)
		if !ok {
			return fmt.Errorf("%w: type of %s", ErrUnsupported, name)
		}
		e.declare(name, zero(n, mat))
		return nil
	}
	v, err := e.eval(init)
	if err != nil {
		return err
	}
	e.declare(name, v)
	return nil
}

func (e *exec) forLoop(s *wgsl.ForStmt) (flow, error) {
	e.push()
	defer e.pop()
	if s.Init != nil {
		if _, err := e.stmt(s.Init); err != nil {
			return flowNext, err
		}
	}
	return e.loop(s.Condition, s.Body, s.Update, nil)
}

func (e *exec) loop(cond wgsl.Expr, body *wgsl.BlockStmt, update wgsl.Stmt, continuing *wgsl.BlockStmt) (flow, error) {
	for i := 0; ; i++ {
		if i == maxIterations {
			return flowNext, fmt.Errorf("%w: loop ran %d iterations", ErrLimit, maxIterations)
		}
		if cond != nil {
			c, err := e.eval(cond)
			if err != nil {
				return flowNext, err
			}
			if !c.truthy() {
				return flowNext, nil
			}
		}
		f, err := e.block(body)
		if err != nil {
			return flowNext, err
		}
		switch f {
		case flowReturn:
			return f, nil
		case flowBreak:
			return flowNext, nil
		}
		if continuing != nil {
			if _, err := e.block(continuing); err != nil {
				return flowNext, err
			}
		}
		if update != nil {
			if _, err := e.stmt(update); err != nil {
				return flowNext, err
			}
		}
	}
}

var compound = map[wgsl.TokenKind]wgsl.TokenKind{
	wgsl.TokenPlusEqual:    wgsl.TokenPlus,
	wgsl.TokenMinusEqual:   wgsl.TokenMinus,
	wgsl.TokenStarEqual:    wgsl.TokenStar,
	wgsl.TokenSlashEqual:   wgsl.TokenSlash,
	wgsl.TokenPercentEqual: wgsl.TokenPercent,
}

func (e *exec) assign(s *wgsl.AssignStmt) error {
	rhs, err := e.eval(s.Right)
	if err != nil {
		return err
	}
	if s.Op != wgsl.TokenEqual {
		op, ok := compound[s.Op]
		if !ok {
			return fmt.Errorf("%w: assignment operator %s", ErrUnsupported, s.Op)
		}
		lhs, err := e.eval(s.Left)
		if err != nil {
			return err
		}
		if rhs, err = binary(op, lhs, rhs); err != nil {
			return err
		}
	}

	switch l := s.Left.(type) {
	case *wgsl.Ident:
		slot, ok := e.lookup(l.Name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUndefined, l.Name)
		}
		*slot = rhs
		return nil
	case *wgsl.MemberExpr:
		id, ok := l.Expr.(*wgsl.Ident)
		if !ok {
			break
		}
		slot, ok := e.lookup(id.Name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUndefined, id.Name)
		}
		idx, err := swizzleIndices(l.Member, slot.Len())
		if err != nil {
			return err
		}
		if rhs.Len() != len(idx) && rhs.Len() != 1 {
			return fmt.Errorf("%w: assign %d components to .%s", ErrType, rhs.Len(), l.Member)
		}
		for i, j := range idx {
			if rhs.Len() == 1 {
				slot.c[j] = rhs.c[0]
			} else {
				slot.c[j] = rhs.c[i]
			}
		}
		return nil
	case *wgsl.IndexExpr:
		id, ok := l.Expr.(*wgsl.Ident)
		if !ok {
			break
		}
		slot, ok := e.lookup(id.Name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUndefined, id.Name)
		}
		iv, err := e.eval(l.Index)
		if err != nil {
			return err
		}
		if iv.Len() != 1 {
			return fmt.Errorf("%w: index of %d components", ErrType, iv.Len())
		}
		i := int(iv.c[0])
		if i < 0 || i >= slot.Len() || rhs.Len() != 1 || slot.mat {
			return fmt.Errorf("%w: indexed assignment to %s", ErrType, id.Name)
		}
		slot.c[i] = rhs.c[0]
		return nil
	}
	return fmt.Errorf("%w: assignment target %T", ErrUnsupported, s.Left)
}

func (e *exec) eval(x wgsl.Expr) (Value, error) {
	switch x := x.(type) {
	case *wgsl.Literal:
		return literal(x)
	case *wgsl.Ident:
		if v, ok := e.lookup(x.Name); ok {
			return v.clone(), nil
		}
		if v, ok := e.m.consts[x.Name]; ok {
			return v.clone(), nil
		}
		return Value{}, fmt.Errorf("%w: %s", ErrUndefined, x.Name)
	case *wgsl.UnaryExpr:
		v, err := e.eval(x.Operand)
		if err != nil {
			return Value{}, err
		}
		switch x.Op {
		case wgsl.TokenMinus:
			out := v.clone()
			for i := range out.c {
				out.c[i] = -out.c[i]
			}
			return out, nil
		case wgsl.TokenBang:
			return boolValue(!v.truthy()), nil
		}
		return Value{}, fmt.Errorf("%w: unary %s", ErrUnsupported, x.Op)
	case *wgsl.BinaryExpr:
		return e.binaryExpr(x)
	case *wgsl.CallExpr:
		args, err := e.args(x.Args)
		if err != nil {
			return Value{}, err
		}
		name := x.Func.Name
		if n, mat, ok := shorthandShape(name); ok {
			return construct(n, mat, args)
		}
		if _, ok := e.m.funcs[name]; ok {
			return e.call(name, args)
		}
		if b, ok := builtins[name]; ok {
			return b(args)
		}
		return Value{}, fmt.Errorf("%w: function %s", ErrUndefined, name)
	case *wgsl.ConstructExpr:
		n, mat, ok := shapeOf(x.Type)
		if !ok {
			return Value{}, fmt.Errorf("%w: constructor %T", ErrUnsupported, x.Type)
		}
		args, err := e.args(x.Args)
		if err != nil {
			return Value{}, err
		}
		return construct(n, mat, args)
	case *wgsl.MemberExpr:
		if id, ok := x.Expr.(*wgsl.Ident); ok {
			if _, local := e.lookup(id.Name); !local {
				if b, ok := e.m.blocks[id.Name]; ok {
					v, ok := b.members[x.Member]
					if !ok {
						return Value{}, fmt.Errorf("%w: member %s.%s", ErrUndefined, id.Name, x.Member)
					}
					return v.clone(), nil
				}
			}
		}
		v, err := e.eval(x.Expr)
		if err != nil {
			return Value{}, err
		}
		return swizzle(v, x.Member)
	case *wgsl.IndexExpr:
		v, err := e.eval(x.Expr)
		if err != nil {
			return Value{}, err
		}
		iv, err := e.eval(x.Index)
		if err != nil {
			return Value{}, err
		}
		if iv.Len() != 1 {
			return Value{}, fmt.Errorf("%w: index of %d components", ErrType, iv.Len())
		}
		i := int(iv.c[0])
		if v.mat {
			if i < 0 || i >= 4 {
				return Value{}, fmt.Errorf("%w: column %d", ErrType, i)
			}
			return Vec(v.c[i*4 : i*4+4]...), nil
		}
		if i < 0 || i >= v.Len() {
			return Value{}, fmt.Errorf("%w: index %d of %d", ErrType, i, v.Len())
		}
		return Scalar(v.c[i]), nil
	default:
		return Value{}, fmt.Errorf("%w: expression %T", ErrUnsupported, x)
	}
}

func (e *exec) args(xs []wgsl.Expr) ([]Value, error) {
	out := make([]Value, len(xs))
	for i, a := range xs {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *exec) binaryExpr(x *wgsl.BinaryExpr) (Value, error) {
	l, err := e.eval(x.Left)
	if err != nil {
		return Value{}, err
	}
	switch x.Op {
	case wgsl.TokenAmpAmp:
		if !l.truthy() {
			return boolValue(false), nil
		}
		r, err := e.eval(x.Right)
		if err != nil {
			return Value{}, err
		}
		return boolValue(r.truthy()), nil
	case wgsl.TokenPipePipe:
		if l.truthy() {
			return boolValue(true), nil
		}
		r, err := e.eval(x.Right)
		if err != nil {
			return Value{}, err
		}
		return boolValue(r.truthy()), nil
	}
	r, err := e.eval(x.Right)
	if err != nil {
		return Value{}, err
	}
	return binary(x.Op, l, r)
}

func literal(x *wgsl.Literal) (Value, error) {
	if x.Kind == wgsl.TokenBoolLiteral {
		return boolValue(x.Value == "true"), nil
	}
	s := strings.TrimRight(x.Value, "fhiu")
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return Value{}, fmt.Errorf("%w: literal %q", ErrUnsupported, x.Value)
	}
	return Scalar(float32(f)), nil
}

// shapeOf returns the component count of an f32-based type.
func shapeOf(t wgsl.Type) (n int, mat bool, ok bool) {
	nt, isNamed := t.(*wgsl.NamedType)
	if !isNamed {
		return 0, false, false
	}
	if len(nt.TypeParams) > 0 {
		if p, ok := nt.TypeParams[0].(*wgsl.NamedType); !ok || p.Name != "f32" {
			return 0, false, false
		}
	}
	switch nt.Name {
	case "f32", "i32", "u32", "bool":
		return 1, false, true
	case "vec2":
		return 2, false, true
	case "vec3":
		return 3, false, true
	case "vec4":
		return 4, false, true
	case "mat4x4":
		return 16, true, true
	}
	return shorthandShape(nt.Name)
}

func shorthandShape(name string) (n int, mat bool, ok bool) {
	switch name {
	case "vec2f":
		return 2, false, true
	case "vec3f":
		return 3, false, true
	case "vec4f":
		return 4, false, true
	case "mat4x4f":
		return 16, true, true
	}
	return 0, false, false
}

func construct(n int, mat bool, args []Value) (Value, error) {
	if len(args) == 0 {
		return zero(n, mat), nil
	}
	var flat []float32
	for _, a := range args {
		flat = append(flat, a.c...)
	}
	if len(flat) == 1 && n > 1 && !mat {
		v := zero(n, false)
		for i := range v.c {
			v.c[i] = flat[0]
		}
		return v, nil
	}
	if len(flat) != n {
		return Value{}, fmt.Errorf("%w: constructor of %d components given %d", ErrType, n, len(flat))
	}
	return Value{c: flat, mat: mat}, nil
}

func swizzleIndices(sel string, n int) ([]int, error) {
	idx := make([]int, len(sel))
	for i, r := range sel {
		j := strings.IndexRune("xyzw", r)
		if j < 0 {
			j = strings.IndexRune("rgba", r)
		}
		if j < 0 || j >= n {
			return nil, fmt.Errorf("%w: swizzle .%s of %d components", ErrUndefined, sel, n)
		}
		idx[i] = j
	}
	if len(idx) == 0 || len(idx) > 4 {
		return nil, fmt.Errorf("%w: swizzle .%s", ErrUndefined, sel)
	}
	return idx, nil
}

func swizzle(v Value, sel string) (Value, error) {
	if v.mat {
		return Value{}, fmt.Errorf("%w: swizzle of a matrix", ErrType)
	}
	idx, err := swizzleIndices(sel, v.Len())
	if err != nil {
		return Value{}, err
	}
	out := zero(len(idx), false)
	for i, j := range idx {
		out.c[i] = v.c[j]
	}
	return out, nil
}
