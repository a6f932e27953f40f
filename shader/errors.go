// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when WGSL source cannot be parsed or does not
	// have the expected shape.
	ErrParse = errors.New("shader: invalid source")

	// ErrSignatureMismatch is returned when a function's signature does not
	// fit the hook or declaration it is attached to.
	ErrSignatureMismatch = errors.New("shader: signature mismatch")

	// ErrTypeMismatch is returned when a bound value's type does not match
	// the declared input type.
	ErrTypeMismatch = errors.New("shader: type mismatch")

	// ErrUnknownParameter is returned when binding or declaring a name the
	// source does not reference.
	ErrUnknownParameter = errors.New("shader: unknown parameter")

	// ErrCyclicDependency is returned when a function depends on itself
	// through its bindings or chains.
	ErrCyclicDependency = errors.New("shader: cyclic dependency")

	// ErrLink is matched by every *LinkError.
	ErrLink = errors.New("shader: link failed")
)

// LinkError reports a placeholder that could not be resolved.
type LinkError struct {
	// Stage is the unit being linked.
	Stage Stage

	// Function is the name of the function or template holding the reference.
	Function string

	// Reference is the placeholder name.
	Reference string

	// Reason says why the reference did not resolve.
	Reason string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("shader: %s unit: unresolved reference '%s' in %s: %s",
		e.Stage, e.Reference, e.Function, e.Reason)
}

// Unwrap lets errors.Is match ErrLink.
func (e *LinkError) Unwrap() error { return ErrLink }
