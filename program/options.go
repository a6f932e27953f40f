// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

// DefaultCacheSize is the number of linked programs a Builder keeps.
const DefaultCacheSize = 16

// Validation selects how linked units are checked before they reach the
// GPU.
type Validation uint8

const (
	// ValidateParse parses both units with naga. This is the default.
	ValidateParse Validation = iota

	// ValidateNone hands the units to the context unchecked.
	ValidateNone

	// ValidateIR also lowers both units to naga IR and validates it.
	ValidateIR
)

var validationNames = [...]string{
	ValidateParse: "parse",
	ValidateNone:  "none",
	ValidateIR:    "ir",
}

// String returns the validation level name.
func (v Validation) String() string {
	if int(v) < len(validationNames) {
		return validationNames[v]
	}
	return "Unknown"
}

// ParseValidation returns the level named s.
func ParseValidation(s string) (Validation, bool) {
	for i, n := range validationNames {
		if n == s {
			return Validation(i), true
		}
	}
	return ValidateParse, false
}

type options struct {
	cacheSize  int
	validation Validation
}

func defaultOptions() options {
	return options{
		cacheSize:  DefaultCacheSize,
		validation: ValidateParse,
	}
}

// Option configures a Builder.
type Option func(*options)

// WithCacheSize sets how many linked programs the Builder keeps.
// Values below 1 fall back to DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultCacheSize
		}
		o.cacheSize = n
	}
}

// WithValidation sets the check applied to linked units.
func WithValidation(v Validation) Option {
	return func(o *options) {
		o.validation = v
	}
}
