// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package version models the version history of a schema package: the
// Dewey-decimal version numbers, the parsed versions, and the branch
// forest that relates successive versions to each other.
package version

import (
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Number is a Dewey-decimal schema version number: a sequence of
// non-negative integers such as 1, 1.2 or 2.0.3.
type Number struct {
	parts []int
}

// NewNumber returns the version number with the given components.
func NewNumber(parts ...int) (Number, error) {
	if len(parts) == 0 {
		return Number{}, errors.NotValidf("version number with no components")
	}
	for _, p := range parts {
		if p < 0 {
			return Number{}, errors.NotValidf("negative version component %d", p)
		}
	}
	owned := make([]int, len(parts))
	copy(owned, parts)
	return Number{parts: owned}, nil
}

// MustNumber is NewNumber for statically known inputs; it panics on a
// malformed number.
func MustNumber(parts ...int) Number {
	n, err := NewNumber(parts...)
	if err != nil {
		panic(err)
	}
	return n
}

// IsZero reports whether n is the zero Number, which is not a valid
// version.
func (n Number) IsZero() bool {
	return len(n.parts) == 0
}

// Parts returns the components of the number.
func (n Number) Parts() []int {
	ret := make([]int, len(n.parts))
	copy(ret, n.parts)
	return ret
}

// Depth returns the number of components.
func (n Number) Depth() int {
	return len(n.parts)
}

// Compare returns a negative number, zero, or a positive number when n
// is an earlier, equal, or later version than other.
//
// Comparison is component-wise over the common depth. When one number
// is a prefix of the other, the longer number is the EARLIER one:
// 1.2.3 sorts before 1.2. Surprising, but long-standing behaviour that
// authored version trees rely on.
func (n Number) Compare(other Number) int {
	for i := 0; i < len(n.parts) && i < len(other.parts); i++ {
		if d := n.parts[i] - other.parts[i]; d != 0 {
			return d
		}
	}
	return len(other.parts) - len(n.parts)
}

// IsParentDecimalOf reports whether other extends n with further
// components: 1.2 is a parent decimal of 1.2.1.
func (n Number) IsParentDecimalOf(other Number) bool {
	if other.Depth() <= n.Depth() {
		return false
	}
	for i, p := range n.parts {
		if other.parts[i] != p {
			return false
		}
	}
	return true
}

// String returns the dotted form of the number.
func (n Number) String() string {
	parts := make([]string, len(n.parts))
	for i, p := range n.parts {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}
