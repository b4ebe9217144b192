// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package order models the dual natural/constrained sequencing key used to
// decide the emission order of schema objects and changes.
//
// Every object carries a natural three-part rank assigned from its
// declaration position: the source rank (which description file it came
// from), the group rank (the nesting group within the file, or an explicit
// override), and the sequence rank (position within the group). On top of
// the natural rank, an object may declare free-form "occurs before" and
// "occurs after" labels that constrain the final ordering relative to other
// named items or to abstract concepts.
package order

import (
	"fmt"
	"strings"

	"github.com/juju/collections/set"
)

// Order is an immutable sequencing key. The zero value is the first
// natural position with no constraints.
type Order struct {
	source   int
	group    int
	sequence int
	before   set.Strings
	after    set.Strings
}

// New returns an Order with the given natural rank and occurs-before /
// occurs-after label constraints. Labels are normalized with CleanLabel;
// labels that normalize to nothing are dropped.
func New(source, group, sequence int, before, after []string) Order {
	return Order{
		source:   source,
		group:    group,
		sequence: sequence,
		before:   cleanLabels(before),
		after:    cleanLabels(after),
	}
}

// Source returns the source rank: the position of the originating
// description source among all parsed sources.
func (o Order) Source() int {
	return o.source
}

// Group returns the group rank within the source.
func (o Order) Group() int {
	return o.group
}

// Sequence returns the sequence rank within the group.
func (o Order) Sequence() int {
	return o.sequence
}

// Items returns the natural rank triple.
func (o Order) Items() [3]int {
	return [3]int{o.source, o.group, o.sequence}
}

// OccursBefore returns the labels this order must precede, sorted.
func (o Order) OccursBefore() []string {
	if o.before == nil {
		return nil
	}
	return o.before.SortedValues()
}

// OccursAfter returns the labels this order must follow, sorted.
func (o Order) OccursAfter() []string {
	if o.after == nil {
		return nil
	}
	return o.after.SortedValues()
}

// Compare returns a negative number, zero, or a positive number when o
// sorts before, equal to, or after other by the natural rank alone.
// The occurs-before/occurs-after constraints play no part here; they are
// honoured only by Sort and FullSort.
func (o Order) Compare(other Order) int {
	if d := o.source - other.source; d != 0 {
		return d
	}
	if d := o.group - other.group; d != 0 {
		return d
	}
	return o.sequence - other.sequence
}

// Less reports whether o naturally sorts before other.
func (o Order) Less(other Order) bool {
	return o.Compare(other) < 0
}

// String returns the natural rank in "(source, group, sequence)" form.
func (o Order) String() string {
	return fmt.Sprintf("(%d, %d, %d)", o.source, o.group, o.sequence)
}

// CleanLabel normalizes a constraint label: every character that is not
// alphanumeric or '.' is stripped, and the remainder is lower-cased.
// It returns the empty string if nothing survives.
func CleanLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

func cleanLabels(labels []string) set.Strings {
	cleaned := set.NewStrings()
	for _, label := range labels {
		if c := CleanLabel(label); c != "" {
			cleaned.Add(c)
		}
	}
	return cleaned
}
