// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema

import (
	"strings"

	"github.com/juju/schemadiff/core/order"
)

// Kind identifies the kind of schema object. The variant set is
// closed: tables, views, columns and constraints.
type Kind string

const (
	TableKind      Kind = "table"
	ViewKind       Kind = "view"
	ColumnKind     Kind = "column"
	ConstraintKind Kind = "constraint"
)

// Kinds lists every recognized schema object kind.
var Kinds = []Kind{TableKind, ViewKind, ColumnKind, ConstraintKind}

// ParseKind maps a schema object kind name from a schema description
// to its Kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if name == string(k) {
			return k, true
		}
	}
	return "", false
}

// Object is a named, versioned schema unit that may carry authored
// changes and nested sub-objects. It is a closed union: the only
// implementations are Table, View, Column and Constraint.
type Object interface {
	// Order returns the declaration-position sequencing key.
	Order() order.Order

	// Comment returns the author's comment, if any.
	Comment() string

	// Kind returns the object's kind.
	Kind() Kind

	// Name returns the simple name of the object.
	Name() string

	// FullName returns the full, unique name of the object. This is
	// the key the upgrade diff matches objects by.
	FullName() string

	// Changes returns the authored changes that upgrade this object
	// from the previous version.
	Changes() []Change

	// Constraints returns the constraints attached to the object.
	Constraints() []*Constraint

	// SubSchema returns the nested objects, allowing recursive
	// inspection for changes.
	SubSchema() []Object

	schemaObject()
}

// Label returns the constraint label other objects can use to order
// themselves relative to o.
func Label(o Object) string {
	return order.CleanLabel(o.FullName())
}

// HasAnyChanges reports whether o or any of its nested objects carries
// an authored change.
func HasAnyChanges(o Object) bool {
	if len(o.Changes()) > 0 {
		return true
	}
	for _, sub := range o.SubSchema() {
		if HasAnyChanges(sub) {
			return true
		}
	}
	return false
}

// FullName joins name parts into a full object name. Missing parts are
// kept as empty components so that names from different sources always
// line up part for part.
func FullName(parts ...string) string {
	return strings.Join(parts, ".")
}

type objectBase struct {
	order   order.Order
	comment string
	changes []Change
}

func (o *objectBase) Order() order.Order {
	return o.order
}

func (o *objectBase) Comment() string {
	return o.comment
}

func (o *objectBase) Changes() []Change {
	return o.changes
}

func (o *objectBase) schemaObject() {}

// ValueKind identifies how a column value is expressed.
type ValueKind string

const (
	StringValue   ValueKind = "string"
	NumericValue  ValueKind = "numeric"
	BooleanValue  ValueKind = "boolean"
	DateValue     ValueKind = "date"
	ComputedValue ValueKind = "computed"
)

// Value is a literal or computed column value, used for defaults and
// constant columns.
type Value struct {
	kind     ValueKind
	text     string
	computed *SQLSet
}

// NewValue returns a literal value of the given kind with its textual
// rendering.
func NewValue(kind ValueKind, text string) *Value {
	return &Value{kind: kind, text: text}
}

// NewComputedValue returns a value computed by SQL.
func NewComputedValue(sql *SQLSet) *Value {
	return &Value{kind: ComputedValue, computed: sql}
}

// Kind returns how the value is expressed.
func (v *Value) Kind() ValueKind {
	return v.kind
}

// Text returns the literal rendering of the value. It is empty for
// computed values.
func (v *Value) Text() string {
	return v.text
}

// Computed returns the SQL for a computed value, or nil.
func (v *Value) Computed() *SQLSet {
	return v.computed
}
