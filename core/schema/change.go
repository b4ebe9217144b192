// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema

import (
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/order"
)

// ChangeKind identifies the kind of authored change.
type ChangeKind string

const (
	AddChange    ChangeKind = "add"
	RemoveChange ChangeKind = "remove"
	RenameChange ChangeKind = "rename"
	AlterChange  ChangeKind = "alter"
	SQLKind      ChangeKind = "sql"
)

// ChangeKinds lists every recognized change kind.
var ChangeKinds = []ChangeKind{
	AddChange, RemoveChange, RenameChange, AlterChange, SQLKind,
}

// ParseChangeKind maps a change kind name from a schema description to
// its ChangeKind.
func ParseChangeKind(name string) (ChangeKind, error) {
	for _, k := range ChangeKinds {
		if name == string(k) {
			return k, nil
		}
	}
	return "", errors.NotValidf("change kind %q", name)
}

// Change is an authored delta transforming the previous version of a
// schema object into the current one. It is a closed union: the only
// implementations are SchemaChange and SQLChange.
type Change interface {
	// Order returns the declaration-position sequencing key.
	Order() order.Order

	// Comment returns the author's comment, if any.
	Comment() string

	// Target returns the kind of schema object the change applies to.
	Target() Kind

	// Kind returns the kind of change performed.
	Kind() ChangeKind

	// Affects names the schema objects this change impacts.
	Affects() []string

	change()
}

type changeBase struct {
	order   order.Order
	comment string
	target  Kind
	affects []string
}

func (c *changeBase) Order() order.Order {
	return c.order
}

func (c *changeBase) Comment() string {
	return c.comment
}

func (c *changeBase) Target() Kind {
	return c.target
}

func (c *changeBase) Affects() []string {
	return c.affects
}

func (c *changeBase) change() {}

// SchemaChange is a structural change (add, remove, rename or alter)
// that needs no explicit SQL to perform. Remove and rename changes
// carry the name of the object in the previous version.
type SchemaChange struct {
	changeBase
	kind         ChangeKind
	previousName string
}

// NewSchemaChange returns a SchemaChange of the given kind targeting
// the given object kind. previousName is required for remove and
// rename changes and forbidden for the rest.
func NewSchemaChange(
	o order.Order, comment string, target Kind, kind ChangeKind,
	previousName string, affects []string,
) (*SchemaChange, error) {
	switch kind {
	case AddChange, AlterChange:
		if previousName != "" {
			return nil, errors.NotValidf("previous name on %s change", kind)
		}
	case RemoveChange, RenameChange:
		if previousName == "" {
			return nil, errors.NotValidf("%s change without previous name", kind)
		}
	default:
		return nil, errors.NotValidf("schema change kind %q", kind)
	}
	if previousName != "" && !contains(affects, previousName) {
		affects = append(append([]string{}, affects...), previousName)
	}
	return &SchemaChange{
		changeBase:   changeBase{order: o, comment: comment, target: target, affects: affects},
		kind:         kind,
		previousName: previousName,
	}, nil
}

// Kind returns the kind of change performed.
func (c *SchemaChange) Kind() ChangeKind {
	return c.kind
}

// PreviousName returns the name the changed object had in the previous
// version. It is empty unless the kind is remove or rename.
func (c *SchemaChange) PreviousName() string {
	return c.previousName
}

// SQLChange is an explicit set of SQL instructions to run to perform
// the change.
type SQLChange struct {
	changeBase
	sql *SQLSet
}

// NewSQLChange returns a SQLChange carrying the given SQL set.
func NewSQLChange(
	o order.Order, comment string, target Kind, sql *SQLSet, affects []string,
) (*SQLChange, error) {
	if sql == nil {
		return nil, errors.NotValidf("sql change without sql")
	}
	return &SQLChange{
		changeBase: changeBase{order: o, comment: comment, target: target, affects: affects},
		sql:        sql,
	}, nil
}

// Kind returns SQLKind.
func (c *SQLChange) Kind() ChangeKind {
	return SQLKind
}

// SQL returns the per-platform SQL for the change.
func (c *SQLChange) SQL() *SQLSet {
	return c.sql
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
