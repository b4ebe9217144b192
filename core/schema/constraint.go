// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema

import (
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/order"
)

// constraintTypes is the closed set of recognized constraint type
// names, after normalization.
var constraintTypes = set.NewStrings(
	"key",
	"primarykey",
	"fulltextkey",
	"uniquekey",
	"spatialkey",
	"foreignkey",
	"uniqueindex",
	"index",
	"primaryindex",
	"fulltextindex",
	"spatialindex",
	"codeindex",
	"codeforeignkey",
	"initialvalue",
	"noupdate",
	"notread",
	"constantquery",
	"constantupdate", "updatevalue",
	"restrictquery",
	"notnull",
	"nullable",
	"validatewrite", "validate",
	"valuerestriction",
	"createrestriction",
	"updaterestriction",
	"updaterequired", "requiredupdate",

	// Placeholder for a constraint dropped by the upgrade.
	"removed",
)

// NormalizeConstraintType strips separators and case from a constraint
// type name.
func NormalizeConstraintType(name string) string {
	name = strings.ToLower(name)
	for _, c := range []string{" ", "\r", "\n", "\t", "_", "-"} {
		name = strings.ReplaceAll(name, c, "")
	}
	return name
}

// Constraint is a limitation on a schema object: a key, an index, a
// nullability rule, or a platform- or code-level restriction.
type Constraint struct {
	objectBase
	ctype       string
	name        string
	columnNames []string
	details     map[string]string
	sql         *SQLSet
}

// ConstraintArgs holds the construction arguments for a Constraint.
type ConstraintArgs struct {
	Order   order.Order
	Comment string

	// Type is the constraint type name, for example "primary key".
	Type string

	// Name optionally names the constraint in the database.
	Name string

	// ColumnNames lists the columns the constraint covers.
	ColumnNames []string

	// Details carries additional type-specific information.
	Details map[string]string

	// SQL optionally carries the constraint's SQL expression.
	SQL *SQLSet

	Changes []Change
}

// NewConstraint returns a Constraint of the given type. The type name
// is normalized and must be one of the recognized constraint types.
func NewConstraint(args ConstraintArgs) (*Constraint, error) {
	ctype := NormalizeConstraintType(args.Type)
	if !constraintTypes.Contains(ctype) {
		return nil, errors.NotValidf("constraint type %q", args.Type)
	}
	return &Constraint{
		objectBase: objectBase{
			order:   args.Order,
			comment: args.Comment,
			changes: args.Changes,
		},
		ctype:       ctype,
		name:        args.Name,
		columnNames: args.ColumnNames,
		details:     args.Details,
		sql:         args.SQL,
	}, nil
}

// Kind returns ConstraintKind.
func (c *Constraint) Kind() Kind {
	return ConstraintKind
}

// Name returns the constraint type name; constraints are matched
// across versions by type rather than by a database name.
func (c *Constraint) Name() string {
	return c.ctype
}

// FullName returns the diff matching key for the constraint.
func (c *Constraint) FullName() string {
	return c.ctype
}

// Type returns the normalized constraint type name.
func (c *Constraint) Type() string {
	return c.ctype
}

// ConstraintName returns the database-level name of the constraint,
// if one was given.
func (c *Constraint) ConstraintName() string {
	return c.name
}

// ColumnNames returns the columns the constraint covers, in authored
// order.
func (c *Constraint) ColumnNames() []string {
	return c.columnNames
}

// Details returns additional type-specific information, for example
// the foreign table of a foreign key.
func (c *Constraint) Details() map[string]string {
	return c.details
}

// SQL returns the constraint's SQL expression, or nil.
func (c *Constraint) SQL() *SQLSet {
	return c.sql
}

// Constraints returns nothing: constraints do not nest.
func (c *Constraint) Constraints() []*Constraint {
	return nil
}

// SubSchema returns nothing: constraints do not nest.
func (c *Constraint) SubSchema() []Object {
	return nil
}
