// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema

import (
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/order"
)

// Columnar is implemented by the schema objects that carry columns:
// tables and views.
type Columnar interface {
	Object

	// Catalog returns the catalog part of the object's name.
	Catalog() string

	// Schema returns the schema part of the object's name.
	Schema() string

	// Columns returns the object's columns in declaration order.
	Columns() []*Column

	// Column returns the named column, or nil.
	Column(name string) *Column
}

type columnarBase struct {
	objectBase
	catalog     string
	schemaName  string
	name        string
	columns     []*Column
	constraints []*Constraint
}

func (c *columnarBase) Name() string {
	return c.name
}

func (c *columnarBase) FullName() string {
	return FullName(c.catalog, c.schemaName, c.name)
}

func (c *columnarBase) Catalog() string {
	return c.catalog
}

func (c *columnarBase) Schema() string {
	return c.schemaName
}

func (c *columnarBase) Columns() []*Column {
	return c.columns
}

func (c *columnarBase) Column(name string) *Column {
	for _, col := range c.columns {
		if col.Name() == name {
			return col
		}
	}
	return nil
}

func (c *columnarBase) Constraints() []*Constraint {
	return c.constraints
}

func (c *columnarBase) SubSchema() []Object {
	ret := make([]Object, 0, len(c.columns)+len(c.constraints))
	for _, col := range c.columns {
		ret = append(ret, col)
	}
	for _, con := range c.constraints {
		ret = append(ret, con)
	}
	return ret
}

// Table is a database table definition.
type Table struct {
	columnarBase
	tableSpace string
}

// TableArgs holds the construction arguments for a Table.
type TableArgs struct {
	Order       order.Order
	Comment     string
	Catalog     string
	Schema      string
	Name        string
	TableSpace  string
	Columns     []*Column
	Constraints []*Constraint
	Changes     []Change
}

// NewTable returns a Table with the given definition.
func NewTable(args TableArgs) (*Table, error) {
	if args.Name == "" {
		return nil, errors.NotValidf("table without a name")
	}
	return &Table{
		columnarBase: columnarBase{
			objectBase: objectBase{
				order:   args.Order,
				comment: args.Comment,
				changes: args.Changes,
			},
			catalog:     args.Catalog,
			schemaName:  args.Schema,
			name:        args.Name,
			columns:     args.Columns,
			constraints: args.Constraints,
		},
		tableSpace: args.TableSpace,
	}, nil
}

// Kind returns TableKind.
func (t *Table) Kind() Kind {
	return TableKind
}

// TableSpace returns the storage area for the table, if authored.
func (t *Table) TableSpace() string {
	return t.tableSpace
}

// View is a database view definition.
type View struct {
	columnarBase
	replaceIfExists bool
	selectQuery     *SQLSet
}

// ViewArgs holds the construction arguments for a View.
type ViewArgs struct {
	Order           order.Order
	Comment         string
	Catalog         string
	Schema          string
	Name            string
	ReplaceIfExists bool

	// SelectQuery is the per-platform query the view selects from.
	SelectQuery *SQLSet

	Columns     []*Column
	Constraints []*Constraint
	Changes     []Change
}

// NewView returns a View with the given definition.
func NewView(args ViewArgs) (*View, error) {
	if args.Name == "" {
		return nil, errors.NotValidf("view without a name")
	}
	if args.SelectQuery == nil {
		return nil, errors.NotValidf("view %q without a select query", args.Name)
	}
	return &View{
		columnarBase: columnarBase{
			objectBase: objectBase{
				order:   args.Order,
				comment: args.Comment,
				changes: args.Changes,
			},
			catalog:     args.Catalog,
			schemaName:  args.Schema,
			name:        args.Name,
			columns:     args.Columns,
			constraints: args.Constraints,
		},
		replaceIfExists: args.ReplaceIfExists,
		selectQuery:     args.SelectQuery,
	}, nil
}

// Kind returns ViewKind.
func (v *View) Kind() Kind {
	return ViewKind
}

// ReplaceIfExists reports whether creation should replace an existing
// view.
func (v *View) ReplaceIfExists() bool {
	return v.replaceIfExists
}

// SelectQuery returns the per-platform query the view selects from.
func (v *View) SelectQuery() *SQLSet {
	return v.selectQuery
}
