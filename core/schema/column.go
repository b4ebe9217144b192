// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema

import (
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/order"
)

// Column is a column definition within a table or view.
type Column struct {
	objectBase
	name          string
	valueType     string
	dataType      string
	value         *Value
	defaultValue  *Value
	autoIncrement bool
	remarks       string
	position      int
	constraints   []*Constraint
}

// ColumnArgs holds the construction arguments for a Column.
type ColumnArgs struct {
	Order   order.Order
	Comment string
	Name    string

	// ValueType is the abstract type of the column as authored.
	ValueType string

	// DataType is the concrete database type. Defaults to ValueType.
	DataType string

	// Value is a constant value for the column, if any.
	Value *Value

	// DefaultValue is the value used when an insert omits the column.
	DefaultValue *Value

	AutoIncrement bool
	Remarks       string

	// Position is the authored ordinal of the column, or -1 when the
	// declaration order decides.
	Position int

	Constraints []*Constraint
	Changes     []Change
}

// NewColumn returns a Column with the given definition.
func NewColumn(args ColumnArgs) (*Column, error) {
	if args.Name == "" {
		return nil, errors.NotValidf("column without a name")
	}
	if args.ValueType == "" {
		return nil, errors.NotValidf("column %q without a value type", args.Name)
	}
	dataType := args.DataType
	if dataType == "" {
		dataType = args.ValueType
	}
	return &Column{
		objectBase: objectBase{
			order:   args.Order,
			comment: args.Comment,
			changes: args.Changes,
		},
		name:          args.Name,
		valueType:     args.ValueType,
		dataType:      dataType,
		value:         args.Value,
		defaultValue:  args.DefaultValue,
		autoIncrement: args.AutoIncrement,
		remarks:       args.Remarks,
		position:      args.Position,
		constraints:   args.Constraints,
	}, nil
}

// Kind returns ColumnKind.
func (c *Column) Kind() Kind {
	return ColumnKind
}

// Name returns the column name.
func (c *Column) Name() string {
	return c.name
}

// FullName returns the diff matching key for the column. Columns are
// matched within their parent, so the simple name suffices.
func (c *Column) FullName() string {
	return c.name
}

// ValueType returns the abstract column type as authored.
func (c *Column) ValueType() string {
	return c.valueType
}

// DataType returns the concrete database type.
func (c *Column) DataType() string {
	return c.dataType
}

// Value returns the constant value of the column, or nil.
func (c *Column) Value() *Value {
	return c.value
}

// DefaultValue returns the column default, or nil.
func (c *Column) DefaultValue() *Value {
	return c.defaultValue
}

// AutoIncrement reports whether the column self-increments.
func (c *Column) AutoIncrement() bool {
	return c.autoIncrement
}

// Remarks returns the authored remarks for the column.
func (c *Column) Remarks() string {
	return c.remarks
}

// Position returns the authored ordinal of the column, or -1.
func (c *Column) Position() int {
	return c.position
}

// Constraints returns the column-level constraints.
func (c *Column) Constraints() []*Constraint {
	return c.constraints
}

// SubSchema returns the column-level constraints.
func (c *Column) SubSchema() []Object {
	ret := make([]Object, len(c.constraints))
	for i, con := range c.constraints {
		ret[i] = con
	}
	return ret
}
