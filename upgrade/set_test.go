// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package upgrade_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/schemadiff/core/order"
	"github.com/juju/schemadiff/core/schema"
	"github.com/juju/schemadiff/upgrade"
)

var _ = gc.Suite(&setSuite{})

type setSuite struct{}

func column(c *gc.C, name string, changes ...schema.Change) *schema.Column {
	col, err := schema.NewColumn(schema.ColumnArgs{
		Name:      name,
		ValueType: "int",
		Position:  -1,
		Changes:   changes,
	})
	c.Assert(err, jc.ErrorIsNil)
	return col
}

func table(c *gc.C, name string, cols []*schema.Column, changes ...schema.Change) *schema.Table {
	t, err := schema.NewTable(schema.TableArgs{
		Name:    name,
		Columns: cols,
		Changes: changes,
	})
	c.Assert(err, jc.ErrorIsNil)
	return t
}

func view(c *gc.C, name string, changes ...schema.Change) *schema.View {
	sql, err := schema.UniversalSQL("SELECT 1")
	c.Assert(err, jc.ErrorIsNil)
	v, err := schema.NewView(schema.ViewArgs{
		Name:        name,
		SelectQuery: sql,
		Changes:     changes,
	})
	c.Assert(err, jc.ErrorIsNil)
	return v
}

func schemaChange(c *gc.C, target schema.Kind, kind schema.ChangeKind, previous string) *schema.SchemaChange {
	ch, err := schema.NewSchemaChange(order.Order{}, "", target, kind, previous, nil)
	c.Assert(err, jc.ErrorIsNil)
	return ch
}

func sqlChange(c *gc.C, target schema.Kind, text string) *schema.SQLChange {
	sql, err := schema.UniversalSQL(text)
	c.Assert(err, jc.ErrorIsNil)
	ch, err := schema.NewSQLChange(order.Order{}, "", target, sql, nil)
	c.Assert(err, jc.ErrorIsNil)
	return ch
}

func elements(items ...upgrade.Element) []upgrade.Element {
	return items
}

func messages(problems []upgrade.Problem) []string {
	ret := make([]string, len(problems))
	for i, p := range problems {
		ret[i] = p.Message()
	}
	return ret
}

func (s *setSuite) TestIdenticalTablesHaveNoChanges(c *gc.C) {
	before := table(c, "users", []*schema.Column{column(c, "id"), column(c, "name")})
	after := table(c, "users", []*schema.Column{column(c, "id"), column(c, "name")})

	set, err := upgrade.NewSet(
		[]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(set.Analyses(), gc.HasLen, 1)
	c.Check(set.Analyses()[0].HasChanges(), jc.IsFalse)
	c.Check(set.HasChanges(), jc.IsFalse)
	c.Check(set.Errors(), gc.HasLen, 0)
	c.Check(set.Warnings(), gc.HasLen, 0)
}

func (s *setSuite) TestRenameMatchesPreviousName(c *gc.C) {
	before := table(c, "old", nil)
	after := table(c, "new", nil, schemaChange(c, schema.TableKind, schema.RenameChange, "..old"))

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(set.Analyses(), gc.HasLen, 1)
	a := set.Analyses()[0]
	c.Check(a.Before(), gc.Equals, schema.Object(before))
	c.Check(a.After(), gc.Equals, schema.Object(after))
	c.Check(a.HasChanges(), jc.IsTrue)
	c.Check(set.Errors(), gc.HasLen, 0)
	c.Check(set.Warnings(), gc.HasLen, 0)
}

func (s *setSuite) TestExplicitRemoveConsumesTarget(c *gc.C) {
	before := table(c, "legacy", nil)
	remove := schemaChange(c, schema.TableKind, schema.RemoveChange, "..legacy")

	set, err := upgrade.NewSet([]schema.Object{before}, elements(remove))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(set.Analyses(), gc.HasLen, 1)
	a := set.Analyses()[0]
	c.Check(a.IsRemoval(), jc.IsTrue)
	c.Check(a.Removal(), gc.Equals, schema.Change(remove))
	c.Check(set.Warnings(), gc.HasLen, 0)
}

func (s *setSuite) TestRemoveWithoutTargetIsError(c *gc.C) {
	remove := schemaChange(c, schema.TableKind, schema.RemoveChange, "ghost")

	set, err := upgrade.NewSet(nil, elements(remove))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set.Analyses(), gc.HasLen, 0)
	c.Check(messages(set.Errors()), jc.DeepEquals,
		[]string{"remove change has no known previous object"})
}

func (s *setSuite) TestLeftoverBecomesSynthesizedRemoval(c *gc.C) {
	before := table(c, "old", nil)

	set, err := upgrade.NewSet([]schema.Object{before}, nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(set.Analyses(), gc.HasLen, 1)
	a := set.Analyses()[0]
	c.Check(a.IsRemoval(), jc.IsTrue)
	c.Check(a.Before(), gc.Equals, schema.Object(before))
	c.Check(messages(set.Warnings()), jc.DeepEquals, []string{
		"no explicit removal for ..old",
		"implicit removal of object",
	})
}

func (s *setSuite) TestFreshObjectIsImplicitAdd(c *gc.C) {
	after := table(c, "users", nil)

	set, err := upgrade.NewSet(nil, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(set.Analyses(), gc.HasLen, 1)
	a := set.Analyses()[0]
	c.Check(a.IsAddition(), jc.IsTrue)
	c.Check(messages(set.Warnings()), jc.DeepEquals, []string{"implicit add"})
}

func (s *setSuite) TestDeclaredAddIsNotWarned(c *gc.C) {
	after := table(c, "users", nil, schemaChange(c, schema.TableKind, schema.AddChange, ""))

	set, err := upgrade.NewSet(nil, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set.Warnings(), gc.HasLen, 0)
	c.Check(set.Errors(), gc.HasLen, 0)
}

func (s *setSuite) TestDuplicateBeforeNamesReported(c *gc.C) {
	one := table(c, "users", nil)
	two := table(c, "users", nil)

	set, err := upgrade.NewSet([]schema.Object{one, two}, nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Errors()), jc.DeepEquals,
		[]string{"duplicate name", "duplicate name"})
	// Matching continues with the first-seen entry.
	c.Check(set.Analyses(), gc.HasLen, 1)
}

func (s *setSuite) TestStandAloneSQLChange(c *gc.C) {
	ch := sqlChange(c, schema.TableKind, "ANALYZE TABLE users")

	set, err := upgrade.NewSet(nil, elements(ch))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set.Analyses(), gc.HasLen, 0)
	c.Assert(set.StandAloneChanges(), gc.HasLen, 1)
	c.Check(set.StandAloneChanges()[0], gc.Equals, schema.Change(ch))
	c.Check(set.HasChanges(), jc.IsTrue)
}

func (s *setSuite) TestNonRemoveSchemaChangeIsStandAlone(c *gc.C) {
	ch := schemaChange(c, schema.TableKind, schema.AlterChange, "")

	set, err := upgrade.NewSet(nil, elements(ch))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set.Analyses(), gc.HasLen, 0)
	c.Check(set.StandAloneChanges(), gc.HasLen, 1)
}

func (s *setSuite) TestInvalidElementIsFatal(c *gc.C) {
	_, err := upgrade.NewSet(nil, elements(badElement{}))
	c.Assert(err, gc.ErrorMatches, `invalid object upgrade_test.badElement in upgrade set`)
}

type badElement struct{}

func (badElement) Order() order.Order {
	return order.Order{}
}

func (s *setSuite) TestTableToViewIsError(c *gc.C) {
	before := table(c, "thing", nil)
	after := view(c, "thing")

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Errors()), jc.DeepEquals,
		[]string{"cannot upgrade directly from a table to a view"})
}

func (s *setSuite) TestViewToTableIsError(c *gc.C) {
	before := view(c, "thing")
	after := table(c, "thing", nil)

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Errors()), jc.DeepEquals,
		[]string{"cannot upgrade directly from a view to a table"})
}

func (s *setSuite) TestMixedStructuralAndAlterIsError(c *gc.C) {
	after := table(c, "users", nil,
		schemaChange(c, schema.TableKind, schema.RenameChange, "..old"),
		schemaChange(c, schema.TableKind, schema.AlterChange, ""),
	)
	before := table(c, "old", nil)

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Errors()), jc.DeepEquals, []string{
		"at most 1 of an add, remove, or rename is allowed, " +
			"and it cannot be done with an alter or sql change",
	})
}

func (s *setSuite) TestRepeatedRenameIsError(c *gc.C) {
	after := table(c, "users", nil,
		schemaChange(c, schema.TableKind, schema.RenameChange, "..old"),
		schemaChange(c, schema.TableKind, schema.RenameChange, "..older"),
	)
	before := table(c, "old", nil)

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Errors()), jc.DeepEquals, []string{
		"at most 1 rename is allowed",
		"at most 1 of an add, remove, or rename is allowed, " +
			"and it cannot be done with an alter or sql change",
	})
}

func (s *setSuite) TestFreshObjectWithAlterIsError(c *gc.C) {
	after := table(c, "users", nil, schemaChange(c, schema.TableKind, schema.AlterChange, ""))

	set, err := upgrade.NewSet(nil, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Errors()), jc.DeepEquals,
		[]string{"can only add due to no previous version found"})
	c.Check(messages(set.Warnings()), jc.DeepEquals, []string{"implicit add"})
}

func (s *setSuite) TestColumnDiffRecurses(c *gc.C) {
	before := table(c, "users", []*schema.Column{column(c, "id"), column(c, "age")})
	after := table(c, "users", []*schema.Column{
		column(c, "id"),
		column(c, "years", schemaChange(c, schema.ColumnKind, schema.RenameChange, "age")),
	})

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(set.Analyses(), gc.HasLen, 1)
	a := set.Analyses()[0]
	c.Assert(a.ColumnDiff(), gc.NotNil)
	c.Check(a.ColumnDiff().Analyses(), gc.HasLen, 2)
	c.Check(a.HasChanges(), jc.IsTrue)
	c.Check(set.Errors(), gc.HasLen, 0)
	c.Check(set.Warnings(), gc.HasLen, 0)
}

func (s *setSuite) TestColumnRemovalThroughTableChange(c *gc.C) {
	before := table(c, "users", []*schema.Column{column(c, "id"), column(c, "legacy")})
	after := table(c, "users", []*schema.Column{column(c, "id")},
		schemaChange(c, schema.ColumnKind, schema.RemoveChange, "legacy"))

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(set.Analyses(), gc.HasLen, 1)
	a := set.Analyses()[0]
	c.Assert(a.ColumnDiff(), gc.NotNil)
	c.Check(a.ColumnDiff().Analyses(), gc.HasLen, 2)
	c.Check(set.Errors(), gc.HasLen, 0)
	c.Check(set.Warnings(), gc.HasLen, 0)
}

func (s *setSuite) TestStandAloneColumnChangeIsError(c *gc.C) {
	before := table(c, "users", []*schema.Column{column(c, "id")})
	after := table(c, "users", []*schema.Column{column(c, "id")},
		schemaChange(c, schema.ColumnKind, schema.AlterChange, ""))

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Errors()), jc.DeepEquals, []string{"invalid columnar change"})
}

func (s *setSuite) TestStandAloneColumnSQLChangeIsAllowed(c *gc.C) {
	before := table(c, "users", []*schema.Column{column(c, "id")})
	after := table(c, "users", []*schema.Column{column(c, "id")},
		sqlChange(c, schema.ColumnKind, "UPDATE users SET id = id + 1"))

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(set.Errors(), gc.HasLen, 0)
}

func (s *setSuite) TestNestedColumnProblemsSurface(c *gc.C) {
	before := table(c, "users", []*schema.Column{column(c, "id"), column(c, "old")})
	after := table(c, "users", []*schema.Column{column(c, "id")})

	set, err := upgrade.NewSet([]schema.Object{before}, elements(after))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(messages(set.Warnings()), jc.DeepEquals, []string{
		"no explicit removal for old",
		"implicit removal of object",
	})
	c.Check(set.HasChanges(), jc.IsTrue)
}
