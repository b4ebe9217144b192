// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlgen_test

import (
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/schemadiff/core/order"
	"github.com/juju/schemadiff/core/schema"
	"github.com/juju/schemadiff/internal/sqlgen"
	"github.com/juju/schemadiff/upgrade"
)

var _ = gc.Suite(&mysqlSuite{})

type mysqlSuite struct {
	gen sqlgen.ScriptGenerator
}

func (s *mysqlSuite) SetUpTest(c *gc.C) {
	gen, err := sqlgen.ForPlatform("MySQL")
	c.Assert(err, jc.ErrorIsNil)
	s.gen = gen
}

func (s *mysqlSuite) constraint(c *gc.C, ctype, name string, cols []string, details map[string]string) *schema.Constraint {
	con, err := schema.NewConstraint(schema.ConstraintArgs{
		Type:        ctype,
		Name:        name,
		ColumnNames: cols,
		Details:     details,
	})
	c.Assert(err, jc.ErrorIsNil)
	return con
}

func (s *mysqlSuite) column(c *gc.C, args schema.ColumnArgs) *schema.Column {
	col, err := schema.NewColumn(args)
	c.Assert(err, jc.ErrorIsNil)
	return col
}

func (s *mysqlSuite) usersTable(c *gc.C) *schema.Table {
	id := s.column(c, schema.ColumnArgs{
		Name:          "id",
		ValueType:     "int",
		DataType:      "INT",
		AutoIncrement: true,
		Constraints: []*schema.Constraint{
			s.constraint(c, "not null", "", nil, nil),
			s.constraint(c, "primary key", "", []string{"id"}, nil),
		},
	})
	name := s.column(c, schema.ColumnArgs{
		Name:         "name",
		ValueType:    "varchar",
		DataType:     "VARCHAR(100)",
		DefaultValue: schema.NewValue(schema.StringValue, "guest"),
	})
	table, err := schema.NewTable(schema.TableArgs{
		Name:    "users",
		Columns: []*schema.Column{id, name},
		Constraints: []*schema.Constraint{
			s.constraint(c, "unique key", "uk_users_name", []string{"name"}, nil),
		},
	})
	c.Assert(err, jc.ErrorIsNil)
	return table
}

func (s *mysqlSuite) TestRegistry(c *gc.C) {
	c.Check(s.gen.Name(), gc.Equals, "mysql")
	c.Check(s.gen.Matches("mariadb"), jc.IsTrue)
	c.Check(s.gen.Matches("postgres"), jc.IsFalse)

	_, err := sqlgen.ForPlatform("ms-access")
	c.Assert(err, jc.ErrorIs, errors.NotFound)

	c.Check(sqlgen.Platforms(), jc.SameContents, []string{"mysql"})
}

func (s *mysqlSuite) TestCreateTable(c *gc.C) {
	scripts, err := s.gen.GenerateBase(s.usersTable(c))
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(scripts, gc.HasLen, 1)
	c.Check(scripts[0], gc.Equals, "CREATE TABLE `users` (\n"+
		"    `id` INT NOT NULL AUTO_INCREMENT,\n"+
		"    `name` VARCHAR(100) DEFAULT 'guest',\n"+
		"    PRIMARY KEY (`id`),\n"+
		"    UNIQUE KEY `uk_users_name` (`name`)\n"+
		");\n")
}

func (s *mysqlSuite) TestCreateTableForeignKey(c *gc.C) {
	userID := s.column(c, schema.ColumnArgs{
		Name: "user_id", ValueType: "int", DataType: "INT",
	})
	table, err := schema.NewTable(schema.TableArgs{
		Name:    "orders",
		Columns: []*schema.Column{userID},
		Constraints: []*schema.Constraint{
			s.constraint(c, "foreign key", "fk_orders_users",
				[]string{"user_id"}, map[string]string{
					"foreigntable":  "users",
					"foreigncolumn": "id",
				}),
		},
	})
	c.Assert(err, jc.ErrorIsNil)

	scripts, err := s.gen.GenerateBase(table)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(scripts, gc.HasLen, 1)
	c.Check(scripts[0], gc.Equals, "CREATE TABLE `orders` (\n"+
		"    `user_id` INT,\n"+
		"    CONSTRAINT `fk_orders_users` FOREIGN KEY (`user_id`) "+
		"REFERENCES `users` (`id`)\n"+
		");\n")
}

func (s *mysqlSuite) TestCreateView(c *gc.C) {
	set, err := schema.UniversalSQL("SELECT id FROM users WHERE active = 1")
	c.Assert(err, jc.ErrorIsNil)
	view, err := schema.NewView(schema.ViewArgs{
		Name:            "active_users",
		ReplaceIfExists: true,
		SelectQuery:     set,
	})
	c.Assert(err, jc.ErrorIsNil)

	scripts, err := s.gen.GenerateBase(view)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(scripts, gc.HasLen, 1)
	c.Check(scripts[0], gc.Equals,
		"CREATE OR REPLACE VIEW `active_users` AS "+
			"SELECT id FROM users WHERE active = 1;\n")
}

func (s *mysqlSuite) TestCreateViewUnmatchedPlatform(c *gc.C) {
	sql, err := schema.NewSQLString("SELECT 1", "plsql", []string{"oracle"})
	c.Assert(err, jc.ErrorIsNil)
	set, err := schema.NewSQLSet([]*schema.SQLString{sql})
	c.Assert(err, jc.ErrorIsNil)
	view, err := schema.NewView(schema.ViewArgs{Name: "v", SelectQuery: set})
	c.Assert(err, jc.ErrorIsNil)

	scripts, err := s.gen.GenerateBase(view)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(scripts, gc.HasLen, 0)
}

func (s *mysqlSuite) TestBaseIgnoresChanges(c *gc.C) {
	set, err := schema.UniversalSQL("UPDATE users SET active = 0")
	c.Assert(err, jc.ErrorIsNil)
	ch, err := schema.NewSQLChange(order.Order{}, "", schema.TableKind, set, nil)
	c.Assert(err, jc.ErrorIsNil)

	scripts, err := s.gen.GenerateBase(ch)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(scripts, gc.HasLen, 0)
}

func (s *mysqlSuite) TestUpgradeSQLChange(c *gc.C) {
	set, err := schema.UniversalSQL("UPDATE users SET migrated = 1;\n")
	c.Assert(err, jc.ErrorIsNil)
	ch, err := schema.NewSQLChange(order.Order{}, "", schema.TableKind, set, nil)
	c.Assert(err, jc.ErrorIsNil)

	scripts, err := s.gen.GenerateUpgrade(ch)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(scripts, gc.DeepEquals, []string{"UPDATE users SET migrated = 1;\n"})
}

// diff builds the upgrade analyses between two object lists.
func (s *mysqlSuite) diff(c *gc.C, before, after []schema.Object) []*upgrade.Analysis {
	elements := make([]upgrade.Element, len(after))
	for i, obj := range after {
		elements[i] = obj
	}
	set, err := upgrade.NewSet(before, elements)
	c.Assert(err, jc.ErrorIsNil)
	return set.Analyses()
}

func (s *mysqlSuite) TestUpgradeDropsRemovedTable(c *gc.C) {
	analyses := s.diff(c, []schema.Object{s.usersTable(c)}, nil)
	c.Assert(analyses, gc.HasLen, 1)

	scripts, err := s.gen.GenerateUpgrade(analyses[0])
	c.Assert(err, jc.ErrorIsNil)
	c.Check(scripts, gc.DeepEquals, []string{"DROP TABLE `users`;\n"})
}

func (s *mysqlSuite) TestUpgradeCreatesAddedTable(c *gc.C) {
	analyses := s.diff(c, nil, []schema.Object{s.usersTable(c)})
	c.Assert(analyses, gc.HasLen, 1)

	scripts, err := s.gen.GenerateUpgrade(analyses[0])
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(scripts, gc.HasLen, 1)
	c.Check(scripts[0], gc.Matches, "CREATE TABLE `users` \\((?s).*")
}

func (s *mysqlSuite) TestUpgradeRenamesTable(c *gc.C) {
	before, err := schema.NewTable(schema.TableArgs{
		Name: "old",
		Columns: []*schema.Column{
			s.column(c, schema.ColumnArgs{Name: "id", ValueType: "int", DataType: "INT"}),
		},
	})
	c.Assert(err, jc.ErrorIsNil)

	// The previous name is the dotted full name the matcher pairs
	// renames by; the rendered identifier must drop its empty parts.
	rename, err := schema.NewSchemaChange(
		order.Order{}, "", schema.TableKind, schema.RenameChange, "..old", nil)
	c.Assert(err, jc.ErrorIsNil)
	after, err := schema.NewTable(schema.TableArgs{
		Name: "new",
		Columns: []*schema.Column{
			s.column(c, schema.ColumnArgs{Name: "id", ValueType: "int", DataType: "INT"}),
		},
		Changes: []schema.Change{rename},
	})
	c.Assert(err, jc.ErrorIsNil)

	analyses := s.diff(c, []schema.Object{before}, []schema.Object{after})
	c.Assert(analyses, gc.HasLen, 1)

	scripts, err := s.gen.GenerateUpgrade(analyses[0])
	c.Assert(err, jc.ErrorIsNil)
	c.Check(scripts, gc.DeepEquals, []string{"RENAME TABLE `old` TO `new`;\n"})
}

func (s *mysqlSuite) TestUpgradeAltersColumns(c *gc.C) {
	before, err := schema.NewTable(schema.TableArgs{
		Name: "users",
		Columns: []*schema.Column{
			s.column(c, schema.ColumnArgs{Name: "id", ValueType: "int", DataType: "INT"}),
			s.column(c, schema.ColumnArgs{Name: "age", ValueType: "int", DataType: "INT"}),
			s.column(c, schema.ColumnArgs{Name: "nick", ValueType: "varchar", DataType: "VARCHAR(20)"}),
		},
	})
	c.Assert(err, jc.ErrorIsNil)

	removeNick, err := schema.NewSchemaChange(
		order.Order{}, "", schema.ColumnKind, schema.RemoveChange, "nick", nil)
	c.Assert(err, jc.ErrorIsNil)
	renameAge, err := schema.NewSchemaChange(
		order.Order{}, "", schema.ColumnKind, schema.RenameChange, "age", nil)
	c.Assert(err, jc.ErrorIsNil)

	after, err := schema.NewTable(schema.TableArgs{
		Name: "users",
		Columns: []*schema.Column{
			s.column(c, schema.ColumnArgs{Name: "id", ValueType: "int", DataType: "INT"}),
			s.column(c, schema.ColumnArgs{
				Name: "years", ValueType: "int", DataType: "INT",
				Changes: []schema.Change{renameAge},
			}),
			s.column(c, schema.ColumnArgs{Name: "email", ValueType: "varchar", DataType: "VARCHAR(200)"}),
		},
		Changes: []schema.Change{removeNick},
	})
	c.Assert(err, jc.ErrorIsNil)

	analyses := s.diff(c, []schema.Object{before}, []schema.Object{after})
	c.Assert(analyses, gc.HasLen, 1)

	scripts, err := s.gen.GenerateUpgrade(analyses[0])
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(scripts, gc.HasLen, 1)
	c.Check(scripts[0], gc.Equals, "ALTER TABLE `users`\n"+
		"    CHANGE COLUMN `age` `years` INT,\n"+
		"    ADD COLUMN `email` VARCHAR(200),\n"+
		"    DROP COLUMN `nick`;\n")
}

func (s *mysqlSuite) TestUpgradeRedefinesView(c *gc.C) {
	oldSet, err := schema.UniversalSQL("SELECT id FROM users")
	c.Assert(err, jc.ErrorIsNil)
	newSet, err := schema.UniversalSQL("SELECT id, name FROM users")
	c.Assert(err, jc.ErrorIsNil)
	oldView, err := schema.NewView(schema.ViewArgs{Name: "v", SelectQuery: oldSet})
	c.Assert(err, jc.ErrorIsNil)
	alter, err := schema.NewSchemaChange(
		order.Order{}, "", schema.ViewKind, schema.AlterChange, "", nil)
	c.Assert(err, jc.ErrorIsNil)
	newView, err := schema.NewView(schema.ViewArgs{
		Name: "v", SelectQuery: newSet, ReplaceIfExists: true,
		Changes: []schema.Change{alter},
	})
	c.Assert(err, jc.ErrorIsNil)

	analyses := s.diff(c, []schema.Object{oldView}, []schema.Object{newView})
	c.Assert(analyses, gc.HasLen, 1)

	scripts, err := s.gen.GenerateUpgrade(analyses[0])
	c.Assert(err, jc.ErrorIsNil)
	c.Check(scripts, gc.DeepEquals, []string{
		"CREATE OR REPLACE VIEW `v` AS SELECT id, name FROM users;\n",
	})
}

func (s *mysqlSuite) TestUpgradeSkipsUnchanged(c *gc.C) {
	table := s.usersTable(c)
	analyses := s.diff(c, []schema.Object{table}, []schema.Object{s.usersTable(c)})
	c.Assert(analyses, gc.HasLen, 1)

	scripts, err := s.gen.GenerateUpgrade(analyses[0])
	c.Assert(err, jc.ErrorIsNil)
	c.Check(scripts, gc.HasLen, 0)
}
