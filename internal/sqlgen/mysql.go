// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlgen

import (
	"fmt"
	"strings"

	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/schema"
	"github.com/juju/schemadiff/upgrade"
)

func init() {
	Register(&mysqlGenerator{})
}

// mysqlGenerator renders scripts for MySQL and its close relatives.
type mysqlGenerator struct{}

// mysqlPlatforms are the platform names looked up in authored SQL
// sets, most specific first.
var mysqlPlatforms = []string{"mysql", "mariadb"}

// Name is part of ScriptGenerator.
func (g *mysqlGenerator) Name() string {
	return "mysql"
}

// Matches is part of ScriptGenerator.
func (g *mysqlGenerator) Matches(platform string) bool {
	for _, p := range mysqlPlatforms {
		if platform == p {
			return true
		}
	}
	return false
}

// GenerateBase is part of ScriptGenerator.
func (g *mysqlGenerator) GenerateBase(el upgrade.Element) ([]string, error) {
	switch v := el.(type) {
	case *schema.Table:
		return []string{g.createTable(v)}, nil
	case *schema.View:
		return g.createView(v), nil
	case schema.Change:
		// Upgrades do not exist yet when the base schema is created.
		return nil, nil
	}
	return nil, errors.Errorf("cannot generate a creation script for %T", el)
}

// GenerateUpgrade is part of ScriptGenerator.
func (g *mysqlGenerator) GenerateUpgrade(el upgrade.Element) ([]string, error) {
	switch v := el.(type) {
	case *schema.SQLChange:
		return g.sqlText(v.SQL()), nil
	case *schema.SchemaChange:
		// A stand-alone structural change has no object to apply to;
		// the analysis reports it, generation skips it.
		return nil, nil
	case *upgrade.Analysis:
		return g.upgradeAnalysis(v)
	}
	return nil, errors.Errorf("cannot generate an upgrade script for %T", el)
}

func (g *mysqlGenerator) upgradeAnalysis(a *upgrade.Analysis) ([]string, error) {
	if !a.HasChanges() {
		return nil, nil
	}
	switch a.Kind() {
	case schema.TableKind:
		return g.upgradeTable(a), nil
	case schema.ViewKind:
		return g.upgradeView(a), nil
	}
	return nil, errors.Errorf(
		"cannot generate a stand-alone upgrade for a %s", a.Kind())
}

func (g *mysqlGenerator) upgradeTable(a *upgrade.Analysis) []string {
	if a.IsRemoval() {
		return []string{"DROP TABLE " + g.objectName(a.Before()) + ";\n"}
	}
	table := a.After().(*schema.Table)
	if a.IsAddition() {
		return []string{g.createTable(table)}
	}

	var scripts []string
	for _, ch := range a.Changes(schema.RenameChange) {
		sc := ch.(*schema.SchemaChange)
		scripts = append(scripts, fmt.Sprintf(
			"RENAME TABLE %s TO %s;\n",
			quoteName(sc.PreviousName()), g.objectName(table)))
	}
	for _, ch := range a.Changes(schema.SQLKind) {
		scripts = append(scripts, g.sqlText(ch.(*schema.SQLChange).SQL())...)
	}

	var clauses []string
	if diff := a.ColumnDiff(); diff != nil {
		for _, col := range diff.Analyses() {
			clauses = append(clauses, g.alterColumnClauses(col)...)
			for _, ch := range col.Changes(schema.SQLKind) {
				scripts = append(scripts, g.sqlText(ch.(*schema.SQLChange).SQL())...)
			}
		}
		for _, ch := range diff.StandAloneChanges() {
			if sc, ok := ch.(*schema.SQLChange); ok {
				scripts = append(scripts, g.sqlText(sc.SQL())...)
			}
		}
	}
	if diff := a.ConstraintDiff(); diff != nil {
		clauses = append(clauses, g.alterConstraintClauses(diff.Analyses())...)
	}
	if len(clauses) > 0 {
		scripts = append(scripts, fmt.Sprintf(
			"ALTER TABLE %s\n    %s;\n",
			g.objectName(table), strings.Join(clauses, ",\n    ")))
	}
	return scripts
}

// alterColumnClauses renders one column's diff as ALTER TABLE clauses.
func (g *mysqlGenerator) alterColumnClauses(a *upgrade.Analysis) []string {
	if !a.HasChanges() {
		return nil
	}
	if a.IsRemoval() {
		return []string{"DROP COLUMN " + quoteName(a.Before().Name())}
	}
	col := a.After().(*schema.Column)
	if a.IsAddition() {
		return []string{"ADD COLUMN " + g.columnDef(col)}
	}
	if len(a.Changes(schema.RenameChange)) > 0 {
		return []string{fmt.Sprintf("CHANGE COLUMN %s %s",
			quoteName(a.Before().Name()), g.columnDef(col))}
	}
	if len(a.Changes(schema.SQLKind)) > 0 &&
		len(a.Changes(schema.AlterChange)) == 0 {
		// Raw SQL carries the whole change; emitted by the caller.
		return nil
	}
	return []string{"MODIFY COLUMN " + g.columnDef(col)}
}

func (g *mysqlGenerator) alterConstraintClauses(diffs []*upgrade.Analysis) []string {
	var clauses []string
	for _, a := range diffs {
		if !a.HasChanges() {
			continue
		}
		if a.IsRemoval() {
			if clause, ok := g.dropConstraintClause(a.Before().(*schema.Constraint)); ok {
				clauses = append(clauses, clause)
			}
			continue
		}
		con := a.After().(*schema.Constraint)
		clause, ok := g.constraintClause(con)
		if !ok {
			continue
		}
		if !a.IsAddition() {
			// MySQL has no constraint alteration; replace it.
			if drop, ok := g.dropConstraintClause(a.Before().(*schema.Constraint)); ok {
				clauses = append(clauses, drop)
			}
		}
		clauses = append(clauses, "ADD "+clause)
	}
	return clauses
}

func (g *mysqlGenerator) dropConstraintClause(con *schema.Constraint) (string, bool) {
	switch con.Type() {
	case "primarykey", "primaryindex":
		return "DROP PRIMARY KEY", true
	case "foreignkey":
		if name := con.ConstraintName(); name != "" {
			return "DROP FOREIGN KEY " + quoteName(name), true
		}
	case "key", "index", "uniquekey", "uniqueindex",
		"fulltextkey", "fulltextindex", "spatialkey", "spatialindex":
		if name := con.ConstraintName(); name != "" {
			return "DROP INDEX " + quoteName(name), true
		}
	}
	logger.Debugf("no mysql drop for %s constraint", con.Type())
	return "", false
}

func (g *mysqlGenerator) upgradeView(a *upgrade.Analysis) []string {
	if a.IsRemoval() {
		return []string{"DROP VIEW " + g.objectName(a.Before()) + ";\n"}
	}
	var scripts []string
	for _, ch := range a.Changes(schema.SQLKind) {
		scripts = append(scripts, g.sqlText(ch.(*schema.SQLChange).SQL())...)
	}
	// A view upgrade is a redefinition.
	return append(scripts, g.createView(a.After().(*schema.View))...)
}

func (g *mysqlGenerator) createTable(table *schema.Table) string {
	var defs []string
	for _, col := range table.Columns() {
		defs = append(defs, g.columnDef(col))
	}
	for _, col := range table.Columns() {
		for _, con := range col.Constraints() {
			if clause, ok := g.constraintClause(con); ok {
				defs = append(defs, clause)
			}
		}
	}
	for _, con := range table.Constraints() {
		if clause, ok := g.constraintClause(con); ok {
			defs = append(defs, clause)
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n);\n",
		g.objectName(table), strings.Join(defs, ",\n    "))
}

func (g *mysqlGenerator) createView(view *schema.View) []string {
	sql := view.SelectQuery().ForPlatform(mysqlPlatforms...)
	if sql == nil {
		logger.Debugf("view %s has no sql for mysql", view.FullName())
		return nil
	}
	create := "CREATE VIEW"
	if view.ReplaceIfExists() {
		create = "CREATE OR REPLACE VIEW"
	}
	return []string{fmt.Sprintf("%s %s AS %s;\n",
		create, g.objectName(view), strings.TrimSpace(sql.SQL()))}
}

func (g *mysqlGenerator) columnDef(col *schema.Column) string {
	var b strings.Builder
	b.WriteString(quoteName(col.Name()))
	b.WriteString(" ")
	b.WriteString(col.DataType())
	for _, con := range col.Constraints() {
		if con.Type() == "notnull" {
			b.WriteString(" NOT NULL")
		}
	}
	if v := col.DefaultValue(); v != nil {
		if lit, ok := g.valueLiteral(v); ok {
			b.WriteString(" DEFAULT ")
			b.WriteString(lit)
		}
	}
	if col.AutoIncrement() {
		b.WriteString(" AUTO_INCREMENT")
	}
	return b.String()
}

// constraintClause renders a constraint as a CREATE or ALTER TABLE
// clause. Code-level constraint types have no SQL rendering.
func (g *mysqlGenerator) constraintClause(con *schema.Constraint) (string, bool) {
	cols := quoteNameList(con.ColumnNames())
	named := func(keyword string) string {
		if name := con.ConstraintName(); name != "" {
			keyword += " " + quoteName(name)
		}
		return fmt.Sprintf("%s (%s)", keyword, cols)
	}
	switch con.Type() {
	case "primarykey", "primaryindex":
		return fmt.Sprintf("PRIMARY KEY (%s)", cols), true
	case "uniquekey", "uniqueindex":
		return named("UNIQUE KEY"), true
	case "key", "index":
		return named("KEY"), true
	case "fulltextkey", "fulltextindex":
		return named("FULLTEXT KEY"), true
	case "spatialkey", "spatialindex":
		return named("SPATIAL KEY"), true
	case "foreignkey":
		table := con.Details()["foreigntable"]
		column := con.Details()["foreigncolumn"]
		if table == "" || column == "" {
			logger.Debugf("foreign key without a foreign table or column")
			return "", false
		}
		clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			cols, quoteName(table), quoteName(column))
		if name := con.ConstraintName(); name != "" {
			clause = "CONSTRAINT " + quoteName(name) + " " + clause
		}
		return clause, true
	}
	if sql := con.SQL(); sql != nil {
		if text := sql.ForPlatform(mysqlPlatforms...); text != nil {
			return fmt.Sprintf("CHECK (%s)", strings.TrimSpace(text.SQL())), true
		}
	}
	return "", false
}

func (g *mysqlGenerator) valueLiteral(v *schema.Value) (string, bool) {
	switch v.Kind() {
	case schema.NumericValue, schema.BooleanValue:
		return v.Text(), true
	case schema.StringValue, schema.DateValue:
		return "'" + strings.ReplaceAll(v.Text(), "'", "''") + "'", true
	case schema.ComputedValue:
		if sql := v.Computed().ForPlatform(mysqlPlatforms...); sql != nil {
			return strings.TrimSpace(sql.SQL()), true
		}
	}
	return "", false
}

// sqlText renders an authored SQL set, or nothing when the set has no
// rendering for this platform.
func (g *mysqlGenerator) sqlText(set *schema.SQLSet) []string {
	sql := set.ForPlatform(mysqlPlatforms...)
	if sql == nil {
		return nil
	}
	text := strings.TrimRight(sql.SQL(), " \t\r\n;")
	return []string{text + ";\n"}
}

// objectName renders the qualified, quoted name of a table or view.
func (g *mysqlGenerator) objectName(obj schema.Object) string {
	return quoteName(obj.FullName())
}

// quoteName quotes an identifier. A dotted name is treated as a
// qualified name and quoted part by part, dropping the empty parts a
// full name keeps for an absent catalog or schema, so "..users" and
// "users" render identically.
func quoteName(name string) string {
	parts := strings.Split(name, ".")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, "`"+strings.ReplaceAll(p, "`", "``")+"`")
		}
	}
	if len(kept) == 0 {
		return "``"
	}
	return strings.Join(kept, ".")
}

func quoteNameList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteName(n)
	}
	return strings.Join(quoted, ", ")
}
