// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package upgrade

import (
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/order"
	"github.com/juju/schemadiff/core/schema"
)

// Analysis is the validated diff of one schema object across two
// versions. At least one side is always present: a missing before is
// an addition, a missing after an implicit removal, and an after that
// is an explicit remove change an announced removal.
type Analysis struct {
	kind    schema.Kind
	before  schema.Object
	after   schema.Object
	removal schema.Change

	changes map[schema.ChangeKind][]schema.Change

	constraintDiff *Set
	columnDiff     *Set

	errors   []Problem
	warnings []Problem
}

// newAnalysis builds the analysis for one matched pair. after and
// removal are mutually exclusive; removal is the explicit remove
// change that matched before, when there is one.
func newAnalysis(before, after schema.Object, removal schema.Change) (*Analysis, error) {
	if before == nil && after == nil && removal == nil {
		return nil, errors.Errorf("upgrade analysis with neither a before nor an after object")
	}

	a := &Analysis{}
	switch {
	case after != nil:
		a.kind = after.Kind()
	default:
		a.kind = before.Kind()
	}
	switch a.kind {
	case schema.TableKind, schema.ViewKind, schema.ColumnKind, schema.ConstraintKind:
	default:
		return nil, errors.Errorf("cannot analyse schema object kind %q", a.kind)
	}
	a.before = before
	a.after = after
	a.removal = removal

	var authored []schema.Change
	switch {
	case after == nil && removal == nil:
		a.warnings = append(a.warnings, newProblem(before, "implicit removal of object"))
	case removal != nil:
		authored = []schema.Change{removal}
	default:
		authored = after.Changes()
	}
	a.changes = categorize(authored)

	a.validate()

	if err := a.diffConstraints(); err != nil {
		return nil, errors.Trace(err)
	}
	if err := a.diffColumns(); err != nil {
		return nil, errors.Trace(err)
	}
	a.checkKindMatch()
	return a, nil
}

// validate applies the structural rules for authored change sets.
func (a *Analysis) validate() {
	var subject interface{} = a.after
	if a.after == nil {
		subject = a.before
	}

	big := 0
	for _, kind := range []schema.ChangeKind{
		schema.AddChange, schema.RemoveChange, schema.RenameChange,
	} {
		n := len(a.changes[kind])
		big += n
		if n > 1 {
			a.errors = append(a.errors, newProblem(subject,
				"at most 1 "+string(kind)+" is allowed"))
		}
	}
	partial := len(a.changes[schema.AlterChange]) + len(a.changes[schema.SQLKind])
	if big > 1 || (big > 0 && partial > 0) {
		a.errors = append(a.errors, newProblem(subject,
			"at most 1 of an add, remove, or rename is allowed, "+
				"and it cannot be done with an alter or sql change"))
	}

	if a.before == nil {
		if len(a.changes[schema.AddChange]) == 0 {
			a.warnings = append(a.warnings, newProblem(subject, "implicit add"))
		}
		if len(a.changes[schema.RemoveChange]) > 0 ||
			len(a.changes[schema.RenameChange]) > 0 ||
			len(a.changes[schema.AlterChange]) > 0 {
			a.errors = append(a.errors, newProblem(subject,
				"can only add due to no previous version found"))
		}
	}
}

// diffConstraints always diffs the constraint lists, whether or not
// the object itself changed.
func (a *Analysis) diffConstraints() error {
	var before, after []schema.Object
	if a.before != nil {
		before = constraintObjects(a.before.Constraints())
	}
	if a.after != nil && a.removal == nil {
		after = constraintObjects(a.after.Constraints())
	}
	diff, err := NewSet(before, objectElements(after))
	if err != nil {
		return errors.Trace(err)
	}
	a.constraintDiff = diff
	if a.before != nil && a.after != nil && a.removal == nil {
		// One-sided diffs add or remove every constraint with the
		// object itself; only a true upgrade surfaces the nested
		// problems.
		a.errors = append(a.errors, diff.Errors()...)
		a.warnings = append(a.warnings, diff.Warnings()...)
	}
	return nil
}

// diffColumns diffs the column lists of tables and views when both
// sides are present, folding in any column-scoped changes carried on
// the after object. A stand-alone column change that is not raw SQL
// has nothing to apply to and is an authoring error.
func (a *Analysis) diffColumns() error {
	if a.kind != schema.TableKind && a.kind != schema.ViewKind {
		return nil
	}
	beforeCols, ok := a.before.(schema.Columnar)
	if !ok {
		return nil
	}
	afterCols, ok := a.after.(schema.Columnar)
	if !ok {
		return nil
	}

	after := make([]Element, 0, len(afterCols.Columns()))
	for _, col := range afterCols.Columns() {
		after = append(after, col)
	}
	for _, ch := range a.after.Changes() {
		if ch.Target() == schema.ColumnKind {
			after = append(after, ch)
		}
	}

	diff, err := NewSet(columnObjects(beforeCols.Columns()), after)
	if err != nil {
		return errors.Trace(err)
	}
	a.columnDiff = diff

	for _, ch := range diff.StandAloneChanges() {
		if _, ok := ch.(*schema.SQLChange); !ok {
			a.errors = append(a.errors, newProblem(ch, "invalid columnar change"))
		}
	}
	// Nested column problems surface on the parent object.
	a.errors = append(a.errors, diff.ownErrors...)
	a.warnings = append(a.warnings, diff.ownWarnings...)
	for _, nested := range diff.Analyses() {
		a.errors = append(a.errors, nested.errors...)
		a.warnings = append(a.warnings, nested.warnings...)
	}
	return nil
}

// checkKindMatch rejects a direct table-to-view or view-to-table
// upgrade; such a transition must be authored as an explicit remove
// plus add.
func (a *Analysis) checkKindMatch() {
	if a.before == nil {
		return
	}
	if a.kind != schema.TableKind && a.kind != schema.ViewKind {
		return
	}
	if a.before.Kind() != a.kind {
		a.errors = append(a.errors, newProblem(a.before,
			"cannot upgrade directly from a "+string(a.before.Kind())+
				" to a "+string(a.kind)))
	}
}

// Kind returns the kind of the analysed object.
func (a *Analysis) Kind() schema.Kind {
	return a.kind
}

// Before returns the previous version of the object, or nil for an
// addition.
func (a *Analysis) Before() schema.Object {
	return a.before
}

// After returns the current version of the object, or nil for a
// removal.
func (a *Analysis) After() schema.Object {
	return a.after
}

// Removal returns the explicit remove change that produced this
// analysis, or nil.
func (a *Analysis) Removal() schema.Change {
	return a.removal
}

// IsRemoval reports whether the analysis removes the before object,
// explicitly or implicitly.
func (a *Analysis) IsRemoval() bool {
	return a.after == nil
}

// IsAddition reports whether the analysis creates a fresh object.
func (a *Analysis) IsAddition() bool {
	return a.before == nil
}

// Changes returns the authored changes of the given kind.
func (a *Analysis) Changes(kind schema.ChangeKind) []schema.Change {
	return a.changes[kind]
}

// ConstraintDiff returns the diff of the object's constraint lists.
func (a *Analysis) ConstraintDiff() *Set {
	return a.constraintDiff
}

// ColumnDiff returns the diff of the column lists, or nil when either
// side is absent or the object has no columns.
func (a *Analysis) ColumnDiff() *Set {
	return a.columnDiff
}

// Errors returns the authoring mistakes found in this analysis.
func (a *Analysis) Errors() []Problem {
	return a.errors
}

// Warnings returns the author omissions found in this analysis.
func (a *Analysis) Warnings() []Problem {
	return a.warnings
}

// HasChanges reports whether applying this analysis would alter the
// database: the object is added or removed, carries authored changes,
// or its constraint or column diff does.
func (a *Analysis) HasChanges() bool {
	if a.before == nil || a.after == nil || a.removal != nil {
		return true
	}
	for _, list := range a.changes {
		if len(list) > 0 {
			return true
		}
	}
	if a.constraintDiff != nil && a.constraintDiff.HasChanges() {
		return true
	}
	if a.columnDiff != nil && a.columnDiff.HasChanges() {
		return true
	}
	return false
}

// Name returns the current name of the analysed object.
func (a *Analysis) Name() string {
	if a.after != nil {
		return a.after.Name()
	}
	return a.before.Name()
}

// Order returns the sequencing key for the analysis: the after
// object's order, the remove change's order for an explicit removal,
// or the before object's order for an implicit one.
func (a *Analysis) Order() order.Order {
	switch {
	case a.after != nil:
		return a.after.Order()
	case a.removal != nil:
		return a.removal.Order()
	}
	return a.before.Order()
}

// Label returns the constraint label the analysis answers to in the
// final ordering: the cleaned full name of its subject.
func (a *Analysis) Label() string {
	if a.after != nil {
		return schema.Label(a.after)
	}
	return schema.Label(a.before)
}

func categorize(changes []schema.Change) map[schema.ChangeKind][]schema.Change {
	ret := make(map[schema.ChangeKind][]schema.Change)
	for _, ch := range changes {
		ret[ch.Kind()] = append(ret[ch.Kind()], ch)
	}
	return ret
}

func constraintObjects(constraints []*schema.Constraint) []schema.Object {
	ret := make([]schema.Object, len(constraints))
	for i, c := range constraints {
		ret[i] = c
	}
	return ret
}

func columnObjects(columns []*schema.Column) []schema.Object {
	ret := make([]schema.Object, len(columns))
	for i, c := range columns {
		ret[i] = c
	}
	return ret
}

func objectElements(objects []schema.Object) []Element {
	ret := make([]Element, len(objects))
	for i, o := range objects {
		ret[i] = o
	}
	return ret
}
