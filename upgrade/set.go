// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package upgrade

import (
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/order"
	"github.com/juju/schemadiff/core/schema"
)

// Element is one unit of an upgrade stream: a schema object, an
// authored change, or an Analysis.
type Element interface {
	Order() order.Order
}

// Set is the matched result of diffing two named-object lists. Each
// after-side object pairs with the before-side object of the same full
// name (or of its declared previous name, for renames); explicit
// remove changes consume their target; whatever remains on the before
// side becomes a synthesized removal.
type Set struct {
	analyses   []*Analysis
	standAlone []schema.Change

	// ownErrors holds the problems found by the matching itself, as
	// opposed to those aggregated from the nested analyses.
	ownErrors   []Problem
	ownWarnings []Problem

	errors   []Problem
	warnings []Problem
}

// NewSet matches after against before and analyses every pair. The
// elements of after must be schema objects or authored changes;
// anything else is a fatal internal error.
func NewSet(before []schema.Object, after []Element) (*Set, error) {
	s := &Set{}

	index := make(map[string]schema.Object)
	flagged := make(map[string]bool)
	for _, obj := range before {
		name := obj.FullName()
		if first, ok := index[name]; ok {
			s.ownErrors = append(s.ownErrors, newProblem(obj, "duplicate name"))
			if !flagged[name] {
				s.ownErrors = append(s.ownErrors, newProblem(first, "duplicate name"))
				flagged[name] = true
			}
			continue
		}
		index[name] = obj
	}

	matched := func(name string) schema.Object {
		obj := index[name]
		delete(index, name)
		return obj
	}

	for _, el := range after {
		switch v := el.(type) {
		case *schema.SchemaChange:
			if v.Kind() != schema.RemoveChange {
				// Not matched by name; reserved for affects-based
				// targeting.
				s.standAlone = append(s.standAlone, v)
				continue
			}
			prior, ok := index[v.PreviousName()]
			if !ok {
				s.ownErrors = append(s.ownErrors, newProblem(v,
					"remove change has no known previous object"))
				continue
			}
			a, err := newAnalysis(prior, nil, v)
			if err != nil {
				return nil, errors.Trace(err)
			}
			matched(v.PreviousName())
			s.analyses = append(s.analyses, a)

		case *schema.SQLChange:
			s.standAlone = append(s.standAlone, v)

		case schema.Object:
			name := v.FullName()
			if prev := renameChange(v); prev != "" {
				name = prev
			}
			var a *Analysis
			var err error
			if prior, ok := index[name]; ok {
				a, err = newAnalysis(prior, v, nil)
				matched(name)
			} else {
				a, err = newAnalysis(nil, v, nil)
			}
			if err != nil {
				return nil, errors.Trace(err)
			}
			s.analyses = append(s.analyses, a)

		default:
			return nil, errors.Errorf("invalid object %T in upgrade set", el)
		}
	}

	// Whatever the after side never claimed is being removed without
	// saying so. Walk the original list to keep the output order
	// deterministic.
	for _, obj := range before {
		if index[obj.FullName()] != obj {
			continue
		}
		matched(obj.FullName())
		a, err := newAnalysis(obj, nil, nil)
		if err != nil {
			return nil, errors.Trace(err)
		}
		s.analyses = append(s.analyses, a)
		s.ownWarnings = append(s.ownWarnings, newProblem(obj,
			"no explicit removal for "+obj.FullName()))
	}

	s.errors = append(s.errors, s.ownErrors...)
	s.warnings = append(s.warnings, s.ownWarnings...)
	for _, a := range s.analyses {
		s.errors = append(s.errors, a.errors...)
		s.warnings = append(s.warnings, a.warnings...)
	}
	return s, nil
}

// renameChange returns the previous name declared by the object's
// rename change, or empty when the object was not renamed. Multiple
// renames are an error reported by the analysis; matching uses the
// first.
func renameChange(obj schema.Object) string {
	for _, ch := range obj.Changes() {
		if sc, ok := ch.(*schema.SchemaChange); ok && sc.Kind() == schema.RenameChange {
			return sc.PreviousName()
		}
	}
	return ""
}

// Analyses returns the matched and synthesized upgrade analyses, in
// matching order.
func (s *Set) Analyses() []*Analysis {
	return s.analyses
}

// StandAloneChanges returns the authored changes with no matched prior
// object.
func (s *Set) StandAloneChanges() []schema.Change {
	return s.standAlone
}

// Errors returns every error found by the matching and the nested
// analyses.
func (s *Set) Errors() []Problem {
	return s.errors
}

// Warnings returns every warning found by the matching and the nested
// analyses.
func (s *Set) Warnings() []Problem {
	return s.warnings
}

// HasChanges reports whether anything in the set would alter the
// database.
func (s *Set) HasChanges() bool {
	if len(s.standAlone) > 0 {
		return true
	}
	for _, a := range s.analyses {
		if a.HasChanges() {
			return true
		}
	}
	return false
}

// AllUpgrades returns the stand-alone changes and the analyses as one
// stream, ordered by the constrained topological sort. Analyses answer
// to their subject's name label, so an occurs-before/occurs-after
// constraint naming another object reorders against its analysis. An
// unsatisfiable constraint set is fatal.
func (s *Set) AllUpgrades() ([]Element, error) {
	items := make([]order.Sequenced, 0, len(s.standAlone)+len(s.analyses))
	for _, ch := range s.standAlone {
		items = append(items, ch)
	}
	for _, a := range s.analyses {
		items = append(items, a)
	}
	sorted, err := order.Sort(items)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ret := make([]Element, len(sorted))
	for i, item := range sorted {
		ret[i] = item.(Element)
	}
	return ret, nil
}
