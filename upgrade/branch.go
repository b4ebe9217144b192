// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package upgrade

import (
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/version"
)

// BranchAnalysis orchestrates the diff for one version transition. A
// branch with a parent diffs the parent's schema against the current
// version's top-level changes and schema; a root branch is not an
// upgrade at all, and callers should generate a base creation script
// from the schema instead.
type BranchAnalysis struct {
	branch   *version.Branch
	current  *version.Version
	previous *version.Version
	set      *Set
}

// NewBranchAnalysis resolves the branch's payload (and its parent's,
// when there is one) and computes the upgrade set once.
func NewBranchAnalysis(branch *version.Branch) (*BranchAnalysis, error) {
	if branch == nil {
		return nil, errors.NotValidf("nil branch")
	}
	current, err := branch.Payload()
	if err != nil {
		return nil, errors.Trace(err)
	}
	a := &BranchAnalysis{branch: branch, current: current}

	parent := branch.Parent()
	if parent == nil {
		return a, nil
	}
	previous, err := parent.Payload()
	if err != nil {
		return nil, errors.Trace(err)
	}
	a.previous = previous

	after := make([]Element, 0, len(current.TopChanges())+len(current.Objects()))
	for _, ch := range current.TopChanges() {
		after = append(after, ch)
	}
	for _, obj := range current.Objects() {
		after = append(after, obj)
	}
	set, err := NewSet(previous.Objects(), after)
	if err != nil {
		return nil, errors.Trace(err)
	}
	a.set = set
	return a, nil
}

// Branch returns the analysed branch.
func (a *BranchAnalysis) Branch() *version.Branch {
	return a.branch
}

// IsUpgrade reports whether the branch has a parent to upgrade from.
func (a *BranchAnalysis) IsUpgrade() bool {
	return a.set != nil
}

// Current returns the branch's own version.
func (a *BranchAnalysis) Current() *version.Version {
	return a.current
}

// Previous returns the parent version, or nil for a root branch.
func (a *BranchAnalysis) Previous() *version.Version {
	return a.previous
}

// Set returns the computed upgrade set, or nil for a root branch.
func (a *BranchAnalysis) Set() *Set {
	return a.set
}

// Changes returns the ordered upgrade stream. It is empty for a root
// branch. An unsatisfiable ordering constraint is fatal.
func (a *BranchAnalysis) Changes() ([]Element, error) {
	if a.set == nil {
		return nil, nil
	}
	changes, err := a.set.AllUpgrades()
	return changes, errors.Trace(err)
}

// VersionProblems returns the parse-time problems of the current
// version and, when present, the parent version.
func (a *BranchAnalysis) VersionProblems() []version.Problem {
	var ret []version.Problem
	ret = append(ret, a.current.Problems()...)
	if a.previous != nil {
		ret = append(ret, a.previous.Problems()...)
	}
	return ret
}

// Errors returns the diff's errors. Generation should not proceed
// while any remain.
func (a *BranchAnalysis) Errors() []Problem {
	if a.set == nil {
		return nil
	}
	return a.set.Errors()
}

// Warnings returns the diff's warnings.
func (a *BranchAnalysis) Warnings() []Problem {
	if a.set == nil {
		return nil
	}
	return a.set.Warnings()
}

// BlocksGeneration reports whether any accumulated problem should stop
// the caller from generating scripts.
func (a *BranchAnalysis) BlocksGeneration() bool {
	if version.BlocksGeneration(a.VersionProblems()) {
		return true
	}
	return len(a.Errors()) > 0
}
