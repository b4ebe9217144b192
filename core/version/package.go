// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package version

import (
	"sort"

	"github.com/juju/errors"
)

// Package owns all the registered version branches of one schema
// package and reconstructs their parent/child relationships, however
// out of order the registrations arrive.
//
// A registration naming a parent that is not yet known is deferred,
// not rejected. Each deferred entry waits on its specific blocking
// parent; when that parent is finally registered, the entry is
// promoted, which may in turn unblock further entries.
type Package struct {
	name     string
	branches map[string]*Branch
	roots    []*Branch

	// pending holds deferred registrations keyed by the version
	// number of the parent that blocks them.
	pending map[string][]pendingBranch
}

type pendingBranch struct {
	number  Number
	parent  Number
	payload *Version
	loader  Loader
}

// NewPackage returns an empty Package for the named schema package.
func NewPackage(name string) (*Package, error) {
	if name == "" {
		return nil, errors.NotValidf("package without a name")
	}
	return &Package{
		name:     name,
		branches: make(map[string]*Branch),
		pending:  make(map[string][]pendingBranch),
	}, nil
}

// Name returns the package name.
func (p *Package) Name() string {
	return p.name
}

// Add registers an already-parsed version. parent is the zero Number
// for a root version. Registration is deferred when the parent is not
// yet known.
func (p *Package) Add(payload *Version, parent Number) error {
	if payload == nil {
		return errors.NotValidf("nil version")
	}
	if payload.Package() != p.name {
		return errors.Errorf(
			"version belongs to package %q, not %q", payload.Package(), p.name)
	}
	return errors.Trace(p.register(pendingBranch{
		number:  payload.Number(),
		parent:  parent,
		payload: payload,
	}))
}

// AddLazy registers a version whose content loads on first use.
// parent is the zero Number for a root version.
func (p *Package) AddLazy(loader Loader, number Number, parent Number) error {
	if loader == nil {
		return errors.NotValidf("nil loader")
	}
	if number.IsZero() {
		return errors.NotValidf("lazy branch without a version number")
	}
	return errors.Trace(p.register(pendingBranch{
		number: number,
		parent: parent,
		loader: loader,
	}))
}

func (p *Package) register(reg pendingBranch) error {
	key := reg.number.String()
	if _, ok := p.branches[key]; ok {
		return errors.AlreadyExistsf("version %s of %q", reg.number, p.name)
	}

	if !reg.parent.IsZero() {
		if _, ok := p.branches[reg.parent.String()]; !ok {
			p.pending[reg.parent.String()] = append(p.pending[reg.parent.String()], reg)
			return nil
		}
	}

	// Insert, then promote everything this insertion unblocks. Each
	// promotion can unblock more, so this is a worklist rather than a
	// single drain.
	work := []pendingBranch{reg}
	for len(work) > 0 {
		next := work[0]
		work = work[1:]
		if _, ok := p.branches[next.number.String()]; ok {
			return errors.AlreadyExistsf("version %s of %q", next.number, p.name)
		}

		var parent *Branch
		if !next.parent.IsZero() {
			parent = p.branches[next.parent.String()]
		}
		b := newBranch(p.name, next.number, parent, next.payload, next.loader)
		p.branches[next.number.String()] = b
		if parent == nil {
			p.roots = append(p.roots, b)
		}

		unblocked := p.pending[next.number.String()]
		delete(p.pending, next.number.String())
		work = append(work, unblocked...)
	}
	return nil
}

// Branch returns the branch registered for the given version number,
// or a NotFound error.
func (p *Package) Branch(number Number) (*Branch, error) {
	b, ok := p.branches[number.String()]
	if !ok {
		return nil, errors.NotFoundf("version %s of %q", number, p.name)
	}
	return b, nil
}

// Branches returns every resolved branch, earliest version first.
func (p *Package) Branches() []*Branch {
	ret := make([]*Branch, 0, len(p.branches))
	for _, b := range p.branches {
		ret = append(ret, b)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Number().Compare(ret[j].Number()) < 0
	})
	return ret
}

// Roots returns the branches with no parent.
func (p *Package) Roots() []*Branch {
	return p.roots
}

// NewestVersion returns the resolved branch with the highest version
// number, or nil when the package is empty.
func (p *Package) NewestVersion() *Branch {
	var newest *Branch
	for _, b := range p.branches {
		if newest == nil || b.Number().Compare(newest.Number()) > 0 {
			newest = b
		}
	}
	return newest
}

// UnresolvedVersions returns the parent version numbers that deferred
// registrations are still waiting on after all input was supplied.
// Each is an authoring error: a declared parent that was never
// registered.
func (p *Package) UnresolvedVersions() []Number {
	ret := make([]Number, 0, len(p.pending))
	for _, regs := range p.pending {
		if len(regs) > 0 {
			ret = append(ret, regs[0].parent)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Compare(ret[j]) < 0
	})
	return ret
}
