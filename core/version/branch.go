// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package version

import (
	"fmt"

	"github.com/juju/errors"
)

// Loader loads the parsed content of a lazily registered version on
// demand.
type Loader func(Number) (*Version, error)

// Branch is one node of a package's version forest. Its payload may
// have been supplied up front, or may load lazily through a Loader the
// first time it is asked for.
type Branch struct {
	pkg      string
	number   Number
	parent   *Branch
	children []*Branch

	payload *Version
	loader  Loader
}

func newBranch(pkg string, number Number, parent *Branch, payload *Version, loader Loader) *Branch {
	b := &Branch{
		pkg:     pkg,
		number:  number,
		parent:  parent,
		payload: payload,
		loader:  loader,
	}
	if parent != nil {
		parent.children = append(parent.children, b)
	}
	return b
}

// Package returns the name of the package the branch belongs to.
func (b *Branch) Package() string {
	return b.pkg
}

// Number returns the branch's version number.
func (b *Branch) Number() Number {
	return b.number
}

// Parent returns the branch this version derives from, or nil for a
// root version.
func (b *Branch) Parent() *Branch {
	return b.parent
}

// Children returns the branches registered with this branch as their
// parent.
func (b *Branch) Children() []*Branch {
	return b.children
}

// IsLoaded reports whether the payload has been resolved.
func (b *Branch) IsLoaded() bool {
	return b.payload != nil
}

// Payload returns the parsed version, invoking the loader on first
// call and memoizing the result. Not safe for concurrent first calls
// without external synchronization.
func (b *Branch) Payload() (*Version, error) {
	if b.payload != nil {
		return b.payload, nil
	}
	payload, err := b.loader(b.number)
	if err != nil {
		return nil, errors.Annotatef(err, "loading version %s of %q", b.number, b.pkg)
	}
	if payload == nil {
		return nil, errors.Errorf("loader returned no version %s for %q", b.number, b.pkg)
	}
	if payload.Number().Compare(b.number) != 0 {
		return nil, errors.Errorf(
			"loader returned version %s for %q, expected %s",
			payload.Number(), b.pkg, b.number)
	}
	b.payload = payload
	return b.payload, nil
}

// String is part of fmt.Stringer.
func (b *Branch) String() string {
	return fmt.Sprintf("branch(%s : %s)", b.pkg, b.number)
}
