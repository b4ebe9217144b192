// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package version

import (
	"sort"

	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/schema"
)

// Version is one fully parsed version of a schema package: the
// top-level changes that transform the previous version into this one,
// the schema objects as they stand at this version, and the problems
// found while parsing.
type Version struct {
	pkg        string
	number     Number
	topChanges []schema.Change
	objects    []schema.Object
	problems   []Problem
}

// NewVersion returns a Version over the parsed content. Changes and
// objects are kept sorted by their natural declaration order.
func NewVersion(
	pkg string, number Number,
	topChanges []schema.Change, objects []schema.Object,
	problems []Problem,
) (*Version, error) {
	if pkg == "" {
		return nil, errors.NotValidf("version without a package name")
	}
	if number.IsZero() {
		return nil, errors.NotValidf("version without a number")
	}
	changes := append([]schema.Change{}, topChanges...)
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Order().Less(changes[j].Order())
	})
	objs := append([]schema.Object{}, objects...)
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].Order().Less(objs[j].Order())
	})
	return &Version{
		pkg:        pkg,
		number:     number,
		topChanges: changes,
		objects:    objs,
		problems:   problems,
	}, nil
}

// Package returns the name of the package the version belongs to.
func (v *Version) Package() string {
	return v.pkg
}

// Number returns the version number.
func (v *Version) Number() Number {
	return v.number
}

// TopChanges returns the top-level changes, in natural order.
func (v *Version) TopChanges() []schema.Change {
	return v.topChanges
}

// Objects returns the schema objects at this version, in natural
// order.
func (v *Version) Objects() []schema.Object {
	return v.objects
}

// Problems returns the problems found while parsing this version.
func (v *Version) Problems() []Problem {
	return v.problems
}
