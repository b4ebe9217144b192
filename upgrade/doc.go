// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package upgrade computes the validated difference between two
// versions of a schema. Objects are matched across versions by full
// name, authored changes are classified and checked against each
// match, column and constraint sets are diffed recursively, and the
// resulting operations are ordered with the constrained topological
// sort so that a generator can emit them as an upgrade script.
//
// Authoring mistakes accumulate as error and warning Problems rather
// than aborting the analysis; only malformed input reaching the
// dispatcher (an unrecognized object in an upgrade set) or an
// unsatisfiable ordering constraint is fatal.
package upgrade
