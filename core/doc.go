// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

/*
Package core holds the pure model of the schema versioning domain: the
declaration ordering rules, the schema object and change types, and the
version history. It is deliberately free of outside concerns.

When adding to core:

  - it's fine to import from any subpackage of
    "github.com/juju/schemadiff/core"
  - never import from any other subpackage of the module
  - no file I/O, no YAML, no SQL text: parsing lives in internal/parser
    and rendering in internal/sqlgen
  - no logging and no mutable global state; problems accumulate as data
    on the types themselves
*/
package core
