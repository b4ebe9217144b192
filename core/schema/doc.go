// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package schema holds the in-memory model of a declarative database
// schema description: the schema objects (tables, views, columns and
// constraints), the authored changes that transform one version of an
// object into the next, and the per-platform SQL attached to both.
//
// The model is read-only once constructed. Every object and change
// carries an order.Order assigned from its declaration position, which
// downstream consumers use to decide emission order.
package schema
