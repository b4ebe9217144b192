// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package upgrade

import (
	"fmt"

	"github.com/juju/schemadiff/core/schema"
)

// Problem describes one issue found while analysing an upgrade
// definition. Problems are informational: the analysis carries on
// collecting them, and the caller decides whether errors block
// generation.
type Problem struct {
	subject interface{}
	message string
}

func newProblem(subject interface{}, message string) Problem {
	return Problem{subject: subject, message: message}
}

// Subject returns the object or change the problem is about.
func (p Problem) Subject() interface{} {
	return p.subject
}

// Message returns the problem description.
func (p Problem) Message() string {
	return p.message
}

// String is part of fmt.Stringer.
func (p Problem) String() string {
	switch s := p.subject.(type) {
	case nil:
		return p.message
	case schema.Object:
		return fmt.Sprintf("%s: %s %q", p.message, s.Kind(), s.FullName())
	case schema.Change:
		return fmt.Sprintf("%s: %s change", p.message, s.Kind())
	}
	return fmt.Sprintf("%s: %v", p.message, p.subject)
}
