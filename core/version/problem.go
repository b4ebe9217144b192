// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package version

import (
	"fmt"
)

// Severity grades a problem found while parsing or assembling a
// schema version. Problems accumulate as data; only fatal conditions
// become Go errors.
type Severity int

const (
	// Note is informational only.
	Note Severity = iota

	// Warning marks an author omission that is safe to proceed from.
	Warning

	// Error marks an authoring mistake that blocks downstream
	// generation, though analysis continues to collect more problems.
	Error

	// Fatal marks a malformed input whose containing object could not
	// be built at all.
	Fatal
)

// String is part of fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	}
	return fmt.Sprintf("severity %d", int(s))
}

// Problem describes one issue found in a schema description, with the
// source location it was found at.
type Problem struct {
	severity   Severity
	message    string
	sourceName string
	sourceLine int
}

// NewProblem returns a Problem at the given source. line is zero when
// the position is unknown.
func NewProblem(severity Severity, message, sourceName string, line int) Problem {
	return Problem{
		severity:   severity,
		message:    message,
		sourceName: sourceName,
		sourceLine: line,
	}
}

// Severity returns the problem's severity.
func (p Problem) Severity() Severity {
	return p.severity
}

// Message returns the problem description.
func (p Problem) Message() string {
	return p.message
}

// SourceName returns the name of the source the problem was found in.
func (p Problem) SourceName() string {
	return p.sourceName
}

// Location returns the source name and position, when known.
func (p Problem) Location() string {
	if p.sourceLine > 0 {
		return fmt.Sprintf("%s @ line %d", p.sourceName, p.sourceLine)
	}
	return p.sourceName
}

// String is part of fmt.Stringer.
func (p Problem) String() string {
	if loc := p.Location(); loc != "" {
		return fmt.Sprintf("%s: %s (%s)", p.severity, p.message, loc)
	}
	return fmt.Sprintf("%s: %s", p.severity, p.message)
}

// BlocksGeneration reports whether any of the problems should stop a
// caller from generating output.
func BlocksGeneration(problems []Problem) bool {
	for _, p := range problems {
		if p.severity >= Error {
			return true
		}
	}
	return false
}
