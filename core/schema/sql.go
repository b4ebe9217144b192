// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema

import (
	"strings"

	"github.com/juju/errors"
)

// SQLString is one rendering of a SQL statement for a set of database
// platforms, in a particular syntax dialect.
type SQLString struct {
	sql       string
	syntax    string
	platforms []string
}

// NewSQLString returns a SQLString for the given platforms. The syntax
// and platform names are normalized to lower case.
func NewSQLString(sql, syntax string, platforms []string) (*SQLString, error) {
	if sql == "" {
		return nil, errors.NotValidf("empty sql text")
	}
	if syntax == "" {
		syntax = "native"
	}
	if len(platforms) == 0 {
		return nil, errors.NotValidf("sql with no platforms")
	}
	cleaned := make([]string, len(platforms))
	for i, p := range platforms {
		cleaned[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return &SQLString{
		sql:       sql,
		syntax:    strings.ToLower(strings.TrimSpace(syntax)),
		platforms: cleaned,
	}, nil
}

// SQL returns the statement text.
func (s *SQLString) SQL() string {
	return s.sql
}

// Syntax returns the dialect name, for example "universal" or "mysql".
func (s *SQLString) Syntax() string {
	return s.syntax
}

// Platforms returns the platforms this text applies to.
func (s *SQLString) Platforms() []string {
	return s.platforms
}

// SQLSet collects the per-platform renderings of one logical SQL
// statement.
type SQLSet struct {
	strings []*SQLString
}

// NewSQLSet returns a SQLSet over the given renderings.
func NewSQLSet(strings []*SQLString) (*SQLSet, error) {
	if len(strings) == 0 {
		return nil, errors.NotValidf("empty sql set")
	}
	return &SQLSet{strings: strings}, nil
}

// UniversalSQL returns a SQLSet holding a single universal-syntax
// statement applicable to all platforms.
func UniversalSQL(sql string) (*SQLSet, error) {
	s, err := NewSQLString(sql, "universal", []string{"all"})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return NewSQLSet([]*SQLString{s})
}

// Strings returns every rendering in the set.
func (s *SQLSet) Strings() []*SQLString {
	return s.strings
}

// ForPlatform returns the most appropriate rendering for any of the
// given platforms, preferring an exact platform match over a universal
// fallback ("universal" syntax, or an "any"/"all" platform). It returns
// nil when nothing in the set applies.
func (s *SQLSet) ForPlatform(platforms ...string) *SQLString {
	for _, want := range platforms {
		want = strings.ToLower(strings.TrimSpace(want))
		for _, sql := range s.strings {
			for _, have := range sql.platforms {
				if want == have {
					return sql
				}
			}
		}
	}
	for _, sql := range s.strings {
		if sql.syntax == "universal" {
			return sql
		}
		for _, have := range sql.platforms {
			if have == "any" || have == "all" {
				return sql
			}
		}
	}
	return nil
}
