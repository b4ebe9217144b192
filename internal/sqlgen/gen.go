// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package sqlgen renders schema versions and ordered upgrade streams
// as SQL scripts. Each generator serves one database platform family;
// statements whose SQL has no rendering for the generator's platform
// are silently skipped, so mixed-platform sources stay usable.
package sqlgen

import (
	"sort"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/juju/schemadiff/upgrade"
)

var logger = loggo.GetLogger("schemadiff.sqlgen")

// ScriptGenerator generates SQL scripts for one platform family. The
// methods are stateless.
type ScriptGenerator interface {
	// Name returns the canonical platform name.
	Name() string

	// Matches reports whether the generator serves the named platform.
	Matches(platform string) bool

	// GenerateBase returns the creation script for one schema object
	// of a version. Changes contribute nothing at creation time.
	GenerateBase(el upgrade.Element) ([]string, error)

	// GenerateUpgrade returns the upgrade script for one element of an
	// ordered upgrade stream.
	GenerateUpgrade(el upgrade.Element) ([]string, error)
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]ScriptGenerator)
)

// Register adds a generator to the registry, replacing any previous
// generator of the same name. Called from init in the platform files.
func Register(gen ScriptGenerator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	logger.Tracef("registering sql generator %q", gen.Name())
	registry[gen.Name()] = gen
}

// ForPlatform returns the generator serving the named platform.
func ForPlatform(platform string) (ScriptGenerator, error) {
	want := strings.ToLower(strings.TrimSpace(platform))
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, name := range sortedNames() {
		if gen := registry[name]; gen.Matches(want) {
			return gen, nil
		}
	}
	return nil, errors.NotFoundf("sql generator for platform %q", platform)
}

// Platforms returns the canonical names of the registered generators.
func Platforms() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	return sortedNames()
}

func sortedNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
