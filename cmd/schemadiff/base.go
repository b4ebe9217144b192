// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/version"
	"github.com/juju/schemadiff/internal/cmd"
)

// baseCommand generates the creation script for one version of each
// named package: one SQL file per schema object, numbered by
// declaration rank.
type baseCommand struct {
	generateCommand
}

func (c *baseCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "base",
		Args:    "-o <dir> -p <platform> [options] <dir>[@<version>] ...",
		Purpose: "generate creation scripts for a schema version",
		Doc: `
Generates the full creation script for one version of each named
package. A source names a package directory, optionally pinned to a
version ("schema/accounts@1.2"); an unpinned source uses the newest
version found. Nothing is written while any source still has
unresolved problems.
`,
	}
}

func (c *baseCommand) Run() error {
	gen, err := c.generator()
	if err != nil {
		return errors.Trace(err)
	}

	// Resolve and vet every source before writing anything.
	type loaded struct {
		src     source
		payload *version.Version
	}
	var work []loaded
	blocked := false
	for _, src := range c.sources {
		branch, reports, err := c.loadBranch(src)
		if err != nil {
			return errors.Trace(err)
		}
		payload, err := branch.Payload()
		if err != nil {
			return errors.Annotatef(err, "loading %s", src.dir)
		}
		c.report(src, reports, payload.Problems())
		if len(reports) > 0 || version.BlocksGeneration(payload.Problems()) {
			blocked = true
			continue
		}
		work = append(work, loaded{src: src, payload: payload})
	}
	if blocked {
		return errors.New("problems found; no files generated")
	}

	for _, w := range work {
		dir, err := c.outputDir(w.payload.Package())
		if err != nil {
			return errors.Trace(err)
		}
		logger.Infof("generating version %s of %q into %s",
			w.payload.Number(), w.payload.Package(), dir)

		var scripts []script
		for _, obj := range w.payload.Objects() {
			statements, err := gen.GenerateBase(obj)
			if err != nil {
				return errors.Annotatef(err, "generating %s", obj.FullName())
			}
			scripts = append(scripts, script{
				rank:       obj.Order().Source(),
				name:       obj.Name(),
				statements: statements,
			})
		}
		if err := writeScripts(dir, scripts); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
