// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/juju/errors"

	"github.com/juju/schemadiff/core/version"
	"github.com/juju/schemadiff/internal/cmd"
	"github.com/juju/schemadiff/upgrade"
)

// upgradeCommand generates the upgrade script that transforms each
// named version's parent into the version itself: one SQL file per
// element of the ordered upgrade stream.
type upgradeCommand struct {
	generateCommand
}

func (c *upgradeCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "upgrade",
		Args:    "-o <dir> -p <platform> [options] <dir>[@<version>] ...",
		Purpose: "generate upgrade scripts for a schema version",
		Doc: `
Generates the upgrade script that transforms each named version's
parent into the version itself. A source names a package directory,
optionally pinned to a version ("schema/accounts@1.2"); an unpinned
source upgrades to the newest version found. The named version must
have a parent. Nothing is written while any source still has
unresolved problems.
`,
	}
}

func (c *upgradeCommand) Run() error {
	gen, err := c.generator()
	if err != nil {
		return errors.Trace(err)
	}

	// Resolve and vet every source before writing anything.
	type loaded struct {
		src      source
		analysis *upgrade.BranchAnalysis
	}
	var work []loaded
	blocked := false
	for _, src := range c.sources {
		branch, reports, err := c.loadBranch(src)
		if err != nil {
			return errors.Trace(err)
		}
		analysis, err := upgrade.NewBranchAnalysis(branch)
		if err != nil {
			return errors.Annotatef(err, "analysing %s", src.dir)
		}
		if !analysis.IsUpgrade() {
			return errors.Errorf(
				"version %s of %q is a root version; there is nothing to upgrade from",
				branch.Number(), analysis.Current().Package())
		}
		c.report(src, reports, nil)
		c.reportUpgrade(src, analysis)
		if len(reports) > 0 || analysis.BlocksGeneration() {
			blocked = true
			continue
		}
		work = append(work, loaded{src: src, analysis: analysis})
	}
	if blocked {
		return errors.New("problems found; no files generated")
	}

	for _, w := range work {
		number := w.analysis.Branch().Number()
		sub := fmt.Sprintf("%s_v%s", w.analysis.Current().Package(), number)
		dir, err := c.outputDir(sub)
		if err != nil {
			return errors.Trace(err)
		}
		logger.Infof("generating upgrade to version %s of %q into %s",
			number, w.analysis.Current().Package(), dir)

		elements, err := w.analysis.Changes()
		if err != nil {
			return errors.Annotatef(err, "ordering upgrade to version %s", number)
		}
		var scripts []script
		for _, el := range elements {
			statements, err := gen.GenerateUpgrade(el)
			if err != nil {
				return errors.Annotatef(err, "generating upgrade to version %s", number)
			}
			name := "change"
			if a, ok := el.(*upgrade.Analysis); ok {
				name = a.Name()
			}
			scripts = append(scripts, script{
				rank:       el.Order().Source(),
				name:       name,
				statements: statements,
			})
		}
		if err := writeScripts(dir, scripts); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// reportUpgrade prints the diff's problems, each line naming the
// version it belongs to.
func (c *upgradeCommand) reportUpgrade(src source, analysis *upgrade.BranchAnalysis) {
	number := analysis.Branch().Number()
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, "%s: (%s) %s\n",
			src.dir, number, fmt.Sprintf(format, args...))
	}
	for _, p := range analysis.VersionProblems() {
		if p.Severity() == version.Note && !c.verbose {
			continue
		}
		line("%s", p)
	}
	for _, p := range analysis.Errors() {
		line("error: %s", p)
	}
	for _, p := range analysis.Warnings() {
		line("warning: %s", p)
	}
}
