// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// schemadiff generates SQL scripts from versioned schema descriptions.
// The "base" command renders the full creation script for one version
// of a package; the "upgrade" command renders the ordered upgrade
// script that transforms a version's parent into the version itself.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"

	"github.com/juju/schemadiff/core/version"
	"github.com/juju/schemadiff/internal/cmd"
	"github.com/juju/schemadiff/internal/parser"
	"github.com/juju/schemadiff/internal/sqlgen"
)

var logger = loggo.GetLogger("schemadiff.cmd")

func init() {
	if spec := os.Getenv("SCHEMADIFF_LOGGING_CONFIG"); spec != "" {
		if err := loggo.ConfigureLoggers(spec); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING invalid logging config: %v\n", err)
		}
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	super := cmd.NewSuperCommand(
		"schemadiff", "generate sql scripts from versioned schema descriptions")
	super.Register(&baseCommand{})
	super.Register(&upgradeCommand{})
	return super.Main(args)
}

// source is one package argument: a directory, optionally pinned to a
// version with dir@1.2.3. An unpinned source uses the newest version.
type source struct {
	dir     string
	version version.Number
}

func parseSource(arg string) (source, error) {
	parts := strings.Split(arg, "@")
	switch len(parts) {
	case 1:
		return source{dir: parts[0]}, nil
	case 2:
		number, ok := parser.ParseVersionName(parts[1])
		if !ok {
			return source{}, errors.NotValidf("version %q in source %q", parts[1], arg)
		}
		return source{dir: parts[0], version: number}, nil
	}
	return source{}, errors.NotValidf("source %q", arg)
}

// generateCommand carries the flags and machinery shared by the base
// and upgrade commands.
type generateCommand struct {
	output      string
	platform    string
	force       bool
	directories bool
	verbose     bool

	sources []source
}

func (c *generateCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.output, "o", "", "")
	f.StringVar(&c.output, "output", "", "directory the generated files are written to")
	f.StringVar(&c.platform, "p", "", "")
	f.StringVar(&c.platform, "platform", "", "database platform to generate sql for")
	f.BoolVar(&c.force, "f", false, "")
	f.BoolVar(&c.force, "force", false, "write into an existing output directory")
	f.BoolVar(&c.directories, "d", false, "")
	f.BoolVar(&c.directories, "directories", false, "write each package into its own subdirectory")
	f.BoolVar(&c.verbose, "v", false, "")
	f.BoolVar(&c.verbose, "verbose", false, "report non-blocking problems as well as errors")
}

func (c *generateCommand) Init(args []string) error {
	if c.output == "" {
		return errors.New("no output directory given (-o)")
	}
	if c.platform == "" {
		return errors.New("no platform given (-p)")
	}
	if len(args) == 0 {
		return errors.New("no package directories given")
	}
	for _, arg := range args {
		src, err := parseSource(arg)
		if err != nil {
			return errors.Trace(err)
		}
		c.sources = append(c.sources, src)
	}
	return nil
}

func (c *generateCommand) generator() (sqlgen.ScriptGenerator, error) {
	gen, err := sqlgen.ForPlatform(c.platform)
	if err != nil {
		return nil, errors.Annotatef(err,
			"known platforms are %s", strings.Join(sqlgen.Platforms(), ", "))
	}
	return gen, nil
}

// loadBranch loads the package under a source directory and resolves
// the requested branch. Problems that do not stop the branch from
// resolving come back as report lines.
func (c *generateCommand) loadBranch(src source) (*version.Branch, []string, error) {
	pkg, err := parser.LoadPackage(src.dir, "")
	if err != nil {
		return nil, nil, errors.Annotatef(err, "loading %s", src.dir)
	}
	var reports []string
	for _, number := range pkg.UnresolvedVersions() {
		reports = append(reports,
			fmt.Sprintf("package references unknown version number %s", number))
	}

	if src.version.IsZero() {
		branch := pkg.NewestVersion()
		if branch == nil {
			return nil, reports, errors.Errorf("no versions in package %q", pkg.Name())
		}
		return branch, reports, nil
	}
	branch, err := pkg.Branch(src.version)
	if err != nil {
		return nil, reports, errors.Errorf(
			"could not find version %q in package %q; available versions are %s",
			src.version.String(), pkg.Name(), availableVersions(pkg))
	}
	return branch, reports, nil
}

func availableVersions(pkg *version.Package) string {
	branches := pkg.Branches()
	if len(branches) == 0 {
		return "none"
	}
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Number().String()
	}
	return strings.Join(names, ", ")
}

// report prints problem lines for one source. Notes only show up in
// verbose mode; everything else is always shown.
func (c *generateCommand) report(src source, lines []string, problems []version.Problem) {
	for _, line := range lines {
		fmt.Fprintf(os.Stderr, "%s: %s\n", src.dir, line)
	}
	for _, p := range problems {
		if p.Severity() == version.Note && !c.verbose {
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", src.dir, p)
	}
}

// outputDir resolves (and creates) the directory for one package's
// files, honouring the -d and -f flags.
func (c *generateCommand) outputDir(sub string) (string, error) {
	dir := c.output
	if c.directories {
		dir = filepath.Join(dir, sub)
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return "", errors.NotValidf("output path %q is not a directory", dir)
	case err == nil && !c.force:
		return "", errors.Errorf("output directory %q exists; use --force to write into it", dir)
	case err != nil && !os.IsNotExist(err):
		return "", errors.Trace(err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Trace(err)
	}
	return dir, nil
}

// script is one generated SQL file before it hits disk. The rank is
// the declaration rank of the element the script came from, and fixes
// both the file ordering and the numeric file name prefix.
type script struct {
	rank       int
	name       string
	statements []string
}

// writeScripts writes the non-empty scripts as NN_name.sql files, the
// numeric prefix zero-padded to the widest rank.
func writeScripts(dir string, scripts []script) error {
	width := 1
	for _, s := range scripts {
		if w := len(strconv.Itoa(s.rank)); w > width {
			width = w
		}
	}
	sort.SliceStable(scripts, func(i, j int) bool {
		return scripts[i].rank < scripts[j].rank
	})
	for _, s := range scripts {
		if len(s.statements) == 0 {
			continue
		}
		name := fmt.Sprintf("%0*d_%s.sql", width, s.rank, s.name)
		path := filepath.Join(dir, name)
		logger.Debugf("writing %s", path)
		content := strings.Join(s.statements, "\n")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
