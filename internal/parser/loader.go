// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v2"

	coreschema "github.com/juju/schemadiff/core/schema"
	"github.com/juju/schemadiff/core/version"
)

// manifestFileName names the optional per-version metadata file. It is
// never parsed as a schema description.
const manifestFileName = "_manifest.yaml"

// versionNamePattern matches version directory names: an optional "v",
// dewey decimal digits separated by "." or "_", and an optional
// trailing description ("1", "v2", "1_2_add_accounts").
var versionNamePattern = regexp.MustCompile(`^v?(\d+(?:[._]\d+)*)(?:_[^0-9].*)?$`)

// LoadPackage scans root for version directories and registers each
// one with a Package, parsing lazily on first payload access. A
// subdirectory is a version directory when its name carries a dewey
// decimal number or it holds a _manifest.yaml naming the version.
// Versions that declare no parent get the next-lower found version as
// their implicit parent; the lowest is a root.
//
// packageName overrides the package name derived from the root
// directory's own name.
func LoadPackage(root, packageName string) (*version.Package, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("package directory %q", root)
		}
		return nil, errors.Trace(err)
	}
	if !info.IsDir() {
		return nil, errors.NotValidf("package path %q is not a directory", root)
	}
	if packageName == "" {
		packageName = filepath.Base(filepath.Clean(root))
	}
	logger.Debugf("loading package %q from %s", packageName, root)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Trace(err)
	}

	found := make(map[string]*versionDir)
	var numbers []version.Number
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir, err := readVersionDir(filepath.Join(root, entry.Name()), packageName)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if dir == nil {
			logger.Tracef("skipping %s: not a version directory", entry.Name())
			continue
		}
		key := dir.number.String()
		if prior, ok := found[key]; ok {
			return nil, errors.AlreadyExistsf(
				"version %s (%s and %s)", dir.number, prior.path, dir.path)
		}
		found[key] = dir
		numbers = append(numbers, dir.number)
	}

	sort.Slice(numbers, func(i, j int) bool {
		return numbers[i].Compare(numbers[j]) < 0
	})

	pkg, err := version.NewPackage(packageName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i, number := range numbers {
		dir := found[number.String()]
		parent := dir.parent
		if !dir.parentGiven && i > 0 {
			parent = numbers[i-1]
		}
		if err := pkg.AddLazy(dir.load, dir.number, parent); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return pkg, nil
}

// versionDir is one version directory found under a package root.
type versionDir struct {
	path   string
	pkg    string
	number version.Number

	// parentGiven distinguishes "no parent declared" (implicit
	// next-lower parent) from a declared root.
	parentGiven bool
	parent      version.Number

	problems []version.Problem
}

// manifestChecker coerces the loosely typed manifest document. Every
// field is optional.
var manifestChecker = schema.FieldMap(
	schema.Fields{
		"version": schema.OneOf(schema.Int(), schema.String()),
		"parent":  schema.OneOf(schema.Int(), schema.String()),
		"package": schema.String(),
	},
	schema.Defaults{
		"version": schema.Omit,
		"parent":  schema.Omit,
		"package": schema.Omit,
	},
)

// readVersionDir inspects one subdirectory. It returns nil when the
// directory is not a version directory at all.
func readVersionDir(path, packageName string) (*versionDir, error) {
	dir := &versionDir{path: path, pkg: packageName}

	name := filepath.Base(path)
	number, numberOK := ParseVersionName(name)

	manifestPath := filepath.Join(path, manifestFileName)
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		if !numberOK {
			return nil, nil
		}
		dir.number = number
		return dir, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotatef(err, "reading %s", manifestPath)
	}
	coerced, err := manifestChecker.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", manifestPath)
	}
	manifest := coerced.(map[string]interface{})

	problem := func(message string) {
		dir.problems = append(dir.problems,
			version.NewProblem(version.Error, message, manifestPath, 0))
	}

	if v, ok := manifest["version"]; ok {
		n, ok := parseManifestNumber(v)
		if !ok {
			problem(fmt.Sprintf("version %v does not match the version pattern", v))
		} else {
			number, numberOK = n, true
		}
	}
	if !numberOK {
		// The manifest marks this as a version directory; skipping it
		// here would make the whole version vanish without a report.
		return nil, errors.Errorf(
			"version directory %s: manifest gives no usable version number", path)
	}
	dir.number = number

	if v, ok := manifest["parent"]; ok {
		dir.parentGiven = true
		n, ok := parseManifestNumber(v)
		if !ok {
			problem(fmt.Sprintf("parent version %v does not match the version pattern", v))
			dir.parentGiven = false
		} else {
			dir.parent = n
		}
	}
	if v, ok := manifest["package"]; ok {
		if v != packageName {
			problem(fmt.Sprintf(
				"manifest names package %v, loading as %q", v, packageName))
		}
	}
	return dir, nil
}

// load parses every schema description under the version directory.
// It is the branch payload loader registered with the package.
func (d *versionDir) load(number version.Number) (*version.Version, error) {
	logger.Debugf("parsing version %s of %q from %s", number, d.pkg, d.path)

	p := New()
	var changes []coreschema.Change
	var objects []coreschema.Object
	problems := append([]version.Problem{}, d.problems...)

	err := filepath.Walk(d.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := strings.ToLower(info.Name())
		if name == manifestFileName {
			return nil
		}
		if ext := filepath.Ext(name); ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Trace(err)
		}
		result, err := p.Parse(path, data)
		if err != nil {
			return errors.Trace(err)
		}
		changes = append(changes, result.Changes...)
		objects = append(objects, result.Objects...)
		problems = append(problems, result.Problems...)
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	v, err := version.NewVersion(d.pkg, number, changes, objects, problems)
	return v, errors.Trace(err)
}

// ParseVersionName extracts the dewey decimal number from a version
// directory name or a version reference such as "1.2.3".
func ParseVersionName(name string) (version.Number, bool) {
	m := versionNamePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(name)))
	if m == nil {
		return version.Number{}, false
	}
	fields := strings.FieldsFunc(m[1], func(r rune) bool {
		return r == '.' || r == '_'
	})
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return version.Number{}, false
		}
		parts[i] = n
	}
	number, err := version.NewNumber(parts...)
	if err != nil {
		return version.Number{}, false
	}
	return number, true
}

// parseManifestNumber accepts the coerced manifest forms of a version
// number: an integer or a dewey decimal string.
func parseManifestNumber(v interface{}) (version.Number, bool) {
	switch n := v.(type) {
	case int64:
		number, err := version.NewNumber(int(n))
		return number, err == nil
	case string:
		return ParseVersionName(n)
	}
	return version.Number{}, false
}
