// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v2"

	"github.com/juju/schemadiff/core/order"
	"github.com/juju/schemadiff/core/schema"
	"github.com/juju/schemadiff/core/version"
)

var logger = loggo.GetLogger("schemadiff.parser")

// Result holds everything extracted from one schema description
// document: top-level changes, schema objects, and the problems found
// along the way. A fatal problem suppresses the malformed object but
// never stops the parse.
type Result struct {
	Changes  []schema.Change
	Objects  []schema.Object
	Problems []version.Problem
}

// Parser parses schema description documents into model objects,
// minting the declaration-position orders as it goes. Sources are
// ranked in the order they are first parsed. Not safe for concurrent
// use.
type Parser struct {
	sources map[string]*sourceState
}

type sourceState struct {
	index int

	// counts holds the next-sequence counter per group. The last group
	// is the active one; an explicit order key extends the list.
	counts []int
}

// New returns an empty Parser.
func New() *Parser {
	return &Parser{sources: make(map[string]*sourceState)}
}

func (p *Parser) state(source string) *sourceState {
	st, ok := p.sources[source]
	if !ok {
		st = &sourceState{index: len(p.sources), counts: []int{-1}}
		p.sources[source] = st
	}
	return st
}

// nextOrder mints the order for the next declaration in source.
func (p *Parser) nextOrder(source string) order.Order {
	st := p.state(source)
	group := len(st.counts) - 1
	st.counts[group]++
	return order.New(st.index, group, st.counts[group], nil, nil)
}

// explicitOrder mints an order in the given group, extending the group
// list as needed. Later implicit orders continue from the last group.
func (p *Parser) explicitOrder(source string, group int) order.Order {
	st := p.state(source)
	for len(st.counts) <= group {
		st.counts = append(st.counts, -1)
	}
	st.counts[group]++
	return order.New(st.index, group, st.counts[group], nil, nil)
}

// Parse parses one YAML schema description document. Malformed input
// is reported through Result.Problems; the error return is reserved
// for internal failures.
func (p *Parser) Parse(source string, data []byte) (*Result, error) {
	if source == "" {
		return nil, errors.NotValidf("empty source name")
	}
	logger.Tracef("parsing schema description %q", source)
	d := &docParser{parser: p, source: source}

	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		d.problem(version.Fatal, "top level must be a mapping: "+err.Error())
		return d.result(), nil
	}
	d.parseDocument(doc)
	return d.result(), nil
}

// docParser accumulates the outcome of parsing one document.
type docParser struct {
	parser   *Parser
	source   string
	changes  []schema.Change
	objects  []schema.Object
	problems []version.Problem
}

func (d *docParser) result() *Result {
	return &Result{
		Changes:  d.changes,
		Objects:  d.objects,
		Problems: d.problems,
	}
}

func (d *docParser) problem(sev version.Severity, message string) {
	d.problems = append(d.problems, version.NewProblem(sev, message, d.source, 0))
}

func (d *docParser) parseDocument(doc yaml.MapSlice) {
	for _, entry := range doc {
		key := stripKey(fmt.Sprint(entry.Key))
		val := entry.Value
		switch key {
		case "change":
			d.addChange(d.parseTopChange(val))
		case "changes":
			for _, v := range d.unwrapSections(key, val, "change") {
				d.addChange(d.parseTopChange(v))
			}
		case "table":
			d.addObject(d.parseTable(val))
		case "tables":
			for _, v := range d.unwrapSections(key, val, "table") {
				d.addObject(d.parseTable(v))
			}
		case "view":
			d.addObject(d.parseView(val))
		case "views":
			for _, v := range d.unwrapSections(key, val, "view") {
				d.addObject(d.parseView(v))
			}
		case "procedure", "procedures", "sequence", "sequences":
			d.problem(version.Error, key+" are not supported")
		default:
			d.problem(version.Warning, unknownKey(key, val))
		}
	}
}

func (d *docParser) addChange(ch schema.Change) {
	if ch != nil {
		d.changes = append(d.changes, ch)
	}
}

func (d *docParser) addObject(obj schema.Object) {
	if obj != nil {
		d.objects = append(d.objects, obj)
	}
}

// builder carries the fields common to every parsed declaration and
// the coercion helpers that report problems against the document.
type builder struct {
	doc     *docParser
	order   order.Order
	comment string
	before  []string
	after   []string
	failed  bool
}

func (d *docParser) newBuilder() *builder {
	return &builder{doc: d, order: d.parser.nextOrder(d.source)}
}

// parseCommon handles the keys every declaration accepts. It reports
// whether the key was consumed.
func (b *builder) parseCommon(key string, val interface{}) bool {
	switch key {
	case "error":
		b.doc.problem(version.Error, fmt.Sprint(val))
	case "warning":
		b.doc.problem(version.Warning, fmt.Sprint(val))
	case "note":
		b.doc.problem(version.Note, fmt.Sprint(val))
	case "comment":
		b.comment = strings.TrimSpace(b.str(key, val))
	case "order":
		b.order = b.doc.parser.explicitOrder(b.doc.source, b.integer(key, val))
	case "occursbefore":
		b.before = append(b.before, b.stringList(key, val)...)
	case "occursafter":
		b.after = append(b.after, b.stringList(key, val)...)
	default:
		return false
	}
	return true
}

// finalOrder folds the collected occurs-before/occurs-after labels into
// the minted order.
func (b *builder) finalOrder() order.Order {
	if len(b.before) == 0 && len(b.after) == 0 {
		return b.order
	}
	o := b.order
	return order.New(o.Source(), o.Group(), o.Sequence(), b.before, b.after)
}

func (b *builder) errorf(format string, args ...interface{}) {
	b.doc.problem(version.Error, fmt.Sprintf(format, args...))
}

func (b *builder) warningf(format string, args ...interface{}) {
	b.doc.problem(version.Warning, fmt.Sprintf(format, args...))
}

// fatalf marks the declaration as unusable; the caller drops it.
func (b *builder) fatalf(format string, args ...interface{}) {
	b.failed = true
	b.doc.problem(version.Fatal, fmt.Sprintf(format, args...))
}

func (b *builder) unknownKey(key string, val interface{}) {
	b.doc.problem(version.Warning, unknownKey(key, val))
}

func (b *builder) str(key string, val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case int, int64, float64, bool:
		return fmt.Sprint(v)
	}
	b.errorf("%s expected a string value, found %v", key, val)
	return fmt.Sprint(val)
}

func (b *builder) integer(key string, val interface{}) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	b.errorf("%s expected an integer value, found %v", key, val)
	return 0
}

func (b *builder) boolean(key string, val interface{}) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes", "t":
			return true
		case "0", "false", "off", "no", "f":
			return false
		}
	}
	b.warningf("%s expected a recognized boolean phrase, found %v; assuming false", key, val)
	return false
}

// stringList accepts a comma-separated string or a list of strings.
func (b *builder) stringList(key string, val interface{}) []string {
	var ret []string
	switch v := val.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			ret = append(ret, strings.TrimSpace(part))
		}
	case []interface{}:
		for _, item := range v {
			ret = append(ret, strings.TrimSpace(b.str(key, item)))
		}
	default:
		b.errorf("%s expected a string or list, found %v", key, val)
	}
	return ret
}

func (b *builder) schemaKind(key string, val interface{}) (schema.Kind, bool) {
	name := strings.ToLower(strings.TrimSpace(b.str(key, val)))
	kind, ok := schema.ParseKind(name)
	if !ok {
		b.errorf("%s: unknown schema object kind %q", key, name)
	}
	return kind, ok
}

func (b *builder) changeKind(key string, val interface{}) (schema.ChangeKind, bool) {
	name := strings.ToLower(strings.TrimSpace(b.str(key, val)))
	kind, err := schema.ParseChangeKind(name)
	if err != nil {
		b.errorf("%s: unknown change kind %q", key, name)
		return kind, false
	}
	return kind, true
}

// parseSQLString parses one entry of a dialects list.
func (b *builder) parseSQLString(val interface{}) *schema.SQLString {
	m, ok := asMapping(val)
	if !ok {
		b.errorf("dialect must be a mapping, found %v", val)
		return nil
	}
	syntax := "native"
	var platforms []string
	var sql string
	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch key {
		case "syntax":
			syntax = strings.ToLower(strings.TrimSpace(b.str(key, entry.Value)))
		case "platforms":
			platforms = append(platforms, b.stringList(key, entry.Value)...)
		case "sql", "query":
			sql = b.str(key, entry.Value)
		}
	}
	s, err := schema.NewSQLString(sql, syntax, platforms)
	if err != nil {
		b.errorf("invalid dialect: %v", err)
		return nil
	}
	return s
}

func (b *builder) universalSQL(key string, val interface{}) *schema.SQLString {
	s, err := schema.NewSQLString(b.str(key, val), "universal", []string{"all"})
	if err != nil {
		b.errorf("expected a sql statement for %s: %v", key, err)
		return nil
	}
	return s
}

// sqlKey consumes the sql-bearing keys shared by changes, views,
// constraints and computed values, appending to dst. It reports
// whether the key was consumed.
func (b *builder) sqlKey(key string, val interface{}, dst *[]*schema.SQLString) bool {
	switch key {
	case "dialects":
		for _, v := range b.doc.unwrapSections(key, val, "dialect") {
			if s := b.parseSQLString(v); s != nil {
				*dst = append(*dst, s)
			}
		}
	case "statement", "sql", "query", "execute":
		if s := b.universalSQL(key, val); s != nil {
			*dst = append(*dst, s)
		}
	default:
		return false
	}
	return true
}

// parseTopChange parses a change declared outside any schema object.
// Only sql changes make sense there: a structural change has no object
// to attach to.
func (d *docParser) parseTopChange(val interface{}) schema.Change {
	m, ok := asMapping(val)
	if !ok {
		d.problem(version.Fatal, "top change value is not a mapping")
		return nil
	}

	b := d.newBuilder()
	kind := schema.SQLKind
	var target schema.Kind
	var affects []string
	var sqls []*schema.SQLString

	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch {
		case b.parseCommon(key, entry.Value):
		case key == "schema" || key == "schematype":
			if k, ok := b.schemaKind(key, entry.Value); ok {
				target = k
			}
		case key == "change" || key == "changetype":
			if k, ok := b.changeKind(key, entry.Value); ok {
				kind = k
			}
		case key == "affects":
			affects = b.stringList(key, entry.Value)
		case b.sqlKey(key, entry.Value, &sqls):
		default:
			b.unknownKey(key, entry.Value)
		}
	}

	if kind != schema.SQLKind {
		b.fatalf("only sql changes are supported at top level")
	}
	if target == "" {
		b.fatalf("did not specify schema kind for change")
	}
	if len(sqls) == 0 {
		b.fatalf("requires 'sql' or 'dialects' for sql change")
	}
	if b.failed {
		return nil
	}
	set, err := schema.NewSQLSet(sqls)
	if err != nil {
		b.fatalf("invalid sql change: %v", err)
		return nil
	}
	ch, err := schema.NewSQLChange(b.finalOrder(), b.comment, target, set, affects)
	if err != nil {
		b.fatalf("invalid sql change: %v", err)
		return nil
	}
	return ch
}

// parseInnerChange parses a change nested in a schema object. target
// is the kind of the enclosing object unless the change overrides it.
func (d *docParser) parseInnerChange(val interface{}, target schema.Kind) schema.Change {
	m, ok := asMapping(val)
	if !ok {
		d.problem(version.Fatal, "change value is not a mapping")
		return nil
	}

	b := d.newBuilder()
	kind := schema.SQLKind
	var previousName string
	var affects []string
	var sqls []*schema.SQLString

	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch {
		case b.parseCommon(key, entry.Value):
		case key == "schema" || key == "schematype":
			if k, ok := b.schemaKind(key, entry.Value); ok {
				target = k
			}
		case key == "change" || key == "changetype" || key == "type":
			if k, ok := b.changeKind(key, entry.Value); ok {
				kind = k
			}
		case key == "previously" || key == "fromname" || key == "was":
			previousName = strings.TrimSpace(b.str(key, entry.Value))
		case key == "affects":
			affects = b.stringList(key, entry.Value)
		case b.sqlKey(key, entry.Value, &sqls):
		default:
			b.unknownKey(key, entry.Value)
		}
	}
	if b.failed {
		return nil
	}

	if kind == schema.SQLKind {
		if len(sqls) == 0 {
			b.fatalf("requires 'sql' or 'dialects' for sql change")
			return nil
		}
		set, err := schema.NewSQLSet(sqls)
		if err != nil {
			b.fatalf("invalid sql change: %v", err)
			return nil
		}
		ch, err := schema.NewSQLChange(b.finalOrder(), b.comment, target, set, affects)
		if err != nil {
			b.fatalf("invalid sql change: %v", err)
			return nil
		}
		return ch
	}

	ch, err := schema.NewSchemaChange(
		b.finalOrder(), b.comment, target, kind, previousName, affects)
	if err != nil {
		b.fatalf("invalid %s change: %v", kind, err)
		return nil
	}
	return ch
}

func (d *docParser) parseChangesKey(
	key string, val interface{}, target schema.Kind, dst *[]schema.Change,
) bool {
	add := func(ch schema.Change) {
		if ch != nil {
			*dst = append(*dst, ch)
		}
	}
	switch key {
	case "change":
		add(d.parseInnerChange(val, target))
	case "changes":
		for _, v := range d.unwrapSections(key, val, "change") {
			add(d.parseInnerChange(v, target))
		}
	default:
		return false
	}
	return true
}

func (d *docParser) parseTable(val interface{}) schema.Object {
	m, ok := asMapping(val)
	if !ok {
		d.problem(version.Fatal, `"table" must be a mapping`)
		return nil
	}

	b := d.newBuilder()
	args := schema.TableArgs{}
	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch {
		case b.parseCommon(key, entry.Value):
		case d.parseChangesKey(key, entry.Value, schema.TableKind, &args.Changes):
		case key == "catalog" || key == "catalogname":
			args.Catalog = strings.TrimSpace(b.str(key, entry.Value))
		case key == "schema" || key == "schemaname":
			args.Schema = strings.TrimSpace(b.str(key, entry.Value))
		case key == "name" || key == "tablename":
			args.Name = strings.TrimSpace(b.str(key, entry.Value))
		case key == "space" || key == "tablespace":
			args.TableSpace = strings.TrimSpace(b.str(key, entry.Value))
		case key == "column":
			if col := d.parseColumn(entry.Value); col != nil {
				args.Columns = append(args.Columns, col)
			}
		case key == "columns":
			for _, v := range d.unwrapSections(key, entry.Value, "column") {
				if col := d.parseColumn(v); col != nil {
					args.Columns = append(args.Columns, col)
				}
			}
		case key == "constraints":
			args.Constraints = append(args.Constraints,
				d.parseConstraintsList(b, key, entry.Value, args.Name)...)
		default:
			b.unknownKey(key, entry.Value)
		}
	}

	if args.Name == "" {
		b.fatalf("must set a table name")
	}
	if b.failed {
		return nil
	}
	args.Order = b.finalOrder()
	args.Comment = b.comment
	table, err := schema.NewTable(args)
	if err != nil {
		b.fatalf("invalid table: %v", err)
		return nil
	}
	return table
}

func (d *docParser) parseView(val interface{}) schema.Object {
	m, ok := asMapping(val)
	if !ok {
		d.problem(version.Fatal, `"view" must be a mapping`)
		return nil
	}

	b := d.newBuilder()
	args := schema.ViewArgs{ReplaceIfExists: true}
	var sqls []*schema.SQLString
	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch {
		case b.parseCommon(key, entry.Value):
		case d.parseChangesKey(key, entry.Value, schema.ViewKind, &args.Changes):
		case key == "catalog" || key == "catalogname":
			args.Catalog = strings.TrimSpace(b.str(key, entry.Value))
		case key == "schema" || key == "schemaname":
			args.Schema = strings.TrimSpace(b.str(key, entry.Value))
		case key == "name" || key == "viewname":
			args.Name = strings.TrimSpace(b.str(key, entry.Value))
		case key == "replace" || key == "replaceifexists":
			args.ReplaceIfExists = b.boolean(key, entry.Value)
		case b.sqlKey(key, entry.Value, &sqls):
		case key == "column":
			if col := d.parseColumn(entry.Value); col != nil {
				args.Columns = append(args.Columns, col)
			}
		case key == "columns":
			for _, v := range d.unwrapSections(key, entry.Value, "column") {
				if col := d.parseColumn(v); col != nil {
					args.Columns = append(args.Columns, col)
				}
			}
		case key == "constraints":
			args.Constraints = append(args.Constraints,
				d.parseConstraintsList(b, key, entry.Value, args.Name)...)
		default:
			b.unknownKey(key, entry.Value)
		}
	}

	if args.Name == "" {
		b.fatalf("must set a view name")
	}
	if len(sqls) == 0 {
		b.fatalf("no sql specified for view definition")
	}
	if b.failed {
		return nil
	}
	set, err := schema.NewSQLSet(sqls)
	if err != nil {
		b.fatalf("invalid view definition: %v", err)
		return nil
	}
	args.Order = b.finalOrder()
	args.Comment = b.comment
	args.SelectQuery = set
	view, err := schema.NewView(args)
	if err != nil {
		b.fatalf("invalid view: %v", err)
		return nil
	}
	return view
}

// parseColumn parses a column of a table or view. The before/after
// column keys become occurs-before/occurs-after labels so the diff can
// honour the requested placement.
func (d *docParser) parseColumn(val interface{}) *schema.Column {
	m, ok := asMapping(val)
	if !ok {
		d.problem(version.Fatal, `"column" must be a mapping`)
		return nil
	}

	b := d.newBuilder()
	args := schema.ColumnArgs{Position: -1}
	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch {
		case b.parseCommon(key, entry.Value):
		case d.parseChangesKey(key, entry.Value, schema.ColumnKind, &args.Changes):
		case key == "name":
			args.Name = strings.TrimSpace(b.str(key, entry.Value))
		case key == "type":
			args.ValueType = strings.TrimSpace(b.str(key, entry.Value))
		case key == "datatype":
			args.DataType = strings.TrimSpace(b.str(key, entry.Value))
		case key == "value":
			args.Value = d.parseValue(b, entry.Value)
		case key == "default" || key == "defaultvalue":
			args.DefaultValue = d.parseValue(b, entry.Value)
		case key == "remarks":
			args.Remarks = b.str(key, entry.Value)
		case key == "before" || key == "beforecolumn":
			b.before = append(b.before, strings.TrimSpace(b.str(key, entry.Value)))
		case key == "after" || key == "aftercolumn":
			b.after = append(b.after, strings.TrimSpace(b.str(key, entry.Value)))
		case key == "autoincrement":
			args.AutoIncrement = b.boolean(key, entry.Value)
		case key == "position":
			args.Position = b.integer(key, entry.Value)
		case key == "constraints":
			args.Constraints = append(args.Constraints,
				d.parseConstraintsList(b, key, entry.Value, args.Name)...)
		default:
			b.unknownKey(key, entry.Value)
		}
	}

	if args.Name == "" {
		b.fatalf("no name set for column")
	}
	if args.ValueType == "" {
		b.fatalf("no value type set for column")
	}
	if b.failed {
		return nil
	}
	args.Order = b.finalOrder()
	args.Comment = b.comment
	col, err := schema.NewColumn(args)
	if err != nil {
		b.fatalf("invalid column: %v", err)
		return nil
	}
	return col
}

func (d *docParser) parseConstraintsList(
	b *builder, key string, val interface{}, parentColumn string,
) []*schema.Constraint {
	var ret []*schema.Constraint
	for _, v := range d.unwrapSections(key, val, "constraint") {
		if con := d.parseConstraint(v, parentColumn); con != nil {
			ret = append(ret, con)
		}
	}
	return ret
}

// parseConstraint parses one constraint. parentColumn, when not empty,
// is the implicit column list for a constraint declared on a column.
// Keys that are not recognized carry type-specific detail and are kept
// verbatim.
func (d *docParser) parseConstraint(val interface{}, parentColumn string) *schema.Constraint {
	m, ok := asMapping(val)
	if !ok {
		d.problem(version.Fatal, `"constraint" must be a mapping`)
		return nil
	}

	b := d.newBuilder()
	args := schema.ConstraintArgs{}
	var sqls []*schema.SQLString
	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch {
		case b.parseCommon(key, entry.Value):
		case d.parseChangesKey(key, entry.Value, schema.ConstraintKind, &args.Changes):
		case key == "type":
			args.Type = b.str(key, entry.Value)
		case key == "name":
			args.Name = strings.TrimSpace(b.str(key, entry.Value))
		case key == "columns":
			args.ColumnNames = append(args.ColumnNames,
				b.stringList(key, entry.Value)...)
		case key == "language" || key == "code":
			b.warningf("code constraints are not supported; ignoring %s", key)
		case key == "sql" || key == "value":
			if s := b.universalSQL(key, entry.Value); s != nil {
				sqls = append(sqls, s)
			}
		case key == "dialects":
			b.sqlKey(key, entry.Value, &sqls)
		default:
			if args.Details == nil {
				args.Details = make(map[string]string)
			}
			args.Details[key] = fmt.Sprint(entry.Value)
		}
	}

	if args.Type == "" {
		b.fatalf("no constraint type given")
	}
	if b.failed {
		return nil
	}
	if len(args.ColumnNames) == 0 && parentColumn != "" {
		args.ColumnNames = []string{parentColumn}
	}
	if len(sqls) > 0 {
		set, err := schema.NewSQLSet(sqls)
		if err != nil {
			b.fatalf("invalid constraint sql: %v", err)
			return nil
		}
		args.SQL = set
	}
	args.Order = b.finalOrder()
	args.Comment = b.comment
	con, err := schema.NewConstraint(args)
	if err != nil {
		b.errorf("invalid constraint: %v", err)
		return nil
	}
	return con
}

// parseValue parses a column value or default. A bare scalar is taken
// as a string literal; a mapping carries an explicit type.
func (d *docParser) parseValue(b *builder, val interface{}) *schema.Value {
	switch v := val.(type) {
	case nil:
		return nil
	case string:
		return schema.NewValue(schema.StringValue, v)
	case int, int64, float64:
		return schema.NewValue(schema.NumericValue, fmt.Sprint(v))
	case bool:
		return schema.NewValue(schema.BooleanValue, fmt.Sprint(v))
	}

	m, ok := asMapping(val)
	if !ok {
		b.fatalf("expected a mapping or scalar value, found %v", val)
		return nil
	}
	var valueType, text string
	var haveText bool
	var sqls []*schema.SQLString
	for _, entry := range m {
		key := stripKey(fmt.Sprint(entry.Key))
		switch {
		case key == "type":
			valueType = strings.ToLower(strings.TrimSpace(b.str(key, entry.Value)))
		case key == "value":
			text = fmt.Sprint(entry.Value)
			haveText = true
		case b.sqlKey(key, entry.Value, &sqls):
		default:
			b.unknownKey(key, entry.Value)
		}
	}

	switch {
	case valueType == "int" || valueType == "float" || valueType == "double" ||
		strings.HasPrefix(valueType, "numeric"):
		return schema.NewValue(schema.NumericValue, text)
	case valueType == "bool" || valueType == "boolean":
		return schema.NewValue(schema.BooleanValue,
			strconv.FormatBool(b.boolean("value", text)))
	case valueType == "date" || valueType == "time" || valueType == "datetime":
		return schema.NewValue(schema.DateValue, text)
	case valueType == "computed" || valueType == "sql":
		if len(sqls) == 0 && haveText {
			if s := b.universalSQL("value", text); s != nil {
				sqls = append(sqls, s)
			}
		}
		if len(sqls) == 0 {
			b.fatalf("computed values must have a value or dialect")
			return nil
		}
		set, err := schema.NewSQLSet(sqls)
		if err != nil {
			b.fatalf("invalid computed value: %v", err)
			return nil
		}
		return schema.NewComputedValue(set)
	case valueType == "str" || valueType == "string" ||
		valueType == "char" || valueType == "varchar":
		return schema.NewValue(schema.StringValue, text)
	}
	b.fatalf("unknown value type %q", valueType)
	return nil
}

// unwrapSections unwraps a list of single-key wrappers, as in
//
//	tables:
//	  - table:
//	      name: users
//
// returning the wrapped values. Wrappers with an unexpected key are
// fatal problems.
func (d *docParser) unwrapSections(key string, val interface{}, expected ...string) []interface{} {
	list, ok := val.([]interface{})
	if !ok {
		d.problem(version.Fatal,
			fmt.Sprintf("%q does not contain a list, but %v", key, val))
		return nil
	}
	var ret []interface{}
	for _, item := range list {
		m, ok := asMapping(item)
		if !ok {
			d.problem(version.Fatal,
				fmt.Sprintf("%q entries must be mappings, found %v", key, item))
			continue
		}
		for _, entry := range m {
			k := stripKey(fmt.Sprint(entry.Key))
			if containsString(expected, k) {
				ret = append(ret, entry.Value)
				continue
			}
			d.problem(version.Fatal, fmt.Sprintf(
				"only %s are allowed inside %q (found %q)",
				strings.Join(expected, ", "), key, k))
		}
	}
	return ret
}

func asMapping(val interface{}) (yaml.MapSlice, bool) {
	m, ok := val.(yaml.MapSlice)
	return m, ok
}

// stripKey normalizes a document key: separators are dropped and the
// rest lower-cased, so "previous_name", "Previous Name" and
// "previousname" all agree.
func stripKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r == ' ' || r == '\r' || r == '\n' || r == '\t' || r == '_' || r == '-':
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unknownKey(key string, val interface{}) string {
	return fmt.Sprintf("unknown key (%s) set to %v", key, val)
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
