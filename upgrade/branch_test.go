// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package upgrade_test

import (
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/schemadiff/core/order"
	"github.com/juju/schemadiff/core/schema"
	"github.com/juju/schemadiff/core/version"
	"github.com/juju/schemadiff/upgrade"
)

var _ = gc.Suite(&orderingSuite{})

type orderingSuite struct{}

func orderedTable(c *gc.C, name string, o order.Order) *schema.Table {
	t, err := schema.NewTable(schema.TableArgs{Order: o, Name: name})
	c.Assert(err, jc.ErrorIsNil)
	return t
}

func (s *orderingSuite) TestAllUpgradesNaturalOrder(c *gc.C) {
	after := []upgrade.Element{
		orderedTable(c, "b", order.New(0, 0, 1, nil, nil)),
		orderedTable(c, "a", order.New(0, 0, 0, nil, nil)),
	}
	set, err := upgrade.NewSet(nil, after)
	c.Assert(err, jc.ErrorIsNil)

	stream, err := set.AllUpgrades()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(stream, gc.HasLen, 2)
	c.Check(stream[0].(*upgrade.Analysis).Name(), gc.Equals, "a")
	c.Check(stream[1].(*upgrade.Analysis).Name(), gc.Equals, "b")
}

func (s *orderingSuite) TestAllUpgradesHonoursConstraints(c *gc.C) {
	// "accounts" declares it occurs after "users" despite coming
	// first naturally.
	after := []upgrade.Element{
		orderedTable(c, "accounts", order.New(0, 0, 0, nil, []string{"..users"})),
		orderedTable(c, "users", order.New(0, 0, 1, nil, nil)),
	}
	set, err := upgrade.NewSet(nil, after)
	c.Assert(err, jc.ErrorIsNil)

	stream, err := set.AllUpgrades()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(stream, gc.HasLen, 2)
	c.Check(stream[0].(*upgrade.Analysis).Name(), gc.Equals, "users")
	c.Check(stream[1].(*upgrade.Analysis).Name(), gc.Equals, "accounts")
}

func (s *orderingSuite) TestAllUpgradesCycleIsFatal(c *gc.C) {
	after := []upgrade.Element{
		orderedTable(c, "a", order.New(0, 0, 0, nil, []string{"..b"})),
		orderedTable(c, "b", order.New(0, 0, 1, nil, []string{"..a"})),
	}
	set, err := upgrade.NewSet(nil, after)
	c.Assert(err, jc.ErrorIsNil)

	_, err = set.AllUpgrades()
	c.Assert(err, gc.ErrorMatches, "cyclic dependency in orders")
}

func (s *orderingSuite) TestStandAloneChangesJoinTheStream(c *gc.C) {
	ch, err := schema.NewSQLChange(
		order.New(0, 0, 1, nil, nil), "", schema.TableKind, mustSQL(c, "ANALYZE"), nil)
	c.Assert(err, jc.ErrorIsNil)
	after := []upgrade.Element{
		orderedTable(c, "users", order.New(0, 0, 0, nil, nil)),
		ch,
	}
	set, err := upgrade.NewSet(nil, after)
	c.Assert(err, jc.ErrorIsNil)

	stream, err := set.AllUpgrades()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(stream, gc.HasLen, 2)
	c.Check(stream[0].(*upgrade.Analysis).Name(), gc.Equals, "users")
	c.Check(stream[1], gc.Equals, upgrade.Element(ch))
}

func mustSQL(c *gc.C, text string) *schema.SQLSet {
	set, err := schema.UniversalSQL(text)
	c.Assert(err, jc.ErrorIsNil)
	return set
}

var _ = gc.Suite(&branchSuite{})

type branchSuite struct{}

func makeVersion(c *gc.C, pkg string, n version.Number, objects []schema.Object, problems []version.Problem) *version.Version {
	v, err := version.NewVersion(pkg, n, nil, objects, problems)
	c.Assert(err, jc.ErrorIsNil)
	return v
}

func (s *branchSuite) TestRootBranchIsNotAnUpgrade(c *gc.C) {
	pkg, err := version.NewPackage("app")
	c.Assert(err, jc.ErrorIsNil)
	err = pkg.Add(makeVersion(c, "app", version.MustNumber(1), nil, nil), version.Number{})
	c.Assert(err, jc.ErrorIsNil)
	b, err := pkg.Branch(version.MustNumber(1))
	c.Assert(err, jc.ErrorIsNil)

	a, err := upgrade.NewBranchAnalysis(b)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(a.IsUpgrade(), jc.IsFalse)
	c.Check(a.Previous(), gc.IsNil)
	c.Check(a.Set(), gc.IsNil)

	changes, err := a.Changes()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(changes, gc.HasLen, 0)
	c.Check(a.BlocksGeneration(), jc.IsFalse)
}

func (s *branchSuite) TestUpgradeDiffsParentAgainstCurrent(c *gc.C) {
	pkg, err := version.NewPackage("app")
	c.Assert(err, jc.ErrorIsNil)

	v1 := makeVersion(c, "app", version.MustNumber(1), []schema.Object{
		orderedTable(c, "users", order.New(0, 0, 0, nil, nil)),
		orderedTable(c, "legacy", order.New(0, 0, 1, nil, nil)),
	}, nil)
	v2 := makeVersion(c, "app", version.MustNumber(2), []schema.Object{
		orderedTable(c, "users", order.New(0, 0, 0, nil, nil)),
	}, nil)

	err = pkg.Add(v1, version.Number{})
	c.Assert(err, jc.ErrorIsNil)
	err = pkg.Add(v2, version.MustNumber(1))
	c.Assert(err, jc.ErrorIsNil)

	b, err := pkg.Branch(version.MustNumber(2))
	c.Assert(err, jc.ErrorIsNil)
	a, err := upgrade.NewBranchAnalysis(b)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(a.IsUpgrade(), jc.IsTrue)
	c.Check(a.Previous(), gc.Equals, v1)
	c.Check(a.Current(), gc.Equals, v2)

	changes, err := a.Changes()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(changes, gc.HasLen, 2)

	// The unannounced disappearance of "legacy" is a warning, not an
	// error, so generation may proceed.
	c.Check(a.Errors(), gc.HasLen, 0)
	c.Assert(a.Warnings(), gc.HasLen, 2)
	c.Check(a.Warnings()[0].Message(), gc.Equals, "no explicit removal for ..legacy")
	c.Check(a.BlocksGeneration(), jc.IsFalse)
}

func (s *branchSuite) TestLazyPayloadsResolve(c *gc.C) {
	pkg, err := version.NewPackage("app")
	c.Assert(err, jc.ErrorIsNil)

	loads := 0
	loader := func(n version.Number) (*version.Version, error) {
		loads++
		return makeVersion(c, "app", n, nil, nil), nil
	}
	err = pkg.AddLazy(loader, version.MustNumber(1), version.Number{})
	c.Assert(err, jc.ErrorIsNil)
	err = pkg.AddLazy(loader, version.MustNumber(2), version.MustNumber(1))
	c.Assert(err, jc.ErrorIsNil)

	b, err := pkg.Branch(version.MustNumber(2))
	c.Assert(err, jc.ErrorIsNil)
	a, err := upgrade.NewBranchAnalysis(b)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(a.IsUpgrade(), jc.IsTrue)
	c.Check(loads, gc.Equals, 2)
}

func (s *branchSuite) TestVersionProblemsCombine(c *gc.C) {
	pkg, err := version.NewPackage("app")
	c.Assert(err, jc.ErrorIsNil)

	v1 := makeVersion(c, "app", version.MustNumber(1), nil, []version.Problem{
		version.NewProblem(version.Warning, "old problem", "v1/tables.yaml", 3),
	})
	v2 := makeVersion(c, "app", version.MustNumber(2), nil, []version.Problem{
		version.NewProblem(version.Error, "new problem", "v2/tables.yaml", 8),
	})
	err = pkg.Add(v1, version.Number{})
	c.Assert(err, jc.ErrorIsNil)
	err = pkg.Add(v2, version.MustNumber(1))
	c.Assert(err, jc.ErrorIsNil)

	b, err := pkg.Branch(version.MustNumber(2))
	c.Assert(err, jc.ErrorIsNil)
	a, err := upgrade.NewBranchAnalysis(b)
	c.Assert(err, jc.ErrorIsNil)

	problems := a.VersionProblems()
	c.Assert(problems, gc.HasLen, 2)
	c.Check(problems[0].Message(), gc.Equals, "new problem")
	c.Check(problems[1].Message(), gc.Equals, "old problem")
	c.Check(a.BlocksGeneration(), jc.IsTrue)
}

func (s *branchSuite) TestNilBranchNotValid(c *gc.C) {
	_, err := upgrade.NewBranchAnalysis(nil)
	c.Assert(err, jc.ErrorIs, errors.NotValid)
}
