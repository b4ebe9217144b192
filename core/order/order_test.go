// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package order_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/schemadiff/core/order"
)

var _ = gc.Suite(&orderSuite{})

type orderSuite struct{}

func (s *orderSuite) TestNaturalCompare(c *gc.C) {
	a := order.New(0, 0, 0, nil, nil)
	b := order.New(0, 0, 1, nil, nil)
	c.Check(a.Compare(b) < 0, jc.IsTrue)
	c.Check(b.Compare(a) > 0, jc.IsTrue)
	c.Check(a.Compare(a), gc.Equals, 0)

	c.Check(order.New(0, 1, 0, nil, nil).Compare(order.New(0, 0, 9, nil, nil)) > 0, jc.IsTrue)
	c.Check(order.New(1, 0, 0, nil, nil).Compare(order.New(0, 9, 9, nil, nil)) > 0, jc.IsTrue)
}

func (s *orderSuite) TestLess(c *gc.C) {
	c.Check(order.New(0, 0, 0, nil, nil).Less(order.New(0, 0, 1, nil, nil)), jc.IsTrue)
	c.Check(order.New(0, 0, 1, nil, nil).Less(order.New(0, 0, 0, nil, nil)), jc.IsFalse)
}

func (s *orderSuite) TestItems(c *gc.C) {
	o := order.New(3, 1, 4, nil, nil)
	c.Check(o.Items(), gc.Equals, [3]int{3, 1, 4})
	c.Check(o.Source(), gc.Equals, 3)
	c.Check(o.Group(), gc.Equals, 1)
	c.Check(o.Sequence(), gc.Equals, 4)
}

func (s *orderSuite) TestString(c *gc.C) {
	c.Check(order.New(1, 2, 3, nil, nil).String(), gc.Equals, "(1, 2, 3)")
}

func (s *orderSuite) TestCleanLabel(c *gc.C) {
	c.Check(order.CleanLabel("Widgets_Table"), gc.Equals, "widgetstable")
	c.Check(order.CleanLabel("a.b.c"), gc.Equals, "a.b.c")
	c.Check(order.CleanLabel("  WIDGETS "), gc.Equals, "widgets")
	c.Check(order.CleanLabel("-_ !"), gc.Equals, "")
}

func (s *orderSuite) TestLabelsNormalized(c *gc.C) {
	o := order.New(0, 0, 0,
		[]string{"First Thing", "--"},
		[]string{"Other.Thing"},
	)
	c.Check(o.OccursBefore(), jc.DeepEquals, []string{"firstthing"})
	c.Check(o.OccursAfter(), jc.DeepEquals, []string{"other.thing"})
}

func (s *orderSuite) TestNoLabels(c *gc.C) {
	var o order.Order
	c.Check(o.OccursBefore(), gc.HasLen, 0)
	c.Check(o.OccursAfter(), gc.HasLen, 0)
}
