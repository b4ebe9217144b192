// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package order

import (
	"sort"

	"github.com/juju/errors"
)

// Sequenced is implemented by anything that carries an Order and can
// therefore take part in the constrained sort.
type Sequenced interface {
	Order() Order
}

// Named is optionally implemented by Sequenced items that can be addressed
// by the occurs-before/occurs-after labels of other items. The label must
// already be in CleanLabel normal form; an empty label means unnamed.
type Named interface {
	Sequenced
	Label() string
}

// Sort orders items by their natural rank, subject to the occurs-before and
// occurs-after constraints. A label that matches the Label of one of the
// items binds to that item; any other label becomes a placeholder node that
// merely transmits ordering between the items referencing it. The natural
// pre-sort places items before placeholder labels, biasing the traversal
// toward declaration order wherever the constraints leave a free choice.
//
// An unsatisfiable constraint set is fatal: Sort returns a cyclic
// dependency error and no ordering.
func Sort(items []Sequenced) ([]Sequenced, error) {
	s := newSorter(items)
	if err := s.run(); err != nil {
		return nil, errors.Trace(err)
	}
	return s.result(), nil
}

// FullSort is Sort over bare Orders; no label binding is possible, so
// every referenced label is a placeholder.
func FullSort(orders []Order) ([]Order, error) {
	items := make([]Sequenced, len(orders))
	for i, o := range orders {
		items[i] = bareOrder{o}
	}
	sorted, err := Sort(items)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ret := make([]Order, len(sorted))
	for i, item := range sorted {
		ret[i] = item.Order()
	}
	return ret, nil
}

type bareOrder struct {
	o Order
}

func (b bareOrder) Order() Order {
	return b.o
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// node is one vertex of the dependency graph: either a real item, or a
// placeholder for a label no item answers to.
type node struct {
	item  Sequenced
	label string
}

type sorter struct {
	nodes   []node
	byLabel map[string]int
	deps    map[int][]int
	state   []visitState
	out     []int
}

func newSorter(items []Sequenced) *sorter {
	s := &sorter{
		byLabel: make(map[string]int),
		deps:    make(map[int][]int),
	}
	for _, item := range items {
		idx := len(s.nodes)
		s.nodes = append(s.nodes, node{item: item})
		if named, ok := item.(Named); ok {
			if label := named.Label(); label != "" {
				// First binding wins; duplicate names are reported
				// by the diff engine, not here.
				if _, bound := s.byLabel[label]; !bound {
					s.byLabel[label] = idx
				}
			}
		}
	}
	// Constraint edges run from prerequisite to dependant, expressed here
	// as a reversed "depends on" adjacency used by the DFS.
	for idx := range s.nodes {
		item := s.nodes[idx].item
		for _, label := range item.Order().OccursAfter() {
			s.deps[idx] = append(s.deps[idx], s.labelNode(label))
		}
		for _, label := range item.Order().OccursBefore() {
			ln := s.labelNode(label)
			s.deps[ln] = append(s.deps[ln], idx)
		}
	}
	return s
}

// labelNode resolves a label to its bound item node, or to a placeholder
// node injected on first reference.
func (s *sorter) labelNode(label string) int {
	if idx, ok := s.byLabel[label]; ok {
		return idx
	}
	idx := len(s.nodes)
	s.nodes = append(s.nodes, node{label: label})
	s.byLabel[label] = idx
	return idx
}

// compare defines the natural pre-sort: items by natural rank, items
// before placeholders, placeholders lexicographically.
func (s *sorter) compare(a, b int) int {
	na, nb := s.nodes[a], s.nodes[b]
	switch {
	case na.item != nil && nb.item != nil:
		return na.item.Order().Compare(nb.item.Order())
	case na.item != nil:
		return -1
	case nb.item != nil:
		return 1
	case na.label < nb.label:
		return -1
	case na.label > nb.label:
		return 1
	}
	return 0
}

func (s *sorter) run() error {
	seq := make([]int, len(s.nodes))
	for i := range seq {
		seq[i] = i
	}
	sort.SliceStable(seq, func(i, j int) bool {
		return s.compare(seq[i], seq[j]) < 0
	})
	for _, dep := range s.deps {
		dep := dep
		sort.SliceStable(dep, func(i, j int) bool {
			return s.compare(dep[i], dep[j]) < 0
		})
	}

	s.state = make([]visitState, len(s.nodes))
	for _, idx := range seq {
		if s.state[idx] != unvisited {
			continue
		}
		if err := s.visit(idx); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (s *sorter) visit(idx int) error {
	s.state[idx] = visiting
	for _, dep := range s.deps[idx] {
		switch s.state[dep] {
		case unvisited:
			if err := s.visit(dep); err != nil {
				return errors.Trace(err)
			}
		case visiting:
			return errors.New("cyclic dependency in orders")
		}
	}
	s.state[idx] = visited
	s.out = append(s.out, idx)
	return nil
}

// result returns the topological order restricted to the real items;
// placeholder label nodes are dropped.
func (s *sorter) result() []Sequenced {
	var ret []Sequenced
	for _, idx := range s.out {
		if item := s.nodes[idx].item; item != nil {
			ret = append(ret, item)
		}
	}
	return ret
}
