// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package graph

import (
	"fmt"
	"slices"

	"github.com/dacolabs/schemagraph/internal/apg"
)

// reducer walks a graph without mutating it.
type reducer struct {
	g        *Graph
	out      map[string][]*Edge
	in       map[string][]*Edge
	memo     map[string]*apg.Type
	visiting map[string]bool
}

// Reduce rebuilds a schema from the graph. Product components are the
// outgoing component edges and coproduct options the incoming option
// edges, both in edge creation order. A label without a value edge is
// bound to unit. Nodes shared by several parents reduce to one shared type
// instance.
func Reduce(g *Graph) (*apg.Schema, error) {
	r := &reducer{
		g:        g,
		out:      make(map[string][]*Edge),
		in:       make(map[string][]*Edge),
		memo:     make(map[string]*apg.Type),
		visiting: make(map[string]bool),
	}
	for _, e := range g.Edges() {
		r.out[e.Source] = append(r.out[e.Source], e)
		r.in[e.Target] = append(r.in[e.Target], e)
	}

	s, _ := apg.NewSchema()
	for _, n := range g.Labels() {
		if n.Key == "" {
			return nil, fmt.Errorf("%w: label node %q has no key", ErrInvalidGraph, n.ID)
		}
		values := r.edges(r.out[n.ID], EdgeValue)
		var value *apg.Type
		switch len(values) {
		case 0:
			value = apg.Unit()
		case 1:
			t, err := r.reduce(values[0].Target)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", n.Key, err)
			}
			value = t
		default:
			return nil, fmt.Errorf("%w: label node %q has %d value edges", ErrInvalidGraph, n.ID, len(values))
		}
		if err := s.Add(n.Key, value); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}

	g.log.V(1).Info("reduced graph", "labels", s.Len())
	return s, nil
}

func (r *reducer) edges(all []*Edge, kind EdgeKind) []*Edge {
	return slices.DeleteFunc(slices.Clone(all), func(e *Edge) bool { return e.Kind != kind })
}

func (r *reducer) reduce(id string) (*apg.Type, error) {
	if t, ok := r.memo[id]; ok {
		return t, nil
	}
	if r.visiting[id] {
		return nil, fmt.Errorf("%w: structural cycle through node %q", ErrInvalidGraph, id)
	}
	n, err := r.g.node(id)
	if err != nil {
		return nil, err
	}

	r.visiting[id] = true
	defer delete(r.visiting, id)

	var t *apg.Type
	switch n.Kind {
	case NodeUnit:
		t = apg.Unit()
	case NodeIRI:
		t = apg.IRI()
	case NodeLiteral:
		t = apg.Literal(n.Datatype)
	case NodeReference:
		targets := r.edges(r.out[id], EdgeReferenceValue)
		if len(targets) != 1 {
			return nil, fmt.Errorf("%w: reference node %q has %d targets", apg.ErrDanglingReference, id, len(targets))
		}
		label, err := r.g.node(targets[0].Target)
		if err != nil {
			return nil, err
		}
		if label.Kind != NodeLabel {
			return nil, fmt.Errorf("%w: reference node %q targets %s node %q", ErrInvalidGraph, id, label.Kind, label.ID)
		}
		t = apg.Reference(label.Key)
	case NodeProduct:
		entries, err := r.entries(n, r.edges(r.out[id], EdgeComponent), func(e *Edge) string { return e.Target })
		if err != nil {
			return nil, err
		}
		t = apg.Product(entries...)
	case NodeCoproduct:
		entries, err := r.entries(n, r.edges(r.in[id], EdgeOption), func(e *Edge) string { return e.Source })
		if err != nil {
			return nil, err
		}
		t = apg.Coproduct(entries...)
	default:
		return nil, fmt.Errorf("%w: %s node %q used as a type", ErrInvalidGraph, n.Kind, id)
	}

	r.memo[id] = t
	return t, nil
}

func (r *reducer) entries(parent *Node, edges []*Edge, child func(*Edge) string) ([]apg.Entry, error) {
	entries := make([]apg.Entry, 0, len(edges))
	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e.Key == "" {
			return nil, fmt.Errorf("%w: %s edge %q has no key", ErrInvalidGraph, e.Kind, e.ID)
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("%w: %s key %q on %s node %q", apg.ErrDuplicateKey, e.Kind, e.Key, parent.Kind, parent.ID)
		}
		seen[e.Key] = true
		t, err := r.reduce(child(e))
		if err != nil {
			return nil, err
		}
		entries = append(entries, apg.Entry{Key: e.Key, Value: t})
	}
	return entries, nil
}
