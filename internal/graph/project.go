// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package graph

import (
	"fmt"

	"github.com/dacolabs/schemagraph/internal/apg"
)

// projector holds the state of one projection.
type projector struct {
	g      *Graph
	labels map[string]string    // label key -> label node id
	memo   map[*apg.Type]string // type instance -> node id
}

// Project converts a schema into a new graph. Every label node is
// allocated before any value is projected, so references may point
// forward. A type instance reachable from several parents becomes a single
// node. A reference to an unknown label fails the whole projection with
// apg.ErrDanglingReference and no graph is returned.
func Project(s *apg.Schema, opts ...Option) (*Graph, error) {
	g := New(opts...)
	p := &projector{
		g:      g,
		labels: make(map[string]string, s.Len()),
		memo:   make(map[*apg.Type]string),
	}

	labels := s.Labels()
	for _, l := range labels {
		p.labels[l.Key] = g.addNode(NodeLabel, l.Key, "").ID
	}

	for _, l := range labels {
		value, err := p.project(l.Key, l.Value)
		if err != nil {
			return nil, err
		}
		g.addEdge(EdgeValue, p.labels[l.Key], value, "")
	}

	g.log.V(1).Info("projected schema", "labels", len(labels), "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

func (p *projector) project(label string, t *apg.Type) (string, error) {
	if id, ok := p.memo[t]; ok {
		return id, nil
	}

	if t.Kind() == apg.KindReference {
		target, ok := p.labels[t.Target()]
		if !ok {
			return "", fmt.Errorf("%w: label %q references %q", apg.ErrDanglingReference, label, t.Target())
		}
		n := p.g.addNode(NodeReference, "", "")
		p.memo[t] = n.ID
		p.g.addEdge(EdgeReferenceValue, n.ID, target, "")
		return n.ID, nil
	}

	n := p.g.addNode(nodeKindOf(t.Kind()), "", t.Datatype())
	p.memo[t] = n.ID

	for _, e := range t.Entries() {
		child, err := p.project(label, e.Value)
		if err != nil {
			return "", err
		}
		if t.Kind() == apg.KindProduct {
			p.g.addEdge(EdgeComponent, n.ID, child, e.Key)
		} else {
			p.g.addEdge(EdgeOption, child, n.ID, e.Key)
		}
	}
	return n.ID, nil
}
