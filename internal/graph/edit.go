// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package graph

import (
	"fmt"

	"github.com/dacolabs/schemagraph/internal/apg"
)

// Editing operations check every precondition before touching the graph,
// so a rejected operation leaves it exactly as it was.

// AddLabel adds a label node bound to a fresh unit placeholder. It returns
// the ids of the label node and of the placeholder.
func (g *Graph) AddLabel(key string) (string, string, error) {
	if key == "" {
		return "", "", fmt.Errorf("%w: label key is required", ErrInvalidGraph)
	}
	if _, ok := g.LabelByKey(key); ok {
		return "", "", fmt.Errorf("%w: label %q", apg.ErrDuplicateKey, key)
	}
	label := g.addNode(NodeLabel, key, "")
	value := g.addNode(NodeUnit, "", "")
	g.addEdge(EdgeValue, label.ID, value.ID, "")
	return label.ID, value.ID, nil
}

// AddNode adds a free-standing type node. Literals default to xsd:string.
// Labels and references have dedicated operations.
func (g *Graph) AddNode(kind NodeKind, datatype string) (string, error) {
	switch kind {
	case NodeUnit, NodeIRI, NodeProduct, NodeCoproduct:
		datatype = ""
	case NodeLiteral:
		if datatype == "" {
			datatype = apg.XSDString
		}
	default:
		return "", fmt.Errorf("%w: cannot add %q node directly", ErrInvalidGraph, kind)
	}
	return g.addNode(kind, "", datatype).ID, nil
}

// AddReference adds a reference node pointing at the given label node.
func (g *Graph) AddReference(labelID string) (string, error) {
	label, err := g.node(labelID)
	if err != nil {
		return "", err
	}
	if label.Kind != NodeLabel {
		return "", fmt.Errorf("%w: reference target %q is a %s node", ErrInvalidGraph, labelID, label.Kind)
	}
	ref := g.addNode(NodeReference, "", "")
	g.addEdge(EdgeReferenceValue, ref.ID, label.ID, "")
	return ref.ID, nil
}

// AddComponent adds a keyed component to a product, pointing at a fresh
// unit placeholder. It returns the edge id and the placeholder id.
func (g *Graph) AddComponent(productID, key string) (string, string, error) {
	return g.addKeyed(productID, NodeProduct, key)
}

// AddOption adds a keyed option to a coproduct, coming from a fresh unit
// placeholder. It returns the edge id and the placeholder id.
func (g *Graph) AddOption(coproductID, key string) (string, string, error) {
	return g.addKeyed(coproductID, NodeCoproduct, key)
}

func (g *Graph) addKeyed(parentID string, want NodeKind, key string) (string, string, error) {
	if err := g.checkKeyedParent(parentID, want, key, ""); err != nil {
		return "", "", err
	}
	child := g.addNode(NodeUnit, "", "")
	return g.link(parentID, want, child.ID, key).ID, child.ID, nil
}

// Link adds a keyed edge from a product or coproduct to an existing type
// node, which makes that node shared if it already had a parent.
func (g *Graph) Link(parentID, childID, key string) (string, error) {
	parent, err := g.node(parentID)
	if err != nil {
		return "", err
	}
	if parent.Kind != NodeProduct && parent.Kind != NodeCoproduct {
		return "", fmt.Errorf("%w: cannot link from %s node %q", ErrInvalidGraph, parent.Kind, parentID)
	}
	if err := g.checkKeyedParent(parentID, parent.Kind, key, ""); err != nil {
		return "", err
	}
	if err := g.checkChild(parentID, childID); err != nil {
		return "", err
	}
	return g.link(parentID, parent.Kind, childID, key).ID, nil
}

func (g *Graph) link(parentID string, kind NodeKind, childID, key string) *Edge {
	if kind == NodeProduct {
		return g.addEdge(EdgeComponent, parentID, childID, key)
	}
	return g.addEdge(EdgeOption, childID, parentID, key)
}

// SetKey renames a label node or a component or option edge.
func (g *Graph) SetKey(id, key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidGraph)
	}
	if n, ok := g.nodes[id]; ok {
		if n.Kind != NodeLabel {
			return fmt.Errorf("%w: %s node %q has no key", ErrInvalidGraph, n.Kind, id)
		}
		if other, ok := g.LabelByKey(key); ok && other.ID != id {
			return fmt.Errorf("%w: label %q", apg.ErrDuplicateKey, key)
		}
		n.Key = key
		g.refreshDisplay(n)
		return nil
	}

	e, err := g.edge(id)
	if err != nil {
		return err
	}
	if !e.Kind.Keyed() {
		return fmt.Errorf("%w: %s edge %q has no key", ErrInvalidGraph, e.Kind, id)
	}
	parentID, parentKind := e.Source, NodeProduct
	if e.Kind == EdgeOption {
		parentID, parentKind = e.Target, NodeCoproduct
	}
	if err := g.checkKeyedParent(parentID, parentKind, key, e.ID); err != nil {
		return err
	}
	e.Key = key
	return nil
}

// SetDatatype changes the datatype of a literal node.
func (g *Graph) SetDatatype(id, datatype string) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	if n.Kind != NodeLiteral {
		return fmt.Errorf("%w: %s node %q has no datatype", ErrInvalidGraph, n.Kind, id)
	}
	if datatype == "" {
		return fmt.Errorf("%w: datatype is required", ErrInvalidGraph)
	}
	n.Datatype = datatype
	g.refreshDisplay(n)
	return nil
}

// MoveEdge re-points the movable end of an edge to another node: the
// target of value, component and reference-value edges, the source of
// option edges. A unit placeholder left without any edge is removed.
func (g *Graph) MoveEdge(edgeID, nodeID string) error {
	e, err := g.edge(edgeID)
	if err != nil {
		return err
	}
	n, err := g.node(nodeID)
	if err != nil {
		return err
	}

	var old string
	switch e.Kind {
	case EdgeValue:
		if !n.Kind.IsType() {
			return fmt.Errorf("%w: value edge cannot point at %s node %q", ErrInvalidGraph, n.Kind, nodeID)
		}
		old = e.Target
	case EdgeComponent:
		if err := g.checkChild(e.Source, nodeID); err != nil {
			return err
		}
		old = e.Target
	case EdgeOption:
		if err := g.checkChild(e.Target, nodeID); err != nil {
			return err
		}
		old = e.Source
	case EdgeReferenceValue:
		if n.Kind != NodeLabel {
			return fmt.Errorf("%w: reference cannot point at %s node %q", ErrInvalidGraph, n.Kind, nodeID)
		}
		old = e.Target
	}
	if old == nodeID {
		return nil
	}

	if e.Kind == EdgeOption {
		e.Source = nodeID
	} else {
		e.Target = nodeID
	}
	g.removeOrphanedPlaceholder(old)
	return nil
}

// DeleteNode removes a node. Value edges that pointed at it are re-pointed
// to fresh unit placeholders; every other edge touching it is removed
// together with any unit placeholder that is left without edges. A label
// cannot be deleted while a reference reachable from another label points
// at it. References to it that no label reaches are deleted with it.
func (g *Graph) DeleteNode(id string) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	var unreached []string
	if n.Kind == NodeLabel {
		live := g.reachable(id)
		for _, ref := range g.Incoming(id, EdgeReferenceValue) {
			if live[ref.Source] {
				return fmt.Errorf("%w: label %q is referenced by node %q", apg.ErrDanglingReference, n.Key, ref.Source)
			}
			unreached = append(unreached, ref.Source)
		}
	}

	g.deleteNode(id)
	for _, ref := range unreached {
		if _, ok := g.nodes[ref]; ok {
			g.deleteNode(ref)
		}
	}
	return nil
}

func (g *Graph) deleteNode(id string) {
	var neighbors []string
	for _, e := range g.Edges() {
		switch {
		case e.Kind == EdgeValue && e.Target == id:
			e.Target = g.addNode(NodeUnit, "", "").ID
		case e.Source == id:
			delete(g.edges, e.ID)
			neighbors = append(neighbors, e.Target)
		case e.Target == id:
			delete(g.edges, e.ID)
			neighbors = append(neighbors, e.Source)
		}
	}
	delete(g.nodes, id)

	for _, other := range neighbors {
		g.removeOrphanedPlaceholder(other)
	}
}

// DeleteEdge removes a component or option edge and the unit placeholder
// at its child end if that placeholder is left without edges. Value and
// reference-value edges cannot be removed, only moved.
func (g *Graph) DeleteEdge(id string) error {
	e, err := g.edge(id)
	if err != nil {
		return err
	}
	var child string
	switch e.Kind {
	case EdgeComponent:
		child = e.Target
	case EdgeOption:
		child = e.Source
	default:
		return fmt.Errorf("%w: %s edge %q cannot be deleted", ErrInvalidGraph, e.Kind, id)
	}
	delete(g.edges, id)
	g.removeOrphanedPlaceholder(child)
	return nil
}

// checkKeyedParent verifies parentID is a node of kind want and that key
// is free among its components or options, ignoring the edge skip.
func (g *Graph) checkKeyedParent(parentID string, want NodeKind, key, skip string) error {
	parent, err := g.node(parentID)
	if err != nil {
		return err
	}
	if parent.Kind != want {
		return fmt.Errorf("%w: node %q is a %s, not a %s", ErrInvalidGraph, parentID, parent.Kind, want)
	}
	if key == "" {
		return fmt.Errorf("%w: %s key is required", ErrInvalidGraph, want)
	}
	siblings := g.Outgoing(parentID, EdgeComponent)
	if want == NodeCoproduct {
		siblings = g.Incoming(parentID, EdgeOption)
	}
	for _, s := range siblings {
		if s.ID != skip && s.Key == key {
			return fmt.Errorf("%w: %s key %q on node %q", apg.ErrDuplicateKey, want, key, parentID)
		}
	}
	return nil
}

// checkChild verifies childID can become a structural child of parentID:
// it must be a type node and must not already contain parentID.
func (g *Graph) checkChild(parentID, childID string) error {
	child, err := g.node(childID)
	if err != nil {
		return err
	}
	if !child.Kind.IsType() {
		return fmt.Errorf("%w: %s node %q cannot be a component or option", ErrInvalidGraph, child.Kind, childID)
	}
	if childID == parentID || g.contains(childID, parentID) {
		return fmt.Errorf("%w: linking %q under %q creates a structural cycle", ErrInvalidGraph, childID, parentID)
	}
	return nil
}

// contains reports whether target is a structural descendant of id.
// References end the walk: they point at labels, not into types.
func (g *Graph) contains(id, target string) bool {
	visited := make(map[string]bool)
	var walk func(string) bool
	walk = func(cur string) bool {
		if cur == target {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		for _, e := range g.edges {
			switch {
			case e.Kind == EdgeComponent && e.Source == cur:
				if walk(e.Target) {
					return true
				}
			case e.Kind == EdgeOption && e.Target == cur:
				if walk(e.Source) {
					return true
				}
			}
		}
		return false
	}
	return walk(id)
}

// reachable returns the nodes Reduce visits when starting from every label
// except skip. References end the walk.
func (g *Graph) reachable(skip string) map[string]bool {
	children := make(map[string][]string)
	for _, e := range g.edges {
		switch e.Kind {
		case EdgeValue, EdgeComponent:
			children[e.Source] = append(children[e.Source], e.Target)
		case EdgeOption:
			children[e.Target] = append(children[e.Target], e.Source)
		}
	}
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, child := range children[id] {
			walk(child)
		}
	}
	for _, l := range g.Labels() {
		if l.ID != skip {
			walk(l.ID)
		}
	}
	return seen
}

func (g *Graph) removeOrphanedPlaceholder(id string) {
	n, ok := g.nodes[id]
	if !ok || n.Kind != NodeUnit || g.Degree(id) > 0 {
		return
	}
	delete(g.nodes, id)
}
