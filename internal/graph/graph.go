// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package graph holds the editable node/edge view of a schema: projection
// from apg, reduction back to apg, and the legal editing operations.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/ident"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/go-logr/logr"
)

// ErrInvalidGraph indicates an operation that would leave the graph
// structurally unusable: unknown ids, wrong endpoint kinds, structural
// cycles, missing keys.
var ErrInvalidGraph = errors.New("invalid graph")

// NodeKind is the class of a graph node.
type NodeKind string

// Node kinds.
const (
	NodeLabel     NodeKind = "label"
	NodeUnit      NodeKind = "unit"
	NodeIRI       NodeKind = "iri"
	NodeLiteral   NodeKind = "literal"
	NodeProduct   NodeKind = "product"
	NodeCoproduct NodeKind = "coproduct"
	NodeReference NodeKind = "reference"
)

// IsType reports whether nodes of kind k stand for a type, i.e. anything
// but a label.
func (k NodeKind) IsType() bool {
	switch k {
	case NodeUnit, NodeIRI, NodeLiteral, NodeProduct, NodeCoproduct, NodeReference:
		return true
	}
	return false
}

// EdgeKind is the class of a graph edge.
type EdgeKind string

// Edge kinds.
const (
	// EdgeValue links a label to its type.
	EdgeValue EdgeKind = "value"
	// EdgeComponent links a product to a component type.
	EdgeComponent EdgeKind = "component"
	// EdgeOption links an option type to its coproduct.
	EdgeOption EdgeKind = "option"
	// EdgeReferenceValue links a reference node to its target label.
	EdgeReferenceValue EdgeKind = "reference-value"
)

// Keyed reports whether edges of kind k carry a key.
func (k EdgeKind) Keyed() bool {
	return k == EdgeComponent || k == EdgeOption
}

// Node is a graph vertex. Key holds the full IRI of a label and Datatype
// the full datatype IRI of a literal; Display holds their compacted forms.
type Node struct {
	ID       string
	Kind     NodeKind
	Key      string
	Datatype string
	Display  Display

	seq uint64
}

// Edge is a directed graph edge. Key is set on component and option edges.
type Edge struct {
	ID     string
	Kind   EdgeKind
	Source string
	Target string
	Key    string

	seq uint64
}

// Graph is a mutable schema graph. It is not safe for concurrent mutation.
type Graph struct {
	ids   *ident.Allocator
	ns    namespace.Table
	log   logr.Logger
	nodes map[string]*Node
	edges map[string]*Edge
	seq   uint64
}

// Option configures a Graph.
type Option func(*Graph)

// WithNamespaces sets the namespace table used for display data and for
// expanding keys given to editing commands.
func WithNamespaces(table namespace.Table) Option {
	return func(g *Graph) { g.ns = table }
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(g *Graph) { g.log = log }
}

// New creates an empty graph with a fresh identifier allocator.
func New(opts ...Option) *Graph {
	g := &Graph{
		ids:   ident.New(ident.DefaultPrefix),
		ns:    namespace.Table{},
		log:   logr.Discard(),
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Namespaces returns the namespace table of the graph.
func (g *Graph) Namespaces() namespace.Table { return g.ns }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int { return compareSeq(a.seq, b.seq) })
	return nodes
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	slices.SortFunc(edges, func(a, b *Edge) int { return compareSeq(a.seq, b.seq) })
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Labels returns the label nodes in creation order.
func (g *Graph) Labels() []*Node {
	var labels []*Node
	for _, n := range g.Nodes() {
		if n.Kind == NodeLabel {
			labels = append(labels, n)
		}
	}
	return labels
}

// LabelByKey returns the label node with the given full key.
func (g *Graph) LabelByKey(key string) (*Node, bool) {
	for _, n := range g.nodes {
		if n.Kind == NodeLabel && n.Key == key {
			return n, true
		}
	}
	return nil, false
}

// Outgoing returns the edges of kind leaving id, in creation order.
func (g *Graph) Outgoing(id string, kind EdgeKind) []*Edge {
	return g.filterEdges(func(e *Edge) bool { return e.Source == id && e.Kind == kind })
}

// Incoming returns the edges of kind entering id, in creation order.
func (g *Graph) Incoming(id string, kind EdgeKind) []*Edge {
	return g.filterEdges(func(e *Edge) bool { return e.Target == id && e.Kind == kind })
}

// Degree returns the number of edges touching id.
func (g *Graph) Degree(id string) int {
	n := 0
	for _, e := range g.edges {
		if e.Source == id {
			n++
		}
		if e.Target == id {
			n++
		}
	}
	return n
}

func (g *Graph) filterEdges(keep func(*Edge) bool) []*Edge {
	var edges []*Edge
	for _, e := range g.edges {
		if keep(e) {
			edges = append(edges, e)
		}
	}
	slices.SortFunc(edges, func(a, b *Edge) int { return compareSeq(a.seq, b.seq) })
	return edges
}

func (g *Graph) nextSeq() uint64 {
	g.seq++
	return g.seq
}

func (g *Graph) addNode(kind NodeKind, key, datatype string) *Node {
	n := &Node{
		ID:       g.ids.Next(),
		Kind:     kind,
		Key:      key,
		Datatype: datatype,
		seq:      g.nextSeq(),
	}
	g.refreshDisplay(n)
	g.nodes[n.ID] = n
	return n
}

func (g *Graph) addEdge(kind EdgeKind, source, target, key string) *Edge {
	e := &Edge{
		ID:     g.ids.Next(),
		Kind:   kind,
		Source: source,
		Target: target,
		Key:    key,
		seq:    g.nextSeq(),
	}
	g.edges[e.ID] = e
	return e
}

func (g *Graph) refreshDisplay(n *Node) {
	switch n.Kind {
	case NodeLabel:
		n.Display = labelDisplay(g.ns.Compact(n.Key))
	case NodeLiteral:
		n.Display = literalDisplay(g.ns.Display(n.Datatype))
	default:
		n.Display = Display{}
	}
}

func (g *Graph) node(id string) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown node %q", ErrInvalidGraph, id)
	}
	return n, nil
}

func (g *Graph) edge(id string) (*Edge, error) {
	e, ok := g.edges[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown edge %q", ErrInvalidGraph, id)
	}
	return e, nil
}

func compareSeq(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func nodeKindOf(k apg.Kind) NodeKind {
	switch k {
	case apg.KindIRI:
		return NodeIRI
	case apg.KindLiteral:
		return NodeLiteral
	case apg.KindProduct:
		return NodeProduct
	case apg.KindCoproduct:
		return NodeCoproduct
	case apg.KindReference:
		return NodeReference
	default:
		return NodeUnit
	}
}
