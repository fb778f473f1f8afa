// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package graph

import (
	"testing"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdit_BuildSchemaFromScratch(t *testing.T) {
	g := New()

	person, placeholder, err := g.AddLabel(ex + "Person")
	require.NoError(t, err)
	_, _, err = g.AddLabel(ex + "Pet")
	require.NoError(t, err)

	product, err := g.AddNode(NodeProduct, "")
	require.NoError(t, err)
	value := g.Outgoing(person, EdgeValue)
	require.Len(t, value, 1)
	require.NoError(t, g.MoveEdge(value[0].ID, product))

	_, ok := g.Node(placeholder)
	assert.False(t, ok, "orphaned placeholder is removed")

	nameEdge, nameChild, err := g.AddComponent(product, ex+"name")
	require.NoError(t, err)
	literal, err := g.AddNode(NodeLiteral, "")
	require.NoError(t, err)
	require.NoError(t, g.MoveEdge(nameEdge, literal))
	_, ok = g.Node(nameChild)
	assert.False(t, ok)

	pet, _ := g.LabelByKey(ex + "Pet")
	ref, err := g.AddReference(pet.ID)
	require.NoError(t, err)
	_, err = g.Link(product, ref, ex+"pet")
	require.NoError(t, err)

	s, err := Reduce(g)
	require.NoError(t, err)
	want := apg.MustSchema(
		label("Person", apg.Product(
			entry("name", apg.Literal(apg.XSDString)),
			entry("pet", apg.Reference(ex+"Pet")),
		)),
		label("Pet", apg.Unit()),
	)
	assert.True(t, want.Equal(s))
}

func TestEdit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(g *Graph, ids fixture) error
		wantErr error
	}{
		{
			name:    "duplicate label key",
			edit:    func(g *Graph, _ fixture) error { _, _, err := g.AddLabel(ex + "classA"); return err },
			wantErr: apg.ErrDuplicateKey,
		},
		{
			name:    "empty label key",
			edit:    func(g *Graph, _ fixture) error { _, _, err := g.AddLabel(""); return err },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "rename label to existing key",
			edit:    func(g *Graph, ids fixture) error { return g.SetKey(ids.classA, ex+"classB") },
			wantErr: apg.ErrDuplicateKey,
		},
		{
			name:    "duplicate component key",
			edit:    func(g *Graph, ids fixture) error { _, _, err := g.AddComponent(ids.product, ex+"p1"); return err },
			wantErr: apg.ErrDuplicateKey,
		},
		{
			name:    "rename component to sibling key",
			edit:    func(g *Graph, ids fixture) error { return g.SetKey(ids.p2, ex+"p1") },
			wantErr: apg.ErrDuplicateKey,
		},
		{
			name:    "component on a literal",
			edit:    func(g *Graph, ids fixture) error { _, _, err := g.AddComponent(ids.literal, ex+"x"); return err },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "option on a product",
			edit:    func(g *Graph, ids fixture) error { _, _, err := g.AddOption(ids.product, ex+"x"); return err },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "link a product under itself",
			edit:    func(g *Graph, ids fixture) error { _, err := g.Link(ids.product, ids.product, ex+"self"); return err },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "link a label as component",
			edit:    func(g *Graph, ids fixture) error { _, err := g.Link(ids.product, ids.classB, ex+"x"); return err },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "reference to a type node",
			edit:    func(g *Graph, ids fixture) error { _, err := g.AddReference(ids.literal); return err },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "delete referenced label",
			edit:    func(g *Graph, ids fixture) error { return g.DeleteNode(ids.classB) },
			wantErr: apg.ErrDanglingReference,
		},
		{
			name:    "delete value edge",
			edit:    func(g *Graph, ids fixture) error { return g.DeleteEdge(g.Outgoing(ids.classA, EdgeValue)[0].ID) },
			wantErr: ErrInvalidGraph,
		},
		{
			name: "move reference onto a type",
			edit: func(g *Graph, ids fixture) error {
				return g.MoveEdge(g.Outgoing(ids.ref, EdgeReferenceValue)[0].ID, ids.literal)
			},
			wantErr: ErrInvalidGraph,
		},
		{
			name: "move value edge onto a label",
			edit: func(g *Graph, ids fixture) error {
				return g.MoveEdge(g.Outgoing(ids.classA, EdgeValue)[0].ID, ids.classB)
			},
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "datatype on a product",
			edit:    func(g *Graph, ids fixture) error { return g.SetDatatype(ids.product, apg.XSDInteger) },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "unknown node",
			edit:    func(g *Graph, _ fixture) error { return g.DeleteNode("t999") },
			wantErr: ErrInvalidGraph,
		},
		{
			name:    "add label node directly",
			edit:    func(g *Graph, _ fixture) error { _, err := g.AddNode(NodeLabel, ""); return err },
			wantErr: ErrInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ids := newFixture(t)
			err := tt.edit(g, ids)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			s, err := Reduce(g)
			require.NoError(t, err)
			assert.True(t, classSchema().Equal(s), "rejected edit leaves the schema unchanged")
		})
	}
}

func TestEdit_LinkRejectsStructuralCycle(t *testing.T) {
	g, ids := newFixture(t)

	inner, err := g.AddNode(NodeProduct, "")
	require.NoError(t, err)
	_, err = g.Link(ids.product, inner, ex+"inner")
	require.NoError(t, err)

	edges := g.EdgeCount()
	_, err = g.Link(inner, ids.product, ex+"outer")
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.Equal(t, edges, g.EdgeCount())

	_, placeholder, err := g.AddComponent(inner, ex+"leaf")
	require.NoError(t, err)
	leaf := g.Incoming(placeholder, EdgeComponent)[0]
	assert.ErrorIs(t, g.MoveEdge(leaf.ID, ids.product), ErrInvalidGraph)
}

func TestEdit_SetKeyAndDatatype(t *testing.T) {
	g, ids := newFixture(t)

	require.NoError(t, g.SetKey(ids.classB, ex+"classC"))
	require.NoError(t, g.SetKey(ids.p2, ex+"p3"))
	require.NoError(t, g.SetDatatype(ids.literal, apg.XSDInteger))

	s, err := Reduce(g)
	require.NoError(t, err)
	want := apg.MustSchema(
		label("classA", apg.Product(
			entry("p1", apg.Literal(apg.XSDInteger)),
			entry("p3", apg.Reference(ex+"classC")),
		)),
		label("classC", apg.Unit()),
	)
	assert.True(t, want.Equal(s))
}

func TestEdit_DeleteNode(t *testing.T) {
	g, ids := newFixture(t)

	require.NoError(t, g.DeleteNode(ids.ref))
	_, ok := g.Edge(ids.p2)
	assert.False(t, ok)
	require.NoError(t, g.DeleteNode(ids.classB))

	require.NoError(t, g.DeleteNode(ids.product))
	values := g.Outgoing(ids.classA, EdgeValue)
	require.Len(t, values, 1)
	replacement, ok := g.Node(values[0].Target)
	require.True(t, ok)
	assert.Equal(t, NodeUnit, replacement.Kind)

	s, err := Reduce(g)
	require.NoError(t, err)
	assert.True(t, apg.MustSchema(label("classA", apg.Unit())).Equal(s))

	// The literal lost its only parent but is not a placeholder.
	_, ok = g.Node(ids.literal)
	assert.True(t, ok)
}

func TestEdit_DeleteLabelWithUnreachedReference(t *testing.T) {
	g, ids := newFixture(t)

	require.NoError(t, g.DeleteNode(ids.product))
	_, ok := g.Node(ids.ref)
	require.True(t, ok, "the reference survives its parent")

	require.NoError(t, g.DeleteNode(ids.classB))
	_, ok = g.Node(ids.ref)
	assert.False(t, ok, "unreached reference is deleted with its target")

	s, err := Reduce(g)
	require.NoError(t, err)
	assert.True(t, apg.MustSchema(label("classA", apg.Unit())).Equal(s))
}

func TestEdit_DeleteSelfReferencingLabel(t *testing.T) {
	g, err := Project(apg.MustSchema(
		label("List", apg.Product(entry("next", apg.Reference(ex+"List")))),
		label("Other", apg.Unit()),
	))
	require.NoError(t, err)
	list, _ := g.LabelByKey(ex + "List")

	require.NoError(t, g.DeleteNode(list.ID))
	s, err := Reduce(g)
	require.NoError(t, err)
	assert.True(t, apg.MustSchema(label("Other", apg.Unit())).Equal(s))
}

func TestEdit_DeleteEdgeRemovesPlaceholder(t *testing.T) {
	g, ids := newFixture(t)

	edge, child, err := g.AddComponent(ids.product, ex+"extra")
	require.NoError(t, err)
	require.NoError(t, g.DeleteEdge(edge))
	_, ok := g.Node(child)
	assert.False(t, ok)

	require.NoError(t, g.DeleteEdge(ids.p1))
	_, ok = g.Node(ids.literal)
	assert.True(t, ok)
}

func TestEdit_CoproductOptions(t *testing.T) {
	g := New()
	labelID, _, err := g.AddLabel(ex + "choice")
	require.NoError(t, err)
	coproduct, err := g.AddNode(NodeCoproduct, "")
	require.NoError(t, err)
	require.NoError(t, g.MoveEdge(g.Outgoing(labelID, EdgeValue)[0].ID, coproduct))

	_, _, err = g.AddOption(coproduct, ex+"none")
	require.NoError(t, err)
	someEdge, _, err := g.AddOption(coproduct, ex+"some")
	require.NoError(t, err)
	iri, err := g.AddNode(NodeIRI, "")
	require.NoError(t, err)
	require.NoError(t, g.MoveEdge(someEdge, iri))

	e, _ := g.Edge(someEdge)
	assert.Equal(t, iri, e.Source)
	assert.Equal(t, coproduct, e.Target)

	s, err := Reduce(g)
	require.NoError(t, err)
	want := apg.MustSchema(label("choice", apg.Coproduct(
		entry("none", apg.Unit()),
		entry("some", apg.IRI()),
	)))
	assert.True(t, want.Equal(s))
}

func TestReduce_InvalidGraphs(t *testing.T) {
	t.Run("two value edges", func(t *testing.T) {
		g, ids := newFixture(t)
		g.addEdge(EdgeValue, ids.classB, ids.literal, "")
		_, err := Reduce(g)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("label without value edge", func(t *testing.T) {
		g := New()
		g.addNode(NodeLabel, ex+"lonely", "")
		s, err := Reduce(g)
		require.NoError(t, err)
		assert.True(t, apg.MustSchema(label("lonely", apg.Unit())).Equal(s))
	})

	t.Run("reference without target", func(t *testing.T) {
		g, ids := newFixture(t)
		for _, e := range g.Outgoing(ids.ref, EdgeReferenceValue) {
			delete(g.edges, e.ID)
		}
		_, err := Reduce(g)
		assert.ErrorIs(t, err, apg.ErrDanglingReference)
	})

	t.Run("structural cycle", func(t *testing.T) {
		g, ids := newFixture(t)
		g.addEdge(EdgeComponent, ids.product, ids.product, ex+"loop")
		_, err := Reduce(g)
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})
}

type fixture struct {
	classA, classB        string
	product, literal, ref string
	p1, p2                string
}

func newFixture(t *testing.T) (*Graph, fixture) {
	t.Helper()
	g, err := Project(classSchema())
	require.NoError(t, err)

	var ids fixture
	a, _ := g.LabelByKey(ex + "classA")
	b, _ := g.LabelByKey(ex + "classB")
	ids.classA, ids.classB = a.ID, b.ID
	ids.product = g.Outgoing(ids.classA, EdgeValue)[0].Target
	components := g.Outgoing(ids.product, EdgeComponent)
	ids.p1, ids.p2 = components[0].ID, components[1].ID
	ids.literal, ids.ref = components[0].Target, components[1].Target
	return g, ids
}
