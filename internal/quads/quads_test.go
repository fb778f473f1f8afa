// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package quads

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://example.com/"

func TestTerm(t *testing.T) {
	tests := []struct {
		name string
		term quad.Value
		want string
	}{
		{"iri", quad.IRI(ex + "a"), "<http://example.com/a>"},
		{"blank", quad.BNode("c14n0"), "_:c14n0"},
		{"plain literal", Literal("hi", ""), `"hi"`},
		{"xsd string literal", Literal("hi", apg.XSDString), `"hi"`},
		{"typed literal", Literal("", apg.XSDInteger), `""^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"escaped literal", Literal("a\"b\\c\nd\re\tf", ""), `"a\"b\\c\nd\re` + "\t" + `f"`},
		{"language literal", quad.LangString{Value: "chat", Lang: "fr"}, `"chat"@fr`},
		{"absent", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Term(tt.term))
		})
	}
}

func TestLine(t *testing.T) {
	q := Quad{Subject: quad.BNode("b0"), Predicate: quad.IRI(apg.RDFType), Object: quad.IRI(ex + "A")}
	assert.Equal(t, "_:b0 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.com/A> .\n", Line(q))

	q.Label = quad.IRI(ex + "g")
	assert.True(t, strings.HasSuffix(Line(q), " <http://example.com/g> .\n"))
}

func TestLiteralParts(t *testing.T) {
	tests := []struct {
		name                  string
		term                  quad.Value
		value, datatype, lang string
		ok                    bool
	}{
		{"plain", quad.String("x"), "x", apg.XSDString, "", true},
		{"typed", Literal("", apg.XSDBoolean), "", apg.XSDBoolean, "", true},
		{"language", quad.LangString{Value: "hi", Lang: "en"}, "hi", LangString, "en", true},
		{"iri", quad.IRI(ex), "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, datatype, lang, ok := LiteralParts(tt.term)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.datatype, datatype)
			assert.Equal(t, tt.lang, lang)
		})
	}
}

func TestParse(t *testing.T) {
	doc := `# leading comment

_:b0 <http://example.com/p> "line\nbreak é \"q\"" .
<http://example.com/s> <http://example.com/p> "1"^^<http://www.w3.org/2001/XMLSchema#integer> <http://example.com/g> .
_:b1 <http://example.com/p> "bonjour"@fr-CA .
_:b2 <http://example.com/p> "x"^^<http://www.w3.org/2001/XMLSchema#string> .
`
	quads, err := ParseString(doc)
	require.NoError(t, err)
	require.Len(t, quads, 4)

	assert.Equal(t, quad.BNode("b0"), quads[0].Subject)
	assert.Equal(t, Literal("line\nbreak é \"q\"", ""), quads[0].Object)
	assert.Equal(t, Literal("1", apg.XSDInteger), quads[1].Object)
	assert.Equal(t, quad.IRI(ex+"g"), quads[1].Label)
	assert.Equal(t, quad.LangString{Value: "bonjour", Lang: "fr-CA"}, quads[2].Object)
	assert.Equal(t, quad.String("x"), quads[3].Object)
	assert.Nil(t, quads[0].Label)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing dot", "_:a <http://e/p> _:b\n"},
		{"literal subject", `"x" <http://e/p> _:b .`},
		{"blank predicate", "_:a _:p _:b ."},
		{"unterminated literal", `_:a <http://e/p> "abc .`},
		{"missing object", "<http://e/a> <http://e/p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, apg.ErrMalformedImport)
			assert.Contains(t, err.Error(), "statement 1")
		})
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	in := []Quad{
		{Subject: quad.BNode("b0"), Predicate: quad.IRI(ex + "p"), Object: Literal("tab\there \\ \"x\"", "")},
		{Subject: quad.IRI(ex + "s"), Predicate: quad.IRI(ex + "p"), Object: Literal("", apg.XSDDouble)},
		{Subject: quad.BNode("b1"), Predicate: quad.IRI(ex + "p"), Object: quad.LangString{Value: "hi", Lang: "en"}, Label: quad.BNode("g")},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	out, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func entry(key string, t *apg.Type) apg.Entry { return apg.Entry{Key: ex + key, Value: t} }

func label(key string, t *apg.Type) apg.Label { return apg.Label{Key: ex + key, Value: t} }

func TestFlatten_Vocabulary(t *testing.T) {
	s := apg.MustSchema(
		label("A", apg.Product(
			entry("p1", apg.Literal(apg.XSDString)),
			entry("p2", apg.Reference(ex+"B")),
		)),
		label("B", apg.Coproduct(entry("none", apg.Unit()))),
	)

	quads, err := Flatten(s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, quads))
	want := `_:b0 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.com/A> .
_:b2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://underlay.org/ns/product> .
_:b2 <http://example.com/p1> "" .
_:b2 <http://example.com/p2> _:b1 .
_:b0 <http://underlay.org/ns/value> _:b2 .
_:b1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.com/B> .
_:b3 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://underlay.org/ns/coproduct> .
_:b4 <http://underlay.org/ns/option> _:b3 .
_:b4 <http://underlay.org/ns/key> <http://example.com/none> .
_:b4 <http://underlay.org/ns/value> <http://underlay.org/ns/unit> .
_:b1 <http://underlay.org/ns/value> _:b3 .
`
	assert.Equal(t, want, buf.String())
}

func TestFlatten_SharedTypeEachOccurrence(t *testing.T) {
	shared := apg.Product(entry("x", apg.IRI()))
	s := apg.MustSchema(
		label("A", apg.Product(entry("l", shared), entry("r", shared))),
	)

	quads, err := Flatten(s)
	require.NoError(t, err)

	products := 0
	for _, q := range quads {
		if q.Object == quad.IRI(Product) {
			products++
		}
	}
	assert.Equal(t, 3, products)

	copied := apg.MustSchema(
		label("A", apg.Product(
			entry("l", apg.Product(entry("x", apg.IRI()))),
			entry("r", apg.Product(entry("x", apg.IRI()))),
		)),
	)
	copiedQuads, err := Flatten(copied)
	require.NoError(t, err)
	assert.Equal(t, copiedQuads, quads)

	back, err := Unflatten(quads)
	require.NoError(t, err)
	assert.True(t, s.Equal(back))
	a, _ := back.Get(ex + "A")
	l, _ := a.Get(ex + "l")
	r, _ := a.Get(ex + "r")
	assert.NotSame(t, l, r)
}

func TestFlatten_Errors(t *testing.T) {
	tests := []struct {
		name    string
		schema  *apg.Schema
		wantErr error
	}{
		{
			name:    "reserved label key",
			schema:  apg.MustSchema(apg.Label{Key: Product, Value: apg.Unit()}),
			wantErr: ErrReservedKey,
		},
		{
			name:    "reserved component key",
			schema:  apg.MustSchema(label("A", apg.Product(apg.Entry{Key: apg.RDFType, Value: apg.Unit()}))),
			wantErr: ErrReservedKey,
		},
		{
			name:    "dangling reference",
			schema:  apg.MustSchema(label("A", apg.Reference(ex+"missing"))),
			wantErr: apg.ErrDanglingReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten(tt.schema)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	schemas := map[string]*apg.Schema{
		"empty": apg.MustSchema(),
		"scalars": apg.MustSchema(
			label("u", apg.Unit()),
			label("i", apg.IRI()),
			label("l", apg.Literal(apg.XSDBoolean)),
			label("r", apg.Reference(ex+"u")),
			label("self", apg.Reference(ex+"self")),
		),
		"nested": apg.MustSchema(
			label("Person", apg.Product(
				entry("name", apg.Literal(apg.XSDString)),
				entry("gender", apg.Coproduct(
					entry("female", apg.Unit()),
					entry("male", apg.Unit()),
					entry("other", apg.Literal(apg.XSDString)),
				)),
				entry("friend", apg.Reference(ex+"Person")),
				entry("empty", apg.Product()),
				entry("never", apg.Coproduct()),
			)),
		),
	}
	for name, s := range schemas {
		t.Run(name, func(t *testing.T) {
			quads, err := Flatten(s)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, quads))
			parsed, err := Parse(&buf)
			require.NoError(t, err)

			back, err := Unflatten(parsed)
			require.NoError(t, err)
			assert.True(t, s.Equal(back))
			assert.Equal(t, s.SortedKeys(), back.Keys())
		})
	}
}

func TestUnflatten_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"iri subject", `<http://e/s> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .`},
		{"named graph", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> <http://e/g> .`},
		{"label without value", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .`},
		{"two types", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/B> .
_:a <http://underlay.org/ns/value> <http://underlay.org/ns/unit> .`},
		{"unknown value", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:a <http://underlay.org/ns/value> <http://e/other> .`},
		{"non-empty literal", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:a <http://underlay.org/ns/value> "x" .`},
		{"branch without key", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:a <http://underlay.org/ns/value> _:c .
_:c <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://underlay.org/ns/coproduct> .
_:o <http://underlay.org/ns/option> _:c .
_:o <http://underlay.org/ns/value> <http://underlay.org/ns/unit> .`},
		{"unreachable product", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:a <http://underlay.org/ns/value> <http://underlay.org/ns/unit> .
_:p <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://underlay.org/ns/product> .`},
		{"structural cycle", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:a <http://underlay.org/ns/value> _:p .
_:p <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://underlay.org/ns/product> .
_:p <http://e/self> _:p .`},
		{"duplicate label", `_:a <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:a <http://underlay.org/ns/value> <http://underlay.org/ns/unit> .
_:b <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://e/A> .
_:b <http://underlay.org/ns/value> <http://underlay.org/ns/iri> .`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quads, err := ParseString(tt.doc)
			require.NoError(t, err)
			_, err = Unflatten(quads)
			require.Error(t, err)
			assert.ErrorIs(t, err, apg.ErrMalformedImport)
		})
	}
}
