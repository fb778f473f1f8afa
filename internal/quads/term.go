// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package quads flattens schemas into RDF quads, reads them back, and
// encodes quads as N-Quads.
package quads

import (
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/dacolabs/schemagraph/internal/apg"
)

// Quad is a statement. A nil Label is the default graph.
type Quad = quad.Quad

// LangString is the datatype of language-tagged literals.
const LangString = apg.RDFNamespace + "langString"

// Literal returns a literal term. An empty datatype means xsd:string, which
// is kept as a plain string.
func Literal(v, datatype string) quad.Value {
	if datatype == "" || datatype == apg.XSDString {
		return quad.String(v)
	}
	return quad.TypedString{Value: quad.String(v), Type: quad.IRI(datatype)}
}

// BlankLabel returns the label of a blank node term without the "_:"
// prefix.
func BlankLabel(v quad.Value) (string, bool) {
	b, ok := v.(quad.BNode)
	return string(b), ok
}

// LiteralParts splits a literal term into its lexical form, datatype and
// language tag.
func LiteralParts(v quad.Value) (value, datatype, lang string, ok bool) {
	switch t := v.(type) {
	case quad.String:
		return string(t), apg.XSDString, "", true
	case quad.TypedString:
		return string(t.Value), string(t.Type), "", true
	case quad.LangString:
		return string(t.Value), LangString, t.Lang, true
	}
	return "", "", "", false
}

// Term renders v in canonical N-Quads form. A nil term renders empty.
func Term(v quad.Value) string {
	var b strings.Builder
	writeTerm(&b, v)
	return b.String()
}

// Line renders q as one canonical N-Quads line including the trailing
// newline.
func Line(q Quad) string {
	var b strings.Builder
	writeTerm(&b, q.Subject)
	b.WriteByte(' ')
	writeTerm(&b, q.Predicate)
	b.WriteByte(' ')
	writeTerm(&b, q.Object)
	if q.Label != nil {
		b.WriteByte(' ')
		writeTerm(&b, q.Label)
	}
	b.WriteString(" .\n")
	return b.String()
}

func writeTerm(b *strings.Builder, v quad.Value) {
	switch t := v.(type) {
	case nil:
	case quad.IRI:
		b.WriteByte('<')
		b.WriteString(string(t))
		b.WriteByte('>')
	case quad.BNode:
		b.WriteString("_:")
		b.WriteString(string(t))
	case quad.String:
		writeLiteral(b, string(t))
	case quad.TypedString:
		writeLiteral(b, string(t.Value))
		if t.Type != apg.XSDString {
			b.WriteString("^^<")
			b.WriteString(string(t.Type))
			b.WriteByte('>')
		}
	case quad.LangString:
		writeLiteral(b, string(t.Value))
		b.WriteByte('@')
		b.WriteString(t.Lang)
	default:
		b.WriteString(v.String())
	}
}

// writeLiteral quotes s with the minimal escaping of canonical N-Quads.
// quad.String escapes tab and other controls too, which canonical form
// leaves as they are.
func writeLiteral(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// normalize maps a parsed term to the forms produced by this package.
func normalize(v quad.Value) (quad.Value, error) {
	switch t := v.(type) {
	case nil, quad.IRI, quad.BNode, quad.String, quad.LangString:
		return v, nil
	case quad.TypedString:
		if t.Type == apg.XSDString {
			return t.Value, nil
		}
		return t, nil
	}
	return nil, fmt.Errorf("unsupported term %s", v)
}
