// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package apg implements the algebraic schema representation: labels bound
// to types built from units, IRIs, literals, products, coproducts and
// references.
package apg

import "fmt"

// Kind identifies the variant of a Type.
type Kind uint8

// Type kinds.
const (
	KindUnit Kind = iota
	KindIRI
	KindLiteral
	KindProduct
	KindCoproduct
	KindReference
)

var kindNames = [...]string{
	KindUnit:      "unit",
	KindIRI:       "iri",
	KindLiteral:   "literal",
	KindProduct:   "product",
	KindCoproduct: "coproduct",
	KindReference: "reference",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Well-known datatype IRIs.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	XSDString   = XSDNamespace + "string"
	XSDInteger  = XSDNamespace + "integer"
	XSDDouble   = XSDNamespace + "double"
	XSDDateTime = XSDNamespace + "dateTime"
	XSDBoolean  = XSDNamespace + "boolean"
	RDFJSON     = RDFNamespace + "JSON"
	RDFType     = RDFNamespace + "type"
)

// Entry is a keyed component of a product or an option of a coproduct.
type Entry struct {
	Key   string
	Value *Type
}

// Type is an immutable schema type. The same *Type may be reachable from
// several parents; that sharing is significant and is preserved by the
// graph projection.
type Type struct {
	kind     Kind
	datatype string
	target   string
	entries  []Entry
}

// Unit returns a new unit type.
func Unit() *Type { return &Type{kind: KindUnit} }

// IRI returns a new iri type.
func IRI() *Type { return &Type{kind: KindIRI} }

// Literal returns a literal type with the given datatype IRI.
func Literal(datatype string) *Type {
	return &Type{kind: KindLiteral, datatype: datatype}
}

// Product returns a product with the given components. Keys are expected
// to be unique; Validate reports collisions.
func Product(components ...Entry) *Type {
	return &Type{kind: KindProduct, entries: append([]Entry(nil), components...)}
}

// Coproduct returns a coproduct with the given options.
func Coproduct(options ...Entry) *Type {
	return &Type{kind: KindCoproduct, entries: append([]Entry(nil), options...)}
}

// Reference returns a reference to the label with the given key.
func Reference(key string) *Type {
	return &Type{kind: KindReference, target: key}
}

// Kind returns the variant of t.
func (t *Type) Kind() Kind { return t.kind }

// Datatype returns the datatype IRI of a literal, or "".
func (t *Type) Datatype() string { return t.datatype }

// Target returns the label key of a reference, or "".
func (t *Type) Target() string { return t.target }

// Entries returns a copy of the components or options of t.
func (t *Type) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of components or options.
func (t *Type) Len() int { return len(t.entries) }

// Get returns the value for key among the components or options of t.
func (t *Type) Get(key string) (*Type, bool) {
	for _, e := range t.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func (t *Type) String() string {
	switch t.kind {
	case KindLiteral:
		return "literal(" + t.datatype + ")"
	case KindReference:
		return "reference(" + t.target + ")"
	case KindProduct, KindCoproduct:
		return fmt.Sprintf("%s[%d]", t.kind, len(t.entries))
	default:
		return t.kind.String()
	}
}

// Equal reports whether a and b are structurally equal. Product and
// coproduct entries are compared by key regardless of order.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindLiteral:
		return a.datatype == b.datatype
	case KindReference:
		return a.target == b.target
	case KindProduct, KindCoproduct:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for _, e := range a.entries {
			other, ok := b.Get(e.Key)
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
