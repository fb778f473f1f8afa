// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package translate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/namespace"
)

// TypeResolver renders the pieces of a schema for one output format.
type TypeResolver interface {
	FormatKey(key string) string
	UnitType() string
	IRIType() string
	LiteralType(datatype string) string
	RefType(key string) string
	ProductType(fields []Field) string
	CoproductType(options []Field) string
}

// Prepare converts a schema into a SchemaData ready for template execution.
// Labels, components and options are visited in key order.
func Prepare(s *apg.Schema, table namespace.Table, resolver TypeResolver) *SchemaData {
	data := &SchemaData{}
	for _, prefix := range table.Prefixes() {
		data.Namespaces = append(data.Namespaces, NamespaceDef{Prefix: prefix, IRI: table[prefix]})
	}

	for _, key := range s.SortedKeys() {
		value, _ := s.Get(key)
		def := TypeDef{
			Key:  key,
			Name: resolver.FormatKey(key),
			Kind: value.Kind().String(),
			Type: resolveType(value, resolver),
		}
		if value.Kind() == apg.KindProduct || value.Kind() == apg.KindCoproduct {
			def.Fields = resolveFields(value, resolver)
		}
		data.Labels = append(data.Labels, def)
	}
	return data
}

func resolveFields(t *apg.Type, resolver TypeResolver) []Field {
	entries := t.Entries()
	slices.SortFunc(entries, func(a, b apg.Entry) int { return cmp.Compare(a.Key, b.Key) })
	fields := make([]Field, 0, len(entries))
	for _, e := range entries {
		f := Field{
			Key:  e.Key,
			Name: resolver.FormatKey(e.Key),
		}
		if some, ok := Optional(e.Value); ok {
			f.Optional = true
			f.Type = resolveType(some, resolver)
		} else {
			f.Type = resolveType(e.Value, resolver)
		}
		fields = append(fields, f)
	}
	return fields
}

func resolveType(t *apg.Type, resolver TypeResolver) string {
	switch t.Kind() {
	case apg.KindUnit:
		return resolver.UnitType()
	case apg.KindIRI:
		return resolver.IRIType()
	case apg.KindLiteral:
		return resolver.LiteralType(t.Datatype())
	case apg.KindReference:
		return resolver.RefType(t.Target())
	case apg.KindProduct:
		return resolver.ProductType(resolveFields(t, resolver))
	default:
		return resolver.CoproductType(resolveFields(t, resolver))
	}
}

// Optional reports whether t is a coproduct of exactly two options, one of
// them unit, and returns the other option.
func Optional(t *apg.Type) (*apg.Type, bool) {
	if t.Kind() != apg.KindCoproduct || t.Len() != 2 {
		return nil, false
	}
	entries := t.Entries()
	switch {
	case entries[0].Value.Kind() == apg.KindUnit && entries[1].Value.Kind() != apg.KindUnit:
		return entries[1].Value, true
	case entries[1].Value.Kind() == apg.KindUnit && entries[0].Value.Kind() != apg.KindUnit:
		return entries[0].Value, true
	}
	return nil, false
}

// ToAnchor converts a string to a lowercase, dash-separated identifier
// usable as a document anchor.
func ToAnchor(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9')
	})

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, "-")
}
