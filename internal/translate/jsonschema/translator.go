// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package jsonschema exports schemas as JSON Schema (draft 2020-12) documents
// describing the JSON shape of instances: one $defs entry per label.
package jsonschema

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/translate"
	jss "github.com/google/jsonschema-go/jsonschema"
)

// Draft is the $schema of generated documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Translator translates schemas to JSON Schema.
type Translator struct{}

// Name returns the translator's identifier.
func (t *Translator) Name() string {
	return "jsonschema"
}

// FileExtension returns the file extension for JSON Schema files.
func (t *Translator) FileExtension() string {
	return ".json"
}

// Translate converts s to a JSON Schema document.
func (t *Translator) Translate(_ context.Context, s *apg.Schema, opts translate.Options) ([]byte, error) {
	root, err := Convert(s, opts.Namespaces)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return append(data, '\n'), nil
}

// Convert builds the JSON Schema for s. Labels become $defs entries and
// property names are keys compacted against table.
func Convert(s *apg.Schema, table namespace.Table) (*jss.Schema, error) {
	c := &converter{table: table}
	root := &jss.Schema{
		Schema: Draft,
		Defs:   make(map[string]*jss.Schema, s.Len()),
	}
	for _, l := range s.Labels() {
		name := table.Compact(l.Key)
		if _, dup := root.Defs[name]; dup {
			return nil, fmt.Errorf("%w: labels compact to the same name %q", apg.ErrDuplicateKey, name)
		}
		def := c.convert(l.Value)
		def.Title = l.Key
		root.Defs[name] = def
	}
	for _, target := range c.refs {
		if !s.Has(target) {
			return nil, fmt.Errorf("%w: %q", apg.ErrDanglingReference, target)
		}
	}
	return root, nil
}

type converter struct {
	table namespace.Table
	refs  []string
}

func (c *converter) convert(t *apg.Type) *jss.Schema {
	switch t.Kind() {
	case apg.KindUnit:
		return &jss.Schema{Type: "null"}
	case apg.KindIRI:
		return &jss.Schema{Type: "string", Format: "iri"}
	case apg.KindLiteral:
		return literal(t.Datatype())
	case apg.KindReference:
		c.refs = append(c.refs, t.Target())
		return &jss.Schema{Ref: "#/$defs/" + escapePointer(c.table.Compact(t.Target()))}
	case apg.KindProduct:
		obj := &jss.Schema{Type: "object", Properties: make(map[string]*jss.Schema, t.Len())}
		for _, e := range sortedEntries(t) {
			name := c.table.Compact(e.Key)
			obj.Properties[name] = c.convert(e.Value)
			obj.Required = append(obj.Required, name)
		}
		return obj
	default:
		union := &jss.Schema{}
		for _, e := range sortedEntries(t) {
			name := c.table.Compact(e.Key)
			union.OneOf = append(union.OneOf, &jss.Schema{
				Type:       "object",
				Properties: map[string]*jss.Schema{name: c.convert(e.Value)},
				Required:   []string{name},
			})
		}
		return union
	}
}

func literal(datatype string) *jss.Schema {
	switch datatype {
	case apg.XSDString:
		return &jss.Schema{Type: "string"}
	case apg.XSDInteger:
		return &jss.Schema{Type: "integer"}
	case apg.XSDDouble:
		return &jss.Schema{Type: "number"}
	case apg.XSDBoolean:
		return &jss.Schema{Type: "boolean"}
	case apg.XSDDateTime:
		return &jss.Schema{Type: "string", Format: "date-time"}
	case apg.RDFJSON:
		return &jss.Schema{}
	}
	return &jss.Schema{Type: "string", Description: "lexical form of " + datatype}
}

func sortedEntries(t *apg.Type) []apg.Entry {
	entries := t.Entries()
	slices.SortFunc(entries, func(a, b apg.Entry) int { return cmp.Compare(a.Key, b.Key) })
	return entries
}

// escapePointer escapes a reference token for use in a JSON pointer.
func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
