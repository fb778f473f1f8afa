// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package tasl

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/namespace"
)

const indent = "  "

// Format renders a schema in text notation. Namespaces, labels and entries
// are sorted and every type is written inline, so equal schemas format to
// identical bytes.
func Format(s *apg.Schema, table namespace.Table) []byte {
	f := &formatter{table: table}

	for _, prefix := range table.Prefixes() {
		f.b.WriteString(keywordNamespace + " " + prefix + " " + table[prefix] + "\n")
	}

	labels := s.Labels()
	slices.SortFunc(labels, func(a, b apg.Label) int { return cmp.Compare(a.Key, b.Key) })
	for _, l := range labels {
		if f.b.Len() > 0 {
			f.b.WriteByte('\n')
		}
		f.b.WriteString(keywordClass + " " + f.key(l.Key) + " ")
		f.typ(l.Value, 0)
		f.b.WriteByte('\n')
	}
	return []byte(f.b.String())
}

type formatter struct {
	table namespace.Table
	b     strings.Builder
}

// key writes an IRI as prefix:local when a declared namespace covers it.
func (f *formatter) key(iri string) string {
	short := f.table.Compact(iri)
	if prefix, local, ok := strings.Cut(short, ":"); ok && short != iri && f.table[prefix] != "" && isName(local) {
		return short
	}
	return "<" + iri + ">"
}

func (f *formatter) datatype(iri string) string {
	if name, ok := namespace.WellKnownName(iri); ok {
		return name
	}
	return f.key(iri)
}

// isName reports whether local survives lexing as part of one name token.
func isName(local string) bool {
	return !strings.ContainsAny(local, " \t\r\n!*{}[]<>;,") && !strings.Contains(local, "->")
}

func (f *formatter) typ(t *apg.Type, depth int) {
	switch t.Kind() {
	case apg.KindUnit:
		f.b.WriteString("!")
	case apg.KindIRI:
		f.b.WriteString(keywordIRI)
	case apg.KindLiteral:
		f.b.WriteString(f.datatype(t.Datatype()))
	case apg.KindReference:
		f.b.WriteString("* " + f.key(t.Target()))
	case apg.KindProduct:
		f.entries(t, depth, "{", "}", " -> ", false)
	case apg.KindCoproduct:
		f.entries(t, depth, "[", "]", " <- ", true)
	}
}

func (f *formatter) entries(t *apg.Type, depth int, open, close, arrow string, bareUnit bool) {
	entries := t.Entries()
	if len(entries) == 0 {
		f.b.WriteString(open + close)
		return
	}
	slices.SortFunc(entries, func(a, b apg.Entry) int { return cmp.Compare(a.Key, b.Key) })

	f.b.WriteString(open + "\n")
	pad := strings.Repeat(indent, depth+1)
	for _, e := range entries {
		f.b.WriteString(pad + f.key(e.Key))
		if !bareUnit || e.Value.Kind() != apg.KindUnit {
			f.b.WriteString(arrow)
			f.typ(e.Value, depth+1)
		}
		f.b.WriteByte('\n')
	}
	f.b.WriteString(strings.Repeat(indent, depth) + close)
}
