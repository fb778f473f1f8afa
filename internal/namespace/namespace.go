// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package namespace maps full IRIs to prefixed short forms and back.
package namespace

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dacolabs/schemagraph/internal/apg"
)

// ErrInvalidNamespace indicates a malformed namespace table entry.
var ErrInvalidNamespace = errors.New("invalid namespace")

var prefixPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// wellKnown lists datatypes rendered as [name] when no namespace matches.
var wellKnown = map[string]string{
	apg.XSDString:   "string",
	apg.XSDInteger:  "integer",
	apg.XSDDouble:   "double",
	apg.XSDDateTime: "dateTime",
	apg.XSDBoolean:  "boolean",
	apg.RDFJSON:     "JSON",
}

var wellKnownByName = func() map[string]string {
	m := make(map[string]string, len(wellKnown))
	for iri, name := range wellKnown {
		m[name] = iri
	}
	return m
}()

// WellKnownDatatype returns the datatype IRI for a builtin name such as
// "string" or "dateTime".
func WellKnownDatatype(name string) (string, bool) {
	iri, ok := wellKnownByName[name]
	return iri, ok
}

// WellKnownName returns the builtin name of a datatype IRI.
func WellKnownName(iri string) (string, bool) {
	name, ok := wellKnown[iri]
	return name, ok
}

// Table maps prefixes to namespace IRIs.
type Table map[string]string

// Prefixes returns the table's prefixes sorted.
func (t Table) Prefixes() []string {
	prefixes := make([]string, 0, len(t))
	for p := range t {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Validate checks every prefix and namespace in the table.
func (t Table) Validate() error {
	for _, p := range t.Prefixes() {
		if !prefixPattern.MatchString(p) {
			return fmt.Errorf("%w: prefix %q", ErrInvalidNamespace, p)
		}
		ns := t[p]
		if ns == "" || !(strings.HasSuffix(ns, "/") || strings.HasSuffix(ns, "#")) {
			return fmt.Errorf("%w: namespace %q for prefix %q must end in / or #", ErrInvalidNamespace, ns, p)
		}
	}
	return nil
}

// Merge returns a new table with the entries of t overridden by other.
func (t Table) Merge(other Table) Table {
	merged := make(Table, len(t)+len(other))
	for p, ns := range t {
		merged[p] = ns
	}
	for p, ns := range other {
		merged[p] = ns
	}
	return merged
}

// Compact returns the short form of iri. The longest matching namespace
// wins, ties going to the smallest prefix. Well-known datatypes without a
// matching namespace compact to [name]. Any other IRI is returned as is,
// unless Expand would read it differently, in which case it is wrapped in
// angle brackets.
func (t Table) Compact(iri string) string {
	var bestPrefix, bestNS string
	for _, p := range t.Prefixes() {
		ns := t[p]
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			bestPrefix, bestNS = p, ns
		}
	}
	if bestNS != "" {
		return bestPrefix + ":" + iri[len(bestNS):]
	}
	if name, ok := wellKnown[iri]; ok {
		return "[" + name + "]"
	}
	if t.Expand(iri) != iri {
		return "<" + iri + ">"
	}
	return iri
}

// Expand is the inverse of Compact under the same table.
func (t Table) Expand(short string) string {
	if len(short) >= 2 && short[0] == '<' && short[len(short)-1] == '>' {
		return short[1 : len(short)-1]
	}
	if len(short) >= 2 && short[0] == '[' && short[len(short)-1] == ']' {
		if iri, ok := wellKnownByName[short[1:len(short)-1]]; ok {
			return iri
		}
		return short
	}
	if prefix, local, ok := strings.Cut(short, ":"); ok {
		if ns, ok := t[prefix]; ok {
			return ns + local
		}
	}
	return short
}

// Display returns the form of iri shown on graph nodes: a compacted name
// when the table or the builtin datatypes know it, <iri> otherwise.
func (t Table) Display(iri string) string {
	short := t.Compact(iri)
	if short == iri {
		return "<" + iri + ">"
	}
	return short
}
