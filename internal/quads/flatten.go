// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package quads

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/ident"
)

// Namespace is the vocabulary namespace of flattened schemas.
const Namespace = "http://underlay.org/ns/"

// Vocabulary terms.
const (
	Value     = Namespace + "value"
	Product   = Namespace + "product"
	Coproduct = Namespace + "coproduct"
	Option    = Namespace + "option"
	Key       = Namespace + "key"
	Unit      = Namespace + "unit"
	IRIType   = Namespace + "iri"
)

// ErrReservedKey indicates a label or component key that collides with the
// flattening vocabulary.
var ErrReservedKey = errors.New("reserved key")

// BlankPrefix is the prefix of blank node labels issued by Flatten.
const BlankPrefix = "b"

type flattener struct {
	blanks *ident.Allocator
	labels map[string]quad.BNode
	quads  []Quad
}

// Flatten encodes a schema as quads in the default graph.
//
//	label      L rdf:type <key> ; L ul:value v
//	product    P rdf:type ul:product ; P <key> v
//	coproduct  C rdf:type ul:coproduct ; B ul:option C ; B ul:key <key> ; B ul:value v
//	unit, iri  ul:unit, ul:iri
//	literal    ""^^<datatype>
//	reference  the blank node of the target label
//
// Every occurrence of a product or coproduct gets its own blank node, so
// schemas that differ only in how they share type instances flatten to
// isomorphic datasets.
func Flatten(s *apg.Schema) ([]Quad, error) {
	f := &flattener{
		blanks: ident.New(BlankPrefix),
		labels: make(map[string]quad.BNode, s.Len()),
	}

	labels := s.Labels()
	for _, l := range labels {
		if l.Key == Product || l.Key == Coproduct {
			return nil, fmt.Errorf("%w: label %q", ErrReservedKey, l.Key)
		}
		f.labels[l.Key] = quad.BNode(f.blanks.Next())
	}
	for _, l := range labels {
		node := f.labels[l.Key]
		f.emit(node, quad.IRI(apg.RDFType), quad.IRI(l.Key))
		v, err := f.value(l.Key, l.Value)
		if err != nil {
			return nil, err
		}
		f.emit(node, quad.IRI(Value), v)
	}
	return f.quads, nil
}

func (f *flattener) emit(s, p, o quad.Value) {
	f.quads = append(f.quads, Quad{Subject: s, Predicate: p, Object: o})
}

func (f *flattener) value(label string, t *apg.Type) (quad.Value, error) {
	switch t.Kind() {
	case apg.KindUnit:
		return quad.IRI(Unit), nil
	case apg.KindIRI:
		return quad.IRI(IRIType), nil
	case apg.KindLiteral:
		return Literal("", t.Datatype()), nil
	case apg.KindReference:
		node, ok := f.labels[t.Target()]
		if !ok {
			return nil, fmt.Errorf("%w: label %q references %q", apg.ErrDanglingReference, label, t.Target())
		}
		return node, nil
	}

	node := quad.BNode(f.blanks.Next())
	if t.Kind() == apg.KindProduct {
		f.emit(node, quad.IRI(apg.RDFType), quad.IRI(Product))
		for _, e := range t.Entries() {
			if e.Key == apg.RDFType {
				return nil, fmt.Errorf("%w: component %q in label %q", ErrReservedKey, e.Key, label)
			}
			v, err := f.value(label, e.Value)
			if err != nil {
				return nil, err
			}
			f.emit(node, quad.IRI(e.Key), v)
		}
		return node, nil
	}

	f.emit(node, quad.IRI(apg.RDFType), quad.IRI(Coproduct))
	for _, e := range t.Entries() {
		branch := quad.BNode(f.blanks.Next())
		v, err := f.value(label, e.Value)
		if err != nil {
			return nil, err
		}
		f.emit(branch, quad.IRI(Option), node)
		f.emit(branch, quad.IRI(Key), quad.IRI(e.Key))
		f.emit(branch, quad.IRI(Value), v)
	}
	return node, nil
}

type blankRole uint8

const (
	roleLabel blankRole = iota + 1
	roleProduct
	roleCoproduct
	roleBranch
)

type statement struct {
	predicate string
	object    quad.Value
}

type unflattener struct {
	subjects map[string][]statement
	roles    map[string]blankRole
	keys     map[string]string // label blank -> label key
	branches map[string][]string
	memo     map[string]*apg.Type
	visiting map[string]bool
}

// Unflatten decodes quads produced by Flatten, or any relabelling of them,
// back into a schema. Labels and entries are ordered by key. Statements
// outside the vocabulary wrap apg.ErrMalformedImport.
func Unflatten(quads []Quad) (*apg.Schema, error) {
	u := &unflattener{
		subjects: make(map[string][]statement),
		roles:    make(map[string]blankRole),
		keys:     make(map[string]string),
		branches: make(map[string][]string),
		memo:     make(map[string]*apg.Type),
		visiting: make(map[string]bool),
	}
	for _, q := range quads {
		if q.Label != nil {
			return nil, malformed("statement in named graph %s", Term(q.Label))
		}
		subject, ok := BlankLabel(q.Subject)
		if !ok {
			return nil, malformed("subject %s is not a blank node", Term(q.Subject))
		}
		predicate, ok := q.Predicate.(quad.IRI)
		if !ok {
			return nil, malformed("predicate %s is not an IRI", Term(q.Predicate))
		}
		u.subjects[subject] = append(u.subjects[subject], statement{string(predicate), q.Object})
	}
	if err := u.classify(); err != nil {
		return nil, err
	}

	var labelNodes []string
	for node, role := range u.roles {
		if role == roleLabel {
			labelNodes = append(labelNodes, node)
		}
	}
	slices.SortFunc(labelNodes, func(a, b string) int { return strings.Compare(u.keys[a], u.keys[b]) })

	s, _ := apg.NewSchema()
	for _, node := range labelNodes {
		var value *apg.Type
		for _, st := range u.subjects[node] {
			if st.predicate == Value {
				t, err := u.value(st.object)
				if err != nil {
					return nil, fmt.Errorf("label %q: %w", u.keys[node], err)
				}
				value = t
			}
		}
		if err := s.Add(u.keys[node], value); err != nil {
			return nil, fmt.Errorf("%w: %w", apg.ErrMalformedImport, err)
		}
	}

	for node, role := range u.roles {
		if role != roleLabel && u.memo[node] == nil && !u.usedBranch(node) {
			return nil, malformed("blank node _:%s is not reachable from any label", node)
		}
	}
	return s, nil
}

// classify assigns each blank subject its role and checks the statements
// each role allows.
func (u *unflattener) classify() error {
	for node, stmts := range u.subjects {
		var types []quad.Value
		for _, st := range stmts {
			if st.predicate == apg.RDFType {
				types = append(types, st.object)
			}
		}

		switch {
		case len(types) > 1:
			return malformed("blank node _:%s has %d types", node, len(types))
		case len(types) == 0:
			if err := u.classifyBranch(node, stmts); err != nil {
				return err
			}
		case !isIRI(types[0]):
			return malformed("blank node _:%s has non-IRI type %s", node, Term(types[0]))
		case types[0] == quad.IRI(Product):
			u.roles[node] = roleProduct
		case types[0] == quad.IRI(Coproduct):
			u.roles[node] = roleCoproduct
			for _, st := range stmts {
				if st.predicate != apg.RDFType {
					return malformed("coproduct _:%s has unexpected predicate <%s>", node, st.predicate)
				}
			}
		default:
			u.roles[node] = roleLabel
			u.keys[node] = string(types[0].(quad.IRI))
			if len(stmts) != 2 {
				return malformed("label _:%s must have exactly one type and one value", node)
			}
			for _, st := range stmts {
				if st.predicate != apg.RDFType && st.predicate != Value {
					return malformed("label _:%s has unexpected predicate <%s>", node, st.predicate)
				}
			}
		}
	}

	for node, role := range u.roles {
		if role != roleBranch {
			continue
		}
		for _, st := range u.subjects[node] {
			if st.predicate != Option {
				continue
			}
			if parent, _ := BlankLabel(st.object); u.roles[parent] != roleCoproduct {
				return malformed("branch _:%s points at %s, not a coproduct", node, Term(st.object))
			}
		}
	}
	for _, list := range u.branches {
		slices.Sort(list)
	}
	return nil
}

func (u *unflattener) classifyBranch(node string, stmts []statement) error {
	var option, key, value int
	var parent string
	for _, st := range stmts {
		switch st.predicate {
		case Option:
			option++
			var ok bool
			if parent, ok = BlankLabel(st.object); !ok {
				return malformed("branch _:%s has non-blank option %s", node, Term(st.object))
			}
		case Key:
			key++
			if !isIRI(st.object) {
				return malformed("branch _:%s has non-IRI key %s", node, Term(st.object))
			}
		case Value:
			value++
		default:
			return malformed("blank node _:%s has unexpected predicate <%s>", node, st.predicate)
		}
	}
	if option != 1 || key != 1 || value != 1 {
		return malformed("branch _:%s needs exactly one option, key and value", node)
	}
	u.roles[node] = roleBranch
	u.branches[parent] = append(u.branches[parent], node)
	return nil
}

func (u *unflattener) usedBranch(node string) bool {
	if u.roles[node] != roleBranch {
		return false
	}
	for _, st := range u.subjects[node] {
		if st.predicate == Option {
			parent, _ := BlankLabel(st.object)
			return u.memo[parent] != nil
		}
	}
	return false
}

func (u *unflattener) value(o quad.Value) (*apg.Type, error) {
	switch v := o.(type) {
	case quad.IRI:
		switch v {
		case Unit:
			return apg.Unit(), nil
		case IRIType:
			return apg.IRI(), nil
		}
		return nil, malformed("unexpected value %s", Term(v))
	case quad.BNode:
		return u.blank(string(v))
	}
	if value, datatype, lang, ok := LiteralParts(o); ok {
		if value != "" || lang != "" {
			return nil, malformed("literal value %s must be empty and untagged", Term(o))
		}
		return apg.Literal(datatype), nil
	}
	return nil, malformed("unexpected value %s", Term(o))
}

func (u *unflattener) blank(node string) (*apg.Type, error) {
	switch u.roles[node] {
	case roleLabel:
		return apg.Reference(u.keys[node]), nil
	case roleProduct, roleCoproduct:
	default:
		return nil, malformed("value _:%s is not a label, product or coproduct", node)
	}

	if t, ok := u.memo[node]; ok {
		return t, nil
	}
	if u.visiting[node] {
		return nil, malformed("structural cycle through _:%s", node)
	}
	u.visiting[node] = true
	defer delete(u.visiting, node)

	var entries []apg.Entry
	if u.roles[node] == roleProduct {
		for _, st := range u.subjects[node] {
			if st.predicate == apg.RDFType {
				continue
			}
			t, err := u.value(st.object)
			if err != nil {
				return nil, err
			}
			entries = append(entries, apg.Entry{Key: st.predicate, Value: t})
		}
	} else {
		for _, branch := range u.branches[node] {
			var key string
			var value quad.Value
			for _, st := range u.subjects[branch] {
				switch st.predicate {
				case Key:
					key = string(st.object.(quad.IRI))
				case Value:
					value = st.object
				}
			}
			t, err := u.value(value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, apg.Entry{Key: key, Value: t})
		}
	}

	slices.SortFunc(entries, func(a, b apg.Entry) int { return strings.Compare(a.Key, b.Key) })
	for i := 1; i < len(entries); i++ {
		if entries[i].Key == entries[i-1].Key {
			return nil, fmt.Errorf("%w: %w: key %q on _:%s", apg.ErrMalformedImport, apg.ErrDuplicateKey, entries[i].Key, node)
		}
	}

	var t *apg.Type
	if u.roles[node] == roleProduct {
		t = apg.Product(entries...)
	} else {
		t = apg.Coproduct(entries...)
	}
	u.memo[node] = t
	return t, nil
}

func isIRI(v quad.Value) bool {
	_, ok := v.(quad.IRI)
	return ok
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apg.ErrMalformedImport, fmt.Sprintf(format, args...))
}
