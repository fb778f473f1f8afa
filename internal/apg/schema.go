// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package apg

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

var (
	// ErrDanglingReference indicates a reference to a label key that does not exist.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrDuplicateKey indicates two labels, or two sibling components or
	// options, share a key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrMalformedImport indicates input that does not parse into a schema.
	ErrMalformedImport = errors.New("malformed import")
)

// Label binds a key IRI to a type.
type Label struct {
	Key   string
	Value *Type
}

// Schema is an ordered set of labels with unique keys.
type Schema struct {
	labels []Label
	index  map[string]int
}

// NewSchema creates a schema from labels, rejecting duplicate keys.
func NewSchema(labels ...Label) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(labels))}
	for _, l := range labels {
		if err := s.Add(l.Key, l.Value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for fixtures.
func MustSchema(labels ...Label) *Schema {
	s, err := NewSchema(labels...)
	if err != nil {
		panic(err)
	}
	return s
}

// Add appends a label. A nil value is stored as unit.
func (s *Schema) Add(key string, value *Type) error {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[key]; ok {
		return fmt.Errorf("%w: label %q", ErrDuplicateKey, key)
	}
	if value == nil {
		value = Unit()
	}
	s.index[key] = len(s.labels)
	s.labels = append(s.labels, Label{Key: key, Value: value})
	return nil
}

// Len returns the number of labels.
func (s *Schema) Len() int { return len(s.labels) }

// Labels returns the labels in insertion order.
func (s *Schema) Labels() []Label {
	return slices.Clone(s.labels)
}

// Keys returns the label keys in insertion order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.labels))
	for i, l := range s.labels {
		keys[i] = l.Key
	}
	return keys
}

// SortedKeys returns the label keys sorted.
func (s *Schema) SortedKeys() []string {
	keys := s.Keys()
	slices.Sort(keys)
	return keys
}

// Get returns the type bound to key.
func (s *Schema) Get(key string) (*Type, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.labels[i].Value, true
}

// Has reports whether a label with key exists.
func (s *Schema) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Equal reports whether s and other bind the same keys to structurally
// equal types. Label order is ignored.
func (s *Schema) Equal(other *Schema) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, l := range s.labels {
		t, ok := other.Get(l.Key)
		if !ok || !Equal(l.Value, t) {
			return false
		}
	}
	return true
}

// ReferenceCycle returns a sequence of label keys whose values are direct
// references to the next key in the sequence, ending where it started.
// Such a cycle has no structure at all. It returns nil if there is none.
func (s *Schema) ReferenceCycle() []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(s.labels))

	var visit func(key string, path []string) []string
	visit = func(key string, path []string) []string {
		switch state[key] {
		case active:
			start := slices.Index(path, key)
			return append(slices.Clone(path[start:]), key)
		case done:
			return nil
		}
		state[key] = active
		path = append(path, key)
		if t, ok := s.Get(key); ok && t.Kind() == KindReference && s.Has(t.Target()) {
			if cycle := visit(t.Target(), path); cycle != nil {
				return cycle
			}
		}
		state[key] = done
		return nil
	}

	for _, l := range s.labels {
		if cycle := visit(l.Key, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}

// Validate checks that sibling keys are unique and that every reference
// resolves. All violations are reported.
func Validate(s *Schema) error {
	var err error
	seen := make(map[*Type]bool)

	var walk func(label string, t *Type)
	walk = func(label string, t *Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		switch t.Kind() {
		case KindReference:
			if !s.Has(t.Target()) {
				err = multierr.Append(err, fmt.Errorf("%w: label %q references %q", ErrDanglingReference, label, t.Target()))
			}
		case KindProduct, KindCoproduct:
			keys := make(map[string]bool, len(t.entries))
			for _, e := range t.entries {
				if keys[e.Key] {
					err = multierr.Append(err, fmt.Errorf("%w: %s key %q in label %q", ErrDuplicateKey, t.Kind(), e.Key, label))
				}
				keys[e.Key] = true
				walk(label, e.Value)
			}
		}
	}

	for _, l := range s.labels {
		walk(l.Key, l.Value)
	}
	return err
}
