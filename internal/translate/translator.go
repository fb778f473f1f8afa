// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package translate provides the registry of schema exporters.
package translate

import (
	"context"
	"fmt"
	"slices"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/canon"
	"github.com/dacolabs/schemagraph/internal/namespace"
)

// Options carries the document settings a translator may need.
type Options struct {
	// Namespaces is used to compact keys in human-readable output.
	Namespaces namespace.Table

	// Canon configures canonicalization for quad-based output.
	Canon []canon.Option
}

// Translator defines the interface all export formats must implement.
type Translator interface {
	// Name returns the translator's identifier (e.g., "nquads", "tasl")
	Name() string

	// Translate renders the schema in the target format.
	Translate(ctx context.Context, s *apg.Schema, opts Options) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".nq", ".tasl")
	FileExtension() string
}

// Register maps export format names to translators.
type Register map[string]Translator

// Add registers t under its name.
func (r Register) Add(t Translator) {
	r[t.Name()] = t
}

// Get retrieves a translator by name.
func (r Register) Get(name string) (Translator, error) {
	t, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown translator: %s", name)
	}
	return t, nil
}

// Available returns all registered translator names, sorted.
func (r Register) Available() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
