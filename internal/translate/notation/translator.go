// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package notation exports schemas in the notations schema documents are
// stored in: text, TOML and canonical N-Quads.
package notation

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/schemafile"
	"github.com/dacolabs/schemagraph/internal/translate"
)

// Translator writes a schema in one document notation.
type Translator struct {
	Format schemafile.Format
}

// Name returns the notation name.
func (t *Translator) Name() string {
	return string(t.Format)
}

// FileExtension returns the extension documents in the notation use.
func (t *Translator) FileExtension() string {
	return t.Format.Extension()
}

// Translate encodes s. A TOML document has a single namespace: the one
// declared under schemafile.TOMLPrefix, or the only declared one.
func (t *Translator) Translate(ctx context.Context, s *apg.Schema, opts translate.Options) ([]byte, error) {
	table := opts.Namespaces
	if t.Format == schemafile.TOML {
		if _, ok := table[schemafile.TOMLPrefix]; !ok && len(table) == 1 {
			for _, ns := range table {
				table = map[string]string{schemafile.TOMLPrefix: ns}
			}
		}
	}

	var buf bytes.Buffer
	if err := schemafile.Encode(ctx, &buf, t.Format, s, table, opts.Canon...); err != nil {
		return buf.Bytes(), fmt.Errorf("failed to encode %s: %w", t.Format, err)
	}
	return buf.Bytes(), nil
}
