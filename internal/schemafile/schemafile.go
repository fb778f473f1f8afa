// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package schemafile loads and saves schema documents, choosing the
// notation from the file extension.
package schemafile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/canon"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/quads"
	"github.com/dacolabs/schemagraph/internal/tasl"
	"github.com/dacolabs/schemagraph/internal/tomlschema"
)

// Format is a schema document notation.
type Format string

// Supported formats.
const (
	Text   Format = "tasl"
	TOML   Format = "toml"
	NQuads Format = "nquads"
)

// Extension returns the file extension documents in f are written with.
func (f Format) Extension() string {
	if f == NQuads {
		return ".nq"
	}
	return "." + string(f)
}

// TOMLPrefix is the namespace table prefix under which the single namespace
// of a TOML document is kept.
const TOMLPrefix = "ns"

// ErrUnknownFormat indicates a file extension with no matching notation.
var ErrUnknownFormat = errors.New("unknown schema format")

// FormatFromPath returns the format for a file name: .tasl, .toml, or .nq.
func FormatFromPath(p string) (Format, error) {
	switch ext := path.Ext(p); ext {
	case ".tasl":
		return Text, nil
	case ".toml":
		return TOML, nil
	case ".nq", ".nquads":
		return NQuads, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Load reads and decodes the schema at p in fsys. Text documents declare
// their namespaces; a TOML document yields its namespace under TOMLPrefix;
// N-Quads documents carry none.
func Load(fsys fs.FS, p string) (*apg.Schema, namespace.Table, error) {
	format, err := FormatFromPath(p)
	if err != nil {
		return nil, nil, err
	}
	f, err := fsys.Open(p)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() //nolint:errcheck

	return Decode(f, format)
}

// Decode reads a schema in the given format.
func Decode(r io.Reader, format Format) (*apg.Schema, namespace.Table, error) {
	switch format {
	case Text:
		return tasl.Parse(r)
	case TOML:
		s, ns, err := tomlschema.Decode(r)
		if err != nil {
			return nil, nil, err
		}
		table := namespace.Table{}
		if ns != "" {
			table[TOMLPrefix] = ns
		}
		return s, table, nil
	case NQuads:
		qs, err := quads.Parse(r)
		if err != nil {
			return nil, nil, err
		}
		s, err := quads.Unflatten(qs)
		if err != nil {
			return nil, nil, err
		}
		return s, namespace.Table{}, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Encode writes s in the given format. N-Quads output is canonical; when
// canonicalization hits its iteration bound the fallback labeling is still
// written and canon.ErrCanonicalizationTimeout returned.
func Encode(ctx context.Context, w io.Writer, format Format, s *apg.Schema, table namespace.Table, opts ...canon.Option) error {
	var data []byte
	switch format {
	case Text:
		data = tasl.Format(s, table)
	case TOML:
		var buf bytes.Buffer
		if err := tomlschema.Encode(&buf, s, table[TOMLPrefix]); err != nil {
			return err
		}
		data = buf.Bytes()
	case NQuads:
		qs, err := quads.Flatten(s)
		if err != nil {
			return err
		}
		data, err = canon.Canonicalize(ctx, qs, opts...)
		if err != nil && !errors.Is(err, canon.ErrCanonicalizationTimeout) {
			return err
		}
		if _, werr := w.Write(data); werr != nil {
			return werr
		}
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	_, err := w.Write(data)
	return err
}
