// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package markdown renders schema documentation as markdown.
package markdown

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/translate"
)

//go:embed markdown.md.tmpl
var tmplFS embed.FS

var funcMap = template.FuncMap{
	"anchor": translate.ToAnchor,
}

var tmpl = template.Must(template.New("markdown.md.tmpl").Funcs(funcMap).ParseFS(tmplFS, "markdown.md.tmpl"))

// Translator translates schemas to markdown documentation.
type Translator struct{}

// Name returns the translator's identifier.
func (t *Translator) Name() string {
	return "markdown"
}

// FileExtension returns the file extension for markdown files.
func (t *Translator) FileExtension() string {
	return ".md"
}

// Translate renders one section per label.
func (t *Translator) Translate(_ context.Context, s *apg.Schema, opts translate.Options) ([]byte, error) {
	data := translate.Prepare(s, opts.Namespaces, &resolver{table: opts.Namespaces})

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "markdown.md.tmpl", data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.Bytes(), nil
}

type resolver struct {
	table namespace.Table
}

func (r *resolver) FormatKey(key string) string {
	return r.table.Compact(key)
}

func (r *resolver) UnitType() string { return "unit" }

func (r *resolver) IRIType() string { return "iri" }

func (r *resolver) LiteralType(datatype string) string {
	if name, ok := namespace.WellKnownName(datatype); ok {
		return name
	}
	return "`" + r.table.Display(datatype) + "`"
}

func (r *resolver) RefType(key string) string {
	name := r.FormatKey(key)
	return "[" + name + "](#" + translate.ToAnchor(name) + ")"
}

func (r *resolver) ProductType(fields []translate.Field) string {
	return "{" + joinFields(fields, ", ") + "}"
}

func (r *resolver) CoproductType(options []translate.Field) string {
	return "one of (" + joinFields(options, ", ") + ")"
}

func joinFields(fields []translate.Field, sep string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ": " + f.Type
		if f.Optional {
			parts[i] += "?"
		}
	}
	return strings.Join(parts, sep)
}
