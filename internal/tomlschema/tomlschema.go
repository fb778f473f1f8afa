// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package tomlschema reads and writes the TOML notation of schemas, where
// every class is a product of named properties:
//
//	namespace = "http://example.com/"
//
//	[classes.Recipe]
//	name = "string"
//
//	[classes.Recipe.hasAuthor]
//	kind = "reference"
//	label = "Author"
//	cardinality = "optional"
package tomlschema

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/quads"
)

// Property kinds.
const (
	KindLiteral   = "literal"
	KindReference = "reference"
	KindURI       = "uri"
	KindUnit      = "unit"
)

// Cardinalities.
const (
	Required = "required"
	Optional = "optional"
)

// Keys of the coproduct an optional property is wrapped in.
const (
	NoneKey = quads.Namespace + "none"
	SomeKey = quads.Namespace + "some"
)

// ErrUnsupported indicates a schema shape the TOML notation cannot express.
var ErrUnsupported = errors.New("not expressible in TOML notation")

// Property is the table form of a property.
type Property struct {
	Kind        string `toml:"kind,omitempty"`
	Datatype    string `toml:"datatype,omitempty"`
	Label       string `toml:"label,omitempty"`
	Cardinality string `toml:"cardinality,omitempty"`
}

type document struct {
	Namespace string                               `toml:"namespace"`
	Classes   map[string]map[string]toml.Primitive `toml:"classes"`
}

// Decode reads a TOML schema and returns it with its namespace. Classes
// and properties keep file order. Relative names are resolved against the
// namespace; names containing "://" are used as they are.
func Decode(r io.Reader) (*apg.Schema, string, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apg.ErrMalformedImport, err)
	}
	if doc.Namespace != "" {
		if err := (namespace.Table{"ns": doc.Namespace}).Validate(); err != nil {
			return nil, "", fmt.Errorf("%w: %w", apg.ErrMalformedImport, err)
		}
	}
	// Properties stay undecoded until their primitives are read below.
	for _, key := range md.Undecoded() {
		if len(key) == 0 || key[0] != "classes" {
			return nil, "", fmt.Errorf("%w: unknown key %q", apg.ErrMalformedImport, key.String())
		}
	}

	var classes []string
	seen := make(map[string]bool)
	properties := make(map[string][]string)
	for _, key := range md.Keys() {
		if len(key) < 2 || key[0] != "classes" {
			continue
		}
		if !seen[key[1]] {
			seen[key[1]] = true
			classes = append(classes, key[1])
		}
		if len(key) == 3 {
			properties[key[1]] = append(properties[key[1]], key[2])
		}
	}

	d := &decoder{md: md, ns: doc.Namespace}
	s, _ := apg.NewSchema()
	for _, class := range classes {
		var entries []apg.Entry
		names := make(map[string]string, len(properties[class]))
		for _, name := range properties[class] {
			key := d.resolve(name)
			if other, ok := names[key]; ok {
				return nil, "", fmt.Errorf("%w: %w: classes.%s: %q and %q both name %q",
					apg.ErrMalformedImport, apg.ErrDuplicateKey, class, other, name, key)
			}
			names[key] = name
			t, err := d.property(class, name, doc.Classes[class][name])
			if err != nil {
				return nil, "", err
			}
			entries = append(entries, apg.Entry{Key: key, Value: t})
		}
		if err := s.Add(d.resolve(class), apg.Product(entries...)); err != nil {
			return nil, "", fmt.Errorf("%w: %w", apg.ErrMalformedImport, err)
		}
	}

	for _, ref := range d.refs {
		if !s.Has(ref) {
			return nil, "", fmt.Errorf("%w: %q", apg.ErrDanglingReference, ref)
		}
	}
	return s, doc.Namespace, nil
}

type decoder struct {
	md   toml.MetaData
	ns   string
	refs []string
}

func (d *decoder) resolve(name string) string {
	if strings.Contains(name, "://") {
		return name
	}
	return d.ns + name
}

func (d *decoder) property(class, name string, raw toml.Primitive) (*apg.Type, error) {
	where := fmt.Sprintf("classes.%s.%s", class, name)

	var p Property
	switch d.md.Type("classes", class, name) {
	case "String":
		var datatype string
		if err := d.md.PrimitiveDecode(raw, &datatype); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apg.ErrMalformedImport, where, err)
		}
		p = Property{Kind: KindLiteral, Datatype: datatype}
	case "Hash", "Inline Table":
		if err := d.md.PrimitiveDecode(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apg.ErrMalformedImport, where, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s must be a datatype name or a table", apg.ErrMalformedImport, where)
	}

	var t *apg.Type
	switch p.Kind {
	case KindLiteral, "":
		if p.Datatype == "" {
			return nil, fmt.Errorf("%w: %s: literal needs a datatype", apg.ErrMalformedImport, where)
		}
		t = apg.Literal(d.datatype(p.Datatype))
	case KindReference:
		if p.Label == "" {
			return nil, fmt.Errorf("%w: %s: reference needs a label", apg.ErrMalformedImport, where)
		}
		target := d.resolve(p.Label)
		d.refs = append(d.refs, target)
		t = apg.Reference(target)
	case KindURI:
		t = apg.IRI()
	case KindUnit:
		t = apg.Unit()
	default:
		return nil, fmt.Errorf("%w: %s: unknown kind %q", apg.ErrMalformedImport, where, p.Kind)
	}

	switch p.Cardinality {
	case Required, "":
		return t, nil
	case Optional:
		return apg.Coproduct(
			apg.Entry{Key: NoneKey, Value: apg.Unit()},
			apg.Entry{Key: SomeKey, Value: t},
		), nil
	}
	return nil, fmt.Errorf("%w: %s: unsupported cardinality %q", apg.ErrMalformedImport, where, p.Cardinality)
}

func (d *decoder) datatype(name string) string {
	if iri, ok := namespace.WellKnownDatatype(name); ok {
		return iri
	}
	return d.resolve(name)
}

// Encode writes s in TOML notation under the given namespace. Every label
// must be a product whose keys, like the label keys, lie in the namespace
// or are written out in full.
func Encode(w io.Writer, s *apg.Schema, ns string) error {
	classes := make(map[string]map[string]any, s.Len())
	for _, l := range s.Labels() {
		if l.Value.Kind() != apg.KindProduct {
			return fmt.Errorf("%w: label %q is a %s, not a product", ErrUnsupported, l.Key, l.Value.Kind())
		}
		props := make(map[string]any, l.Value.Len())
		for _, e := range l.Value.Entries() {
			v, err := encodeProperty(e.Value, ns)
			if err != nil {
				return fmt.Errorf("label %q property %q: %w", l.Key, e.Key, err)
			}
			props[relative(e.Key, ns)] = v
		}
		classes[relative(l.Key, ns)] = props
	}

	doc := map[string]any{"classes": classes}
	if ns != "" {
		doc["namespace"] = ns
	}
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(doc)
}

func encodeProperty(t *apg.Type, ns string) (any, error) {
	cardinality := Required
	if t.Kind() == apg.KindCoproduct {
		none, hasNone := t.Get(NoneKey)
		some, hasSome := t.Get(SomeKey)
		if t.Len() != 2 || !hasNone || !hasSome || none.Kind() != apg.KindUnit || some.Kind() == apg.KindCoproduct {
			return nil, fmt.Errorf("%w: coproduct that is not an optional value", ErrUnsupported)
		}
		t, cardinality = some, Optional
	}

	var p Property
	switch t.Kind() {
	case apg.KindLiteral:
		name, builtin := namespace.WellKnownName(t.Datatype())
		if builtin && cardinality == Required {
			return name, nil
		}
		if !builtin {
			name = relative(t.Datatype(), ns)
		}
		p = Property{Kind: KindLiteral, Datatype: name}
	case apg.KindReference:
		p = Property{Kind: KindReference, Label: relative(t.Target(), ns)}
	case apg.KindIRI:
		p = Property{Kind: KindURI}
	case apg.KindUnit:
		p = Property{Kind: KindUnit}
	default:
		return nil, fmt.Errorf("%w: nested %s", ErrUnsupported, t.Kind())
	}
	if cardinality == Optional {
		p.Cardinality = Optional
	}
	return p, nil
}

func relative(iri, ns string) string {
	if ns != "" && strings.HasPrefix(iri, ns) && len(iri) > len(ns) && !strings.Contains(iri[len(ns):], "://") {
		return iri[len(ns):]
	}
	return iri
}
