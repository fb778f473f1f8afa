// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package translate

// SchemaData is the complete input passed to a translator template.
type SchemaData struct {
	Namespaces []NamespaceDef // declared namespaces, sorted by prefix
	Labels     []TypeDef      // labels, sorted by key
}

// NamespaceDef is one prefix of the namespace table.
type NamespaceDef struct {
	Prefix string
	IRI    string
}

// TypeDef represents a label and the type it names.
type TypeDef struct {
	Key    string  // full label key
	Name   string  // formatted name, e.g. "ex:Person"
	Kind   string  // kind of the label's value
	Type   string  // fully resolved value type
	Fields []Field // components or options, when the value is a product or coproduct
}

// Field represents a single component of a product or option of a coproduct.
type Field struct {
	Key      string // full component key
	Name     string // formatted key
	Type     string // fully resolved target type string
	Optional bool   // true for a coproduct of unit and one other option
}
