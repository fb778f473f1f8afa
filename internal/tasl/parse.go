// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package tasl reads and writes the text notation of schemas:
//
//	namespace ex http://example.com/
//	type name string
//	class ex:Person {
//	  ex:name -> name
//	  ex:gender -> [ ex:Male  ex:Female  ex:value <- string ]
//	  ex:friend -> * ex:Person
//	}
package tasl

import (
	"fmt"
	"io"
	"strings"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/namespace"
)

// Keywords of the notation.
const (
	keywordNamespace = "namespace"
	keywordType      = "type"
	keywordClass     = "class"
	keywordIRI       = "uri"
)

type reference struct {
	key  string
	line int
}

type parser struct {
	tokens  []token
	pos     int
	table   namespace.Table
	aliases map[string]*apg.Type
	refs    []reference // checked once every class is known
}

// Parse reads a schema in text notation. Labels keep declaration order.
// References may point at classes declared later. Syntax errors wrap
// apg.ErrMalformedImport; references to undeclared classes wrap
// apg.ErrDanglingReference.
func Parse(r io.Reader) (*apg.Schema, namespace.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return ParseString(string(data))
}

// ParseString is like Parse for in-memory text.
func ParseString(input string) (*apg.Schema, namespace.Table, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apg.ErrMalformedImport, err)
	}
	p := &parser{
		tokens:  tokens,
		table:   namespace.Table{},
		aliases: make(map[string]*apg.Type),
	}
	s, err := p.parseDocument()
	if err != nil {
		return nil, nil, err
	}
	return s, p.table, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", apg.ErrMalformedImport, tok.line, fmt.Sprintf(format, args...))
}

func (p *parser) expect(typ tokenType) (token, error) {
	tok := p.advance()
	if tok.typ != typ {
		return tok, p.errorf(tok, "expected %s, got %s", typ, tok)
	}
	return tok, nil
}

func (p *parser) parseDocument() (*apg.Schema, error) {
	s, _ := apg.NewSchema()
	for {
		tok := p.advance()
		if tok.typ == tokenEOF {
			break
		}
		if tok.typ != tokenName {
			return nil, p.errorf(tok, "expected declaration, got %s", tok)
		}

		switch tok.value {
		case keywordNamespace:
			if err := p.parseNamespace(); err != nil {
				return nil, err
			}
		case keywordType:
			if err := p.parseAlias(); err != nil {
				return nil, err
			}
		case keywordClass:
			keyTok := p.peek()
			key, err := p.parseKey()
			if err != nil {
				return nil, err
			}
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if err := s.Add(key, t); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", apg.ErrMalformedImport, keyTok.line, err)
			}
		default:
			return nil, p.errorf(tok, "unknown declaration %q", tok.value)
		}
	}

	for _, ref := range p.refs {
		if !s.Has(ref.key) {
			return nil, fmt.Errorf("%w: line %d: class %q is not declared", apg.ErrDanglingReference, ref.line, ref.key)
		}
	}
	return s, nil
}

func (p *parser) parseNamespace() error {
	prefixTok, err := p.expect(tokenName)
	if err != nil {
		return err
	}
	nsTok := p.advance()
	if nsTok.typ != tokenName && nsTok.typ != tokenIRI {
		return p.errorf(nsTok, "expected namespace IRI, got %s", nsTok)
	}
	if _, ok := p.table[prefixTok.value]; ok {
		return p.errorf(prefixTok, "prefix %q declared twice", prefixTok.value)
	}
	entry := namespace.Table{prefixTok.value: nsTok.value}
	if err := entry.Validate(); err != nil {
		return p.errorf(prefixTok, "%v", err)
	}
	p.table[prefixTok.value] = nsTok.value
	return nil
}

func (p *parser) parseAlias() error {
	nameTok, err := p.expect(tokenName)
	if err != nil {
		return err
	}
	name := nameTok.value
	if strings.Contains(name, ":") || isReserved(name) {
		return p.errorf(nameTok, "invalid type name %q", name)
	}
	if _, ok := p.aliases[name]; ok {
		return p.errorf(nameTok, "type %q declared twice", name)
	}
	t, err := p.parseType()
	if err != nil {
		return err
	}
	p.aliases[name] = t
	return nil
}

func isReserved(name string) bool {
	switch name {
	case keywordNamespace, keywordType, keywordClass, keywordIRI:
		return true
	}
	_, builtin := namespace.WellKnownDatatype(name)
	return builtin
}

// parseKey reads a key written as <iri> or prefix:local.
func (p *parser) parseKey() (string, error) {
	tok := p.advance()
	switch tok.typ {
	case tokenIRI:
		if tok.value == "" {
			return "", p.errorf(tok, "empty IRI")
		}
		return tok.value, nil
	case tokenName:
		prefix, _, ok := strings.Cut(tok.value, ":")
		if !ok {
			return "", p.errorf(tok, "key %q needs a prefix or angle brackets", tok.value)
		}
		if _, known := p.table[prefix]; !known {
			return "", p.errorf(tok, "unknown prefix %q", prefix)
		}
		return p.table.Expand(tok.value), nil
	}
	return "", p.errorf(tok, "expected key, got %s", tok)
}

func (p *parser) parseType() (*apg.Type, error) {
	tok := p.advance()
	switch tok.typ {
	case tokenUnit:
		return apg.Unit(), nil
	case tokenIRI:
		if tok.value == "" {
			return nil, p.errorf(tok, "empty datatype IRI")
		}
		return apg.Literal(tok.value), nil
	case tokenStar:
		target := p.peek()
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.refs = append(p.refs, reference{key: key, line: target.line})
		return apg.Reference(key), nil
	case tokenLBrace:
		entries, err := p.parseEntries(tokenRBrace, tokenArrow, false)
		if err != nil {
			return nil, err
		}
		return apg.Product(entries...), nil
	case tokenLBracket:
		entries, err := p.parseEntries(tokenRBracket, tokenLArrow, true)
		if err != nil {
			return nil, err
		}
		return apg.Coproduct(entries...), nil
	case tokenName:
		return p.parseNamedType(tok)
	}
	return nil, p.errorf(tok, "expected type, got %s", tok)
}

func (p *parser) parseNamedType(tok token) (*apg.Type, error) {
	if tok.value == keywordIRI {
		return apg.IRI(), nil
	}
	if t, ok := p.aliases[tok.value]; ok {
		return t, nil
	}
	if dt, ok := namespace.WellKnownDatatype(tok.value); ok {
		return apg.Literal(dt), nil
	}
	if prefix, _, ok := strings.Cut(tok.value, ":"); ok {
		if _, known := p.table[prefix]; known {
			return apg.Literal(p.table.Expand(tok.value)), nil
		}
		return nil, p.errorf(tok, "unknown prefix %q", prefix)
	}
	return nil, p.errorf(tok, "unknown type %q", tok.value)
}

// parseEntries reads `key arrow type` entries up to the closing token. For
// coproducts a key without an arrow is a unit option.
func (p *parser) parseEntries(closing, arrow tokenType, optionalType bool) ([]apg.Entry, error) {
	var entries []apg.Entry
	seen := make(map[string]bool)
	for {
		if p.peek().typ == closing {
			p.advance()
			return entries, nil
		}
		keyTok := p.peek()
		if keyTok.typ == tokenEOF {
			return nil, p.errorf(keyTok, "expected %s", closing)
		}
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: line %d: %w: %q", apg.ErrMalformedImport, keyTok.line, apg.ErrDuplicateKey, key)
		}
		seen[key] = true

		var t *apg.Type
		if p.peek().typ == arrow {
			p.advance()
			if t, err = p.parseType(); err != nil {
				return nil, err
			}
		} else if optionalType {
			t = apg.Unit()
		} else {
			tok := p.advance()
			return nil, p.errorf(tok, "expected %s after %q, got %s", arrow, keyTok.value, tok)
		}
		entries = append(entries, apg.Entry{Key: key, Value: t})
	}
}
