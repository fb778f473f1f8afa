// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package tasl

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType uint8

const (
	tokenEOF tokenType = iota
	tokenName
	tokenIRI    // <...>
	tokenUnit   // !
	tokenStar   // *
	tokenArrow  // ->
	tokenLArrow // <-
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of input"
	case tokenName:
		return "name"
	case tokenIRI:
		return "IRI"
	case tokenUnit:
		return "!"
	case tokenStar:
		return "*"
	case tokenArrow:
		return "->"
	case tokenLArrow:
		return "<-"
	case tokenLBrace:
		return "{"
	case tokenRBrace:
		return "}"
	case tokenLBracket:
		return "["
	case tokenRBracket:
		return "]"
	default:
		return "unknown"
	}
}

type token struct {
	typ   tokenType
	value string
	line  int
}

func (t token) String() string {
	if t.value == "" {
		return t.typ.String()
	}
	return fmt.Sprintf("%s %q", t.typ, t.value)
}

// lexer splits notation text into tokens. Whitespace, ';' and ',' only
// separate tokens. A '#' where a token would start begins a comment running
// to the end of the line; inside a name it is part of the name.
type lexer struct {
	input string
	pos   int
	line  int
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input, line: 1}
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skip()
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, line: l.line}, nil
	}

	rest := l.input[l.pos:]
	single := map[byte]tokenType{
		'!': tokenUnit,
		'*': tokenStar,
		'{': tokenLBrace,
		'}': tokenRBrace,
		'[': tokenLBracket,
		']': tokenRBracket,
	}
	switch {
	case strings.HasPrefix(rest, "->"):
		l.pos += 2
		return token{typ: tokenArrow, line: l.line}, nil
	case strings.HasPrefix(rest, "<-"):
		l.pos += 2
		return token{typ: tokenLArrow, line: l.line}, nil
	case rest[0] == '<':
		end := strings.IndexAny(rest, ">\n")
		if end < 0 || rest[end] != '>' {
			return token{}, fmt.Errorf("line %d: unterminated IRI", l.line)
		}
		l.pos += end + 1
		return token{typ: tokenIRI, value: rest[1:end], line: l.line}, nil
	}
	if typ, ok := single[rest[0]]; ok {
		l.pos++
		return token{typ: typ, line: l.line}, nil
	}

	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) || strings.ContainsRune("!*{}[]<>;,", r) || strings.HasPrefix(l.input[l.pos:], "->") {
			break
		}
		l.pos += size
	}
	if l.pos == start {
		return token{}, fmt.Errorf("line %d: unexpected character %q", l.line, rest[0])
	}
	return token{typ: tokenName, value: l.input[start:l.pos], line: l.line}, nil
}

func (l *lexer) skip() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == ';' || c == ',':
			l.pos++
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}
