// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package quads

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/dacolabs/schemagraph/internal/apg"
)

func init() {
	// Typed literals keep their lexical form and datatype.
	nquads.AutoConvertTypedString = false
}

// Write encodes quads as canonical N-Quads, one statement per line, in the
// given order.
func Write(w io.Writer, quads []Quad) error {
	bw := bufio.NewWriter(w)
	for _, q := range quads {
		if _, err := bw.WriteString(Line(q)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Parse decodes an N-Quads document. Blank lines and comments are
// skipped. Syntax errors wrap apg.ErrMalformedImport and carry the
// statement number.
func Parse(r io.Reader) ([]Quad, error) {
	qr := nquads.NewReader(r, false)
	defer qr.Close() //nolint:errcheck

	var out []Quad
	for n := 1; ; n++ {
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: statement %d: %v", apg.ErrMalformedImport, n, err)
		}
		if q, err = check(q); err != nil {
			return nil, fmt.Errorf("%w: statement %d: %v", apg.ErrMalformedImport, n, err)
		}
		out = append(out, q)
	}
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) ([]Quad, error) {
	return Parse(strings.NewReader(s))
}

func check(q Quad) (Quad, error) {
	switch q.Subject.(type) {
	case quad.IRI, quad.BNode:
	default:
		return q, fmt.Errorf("subject %s must be an IRI or blank node", q.Subject)
	}
	if _, ok := q.Predicate.(quad.IRI); !ok {
		return q, fmt.Errorf("predicate %s must be an IRI", q.Predicate)
	}
	switch q.Label.(type) {
	case nil, quad.IRI, quad.BNode:
	default:
		return q, fmt.Errorf("graph name %s must be an IRI or blank node", q.Label)
	}
	if q.Object == nil {
		return q, fmt.Errorf("missing object")
	}
	obj, err := normalize(q.Object)
	if err != nil {
		return q, err
	}
	q.Object = obj
	return q, nil
}
