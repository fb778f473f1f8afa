// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package ident issues synthetic identifiers for graph elements and blank
// nodes.
package ident

import (
	"strconv"
	"sync/atomic"
)

// DefaultPrefix is the prefix of identifiers issued to graph elements.
const DefaultPrefix = "t"

// Allocator issues strictly increasing identifiers: prefix0, prefix1, ...
// Identifiers are a local editing convenience and carry no meaning in any
// serialized form.
type Allocator struct {
	prefix string
	next   atomic.Uint64
}

// New creates an Allocator issuing identifiers with the given prefix.
func New(prefix string) *Allocator {
	return &Allocator{prefix: prefix}
}

// Next returns a fresh identifier.
func (a *Allocator) Next() string {
	n := a.next.Add(1) - 1
	return a.prefix + strconv.FormatUint(n, 10)
}
