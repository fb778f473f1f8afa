// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package canon

import "strconv"

// issuer hands out prefixed identifiers and remembers the order in which
// existing identifiers were mapped.
type issuer struct {
	prefix  string
	counter int
	issued  map[string]string
	order   []string
}

func newIssuer(prefix string) *issuer {
	return &issuer{prefix: prefix, issued: make(map[string]string)}
}

func (i *issuer) issue(existing string) string {
	if id, ok := i.issued[existing]; ok {
		return id
	}
	id := i.prefix + strconv.Itoa(i.counter)
	i.counter++
	i.issued[existing] = id
	i.order = append(i.order, existing)
	return id
}

func (i *issuer) has(existing string) bool {
	_, ok := i.issued[existing]
	return ok
}

func (i *issuer) clone() *issuer {
	c := &issuer{
		prefix:  i.prefix,
		counter: i.counter,
		issued:  make(map[string]string, len(i.issued)),
		order:   make([]string, len(i.order)),
	}
	for k, v := range i.issued {
		c.issued[k] = v
	}
	copy(c.order, i.order)
	return c
}
