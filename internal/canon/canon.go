// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package canon implements URDNA2015 dataset canonicalization: blank nodes
// are relabelled c14n0, c14n1, ... so that isomorphic inputs produce
// byte-identical sorted N-Quads.
package canon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/dacolabs/schemagraph/internal/quads"
	"github.com/go-logr/logr"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxDeepIterations bounds how often the N-degree hash may be
// computed for a single blank node.
const DefaultMaxDeepIterations = 4096

// CanonicalPrefix is the prefix of canonical blank node labels.
const CanonicalPrefix = "c14n"

// ErrCanonicalizationTimeout is returned alongside a best-effort result
// when the N-degree work bound is exceeded. The result is deterministic
// for a given input order but not guaranteed canonical.
var ErrCanonicalizationTimeout = errors.New("canonicalization timeout")

var errBudget = errors.New("deep iteration budget exhausted")

type options struct {
	maxDeepIterations int
	log               logr.Logger
}

// Option configures canonicalization.
type Option func(*options)

// WithMaxDeepIterations sets the per-node bound on N-degree hashing.
// Values below one select the default.
func WithMaxDeepIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDeepIterations = n
		}
	}
}

// WithLogger sets the logger. Work counters are logged at V(1).
func WithLogger(log logr.Logger) Option {
	return func(o *options) { o.log = log }
}

type state struct {
	ctx       context.Context
	opts      options
	quads     []quads.Quad
	blanks    map[string][]int // blank label -> indices of quads mentioning it
	canonical *issuer
	firstHash map[string]string
	deep      map[string]int
	calls     int
}

// Canonicalize returns the canonical N-Quads serialization of the dataset:
// one line per distinct quad, lines sorted by code point.
func Canonicalize(ctx context.Context, qs []quads.Quad, opts ...Option) ([]byte, error) {
	relabelled, err := Relabel(ctx, qs, opts...)
	if relabelled == nil && err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, q := range relabelled {
		b.WriteString(quads.Line(q))
	}
	return []byte(b.String()), err
}

// Relabel returns the dataset with canonical blank node labels, sorted by
// canonical N-Quads line and without duplicates. When the work bound is
// exceeded the best-effort result is returned together with
// ErrCanonicalizationTimeout.
func Relabel(ctx context.Context, qs []quads.Quad, opts ...Option) ([]quads.Quad, error) {
	o := options{maxDeepIterations: DefaultMaxDeepIterations, log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	st := &state{
		ctx:       ctx,
		opts:      o,
		quads:     sortedUnique(qs),
		blanks:    make(map[string][]int),
		canonical: newIssuer(CanonicalPrefix),
		deep:      make(map[string]int),
	}
	for i, q := range st.quads {
		for _, t := range []quad.Value{q.Subject, q.Object, q.Label} {
			if node, ok := quads.BlankLabel(t); ok && !slices.Contains(st.blanks[node], i) {
				st.blanks[node] = append(st.blanks[node], i)
			}
		}
	}

	if err := st.hashFirstDegreeAll(); err != nil {
		return nil, err
	}

	// Issue canonical ids to nodes with unique first-degree hashes.
	groups := make(map[string][]string)
	for _, node := range st.nodes() {
		h := st.firstHash[node]
		groups[h] = append(groups[h], node)
	}
	hashes := make([]string, 0, len(groups))
	for h := range groups {
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)

	var shared []string
	for _, h := range hashes {
		if len(groups[h]) == 1 {
			st.canonical.issue(groups[h][0])
		} else {
			shared = append(shared, h)
		}
	}

	timedOut := false
	for _, h := range shared {
		if err := st.issueGroup(groups[h]); err != nil {
			if !errors.Is(err, errBudget) {
				return nil, err
			}
			timedOut = true
			break
		}
	}
	if timedOut {
		// Fall back to first-degree hash order, then input label order.
		for _, h := range shared {
			for _, node := range groups[h] {
				st.canonical.issue(node)
			}
		}
	}

	out := make([]quads.Quad, len(st.quads))
	for i, q := range st.quads {
		out[i] = quads.Quad{
			Subject:   st.relabel(q.Subject),
			Predicate: q.Predicate,
			Object:    st.relabel(q.Object),
			Label:     st.relabel(q.Label),
		}
	}
	out = sortedUnique(out)

	o.log.V(1).Info("canonicalized dataset",
		"quads", len(out),
		"blankNodes", len(st.blanks),
		"hashGroups", len(shared),
		"nDegreeCalls", st.calls,
		"timedOut", timedOut)

	if timedOut {
		return out, fmt.Errorf("%w: more than %d deep iterations for one blank node", ErrCanonicalizationTimeout, o.maxDeepIterations)
	}
	return out, nil
}

// Digest returns the content address of canonical bytes.
func Digest(b []byte) digest.Digest {
	return digest.FromBytes(b)
}

// nodes returns blank labels in sorted order.
func (st *state) nodes() []string {
	nodes := make([]string, 0, len(st.blanks))
	for n := range st.blanks {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

func (st *state) relabel(t quad.Value) quad.Value {
	node, ok := quads.BlankLabel(t)
	if !ok {
		return t
	}
	return quad.BNode(st.canonical.issue(node))
}

// hashFirstDegreeAll computes the first-degree hash of every blank node.
func (st *state) hashFirstDegreeAll() error {
	nodes := st.nodes()
	hashes := make([]string, len(nodes))

	eg, ctx := errgroup.WithContext(st.ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, node := range nodes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hashes[i] = st.hashFirstDegree(node)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	st.firstHash = make(map[string]string, len(nodes))
	for i, node := range nodes {
		st.firstHash[node] = hashes[i]
	}
	return nil
}

func (st *state) hashFirstDegree(node string) string {
	lines := make([]string, 0, len(st.blanks[node]))
	for _, i := range st.blanks[node] {
		q := st.quads[i]
		mask := func(t quad.Value) quad.Value {
			label, ok := quads.BlankLabel(t)
			switch {
			case !ok:
				return t
			case label == node:
				return quad.BNode("a")
			}
			return quad.BNode("z")
		}
		lines = append(lines, quads.Line(quads.Quad{
			Subject:   mask(q.Subject),
			Predicate: q.Predicate,
			Object:    mask(q.Object),
			Label:     mask(q.Label),
		}))
	}
	slices.Sort(lines)
	return sum(strings.Join(lines, ""))
}

type nDegreeResult struct {
	hash   string
	issuer *issuer
}

// issueGroup resolves one group of nodes sharing a first-degree hash.
func (st *state) issueGroup(group []string) error {
	var results []nDegreeResult
	for _, node := range group {
		if st.canonical.has(node) {
			continue
		}
		temp := newIssuer("b")
		temp.issue(node)
		res, err := st.hashNDegree(node, temp)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	slices.SortStableFunc(results, func(a, b nDegreeResult) int { return strings.Compare(a.hash, b.hash) })
	for _, res := range results {
		for _, existing := range res.issuer.order {
			st.canonical.issue(existing)
		}
	}
	return nil
}

func (st *state) hashNDegree(node string, iss *issuer) (nDegreeResult, error) {
	if err := st.ctx.Err(); err != nil {
		return nDegreeResult{}, err
	}
	if st.deep[node] >= st.opts.maxDeepIterations {
		return nDegreeResult{}, errBudget
	}
	st.deep[node]++
	st.calls++

	related := make(map[string][]string)
	for _, i := range st.blanks[node] {
		q := st.quads[i]
		for _, c := range []struct {
			pos  string
			term quad.Value
		}{{"s", q.Subject}, {"o", q.Object}, {"g", q.Label}} {
			other, ok := quads.BlankLabel(c.term)
			if !ok || other == node {
				continue
			}
			h := st.hashRelated(other, q, iss, c.pos)
			related[h] = append(related[h], other)
		}
	}

	hashes := make([]string, 0, len(related))
	for h := range related {
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)

	var data strings.Builder
	for _, h := range hashes {
		data.WriteString(h)

		var chosenPath string
		var chosenIssuer *issuer
		err := permute(related[h], func(perm []string) (bool, error) {
			issCopy := iss.clone()
			var path strings.Builder
			var recursion []string
			for _, r := range perm {
				if st.canonical.has(r) {
					path.WriteString("_:" + st.canonical.issue(r))
					continue
				}
				if !issCopy.has(r) {
					recursion = append(recursion, r)
				}
				path.WriteString("_:" + issCopy.issue(r))
			}
			if chosenPath != "" && path.Len() >= len(chosenPath) && path.String() > chosenPath {
				return true, nil
			}
			for _, r := range recursion {
				res, err := st.hashNDegree(r, issCopy)
				if err != nil {
					return false, err
				}
				path.WriteString("_:" + issCopy.issue(r))
				path.WriteString("<" + res.hash + ">")
				issCopy = res.issuer
				if chosenPath != "" && path.Len() >= len(chosenPath) && path.String() > chosenPath {
					return true, nil
				}
			}
			if chosenPath == "" || path.String() < chosenPath {
				chosenPath = path.String()
				chosenIssuer = issCopy
			}
			return true, nil
		})
		if err != nil {
			return nDegreeResult{}, err
		}
		data.WriteString(chosenPath)
		iss = chosenIssuer
	}
	return nDegreeResult{hash: sum(data.String()), issuer: iss}, nil
}

func (st *state) hashRelated(related string, q quads.Quad, iss *issuer, position string) string {
	var b strings.Builder
	b.WriteString(position)
	if position != "g" {
		b.WriteString(quads.Term(q.Predicate))
	}
	switch {
	case st.canonical.has(related):
		b.WriteString("_:" + st.canonical.issue(related))
	case iss.has(related):
		b.WriteString("_:" + iss.issue(related))
	default:
		b.WriteString(st.firstHash[related])
	}
	return sum(b.String())
}

// permute calls fn with every permutation of items in lexicographic order
// of their indices until fn returns false or an error.
func permute(items []string, fn func([]string) (bool, error)) error {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	perm := make([]string, len(items))
	for {
		for i, j := range idx {
			perm[i] = items[j]
		}
		more, err := fn(perm)
		if err != nil || !more {
			return err
		}
		if !nextPermutation(idx) {
			return nil
		}
	}
}

func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])
	return true
}

func sortedUnique(qs []quads.Quad) []quads.Quad {
	lines := make(map[string]quads.Quad, len(qs))
	keys := make([]string, 0, len(qs))
	for _, q := range qs {
		line := quads.Line(q)
		if _, ok := lines[line]; !ok {
			lines[line] = q
			keys = append(keys, line)
		}
	}
	slices.Sort(keys)
	out := make([]quads.Quad, len(keys))
	for i, k := range keys {
		out[i] = lines[k]
	}
	return out
}

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
