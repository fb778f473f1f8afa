// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/canon"
	"github.com/dacolabs/schemagraph/internal/graph"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/prompts"
	"github.com/dacolabs/schemagraph/internal/quads"
	"github.com/dacolabs/schemagraph/internal/schemafile"
	"github.com/dacolabs/schemagraph/internal/session"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// errRoundTrip indicates a conversion that did not give back the schema.
var errRoundTrip = errors.New("round trip changed the schema")

type checkReport struct {
	labels int
	nodes  int
	edges  int
	quads  int
	digest string
	// loop is a chain of labels that only reference each other.
	loop []string
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate schemas and their graph and quad round trips",
		Long: `Validate a schema, project it to a graph and reduce it back, flatten it
to quads and read them back, and print its canonical digest.

Without arguments the schema of the current document is checked.`,
		Example: `  # Check the document schema
  schemagraph check

  # Check files
  schemagraph check person.tasl model.nq`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, files []string) error {
	if len(files) == 0 {
		if err := session.PreRunLoad(cmd, nil); err != nil {
			return err
		}
		sc, err := session.RequireFromCommand(cmd)
		if err != nil {
			return err
		}
		return checkAndPrint(cmd, sc.Config.Schema, sc.Schema, sc.Namespaces, sc.Config.CanonOptions())
	}

	for _, file := range files {
		s, table, err := schemafile.Load(os.DirFS(filepath.Dir(file)), filepath.Base(file))
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := checkAndPrint(cmd, file, s, table, nil); err != nil {
			return err
		}
	}
	return nil
}

func checkAndPrint(cmd *cobra.Command, name string, s *apg.Schema, table namespace.Table, opts []canon.Option) error {
	report, err := checkSchema(cmd.Context(), s, table, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	fields := []prompts.ResultField{
		{Label: "Schema", Value: name},
		{Label: "Labels", Value: strconv.Itoa(report.labels)},
		{Label: "Graph", Value: fmt.Sprintf("%d nodes, %d edges", report.nodes, report.edges)},
		{Label: "Quads", Value: strconv.Itoa(report.quads)},
		{Label: "Digest", Value: report.digest},
	}
	if report.loop != nil {
		keys := make([]string, len(report.loop))
		for i, key := range report.loop {
			keys[i] = table.Compact(key)
		}
		fields = append(fields, prompts.ResultField{Label: "Reference loop", Value: strings.Join(keys, " -> ")})
	}
	prompts.PrintResult(cmd.OutOrStdout(), fields, "")
	return nil
}

// checkSchema validates s and verifies that projecting and flattening both
// give it back unchanged.
func checkSchema(ctx context.Context, s *apg.Schema, table namespace.Table, opts []canon.Option) (*checkReport, error) {
	log := logr.FromContextOrDiscard(ctx)

	if err := apg.Validate(s); err != nil {
		return nil, err
	}
	loop := s.ReferenceCycle()
	if loop != nil {
		log.Info("labels only reference each other and have no values", "labels", loop)
	}

	g, err := graph.Project(s, graph.WithNamespaces(table), graph.WithLogger(log))
	if err != nil {
		return nil, err
	}
	reduced, err := graph.Reduce(g)
	if err != nil {
		return nil, err
	}
	if !s.Equal(reduced) {
		return nil, fmt.Errorf("%w: graph projection", errRoundTrip)
	}

	qs, err := quads.Flatten(s)
	if err != nil {
		return nil, err
	}
	unflattened, err := quads.Unflatten(qs)
	if err != nil {
		return nil, err
	}
	if !s.Equal(unflattened) {
		return nil, fmt.Errorf("%w: quad flattening", errRoundTrip)
	}

	canonical, err := canon.Canonicalize(ctx, qs, slices.Concat(opts, []canon.Option{canon.WithLogger(log)})...)
	if err != nil {
		return nil, err
	}

	return &checkReport{
		labels: s.Len(),
		nodes:  g.NodeCount(),
		edges:  g.EdgeCount(),
		quads:  len(qs),
		digest: canon.Digest(canonical).String(),
		loop:   loop,
	}, nil
}
