// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dacolabs/schemagraph/internal/graph"
	"github.com/dacolabs/schemagraph/internal/session"
	"github.com/go-logr/logr"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats of the graph command.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type graphOptions struct {
	output string
}

func newGraphCmd() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the graph projection of the document schema",
		Long: `Project the document schema to its graph form and print the nodes and
edges. JSON and YAML output list renderer-ready elements with display sizes.`,
		Example: `  schemagraph graph
  schemagraph graph --output json`,
		Args:    cobra.NoArgs,
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format (table, json or yaml)")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *graphOptions) error {
	sc, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}

	g, err := graph.Project(sc.Schema,
		graph.WithNamespaces(sc.Namespaces),
		graph.WithLogger(logr.FromContextOrDiscard(cmd.Context())))
	if err != nil {
		return err
	}

	return writeElements(cmd.OutOrStdout(), g.Elements(), opts.output)
}

func writeElements(w io.Writer, elements []graph.Element, output string) error {
	switch output {
	case outputTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"id", "group", "class", "source", "target", "key", "datatype"})
		for _, e := range elements {
			table.Append([]string{e.Data.ID, e.Group, e.Classes, e.Data.Source, e.Data.Target, e.Data.Key, e.Data.Datatype})
		}
		table.Render()
		return nil
	case outputJSON:
		data, err := json.MarshalIndent(elements, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(elements); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
}
