// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dacolabs/schemagraph/internal/graph"
	"github.com/dacolabs/schemagraph/internal/prompts"
	"github.com/dacolabs/schemagraph/internal/schemafile"
	"github.com/dacolabs/schemagraph/internal/session"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

type editOptions struct {
	log   string
	write bool
}

func newEditCmd() *cobra.Command {
	opts := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply a log of graph edits to the document schema",
		Long: `Project the document schema to a graph, replay a YAML log of editor
commands against it and reduce the result back to a schema.

The reduced schema is printed in the document's notation, or written back
to the schema file with --write. Replay stops at the first rejected command.`,
		Example: `  # Preview the result of an edit log
  schemagraph edit --log edits.yaml

  # Apply it
  schemagraph edit --log edits.yaml --write

  # Read the log from stdin
  cat edits.yaml | schemagraph edit --log -`,
		Args:    cobra.NoArgs,
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEdit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.log, "log", "l", "", "Path to the command log, or - for stdin")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write the result back to the schema file")

	return cmd
}

func runEdit(cmd *cobra.Command, opts *editOptions) error {
	if opts.log == "" {
		return errors.New("--log is required")
	}
	sc, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}
	log := logr.FromContextOrDiscard(cmd.Context())

	cmds, err := readCommands(cmd.InOrStdin(), opts.log)
	if err != nil {
		return err
	}

	g, err := graph.Project(sc.Schema, graph.WithNamespaces(sc.Namespaces), graph.WithLogger(log))
	if err != nil {
		return err
	}
	if err := g.Replay(cmds); err != nil {
		return err
	}
	reduced, err := graph.Reduce(g)
	if err != nil {
		return err
	}
	log.V(1).Info("edit log applied", "commands", len(cmds), "labels", reduced.Len())

	format, err := schemafile.FormatFromPath(sc.Config.Schema)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := schemafile.Encode(cmd.Context(), &buf, format, reduced, sc.Namespaces, sc.Config.CanonOptions()...); err != nil {
		return err
	}

	if !opts.write {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(sc.SchemaPath(), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
		{Label: "Commands", Value: strconv.Itoa(len(cmds))},
		{Label: "Labels", Value: strconv.Itoa(reduced.Len())},
		{Label: "Schema", Value: sc.Config.Schema},
	}, "Schema updated")
	return nil
}

func readCommands(stdin io.Reader, path string) ([]graph.Command, error) {
	if path == "-" {
		return graph.LoadCommands(stdin)
	}
	f, err := os.Open(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open command log: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return graph.LoadCommands(f)
}
