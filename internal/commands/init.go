// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/config"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/prompts"
	"github.com/dacolabs/schemagraph/internal/schemafile"
	"github.com/dacolabs/schemagraph/internal/session"
	"github.com/spf13/cobra"
)

type initOptions struct {
	schema         string
	existing       bool
	prefix         string
	namespace      string
	nonInteractive bool
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new schemagraph document",
		Long: `Initialize a new schemagraph document with a schemagraph.yaml configuration file.
Can create a new empty schema or use an existing one.`,
		Example: `  # Interactive mode
  schemagraph init

  # Non-interactive
  schemagraph init --schema schema.tasl --prefix ex --namespace http://example.com/ --non-interactive
  schemagraph init --schema model.nq --existing --non-interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			return runInit(cmd, cwd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "schema.tasl", "Path to the schema file (.tasl, .toml or .nq)")
	cmd.Flags().BoolVar(&opts.existing, "existing", false, "Use an existing schema file instead of creating one")
	cmd.Flags().StringVarP(&opts.prefix, "prefix", "p", "", "Namespace prefix for the new schema")
	cmd.Flags().StringVarP(&opts.namespace, "namespace", "n", "", "Namespace IRI for the prefix")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts *initOptions) error {
	configPath := filepath.Join(dir, session.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return errors.New("schemagraph.yaml already exists; document already initialized")
	}

	if !opts.nonInteractive {
		answers := prompts.InitAnswers{
			SchemaPath:   opts.schema,
			CreateSchema: !opts.existing,
			Prefix:       opts.prefix,
			Namespace:    opts.namespace,
		}
		if err := prompts.RunInitForm(&answers); err != nil {
			return err
		}
		opts.schema = answers.SchemaPath
		opts.existing = !answers.CreateSchema
		opts.prefix = answers.Prefix
		opts.namespace = answers.Namespace
	}

	if (opts.prefix == "") != (opts.namespace == "") {
		return errors.New("--prefix and --namespace must be given together")
	}

	cfg := config.Config{
		Version: config.CurrentConfigVersion,
		Schema:  opts.schema,
	}
	if opts.prefix != "" {
		cfg.Namespaces = namespace.Table{opts.prefix: opts.namespace}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	schemaPath := opts.schema
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(dir, schemaPath)
	}
	_, statErr := os.Stat(schemaPath)
	switch {
	case opts.existing && statErr != nil:
		return fmt.Errorf("schema file not found: %s", opts.schema)
	case !opts.existing && statErr == nil:
		return fmt.Errorf("schema file already exists: %s", opts.schema)
	case !opts.existing:
		if err := writeEmptySchema(cmd, schemaPath, cfg.Namespaces); err != nil {
			return err
		}
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	fields := []prompts.ResultField{{Label: "Schema", Value: opts.schema}}
	if opts.prefix != "" {
		fields = append(fields, prompts.ResultField{Label: "Namespace", Value: opts.prefix + " " + opts.namespace})
	}
	prompts.PrintResult(cmd.OutOrStdout(), fields, "Initialization completed")
	return nil
}

func writeEmptySchema(cmd *cobra.Command, path string, table namespace.Table) error {
	format, err := schemafile.FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == schemafile.TOML {
		for _, ns := range table {
			table = namespace.Table{schemafile.TOMLPrefix: ns}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // path is derived from flags
	if err != nil {
		return fmt.Errorf("failed to create schema file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return schemafile.Encode(cmd.Context(), f, format, apg.MustSchema(), table)
}
