// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dacolabs/schemagraph/internal/canon"
	"github.com/dacolabs/schemagraph/internal/prompts"
	"github.com/dacolabs/schemagraph/internal/session"
	"github.com/dacolabs/schemagraph/internal/translate"
	"github.com/go-logr/logr"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	format string
	output string
	zstd   bool
}

func newExportCmd(translators translate.Register) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the document schema to a target format",
		Long: fmt.Sprintf(`Export the document schema to a target format.

The digest of the exported bytes (before compression) is printed after
writing. For nquads the bytes are canonical, so the digest identifies the
schema up to blank node naming.

Available formats: %s`, strings.Join(translators.Available(), ", ")),
		Example: `  # Print canonical N-Quads
  schemagraph export --format nquads

  # Write JSON Schema to a file
  schemagraph export --format jsonschema --output schema.json

  # Write compressed output into a directory
  schemagraph export --format nquads --output dist/ --zstd`,
		Args:    cobra.NoArgs,
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, translators, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", fmt.Sprintf("Output format (%s)", strings.Join(translators.Available(), ", ")))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file or directory (default stdout)")
	cmd.Flags().BoolVar(&opts.zstd, "zstd", false, "Compress the output with zstd")

	return cmd
}

func runExport(cmd *cobra.Command, translators translate.Register, opts *exportOptions) error {
	sc, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}
	if opts.format == "" {
		return fmt.Errorf("--format is required. Available formats: %s", strings.Join(translators.Available(), ", "))
	}
	translator, err := translators.Get(opts.format)
	if err != nil {
		return fmt.Errorf("unsupported format %q. Available formats: %s",
			opts.format, strings.Join(translators.Available(), ", "))
	}

	log := logr.FromContextOrDiscard(cmd.Context())
	data, err := translator.Translate(cmd.Context(), sc.Schema, translate.Options{
		Namespaces: sc.Namespaces,
		Canon:      append(sc.Config.CanonOptions(), canon.WithLogger(log)),
	})
	timedOut := errors.Is(err, canon.ErrCanonicalizationTimeout)
	if err != nil && !timedOut {
		return fmt.Errorf("failed to export %s: %w", opts.format, err)
	}
	sum := canon.Digest(data)

	out := data
	if opts.zstd {
		if out, err = compress(data); err != nil {
			return err
		}
	}

	if opts.output == "" || opts.output == "-" {
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), sum)
	} else {
		path := outputPath(opts.output, translator.FileExtension(), opts.zstd)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, out, 0o600); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
			{Label: "Format", Value: opts.format},
			{Label: "Output", Value: path},
			{Label: "Digest", Value: sum.String()},
		}, "Export completed")
	}

	if timedOut {
		return fmt.Errorf("output is not canonical: %w", canon.ErrCanonicalizationTimeout)
	}
	return nil
}

// outputPath resolves the file to write: output itself, or a file named
// after the schema when output is a directory.
func outputPath(output, ext string, compressed bool) string {
	if info, err := os.Stat(output); (err == nil && info.IsDir()) || strings.HasSuffix(output, string(filepath.Separator)) {
		output = filepath.Join(output, "schema"+ext)
	}
	if compressed && filepath.Ext(output) != ".zst" {
		output += ".zst"
	}
	return output
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	return buf.Bytes(), nil
}
