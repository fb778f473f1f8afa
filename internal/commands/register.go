// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package commands contains all CLI command definitions.
package commands

import (
	"io"
	"time"

	"github.com/dacolabs/schemagraph/internal/translate"
	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd(translators translate.Register) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "schemagraph",
		Short: "Edit, check and export algebraic property graph schemas",
		Long: `schemagraph works on schema documents: labels naming structural types
built from units, IRIs, literals, products, coproducts and references.

Schemas are projected to editable graphs, reduced back, flattened to
RDF quads and canonicalized with URDNA2015.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd.ErrOrStderr(), verbose)
			cmd.SetContext(logr.NewContext(cmd.Context(), log))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine progress to stderr")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newExportCmd(translators))
	rootCmd.AddCommand(newCanonCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) logr.Logger {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	zlog := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return zerologr.New(&zlog)
}
