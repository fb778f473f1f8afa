// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package internal contains the main application logic for the CLI.
package internal

import (
	"context"

	"github.com/dacolabs/schemagraph/internal/commands"
	"github.com/dacolabs/schemagraph/internal/schemafile"
	"github.com/dacolabs/schemagraph/internal/translate"
	"github.com/dacolabs/schemagraph/internal/translate/jsonschema"
	"github.com/dacolabs/schemagraph/internal/translate/markdown"
	"github.com/dacolabs/schemagraph/internal/translate/notation"
)

// Translators returns the registry of export formats.
func Translators() translate.Register {
	translators := make(translate.Register)
	translators.Add(&notation.Translator{Format: schemafile.Text})
	translators.Add(&notation.Translator{Format: schemafile.TOML})
	translators.Add(&notation.Translator{Format: schemafile.NQuads})
	translators.Add(&jsonschema.Translator{})
	translators.Add(&markdown.Translator{})
	return translators
}

// Run is the main application logic, extracted for testability.
// It accepts OS dependencies as parameters (context, arguments).
func Run(ctx context.Context, args []string) error {
	rootCmd := commands.NewRootCmd(Translators())
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
