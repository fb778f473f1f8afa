// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"github.com/charmbracelet/huh"
)

// InitAnswers holds the values collected by RunInitForm.
type InitAnswers struct {
	SchemaPath   string
	CreateSchema bool
	Prefix       string
	Namespace    string
}

// RunInitForm runs the interactive form for the init command, starting
// from the values already in a.
func RunInitForm(a *InitAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bool]().
				Title("Schema source").
				Options(
					huh.NewOption("Create new schema", true),
					huh.NewOption("Use existing schema", false),
				).
				Value(&a.CreateSchema),
		),
		huh.NewGroup(
			huh.NewInput().
				TitleFunc(func() string {
					if a.CreateSchema {
						return "Path for new schema"
					}
					return "Path to existing schema"
				}, &a.CreateSchema).
				Placeholder("schema.tasl").
				Validate(schemaPathValidator).
				Value(&a.SchemaPath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Namespace prefix").
				Placeholder("ex").
				Validate(prefixValidator).
				Value(&a.Prefix),
			huh.NewInput().
				Title("Namespace").
				Placeholder("http://example.com/").
				Validate(namespaceValidator).
				Value(&a.Namespace),
		).WithHideFunc(func() bool { return !a.CreateSchema }),
	).WithTheme(Theme()).Run()
}
