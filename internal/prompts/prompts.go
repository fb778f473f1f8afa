// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package prompts provides interactive terminal prompts for CLI commands.
package prompts

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dacolabs/schemagraph/internal/schemafile"
)

// Theme returns the shared huh theme used across all CLI forms.
func Theme() *huh.Theme {
	theme := huh.ThemeBase16()
	theme.FieldSeparator = lipgloss.NewStyle().SetString("\n").MarginBottom(1)
	theme.Form.Base = theme.Form.Base.MarginTop(1)
	theme.Group.Base = theme.Group.Base.MarginTop(1)
	theme.Focused.Title = theme.Focused.Title.Foreground(lipgloss.Color("#f9ca24"))
	theme.Blurred.Title = theme.Blurred.Title.Foreground(lipgloss.Color("#bababa"))
	return theme
}

// ResultField is a label-value pair for PrintResult.
type ResultField struct {
	Label string
	Value string
}

// PrintResult writes a styled summary with green checkmarks and gray labels.
func PrintResult(w io.Writer, fields []ResultField, successMsg string) {
	success := lipgloss.NewStyle().Foreground(lipgloss.Color("#27ca3f"))
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#bababa"))
	check := success.Render("✓")

	fmt.Fprintln(w)
	for _, f := range fields {
		fmt.Fprintf(w, "%s %s %s\n", check, label.Render(f.Label+":"), f.Value)
	}

	if successMsg != "" {
		fmt.Fprintln(w, success.Render("\n"+successMsg))
	}
}

func prefixValidator(s string) error {
	if s == "" {
		return errors.New("prefix is required")
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) {
			return errors.New("must start with a letter")
		}
		if i > 0 && !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("_.-", r) {
			return errors.New("must contain only letters, numbers, '_', '.' or '-'")
		}
	}
	return nil
}

func namespaceValidator(s string) error {
	if s == "" {
		return errors.New("namespace is required")
	}
	if !strings.HasSuffix(s, "/") && !strings.HasSuffix(s, "#") {
		return errors.New("namespace must end in / or #")
	}
	return nil
}

func schemaPathValidator(s string) error {
	if s == "" {
		return errors.New("schema path is required")
	}
	if _, err := schemafile.FormatFromPath(s); err != nil {
		return errors.New("schema file must end in .tasl, .toml or .nq")
	}
	return nil
}
