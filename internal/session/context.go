// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package session provides document context loading for CLI commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/config"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/schemafile"
)

var (
	// ErrNotInitialized indicates no schemagraph.yaml was found in the current directory.
	ErrNotInitialized = errors.New("not in a schemagraph document (schemagraph.yaml not found)")

	// ErrInvalidConfig indicates the config file exists but is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSchemaNotFound indicates the schema file referenced by config doesn't exist.
	ErrSchemaNotFound = errors.New("schema file not found")

	// ErrInvalidSchema indicates the schema file exists but couldn't be loaded.
	ErrInvalidSchema = errors.New("invalid schema")
)

// ConfigFileName is the name of the schemagraph configuration file.
const ConfigFileName = "schemagraph.yaml"

// contextKey is used to store Context in context.Context.
type contextKey struct{}

// Context holds the document configuration and the loaded schema.
type Context struct {
	Config *config.Config

	// Schema is the validated schema the config points at.
	Schema *apg.Schema

	// Namespaces are the prefixes declared by the schema file, overridden
	// by those in the config.
	Namespaces namespace.Table

	// Dir is the directory holding the config file.
	Dir string
}

// SchemaPath returns the absolute path of the schema file.
func (c *Context) SchemaPath() string {
	if filepath.IsAbs(c.Config.Schema) {
		return c.Config.Schema
	}
	return filepath.Join(c.Dir, c.Config.Schema)
}

// Load loads the document context from the current working directory and
// returns a new context.Context with the session Context stored in it.
func Load(ctx context.Context) (context.Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	sc, err := LoadDir(cwd)
	if err != nil {
		return nil, err
	}
	return WithContext(ctx, sc), nil
}

// LoadDir loads the document context rooted at dir.
func LoadDir(dir string) (*Context, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		return nil, ErrNotInitialized
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, validateErr)
	}

	sc := &Context{Config: cfg, Dir: dir}
	schemaPath := sc.SchemaPath()
	if _, statErr := os.Stat(schemaPath); statErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaNotFound, statErr)
	}

	s, table, err := schemafile.Load(os.DirFS(filepath.Dir(schemaPath)), filepath.Base(schemaPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if err := apg.Validate(s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	sc.Schema = s
	sc.Namespaces = table.Merge(cfg.Namespaces)
	return sc, nil
}

// WithContext returns a new context.Context carrying sc.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// From extracts the session Context from a context.Context.
// Returns nil if no Context is stored.
func From(ctx context.Context) *Context {
	if sc, ok := ctx.Value(contextKey{}).(*Context); ok {
		return sc
	}
	return nil
}
