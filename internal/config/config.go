// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package config handles the schemagraph.yaml document configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dacolabs/schemagraph/internal/canon"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/schemafile"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// Config represents the schemagraph.yaml configuration file.
type Config struct {
	Version          int              `yaml:"version"`
	Schema           string           `yaml:"schema"`
	Namespaces       namespace.Table  `yaml:"namespaces,omitempty"`
	Canonicalization Canonicalization `yaml:"canonicalization,omitempty"`
}

// Canonicalization bounds the work spent labeling blank nodes.
type Canonicalization struct {
	MaxDeepIterations int `yaml:"maxDeepIterations,omitempty"`
}

// Load reads a Config from a file path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// Validate checks the configuration for required fields and valid values.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs error
	if c.Version != CurrentConfigVersion {
		errs = multierr.Append(errs, errors.New("unsupported config version"))
	}
	if c.Schema == "" {
		errs = multierr.Append(errs, errors.New("schema path is required"))
	} else if _, err := schemafile.FormatFromPath(c.Schema); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("schema: %w", err))
	}
	if err := c.Namespaces.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Canonicalization.MaxDeepIterations < 0 {
		errs = multierr.Append(errs, errors.New("canonicalization.maxDeepIterations must not be negative"))
	}
	return errs
}

// CanonOptions returns the canonicalization options the config selects.
func (c *Config) CanonOptions() []canon.Option {
	if c.Canonicalization.MaxDeepIterations == 0 {
		return nil
	}
	return []canon.Option{canon.WithMaxDeepIterations(c.Canonicalization.MaxDeepIterations)}
}
