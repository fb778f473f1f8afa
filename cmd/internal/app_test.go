// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslators(t *testing.T) {
	assert.Equal(t, []string{"jsonschema", "markdown", "nquads", "tasl", "toml"}, Translators().Available())
}

func TestRun(t *testing.T) {
	assert.NoError(t, Run(context.Background(), []string{"version", "--short"}))
	assert.Error(t, Run(context.Background(), []string{"no-such-command"}))
}
