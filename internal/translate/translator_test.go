// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package translate

import (
	"context"
	"testing"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct{ name string }

func (s *stubTranslator) Name() string { return s.name }

func (s *stubTranslator) Translate(context.Context, *apg.Schema, Options) ([]byte, error) {
	return []byte(s.name), nil
}

func (s *stubTranslator) FileExtension() string { return "." + s.name }

func TestRegister(t *testing.T) {
	r := make(Register)
	r.Add(&stubTranslator{name: "b"})
	r.Add(&stubTranslator{name: "a"})

	assert.Equal(t, []string{"a", "b"}, r.Available())

	tr, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, ".a", tr.FileExtension())

	_, err = r.Get("c")
	assert.ErrorContains(t, err, "unknown translator: c")
}
