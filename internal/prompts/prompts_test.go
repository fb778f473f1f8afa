// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"prefix ok", prefixValidator, "ex", false},
		{"prefix with dash", prefixValidator, "my-ns.v2", false},
		{"prefix empty", prefixValidator, "", true},
		{"prefix leading digit", prefixValidator, "1ex", true},
		{"prefix colon", prefixValidator, "ex:", true},
		{"namespace slash", namespaceValidator, "http://example.com/", false},
		{"namespace hash", namespaceValidator, "http://example.com/ns#", false},
		{"namespace empty", namespaceValidator, "", true},
		{"namespace open", namespaceValidator, "http://example.com", true},
		{"schema tasl", schemaPathValidator, "schema.tasl", false},
		{"schema nq", schemaPathValidator, "model/schema.nq", false},
		{"schema empty", schemaPathValidator, "", true},
		{"schema json", schemaPathValidator, "schema.json", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, []ResultField{
		{Label: "Schema", Value: "schema.tasl"},
		{Label: "Labels", Value: "3"},
	}, "Done")

	out := buf.String()
	assert.Contains(t, out, "Schema:")
	assert.Contains(t, out, "schema.tasl")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "Done")
}
