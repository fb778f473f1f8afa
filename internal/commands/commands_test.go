// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dacolabs/schemagraph/internal/apg"
	"github.com/dacolabs/schemagraph/internal/canon"
	"github.com/dacolabs/schemagraph/internal/config"
	"github.com/dacolabs/schemagraph/internal/graph"
	"github.com/dacolabs/schemagraph/internal/namespace"
	"github.com/dacolabs/schemagraph/internal/quads"
	"github.com/dacolabs/schemagraph/internal/schemafile"
	"github.com/dacolabs/schemagraph/internal/session"
	"github.com/dacolabs/schemagraph/internal/translate"
	"github.com/dacolabs/schemagraph/internal/translate/jsonschema"
	"github.com/dacolabs/schemagraph/internal/translate/notation"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const ex = "http://example.com/"

const personSchema = `namespace ex http://example.com/

class ex:Person {
  ex:name -> string
  ex:knows -> * ex:Person
}
`

func testTranslators() translate.Register {
	translators := make(translate.Register)
	translators.Add(&notation.Translator{Format: schemafile.Text})
	translators.Add(&notation.Translator{Format: schemafile.NQuads})
	translators.Add(&jsonschema.Translator{})
	return translators
}

// setupDocument writes a document into a temporary directory and makes it
// the working directory for the rest of the test.
func setupDocument(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func personDocument(t *testing.T) string {
	return setupDocument(t, map[string]string{
		session.ConfigFileName: "version: 1\nschema: schema.tasl\n",
		"schema.tasl":          personSchema,
	})
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(testTranslators())
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestInit_NonInteractive(t *testing.T) {
	dir := setupDocument(t, nil)

	out, _, err := execute(t, "init", "--non-interactive",
		"--schema", "model/schema.tasl", "--prefix", "ex", "--namespace", ex)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialization completed")

	cfg, err := config.Load(filepath.Join(dir, session.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "model/schema.tasl", cfg.Schema)
	assert.Equal(t, namespace.Table{"ex": ex}, cfg.Namespaces)

	sc, err := session.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, sc.Schema.Len())
	assert.Equal(t, namespace.Table{"ex": ex}, sc.Namespaces)

	_, _, err = execute(t, "init", "--non-interactive")
	assert.ErrorContains(t, err, "already initialized")
}

func TestInit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		args    []string
		wantErr string
	}{
		{
			name:    "existing schema missing",
			args:    []string{"--existing", "--schema", "schema.nq"},
			wantErr: "schema file not found",
		},
		{
			name:    "new schema already present",
			files:   map[string]string{"schema.tasl": personSchema},
			args:    []string{"--schema", "schema.tasl"},
			wantErr: "schema file already exists",
		},
		{
			name:    "prefix without namespace",
			args:    []string{"--prefix", "ex"},
			wantErr: "must be given together",
		},
		{
			name:    "unknown format",
			args:    []string{"--schema", "schema.json"},
			wantErr: "invalid configuration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupDocument(t, tt.files)
			_, _, err := execute(t, append([]string{"init", "--non-interactive"}, tt.args...)...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestInit_ExistingSchema(t *testing.T) {
	dir := setupDocument(t, map[string]string{"schema.tasl": personSchema})

	_, _, err := execute(t, "init", "--non-interactive", "--existing")
	require.NoError(t, err)

	sc, err := session.LoadDir(dir)
	require.NoError(t, err)
	assert.True(t, sc.Schema.Has(ex+"Person"))
}

func TestCheck(t *testing.T) {
	personDocument(t)

	out, _, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "schema.tasl")
	assert.Contains(t, out, "sha256:")
}

func TestCheck_Files(t *testing.T) {
	dir := setupDocument(t, map[string]string{
		"a.tasl":    personSchema,
		"b.tasl":    "class <http://example.com/B> !\n",
		"c.tasl":    "class",
		"loop.tasl": "namespace ex http://example.com/\nclass ex:A * ex:B\nclass ex:B * ex:A\n",
	})

	out, _, err := execute(t, "check", filepath.Join(dir, "a.tasl"), filepath.Join(dir, "b.tasl"))
	require.NoError(t, err)
	assert.Contains(t, out, "a.tasl")
	assert.Contains(t, out, "b.tasl")

	out, _, err = execute(t, "check", filepath.Join(dir, "loop.tasl"))
	require.NoError(t, err)
	assert.Contains(t, out, "ex:A -> ex:B -> ex:A")

	_, _, err = execute(t, "check", filepath.Join(dir, "c.tasl"))
	assert.ErrorIs(t, err, apg.ErrMalformedImport)
}

func TestCheckSchema(t *testing.T) {
	s := apg.MustSchema(apg.Label{Key: ex + "Person", Value: apg.Product(
		apg.Entry{Key: ex + "name", Value: apg.Literal(apg.XSDString)},
	)})
	report, err := checkSchema(context.Background(), s, namespace.Table{"ex": ex}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.labels)
	assert.Equal(t, 3, report.nodes)
	assert.Equal(t, 2, report.edges)
	assert.Equal(t, 4, report.quads)

	assert.Nil(t, report.loop)

	loop := apg.MustSchema(
		apg.Label{Key: ex + "A", Value: apg.Reference(ex + "B")},
		apg.Label{Key: ex + "B", Value: apg.Reference(ex + "A")},
	)
	report, err = checkSchema(context.Background(), loop, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "A", ex + "B", ex + "A"}, report.loop)

	dangling := apg.MustSchema(apg.Label{Key: ex + "A", Value: apg.Reference(ex + "B")})
	_, err = checkSchema(context.Background(), dangling, nil, nil)
	assert.ErrorIs(t, err, apg.ErrDanglingReference)
}

func TestCheck_NotInitialized(t *testing.T) {
	setupDocument(t, nil)
	_, _, err := execute(t, "check")
	assert.ErrorIs(t, err, session.ErrNotInitialized)
}

func TestGraph(t *testing.T) {
	personDocument(t)

	t.Run("table", func(t *testing.T) {
		out, _, err := execute(t, "graph")
		require.NoError(t, err)
		assert.Contains(t, out, "ex:Person")
		assert.Contains(t, out, "reference-value")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "graph", "--output", "json")
		require.NoError(t, err)
		var elements []graph.Element
		require.NoError(t, json.Unmarshal([]byte(out), &elements))
		assert.Equal(t, "nodes", elements[0].Group)
		assert.Equal(t, "label", elements[0].Classes)
		assert.Equal(t, "ex:Person", elements[0].Data.Key)
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, "graph", "--output", "yaml")
		require.NoError(t, err)
		var elements []graph.Element
		require.NoError(t, yaml.Unmarshal([]byte(out), &elements))
		assert.NotEmpty(t, elements)
	})

	t.Run("unknown output", func(t *testing.T) {
		_, _, err := execute(t, "graph", "--output", "dot")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

const addThingLog = `commands:
  - op: add-label
    key: ex:Thing
`

func TestEdit(t *testing.T) {
	dir := setupDocument(t, map[string]string{
		session.ConfigFileName: "version: 1\nschema: schema.tasl\n",
		"schema.tasl":          personSchema,
		"edits.yaml":           addThingLog,
	})

	out, _, err := execute(t, "edit", "--log", "edits.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "class ex:Person")
	assert.Contains(t, out, "class ex:Thing")

	unchanged, err := os.ReadFile(filepath.Join(dir, "schema.tasl")) //nolint:gosec // test file path
	require.NoError(t, err)
	assert.Equal(t, personSchema, string(unchanged))

	_, _, err = execute(t, "edit", "--log", "edits.yaml", "--write")
	require.NoError(t, err)

	sc, err := session.LoadDir(dir)
	require.NoError(t, err)
	assert.True(t, sc.Schema.Has(ex+"Thing"))
	thing, _ := sc.Schema.Get(ex + "Thing")
	assert.Equal(t, apg.KindUnit, thing.Kind())
}

func TestEdit_Errors(t *testing.T) {
	setupDocument(t, map[string]string{
		session.ConfigFileName: "version: 1\nschema: schema.tasl\n",
		"schema.tasl":          personSchema,
		"bad.yaml":             "commands:\n  - op: delete-node\n    node: t99\n",
	})

	_, _, err := execute(t, "edit")
	assert.ErrorContains(t, err, "--log is required")

	_, _, err = execute(t, "edit", "--log", "missing.yaml")
	assert.ErrorContains(t, err, "failed to open command log")

	_, _, err = execute(t, "edit", "--log", "bad.yaml")
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestExport_Stdout(t *testing.T) {
	personDocument(t)

	out, errOut, err := execute(t, "export", "--format", "nquads")
	require.NoError(t, err)
	assert.Contains(t, out, "_:c14n0 ")
	assert.Contains(t, errOut, canon.Digest([]byte(out)).String())

	qs, err := quads.ParseString(out)
	require.NoError(t, err)
	s, err := quads.Unflatten(qs)
	require.NoError(t, err)
	assert.True(t, s.Has(ex+"Person"))
}

func TestExport_File(t *testing.T) {
	dir := personDocument(t)

	out, _, err := execute(t, "export", "--format", "jsonschema", "--output", "out/schema.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Export completed")

	data, err := os.ReadFile(filepath.Join(dir, "out", "schema.json")) //nolint:gosec // test file path
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc["$defs"], "ex:Person")
}

func TestExport_Zstd(t *testing.T) {
	dir := personDocument(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dist"), 0o750))

	_, _, err := execute(t, "export", "--format", "tasl", "--output", "dist", "--zstd")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "dist", "schema.tasl.zst")) //nolint:gosec // test file path
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "class ex:Person")
}

func TestExport_Errors(t *testing.T) {
	personDocument(t)

	_, _, err := execute(t, "export")
	assert.ErrorContains(t, err, "--format is required")

	_, _, err = execute(t, "export", "--format", "avro")
	assert.ErrorContains(t, err, `unsupported format "avro"`)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		output     string
		compressed bool
		want       string
	}{
		{"schema.json", false, "schema.json"},
		{"schema.json", true, "schema.json.zst"},
		{"schema.json.zst", true, "schema.json.zst"},
		{dir, false, filepath.Join(dir, "schema.json")},
		{"new" + string(filepath.Separator), true, filepath.Join("new", "schema.json.zst")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputPath(tt.output, ".json", tt.compressed), tt.output)
	}
}

func TestCanon(t *testing.T) {
	a := "_:x <http://example.com/p> _:y .\n_:y <http://example.com/p> _:x .\n"
	b := "_:n2 <http://example.com/p> _:n1 .\n_:n1 <http://example.com/p> _:n2 .\n"
	dir := setupDocument(t, map[string]string{"a.nq": a, "b.nq": b, "bad.nq": "<a> <b>"})

	out, _, err := execute(t, "canon", "a.nq", "b.nq")
	require.NoError(t, err)

	qs, err := quads.ParseString(a)
	require.NoError(t, err)
	canonical, err := canon.Canonicalize(context.Background(), qs)
	require.NoError(t, err)
	assert.Contains(t, out, canon.Digest(canonical).String())
	assert.Contains(t, out, "a.nq")
	assert.Contains(t, out, "b.nq")

	_, _, err = execute(t, "canon", "--write", "b.nq")
	require.NoError(t, err)
	written, err := os.ReadFile(filepath.Join(dir, "b.nq")) //nolint:gosec // test file path
	require.NoError(t, err)
	assert.Equal(t, canonical, written)

	_, _, err = execute(t, "canon", "bad.nq")
	assert.ErrorIs(t, err, apg.ErrMalformedImport)

	_, _, err = execute(t, "canon")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "schemagraph version")
}
