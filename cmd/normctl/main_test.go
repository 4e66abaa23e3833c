package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (map[string]any, string, error) {
	t.Helper()

	sourceType, targetSchema, maxChunkSize = "", "", 0
	validateSchema = "document"
	cleanAggressiveness = ""
	compact = false

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	var body map[string]any
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &body), out.String())
	}
	return body, errOut.String(), err
}

func TestTransformCmd_FileText(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 112)
	path := writeInput(t, `{"id":"notes.txt","content":"`+text+`"}`)

	body, stderr, err := run(t, "transform", "--source", "file:text", "--max-chunk-size", "1000", path)
	require.NoError(t, err)

	assert.Equal(t, "file:text", body["source_type"])
	assert.Equal(t, "document", body["target_schema"])
	assert.Equal(t, 1.0, body["input_count"])
	data := body["data"].([]any)
	require.NotEmpty(t, data)
	for _, d := range data {
		assert.Equal(t, float64(len(data)), d.(map[string]any)["total_chunks"])
	}
	assert.Contains(t, stderr, "1 input")
}

func TestTransformCmd_BadInput(t *testing.T) {
	path := writeInput(t, `{"broken":`)
	_, _, err := run(t, "transform", path)
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	path := writeInput(t, `[{"title":"","content":"x"}]`)

	body, stderr, err := run(t, "validate", "--schema", "story", path)
	require.NoError(t, err)

	assert.Equal(t, "story", body["schema"])
	assert.Equal(t, 0.0, body["valid"])
	assert.Equal(t, "D", body["grade"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.InDelta(t, 68.75, results[0].(map[string]any)["quality_score"], 1e-9)
	assert.Contains(t, stderr, "0 of 1 valid")
}

func TestCleanCmd(t *testing.T) {
	path := writeInput(t, `[{"content":"Hello   world"},{"content":"Hello world"}]`)

	body, _, err := run(t, "clean", "-a", "conservative", "-o", "text_cleaning,deduplication", path)
	require.NoError(t, err)

	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Hello world", data[0].(map[string]any)["content"])
}

func TestCleanCmd_RejectsObject(t *testing.T) {
	path := writeInput(t, `{"content":"x"}`)
	_, _, err := run(t, "clean", path)
	assert.ErrorContains(t, err, "must contain a JSON array")
}

func TestSchemasCmd(t *testing.T) {
	body, _, err := run(t, "schemas")
	require.NoError(t, err)

	assert.Len(t, body["schemas"], 3)
	assert.Contains(t, body["transformers"], "db:stories")
	assert.Len(t, body["quality_dimensions"], 4)
}
