package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(strings.NewReader(stdin), &stdout, &stderr)
	err := app.Run(context.Background(), append([]string{"csvcell"}, args...))
	return stdout.String(), err
}

func TestConvert_Stdin(t *testing.T) {
	out, err := run(t, "id,price\n1,\"1.234,5\"\n2,x\n",
		"convert", "--schema", "id:int32,price:decimal", "--locale", "de-DE")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var row struct {
		Line  int  `json:"line"`
		Valid bool `json:"valid"`
		Cells []struct {
			Value any  `json:"value"`
			OK    bool `json:"ok"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &row))
	assert.Equal(t, 2, row.Line)
	assert.True(t, row.Valid)
	assert.Equal(t, "1234.5", row.Cells[1].Value)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &row))
	assert.False(t, row.Valid)
}

func TestConvert_ValidOnly(t *testing.T) {
	out, err := run(t, "1\nx\n3\n",
		"convert", "--schema", "n:int64", "--no-header", "--valid-only")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestConvert_Strict(t *testing.T) {
	_, err := run(t, "n\nx\n", "convert", "--schema", "n:int64", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 rows")
}

func TestConvert_Tab(t *testing.T) {
	out, err := run(t, "a\tb\nx\ty\n", "convert", "--schema", "a,b", "--delimiter", "tab")
	require.NoError(t, err)
	assert.Contains(t, out, `"raw":"y"`)
}

func TestConvert_BadFlags(t *testing.T) {
	_, err := run(t, "a\n1\n", "convert", "--schema", "a", "--styles", "Bogus")
	assert.Error(t, err)

	_, err = run(t, "a\n1\n", "convert", "--schema", "a", "--delimiter", ";;")
	assert.Error(t, err)

	_, err = run(t, "a\n1\n", "convert", "--schema", "a", "--timezone", "Nowhere/Else")
	assert.Error(t, err)
}

func TestKinds(t *testing.T) {
	out, err := run(t, "", "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, "decimal")
	assert.Contains(t, out, "numeric")
}
