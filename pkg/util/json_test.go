package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadJsonFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "index.json")

	type doc struct {
		Symbols []string `json:"symbols"`
	}

	require.NoError(t, WriteJsonFile(p, doc{Symbols: []string{"AAPL", "KO"}}))

	var got doc
	require.NoError(t, ReadJsonFile(p, &got))
	assert.Equal(t, []string{"AAPL", "KO"}, got.Symbols)

	matches, err := filepath.Glob(p + ".*")
	assert.NoError(t, err)
	assert.Empty(t, matches)
}
