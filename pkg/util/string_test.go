package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbols(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "KO"}, NormalizeSymbols([]string{" aapl", "KO", "", "AAPL"}))
	assert.Empty(t, NormalizeSymbols(nil))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "xoxb-*****", MaskKey("xoxb-12345"))
	assert.Equal(t, "***", MaskKey("abc"))
}
