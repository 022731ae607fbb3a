package style

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
)

func TestNewTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "Ranking", table.Row{"#", "Symbol", "Deviation"}, 1, 3)
	tbl.AppendRow(table.Row{1, "AAPL", "12.50"})
	tbl.AppendRow(table.Row{2, "KO", "0.75"})
	tbl.Render()

	out := buf.String()
	assert.Contains(t, out, "Ranking")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "╭")
}
