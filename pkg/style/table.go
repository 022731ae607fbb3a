package style

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func NewDefaultTableStyle() *table.Style {
	style := table.StyleRounded
	style.Color = table.ColorOptionsYellowWhiteOnBlack
	style.Color.Row = text.Colors{text.FgHiYellow, text.BgHiBlack}
	style.Color.RowAlternate = text.Colors{text.FgYellow, text.BgBlack}
	return &style
}

// NewTable returns a table writer rendering to w with the default style and the numeric
// columns right aligned.
func NewTable(w io.Writer, title string, header table.Row, numericColumns ...int) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(*NewDefaultTableStyle())
	t.SetTitle(title)
	t.AppendHeader(header)

	var configs []table.ColumnConfig
	for _, n := range numericColumns {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
	return t
}
