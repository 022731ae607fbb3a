package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/c9s/pythia/pkg/indicator/envelope"
	"github.com/c9s/pythia/pkg/types"
)

var ErrNothingToPlot = errors.New("nothing to plot")

var errSignalOutOfRange = errors.New("signal index is out of the series range")

var (
	closeColor = drawing.ColorFromHex("1f77b4")
	meanColor  = drawing.ColorFromHex("ff7f0e")
	band2Color = drawing.ColorFromHex("2ca02c")
	band3Color = drawing.ColorFromHex("d62728")
	buyColor   = drawing.ColorFromHex("00a000")
	sellColor  = drawing.ColorFromHex("e00000")
)

type Options struct {
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	DPI    float64 `json:"dpi" yaml:"dpi"`
}

func DefaultOptions() Options {
	return Options{
		Width:  1024,
		Height: 768,
		DPI:    96,
	}
}

func Title(symbol string) string {
	return symbol + " Price with Bollinger Bands and Third Sigma"
}

// FileName returns the chart file name of symbol inside the graphs directory.
func FileName(symbol string) string {
	return symbol + ".png"
}

// New builds the chart of series with its envelope. Undefined envelope positions are left out.
func New(series *types.PriceSeries, env *envelope.Envelope, opts Options) (*gochart.Chart, error) {
	if series.Len() == 0 {
		return nil, ErrNothingToPlot
	}

	if env == nil {
		env = envelope.Calculate(series.Closes(), envelope.DefaultWindow)
	}

	if env.Len() != series.Len() {
		return nil, fmt.Errorf("%s: envelope length %d does not match series length %d", series.Symbol, env.Len(), series.Len())
	}

	if opts.Width == 0 || opts.Height == 0 {
		opts = DefaultOptions()
	}

	times := series.Times()
	closes := series.Closes()

	c := &gochart.Chart{
		Title:  Title(series.Symbol),
		Width:  opts.Width,
		Height: opts.Height,
		DPI:    opts.DPI,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name: "Price",
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.2f", vf)
				}
				return ""
			},
		},
	}

	c.Series = append(c.Series, gochart.TimeSeries{
		Name:    "Close Price",
		Style:   gochart.Style{StrokeColor: closeColor, StrokeWidth: 1.5},
		XValues: times,
		YValues: closes,
	})

	lines := []struct {
		name   string
		values []envelope.Value
		style  gochart.Style
	}{
		{"20 Day SMA", env.Mean, gochart.Style{StrokeColor: meanColor, StrokeWidth: 1.5}},
		{"Upper Band (2σ)", env.UpBand2, gochart.Style{StrokeColor: band2Color, StrokeWidth: 1, StrokeDashArray: []float64{5, 3}}},
		{"Lower Band (2σ)", env.DownBand2, gochart.Style{StrokeColor: band2Color, StrokeWidth: 1, StrokeDashArray: []float64{5, 3}}},
		{"Upper Band (3σ)", env.UpBand3, gochart.Style{StrokeColor: band3Color, StrokeWidth: 1, StrokeDashArray: []float64{1, 3}}},
		{"Lower Band (3σ)", env.DownBand3, gochart.Style{StrokeColor: band3Color, StrokeWidth: 1, StrokeDashArray: []float64{1, 3}}},
	}

	for _, line := range lines {
		xs, ys := defined(times, line.values)
		if len(xs) == 0 {
			continue
		}

		c.Series = append(c.Series, gochart.TimeSeries{
			Name:    line.name,
			Style:   line.style,
			XValues: xs,
			YValues: ys,
		})
	}

	if buys := env.Buys(); len(buys) > 0 {
		c.Series = append(c.Series, NewSignalSeries("Buy Signal", envelope.SignalBuy, buyColor, times, buys))
	}

	if sells := env.Sells(); len(sells) > 0 {
		c.Series = append(c.Series, NewSignalSeries("Sell Signal", envelope.SignalSell, sellColor, times, sells))
	}

	c.XAxis.Range = timeRange(times)
	c.YAxis.Range = valueRange(closes, env)
	c.Elements = []gochart.Renderable{
		gochart.LegendLeft(c),
	}

	return c, nil
}

// Render writes the chart as PNG.
func Render(w io.Writer, series *types.PriceSeries, env *envelope.Envelope, opts Options) error {
	c, err := New(series, env, opts)
	if err != nil {
		return err
	}

	return errors.Wrapf(c.Render(gochart.PNG, w), "unable to render %s chart", series.Symbol)
}

// SaveFile renders the chart into path. The file is replaced atomically so that a reader never
// sees a partial image.
func SaveFile(path string, series *types.PriceSeries, env *envelope.Envelope, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "unable to create graph directory %s", dir)
	}

	f, err := os.CreateTemp(dir, ".chart-*.png")
	if err != nil {
		return errors.Wrap(err, "unable to create chart file")
	}

	tmp := f.Name()
	defer os.Remove(tmp)

	if err := Render(f, series, env, opts); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func defined(times []time.Time, values []envelope.Value) ([]time.Time, []float64) {
	var xs []time.Time
	var ys []float64
	for i, v := range values {
		if !v.Valid {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, v.Float64)
	}
	return xs, ys
}

// timeRange pads a single day series so that the axis has a non-zero domain.
func timeRange(times []time.Time) *gochart.ContinuousRange {
	first, last := times[0], times[len(times)-1]
	if !last.After(first) {
		first = first.Add(-24 * time.Hour)
		last = last.Add(24 * time.Hour)
	}

	return &gochart.ContinuousRange{
		Min: gochart.TimeToFloat64(first),
		Max: gochart.TimeToFloat64(last),
	}
}

// valueRange covers the prices and the defined 3 sigma bands, padded by 2%.
func valueRange(closes []float64, env *envelope.Envelope) *gochart.ContinuousRange {
	lo, hi := closes[0], closes[0]
	extend := func(v float64) {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	for _, c := range closes {
		extend(c)
	}

	for i := range env.UpBand3 {
		if env.UpBand3[i].Valid {
			extend(env.UpBand3[i].Float64)
			extend(env.DownBand3[i].Float64)
		}
	}

	pad := (hi - lo) * 0.02
	if pad == 0 {
		pad = 1
	}

	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
