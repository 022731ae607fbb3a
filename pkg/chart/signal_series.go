package chart

import (
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/c9s/pythia/pkg/indicator/envelope"
)

var (
	_ gochart.Series = &SignalSeries{}
)

// SignalSeries draws a triangle marker for every signal of one kind,
// pointing up for buys and down for sells.
type SignalSeries struct {
	Name  string
	Kind  envelope.SignalKind
	Color drawing.Color
	Size  int

	times   []time.Time
	signals []envelope.Signal
}

func NewSignalSeries(name string, kind envelope.SignalKind, color drawing.Color, times []time.Time, signals []envelope.Signal) *SignalSeries {
	return &SignalSeries{
		Name:    name,
		Kind:    kind,
		Color:   color,
		Size:    6,
		times:   times,
		signals: signals,
	}
}

func (s *SignalSeries) Len() int {
	return len(s.signals)
}

func (s *SignalSeries) GetName() string {
	return s.Name
}

func (s *SignalSeries) GetStyle() gochart.Style {
	return gochart.Style{
		StrokeColor: s.Color,
		FillColor:   s.Color,
		StrokeWidth: 1.0,
	}
}

func (s *SignalSeries) GetYAxis() gochart.YAxisType {
	return gochart.YAxisPrimary
}

func (s *SignalSeries) Validate() error {
	for _, sig := range s.signals {
		if sig.Index < 0 || sig.Index >= len(s.times) {
			return errSignalOutOfRange
		}
	}
	return nil
}

func (s *SignalSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	r.SetFillColor(s.Color)
	r.SetStrokeColor(s.Color)
	r.SetStrokeWidth(1.0)

	for _, sig := range s.signals {
		x := canvasBox.Left + xrange.Translate(gochart.TimeToFloat64(s.times[sig.Index]))
		y := canvasBox.Bottom - yrange.Translate(sig.Price)

		// the marker tip touches the price
		tip := s.Size
		if s.Kind == envelope.SignalSell {
			tip = -s.Size
		}

		r.MoveTo(x, y)
		r.LineTo(x-s.Size, y+tip*2)
		r.LineTo(x+s.Size, y+tip*2)
		r.LineTo(x, y)
		r.Close()
		r.FillStroke()
	}
}
