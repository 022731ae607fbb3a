package types

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrNoData is returned by a price source when the symbol has no price data in the requested range.
var ErrNoData = errors.New("no price data")

// PriceBar is one daily OHLCV sample.
type PriceBar struct {
	Time   time.Time `json:"time" db:"time"`
	Open   float64   `json:"open" db:"open"`
	High   float64   `json:"high" db:"high"`
	Low    float64   `json:"low" db:"low"`
	Close  float64   `json:"close" db:"close"`
	Volume float64   `json:"volume" db:"volume"`
}

func (b PriceBar) String() string {
	return fmt.Sprintf("%s O:%.4f H:%.4f L:%.4f C:%.4f V:%.0f",
		b.Time.Format(DateFormat), b.Open, b.High, b.Low, b.Close, b.Volume)
}

const DateFormat = "2006-01-02"

// PriceSeries is an ordered sequence of bars of one symbol, timestamps strictly increasing.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

func NewPriceSeries(symbol string, bars ...PriceBar) *PriceSeries {
	return &PriceSeries{Symbol: symbol, Bars: bars}
}

func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, 0, s.Len())
	for _, b := range s.Bars {
		closes = append(closes, b.Close)
	}
	return closes
}

func (s *PriceSeries) Times() []time.Time {
	times := make([]time.Time, 0, s.Len())
	for _, b := range s.Bars {
		times = append(times, b.Time)
	}
	return times
}

func (s *PriceSeries) Last() (PriceBar, bool) {
	if s.Len() == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Validate checks the timestamps are strictly increasing.
func (s *PriceSeries) Validate() error {
	for i := 1; i < s.Len(); i++ {
		if !s.Bars[i].Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("%s: bar %d at %s is not after %s", s.Symbol, i,
				s.Bars[i].Time.Format(DateFormat), s.Bars[i-1].Time.Format(DateFormat))
		}
	}
	return nil
}

// Between returns a copy of the series restricted to since <= t < until.
// A zero until means no upper bound.
func (s *PriceSeries) Between(since, until time.Time) *PriceSeries {
	out := &PriceSeries{Symbol: s.Symbol}
	for _, b := range s.Bars {
		if b.Time.Before(since) {
			continue
		}
		if !until.IsZero() && !b.Time.Before(until) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}
