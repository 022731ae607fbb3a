package envelope

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

/*
envelope implements the bollinger band envelope with an extra third sigma band:

	mean  = SMA(close, window)
	up2   = mean + 2 * stddev(close, window)
	down2 = mean - 2 * stddev(close, window)
	up3   = mean + 3 * stddev(close, window)
	down3 = mean - 3 * stddev(close, window)

The standard deviation is the sample standard deviation (n-1), the same as
pandas rolling std and gonum stat.StdDev.

Bollinger Bands
- https://www.investopedia.com/terms/b/bollingerbands.asp
*/

const (
	DefaultWindow = 20

	BandK2 = 2.0
	BandK3 = 3.0
)

// Value is an optional float. Positions before the rolling window fills are not Valid.
type Value struct {
	Float64 float64 `json:"value"`
	Valid   bool    `json:"valid"`
}

func Some(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// Band is the envelope at one defined position.
type Band struct {
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stdDev"`
	UpBand2   float64 `json:"upBand2"`
	DownBand2 float64 `json:"downBand2"`
	UpBand3   float64 `json:"upBand3"`
	DownBand3 float64 `json:"downBand3"`
}

// Envelope holds the aligned output sequences of Calculate. Every slice has the length of the input.
type Envelope struct {
	Window int `json:"window"`

	Mean      []Value `json:"mean"`
	StdDev    []Value `json:"stdDev"`
	UpBand2   []Value `json:"upBand2"`
	DownBand2 []Value `json:"downBand2"`
	UpBand3   []Value `json:"upBand3"`
	DownBand3 []Value `json:"downBand3"`

	Signals []Signal `json:"signals"`

	// Deviation is |last price - last mean|, the ranking key.
	Deviation Value `json:"deviation"`
}

// Calculate computes the rolling envelope of prices. It does not modify prices.
// An empty or short input is not an error: the envelope is simply undefined everywhere.
func Calculate(prices []float64, window int) *Envelope {
	if window <= 0 {
		window = DefaultWindow
	}

	n := len(prices)
	env := &Envelope{
		Window:    window,
		Mean:      make([]Value, n),
		StdDev:    make([]Value, n),
		UpBand2:   make([]Value, n),
		DownBand2: make([]Value, n),
		UpBand3:   make([]Value, n),
		DownBand3: make([]Value, n),
		Signals:   []Signal{},
	}

	for i := window - 1; i < n; i++ {
		band := calculateBand(prices[i-window+1 : i+1])
		env.Mean[i] = Some(band.Mean)
		env.StdDev[i] = Some(band.StdDev)
		env.UpBand2[i] = Some(band.UpBand2)
		env.DownBand2[i] = Some(band.DownBand2)
		env.UpBand3[i] = Some(band.UpBand3)
		env.DownBand3[i] = Some(band.DownBand3)

		if kind, ok := detect(prices[i], band); ok {
			env.Signals = append(env.Signals, Signal{Index: i, Kind: kind, Price: prices[i]})
		}
	}

	if n >= window && n > 0 {
		env.Deviation = Some(math.Abs(prices[n-1] - env.Mean[n-1].Float64))
	}

	return env
}

func calculateBand(recent []float64) Band {
	mean, std := stat.MeanStdDev(recent, nil)
	if len(recent) < 2 {
		// a one sample window has no spread
		std = 0
	}

	return Band{
		Mean:      mean,
		StdDev:    std,
		UpBand2:   mean + BandK2*std,
		DownBand2: mean - BandK2*std,
		UpBand3:   mean + BandK3*std,
		DownBand3: mean - BandK3*std,
	}
}

// detect flags the price leaving the 2 sigma band. A zero width band can not be crossed: the mean of
// a constant window may differ from the price by a rounding step.
func detect(price float64, band Band) (SignalKind, bool) {
	if band.StdDev == 0 {
		return "", false
	}

	switch {
	case price < band.DownBand2:
		return SignalBuy, true
	case price > band.UpBand2:
		return SignalSell, true
	}
	return "", false
}

func (e *Envelope) Len() int {
	return len(e.Mean)
}

// Rankable reports whether the envelope has a ranking key.
func (e *Envelope) Rankable() bool {
	return e.Deviation.Valid
}

// At returns the band at index i, false when the position is undefined.
func (e *Envelope) At(i int) (Band, bool) {
	if i < 0 || i >= e.Len() || !e.Mean[i].Valid {
		return Band{}, false
	}

	return Band{
		Mean:      e.Mean[i].Float64,
		StdDev:    e.StdDev[i].Float64,
		UpBand2:   e.UpBand2[i].Float64,
		DownBand2: e.DownBand2[i].Float64,
		UpBand3:   e.UpBand3[i].Float64,
		DownBand3: e.DownBand3[i].Float64,
	}, true
}

// Last returns the band at the last position.
func (e *Envelope) Last() (Band, bool) {
	return e.At(e.Len() - 1)
}

func (e *Envelope) Buys() []Signal {
	return e.filter(SignalBuy)
}

func (e *Envelope) Sells() []Signal {
	return e.filter(SignalSell)
}

func (e *Envelope) LastSignal() (Signal, bool) {
	if len(e.Signals) == 0 {
		return Signal{}, false
	}
	return e.Signals[len(e.Signals)-1], true
}

func (e *Envelope) filter(kind SignalKind) []Signal {
	var out []Signal
	for _, s := range e.Signals {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
