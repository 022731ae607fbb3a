package ranking

import (
	"sort"

	"github.com/c9s/pythia/pkg/indicator/envelope"
)

// Entry is a ticker and its ranking key.
type Entry struct {
	Symbol    string         `json:"symbol"`
	Deviation envelope.Value `json:"deviation"`

	LastClose  float64          `json:"lastClose"`
	LastMean   float64          `json:"lastMean"`
	LastSignal *envelope.Signal `json:"lastSignal,omitempty"`
	Signals    int              `json:"signals"`
	Image      string           `json:"image"`
}

// NewEntry builds an entry from the calculated envelope of the symbol.
func NewEntry(symbol string, closes []float64, env *envelope.Envelope) Entry {
	entry := Entry{
		Symbol:    symbol,
		Deviation: env.Deviation,
		Signals:   len(env.Signals),
	}

	if n := len(closes); n > 0 {
		entry.LastClose = closes[n-1]
	}

	if band, ok := env.Last(); ok {
		entry.LastMean = band.Mean
	}

	if s, ok := env.LastSignal(); ok {
		entry.LastSignal = &s
	}

	return entry
}

// Rank drops the entries without a ranking key and orders the rest by the key, largest first.
// Entries with equal keys keep their input order.
func Rank(entries []Entry) []Entry {
	ranked := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Deviation.Valid {
			ranked = append(ranked, e)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Deviation.Float64 > ranked[j].Deviation.Float64
	})
	return ranked
}

// Symbols returns the symbols of the entries in order.
func Symbols(entries []Entry) []string {
	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	return symbols
}
