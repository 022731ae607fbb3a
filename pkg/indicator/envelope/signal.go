package envelope

import "fmt"

type SignalKind string

const (
	SignalBuy  SignalKind = "buy"
	SignalSell SignalKind = "sell"
)

func (k SignalKind) String() string {
	return string(k)
}

// Signal marks an index where the price crossed outside the 2 sigma band.
type Signal struct {
	Index int        `json:"index"`
	Kind  SignalKind `json:"kind"`
	Price float64    `json:"price"`
}

func (s Signal) String() string {
	return fmt.Sprintf("%s@%d(%.4f)", s.Kind, s.Index, s.Price)
}
