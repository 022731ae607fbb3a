package types

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_price_source.go -package=mocks . PriceSource

// PriceSource returns the daily price history of a symbol.
// Implementations return ErrNoData when nothing is available for the range.
type PriceSource interface {
	Name() string
	QueryPriceSeries(ctx context.Context, symbol string, since, until time.Time) (*PriceSeries, error)
}
