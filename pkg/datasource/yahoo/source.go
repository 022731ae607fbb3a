package yahoo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/c9s/pythia/pkg/types"
	"github.com/c9s/pythia/pkg/util/backoff"
)

var log = logrus.WithField("datasource", "yahoo")

var _ types.PriceSource = (*Source)(nil)

// Source implements types.PriceSource with the Yahoo Finance chart API.
type Source struct {
	Client *RestClient

	AdjustedClose bool
}

func NewSource(client *RestClient) *Source {
	if client == nil {
		client = New()
	}
	return &Source{Client: client}
}

func (s *Source) Name() string {
	return "yahoo"
}

func (s *Source) QueryPriceSeries(ctx context.Context, symbol string, since, until time.Time) (*types.PriceSeries, error) {
	var series *types.PriceSeries
	op := func() error {
		rst, err := s.Client.NewChartRequest().
			Symbol(symbol).
			Since(since).
			Until(until).
			AdjustedClose(s.AdjustedClose).
			Do(ctx)
		if err != nil {
			if errors.Is(err, types.ErrNoData) {
				return backoff.Permanent(err)
			}

			if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode < 500 && apiErr.StatusCode != 429 {
				return backoff.Permanent(err)
			}

			log.WithError(err).Warnf("%s chart request failed, retrying", symbol)
			return err
		}

		series = rst
		return nil
	}

	if err := backoff.RetryGeneral(ctx, op); err != nil {
		return nil, err
	}

	return series, nil
}
