package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/c9s/pythia/pkg/market"
	"github.com/c9s/pythia/pkg/types"
)

// maxSessionGap is the longest span without a session: a long weekend plus a holiday
const maxSessionGap = 4 * 24 * time.Hour

// CachedSource serves price series from the database and falls back to the upstream source
// when the stored history does not cover the request.
type CachedSource struct {
	Source   types.PriceSource
	Service  *PriceService
	Calendar *market.Calendar

	now func() time.Time
}

func NewCachedSource(source types.PriceSource, service *PriceService, calendar *market.Calendar) *CachedSource {
	return &CachedSource{
		Source:   source,
		Service:  service,
		Calendar: calendar,
		now:      time.Now,
	}
}

func (c *CachedSource) Name() string {
	return c.Source.Name() + "+db"
}

func (c *CachedSource) QueryPriceSeries(ctx context.Context, symbol string, since, until time.Time) (*types.PriceSeries, error) {
	covered, err := c.covers(ctx, symbol, since, until)
	if err != nil {
		log.WithError(err).Warnf("unable to check the stored %s history, querying %s", symbol, c.Source.Name())
	}

	if covered {
		series, err := c.Service.Query(ctx, symbol, since, until)
		if err == nil && series.Len() > 0 {
			log.Debugf("%s: loaded %d bars from database", symbol, series.Len())
			return series, nil
		}

		if err != nil {
			log.WithError(err).Warnf("unable to load %s from database", symbol)
		}
	}

	series, err := c.Source.QueryPriceSeries(ctx, symbol, since, until)
	if err != nil {
		return nil, err
	}

	if err := c.Service.BatchInsert(ctx, series); err != nil {
		log.WithError(err).Warnf("unable to store %s price bars", symbol)
	}

	return series, nil
}

// Sync stores the upstream history of symbol since the given time and returns the number of fetched bars.
func (c *CachedSource) Sync(ctx context.Context, symbol string, since time.Time) (int, error) {
	if last, err := c.Service.LastTime(ctx, symbol); err != nil {
		return 0, err
	} else if last.After(since) {
		since = last
	}

	series, err := c.Source.QueryPriceSeries(ctx, symbol, since, time.Time{})
	if err != nil {
		return 0, err
	}

	return series.Len(), c.Service.BatchInsert(ctx, series)
}

// Stored returns the bars of symbol kept in the database since the given time.
func (c *CachedSource) Stored(ctx context.Context, symbol string, since time.Time) (*types.PriceSeries, error) {
	return c.Service.Query(ctx, symbol, since, time.Time{})
}

// covers reports whether the stored bars reach from since up to the last completed session,
// or up to until when that is earlier.
func (c *CachedSource) covers(ctx context.Context, symbol string, since, until time.Time) (bool, error) {
	first, err := c.Service.FirstTime(ctx, symbol)
	if err != nil || first.IsZero() {
		return false, err
	}

	last, err := c.Service.LastTime(ctx, symbol)
	if err != nil {
		return false, err
	}

	if first.After(since.Add(maxSessionGap)) {
		return false, nil
	}

	end := tradingDate(c.Calendar.LastClose(c.now()))
	if !until.IsZero() && until.Before(end) {
		end = until.Add(-maxSessionGap)
	}

	return !last.Before(end), nil
}

// tradingDate maps a session time to the midnight UTC of its exchange-local date, the bar time convention.
func tradingDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
