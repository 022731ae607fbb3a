package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/c9s/pythia/pkg/types"
)

const priceBarsTable = "price_bars"

// priceBarBatchSize keeps a batch insert below the bind variable limit of sqlite
const priceBarBatchSize = 500

var priceBarColumns = []string{"symbol", "time", "open", "high", "low", "close", "volume"}

type priceBarRow struct {
	Symbol string `db:"symbol"`
	types.PriceBar
}

// PriceService stores daily price bars.
type PriceService struct {
	DB *sqlx.DB
}

func (s *PriceService) dialect() DatabaseDialect {
	return GetDialect(s.DB.DriverName())
}

// Migrate creates the price bar table when it does not exist yet.
func (s *PriceService) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, s.dialect().PriceBarsSchema(priceBarsTable))
	return errors.Wrap(err, "unable to create price bar table")
}

// BatchInsert stores the bars of the series, bars that are already stored are skipped.
func (s *PriceService) BatchInsert(ctx context.Context, series *types.PriceSeries) error {
	if series.Len() == 0 {
		return nil
	}

	dialect := s.dialect()
	var columns, values []string
	for _, c := range priceBarColumns {
		columns = append(columns, dialect.EscapeColumnName(c))
		values = append(values, ":"+c)
	}

	query := dialect.InsertIgnoreSQL(priceBarsTable, strings.Join(columns, ", "), strings.Join(values, ", "))

	rows := make([]priceBarRow, 0, series.Len())
	for _, bar := range series.Bars {
		bar.Time = bar.Time.UTC()
		rows = append(rows, priceBarRow{Symbol: series.Symbol, PriceBar: bar})
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}

	for start := 0; start < len(rows); start += priceBarBatchSize {
		end := start + priceBarBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			if e := tx.Rollback(); e != nil {
				log.WithError(e).Errorf("cannot rollback insertion %v", err)
			}
			return errors.Wrapf(err, "unable to insert %s price bars", series.Symbol)
		}
	}

	return errors.Wrap(tx.Commit(), "unable to commit price bars")
}

// Query returns the stored bars of symbol in since <= t < until, a zero until means no upper bound.
func (s *PriceService) Query(ctx context.Context, symbol string, since, until time.Time) (*types.PriceSeries, error) {
	dialect := s.dialect()
	timeColumn := dialect.EscapeColumnName("time")

	sel := s.selectBars(symbol).
		Where(sq.GtOrEq{timeColumn: since.UTC()}).
		OrderBy(timeColumn + " ASC")
	if !until.IsZero() {
		sel = sel.Where(sq.Lt{timeColumn: until.UTC()})
	}

	query, args, err := dialect.ConfigurePlaceholder(sel).ToSql()
	if err != nil {
		return nil, err
	}

	var bars []types.PriceBar
	if err := s.DB.SelectContext(ctx, &bars, query, args...); err != nil {
		return nil, errors.Wrapf(err, "unable to query %s price bars", symbol)
	}

	for i := range bars {
		bars[i].Time = bars[i].Time.UTC()
	}

	return types.NewPriceSeries(symbol, bars...), nil
}

// FirstTime returns the time of the earliest stored bar of symbol, zero when nothing is stored.
func (s *PriceService) FirstTime(ctx context.Context, symbol string) (time.Time, error) {
	return s.edgeTime(ctx, symbol, "ASC")
}

// LastTime returns the time of the latest stored bar of symbol, zero when nothing is stored.
func (s *PriceService) LastTime(ctx context.Context, symbol string) (time.Time, error) {
	return s.edgeTime(ctx, symbol, "DESC")
}

func (s *PriceService) edgeTime(ctx context.Context, symbol, order string) (time.Time, error) {
	dialect := s.dialect()
	sel := s.selectBars(symbol).
		OrderBy(fmt.Sprintf("%s %s", dialect.EscapeColumnName("time"), order)).
		Limit(1)

	query, args, err := dialect.ConfigurePlaceholder(sel).ToSql()
	if err != nil {
		return time.Time{}, err
	}

	var bar types.PriceBar
	if err := s.DB.GetContext(ctx, &bar, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, errors.Wrapf(err, "unable to query %s price bars", symbol)
	}

	return bar.Time.UTC(), nil
}

func (s *PriceService) selectBars(symbol string) sq.SelectBuilder {
	dialect := s.dialect()
	var columns []string
	for _, c := range priceBarColumns[1:] {
		columns = append(columns, dialect.EscapeColumnName(c))
	}

	return sq.Select(columns...).
		From(priceBarsTable).
		Where(sq.Eq{dialect.EscapeColumnName("symbol"): symbol})
}
