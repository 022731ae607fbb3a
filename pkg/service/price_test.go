package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/pythia/pkg/types"
)

func prepareDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	// every connection to :memory: opens a new database
	db.SetMaxOpenConns(1)

	service := &PriceService{DB: db}
	require.NoError(t, service.Migrate(context.Background()))
	return db
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func buildSeries(symbol string, days ...int) *types.PriceSeries {
	series := types.NewPriceSeries(symbol)
	for _, d := range days {
		c := 100.0 + float64(d)
		series.Bars = append(series.Bars, types.PriceBar{
			Time: day(d), Open: c - 1, High: c + 1, Low: c - 2, Close: c, Volume: 1000,
		})
	}
	return series
}

func TestPriceService_InsertAndQuery(t *testing.T) {
	db := prepareDB(t)
	defer db.Close()

	ctx := context.Background()
	service := &PriceService{DB: db}

	err := service.BatchInsert(ctx, buildSeries("KO", 2, 3, 4, 5, 8))
	require.NoError(t, err)

	// stored bars are skipped
	err = service.BatchInsert(ctx, buildSeries("KO", 5, 8, 9))
	require.NoError(t, err)

	series, err := service.Query(ctx, "KO", day(1), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "KO", series.Symbol)
	assert.Equal(t, []float64{102, 103, 104, 105, 108, 109}, series.Closes())
	assert.True(t, day(2).Equal(series.Bars[0].Time))
	assert.Equal(t, 107.0, series.Bars[4].Open)
	assert.NoError(t, series.Validate())

	series, err = service.Query(ctx, "KO", day(3), day(5))
	require.NoError(t, err)
	assert.Equal(t, []float64{103, 104}, series.Closes())

	series, err = service.Query(ctx, "AAPL", day(1), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestPriceService_FirstLastTime(t *testing.T) {
	db := prepareDB(t)
	defer db.Close()

	ctx := context.Background()
	service := &PriceService{DB: db}

	first, err := service.FirstTime(ctx, "KO")
	require.NoError(t, err)
	assert.True(t, first.IsZero())

	require.NoError(t, service.BatchInsert(ctx, buildSeries("KO", 3, 4, 5)))
	require.NoError(t, service.BatchInsert(ctx, buildSeries("MMM", 10)))

	first, err = service.FirstTime(ctx, "KO")
	require.NoError(t, err)
	assert.True(t, day(3).Equal(first), "got %s", first)

	last, err := service.LastTime(ctx, "KO")
	require.NoError(t, err)
	assert.True(t, day(5).Equal(last), "got %s", last)
}

func TestPriceService_BatchInsertLargeSeries(t *testing.T) {
	db := prepareDB(t)
	defer db.Close()

	ctx := context.Background()
	service := &PriceService{DB: db}

	series := types.NewPriceSeries("IBM")
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1200; i++ {
		series.Bars = append(series.Bars, types.PriceBar{Time: start.AddDate(0, 0, i), Close: float64(i)})
	}

	require.NoError(t, service.BatchInsert(ctx, series))

	stored, err := service.Query(ctx, "IBM", start, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1200, stored.Len())
}

func TestPriceService_BatchInsertRollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := &PriceService{DB: sqlx.NewDb(db, "mysql")}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO price_bars")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = service.BatchInsert(context.Background(), buildSeries("KO", 2, 3))
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPriceService_QueryPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := &PriceService{DB: sqlx.NewDb(db, "postgres")}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "time", "open", "high", "low", "close", "volume" FROM price_bars WHERE "symbol" = $1 AND "time" >= $2 ORDER BY "time" ASC`)).
		WithArgs("KO", day(1)).
		WillReturnRows(sqlmock.NewRows([]string{"time", "open", "high", "low", "close", "volume"}).
			AddRow(day(2), 59.5, 60.5, 59.0, 60.0, 1000.0).
			AddRow(day(3), 60.0, 61.5, 59.8, 61.0, 1200.0))

	series, err := service.Query(context.Background(), "KO", day(1), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 61}, series.Closes())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDialect(t *testing.T) {
	assert.IsType(t, &MySQLDialect{}, GetDialect("mysql"))
	assert.IsType(t, &PostgreSQLDialect{}, GetDialect("postgres"))
	assert.IsType(t, &SQLiteDialect{}, GetDialect("sqlite3"))
	assert.IsType(t, &SQLiteDialect{}, GetDialect("unknown"))

	assert.Equal(t, "INSERT OR IGNORE INTO t (a) VALUES (:a)", GetDialect("sqlite3").InsertIgnoreSQL("t", "a", ":a"))
	assert.Equal(t, "INSERT INTO t (a) VALUES (:a) ON CONFLICT DO NOTHING", GetDialect("postgres").InsertIgnoreSQL("t", "a", ":a"))
}

func TestReformatMysqlDSN(t *testing.T) {
	dsn, err := ReformatMysqlDSN("root:secret@tcp(127.0.0.1:3306)/pythia")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
}
