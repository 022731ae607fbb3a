package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c9s/pythia/pkg/types"
)

var _ types.PriceSource = (*Source)(nil)

// Source serves price series from <Dir>/<SYMBOL>.csv files.
type Source struct {
	Dir string

	// Maker overrides the csv format, defaults to NewCSVPriceReader
	Maker MakeCSVPriceReader
}

func NewSource(dir string) *Source {
	return &Source{Dir: dir}
}

func (s *Source) Name() string {
	return "csv"
}

func (s *Source) QueryPriceSeries(ctx context.Context, symbol string, since, until time.Time) (*types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maker := s.Maker
	if maker == nil {
		maker = NewCSVPriceReader
	}

	path := filepath.Join(s.Dir, strings.ToUpper(symbol)+".csv")
	series, err := ReadPriceSeriesFromCSVWithDecoder(path, maker)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrNoData
		}
		return nil, err
	}

	series = series.Between(since, until)
	if series.Len() == 0 {
		return nil, types.ErrNoData
	}

	return series, nil
}
