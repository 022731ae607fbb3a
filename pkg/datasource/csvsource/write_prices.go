package csvsource

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/c9s/pythia/pkg/types"
)

// WritePriceSeries writes the series to <dir>/<SYMBOL>.csv with a header row.
func WritePriceSeries(dir string, series *types.PriceSeries) (err error) {
	if series.Len() == 0 {
		return fmt.Errorf("no %s prices to write", series.Symbol)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	file, err := os.Create(filepath.Join(dir, series.Symbol+".csv"))
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return errors.Wrap(err, "writing header to file")
	}

	for _, bar := range series.Bars {
		row := []string{
			bar.Time.Format(types.DateFormat),
			formatFloat(bar.Open),
			formatFloat(bar.High),
			formatFloat(bar.Low),
			formatFloat(bar.Close),
			formatFloat(bar.Volume),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "writing record to file")
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
