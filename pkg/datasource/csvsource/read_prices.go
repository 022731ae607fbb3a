package csvsource

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/c9s/pythia/pkg/types"
)

// ReadPriceSeriesFromCSV reads a single csv file into a price series.
// The symbol is taken from the file name, AAPL.csv -> AAPL.
func ReadPriceSeriesFromCSV(path string) (*types.PriceSeries, error) {
	return ReadPriceSeriesFromCSVWithDecoder(path, NewCSVPriceReader)
}

// ReadPriceSeriesFromCSVWithDecoder permits using a custom CSVPriceReader.
func ReadPriceSeriesFromCSVWithDecoder(path string, maker MakeCSVPriceReader) (*types.PriceSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Read ops only so safe to ignore err return
	defer file.Close()

	reader := maker(csv.NewReader(file))
	bars, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	symbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	series := types.NewPriceSeries(strings.ToUpper(symbol), bars...)
	if err := series.Validate(); err != nil {
		return nil, err
	}

	return series, nil
}
