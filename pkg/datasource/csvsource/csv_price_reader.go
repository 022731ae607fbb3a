package csvsource

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/c9s/pythia/pkg/types"
)

// PriceReader is an interface for reading daily price bars.
type PriceReader interface {
	Read() (types.PriceBar, error)
	ReadAll() ([]types.PriceBar, error)
}

var _ PriceReader = (*CSVPriceReader)(nil)

// CSVPriceReader is a PriceReader that reads from a CSV file.
type CSVPriceReader struct {
	csv     *csv.Reader
	decoder CSVPriceDecoder

	headerChecked bool
}

// MakeCSVPriceReader is a factory method type that creates a new CSVPriceReader.
type MakeCSVPriceReader func(csv *csv.Reader) *CSVPriceReader

// NewCSVPriceReaderWithDecoder creates a new CSVPriceReader with the given decoder.
func NewCSVPriceReaderWithDecoder(csv *csv.Reader, decoder CSVPriceDecoder) *CSVPriceReader {
	return &CSVPriceReader{
		csv:     csv,
		decoder: decoder,
	}
}

// Read reads the next bar, a leading header row is skipped.
func (r *CSVPriceReader) Read() (types.PriceBar, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return types.PriceBar{}, err
	}

	if !r.headerChecked {
		r.headerChecked = true
		if isHeader(rec) {
			return r.Read()
		}
	}

	return r.decoder(rec)
}

// ReadAll reads all the bars of the underlying CSV data.
func (r *CSVPriceReader) ReadAll() ([]types.PriceBar, error) {
	var bars []types.PriceBar
	for {
		bar, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(rec[0])) {
	case "date", "time", "timestamp":
		return true
	}
	return false
}
