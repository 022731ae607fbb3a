package csvsource

import (
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/c9s/pythia/pkg/types"
)

var (
	// ErrNotEnoughColumns is returned when the CSV price record does not have enough columns.
	ErrNotEnoughColumns = errors.New("not enough columns")

	// ErrInvalidTimeFormat is returned when the CSV price record does not have a valid date or unix time.
	ErrInvalidTimeFormat = errors.New("cannot parse time string")

	// ErrInvalidPriceFormat is returned when the CSV price record does not have prices in expected format.
	ErrInvalidPriceFormat = errors.New("OHLC prices must be in valid decimal format")

	// ErrInvalidVolumeFormat is returned when the CSV price record does not have a valid volume format.
	ErrInvalidVolumeFormat = errors.New("volume must be in valid float format")
)

// CSVPriceDecoder is an extension point for CSVPriceReader to support custom file formats.
type CSVPriceDecoder func(record []string) (types.PriceBar, error)

// NewCSVPriceReader creates a CSVPriceReader for the files written by WritePriceSeries:
// date,open,high,low,close,volume
func NewCSVPriceReader(csv *csv.Reader) *CSVPriceReader {
	return &CSVPriceReader{
		csv:     csv,
		decoder: PriceCSVDecoder,
	}
}

// PriceCSVDecoder decodes a date,open,high,low,close[,volume] record.
func PriceCSVDecoder(record []string) (types.PriceBar, error) {
	var bar, empty types.PriceBar

	if len(record) < 5 {
		return empty, ErrNotEnoughColumns
	}

	t, err := parseTime(record[0])
	if err != nil {
		return empty, err
	}
	bar.Time = t

	prices, err := parsePrices(record[1:5])
	if err != nil {
		return empty, err
	}
	bar.Open, bar.High, bar.Low, bar.Close = prices[0], prices[1], prices[2], prices[3]

	if len(record) > 5 {
		bar.Volume, err = strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
		if err != nil {
			return empty, ErrInvalidVolumeFormat
		}
	}

	return bar, nil
}

// NewYahooCSVPriceReader creates a CSVPriceReader for the Yahoo Finance history download:
// Date,Open,High,Low,Close,Adj Close,Volume
func NewYahooCSVPriceReader(csv *csv.Reader) *CSVPriceReader {
	return &CSVPriceReader{
		csv:     csv,
		decoder: YahooCSVDecoder,
	}
}

// YahooCSVDecoder decodes a Yahoo Finance history record, "null" rows are rejected with ErrInvalidPriceFormat.
func YahooCSVDecoder(record []string) (types.PriceBar, error) {
	var bar, empty types.PriceBar

	if len(record) < 7 {
		return empty, ErrNotEnoughColumns
	}

	t, err := parseTime(record[0])
	if err != nil {
		return empty, err
	}
	bar.Time = t

	prices, err := parsePrices(record[1:5])
	if err != nil {
		return empty, err
	}
	bar.Open, bar.High, bar.Low, bar.Close = prices[0], prices[1], prices[2], prices[3]

	bar.Volume, err = strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
	if err != nil {
		return empty, ErrInvalidVolumeFormat
	}

	return bar, nil
}

func parsePrices(fields []string) ([]float64, error) {
	prices := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, ErrInvalidPriceFormat
		}
		prices[i] = v
	}
	return prices, nil
}

// parseTime accepts 2006-01-02 dates, unix seconds and unix milliseconds.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(types.DateFormat, s); err == nil {
		return t, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}

	// anything beyond year 5138 in seconds is a millisecond timestamp
	if n > 1e11 {
		return time.UnixMilli(n).UTC(), nil
	}
	return time.Unix(n, 0).UTC(), nil
}
