package csvsource

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c9s/pythia/pkg/types"
)

func TestCSVPriceReader_ReadWithPriceDecoder(t *testing.T) {
	tests := []struct {
		name string
		give string
		want types.PriceBar
		err  error
	}{
		{
			name: "Read DOHLCV",
			give: "2024-01-02,187.15,188.44,183.89,185.64,82488700",
			want: types.PriceBar{
				Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Open:   187.15,
				High:   188.44,
				Low:    183.89,
				Close:  185.64,
				Volume: 82488700,
			},
		},
		{
			name: "Read DOHLC with unix time",
			give: "1704153600,187.15,188.44,183.89,185.64",
			want: types.PriceBar{
				Time:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Open:  187.15,
				High:  188.44,
				Low:   183.89,
				Close: 185.64,
			},
		},
		{
			name: "Read DOHLC with unix milliseconds",
			give: "1704153600000,187.15,188.44,183.89,185.64",
			want: types.PriceBar{
				Time:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Open:  187.15,
				High:  188.44,
				Low:   183.89,
				Close: 185.64,
			},
		},
		{
			name: "Not enough columns",
			give: "2024-01-02,187.15,188.44",
			err:  ErrNotEnoughColumns,
		},
		{
			name: "Invalid time format",
			give: "02/01/2024,187.15,188.44,183.89,185.64",
			err:  ErrInvalidTimeFormat,
		},
		{
			name: "Invalid price format",
			give: "2024-01-02,sixty,188.44,183.89,185.64",
			err:  ErrInvalidPriceFormat,
		},
		{
			name: "Invalid volume format",
			give: "2024-01-02,187.15,188.44,183.89,185.64,vol",
			err:  ErrInvalidVolumeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewCSVPriceReader(csv.NewReader(strings.NewReader(tt.give)))
			bar, err := reader.Read()
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.want, bar)
		})
	}
}

func TestCSVPriceReader_ReadWithYahooDecoder(t *testing.T) {
	records := []string{
		"Date,Open,High,Low,Close,Adj Close,Volume",
		"2024-01-02,187.149994,188.440002,183.889999,185.639999,184.734970,82488700",
		"2024-01-03,184.220001,185.880005,183.429993,184.250000,183.351746,58414500",
	}

	reader := NewYahooCSVPriceReader(csv.NewReader(strings.NewReader(strings.Join(records, "\n"))))
	bars, err := reader.ReadAll()
	assert.NoError(t, err)
	if assert.Len(t, bars, 2) {
		assert.Equal(t, 185.639999, bars[0].Close)
		assert.Equal(t, 58414500.0, bars[1].Volume)
	}

	reader = NewYahooCSVPriceReader(csv.NewReader(strings.NewReader("2024-01-04,null,null,null,null,null,null")))
	_, err = reader.Read()
	assert.Equal(t, ErrInvalidPriceFormat, err)
}

func TestCSVPriceReader_ReadAllSkipsHeader(t *testing.T) {
	records := []string{
		"date,open,high,low,close,volume",
		"2024-01-02,1,2,0.5,1.5,100",
		"2024-01-03,1.5,2,1,1.8,200",
	}
	reader := NewCSVPriceReader(csv.NewReader(strings.NewReader(strings.Join(records, "\n"))))
	bars, err := reader.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, bars, 2)
}
