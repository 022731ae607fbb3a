package yahoo

import (
	"fmt"
	"time"

	"github.com/valyala/fastjson"

	"github.com/c9s/pythia/pkg/types"
)

var parserPool fastjson.ParserPool

// ParseChartResponse decodes the chart endpoint payload into a daily price series.
// Bars with a null close (halted sessions, the still open day) are skipped.
func ParseChartResponse(symbol string, body []byte, adjustedClose bool) (*types.PriceSeries, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s chart response: %w", symbol, err)
	}

	chart := v.Get("chart")
	if chart == nil {
		return nil, fmt.Errorf("unexpected %s chart response: missing chart field", symbol)
	}

	if e := chart.Get("error"); e != nil && e.Type() != fastjson.TypeNull {
		code := string(e.GetStringBytes("code"))
		if code == "Not Found" {
			return nil, types.ErrNoData
		}
		return nil, fmt.Errorf("yahoo chart error %s: %s", code, e.GetStringBytes("description"))
	}

	results := chart.GetArray("result")
	if len(results) == 0 {
		return nil, types.ErrNoData
	}

	result := results[0]
	loc := time.UTC
	if tz := string(result.GetStringBytes("meta", "exchangeTimezoneName")); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	timestamps := result.GetArray("timestamp")
	quote := result.Get("indicators", "quote", "0")
	if len(timestamps) == 0 || quote == nil {
		return nil, types.ErrNoData
	}

	opens := quote.GetArray("open")
	highs := quote.GetArray("high")
	lows := quote.GetArray("low")
	closes := quote.GetArray("close")
	volumes := quote.GetArray("volume")
	if adjustedClose {
		if adj := result.GetArray("indicators", "adjclose", "0", "adjclose"); len(adj) == len(timestamps) {
			closes = adj
		}
	}

	series := types.NewPriceSeries(symbol)
	for i, ts := range timestamps {
		closePrice, ok := floatAt(closes, i)
		if !ok {
			continue
		}

		bar := types.PriceBar{
			Time:  tradingDate(time.Unix(ts.GetInt64(), 0), loc),
			Close: closePrice,
		}
		bar.Open, _ = floatAt(opens, i)
		bar.High, _ = floatAt(highs, i)
		bar.Low, _ = floatAt(lows, i)
		bar.Volume, _ = floatAt(volumes, i)

		if n := len(series.Bars); n > 0 && !bar.Time.After(series.Bars[n-1].Time) {
			// the live quote of the current session can repeat the last date
			series.Bars[n-1] = bar
			continue
		}

		series.Bars = append(series.Bars, bar)
	}

	if series.Len() == 0 {
		return nil, types.ErrNoData
	}

	return series, nil
}

func floatAt(values []*fastjson.Value, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil || values[i].Type() != fastjson.TypeNumber {
		return 0, false
	}
	return values[i].GetFloat64(), true
}

// tradingDate maps the bar timestamp to midnight UTC of its date in the exchange time zone.
func tradingDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
