package yahoo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/c9s/pythia/pkg/types"
)

const (
	IntervalDay  = "1d"
	IntervalWeek = "1wk"
)

// ChartRequest queries GET /v8/finance/chart/{symbol}
type ChartRequest struct {
	client *RestClient

	symbol        string
	period1       time.Time
	period2       time.Time
	interval      string
	adjustedClose bool
}

func (c *RestClient) NewChartRequest() *ChartRequest {
	return &ChartRequest{
		client:   c,
		interval: IntervalDay,
	}
}

func (r *ChartRequest) Symbol(symbol string) *ChartRequest {
	r.symbol = symbol
	return r
}

func (r *ChartRequest) Since(t time.Time) *ChartRequest {
	r.period1 = t
	return r
}

func (r *ChartRequest) Until(t time.Time) *ChartRequest {
	r.period2 = t
	return r
}

func (r *ChartRequest) Interval(interval string) *ChartRequest {
	r.interval = interval
	return r
}

// AdjustedClose makes the bars carry the split and dividend adjusted close.
func (r *ChartRequest) AdjustedClose(b bool) *ChartRequest {
	r.adjustedClose = b
	return r
}

func (r *ChartRequest) GetQueryParameters() url.Values {
	params := url.Values{}
	if !r.period1.IsZero() {
		params.Set("period1", strconv.FormatInt(r.period1.Unix(), 10))
	}
	if !r.period2.IsZero() {
		params.Set("period2", strconv.FormatInt(r.period2.Unix(), 10))
	}
	params.Set("interval", r.interval)
	params.Set("events", "history")
	params.Set("includeAdjustedClose", strconv.FormatBool(r.adjustedClose))
	return params
}

func (r *ChartRequest) GetPath() string {
	return "/v8/finance/chart/" + url.PathEscape(r.symbol)
}

func (r *ChartRequest) Do(ctx context.Context) (*types.PriceSeries, error) {
	req, err := r.client.NewRequest(ctx, http.MethodGet, r.GetPath(), r.GetQueryParameters(), nil)
	if err != nil {
		return nil, err
	}

	response, err := r.client.SendRequest(req)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, types.ErrNoData
		}
		return nil, err
	}

	return ParseChartResponse(r.symbol, response.Body, r.adjustedClose)
}
