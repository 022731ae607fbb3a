package yahoo

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/pythia/pkg/testing/httptesting"
	"github.com/c9s/pythia/pkg/types"
	"github.com/c9s/pythia/pkg/util/backoff"
)

func newTestClient(httpClient *http.Client) *RestClient {
	client := New()
	client.Client = httpClient
	client.SetRateLimiter(nil)
	return client
}

func TestChartRequest_Do(t *testing.T) {
	content, err := os.ReadFile("testdata/chart_aapl.json")
	require.NoError(t, err)

	var req *http.Request
	client := newTestClient(httptesting.HttpClientSaver(&req, string(content)))

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	series, err := client.NewChartRequest().Symbol("AAPL").Since(since).Until(until).Do(context.Background())
	require.NoError(t, err)

	require.NotNil(t, req)
	assert.Equal(t, "/v8/finance/chart/AAPL", req.URL.Path)
	assert.Equal(t, "1704067200", req.URL.Query().Get("period1"))
	assert.Equal(t, "1704499200", req.URL.Query().Get("period2"))
	assert.Equal(t, "1d", req.URL.Query().Get("interval"))
	assert.NotEmpty(t, req.Header.Get("User-Agent"))

	assert.Equal(t, "AAPL", series.Symbol)
	// the bar with a null close is skipped
	require.Equal(t, 4, series.Len())
	assert.Equal(t, []float64{185.64, 184.25, 181.91, 181.18}, series.Closes())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series.Bars[0].Time)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), series.Bars[3].Time)
	assert.Equal(t, 187.15, series.Bars[0].Open)
	assert.Equal(t, 82488700.0, series.Bars[0].Volume)
	assert.NoError(t, series.Validate())
}

func TestChartRequest_AdjustedClose(t *testing.T) {
	client := newTestClient(httptesting.HttpClientFromFile("testdata/chart_aapl.json"))
	series, err := client.NewChartRequest().Symbol("AAPL").AdjustedClose(true).Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{184.73, 183.35, 181.02, 180.29}, series.Closes())
}

func TestChartRequest_NotFound(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	client := newTestClient(httptesting.HttpClientWithStatus(http.StatusNotFound, body))

	_, err := client.NewChartRequest().Symbol("XXXX").Do(context.Background())
	assert.ErrorIs(t, err, types.ErrNoData)
}

func TestParseChartResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		bars    int
	}{
		{
			name:    "empty result",
			body:    `{"chart":{"result":[],"error":null}}`,
			wantErr: types.ErrNoData,
		},
		{
			name:    "no timestamps",
			body:    `{"chart":{"result":[{"meta":{},"indicators":{"quote":[{}]}}],"error":null}}`,
			wantErr: types.ErrNoData,
		},
		{
			name:    "all closes null",
			body:    `{"chart":{"result":[{"timestamp":[1704205800],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`,
			wantErr: types.ErrNoData,
		},
		{
			name: "one bar",
			body: `{"chart":{"result":[{"timestamp":[1704205800],"indicators":{"quote":[{"close":[10.5]}]}}],"error":null}}`,
			bars: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := ParseChartResponse("KO", []byte(tt.body), false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bars, series.Len())
		})
	}
}

func TestParseChartResponse_Errors(t *testing.T) {
	_, err := ParseChartResponse("KO", []byte(`{`), false)
	assert.Error(t, err)

	_, err = ParseChartResponse("KO", []byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`), false)
	if assert.Error(t, err) {
		assert.False(t, errors.Is(err, types.ErrNoData))
		assert.Contains(t, err.Error(), "Invalid input")
	}
}

func TestSource_QueryPriceSeries(t *testing.T) {
	source := NewSource(newTestClient(httptesting.HttpClientFromFile("testdata/chart_aapl.json")))
	assert.Equal(t, "yahoo", source.Name())

	series, err := source.QueryPriceSeries(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, series.Len())
}

func TestSource_QueryPriceSeries_NoData(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`
	source := NewSource(newTestClient(httptesting.HttpClientWithStatus(http.StatusNotFound, body)))

	start := time.Now()
	_, err := source.QueryPriceSeries(context.Background(), "DELISTED", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, types.ErrNoData)
	// no data is permanent, it must not be retried
	assert.Less(t, time.Since(start), time.Second)
}

func withMaxRetries(t *testing.T, n uint64) {
	orig := backoff.MaxRetries
	backoff.MaxRetries = n
	t.Cleanup(func() { backoff.MaxRetries = orig })
}

func TestSource_QueryPriceSeries_Retry(t *testing.T) {
	withMaxRetries(t, 3)

	content, err := os.ReadFile("testdata/chart_aapl.json")
	require.NoError(t, err)

	calls := 0
	transport := &httptesting.MockTransport{}
	transport.GET("/v8/finance/chart/AAPL", func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return httptesting.BuildResponseString(http.StatusBadGateway, `bad gateway`), nil
		}

		return httptesting.SetHeader(httptesting.BuildResponse(http.StatusOK, content), "Content-Type", "application/json"), nil
	})

	source := NewSource(newTestClient(&http.Client{Transport: transport}))
	series, err := source.QueryPriceSeries(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, series.Len())
	assert.Equal(t, 2, transport.Requests["/v8/finance/chart/AAPL"], "one retry after the 5xx reply")
}

func TestSource_QueryPriceSeries_ClientErrorIsPermanent(t *testing.T) {
	withMaxRetries(t, 3)

	transport := &httptesting.MockTransport{}
	transport.GET("/v8/finance/chart/KO", func(req *http.Request) (*http.Response, error) {
		return httptesting.BuildResponseJson(http.StatusBadRequest, map[string]interface{}{
			"chart": map[string]interface{}{"result": nil, "error": map[string]string{"code": "Bad Request"}},
		}), nil
	})

	source := NewSource(newTestClient(&http.Client{Transport: transport}))
	_, err := source.QueryPriceSeries(context.Background(), "KO", time.Time{}, time.Time{})

	var apiErr *APIError
	if assert.ErrorAs(t, err, &apiErr) {
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	}
	assert.Equal(t, 1, transport.Requests["/v8/finance/chart/KO"])
}

func TestSource_QueryPriceSeries_TransportError(t *testing.T) {
	withMaxRetries(t, 1)

	source := NewSource(newTestClient(httptesting.HttpClientWithError(errors.New("connection reset"))))
	_, err := source.QueryPriceSeries(context.Background(), "KO", time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "connection reset")
}

func TestSource_QueryPriceSeries_JsonReply(t *testing.T) {
	reply := map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []interface{}{
				map[string]interface{}{
					"timestamp": []int64{1704205800, 1704292200},
					"indicators": map[string]interface{}{
						"quote": []interface{}{
							map[string]interface{}{"close": []float64{58.5, 58.9}},
						},
					},
				},
			},
			"error": nil,
		},
	}

	source := NewSource(newTestClient(httptesting.MockWithJsonReply("/v8/finance/chart/KO", reply)))
	series, err := source.QueryPriceSeries(context.Background(), "KO", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []float64{58.5, 58.9}, series.Closes())
}

func TestChartRequest_Payloads(t *testing.T) {
	client := newTestClient(httptesting.HttpClientWithContent(`{"chart":{"result":[],"error":null}}`))
	_, err := client.NewChartRequest().Symbol("KO").Do(context.Background())
	assert.ErrorIs(t, err, types.ErrNoData)

	client = newTestClient(httptesting.HttpClientWithJson(map[string]interface{}{
		"chart": map[string]interface{}{
			"result": nil,
			"error":  map[string]string{"code": "Bad Request", "description": "Invalid input"},
		},
	}))
	_, err = client.NewChartRequest().Symbol("KO").Do(context.Background())
	assert.ErrorContains(t, err, "Invalid input")
}
