package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/c9s/requestgen"
	"golang.org/x/time/rate"
)

const baseURL = "https://query1.finance.yahoo.com"

const defaultHTTPTimeout = 15 * time.Second

// the chart endpoint rejects requests without a browser-like user agent
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type RestClient struct {
	BaseURL *url.URL
	Client  *http.Client

	limiter *rate.Limiter
}

func New() *RestClient {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(err)
	}

	return &RestClient{
		BaseURL: u,
		Client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
}

// SetRateLimiter replaces the client side request limiter, nil disables it.
func (c *RestClient) SetRateLimiter(limiter *rate.Limiter) {
	c.limiter = limiter
}

func (c *RestClient) NewRequest(ctx context.Context, method string, refURL string, params url.Values, payload interface{}) (*http.Request, error) {
	rel, err := url.Parse(refURL)
	if err != nil {
		return nil, err
	}

	if params != nil {
		rel.RawQuery = params.Encode()
	}

	pathURL := c.BaseURL.ResolveReference(rel)

	body, err := castPayload(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, pathURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *RestClient) SendRequest(req *http.Request) (*requestgen.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	response, err := requestgen.NewResponse(resp)
	if err != nil {
		return response, err
	}

	if response.IsError() {
		return response, &APIError{
			StatusCode: response.StatusCode,
			Body:       string(response.Body),
		}
	}

	return response, nil
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo api error: status %d: %s", e.StatusCode, e.Body)
}

func castPayload(payload interface{}) ([]byte, error) {
	if payload != nil {
		switch v := payload.(type) {
		case string:
			return []byte(v), nil

		case []byte:
			return v, nil

		default:
			body, err := json.Marshal(v)
			return body, err
		}
	}

	return nil, nil
}
