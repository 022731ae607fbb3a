package httptesting

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

func BuildResponse(code int, payload []byte) *http.Response {
	return &http.Response{
		StatusCode:    code,
		Status:        http.StatusText(code),
		Header:        http.Header{},
		Body:          io.NopCloser(bytes.NewReader(payload)),
		ContentLength: int64(len(payload)),
	}
}

func BuildResponseString(code int, payload string) *http.Response {
	return BuildResponse(code, []byte(payload))
}

func BuildResponseJson(code int, payload interface{}) *http.Response {
	data, err := json.Marshal(payload)
	if err != nil {
		return BuildResponseString(http.StatusInternalServerError, `{"error": "httptesting.BuildResponseJson error"}`)
	}

	resp := BuildResponse(code, data)
	SetHeader(resp, "Content-Type", "application/json")
	return resp
}

func SetHeader(resp *http.Response, key string, value string) *http.Response {
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	resp.Header.Set(key, value)
	return resp
}
