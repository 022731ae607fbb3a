package httptesting

import (
	"encoding/json"
	"net/http"
	"os"
)

// EchoSave replies every request with the same content.
type EchoSave struct {
	// saveTo is the address of a caller's variable which receives the last *http.Request
	saveTo     **http.Request
	content    string
	statusCode int
	err        error
}

func (st *EchoSave) RoundTrip(req *http.Request) (*http.Response, error) {
	if st.saveTo != nil {
		*st.saveTo = req
	}

	if st.err != nil {
		return nil, st.err
	}

	statusCode := st.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	resp := BuildResponseString(statusCode, st.content)
	SetHeader(resp, "Content-Type", "application/json")
	return resp, nil
}

func HttpClientFromFile(filename string) *http.Client {
	rawBytes, err := os.ReadFile(filename)
	transport := EchoSave{err: err, content: string(rawBytes)}
	return &http.Client{Transport: &transport}
}

func HttpClientWithContent(content string) *http.Client {
	transport := EchoSave{content: content}
	return &http.Client{Transport: &transport}
}

func HttpClientWithStatus(statusCode int, content string) *http.Client {
	transport := EchoSave{statusCode: statusCode, content: content}
	return &http.Client{Transport: &transport}
}

func HttpClientWithError(err error) *http.Client {
	transport := EchoSave{err: err}
	return &http.Client{Transport: &transport}
}

func HttpClientWithJson(jsonData interface{}) *http.Client {
	jsonBytes, err := json.Marshal(jsonData)
	transport := EchoSave{err: err, content: string(jsonBytes)}
	return &http.Client{Transport: &transport}
}

// HttpClientSaver stores the last request in saved.
func HttpClientSaver(saved **http.Request, content string) *http.Client {
	transport := EchoSave{saveTo: saved, content: content}
	return &http.Client{Transport: &transport}
}
