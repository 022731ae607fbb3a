package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PingUntil calls callback once the server at baseURL answers the ping endpoint.
func PingUntil(ctx context.Context, baseURL string, callback func()) {
	pingURL := baseURL + "/api/ping"
	timeout := time.NewTimer(time.Minute)
	defer timeout.Stop()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {

		case <-timeout.C:
			logrus.Warnf("ping hits 1 minute timeout")
			return

		case <-ctx.Done():
			return

		case <-ticker.C:
			var response map[string]interface{}
			var err = getJSON(pingURL, &response)
			if err == nil {
				callback()
				return
			}
		}
	}
}

// PingAndOpenURL opens the slideshow in the default browser once the server is up.
func PingAndOpenURL(ctx context.Context, baseURL string) {
	go PingUntil(ctx, baseURL, func() {
		if err := OpenURL(baseURL + "/"); err != nil {
			logrus.WithError(err).Errorf("can not call open command to open the web page")
		}
	})
}

var httpClient = &http.Client{Timeout: 3 * time.Second}

func getJSON(url string, data interface{}) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(data)
}

func OpenURL(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
