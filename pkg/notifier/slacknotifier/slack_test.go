package slacknotifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainText string

func (p plainText) PlainText() string {
	return string(p)
}

func Test_filterSlackAttachments(t *testing.T) {
	attachments, args := filterSlackAttachments([]interface{}{
		"AAPL", 3, slack.Attachment{Title: "a"}, &slack.Attachment{Title: "b"}, plainText("c"),
	})

	assert.Equal(t, []interface{}{"AAPL", 3}, args)
	require.Len(t, attachments, 3)
	assert.Equal(t, "a", attachments[0].Title)
	assert.Equal(t, "b", attachments[1].Title)
	assert.Equal(t, "c", attachments[2].Title)
}

func TestNotifier_Notify(t *testing.T) {
	var mu sync.Mutex
	var forms []map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "chat.postMessage") {
			http.NotFound(w, r)
			return
		}

		_ = r.ParseForm()
		mu.Lock()
		forms = append(forms, r.PostForm)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	client := slack.New("xoxb-test", slack.OptionAPIURL(server.URL+"/"))
	notifier := New(client, "#stocks")

	notifier.Notify("%d tickers ranked", 2, slack.Attachment{Title: "AAPL"}, slack.Attachment{Title: "MSFT"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, notifier.Flush(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, forms, 1)
	assert.Equal(t, "#stocks", forms[0]["channel"][0])
	assert.Equal(t, "2 tickers ranked", forms[0]["text"][0])
	assert.Contains(t, forms[0]["attachments"][0], "MSFT")
}
