package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	config, err := Load("testdata/pythia.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT", "KO"}, config.Symbols())
	assert.Equal(t, 30, config.Window)
	assert.Equal(t, 200*24*time.Hour, config.Lookback.Duration())
	assert.Equal(t, "/tmp/pythia/graphs", config.GraphsDir)
	assert.Equal(t, 3*time.Second, config.SlideDelay.Duration())
	assert.Equal(t, 8, config.Concurrency)
	assert.Equal(t, 1600, config.Chart.Width)
	assert.Equal(t, 120.0, config.Chart.DPI)
	assert.Equal(t, "0 */30 * * * *", config.Schedule)

	if assert.NotNil(t, config.Database) {
		assert.Equal(t, "sqlite3", config.Database.Driver)
	}

	if assert.NotNil(t, config.Slack) {
		assert.Equal(t, "#stocks", config.Slack.Channel)
		assert.Equal(t, 5, config.Slack.TopN, "topN falls back to the default")
	}
}

func TestParse_Defaults(t *testing.T) {
	config, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Len(t, config.Symbols(), 30)
	assert.Equal(t, 20, config.Window)
	assert.Equal(t, 134*24*time.Hour, config.Lookback.Duration())
	assert.Equal(t, "graphs", config.GraphsDir)
	assert.Equal(t, 5*time.Second, config.SlideDelay.Duration())
	assert.Equal(t, 1024, config.Chart.Width)
	assert.Equal(t, 768, config.Chart.Height)
	assert.Equal(t, SourceYahoo, config.Source)
	assert.Nil(t, config.Database)
	assert.Nil(t, config.Slack)
}

func TestParse_Tickers(t *testing.T) {
	config, err := Parse([]byte("tickers: ibm, v ,CAT\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"IBM", "V", "CAT"}, config.Symbols())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty tickers", "tickers: []\n"},
		{"window", "window: 1\n"},
		{"source", "source: bloomberg\n"},
		{"rate limit", "rateLimit: fast\n"},
		{"csv without dir", "source: csv\ncsvDir: \"\"\n"},
		{"database without dsn", "database:\n  driver: mysql\n"},
		{"lookback", "lookback: later\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
