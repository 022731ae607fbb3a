package cmdutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/pythia/pkg/config"
	"github.com/c9s/pythia/pkg/datasource/csvsource"
	"github.com/c9s/pythia/pkg/datasource/yahoo"
	"github.com/c9s/pythia/pkg/notifier"
	"github.com/c9s/pythia/pkg/notifier/slacknotifier"
)

func TestNewPriceSource(t *testing.T) {
	conf := config.Default()

	source, err := NewPriceSource(conf)
	require.NoError(t, err)
	assert.IsType(t, &yahoo.Source{}, source)

	conf.Source = config.SourceCSV
	source, err = NewPriceSource(conf)
	require.NoError(t, err)
	if assert.IsType(t, &csvsource.Source{}, source) {
		assert.Equal(t, "data", source.(*csvsource.Source).Dir)
	}

	conf.Source = "bloomberg"
	_, err = NewPriceSource(conf)
	assert.Error(t, err)
}

func TestNewEnvironment(t *testing.T) {
	ctx := context.Background()

	conf := config.Default()
	environ, err := NewEnvironment(ctx, conf)
	require.NoError(t, err)
	assert.Nil(t, environ.Cache)
	assert.Equal(t, environ.Upstream, environ.Source)
	assert.IsType(t, &notifier.NullNotifier{}, environ.Notifier)
	assert.NoError(t, environ.Close(ctx))

	conf.Database = &config.Database{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "pythia.sqlite3")}
	conf.Slack = &config.Slack{Token: "xoxb-test", Channel: "#stocks", TopN: 5}
	environ, err = NewEnvironment(ctx, conf)
	require.NoError(t, err)
	defer environ.Close(ctx)

	require.NotNil(t, environ.Cache)
	assert.Equal(t, "yahoo+db", environ.Source.Name())
	assert.IsType(t, &slacknotifier.Notifier{}, environ.Notifier)

	gen := environ.NewGenerator()
	assert.Equal(t, environ.Source, gen.Source)
	assert.Equal(t, environ.Notifier, gen.Notifier)
}

func TestLoadConfig_Overrides(t *testing.T) {
	defer viper.Reset()

	dir := t.TempDir()
	viper.Set("config", filepath.Join("..", "..", "config", "testdata", "pythia.yaml"))
	viper.Set("tickers", []string{"aapl,msft", "ko"})
	viper.Set("lookback", "20w")
	viper.Set("graphs-dir", dir)
	viper.Set("db-driver", "sqlite3")
	viper.Set("db-dsn", ":memory:")

	conf, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "KO"}, conf.Symbols())
	assert.Equal(t, "140d", conf.Lookback.String())
	assert.Equal(t, dir, conf.GraphsDir)
	if assert.NotNil(t, conf.Database) {
		assert.Equal(t, "sqlite3", conf.Database.Driver)
	}
}

func TestLoadConfig_InvalidLookback(t *testing.T) {
	defer viper.Reset()

	viper.Set("config", filepath.Join("..", "..", "config", "testdata", "pythia.yaml"))
	viper.Set("lookback", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}
