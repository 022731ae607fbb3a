package cmdutil

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/c9s/pythia/pkg/config"
	"github.com/c9s/pythia/pkg/types"
)

// LoadConfig loads the config file given by --config, or pythia.yaml when it exists, and applies the
// flag and PYTHIA_* env var overrides on top of it.
func LoadConfig() (*config.Config, error) {
	conf := config.Default()

	configFile := viper.GetString("config")
	if configFile == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			configFile = config.DefaultConfigFile
		}
	}

	if configFile != "" {
		var err error
		conf, err = config.Load(configFile)
		if err != nil {
			return nil, errors.Wrapf(err, "can not load config file %s", configFile)
		}

		log.Infof("loaded config file %s", configFile)
	}

	if err := applyOverrides(conf); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func applyOverrides(conf *config.Config) error {
	if tickers := viper.GetStringSlice("tickers"); len(tickers) > 0 {
		conf.Tickers = nil
		for _, t := range tickers {
			conf.Tickers = append(conf.Tickers, strings.Split(t, ",")...)
		}
	}

	if s := viper.GetString("lookback"); s != "" {
		d, err := types.ParseDuration(s)
		if err != nil {
			return errors.Wrapf(err, "invalid lookback %q", s)
		}
		conf.Lookback = types.Duration(d)
	}

	if w := viper.GetInt("window"); w > 0 {
		conf.Window = w
	}

	if s := viper.GetString("source"); s != "" {
		conf.Source = s
	}

	if s := viper.GetString("csv-dir"); s != "" {
		conf.CSVDir = s
	}

	if s := viper.GetString("graphs-dir"); s != "" {
		conf.GraphsDir = s
	}

	if s := viper.GetString("schedule"); s != "" {
		conf.Schedule = s
	}

	if driver, dsn := viper.GetString("db-driver"), viper.GetString("db-dsn"); driver != "" || dsn != "" {
		conf.Database = &config.Database{Driver: driver, DSN: dsn}
	}

	token := viper.GetString("slack-token")
	if token == "" {
		token = os.Getenv("SLACK_TOKEN")
	}

	if token != "" || viper.GetString("slack-channel") != "" {
		if conf.Slack == nil {
			conf.Slack = &config.Slack{}
		}

		if token != "" {
			conf.Slack.Token = token
		}

		if ch := viper.GetString("slack-channel"); ch != "" {
			conf.Slack.Channel = ch
		}
	}

	return nil
}
