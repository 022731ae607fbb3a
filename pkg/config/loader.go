package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/c9s/pythia/pkg/chart"
	"github.com/c9s/pythia/pkg/indicator/envelope"
	"github.com/c9s/pythia/pkg/slideshow"
	"github.com/c9s/pythia/pkg/types"
	"github.com/c9s/pythia/pkg/util"
)

const DefaultConfigFile = "pythia.yaml"

// DowJones30 are the Dow Jones Industrial Average components, the default ticker list.
var DowJones30 = []string{
	"AAPL", "AMGN", "AXP", "BA", "CAT", "CRM",
	"CSCO", "CVX", "DOW", "DIS", "HD", "HON",
	"GS", "IBM", "INTC", "JNJ", "JPM", "KO",
	"MCD", "MMM", "MRK", "MSFT", "NKE", "PG",
	"TRV", "UNH", "V", "VZ", "WBA", "WMT",
}

const (
	SourceYahoo = "yahoo"
	SourceCSV   = "csv"
)

type Database struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

type Slack struct {
	// Token defaults to the SLACK_TOKEN environment variable
	Token   string `json:"-" yaml:"token"`
	Channel string `json:"channel" yaml:"channel"`

	// TopN is the number of ranked tickers in the digest
	TopN int `json:"topN" yaml:"topN"`
}

type Config struct {
	Tickers StringSlice `json:"tickers" yaml:"tickers"`

	Window   int            `json:"window" yaml:"window"`
	Lookback types.Duration `json:"lookback" yaml:"lookback"`

	GraphsDir  string         `json:"graphsDir" yaml:"graphsDir"`
	SlideDelay types.Duration `json:"slideDelay" yaml:"slideDelay"`
	Chart      chart.Options  `json:"chart" yaml:"chart"`

	Concurrency int `json:"concurrency" yaml:"concurrency"`

	Source        string `json:"source" yaml:"source"`
	CSVDir        string `json:"csvDir" yaml:"csvDir"`
	RateLimit     string `json:"rateLimit" yaml:"rateLimit"`
	AdjustedClose bool   `json:"adjustedClose" yaml:"adjustedClose"`

	Database *Database `json:"database,omitempty" yaml:"database,omitempty"`

	// Schedule is a cron spec for refreshing the charts while the slideshow runs
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`

	Slack *Slack `json:"slack,omitempty" yaml:"slack,omitempty"`
}

func Default() *Config {
	return &Config{
		Tickers:     append(StringSlice(nil), DowJones30...),
		Window:      envelope.DefaultWindow,
		Lookback:    types.Duration(134 * 24 * time.Hour),
		GraphsDir:   "graphs",
		SlideDelay:  types.Duration(slideshow.DefaultDelay),
		Chart:       chart.DefaultOptions(),
		Concurrency: 4,
		Source:      SourceYahoo,
		CSVDir:      "data",
		RateLimit:   "2+2/1s",
	}
}

// Load reads the config file over the defaults.
func Load(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "unable to parse config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Symbols returns the normalized ticker list.
func (c *Config) Symbols() []string {
	return util.NormalizeSymbols(c.Tickers)
}

func (c *Config) Validate() error {
	if len(c.Symbols()) == 0 {
		return errors.New("tickers can not be empty")
	}

	if c.Window < 2 {
		return errors.Errorf("window must be at least 2, got %d", c.Window)
	}

	if c.Lookback.Duration() <= 0 {
		return errors.New("lookback must be positive")
	}

	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}

	if c.SlideDelay.Duration() <= 0 {
		c.SlideDelay = types.Duration(slideshow.DefaultDelay)
	}

	switch c.Source {
	case SourceYahoo:
		if _, err := util.ParseRateLimitSyntax(c.RateLimit); err != nil {
			return errors.Wrapf(err, "invalid rateLimit %q", c.RateLimit)
		}

	case SourceCSV:
		if c.CSVDir == "" {
			return errors.New("csvDir is required by the csv source")
		}

	default:
		return errors.Errorf("unsupported source %q, expecting %s or %s", c.Source, SourceYahoo, SourceCSV)
	}

	if c.Database != nil && (c.Database.Driver == "" || c.Database.DSN == "") {
		return errors.New("database requires both driver and dsn")
	}

	if c.Slack != nil && c.Slack.TopN <= 0 {
		c.Slack.TopN = 5
	}

	return nil
}
