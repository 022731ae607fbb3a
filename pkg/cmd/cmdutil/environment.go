package cmdutil

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"go.uber.org/multierr"

	"github.com/c9s/pythia/pkg/config"
	"github.com/c9s/pythia/pkg/datasource/csvsource"
	"github.com/c9s/pythia/pkg/datasource/yahoo"
	"github.com/c9s/pythia/pkg/generator"
	"github.com/c9s/pythia/pkg/market"
	"github.com/c9s/pythia/pkg/notifier"
	"github.com/c9s/pythia/pkg/notifier/slacknotifier"
	"github.com/c9s/pythia/pkg/service"
	"github.com/c9s/pythia/pkg/types"
	"github.com/c9s/pythia/pkg/util"
)

// Environment holds the configured price source, the optional database cache and the notifier.
type Environment struct {
	Config   *config.Config
	Calendar *market.Calendar

	// Upstream is the source before caching
	Upstream types.PriceSource

	// Source is the cached source when a database is configured, the upstream otherwise
	Source types.PriceSource

	Cache    *service.CachedSource
	Database *service.DatabaseService
	Notifier notifier.Notifier
}

func NewEnvironment(ctx context.Context, conf *config.Config) (*Environment, error) {
	environ := &Environment{
		Config:   conf,
		Calendar: market.NewYorkStockExchange(),
		Notifier: &notifier.NullNotifier{},
	}

	upstream, err := NewPriceSource(conf)
	if err != nil {
		return nil, err
	}

	environ.Upstream = upstream
	environ.Source = upstream

	if conf.Database != nil {
		db, err := ConnectDatabase(ctx, conf.Database)
		if err != nil {
			return nil, err
		}

		environ.Database = db
		environ.Cache = service.NewCachedSource(upstream, &service.PriceService{DB: db.DB}, environ.Calendar)
		environ.Source = environ.Cache
	}

	if conf.Slack != nil && conf.Slack.Token != "" && conf.Slack.Channel != "" {
		client := slack.New(conf.Slack.Token)
		environ.Notifier = slacknotifier.New(client, conf.Slack.Channel)
		log.Infof("slack notifier enabled, channel %s, token %s", conf.Slack.Channel, util.MaskKey(conf.Slack.Token))
	}

	return environ, nil
}

// NewGenerator creates a generator wired to the environment source and notifier.
func (e *Environment) NewGenerator() *generator.Generator {
	gen := generator.New(e.Source, e.Config)
	gen.Calendar = e.Calendar
	gen.Notifier = e.Notifier
	return gen
}

// Close flushes the pending notifications and closes the database.
func (e *Environment) Close(ctx context.Context) error {
	var err error
	err = multierr.Append(err, e.Notifier.Flush(ctx))
	if e.Database != nil {
		err = multierr.Append(err, e.Database.Close())
	}
	return err
}

// NewPriceSource creates the upstream price source selected by the config.
func NewPriceSource(conf *config.Config) (types.PriceSource, error) {
	switch conf.Source {

	case config.SourceYahoo:
		limiter, err := util.ParseRateLimitSyntax(conf.RateLimit)
		if err != nil {
			return nil, err
		}

		client := yahoo.New()
		client.SetRateLimiter(limiter)

		source := yahoo.NewSource(client)
		source.AdjustedClose = conf.AdjustedClose
		return source, nil

	case config.SourceCSV:
		return csvsource.NewSource(conf.CSVDir), nil

	default:
		return nil, fmt.Errorf("unsupported price source: %s", conf.Source)

	}
}
