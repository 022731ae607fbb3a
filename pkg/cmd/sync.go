package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/c9s/pythia/pkg/cmd/cmdutil"
	"github.com/c9s/pythia/pkg/datasource/csvsource"
	"github.com/c9s/pythia/pkg/types"
)

func init() {
	cmdutil.SourceFlags(SyncCmd.Flags())
	SyncCmd.Flags().String("since", "", "sync from date, yyyy-mm-dd, defaults to now minus the lookback")
	SyncCmd.Flags().String("export-dir", "", "also write the stored history of each ticker to <dir>/<TICKER>.csv for the csv source")
	RootCmd.AddCommand(SyncCmd)
}

var SyncCmd = &cobra.Command{
	Use:          "sync [--tickers=AAPL,MSFT] [--since=yyyy-mm-dd] [--export-dir=data]",
	Short:        "store the price history of the tickers into the database without rendering",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		conf, err := cmdutil.LoadConfig()
		if err != nil {
			return err
		}

		if conf.Database == nil {
			return errors.New("sync requires a database, set --db-driver and --db-dsn or the database section of the config")
		}

		since, err := cmd.Flags().GetString("since")
		if err != nil {
			return err
		}

		exportDir, err := cmd.Flags().GetString("export-dir")
		if err != nil {
			return err
		}

		syncStartTime := time.Now().Add(-conf.Lookback.Duration())
		if len(since) > 0 {
			syncStartTime, err = time.ParseInLocation("2006-01-02", since, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid --since %q: %w", since, err)
			}
		}

		environ, err := cmdutil.NewEnvironment(ctx, conf)
		if err != nil {
			return err
		}

		defer closeEnvironment(environ)

		return syncSymbols(ctx, environ.Cache, conf.Symbols(), syncStartTime, exportDir)
	},
}

type priceStore interface {
	Sync(ctx context.Context, symbol string, since time.Time) (int, error)
	Stored(ctx context.Context, symbol string, since time.Time) (*types.PriceSeries, error)
}

// syncSymbols stores the history of every symbol since the given time. When exportDir is set,
// the stored history is written out in the format the csv source reads.
func syncSymbols(ctx context.Context, store priceStore, symbols []string, since time.Time, exportDir string) error {
	var errs error
	for _, symbol := range symbols {
		n, err := store.Sync(ctx, symbol, since)
		if err != nil {
			if errors.Is(err, types.ErrNoData) {
				log.Warnf("%s: no price data", symbol)
				continue
			}

			errs = multierr.Append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		log.Infof("%s: %d price bars synchronized", symbol, n)

		if len(exportDir) == 0 {
			continue
		}

		series, err := store.Stored(ctx, symbol, since)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		if series.Len() == 0 {
			log.Warnf("%s: nothing stored to export", symbol)
			continue
		}

		if err := csvsource.WritePriceSeries(exportDir, series); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		log.Infof("%s: %d price bars exported to %s", symbol, series.Len(), exportDir)
	}

	return errs
}
