package cmdutil

import "github.com/spf13/pflag"

// PersistentFlags defines the flags shared by every command
func PersistentFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file, defaults to pythia.yaml when it exists")
	flags.String("graphs-dir", "", "the directory of the rendered charts")
	flags.String("db-driver", "", "price history database driver: sqlite3, mysql or postgres")
	flags.String("db-dsn", "", "price history database dsn")
	flags.String("slack-token", "", "slack bot token for the ranking digest")
	flags.String("slack-channel", "", "slack channel for the ranking digest")
}

// SourceFlags defines the flags selecting the price source
func SourceFlags(flags *pflag.FlagSet) {
	flags.StringSlice("tickers", nil, "tickers to process, defaults to the Dow Jones 30")
	flags.String("lookback", "", "price history to fetch, e.g. 134d, 20w")
	flags.String("source", "", "price source: yahoo or csv")
	flags.String("csv-dir", "", "the directory of <SYMBOL>.csv files for the csv source")
}
