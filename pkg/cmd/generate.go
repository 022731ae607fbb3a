package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c9s/pythia/pkg/cmd/cmdutil"
	"github.com/c9s/pythia/pkg/generator"
	"github.com/c9s/pythia/pkg/ranking"
	"github.com/c9s/pythia/pkg/style"
	"github.com/c9s/pythia/pkg/util"
)

func init() {
	cmdutil.SourceFlags(GenerateCmd.Flags())
	GenerateCmd.Flags().Bool("force", false, "render every chart even when it is fresh")
	GenerateCmd.Flags().Bool("no-progress", false, "hide the progress bar")
	RootCmd.AddCommand(GenerateCmd)
}

// go run ./cmd/pythia generate --tickers=AAPL,MSFT --lookback=134d
var GenerateCmd = &cobra.Command{
	Use:          "generate [--tickers=AAPL,MSFT] [--lookback=134d] [--source=yahoo|csv]",
	Short:        "render the envelope charts and rank the tickers",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		conf, err := cmdutil.LoadConfig()
		if err != nil {
			return err
		}

		environ, err := cmdutil.NewEnvironment(ctx, conf)
		if err != nil {
			return err
		}

		defer closeEnvironment(environ)

		gen := environ.NewGenerator()
		gen.Force = viper.GetBool("force")
		gen.Progress = !viper.GetBool("no-progress")

		report, err := gen.Generate(ctx, conf.Symbols())
		if report != nil {
			printReport(report)
		}

		if err != nil {
			if errors.Is(err, generator.ErrNoSlides) || report == nil {
				return err
			}

			// the per ticker failures are already in the report
			log.WithError(err).Warn("some tickers failed")
		}

		return nil
	},
}

func closeEnvironment(environ *cmdutil.Environment) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	util.LogErr(environ.Close(ctx), "environment close error")
}

func printReport(report *generator.Report) {
	t := style.NewTable(os.Stdout,
		fmt.Sprintf("Ranking %s (window %d)", report.Time.Format(time.RFC822), report.Window),
		table.Row{"#", "Symbol", "Last Close", "Rolling Mean", "Deviation", "Signals", "Last Signal"},
		1, 3, 4, 5, 6)

	for i, entry := range report.Slides {
		t.AppendRow(table.Row{
			i + 1,
			entry.Symbol,
			fmt.Sprintf("%.2f", entry.LastClose),
			fmt.Sprintf("%.2f", entry.LastMean),
			fmt.Sprintf("%.2f", entry.Deviation.Float64),
			entry.Signals,
			lastSignalText(entry),
		})
	}

	t.Render()

	if len(report.Unranked) > 0 {
		fmt.Printf("not enough history to rank: %v\n", report.Unranked)
	}

	if len(report.NoData) > 0 {
		fmt.Printf("no price data: %v\n", report.NoData)
	}

	for _, e := range report.Errors {
		fmt.Printf("%s: %s\n", e.Symbol, e.Error)
	}
}

func lastSignalText(entry ranking.Entry) string {
	if entry.LastSignal == nil {
		return style.SignalText("")
	}

	return fmt.Sprintf("%s %s at %.2f",
		style.SignalEmoji(entry.LastSignal.Kind),
		style.SignalText(entry.LastSignal.Kind),
		entry.LastSignal.Price)
}
