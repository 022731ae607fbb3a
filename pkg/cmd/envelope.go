package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/c9s/pythia/pkg/chart"
	"github.com/c9s/pythia/pkg/datasource/csvsource"
	"github.com/c9s/pythia/pkg/indicator/envelope"
	"github.com/c9s/pythia/pkg/style"
)

func init() {
	envelopeCmd.Flags().String("csv", "", "the csv file of the price series, Date,Open,High,Low,Close,Adj Close,Volume")
	envelopeCmd.Flags().Int("window", envelope.DefaultWindow, "rolling window size")
	envelopeCmd.Flags().String("output", "", "also render the chart into this png file")
	RootCmd.AddCommand(envelopeCmd)
}

// go run ./cmd/pythia envelope --csv data/AAPL.csv --window 20
var envelopeCmd = &cobra.Command{
	Use:          "envelope --csv FILE [--window 20]",
	Short:        "print the bollinger envelope and the signals of a csv price series",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		csvFile, err := cmd.Flags().GetString("csv")
		if err != nil {
			return err
		}

		if csvFile == "" {
			return fmt.Errorf("--csv option is required")
		}

		window, err := cmd.Flags().GetInt("window")
		if err != nil {
			return err
		}

		if window < 2 {
			return fmt.Errorf("--window must be at least 2, got %d", window)
		}

		series, err := csvsource.ReadPriceSeriesFromCSV(csvFile)
		if err != nil {
			return fmt.Errorf("can not read %s: %w", csvFile, err)
		}

		env := envelope.Calculate(series.Closes(), window)

		t := style.NewTable(os.Stdout, chart.Title(series.Symbol),
			table.Row{"Date", "Close", "Mean", "Up 2σ", "Down 2σ", "Up 3σ", "Down 3σ", "Signal"},
			2, 3, 4, 5, 6, 7)

		signals := make(map[int]envelope.SignalKind)
		for _, s := range env.Signals {
			signals[s.Index] = s.Kind
		}

		for i, bar := range series.Bars {
			signal := "-"
			if kind, ok := signals[i]; ok {
				signal = style.SignalText(kind)
			}

			t.AppendRow(table.Row{
				bar.Time.Format("2006-01-02"),
				fmt.Sprintf("%.2f", bar.Close),
				formatValue(env.Mean[i]),
				formatValue(env.UpBand2[i]),
				formatValue(env.DownBand2[i]),
				formatValue(env.UpBand3[i]),
				formatValue(env.DownBand3[i]),
				signal,
			})
		}

		t.Render()

		if env.Deviation.Valid {
			fmt.Printf("%s deviation from the rolling mean: %.4f, %d signals\n", series.Symbol, env.Deviation.Float64, len(env.Signals))
		} else {
			fmt.Printf("%s has less than %d samples, not ranked\n", series.Symbol, window)
		}

		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		if output != "" {
			if err := chart.SaveFile(output, series, env, chart.DefaultOptions()); err != nil {
				return err
			}

			log.Infof("chart saved to %s", output)
		}

		return nil
	},
}

func formatValue(v envelope.Value) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
