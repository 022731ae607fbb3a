package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/c9s/pythia/pkg/chart"
	"github.com/c9s/pythia/pkg/config"
	"github.com/c9s/pythia/pkg/indicator/envelope"
	"github.com/c9s/pythia/pkg/market"
	"github.com/c9s/pythia/pkg/metrics"
	"github.com/c9s/pythia/pkg/notifier"
	"github.com/c9s/pythia/pkg/ranking"
	"github.com/c9s/pythia/pkg/types"
)

var log = logrus.WithField("component", "generator")

// ErrNoSlides is returned when no ticker could be ranked, there is nothing to show.
var ErrNoSlides = errors.New("no ticker has enough price history to rank")

// Generator fetches the price history of every ticker, renders the charts into the graphs directory
// and ranks the tickers by the distance of the last close from the rolling mean.
type Generator struct {
	Source   types.PriceSource
	Config   *config.Config
	Calendar *market.Calendar
	Notifier notifier.Notifier

	// Progress shows a progress bar on the terminal
	Progress bool

	// Force renders every chart even when it is fresh
	Force bool

	now func() time.Time
}

func New(source types.PriceSource, conf *config.Config) *Generator {
	return &Generator{
		Source:   source,
		Config:   conf,
		Calendar: market.NewYorkStockExchange(),
		Notifier: &notifier.NullNotifier{},
		now:      time.Now,
	}
}

type result struct {
	entry ranking.Entry
	err   error
}

// Generate processes the symbols concurrently. Tickers without data are skipped and other per ticker
// failures do not stop the rest: the report is returned together with the aggregated error.
// ErrNoSlides is returned when nothing could be ranked.
func (g *Generator) Generate(ctx context.Context, symbols []string) (*Report, error) {
	now := g.now()
	graphsDir := g.Config.GraphsDir

	previous := make(map[string]ranking.Entry)
	if index, err := LoadIndex(graphsDir); err == nil {
		if index.Window == g.Config.Window && index.Lookback == g.Config.Lookback {
			for _, s := range index.Slides {
				previous[s.Symbol] = s
			}
		} else {
			log.Infof("window or lookback changed since run %s, rendering every chart", index.RunID)
		}
	} else if !os.IsNotExist(errors.Cause(err)) {
		log.WithError(err).Warnf("unable to load the previous index")
	}

	var bar *pb.ProgressBar
	if g.Progress {
		bar = pb.Full.Start(len(symbols))
		bar.SetTemplateString(`{{ string . "log" | green}} | {{counters . }} {{bar . }} {{percent . }} {{etime . }}`)
	}

	results := make([]result, len(symbols))

	eg, egCtx := errgroup.WithContext(ctx)
	if g.Config.Concurrency > 0 {
		eg.SetLimit(g.Config.Concurrency)
	}

	var barMu sync.Mutex
	for i, symbol := range symbols {
		i, symbol := i, symbol
		eg.Go(func() error {
			var prev *ranking.Entry
			if p, ok := previous[symbol]; ok {
				prev = &p
			}

			entry, err := g.generateOne(egCtx, symbol, prev, now)
			results[i] = result{entry: entry, err: err}

			if bar != nil {
				barMu.Lock()
				bar.Set("log", symbol)
				bar.Increment()
				barMu.Unlock()
			}

			// a failed ticker never cancels the others
			return nil
		})
	}

	_ = eg.Wait()
	if bar != nil {
		bar.Finish()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:  uuid.New().String(),
		Time:   now,
		Source: g.Source.Name(),
		Window: g.Config.Window,

		Lookback: g.Config.Lookback,
	}

	var errs error
	var entries []ranking.Entry
	for i, r := range results {
		symbol := symbols[i]
		switch {
		case errors.Is(r.err, types.ErrNoData):
			log.Warnf("%s: no price data, skipped", symbol)
			report.NoData = append(report.NoData, symbol)
			metrics.TickerErrorMetrics.WithLabelValues(symbol, "no_data").Inc()

		case r.err != nil:
			log.WithError(r.err).Errorf("%s: update failed", symbol)
			report.Errors = append(report.Errors, TickerError{Symbol: symbol, Error: r.err.Error()})
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", symbol, r.err))
			metrics.TickerErrorMetrics.WithLabelValues(symbol, "error").Inc()

		case !r.entry.Deviation.Valid:
			log.Warnf("%s: less than %d samples, not ranked", symbol, g.Config.Window)
			report.Unranked = append(report.Unranked, symbol)

		default:
			entries = append(entries, r.entry)
		}
	}

	report.Slides = ranking.Rank(entries)
	metrics.SlidesMetrics.Set(float64(len(report.Slides)))

	// the previous index stays in place, its entries are still reused by the next run
	if len(report.Slides) == 0 {
		return report, ErrNoSlides
	}

	if err := WriteIndex(graphsDir, report); err != nil {
		errs = multierr.Append(errs, err)
	}

	g.notify(report)
	return report, errs
}

// generateOne updates the chart of symbol. A chart that already includes the last completed session
// is reused together with its previous ranking entry.
func (g *Generator) generateOne(ctx context.Context, symbol string, prev *ranking.Entry, now time.Time) (ranking.Entry, error) {
	imagePath := filepath.Join(g.Config.GraphsDir, chart.FileName(symbol))

	if prev != nil && !g.Force {
		if info, err := os.Stat(imagePath); err == nil && g.Calendar.IsFresh(info.ModTime(), now) {
			log.Infof("%s: chart is up to date, reusing it", symbol)
			return *prev, nil
		}
	}

	since := now.Add(-g.Config.Lookback.Duration())

	startTime := time.Now()
	series, err := g.Source.QueryPriceSeries(ctx, symbol, since, time.Time{})
	metrics.FetchDurationMetrics.WithLabelValues(g.Source.Name()).Observe(time.Since(startTime).Seconds())
	if err != nil {
		return ranking.Entry{}, err
	}

	if series.Len() == 0 {
		return ranking.Entry{}, types.ErrNoData
	}

	closes := series.Closes()
	env := envelope.Calculate(closes, g.Config.Window)

	startTime = time.Now()
	if err := chart.SaveFile(imagePath, series, env, g.Config.Chart); err != nil {
		return ranking.Entry{}, err
	}
	metrics.RenderDurationMetrics.Observe(time.Since(startTime).Seconds())

	entry := ranking.NewEntry(symbol, closes, env)
	entry.Image = chart.FileName(symbol)

	metrics.LastCloseMetrics.WithLabelValues(symbol).Set(entry.LastClose)
	metrics.SignalCountMetrics.WithLabelValues(symbol, string(envelope.SignalBuy)).Set(float64(len(env.Buys())))
	metrics.SignalCountMetrics.WithLabelValues(symbol, string(envelope.SignalSell)).Set(float64(len(env.Sells())))
	if entry.Deviation.Valid {
		metrics.DeviationMetrics.WithLabelValues(symbol).Set(entry.Deviation.Float64)
	}

	log.WithFields(logrus.Fields{
		"bars":    series.Len(),
		"signals": len(env.Signals),
	}).Infof("%s: chart rendered", symbol)

	return entry, nil
}

func (g *Generator) notify(report *Report) {
	if g.Notifier == nil {
		return
	}

	topN := len(report.Slides)
	if g.Config.Slack != nil && g.Config.Slack.TopN < topN {
		topN = g.Config.Slack.TopN
	}

	var args []interface{}
	args = append(args, len(report.Slides), topN)
	for _, s := range report.Slides[:topN] {
		args = append(args, s)
	}

	g.Notifier.Notify("pythia ranked %d tickers, top %d by distance from the rolling mean", args...)
}
