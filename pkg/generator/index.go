package generator

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/c9s/pythia/pkg/ranking"
	"github.com/c9s/pythia/pkg/types"
	"github.com/c9s/pythia/pkg/util"
)

const IndexFile = "index.json"

// the index is replaced by rename, so the lock lives in its own file
const indexLockFile = ".index.lock"

type TickerError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// Report is the result of one generation run, persisted as the index of the graphs directory.
type Report struct {
	RunID  string    `json:"runId"`
	Time   time.Time `json:"time"`
	Source string    `json:"source"`
	Window int       `json:"window"`

	Lookback types.Duration `json:"lookback"`

	// Slides are the ranked tickers, largest deviation first
	Slides []ranking.Entry `json:"slides"`

	// NoData lists the tickers the source returned nothing for
	NoData []string `json:"noData,omitempty"`

	// Unranked lists the tickers with less history than the window
	Unranked []string `json:"unranked,omitempty"`

	Errors []TickerError `json:"errors,omitempty"`
}

func (r *Report) Symbols() []string {
	return ranking.Symbols(r.Slides)
}

// Slide returns the slide of symbol.
func (r *Report) Slide(symbol string) (ranking.Entry, bool) {
	for _, s := range r.Slides {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return ranking.Entry{}, false
}

func IndexPath(graphsDir string) string {
	return filepath.Join(graphsDir, IndexFile)
}

func WriteIndex(graphsDir string, report *Report) error {
	if err := os.MkdirAll(graphsDir, 0755); err != nil {
		return errors.Wrapf(err, "unable to create graph directory %s", graphsDir)
	}

	indexLock := flock.New(filepath.Join(graphsDir, indexLockFile))
	if err := indexLock.Lock(); err != nil {
		log.WithError(err).Errorf("index file lock error while write index: %s", err)
		return err
	}
	defer func() {
		if err := indexLock.Unlock(); err != nil {
			log.WithError(err).Errorf("index file unlock error while write index: %s", err)
		}
	}()

	return util.WriteJsonFile(IndexPath(graphsDir), report)
}

// LoadIndex reads the last report of the graphs directory. A missing index is reported with os.ErrNotExist.
func LoadIndex(graphsDir string) (*Report, error) {
	if _, err := os.Stat(graphsDir); err != nil {
		return nil, err
	}

	indexLock := flock.New(filepath.Join(graphsDir, indexLockFile))
	if err := indexLock.RLock(); err != nil {
		log.WithError(err).Errorf("index file lock error while load index: %s", err)
		return nil, err
	}
	defer func() {
		if err := indexLock.Unlock(); err != nil {
			log.WithError(err).Errorf("index file unlock error while load index: %s", err)
		}
	}()

	var report Report
	if err := util.ReadJsonFile(IndexPath(graphsDir), &report); err != nil {
		return nil, err
	}

	return &report, nil
}
