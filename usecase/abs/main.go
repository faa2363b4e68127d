// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package abs wires the harvester to the ABS.Stat query service: it chooses a
// fetcher and ledger, opens the error log and runs the harvest.
package abs

import (
	"bufio"
	"context"
	"io"
	"log"
	gohttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
	"github.com/statmap/harvest/boltdb"
	"github.com/statmap/harvest/file"
	"github.com/statmap/harvest/http"
	"github.com/statmap/harvest/leveldb"
	"github.com/statmap/harvest/termstat"
)

// Main holds the configuration for a harvest.
type Main struct {
	RawDir       string   `help:"Directory for downloaded documents and the error log."`
	ProcessedDir string   `help:"Directory for processed output. Defaults to <raw-dir>/processed."`
	BaseURL      string   `help:"Base URL of the statistics query service."`
	RootRegion   string   `help:"Code of the region at the top of the hierarchy."`
	Concurrency  int      `help:"Number of datasets processed at once."`
	Retries      int      `help:"Download attempts per region node."`
	Sparsity     int      `help:"Drop times reported by fewer than this percentage of regions."`
	Overwrite    bool     `help:"Reprocess datasets which already have a summary."`
	Offline      bool     `help:"Only use previously downloaded documents."`
	Ledger       string   `help:"Record downloads in a ledger: 'bolt', 'level', or blank for none."`
	Include      []string `help:"Dataset ID patterns which are always harvested."`
	Exclude      []string `help:"Dataset ID patterns which are skipped unless included."`
	IgnoreUnits  []string `help:"Units (lowercase) which are not worth displaying."`
	Timeout      int      `help:"HTTP request timeout in seconds."`
	Verbose      bool     `help:"Enable debug logging."`
	Stats        bool     `help:"Print running counters to stderr."`

	Stdout io.Writer `flag:"-"`
	Stderr io.Writer `flag:"-"`
}

// NewMain gets a new Main with default values.
func NewMain() *Main {
	cfg := harvest.DefaultConfig()
	return &Main{
		RawDir:      "data",
		BaseURL:     harvest.DefaultBaseURL,
		RootRegion:  cfg.RootRegion,
		Concurrency: cfg.Concurrency,
		Retries:     cfg.Retries,
		Sparsity:    cfg.SparsityPercent,
		Include:     cfg.Policy.Include,
		Exclude:     cfg.Policy.Exclude,
		IgnoreUnits: cfg.IgnoredUnits,
		Timeout:     60,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

// Config returns the harvest configuration described by m.
func (m *Main) Config() harvest.Config {
	cfg := harvest.DefaultConfig()
	cfg.RootRegion = m.RootRegion
	cfg.Concurrency = m.Concurrency
	cfg.Retries = m.Retries
	cfg.SparsityPercent = m.Sparsity
	cfg.Overwrite = m.Overwrite
	cfg.Policy = harvest.Policy{Include: m.Include, Exclude: m.Exclude}
	cfg.IgnoredUnits = m.IgnoreUnits
	return cfg
}

// Layout returns the on-disk layout described by m.
func (m *Main) Layout() harvest.Layout {
	l := harvest.NewLayout(m.RawDir)
	if m.ProcessedDir != "" {
		l.Processed = m.ProcessedDir
	}
	return l
}

// Run runs the harvest until it completes or the process is interrupted.
func (m *Main) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.RunContext(ctx)
}

// RunContext runs the harvest with the given context.
func (m *Main) RunContext(ctx context.Context) (err error) {
	logger := m.logger()
	layout := m.Layout()
	if err := os.MkdirAll(layout.Raw, 0755); err != nil {
		return errors.Wrap(err, "making raw directory")
	}

	var stats harvest.Statter = harvest.NopStatter{}
	if m.Stats {
		c := termstat.NewCollector(m.Stderr, 2*time.Second)
		defer c.Stop()
		stats = c
	}

	ledger, err := OpenLedger(m.Ledger, layout.Raw)
	if err != nil {
		return errors.Wrap(err, "opening ledger")
	}
	if ledger != nil {
		defer func() {
			if cerr := ledger.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "closing ledger")
			}
		}()
	}

	var fetcher harvest.Fetcher = file.Fetcher{}
	if !m.Offline {
		opts := []http.FetcherOption{
			http.OptClient(&gohttp.Client{Timeout: time.Duration(m.Timeout) * time.Second}),
			http.OptLogger(logger),
			http.OptStatter(stats),
		}
		if ledger != nil {
			opts = append(opts, http.OptLedger(ledger))
		}
		fetcher = http.NewFetcher(opts...)
	}

	f, err := os.Create(layout.ErrorLog())
	if err != nil {
		return errors.Wrap(err, "creating error log")
	}
	w := bufio.NewWriter(f)
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = errors.Wrap(ferr, "flushing error log")
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing error log")
		}
	}()
	errs := harvest.NewErrorLog(w)

	h := harvest.NewHarvester(fetcher, layout, errs)
	h.Config = m.Config()
	h.API = harvest.API{BaseURL: m.BaseURL}
	h.Log = logger
	h.Stats = stats

	start := time.Now()
	if err := h.Run(ctx); err != nil {
		return errors.Wrap(err, "harvesting")
	}
	logger.Printf("done in %v with %d error(s), see %s", time.Since(start), errs.Len(), layout.ErrorLog())
	return nil
}

func (m *Main) logger() harvest.Logger {
	l := log.New(m.Stdout, "", log.LstdFlags)
	if m.Verbose {
		return harvest.VerboseLogger{Logger: l}
	}
	return harvest.StdLogger{Logger: l}
}

// OpenLedger opens the ledger of the given kind below dir. A blank kind
// returns a nil Ledger.
func OpenLedger(kind, dir string) (harvest.Ledger, error) {
	switch kind {
	case "":
		return nil, nil
	case "bolt":
		return boltdb.NewLedger(filepath.Join(dir, "ledger.db"))
	case "level":
		return leveldb.NewLedger(filepath.Join(dir, "ledger"))
	default:
		return nil, errors.Errorf("unknown ledger kind '%s'", kind)
	}
}
