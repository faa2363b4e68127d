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

package harvest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Harvester loads the metadata of all datasets and processes the qualifying
// ones with a fixed number of workers. Datasets are independent; workers
// share only the error log and the download cache.
type Harvester struct {
	Config Config
	API    API
	Layout Layout
	Log    Logger
	Stats  Statter

	fetcher Fetcher
	errs    *ErrorLog
}

// NewHarvester returns a Harvester with the default configuration.
func NewHarvester(fetcher Fetcher, layout Layout, errs *ErrorLog) *Harvester {
	return &Harvester{
		Config:  DefaultConfig(),
		API:     API{BaseURL: DefaultBaseURL},
		Layout:  layout,
		Log:     NopLogger{},
		Stats:   NopStatter{},
		fetcher: fetcher,
		errs:    errs,
	}
}

// Run harvests every qualifying dataset and writes the dataset list. A
// dataset which fails is recorded in the error log and does not stop the
// others.
func (h *Harvester) Run(ctx context.Context) error {
	loader := &Loader{
		Fetcher: h.fetcher,
		API:     h.API,
		Layout:  h.Layout,
		Config:  h.Config,
		Errors:  h.errs,
		Log:     h.Log,
	}
	h.Log.Printf("loading datasets")
	datasets, err := loader.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "loading datasets")
	}
	h.Log.Printf("found %d dataset(s) with %s regions", len(datasets), h.Config.TargetRegionType)

	workers := h.Config.Concurrency
	if workers < 1 {
		workers = 1
	}
	tasks := make(chan *Dataset)
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range tasks {
				err := h.ProcessDataset(ctx, d)
				if err == nil || ctx.Err() != nil {
					continue
				}
				h.Stats.Count("datasets_failed", 1, 1)
				h.Log.Printf("error processing dataset '%s': %v", d.ID, err)
				if lerr := h.errs.Record(d.ID, "Error processing dataset %s: %v", d.ID, err); lerr != nil {
					h.Log.Printf("writing error log: %v", lerr)
				}
			}
		}()
	}
feed:
	for _, d := range datasets {
		select {
		case tasks <- d:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	return errors.Wrap(h.serializer().WriteDatasetList(datasets), "writing dataset list")
}

// ProcessDataset harvests one dataset and writes its processed tree and
// summary. Datasets which already have a summary are skipped unless
// Config.Overwrite is set.
func (h *Harvester) ProcessDataset(ctx context.Context, d *Dataset) error {
	if !h.Config.Overwrite {
		if _, err := os.Stat(h.Layout.Summary(d.ID)); err == nil {
			h.Log.Debugf("dataset '%s' already processed", d.ID)
			return nil
		}
	}
	if !h.Config.Policy.Allows(d.ID) {
		h.Log.Debugf("dataset '%s' excluded by policy", d.ID)
		return nil
	}

	h.Log.Printf("processing data for dataset '%s'", d.ID)
	t, err := NewTraversal(d, h.fetcher, h.Config)
	if err != nil {
		return err
	}
	t.API = h.API
	t.Layout = h.Layout
	t.Errors = h.errs
	t.Log = h.Log
	t.Stats = h.Stats
	h.Log.Printf("%s", describeCube(t.Cube))

	if err := t.Run(ctx); err != nil {
		return err
	}

	h.Log.Printf("saving processed data for dataset '%s'", d.ID)
	s := h.serializer()
	if err := s.WriteCube(d.ID, t.Cube); err != nil {
		return errors.Wrap(err, "writing cube")
	}
	if err := s.WriteSummary(d, t.Cube.Concepts, h.Config.RegionConcept); err != nil {
		return errors.Wrap(err, "writing summary")
	}
	h.Stats.Count("datasets", 1, 1)
	return nil
}

func (h *Harvester) serializer() *Serializer {
	return &Serializer{Layout: h.Layout, SparsityPercent: h.Config.SparsityPercent}
}

// describeCube summarises the non-region dimensions of a cube, e.g.
// "Found 6 observation(s) per region, with concepts: SEX(2), AGE(3)".
func describeCube(c *Cube) string {
	product := 1
	parts := make([]string, 0, len(c.Concepts))
	for _, concept := range c.Concepts[:len(c.Concepts)-1] {
		product *= len(concept.Codes)
		parts = append(parts, fmt.Sprintf("%s(%d)", concept.ID, len(concept.Codes)))
	}
	return fmt.Sprintf("Found %d observation(s) per region, with concepts: %s", product, strings.Join(parts, ", "))
}
