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

	"github.com/pkg/errors"
)

// Traversal downloads the series of one dataset by walking its region
// hierarchy top down and folds every series into the cube.
type Traversal struct {
	Dataset *Dataset
	Cube    *Cube
	Fetcher Fetcher
	API     API
	Layout  Layout
	Config  Config
	Errors  *ErrorLog
	Log     Logger
	Stats   Statter
}

// NewTraversal prepares the traversal of d with an empty cube.
func NewTraversal(d *Dataset, fetcher Fetcher, cfg Config) (*Traversal, error) {
	concepts, err := cfg.CombinationConcepts(d)
	if err != nil {
		return nil, err
	}
	return &Traversal{
		Dataset: d,
		Cube:    NewCube(concepts),
		Fetcher: fetcher,
		Config:  cfg,
		Log:     NopLogger{},
		Stats:   NopStatter{},
	}, nil
}

// Run fetches every level of the region hierarchy. A fetch which still fails
// after the retry budget is recorded in the error log and its node skipped;
// structural errors in returned data abort the run.
func (t *Traversal) Run(ctx context.Context) error {
	region := t.Cube.Inner()
	root, ok := region.Code(t.Config.RootRegion)
	if !ok {
		return structuref("root region code '%s' not found (dataset = '%s')", t.Config.RootRegion, t.Dataset.ID)
	}

	for level, lvl := range t.Config.Levels {
		codes := []*Code{root}
		if lvl.Hops >= 0 {
			codes = root.Descendants(lvl.Hops)
		}
		for _, code := range codes {
			if err := ctx.Err(); err != nil {
				return err
			}
			url := t.API.RegionData(t.Dataset.ID, t.Config.RegionConcept, t.Config.RegionTypeConcept, level, lvl.RegionType, code.ID)
			path := t.Layout.RegionData(t.Dataset.ID, level, lvl.RegionType, code.ID)

			series, doc, err := t.fetchSeries(ctx, url, path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// the node can be fetched again on a later run
				t.Stats.Count("fetch_failures", 1, 1)
				t.Log.Printf("error downloading from %s: %v", url, err)
				if lerr := t.Errors.Record(t.Dataset.ID, "Error downloading from %s, data = %s", url, doc.excerpt()); lerr != nil {
					return errors.Wrap(lerr, "writing error log")
				}
				continue
			}
			if err := t.Ingest(series); err != nil {
				return errors.Wrapf(err, "ingesting %s", url)
			}
		}
	}
	return nil
}

// fetchSeries fetches a generic data document, retrying on errors and on a
// missing series field. The last document seen is returned for diagnostics.
func (t *Traversal) fetchSeries(ctx context.Context, url, path string) ([]Series, *Document, error) {
	retries := t.Config.Retries
	if retries < 1 {
		retries = 1
	}
	var (
		doc     *Document
		lastErr error
	)
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			t.Stats.Count("fetch_retries", 1, 1)
			t.Log.Printf("downloading from %s failed, retrying (attempt %d/%d)", url, attempt+1, retries)
		}
		d, err := t.Fetcher.Fetch(ctx, url, path)
		if err == nil {
			doc = d
			if d.Series != nil {
				t.Stats.Count("fetches", 1, 1)
				return d.Series, d, nil
			}
			err = ErrNoSeries
		}
		lastErr = err
		if derr := t.Fetcher.Discard(url, path); derr != nil {
			t.Log.Printf("discarding %s: %v", path, derr)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, doc, lastErr
}

// Ingest folds a series collection into the cube and marks the codes it
// uses.
func (t *Traversal) Ingest(series []Series) error {
	for i, s := range series {
		codes, err := t.combination(s)
		if err != nil {
			return errors.Wrapf(err, "series %d", i)
		}
		values := NewDataValues()
		for _, o := range s.Observations {
			if err := values.Add(o.Time.String(), o.Value.Ptr()); err != nil {
				return errors.Wrapf(err, "series %d", i)
			}
		}
		if err := t.Cube.Insert(codes, values); err != nil {
			return errors.Wrapf(err, "series %d", i)
		}
		for concept, code := range codes {
			concept.MarkUsed(code)
		}
		t.Stats.Count("series", 1, 1)
	}
	return nil
}

func (t *Traversal) combination(s Series) (map[*Concept]*Code, error) {
	codes := make(map[*Concept]*Code, len(t.Cube.Concepts))
	for _, sc := range s.Concepts {
		concept, ok := t.Dataset.Concept(sc.Name)
		if !ok {
			return nil, structuref("unknown concept returned in data: %s", sc.Name)
		}
		if t.Config.ignored(concept.ID) {
			continue
		}
		if _, ok := codes[concept]; ok {
			return nil, structuref("a value for concept '%s' has already been defined for this data", sc.Name)
		}
		code, ok := concept.Code(sc.Value)
		if !ok {
			return nil, structuref("unknown concept code returned in data '%s' for concept '%s'", sc.Value, sc.Name)
		}
		codes[concept] = code
	}
	for _, concept := range t.Cube.Concepts {
		if _, ok := codes[concept]; !ok {
			return nil, structuref("concept '%s' of the combination was not included in the data", concept.ID)
		}
	}
	return codes, nil
}
