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

// Loader downloads the metadata of every dataset and builds the model of the
// ones which can be harvested by region.
type Loader struct {
	Fetcher Fetcher
	API     API
	Layout  Layout
	Config  Config
	Errors  *ErrorLog
	Log     Logger
}

// Load returns the qualifying datasets in dataset list order. A dataset whose
// metadata is broken is recorded in the error log and left out.
func (l *Loader) Load(ctx context.Context) ([]*Dataset, error) {
	if l.Log == nil {
		l.Log = NopLogger{}
	}
	list, err := l.Fetcher.Fetch(ctx, l.API.DatasetList(), l.Layout.DatasetList())
	if err != nil {
		return nil, errors.Wrap(err, "fetching dataset list")
	}
	if list.Datasets == nil {
		return nil, errors.Errorf("dataset list has no datasets: %s", list.excerpt())
	}

	datasets := make([]*Dataset, 0)
	for _, entry := range list.Datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := l.loadDataset(ctx, entry)
		if err != nil {
			l.Log.Printf("dropping dataset '%s': %v", entry.ID, err)
			_ = l.Errors.Record(entry.ID, "Error loading dataset: %v", err)
			continue
		}
		if d == nil {
			l.Log.Debugf("dataset '%s' cannot be harvested by region", entry.ID)
			continue
		}
		datasets = append(datasets, d)
	}
	return datasets, nil
}

// loadDataset returns nil and no error for a dataset which does not qualify.
func (l *Loader) loadDataset(ctx context.Context, entry DatasetEntry) (*Dataset, error) {
	doc, err := l.Fetcher.Fetch(ctx, l.API.DatasetConcepts(entry.ID), l.Layout.Concepts(entry.ID))
	if err != nil {
		return nil, errors.Wrap(err, "fetching concepts")
	}
	conceptIDs := doc.Concepts
	if conceptIDs == nil || !l.Config.hasRegionConcepts(conceptIDs) {
		return nil, nil
	}

	codeLists := make(map[string][]CodeEntry, len(conceptIDs))
	regionTypes, err := l.codeList(ctx, entry.ID, l.Config.RegionTypeConcept)
	if err != nil {
		return nil, err
	}
	if !l.Config.Qualifies(conceptIDs, regionTypes) {
		return nil, nil
	}
	codeLists[l.Config.RegionTypeConcept] = regionTypes

	for _, conceptID := range conceptIDs {
		if _, ok := codeLists[conceptID]; ok {
			continue
		}
		codes, err := l.codeList(ctx, entry.ID, conceptID)
		if err != nil {
			return nil, err
		}
		codeLists[conceptID] = codes
	}
	return BuildDataset(entry, conceptIDs, codeLists, l.Config.IgnoredUnits)
}

func (l *Loader) codeList(ctx context.Context, datasetID, conceptID string) ([]CodeEntry, error) {
	doc, err := l.Fetcher.Fetch(ctx, l.API.CodeList(datasetID, conceptID), l.Layout.CodeList(datasetID, conceptID))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching code list for concept '%s'", conceptID)
	}
	if doc.Codes == nil {
		return nil, errors.Errorf("code list for concept '%s' has no codes: %s", conceptID, doc.excerpt())
	}
	return doc.Codes, nil
}
