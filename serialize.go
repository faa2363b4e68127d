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
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Serializer writes processed cubes and summaries below Layout.Processed.
type Serializer struct {
	Layout          Layout
	SparsityPercent int
}

// WriteCube writes one RegionDocument per combination of the non-region
// concepts. Each combination maps to nested "<concept>.<code>" directories
// below the dataset directory.
func (s *Serializer) WriteCube(datasetID string, cube *Cube) error {
	inner := cube.Inner()
	if inner == nil {
		return structuref("cube of dataset '%s' has no dimensions", datasetID)
	}
	return s.writeData(cube.Root, s.Layout.DatasetDir(datasetID), inner)
}

func (s *Serializer) writeData(d *Data, dir string, inner *Concept) error {
	if d.ChildConcept == inner {
		doc, err := NewRegionDocument(d, s.SparsityPercent)
		if err != nil {
			return err
		}
		return writeJSON(filepath.Join(dir, inner.ID+".json"), doc)
	}
	for _, child := range d.Children() {
		childDir := filepath.Join(dir, d.ChildConcept.ID+"."+child.Code.ID)
		if err := s.writeData(child, childDir, inner); err != nil {
			return err
		}
	}
	return nil
}

type codeSummary struct {
	ID          string  `json:"k"`
	Description string  `json:"v"`
	Unit        *string `json:"u"`
}

type conceptSummary struct {
	Name  string        `json:"name"`
	Codes []codeSummary `json:"codes"`
}

type datasetSummary struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Concepts    []conceptSummary `json:"concepts"`
}

// WriteSummary writes the used codes of every cube concept except the region
// concept.
func (s *Serializer) WriteSummary(d *Dataset, concepts []*Concept, regionConcept string) error {
	sum := datasetSummary{
		ID:          d.ID,
		Description: d.Description,
		Concepts:    make([]conceptSummary, 0, len(concepts)),
	}
	for _, concept := range concepts {
		if concept.ID == regionConcept {
			continue
		}
		cs := conceptSummary{Name: concept.ID, Codes: make([]codeSummary, 0)}
		for _, code := range concept.UsedCodes() {
			c := codeSummary{ID: code.ID, Description: code.Description}
			if code.Unit != "" {
				unit := code.Unit
				c.Unit = &unit
			}
			cs.Codes = append(cs.Codes, c)
		}
		sum.Concepts = append(sum.Concepts, cs)
	}
	return writeJSON(s.Layout.Summary(d.ID), sum)
}

type datasetListEntry struct {
	ID          string `json:"k"`
	Description string `json:"v"`
}

// WriteDatasetList writes the list of all harvested datasets.
func (s *Serializer) WriteDatasetList(datasets []*Dataset) error {
	list := struct {
		Datasets []datasetListEntry `json:"datasets"`
	}{Datasets: make([]datasetListEntry, len(datasets))}
	for i, d := range datasets {
		list.Datasets[i] = datasetListEntry{ID: d.ID, Description: d.Description}
	}
	return writeJSON(s.Layout.DatasetSummary(), list)
}

func writeJSON(path string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating directory")
	}
	if err := ioutil.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
