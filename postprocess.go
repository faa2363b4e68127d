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
	"math"
	"sort"
	"strconv"
)

// KeepTimes returns the time periods, sorted ascending, which are reported by
// at least percent percent of leaves. A period below the threshold is removed
// from the time axis of every leaf.
func KeepTimes(counts map[string]int, leaves, percent int) []string {
	times := make([]string, 0, len(counts))
	for t, n := range counts {
		if n*100 < leaves*percent {
			continue
		}
		times = append(times, t)
	}
	sort.Strings(times)
	return times
}

// Coerce converts a raw value to an int64 if it parses as one, else to a
// float64, else keeps the string. Nil stays nil.
func Coerce(raw *string) interface{} {
	if raw == nil {
		return nil
	}
	s := *raw
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

// RegionDocument is the processed form of the region dimension below one
// combination of the other concepts.
type RegionDocument struct {
	Concept string                   `json:"concept"`
	Units   *string                  `json:"units"`
	Min     float64                  `json:"min"`
	Max     float64                  `json:"max"`
	Times   []interface{}            `json:"times"`
	Data    map[string][]interface{} `json:"data"`
}

// NewRegionDocument builds the document for a node whose children are the
// cube leaves. Time periods reported by fewer than sparsityPercent percent of
// the leaves are dropped, and so are leaves without any value left.
func NewRegionDocument(d *Data, sparsityPercent int) (*RegionDocument, error) {
	if d.ChildConcept == nil {
		return nil, structuref("node %v has no child concept", d.Code)
	}
	times := KeepTimes(TimeCounts(d), LeafCount(d), sparsityPercent)
	d.Min, d.Max = MinMax(d)

	doc := &RegionDocument{
		Concept: d.ChildConcept.ID,
		Min:     d.Min,
		Max:     d.Max,
		Times:   make([]interface{}, len(times)),
		Data:    make(map[string][]interface{}),
	}
	if d.Code != nil && d.Code.Unit != "" {
		unit := d.Code.Unit
		doc.Units = &unit
	}
	for i, t := range times {
		t := t
		doc.Times[i] = Coerce(&t)
	}

	for _, child := range d.Children() {
		if child.Values == nil {
			return nil, structuref("no values for %v of concept '%s'", child.Code, d.ChildConcept.ID)
		}
		var found bool
		row := make([]interface{}, len(times))
		for i, t := range times {
			v := child.Values.Values[t]
			if v != nil {
				found = true
			}
			row[i] = Coerce(v)
		}
		if !found {
			continue
		}
		doc.Data[child.Code.ID] = row
	}
	return doc, nil
}
