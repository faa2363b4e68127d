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

package harvest_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
)

// memFetcher serves documents from memory. URLs listed in fails return an
// error for the given number of calls first.
type memFetcher struct {
	mu        sync.Mutex
	docs      map[string]string
	fails     map[string]int
	fetched   []string
	discarded []string
}

func newMemFetcher() *memFetcher {
	return &memFetcher{
		docs:  make(map[string]string),
		fails: make(map[string]int),
	}
}

func (f *memFetcher) Fetch(ctx context.Context, url, cachePath string) (*harvest.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if f.fails[url] > 0 {
		f.fails[url]--
		return nil, errors.New("connection reset by peer")
	}
	body, ok := f.docs[url]
	if !ok {
		return nil, errors.Errorf("no document for %s", url)
	}
	return harvest.DecodeDocument([]byte(body))
}

func (f *memFetcher) Discard(url, cachePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = append(f.discarded, url)
	return nil
}

func (f *memFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

var testAPI = harvest.API{BaseURL: "http://stat.test/query"}

func testConfig() harvest.Config {
	cfg := harvest.DefaultConfig()
	cfg.RootRegion = "AUS"
	return cfg
}

func regionURL(level int, regionType, code string) string {
	return testAPI.RegionData("DS", "REGION", "REGIONTYPE", level, regionType, code)
}

func series(measure, region string, obs ...string) string {
	s := fmt.Sprintf(`{"concepts":[{"name":"MEASURE","Value":%q},{"name":"REGIONTYPE","Value":"X"},{"name":"REGION","Value":%q},{"name":"FREQUENCY","Value":"A"}],"observations":[`, measure, region)
	for i := 0; i+1 < len(obs); i += 2 {
		if i > 0 {
			s += ","
		}
		value := "null"
		if obs[i+1] != "" {
			value = fmt.Sprintf("%q", obs[i+1])
		}
		s += fmt.Sprintf(`{"Time":%q,"Value":%s}`, obs[i], value)
	}
	return s + "]}"
}

// newFixture serves dataset DS with one measure concept {A, B} and the
// regions AUS > STE1, plus a dataset without regions.
func newFixture() *memFetcher {
	f := newMemFetcher()
	f.docs[testAPI.DatasetList()] = `{"datasets":[{"id":"DS","description":"Test dataset"},{"id":"NOREGION","description":"Other"}]}`
	f.docs[testAPI.DatasetConcepts("DS")] = `{"concepts":["MEASURE","REGIONTYPE","REGION","FREQUENCY"]}`
	f.docs[testAPI.DatasetConcepts("NOREGION")] = `{"concepts":["MEASURE"]}`
	f.docs[testAPI.CodeList("DS", "REGIONTYPE")] = `{"codes":[
		{"code":"AUS","description":"Australia"},
		{"code":"STE","description":"States"},
		{"code":"SA4","description":"SA4"},
		{"code":"SA3","description":"SA3"},
		{"code":"SA2","description":"SA2"}]}`
	f.docs[testAPI.CodeList("DS", "MEASURE")] = `{"codes":[
		{"code":"A","description":"Persons  (no.)","parentCode":""},
		{"code":"B","description":"Median\\ age (years)","parentCode":null},
		{"code":"Test dataset","description":"Test dataset"}]}`
	f.docs[testAPI.CodeList("DS", "REGION")] = `{"codes":[
		{"code":"AUS","description":"Australia"},
		{"code":"STE1","description":"State 1","parentCode":"AUS"}]}`
	f.docs[testAPI.CodeList("DS", "FREQUENCY")] = `{"codes":[{"code":"A","description":"Annual"}]}`

	f.docs[regionURL(0, "AUS", "AUS")] = `{"series":[` +
		series("A", "AUS", "2010", "100", "2011", "110") + "," +
		series("B", "AUS", "2010", "37.5", "2011", "38") + `]}`
	f.docs[regionURL(1, "STE", "AUS")] = `{"series":[` +
		series("A", "STE1", "2010", "40", "2011", "") + "," +
		series("B", "STE1", "2010", "n/a", "2011", "36.1") + `]}`
	f.docs[regionURL(2, "SA4", "STE1")] = `{"series":[]}`
	return f
}
