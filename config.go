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
	"path"
	"strings"
)

// Level is one level of the region hierarchy walked by the traversal.
// Hops is the number of child hops from the root region code to the codes
// used as parents for the level's fetches; the root level has Hops -1 and
// issues a single fetch for the root code itself.
type Level struct {
	RegionType string
	Hops       int
}

// Config holds the harvest constants. They are fixed per run.
type Config struct {
	RegionConcept     string
	RegionTypeConcept string
	// TargetRegionType is the finest region type; datasets without it are
	// not harvested.
	TargetRegionType string
	RootRegion       string
	Levels           []Level

	// IgnoredConcepts are never part of the cube.
	IgnoredConcepts []string
	// IgnoredUnits are unit annotations which carry no information.
	IgnoredUnits []string

	Retries         int
	SparsityPercent int
	Overwrite       bool
	Concurrency     int

	Policy Policy
}

// DefaultConfig returns the configuration for the ABS.Stat ASGS datasets.
func DefaultConfig() Config {
	return Config{
		RegionConcept:     "REGION",
		RegionTypeConcept: "REGIONTYPE",
		TargetRegionType:  "SA2",
		RootRegion:        "0",
		Levels: []Level{
			{RegionType: "AUS", Hops: -1},
			{RegionType: "STE", Hops: 0},
			{RegionType: "SA4", Hops: 1},
			{RegionType: "SA3", Hops: 2},
			{RegionType: "SA2", Hops: 3},
		},
		IgnoredConcepts: []string{"REGIONTYPE", "STATE", "FREQUENCY"},
		IgnoredUnits:    []string{"no.", "no", "number", "#"},
		Retries:         2,
		SparsityPercent: 10,
		Concurrency:     1,
		Policy:          DefaultPolicy(),
	}
}

func (c Config) ignored(conceptID string) bool {
	for _, id := range c.IgnoredConcepts {
		if id == conceptID {
			return true
		}
	}
	return false
}

// Policy decides which qualifying datasets get processed. Patterns use
// path.Match syntax. A dataset matching an Include pattern is always
// processed; otherwise one matching an Exclude pattern is skipped.
type Policy struct {
	Include []string
	Exclude []string
}

// DefaultPolicy skips the datasets the service is known not to serve
// completely.
func DefaultPolicy() Policy {
	return Policy{
		Include: []string{"ABS_CENSUS2011_B*01", "ABS_CENSUS2011_B*02"},
		Exclude: []string{"ABS_CENSUS2011_B*", "ABS_ANNUAL_ERP_ASGS"},
	}
}

// Allows reports whether the dataset should be processed.
func (p Policy) Allows(datasetID string) bool {
	if matchAny(p.Include, datasetID) {
		return true
	}
	return !matchAny(p.Exclude, datasetID)
}

func matchAny(patterns []string, s string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if ok, err := path.Match(pattern, s); err == nil && ok {
			return true
		}
	}
	return false
}
