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
	"regexp"
	"strings"
)

// unitPattern finds the first parenthesised annotation; group 2 is cut from
// the description and group 3 is the unit.
var unitPattern = regexp.MustCompile(`^(.*?)(\s*\((.+)\))(.*)$`)

// ParseDescription normalises a code description and splits off a trailing
// unit annotation such as "(years)". Units whose lower case form is in
// ignore are dropped.
func ParseDescription(raw string, ignore []string) (description, unit string) {
	description = strings.Replace(raw, `\`, "", -1)
	description = strings.Join(strings.Fields(description), " ")

	m := unitPattern.FindStringSubmatch(description)
	if m == nil {
		return description, ""
	}
	description = m[1] + m[4]
	unit = strings.TrimSpace(m[3])
	lower := strings.ToLower(unit)
	for _, ig := range ignore {
		if lower == ig {
			return description, ""
		}
	}
	return description, unit
}

// Qualifies reports whether a dataset with the given concepts and region type
// codes can be harvested by region.
func (c Config) Qualifies(conceptIDs []string, regionTypes []CodeEntry) bool {
	if !c.hasRegionConcepts(conceptIDs) {
		return false
	}
	for _, code := range regionTypes {
		if code.Code == c.TargetRegionType {
			return true
		}
	}
	return false
}

func (c Config) hasRegionConcepts(conceptIDs []string) bool {
	var hasRegion, hasRegionType bool
	for _, id := range conceptIDs {
		switch id {
		case c.RegionConcept:
			hasRegion = true
		case c.RegionTypeConcept:
			hasRegionType = true
		}
	}
	return hasRegion && hasRegionType
}

// BuildDataset builds the metadata model of a dataset from its concept list
// and the code list of every concept.
func BuildDataset(entry DatasetEntry, conceptIDs []string, codeLists map[string][]CodeEntry, ignoreUnits []string) (*Dataset, error) {
	d := NewDataset(entry.ID, entry.Description)
	for _, conceptID := range conceptIDs {
		concept, err := d.AddConcept(conceptID)
		if err != nil {
			return nil, err
		}
		for _, ce := range codeLists[conceptID] {
			if ce.Code == d.Description {
				// the service lists the dataset description as a code of some concepts
				continue
			}
			desc, unit := ParseDescription(ce.Description, ignoreUnits)
			if _, err := concept.AddCode(ce.Code, desc, unit, ce.ParentCode); err != nil {
				return nil, err
			}
		}
		if err := concept.LinkParents(); err != nil {
			return nil, err
		}
	}
	return d, nil
}
