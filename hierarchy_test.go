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
	"testing"

	"github.com/statmap/harvest"
	"github.com/statmap/harvest/test"
)

func TestParseDescription(t *testing.T) {
	ignore := harvest.DefaultConfig().IgnoredUnits
	tests := []struct {
		raw  string
		desc string
		unit string
	}{
		{raw: "Persons (no.)", desc: "Persons", unit: ""},
		{raw: "Persons (No.)", desc: "Persons", unit: ""},
		{raw: "Dwellings (#)", desc: "Dwellings", unit: ""},
		{raw: "Median age (years)", desc: "Median age", unit: "years"},
		{raw: "Median  age\t(years)", desc: "Median age", unit: "years"},
		{raw: `Income \(weekly\) (AUD)`, desc: "Income", unit: "weekly) (AUD"},
		{raw: "Area (km2) total", desc: "Area total", unit: "km2"},
		{raw: "  Total persons  ", desc: "Total persons", unit: ""},
		{raw: "Rate ( % )", desc: "Rate", unit: "%"},
		{raw: "Empty ()", desc: "Empty ()", unit: ""},
	}
	for _, tst := range tests {
		desc, unit := harvest.ParseDescription(tst.raw, ignore)
		test.MustBe(t, tst.desc, desc, tst.raw)
		test.MustBe(t, tst.unit, unit, tst.raw)
	}
}

func TestQualifies(t *testing.T) {
	cfg := harvest.DefaultConfig()
	sa2 := []harvest.CodeEntry{{Code: "STE"}, {Code: "SA2"}}
	ste := []harvest.CodeEntry{{Code: "STE"}}

	if !cfg.Qualifies([]string{"SEX", "REGIONTYPE", "REGION"}, sa2) {
		t.Fatal("dataset with SA2 regions should qualify")
	}
	if cfg.Qualifies([]string{"SEX", "REGIONTYPE", "REGION"}, ste) {
		t.Fatal("dataset without SA2 regions should not qualify")
	}
	if cfg.Qualifies([]string{"SEX", "REGION"}, sa2) {
		t.Fatal("dataset without region type should not qualify")
	}
	if cfg.Qualifies([]string{"SEX", "REGIONTYPE"}, sa2) {
		t.Fatal("dataset without region should not qualify")
	}
}

func TestBuildDataset(t *testing.T) {
	entry := harvest.DatasetEntry{ID: "DS", Description: "Test dataset"}
	codeLists := map[string][]harvest.CodeEntry{
		"REGION": {
			{Code: "0", Description: "Australia"},
			{Code: "1", Description: "New South Wales", ParentCode: "0"},
			{Code: "2", Description: "Victoria", ParentCode: "0"},
			{Code: "101", Description: "Capital Region", ParentCode: "1"},
		},
		"AGE": {
			{Code: "Test dataset", Description: "Test dataset"},
			{Code: "A1", Description: "0-4 years (no.)"},
		},
	}
	d, err := harvest.BuildDataset(entry, []string{"AGE", "REGION"}, codeLists, harvest.DefaultConfig().IgnoredUnits)
	test.ErrNil(t, err, "building dataset")
	test.MustBe(t, 2, len(d.Concepts), "concepts")

	age, ok := d.Concept("AGE")
	if !ok {
		t.Fatal("AGE concept missing")
	}
	test.MustBe(t, 1, len(age.Codes), "artifact code dropped")
	test.MustBe(t, "0-4 years", age.Codes[0].Description)
	test.MustBe(t, age, age.Codes[0].Concept)

	region, _ := d.Concept("REGION")
	test.MustBe(t, 1, len(region.RootCodes), "root codes")
	root := region.RootCodes[0]
	test.MustBe(t, "0", root.ID)
	test.MustBe(t, 2, len(root.Children), "states")
	nsw, _ := region.Code("1")
	test.MustBe(t, root, nsw.Parent)
	test.MustBe(t, []*harvest.Code{nsw}, root.Descendants(1)[:1])
	sub, _ := region.Code("101")
	test.MustBe(t, []*harvest.Code{sub}, root.Descendants(2))
}

func TestBuildDatasetUnresolvedParent(t *testing.T) {
	entry := harvest.DatasetEntry{ID: "DS", Description: "Test dataset"}
	codeLists := map[string][]harvest.CodeEntry{
		"REGION": {
			{Code: "0", Description: "Australia"},
			{Code: "1", Description: "New South Wales", ParentCode: "9"},
		},
	}
	_, err := harvest.BuildDataset(entry, []string{"REGION"}, codeLists, nil)
	if !harvest.IsStructure(err) {
		t.Fatalf("expected structural error, got %v", err)
	}
}

func TestUsedCodes(t *testing.T) {
	d := harvest.NewDataset("DS", "")
	c, err := d.AddConcept("SEX")
	test.ErrNil(t, err, "adding concept")
	if _, err := d.AddConcept("SEX"); !harvest.IsStructure(err) {
		t.Fatalf("expected structural error for duplicate concept, got %v", err)
	}
	m, _ := c.AddCode("M", "Males", "", "")
	f, _ := c.AddCode("F", "Females", "", "")
	p, _ := c.AddCode("P", "Persons", "", "")
	if _, err := c.AddCode("P", "Persons", "", ""); !harvest.IsStructure(err) {
		t.Fatalf("expected structural error for duplicate code, got %v", err)
	}

	c.MarkUsed(p)
	c.MarkUsed(m)
	c.MarkUsed(p)
	test.MustBe(t, []*harvest.Code{m, p}, c.UsedCodes())
	if c.Used(f) {
		t.Fatal("F should not be used")
	}
}
