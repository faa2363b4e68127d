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

// newCubeDataset returns a dataset with concepts REGION {AUS, STE1},
// REGIONTYPE, SEX {M, F} and AGE {A1, A2, A3}.
func newCubeDataset(t *testing.T) *harvest.Dataset {
	t.Helper()
	d := harvest.NewDataset("DS", "Test dataset")
	add := func(concept string, codes ...string) {
		c, err := d.AddConcept(concept)
		test.ErrNil(t, err, "adding concept "+concept)
		for _, code := range codes {
			_, err := c.AddCode(code, code, "", "")
			test.ErrNil(t, err, "adding code "+code)
		}
		test.ErrNil(t, c.LinkParents(), "linking "+concept)
	}
	add("REGION", "AUS", "STE1")
	add("REGIONTYPE", "AUS", "STE")
	add("SEX", "M", "F")
	add("AGE", "A1", "A2", "A3")
	return d
}

func codesFor(t *testing.T, d *harvest.Dataset, assign map[string]string) map[*harvest.Concept]*harvest.Code {
	t.Helper()
	out := make(map[*harvest.Concept]*harvest.Code)
	for conceptID, codeID := range assign {
		c, ok := d.Concept(conceptID)
		if !ok {
			t.Fatalf("no concept %s", conceptID)
		}
		code, ok := c.Code(codeID)
		if !ok {
			t.Fatalf("no code %s in %s", codeID, conceptID)
		}
		out[c] = code
	}
	return out
}

func values(t *testing.T, obs ...string) *harvest.DataValues {
	t.Helper()
	v := harvest.NewDataValues()
	for i := 0; i+1 < len(obs); i += 2 {
		var val *string
		if obs[i+1] != "" {
			s := obs[i+1]
			val = &s
		}
		test.ErrNil(t, v.Add(obs[i], val), "adding observation")
	}
	return v
}

func TestCombinationConcepts(t *testing.T) {
	d := newCubeDataset(t)
	concepts, err := harvest.DefaultConfig().CombinationConcepts(d)
	test.ErrNil(t, err, "combination concepts")
	ids := make([]string, len(concepts))
	for i, c := range concepts {
		ids[i] = c.ID
	}
	test.MustBe(t, []string{"SEX", "AGE", "REGION"}, ids)

	noRegion := harvest.NewDataset("X", "")
	_, _ = noRegion.AddConcept("SEX")
	if _, err := harvest.DefaultConfig().CombinationConcepts(noRegion); !harvest.IsStructure(err) {
		t.Fatalf("expected structural error without region concept, got %v", err)
	}
}

func TestCubeInsert(t *testing.T) {
	d := newCubeDataset(t)
	concepts, _ := harvest.DefaultConfig().CombinationConcepts(d)
	cube := harvest.NewCube(concepts)
	test.MustBe(t, 3, cube.Depth(), "depth")

	combos := []map[string]string{
		{"SEX": "M", "AGE": "A1", "REGION": "AUS"},
		{"SEX": "M", "AGE": "A1", "REGION": "STE1"},
		{"SEX": "M", "AGE": "A2", "REGION": "AUS"},
		{"SEX": "F", "AGE": "A3", "REGION": "STE1"},
	}
	for _, combo := range combos {
		err := cube.Insert(codesFor(t, d, combo), values(t, "2011", "1"))
		test.ErrNil(t, err, "inserting")
	}

	sex, _ := d.Concept("SEX")
	age, _ := d.Concept("AGE")
	region, _ := d.Concept("REGION")
	test.MustBe(t, sex, cube.Root.ChildConcept)
	test.MustBe(t, 2, len(cube.Root.Children()), "sex branches")

	m, _ := sex.Code("M")
	mNode, ok := cube.Root.Child(m)
	if !ok {
		t.Fatal("no node for M")
	}
	test.MustBe(t, age, mNode.ChildConcept)
	test.MustBe(t, 2, len(mNode.Children()), "age branches below M")

	a1, _ := age.Code("A1")
	a1Node, _ := mNode.Child(a1)
	test.MustBe(t, region, a1Node.ChildConcept)
	leaves := a1Node.Children()
	test.MustBe(t, 2, len(leaves), "regions below M/A1")
	test.MustBe(t, "AUS", leaves[0].Code.ID)
	test.MustBe(t, "STE1", leaves[1].Code.ID)
	if !leaves[0].IsLeaf() || leaves[0].ChildConcept != nil {
		t.Fatal("region nodes should be leaves")
	}
	test.MustBe(t, 4, harvest.LeafCount(cube.Root), "leaf count")

	err := cube.Insert(codesFor(t, d, combos[1]), values(t, "2011", "2"))
	if !harvest.IsStructure(err) {
		t.Fatalf("expected duplicate leaf error, got %v", err)
	}
	test.MustBe(t, 4, harvest.LeafCount(cube.Root), "leaf count after duplicate")

	err = cube.Insert(codesFor(t, d, map[string]string{"SEX": "M", "REGION": "AUS"}), values(t))
	if !harvest.IsStructure(err) {
		t.Fatalf("expected error for missing concept, got %v", err)
	}
}

func TestDataValuesDuplicateTime(t *testing.T) {
	v := harvest.NewDataValues()
	one := "1"
	test.ErrNil(t, v.Add("2011", &one), "first add")
	if err := v.Add("2011", nil); !harvest.IsStructure(err) {
		t.Fatalf("expected duplicate time error, got %v", err)
	}
	test.MustBe(t, []string{"2011"}, v.Times)
}
