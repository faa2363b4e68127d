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
	"fmt"
	"testing"

	"github.com/statmap/harvest"
	"github.com/statmap/harvest/test"
)

func TestFolds(t *testing.T) {
	d := newCubeDataset(t)
	concepts, _ := harvest.DefaultConfig().CombinationConcepts(d)
	cube := harvest.NewCube(concepts)

	inserts := []struct {
		combo map[string]string
		obs   []string
	}{
		{map[string]string{"SEX": "M", "AGE": "A1", "REGION": "AUS"}, []string{"2006", "12", "2011", "n/a"}},
		{map[string]string{"SEX": "M", "AGE": "A1", "REGION": "STE1"}, []string{"2011", "-3.5"}},
		{map[string]string{"SEX": "F", "AGE": "A2", "REGION": "AUS"}, []string{"2011", "", "2016", "7"}},
		{map[string]string{"SEX": "F", "AGE": "A3", "REGION": "AUS"}, []string{"2016", "x"}},
	}
	for _, in := range inserts {
		test.ErrNil(t, cube.Insert(codesFor(t, d, in.combo), values(t, in.obs...)), "inserting")
	}

	test.MustBe(t, map[string]int{"2006": 1, "2011": 3, "2016": 2}, harvest.TimeCounts(cube.Root))
	test.MustBe(t, 4, harvest.LeafCount(cube.Root))

	min, max := harvest.MinMax(cube.Root)
	test.MustBe(t, -3.5, min, "min")
	test.MustBe(t, 12.0, max, "max")

	sex, _ := d.Concept("SEX")
	age, _ := d.Concept("AGE")
	f, _ := sex.Code("F")
	a3, _ := age.Code("A3")
	fNode, _ := cube.Root.Child(f)
	a3Node, _ := fNode.Child(a3)
	min, max = harvest.MinMax(a3Node)
	if min != harvest.NoMin || max != harvest.NoMax {
		t.Fatalf("expected sentinels for non-numeric subtree, got %v, %v", min, max)
	}

	harvest.UpdateMinMax(cube.Root)
	test.MustBe(t, -3.5, cube.Root.Min)
	test.MustBe(t, 7.0, fNode.Min)
	test.MustBe(t, 7.0, fNode.Max)
	test.MustBe(t, harvest.NoMin, a3Node.Min)

	var visited []string
	harvest.Walk(cube.Root, func(n *harvest.Data) {
		if n.Code != nil {
			visited = append(visited, n.Code.ID)
		}
	})
	test.MustBe(t, []string{"M", "A1", "AUS", "STE1", "F", "A2", "AUS", "A3", "AUS"}, visited)
}

func TestKeepTimes(t *testing.T) {
	counts := map[string]int{"2001": 9, "2006": 11, "2011": 10, "2016": 100}
	test.MustBe(t, []string{"2006", "2011", "2016"}, harvest.KeepTimes(counts, 100, 10))
	test.MustBe(t, []string{"2016"}, harvest.KeepTimes(counts, 100, 50))

	// one in ten leaves is enough
	test.MustBe(t, []string{"a", "b"}, harvest.KeepTimes(map[string]int{"b": 10, "a": 1}, 10, 10))
	test.MustBe(t, []string{"b"}, harvest.KeepTimes(map[string]int{"b": 10, "a": 1}, 11, 10))
}

func TestCoerce(t *testing.T) {
	str := func(s string) *string { return &s }
	tests := []struct {
		in  *string
		exp interface{}
	}{
		{in: str("42"), exp: int64(42)},
		{in: str("-7"), exp: int64(-7)},
		{in: str("3.14"), exp: 3.14},
		{in: str("1e3"), exp: 1000.0},
		{in: str("n/a"), exp: "n/a"},
		{in: str("NaN"), exp: "NaN"},
		{in: str(""), exp: ""},
		{in: nil, exp: nil},
	}
	for i, tst := range tests {
		test.MustBe(t, tst.exp, harvest.Coerce(tst.in), fmt.Sprintf("test %d", i))
	}
}

func TestNewRegionDocument(t *testing.T) {
	d := newCubeDataset(t)
	concepts, _ := harvest.DefaultConfig().CombinationConcepts(d)
	cube := harvest.NewCube(concepts)

	// eleven regions below M/A1, 2001 is reported by only one of them
	region, _ := d.Concept("REGION")
	for i := 0; i < 9; i++ {
		_, err := region.AddCode(fmt.Sprintf("R%d", i), "", "", "")
		test.ErrNil(t, err, "adding region")
	}
	regions := []string{"AUS", "STE1"}
	for i := 0; i < 9; i++ {
		regions = append(regions, fmt.Sprintf("R%d", i))
	}
	for i, r := range regions {
		obs := []string{"2011", fmt.Sprint(i)}
		switch i {
		case 0:
			obs = append(obs, "2001", "5")
		case 1:
			obs = []string{"2011", ""}
		}
		combo := map[string]string{"SEX": "M", "AGE": "A1", "REGION": r}
		test.ErrNil(t, cube.Insert(codesFor(t, d, combo), values(t, obs...)), "inserting")
	}

	sex, _ := d.Concept("SEX")
	age, _ := d.Concept("AGE")
	m, _ := sex.Code("M")
	a1, _ := age.Code("A1")
	mNode, _ := cube.Root.Child(m)
	a1Node, _ := mNode.Child(a1)
	a1.Unit = "persons"

	doc, err := harvest.NewRegionDocument(a1Node, 10)
	test.ErrNil(t, err, "building document")
	test.MustBe(t, "REGION", doc.Concept)
	test.MustBe(t, "persons", *doc.Units)
	test.MustBe(t, []interface{}{int64(2011)}, doc.Times)
	test.MustBe(t, 0.0, doc.Min)
	test.MustBe(t, 10.0, doc.Max)
	test.MustBe(t, 10, len(doc.Data), "regions with values")
	if _, ok := doc.Data["STE1"]; ok {
		t.Fatal("STE1 has no values and should be omitted")
	}
	test.MustBe(t, []interface{}{int64(0)}, doc.Data["AUS"])
	test.MustBe(t, []interface{}{int64(8)}, doc.Data["R6"])

	if _, err := harvest.NewRegionDocument(doc2Leaf(cube), 10); !harvest.IsStructure(err) {
		t.Fatalf("expected structural error for a leaf, got %v", err)
	}
}

func doc2Leaf(cube *harvest.Cube) *harvest.Data {
	n := cube.Root
	for !n.IsLeaf() {
		n = n.Children()[0]
	}
	return n
}
