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
)

// Sentinel extremes of a subtree without numeric values.
const (
	NoMin = math.MaxFloat64
	NoMax = -math.MaxFloat64
)

// DataValues is the observation series of one cube leaf.
type DataValues struct {
	// Times holds the time periods in the order they were returned.
	Times  []string
	Values map[string]*string
}

// NewDataValues returns an empty DataValues.
func NewDataValues() *DataValues {
	return &DataValues{Values: make(map[string]*string)}
}

// Add appends an observation. A nil value is a suppressed or missing
// observation.
func (v *DataValues) Add(time string, value *string) error {
	if _, ok := v.Values[time]; ok {
		return structuref("value for time '%s' has already been added", time)
	}
	v.Times = append(v.Times, time)
	v.Values[time] = value
	return nil
}

// Data is a node of the cube. Interior nodes have children indexed by codes
// of ChildConcept; leaves have Values and a nil ChildConcept.
type Data struct {
	Code         *Code
	ChildConcept *Concept
	Values       *DataValues

	// Min and Max hold the extremes of all numeric values in the subtree
	// once UpdateMinMax has run.
	Min float64
	Max float64

	order    []*Code
	children map[*Code]*Data
}

func newData(code *Code, childConcept *Concept, values *DataValues) *Data {
	return &Data{
		Code:         code,
		ChildConcept: childConcept,
		Values:       values,
		Min:          NoMin,
		Max:          NoMax,
		children:     make(map[*Code]*Data),
	}
}

// Child returns the child indexed by code.
func (d *Data) Child(code *Code) (*Data, bool) {
	c, ok := d.children[code]
	return c, ok
}

// Children returns the children in insertion order.
func (d *Data) Children() []*Data {
	out := make([]*Data, len(d.order))
	for i, code := range d.order {
		out[i] = d.children[code]
	}
	return out
}

// IsLeaf reports whether the node holds an observation series.
func (d *Data) IsLeaf() bool {
	return d.Values != nil
}

func (d *Data) add(child *Data) {
	d.order = append(d.order, child.Code)
	d.children[child.Code] = child
}

// Cube holds the observations of one dataset indexed by its combination
// concepts, the region concept being the innermost dimension.
type Cube struct {
	Concepts []*Concept
	Root     *Data
}

// NewCube returns an empty cube over the given concept order.
func NewCube(concepts []*Concept) *Cube {
	var first *Concept
	if len(concepts) > 0 {
		first = concepts[0]
	}
	return &Cube{
		Concepts: concepts,
		Root:     newData(nil, first, nil),
	}
}

// Depth is the number of dimensions.
func (c *Cube) Depth() int {
	return len(c.Concepts)
}

// Inner returns the innermost dimension.
func (c *Cube) Inner() *Concept {
	if len(c.Concepts) == 0 {
		return nil
	}
	return c.Concepts[len(c.Concepts)-1]
}

// Insert places a series at the leaf given by codes, which must assign a
// code to every cube concept. Inserting the same combination twice is an
// error.
func (c *Cube) Insert(codes map[*Concept]*Code, values *DataValues) error {
	if len(c.Concepts) == 0 {
		return structuref("cube has no dimensions")
	}
	return c.insert(c.Root, 0, codes, values)
}

func (c *Cube) insert(into *Data, i int, codes map[*Concept]*Code, values *DataValues) error {
	concept := c.Concepts[i]
	code, ok := codes[concept]
	if !ok {
		return structuref("no code for concept '%s'", concept.ID)
	}
	data, exists := into.Child(code)

	if i == len(c.Concepts)-1 {
		if exists {
			return structuref("already a data value for %s of concept '%s'", code.ID, concept.ID)
		}
		into.add(newData(code, nil, values))
		return nil
	}

	if !exists {
		data = newData(code, c.Concepts[i+1], nil)
		into.add(data)
	}
	return c.insert(data, i+1, codes, values)
}

// CombinationConcepts returns the concepts indexing the cube of d: all
// concepts which are not ignored, in dataset order, with the region concept
// moved last.
func (c Config) CombinationConcepts(d *Dataset) ([]*Concept, error) {
	region, ok := d.Concept(c.RegionConcept)
	if !ok {
		return nil, structuref("dataset '%s' has no concept '%s'", d.ID, c.RegionConcept)
	}
	out := make([]*Concept, 0, len(d.Concepts))
	for _, concept := range d.Concepts {
		if concept == region || c.ignored(concept.ID) {
			continue
		}
		out = append(out, concept)
	}
	return append(out, region), nil
}
