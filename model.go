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

// Dataset is one statistical table definition from the remote service. It
// owns its Concepts; the concept index keys are unique.
type Dataset struct {
	ID          string
	Description string
	Concepts    []*Concept

	conceptIndex map[string]int
}

// NewDataset returns an empty Dataset.
func NewDataset(id, description string) *Dataset {
	return &Dataset{
		ID:           id,
		Description:  description,
		conceptIndex: make(map[string]int),
	}
}

func (d *Dataset) String() string {
	return "Dataset(" + d.ID + ")"
}

// AddConcept appends a new, empty concept to the dataset.
func (d *Dataset) AddConcept(id string) (*Concept, error) {
	if _, ok := d.conceptIndex[id]; ok {
		return nil, structuref("concept '%s' defined twice in dataset '%s'", id, d.ID)
	}
	c := &Concept{
		ID:        id,
		Dataset:   d,
		codeIndex: make(map[string]int),
		used:      make(map[string]struct{}),
	}
	d.conceptIndex[id] = len(d.Concepts)
	d.Concepts = append(d.Concepts, c)
	return c, nil
}

// Concept looks up a concept by id.
func (d *Dataset) Concept(id string) (*Concept, bool) {
	i, ok := d.conceptIndex[id]
	if !ok {
		return nil, false
	}
	return d.Concepts[i], true
}

// Concept is one dimension of a dataset. Codes are kept in code list order
// and addressed by id through an index owned by the concept.
type Concept struct {
	ID        string
	Dataset   *Dataset
	Codes     []*Code
	RootCodes []*Code

	codeIndex map[string]int
	used      map[string]struct{}
	linked    bool
}

func (c *Concept) String() string {
	return "Concept(" + c.ID + ")"
}

// AddCode appends a code to the concept. Parent links are resolved later by
// LinkParents.
func (c *Concept) AddCode(id, description, unit, parentID string) (*Code, error) {
	if _, ok := c.codeIndex[id]; ok {
		return nil, structuref("code '%s' defined twice for concept '%s' (dataset = '%s')", id, c.ID, c.Dataset.ID)
	}
	code := &Code{
		ID:          id,
		Concept:     c,
		Description: description,
		Unit:        unit,
		ParentID:    parentID,
	}
	c.codeIndex[id] = len(c.Codes)
	c.Codes = append(c.Codes, code)
	return code, nil
}

// Code looks up a code by id.
func (c *Concept) Code(id string) (*Code, bool) {
	i, ok := c.codeIndex[id]
	if !ok {
		return nil, false
	}
	return c.Codes[i], true
}

// LinkParents resolves every code's parent id within the concept. Codes
// without a parent id become root codes. It only has an effect the first
// time it is called.
func (c *Concept) LinkParents() error {
	if c.linked {
		return nil
	}
	for _, code := range c.Codes {
		if code.ParentID == "" {
			c.RootCodes = append(c.RootCodes, code)
			continue
		}
		parent, ok := c.Code(code.ParentID)
		if !ok {
			return structuref("could not find parent code '%s' for code '%s' (dataset = '%s', concept = '%s')",
				code.ParentID, code.ID, c.Dataset.ID, c.ID)
		}
		code.Parent = parent
		parent.Children = append(parent.Children, code)
	}
	c.linked = true
	return nil
}

// MarkUsed records that code appeared in harvested data.
func (c *Concept) MarkUsed(code *Code) {
	c.used[code.ID] = struct{}{}
}

// Used reports whether code appeared in harvested data.
func (c *Concept) Used(code *Code) bool {
	_, ok := c.used[code.ID]
	return ok
}

// UsedCodes returns the used codes in code list order.
func (c *Concept) UsedCodes() []*Code {
	codes := make([]*Code, 0, len(c.used))
	for _, code := range c.Codes {
		if c.Used(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

// Code is one category value of a concept. Unit is empty when the code
// description carried no (or an ignored) unit annotation.
type Code struct {
	ID          string
	Concept     *Concept
	Description string
	Unit        string
	ParentID    string
	Parent      *Code
	Children    []*Code
}

func (c *Code) String() string {
	return "Code(" + c.ID + ")"
}

// Descendants returns the codes exactly hops levels below c, in child order.
// Zero hops returns c itself.
func (c *Code) Descendants(hops int) []*Code {
	if hops < 0 {
		return nil
	}
	var out []*Code
	c.appendDescendants(hops, &out)
	return out
}

func (c *Code) appendDescendants(hops int, out *[]*Code) {
	if hops == 0 {
		*out = append(*out, c)
		return
	}
	for _, child := range c.Children {
		child.appendDescendants(hops-1, out)
	}
}
