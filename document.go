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
	"bytes"
	"encoding/json"
	"io/ioutil"

	"github.com/pkg/errors"
)

// Document is a decoded response of the remote query service. Only the
// fields the harvester needs are decoded; which of them are populated
// depends on the query method. A nil slice means the field was absent.
type Document struct {
	Datasets []DatasetEntry `json:"datasets"`
	Concepts []string       `json:"concepts"`
	Codes    []CodeEntry    `json:"codes"`
	Series   []Series       `json:"series"`

	// Raw holds the undecoded document.
	Raw []byte `json:"-"`
}

// DatasetEntry is one element of a dataset list.
type DatasetEntry struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// CodeEntry is one element of a code list.
type CodeEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	ParentCode  string `json:"parentCode"`
}

// Series is one observation series of a generic data document.
type Series struct {
	Concepts     []SeriesConcept `json:"concepts"`
	Observations []Observation   `json:"observations"`
}

// SeriesConcept assigns a code to a concept for a series.
type SeriesConcept struct {
	Name  string `json:"name"`
	Value string `json:"Value"`
}

// Observation is one time period of a series.
type Observation struct {
	Time  Literal `json:"Time"`
	Value Literal `json:"Value"`
}

// Literal is a JSON scalar kept as its text. Strings are unquoted, numbers
// keep their literal form and null is absent.
type Literal struct {
	s *string
}

// NewLiteral returns a present Literal holding s.
func NewLiteral(s string) Literal {
	return Literal{s: &s}
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Literal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		l.s = nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		l.s = &s
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		return errors.Errorf("expected a scalar, got %s", b)
	default:
		s := string(b)
		l.s = &s
	}
	return nil
}

// Ptr returns the text or nil when absent.
func (l Literal) Ptr() *string {
	return l.s
}

// String returns the text, or "" when absent.
func (l Literal) String() string {
	if l.s == nil {
		return ""
	}
	return *l.s
}

// DecodeDocument decodes a raw service response.
func DecodeDocument(raw []byte) (*Document, error) {
	doc := &Document{Raw: raw}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	return doc, nil
}

// ReadDocument reads and decodes a cached service response.
func ReadDocument(path string) (*Document, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return doc, nil
}

// excerpt returns the start of the raw document for diagnostics.
func (d *Document) excerpt() string {
	if d == nil {
		return "null"
	}
	const max = 512
	if len(d.Raw) > max {
		return string(d.Raw[:max]) + "..."
	}
	return string(d.Raw)
}
