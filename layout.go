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
	"path/filepath"
)

// DefaultBaseURL is the query endpoint of the ABS.Stat ITT web service.
const DefaultBaseURL = "http://stat.abs.gov.au/itt/query.jsp"

// API builds query URLs for the remote service.
type API struct {
	BaseURL string
}

// DatasetList is the URL of the list of all datasets.
func (a API) DatasetList() string {
	return a.BaseURL + "?method=GetDatasetList"
}

// DatasetConcepts is the URL of the concept list of a dataset.
func (a API) DatasetConcepts(datasetID string) string {
	return a.BaseURL + "?method=GetDatasetConcepts&datasetid=" + datasetID
}

// CodeList is the URL of the code list of one concept of a dataset.
func (a API) CodeList(datasetID, conceptID string) string {
	return a.BaseURL + "?method=GetCodeListValue&datasetid=" + datasetID + "&concept=" + conceptID + "&format=json"
}

// RegionData is the URL of the series for one node of the region hierarchy.
// The root node is queried by region code, every other node by region type
// and parent region code.
func (a API) RegionData(datasetID, regionConcept, regionTypeConcept string, level int, regionType, code string) string {
	u := a.BaseURL + "?method=GetGenericData&datasetid=" + datasetID
	if level == 0 {
		return u + "&and=" + regionConcept + "." + code
	}
	return u + "&and=" + regionTypeConcept + "." + regionType + "&orParent=" + regionConcept + "." + code
}

// Layout places raw downloads and processed output on disk.
type Layout struct {
	Raw       string
	Processed string
}

// NewLayout returns a Layout with the processed tree below the raw root.
func NewLayout(raw string) Layout {
	return Layout{
		Raw:       raw,
		Processed: filepath.Join(raw, "processed"),
	}
}

// DatasetList is the cache path of the dataset list.
func (l Layout) DatasetList() string {
	return filepath.Join(l.Raw, "datasetList.json")
}

// Concepts is the cache path of a dataset's concept list.
func (l Layout) Concepts(datasetID string) string {
	return filepath.Join(l.Raw, "concepts", datasetID+".json")
}

// CodeList is the cache path of a concept's code list.
func (l Layout) CodeList(datasetID, conceptID string) string {
	return filepath.Join(l.Raw, "codeLists", datasetID, conceptID+".json")
}

// RegionData is the cache path of the series for one region hierarchy node.
func (l Layout) RegionData(datasetID string, level int, regionType, code string) string {
	name := code + ".json"
	if level > 0 {
		name = "parent" + name
	}
	return filepath.Join(l.Raw, "data", datasetID, regionType, name)
}

// ErrorLog is the path of the error log.
func (l Layout) ErrorLog() string {
	return filepath.Join(l.Raw, "errors.txt")
}

// DatasetSummary is the path of the top level list of datasets.
func (l Layout) DatasetSummary() string {
	return filepath.Join(l.Processed, "datasets.json")
}

// DatasetDir is the root of a dataset's processed tree.
func (l Layout) DatasetDir(datasetID string) string {
	return filepath.Join(l.Processed, datasetID)
}

// Summary is the path of a dataset's concept summary.
func (l Layout) Summary(datasetID string) string {
	return filepath.Join(l.DatasetDir(datasetID), "summary.json")
}
