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

// Package harvest downloads hierarchical regional statistics from the ABS.Stat
// query service and re-encodes them into a compact file tree which is cheap
// to transmit and query by region.
//
// A harvest runs in stages.
//
// 1. Metadata
//
//    The Loader fetches the dataset list, the concept list of every dataset
//    and the code list of every concept. Only datasets carrying both a region
//    and a region type concept, whose region types include the finest level
//    of the geography (SA2), are kept. Codes are parsed into a Dataset →
//    Concept → Code model; code descriptions lose a trailing unit annotation
//    such as "(years)" which becomes the code's Unit, and code parents are
//    linked into a tree per concept.
//
// 2. Traversal
//
//    The region concept of a dataset encodes a fixed five level hierarchy
//    (Australia, states, SA4, SA3, SA2). A Traversal walks it top down and
//    issues one query per node of the previous level. Every query is cached
//    on disk by the Fetcher, so an interrupted harvest can simply be rerun.
//    Queries which keep failing are recorded in the ErrorLog and skipped.
//
// 3. Cube
//
//    Every returned series assigns a code to each combination concept. The
//    series is inserted into a Cube, a tree with one level per combination
//    concept and the region concept last. Only combinations which were
//    actually returned exist in the tree.
//
// 4. Output
//
//    The Serializer writes one RegionDocument per combination of the
//    non-region concepts, with the time axis pruned of sparsely reported
//    periods, values converted to numbers where possible and the extremes of
//    the values precomputed. A per-dataset summary lists the codes which
//    occur in the data and a top level list names all datasets.
//
// The Harvester ties the stages together and processes datasets with a fixed
// number of workers.
package harvest
