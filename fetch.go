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
	"context"
	"time"
)

// Fetcher retrieves a service document. If a copy exists at cachePath it is
// used without network access, otherwise the document is downloaded and its
// raw bytes are stored at cachePath. Implementations must be safe for
// concurrent use on distinct cache paths.
type Fetcher interface {
	Fetch(ctx context.Context, url, cachePath string) (*Document, error)

	// Discard removes the cached copy of a document which turned out to be
	// unusable, so that the next Fetch downloads it again.
	Discard(url, cachePath string) error
}

// LedgerEntry describes one completed download.
type LedgerEntry struct {
	URL     string    `json:"url"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Fetched time.Time `json:"fetched"`
}

// Ledger keeps a persistent record of completed downloads, keyed by URL.
type Ledger interface {
	Record(e LedgerEntry) error
	Forget(url string) error
	Get(url string) (LedgerEntry, bool, error)
	// Entries calls fn for every entry in URL order until fn returns an
	// error.
	Entries(fn func(LedgerEntry) error) error
	Close() error
}
