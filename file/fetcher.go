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

// Package file provides an offline harvest.Fetcher which only serves
// documents from the download cache, and helpers for enumerating the files
// of an output tree.
package file

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
)

var _ harvest.Fetcher = Fetcher{}

// Fetcher implements harvest.Fetcher without network access. A document which
// is not in the cache is an error, so the usual retry and skip rules apply.
type Fetcher struct{}

// Fetch implements harvest.Fetcher.
func (Fetcher) Fetch(ctx context.Context, url, cachePath string) (*harvest.Document, error) {
	doc, err := harvest.ReadDocument(cachePath)
	if err != nil && os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Errorf("%s is not cached (offline)", url)
	}
	return doc, err
}

// Discard implements harvest.Fetcher. Offline runs never delete cached
// documents.
func (Fetcher) Discard(url, cachePath string) error { return nil }
