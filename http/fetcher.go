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

// Package http provides a harvest.Fetcher which downloads service documents
// over HTTP and keeps a copy of every response on disk.
package http

import (
	"context"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
)

var _ harvest.Fetcher = &Fetcher{}

// Fetcher implements harvest.Fetcher. A cached copy always wins over the
// network; responses are written to the cache before they are decoded so
// that a bad document can be inspected and discarded.
type Fetcher struct {
	client    *http.Client
	userAgent string
	ledger    harvest.Ledger
	log       harvest.Logger
	stats     harvest.Statter
}

// FetcherOption is a functional option type for Fetcher.
type FetcherOption func(f *Fetcher)

// OptClient sets the HTTP client used for downloads.
func OptClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// OptUserAgent sets the User-Agent header sent with every request.
func OptUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// OptLedger records every completed download in l.
func OptLedger(l harvest.Ledger) FetcherOption {
	return func(f *Fetcher) {
		f.ledger = l
	}
}

// OptLogger sets the logger.
func OptLogger(l harvest.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = l
	}
}

// OptStatter sets the statter.
func OptStatter(s harvest.Statter) FetcherOption {
	return func(f *Fetcher) {
		f.stats = s
	}
}

// NewFetcher gets a new Fetcher. The default client gives up on a request
// after one minute.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: time.Minute},
		userAgent: "harvest",
		log:       harvest.NopLogger{},
		stats:     harvest.NopStatter{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements harvest.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url, cachePath string) (*harvest.Document, error) {
	raw, err := ioutil.ReadFile(cachePath)
	if err == nil {
		f.log.Debugf("using cached %s", cachePath)
		doc, err := harvest.DecodeDocument(raw)
		return doc, errors.Wrapf(err, "decoding cached %s", cachePath)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "reading %s", cachePath)
	}

	f.log.Printf("downloading %s", url)
	start := time.Now()
	raw, err = f.download(ctx, url)
	if err != nil {
		f.stats.Count("fetch_errors", 1, 1)
		return nil, err
	}
	f.stats.Timing("fetch_time", time.Since(start), 1)
	if err := writeFile(cachePath, raw); err != nil {
		return nil, errors.Wrapf(err, "caching %s", url)
	}
	if f.ledger != nil {
		err := f.ledger.Record(harvest.LedgerEntry{
			URL:     url,
			Path:    cachePath,
			Size:    int64(len(raw)),
			Fetched: time.Now().UTC(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "recording download")
		}
	}
	doc, err := harvest.DecodeDocument(raw)
	return doc, errors.Wrapf(err, "decoding %s", url)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", url)
	}
	defer resp.Body.Close()
	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading body of %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return raw, nil
}

// Discard implements harvest.Fetcher by removing the cached copy and its
// ledger entry.
func (f *Fetcher) Discard(url, cachePath string) error {
	if err := os.Remove(cachePath); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", cachePath)
	}
	if f.ledger != nil {
		return f.ledger.Forget(url)
	}
	return nil
}

// writeFile writes data next to path and renames it into place, so that an
// interrupted run never leaves a truncated document in the cache.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "making directory")
	}
	tmp, err := ioutil.TempFile(dir, ".fetch-")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "closing temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "renaming temp file")
}
