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

package boltdb

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
	"github.com/statmap/harvest/test"
)

func TestLedger(t *testing.T) {
	dir, cleanup := test.TempDir(t, "ledger")
	defer cleanup()
	path := filepath.Join(dir, "ledger.db")
	l, err := NewLedger(path)
	test.ErrNil(t, err, "opening ledger")

	fetched := time.Date(2012, 5, 1, 10, 0, 0, 0, time.UTC)
	b := harvest.LedgerEntry{URL: "http://x/b", Path: "raw/b.json", Size: 20, Fetched: fetched}
	a := harvest.LedgerEntry{URL: "http://x/a", Path: "raw/a.json", Size: 10, Fetched: fetched}
	test.ErrNil(t, l.Record(b), "recording b")
	test.ErrNil(t, l.Record(a), "recording a")

	got, ok, err := l.Get("http://x/a")
	test.ErrNil(t, err, "getting a")
	if !ok {
		t.Fatal("a should be recorded")
	}
	test.MustBe(t, a, got)

	_, ok, err = l.Get("http://x/missing")
	test.ErrNil(t, err, "getting missing")
	if ok {
		t.Fatal("unexpected entry for missing url")
	}

	var urls []string
	test.ErrNil(t, l.Entries(func(e harvest.LedgerEntry) error {
		urls = append(urls, e.URL)
		return nil
	}), "listing entries")
	test.MustBe(t, []string{"http://x/a", "http://x/b"}, urls)

	stop := errors.New("stop")
	n := 0
	err = l.Entries(func(e harvest.LedgerEntry) error {
		n++
		return stop
	})
	test.MustBe(t, stop, errors.Cause(err), "entries error")
	test.MustBe(t, 1, n, "entries visited after error")

	test.ErrNil(t, l.Forget("http://x/a"), "forgetting a")
	test.ErrNil(t, l.Forget("http://x/never"), "forgetting unknown url")
	_, ok, _ = l.Get("http://x/a")
	if ok {
		t.Fatal("a should be forgotten")
	}
	test.ErrNil(t, l.Close(), "closing")

	// entries survive reopening
	l, err = NewLedger(path)
	test.ErrNil(t, err, "reopening ledger")
	defer l.Close()
	got, ok, err = l.Get("http://x/b")
	test.ErrNil(t, err, "getting b")
	if !ok || got.Size != 20 {
		t.Fatalf("unexpected entry after reopen: %v, %v", got, ok)
	}
}

func TestLedgerConcurrent(t *testing.T) {
	dir, cleanup := test.TempDir(t, "ledger")
	defer cleanup()
	path := filepath.Join(dir, "ledger.db")
	l, err := NewLedger(path)
	test.ErrNil(t, err, "opening ledger")
	defer l.Close()

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				e := harvest.LedgerEntry{URL: "http://x/" + string(rune('a'+i)) + "/" + string(rune('a'+j))}
				if err := l.Record(e); err != nil {
					t.Errorf("recording: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
	n := 0
	test.ErrNil(t, l.Entries(func(harvest.LedgerEntry) error { n++; return nil }), "counting")
	test.MustBe(t, 200, n)
}
