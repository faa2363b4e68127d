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

// Package boltdb provides a harvest.Ledger implementation using boltdb. Every
// completed download is stored as a JSON value keyed by its URL in a single
// bucket, so the ledger can be inspected with any bolt tool.
package boltdb

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/statmap/harvest"
)

var _ harvest.Ledger = &Ledger{}

var fetchBucket = []byte("fetches")

// Ledger is a harvest.Ledger which stores download records in boltdb.
type Ledger struct {
	Db *bolt.DB
}

// NewLedger opens (creating if necessary) the ledger at filename.
func NewLedger(filename string) (*Ledger, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	db.MaxBatchDelay = 400 * time.Microsecond
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(fetchBucket)
		return errors.Wrap(err, "creating fetches bucket")
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return &Ledger{Db: db}, nil
}

// Record stores e, replacing any previous entry for the same URL. Concurrent
// callers are coalesced into batches.
func (l *Ledger) Record(e harvest.LedgerEntry) error {
	val, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshalling entry")
	}
	err = l.Db.Batch(func(tx *bolt.Tx) error {
		return tx.Bucket(fetchBucket).Put([]byte(e.URL), val)
	})
	return errors.Wrapf(err, "recording %s", e.URL)
}

// Forget removes the entry for url if there is one.
func (l *Ledger) Forget(url string) error {
	err := l.Db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(fetchBucket).Delete([]byte(url))
	})
	return errors.Wrapf(err, "forgetting %s", url)
}

// Get returns the entry for url and whether it exists.
func (l *Ledger) Get(url string) (e harvest.LedgerEntry, ok bool, err error) {
	err = l.Db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(fetchBucket).Get([]byte(url))
		if val == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(val, &e)
	})
	if err != nil {
		return e, false, errors.Wrapf(err, "getting %s", url)
	}
	return e, ok, nil
}

// Entries calls fn for each entry in URL order.
func (l *Ledger) Entries(fn func(harvest.LedgerEntry) error) error {
	return l.Db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(fetchBucket).ForEach(func(k, v []byte) error {
			var e harvest.LedgerEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return errors.Wrapf(err, "decoding entry for %s", k)
			}
			return fn(e)
		})
	})
}

// Close syncs and closes the underlying boltdb.
func (l *Ledger) Close() error {
	err := l.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return l.Db.Close()
}
