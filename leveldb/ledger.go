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

package leveldb

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var _ harvest.Ledger = &Ledger{}

// Ledger is a harvest.Ledger which stores download records in leveldb, keyed
// by URL.
type Ledger struct {
	db *leveldb.DB
}

// NewLedger opens (creating if necessary) a ledger in dirname.
func NewLedger(dirname string) (*Ledger, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", dirname)
	}
	return &Ledger{db: db}, nil
}

// Record stores e, replacing any previous entry for the same URL.
func (l *Ledger) Record(e harvest.LedgerEntry) error {
	val, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshalling entry")
	}
	err = l.db.Put([]byte(e.URL), val, &opt.WriteOptions{})
	return errors.Wrapf(err, "recording %s", e.URL)
}

// Forget removes the entry for url. Forgetting an unknown URL is not an
// error.
func (l *Ledger) Forget(url string) error {
	err := l.db.Delete([]byte(url), &opt.WriteOptions{})
	return errors.Wrapf(err, "forgetting %s", url)
}

// Get returns the entry for url and whether it exists.
func (l *Ledger) Get(url string) (e harvest.LedgerEntry, ok bool, err error) {
	data, err := l.db.Get([]byte(url), &opt.ReadOptions{})
	if err == leveldb.ErrNotFound {
		return e, false, nil
	} else if err != nil {
		return e, false, errors.Wrapf(err, "reading %s", url)
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, false, errors.Wrapf(err, "decoding entry for %s", url)
	}
	return e, true, nil
}

// Entries calls fn for each entry in URL order.
func (l *Ledger) Entries(fn func(harvest.LedgerEntry) error) error {
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		var e harvest.LedgerEntry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return errors.Wrapf(err, "decoding entry for %s", iter.Key())
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return errors.Wrap(iter.Error(), "iterating")
}

// Close closes the underlying leveldb.
func (l *Ledger) Close() error {
	return l.db.Close()
}
