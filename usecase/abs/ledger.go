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

package abs

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
)

// LedgerMain lists the downloads recorded in a fetch ledger.
type LedgerMain struct {
	RawDir string `help:"Directory holding the ledger."`
	Ledger string `help:"Ledger kind: 'bolt' or 'level'."`
	Forget string `help:"Remove the entry for this URL instead of listing."`

	Stdout io.Writer `flag:"-"`
}

// NewLedgerMain gets a new LedgerMain with default values.
func NewLedgerMain() *LedgerMain {
	return &LedgerMain{
		RawDir: "data",
		Ledger: "bolt",
		Stdout: os.Stdout,
	}
}

// Run lists (or forgets) ledger entries.
func (m *LedgerMain) Run() (err error) {
	if m.Ledger == "" {
		return errors.New("no ledger kind given")
	}
	l, err := OpenLedger(m.Ledger, m.RawDir)
	if err != nil {
		return errors.Wrap(err, "opening ledger")
	}
	defer func() {
		if cerr := l.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing ledger")
		}
	}()
	if m.Forget != "" {
		return l.Forget(m.Forget)
	}

	w := tabwriter.NewWriter(m.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "FETCHED\tSIZE\tPATH\tURL")
	err = l.Entries(func(e harvest.LedgerEntry) error {
		_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Fetched.Format(time.RFC3339), e.Size, e.Path, e.URL)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "listing entries")
	}
	return w.Flush()
}
