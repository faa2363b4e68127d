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

package s3

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/statmap/harvest"
)

// Main contains the configuration for publishing a processed tree to S3.
type Main struct {
	ProcessedDir string `help:"Directory holding the processed output tree."`
	Bucket       string `help:"S3 bucket to upload to."`
	Prefix       string `help:"Key prefix for uploaded objects."`
	Region       string `help:"AWS region to use."`
	Concurrency  int    `help:"Number of simultaneous uploads."`
	Verbose      bool   `help:"Log every upload."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		ProcessedDir: "data/processed",
		Region:       "us-east-1",
		Concurrency:  8,
	}
}

// Run publishes the tree.
func (m *Main) Run() error {
	var logger harvest.Logger = harvest.StdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	if m.Verbose {
		logger = harvest.VerboseLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	}
	p, err := NewPublisher(
		OptPubBucket(m.Bucket),
		OptPubPrefix(m.Prefix),
		OptPubRegion(m.Region),
		OptPubConcurrency(m.Concurrency),
		OptPubLogger(logger),
	)
	if err != nil {
		return errors.Wrap(err, "getting publisher")
	}
	n, err := p.Publish(context.Background(), m.ProcessedDir)
	if err != nil {
		return errors.Wrap(err, "publishing")
	}
	logger.Printf("published %d object(s)", n)
	return nil
}
