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

// Package s3 publishes a processed output tree to an S3 bucket.
package s3

import (
	"context"
	"os"
	"path"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/statmap/harvest"
	"github.com/statmap/harvest/file"
	"golang.org/x/sync/errgroup"
)

// PubOption is a functional option type for Publisher.
type PubOption func(p *Publisher)

// OptPubBucket sets the destination bucket.
func OptPubBucket(bucket string) PubOption {
	return func(p *Publisher) {
		p.bucket = bucket
	}
}

// OptPubPrefix sets the key prefix under which the tree is uploaded.
func OptPubPrefix(prefix string) PubOption {
	return func(p *Publisher) {
		p.prefix = strings.Trim(prefix, "/")
	}
}

// OptPubRegion sets the AWS region used when no client is given.
func OptPubRegion(region string) PubOption {
	return func(p *Publisher) {
		p.region = region
	}
}

// OptPubClient sets the S3 client. Mostly useful for tests.
func OptPubClient(c s3iface.S3API) PubOption {
	return func(p *Publisher) {
		p.client = c
	}
}

// OptPubConcurrency sets the number of simultaneous uploads.
func OptPubConcurrency(n int) PubOption {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// OptPubLogger sets the logger.
func OptPubLogger(l harvest.Logger) PubOption {
	return func(p *Publisher) {
		p.log = l
	}
}

// OptPubStatter sets the statter.
func OptPubStatter(s harvest.Statter) PubOption {
	return func(p *Publisher) {
		p.stats = s
	}
}

// Publisher uploads every file of a directory tree to S3, keyed by its path
// relative to the tree root.
type Publisher struct {
	bucket      string
	prefix      string
	region      string
	concurrency int

	client s3iface.S3API
	log    harvest.Logger
	stats  harvest.Statter
}

// NewPublisher returns a new Publisher with the options applied.
func NewPublisher(opts ...PubOption) (*Publisher, error) {
	p := &Publisher{
		concurrency: 8,
		log:         harvest.NopLogger{},
		stats:       harvest.NopStatter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bucket == "" {
		return nil, errors.New("no bucket given")
	}
	if p.client == nil {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(p.region)},
		)
		if err != nil {
			return nil, errors.Wrap(err, "getting new session")
		}
		p.client = s3.New(sess)
	}
	return p, nil
}

// Key returns the object key for a slash separated relative path.
func (p *Publisher) Key(rel string) string {
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

// Publish uploads the tree below root and returns the number of objects
// written. The first failed upload cancels the rest.
func (p *Publisher) Publish(ctx context.Context, root string) (int, error) {
	entries, err := file.Tree(root)
	if err != nil {
		return 0, errors.Wrap(err, "listing files")
	}
	p.log.Printf("publishing %d file(s) from %s to s3://%s/%s", len(entries), root, p.bucket, p.prefix)

	var n int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, e := range entries {
		if gctx.Err() != nil {
			break
		}
		e := e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.upload(gctx, e); err != nil {
				return err
			}
			atomic.AddInt64(&n, 1)
			p.stats.Count("published", 1, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(n), err
	}
	return int(n), ctx.Err()
}

func (p *Publisher) upload(ctx context.Context, e file.Entry) error {
	f, err := os.Open(e.Path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", e.Path)
	}
	defer f.Close()
	key := p.Key(e.Rel)
	p.log.Debugf("uploading %s", key)
	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(e.Size),
		ContentType:   aws.String(contentType(e.Rel)),
	})
	return errors.Wrapf(err, "putting %s", key)
}

func contentType(rel string) string {
	if strings.HasSuffix(rel, ".json") {
		return "application/json"
	}
	return "application/octet-stream"
}
