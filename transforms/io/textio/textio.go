// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package textio reads and writes lines of text against any blob
// storage with a gocloud.dev driver, such as file://, s3://, or gs://
// buckets. Callers must blank import the driver they address.
package textio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/datchley/seqpipe"
)

// Read emits the lines of the named objects in the bucket, in key
// order, with each object's lines in their original order. Lines are
// emitted without their trailing newline.
func Read(s *seqpipe.Scope, bucketURL string, keys ...string) seqpipe.PCol[string] {
	return read(s, "", bucketURL, keys)
}

// ReadCharset is like [Read] for objects in a non UTF-8 charset.
// Lines are decoded to UTF-8 before being emitted. Supported charsets
// are latin-1 (iso-8859-1) and windows-1252.
func ReadCharset(s *seqpipe.Scope, charset, bucketURL string, keys ...string) seqpipe.PCol[string] {
	return read(s, charset, bucketURL, keys)
}

func read(s *seqpipe.Scope, charset, bucketURL string, keys []string) seqpipe.PCol[string] {
	srcs := seqpipe.Create(s, keys...)
	fn := seqpipe.ParDo(s, srcs, &readFn{
		Bucket:  bucketURL,
		Charset: charset,
	}, seqpipe.Name("textio.Read"))
	return fn.Lines
}

type readFn struct {
	Bucket  string
	Charset string

	bucket *blob.Bucket

	seqpipe.OnBundleFinish
	Lines     seqpipe.PCol[string]
	LinesRead seqpipe.CounterInt64
}

func (fn *readFn) ProcessBundle(dfc *seqpipe.DFC[string]) error {
	ctx := dfc.Context()
	decoder, err := charsetDecoder(fn.Charset)
	if err != nil {
		return err
	}
	bucket, err := blob.OpenBucket(ctx, fn.Bucket)
	if err != nil {
		return errors.Wrapf(err, "opening bucket %q", fn.Bucket)
	}
	fn.bucket = bucket
	fn.OnBundleFinish.Do(dfc, func() error {
		return errors.Wrapf(fn.bucket.Close(), "closing bucket %q", fn.Bucket)
	})
	return dfc.Process(func(ec seqpipe.ElmC, key string) error {
		r, err := fn.bucket.NewReader(ctx, key, nil)
		if err != nil {
			return errors.Wrapf(err, "opening %q in bucket %q", key, fn.Bucket)
		}
		defer r.Close()
		var src io.Reader = r
		if decoder != nil {
			src = decoder.Reader(r)
		}
		sc := bufio.NewScanner(src)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for sc.Scan() {
			fn.LinesRead.Inc(dfc, 1)
			fn.Lines.Emit(ec, sc.Text())
		}
		return errors.Wrapf(sc.Err(), "reading %q in bucket %q", key, fn.Bucket)
	})
}

func charsetDecoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder(), nil
	}
	return nil, errors.Errorf("unsupported charset %q", name)
}

// Write persists the input collection to the bucket as newline
// terminated shard objects named "<prefix>-NNNNN-of-MMMMM". Elements
// are split contiguously across shards, preserving input order within
// and across them. Fewer elements than shards leaves trailing shards
// empty rather than absent.
func Write(s *seqpipe.Scope, input seqpipe.PCol[string], bucketURL, prefix string, shards int) {
	seqpipe.ParDo(s, input, &writeFn{
		Bucket: bucketURL,
		Prefix: prefix,
		Shards: shards,
	}, seqpipe.Name("textio.Write"))
}

type writeFn struct {
	Bucket string
	Prefix string
	Shards int

	lines []string

	seqpipe.OnBundleFinish
	LinesWritten seqpipe.CounterInt64
}

func (fn *writeFn) ProcessBundle(dfc *seqpipe.DFC[string]) error {
	ctx := dfc.Context()
	shards := max(fn.Shards, 1)
	fn.lines = fn.lines[:0]
	fn.OnBundleFinish.Do(dfc, func() error {
		bucket, err := blob.OpenBucket(ctx, fn.Bucket)
		if err != nil {
			return errors.Wrapf(err, "opening bucket %q", fn.Bucket)
		}
		defer bucket.Close()

		per := (len(fn.lines) + shards - 1) / shards
		eg, egctx := errgroup.WithContext(ctx)
		for i := 0; i < shards; i++ {
			key := fmt.Sprintf("%s-%05d-of-%05d", fn.Prefix, i, shards)
			start := min(i*per, len(fn.lines))
			stop := min(start+per, len(fn.lines))
			chunk := fn.lines[start:stop]
			eg.Go(func() error {
				w, err := bucket.NewWriter(egctx, key, nil)
				if err != nil {
					return errors.Wrapf(err, "creating %q in bucket %q", key, fn.Bucket)
				}
				for _, line := range chunk {
					if _, err := io.WriteString(w, line+"\n"); err != nil {
						w.Close()
						return errors.Wrapf(err, "writing %q in bucket %q", key, fn.Bucket)
					}
				}
				return errors.Wrapf(w.Close(), "closing %q in bucket %q", key, fn.Bucket)
			})
		}
		return eg.Wait()
	})
	return dfc.Process(func(ec seqpipe.ElmC, line string) error {
		fn.LinesWritten.Inc(dfc, 1)
		fn.lines = append(fn.lines, line)
		return nil
	})
}
