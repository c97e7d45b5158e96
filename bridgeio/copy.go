// Copyright (c) 2021 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package bridgeio

import (
	"context"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/streambridge"
	"go.uber.org/streambridge/internal/bufferpool"
)

// Copy pumps r through b one chunk at a time, waiting for each chunk's
// Completion before reading the next, so the reader advances no faster
// than the consumer accepts. It closes the stream with Done on EOF and
// fails it with the read error otherwise, and returns the number of
// bytes handed to the bridge.
//
// Reads are staged through a pooled buffer; each chunk handed to the
// bridge is an exact-size copy.
func Copy(ctx context.Context, b *streambridge.Bridge, r io.Reader) (int64, error) {
	buf := bufferpool.Get()
	defer bufferpool.Put(buf)
	bs := buf.Bytes()

	var total int64
	for {
		n, rerr := r.Read(bs)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, bs[:n])
			if werr := b.Write(chunk).Wait(ctx); werr != nil {
				if werr == ctx.Err() {
					// The stream does not know the producer gave up yet.
					b.Fail(ctx, werr)
				}
				return total, werr
			}
			total += int64(n)
		}
		switch {
		case rerr == io.EOF:
			return total, b.Done(ctx)
		case rerr != nil:
			// Fail reports any failure the stream had already recorded,
			// which the caller should see alongside the read error.
			return total, multierr.Append(rerr, b.Fail(ctx, rerr))
		}
	}
}
