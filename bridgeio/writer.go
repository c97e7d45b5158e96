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

	"go.uber.org/streambridge"
)

// Writer adapts the producer half of a Bridge to io.WriteCloser. Every
// Write blocks until the bridge has delivered the chunk downstream, so
// callers inherit the consumer's backpressure through the ordinary
// io.Writer contract.
//
// Writer is not safe for concurrent use.
type Writer struct {
	ctx    context.Context
	bridge *streambridge.Bridge
	err    error
}

// NewWriter builds a Writer over b. The context bounds every subsequent
// Write: if it ends while a chunk is still queued, the Write returns the
// context's error and the Writer becomes unusable.
func NewWriter(ctx context.Context, b *streambridge.Bridge) *Writer {
	return &Writer{ctx: ctx, bridge: b}
}

// Write copies p, submits the copy to the bridge, and waits for its
// Completion. Errors are sticky: once a Write fails, every later Write
// fails the same way.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	if err := w.bridge.Write(chunk).Wait(w.ctx); err != nil {
		w.err = err
		return 0, err
	}
	return len(p), nil
}

// Close ends the stream. A healthy Writer closes the bridge gracefully;
// one that already failed forwards its sticky error downstream instead
// and returns it.
func (w *Writer) Close() error {
	if w.err != nil {
		w.bridge.Fail(w.ctx, w.err)
		return w.err
	}
	return w.bridge.Done(w.ctx)
}

// CloseWithError fails the stream with err, forwarding it to the
// consumer. Close and CloseWithError after a terminal state are no-ops
// on the stream.
func (w *Writer) CloseWithError(err error) error {
	return w.bridge.Fail(w.ctx, err)
}
