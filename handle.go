// Copyright (c) 2020 Uber Technologies, Inc.
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

package streambridge

// Handle is the downstream sink a consumer grants to a Bridge with
// OnInit. The bridge uses it to query capacity and push bytes; it never
// closes or recreates it on its own.
//
// The bridge serializes all handle calls behind its own lock, so
// implementations need not be safe for concurrent use by the bridge.
// Implementations must not call back into the bridge synchronously from
// any of these methods; re-arm the bridge (OnWritable, OnAbort) from a
// separate goroutine instead.
type Handle interface {
	// Remaining reports how many more bytes the consumer will currently
	// accept. It must be non-negative. The bridge queries it immediately
	// before every delivery.
	Remaining() int

	// Accept pushes one chunk downstream. The bridge only calls Accept
	// with len(p) <= Remaining(). The consumer takes ownership of p.
	Accept(p []byte)

	// Close signals a graceful end of stream, driven by Bridge.Done.
	Close()

	// Fail signals a terminal stream failure, driven by Bridge.Fail or by
	// a misused Done.
	Fail(err error)
}
