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

import "errors"

var (
	// ErrClosed is the failure recorded for writes submitted after the
	// stream was closed gracefully with Done.
	ErrClosed = errors.New("streambridge: stream already closed")

	// ErrEarlyDone is the failure recorded when Done is called while
	// writes are still queued. Closing a stream with undelivered data is
	// misuse: the queued writes and the downstream handle are failed with
	// this error rather than silently dropped or flushed.
	ErrEarlyDone = errors.New("streambridge: stream closed with undelivered writes")

	// ErrAborted is the abort cause recorded when the consumer aborts
	// without supplying one.
	ErrAborted = errors.New("streambridge: stream aborted")

	// errNoCause substitutes for a nil cause passed to Fail.
	errNoCause = errors.New("streambridge: stream failed with no cause")
)
