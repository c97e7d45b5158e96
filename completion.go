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

import (
	"context"

	"go.uber.org/atomic"
)

// Completion is the one-shot result of a single Write. It resolves
// exactly once: with nil once the chunk has been accepted downstream, or
// with the stream's terminal cause if the stream aborts while the chunk
// is still queued.
type Completion struct {
	resolved atomic.Bool
	err      error
	done     chan struct{}
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// resolve records the result. The first call wins; the guard makes a
// second resolution structurally impossible rather than merely
// forbidden.
func (c *Completion) resolve(err error) {
	if !c.resolved.CAS(false, true) {
		return
	}
	c.err = err
	close(c.done)
}

// Done returns a channel that closes once the completion has resolved.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Err returns the resolution error, nil for success. It is only
// meaningful after the channel returned by Done has closed; before that
// it returns nil.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the completion resolves or ctx ends, whichever comes
// first. Abandoning a Wait does not withdraw the chunk: the bridge may
// still deliver it later.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
