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
	"sync"

	"go.uber.org/zap"
)

// pendingWrite pairs a queued chunk with the completion its producer is
// awaiting.
type pendingWrite struct {
	chunk []byte
	c     *Completion
}

// resolution is a completion resolved by a drain, carried out of the
// critical section so waiter callbacks never run under the bridge lock.
type resolution struct {
	c   *Completion
	err error
}

// Bridge decouples a push-style byte producer from a pull-style,
// capacity-limited consumer. See the package documentation for the
// protocol between the two sides.
//
// A Bridge is safe for concurrent use. Concurrent Write calls are
// totally ordered by the bridge's lock: whichever call enqueues first is
// delivered first.
type Bridge struct {
	mu sync.Mutex

	// All fields below are guarded by mu. Completions are always resolved
	// after mu is released.
	queue    []pendingWrite
	handle   Handle
	draining bool

	// Terminal state. abortErr fails queued and future writes; failErr
	// fails only future writes; closed marks a clean Done. First one set
	// wins and is never cleared.
	abortErr   error
	failErr    error
	closed     bool
	terminated bool

	deferredDone bool
	deferredFail error

	logger *zap.Logger
	inst   *instruments
}

// New builds a Bridge for a single logical stream.
func New(opts ...Option) *Bridge {
	options := newOptions()
	for _, opt := range opts {
		opt(&options)
	}
	b := &Bridge{
		logger: options.logger,
		inst:   newInstruments(options.meter, options.logger),
	}
	b.inst.streamsActive.Inc()
	return b
}

// Write enqueues one chunk for delivery and returns its Completion. Nil
// and zero-length chunks are legal and resolve in order like any other.
// The bridge takes ownership of p; callers that reuse their buffer must
// copy first.
//
// If the stream is already terminal the chunk is not enqueued and the
// returned Completion is already failed with the recorded cause.
//
// Write never blocks: it attempts a delivery pass before returning, so a
// producer that awaits each Completion makes progress even if the
// consumer never signals writability again.
func (b *Bridge) Write(p []byte) *Completion {
	c := newCompletion()
	b.inst.writes.Inc()

	b.mu.Lock()
	if err := b.terminalErr(); err != nil {
		b.mu.Unlock()
		b.inst.writeFailures.Inc()
		c.resolve(err)
		return c
	}
	b.queue = append(b.queue, pendingWrite{chunk: p, c: c})
	b.drainAndUnlock()
	return c
}

// OnInit installs the consumer's handle. The first handle wins for the
// bridge's lifetime; a duplicate installation is logged and ignored so
// in-flight writes keep their delivery target. OnInit does not deliver
// by itself: the consumer is expected to follow up with OnWritable.
//
// A Done or Fail issued before the handle arrived is applied here.
func (b *Bridge) OnInit(h Handle) {
	if h == nil {
		b.logger.Warn("ignoring nil stream handle")
		return
	}

	b.mu.Lock()
	if b.handle != nil {
		b.mu.Unlock()
		b.logger.Warn("ignoring duplicate stream handle installation")
		return
	}
	b.handle = h

	if cause := b.deferredFail; cause != nil {
		b.deferredFail = nil
		h.Fail(cause)
		b.mu.Unlock()
		b.logger.Debug("stream handle installed, applied deferred failure", zap.Error(cause))
		return
	}
	if b.deferredDone {
		b.deferredDone = false
		h.Close()
		b.mu.Unlock()
		b.logger.Debug("stream handle installed, applied deferred close")
		return
	}
	b.mu.Unlock()
	b.logger.Debug("stream handle installed")
}

// OnWritable tells the bridge the consumer's capacity may have grown.
// It drains queued chunks while the handle's quota allows and returns
// without delivering anything the quota does not cover.
func (b *Bridge) OnWritable() {
	b.mu.Lock()
	b.drainAndUnlock()
}

// OnAbort records a consumer-initiated terminal failure. Every queued
// write fails with cause, in submission order, and every later Write
// fails immediately with the same cause. The first abort wins; repeated
// aborts are no-ops. A nil cause is recorded as ErrAborted.
func (b *Bridge) OnAbort(cause error) {
	if cause == nil {
		cause = ErrAborted
	}

	b.mu.Lock()
	if b.abortErr != nil || b.closed {
		b.mu.Unlock()
		return
	}
	b.abortErr = cause
	b.terminate()
	b.inst.aborts.Inc()
	if b.draining {
		// The active drainer flushes the queue so failure resolutions
		// cannot overtake success resolutions already in flight.
		b.mu.Unlock()
		b.logger.Debug("stream aborted, flush deferred to active drain", zap.Error(cause))
		return
	}
	q := b.queue
	b.queue = nil
	b.mu.Unlock()

	b.logger.Debug("stream aborted", zap.Error(cause), zap.Int("undelivered", len(q)))
	for _, w := range q {
		b.inst.writeFailures.Inc()
		w.c.resolve(cause)
	}
}

// Done closes the stream gracefully, delegating to the handle's Close.
// Producers must resolve all outstanding writes first: calling Done with
// writes still queued is misuse, and the bridge fails the queued writes
// and the handle with ErrEarlyDone instead of guessing whether to drop
// or flush them.
//
// Done before OnInit defers the close until the handle arrives. Once the
// stream is terminal, Done returns the recorded cause (nil after a
// previous clean close) without further effect.
func (b *Bridge) Done(ctx context.Context) error {
	b.mu.Lock()
	if err := b.terminalErr(); err != nil {
		b.mu.Unlock()
		if err == ErrClosed {
			return nil
		}
		return err
	}
	if len(b.queue) > 0 {
		pending := len(b.queue)
		b.abortErr = ErrEarlyDone
		b.terminate()
		var q []pendingWrite
		if !b.draining {
			q = b.queue
			b.queue = nil
		}
		if b.handle != nil {
			b.handle.Fail(ErrEarlyDone)
		} else {
			b.deferredFail = ErrEarlyDone
		}
		b.mu.Unlock()

		b.logger.Warn("stream closed with undelivered writes", zap.Int("undelivered", pending))
		updateSpanWithErr(ctx, ErrEarlyDone)
		for _, w := range q {
			b.inst.writeFailures.Inc()
			w.c.resolve(ErrEarlyDone)
		}
		return ErrEarlyDone
	}

	b.closed = true
	b.terminate()
	if b.handle != nil {
		b.handle.Close()
	} else {
		b.deferredDone = true
	}
	b.mu.Unlock()
	b.logger.Debug("stream closed")
	return nil
}

// Fail records a producer-initiated terminal failure and forwards it to
// the handle's Fail. Writes already resolved keep their resolution, and
// writes still queued stay pending until the consumer reciprocates with
// OnAbort; only new writes fail immediately with cause. The producer and
// consumer termination channels are deliberately independent.
//
// Fail before OnInit defers the failure until the handle arrives. Once
// the stream is terminal, Fail returns the previously recorded cause
// without further effect.
func (b *Bridge) Fail(ctx context.Context, cause error) error {
	if cause == nil {
		cause = errNoCause
	}

	b.mu.Lock()
	if err := b.terminalErr(); err != nil {
		b.mu.Unlock()
		return err
	}
	b.failErr = cause
	b.terminate()
	if b.handle != nil {
		b.handle.Fail(cause)
	} else {
		b.deferredFail = cause
	}
	b.mu.Unlock()

	b.logger.Debug("stream failed", zap.Error(cause))
	updateSpanWithErr(ctx, cause)
	return nil
}

// terminalErr reports why new writes must be rejected, or nil while the
// stream is live. Must be called with mu held.
func (b *Bridge) terminalErr() error {
	switch {
	case b.abortErr != nil:
		return b.abortErr
	case b.failErr != nil:
		return b.failErr
	case b.closed:
		return ErrClosed
	default:
		return nil
	}
}

// terminate flips the stream out of the active gauge exactly once. Must
// be called with mu held.
func (b *Bridge) terminate() {
	if !b.terminated {
		b.terminated = true
		b.inst.streamsActive.Dec()
	}
}

// drainAndUnlock moves queued chunks downstream while the handle grants
// capacity, then releases mu. A chunk is delivered only when the quota
// reported immediately beforehand is positive and covers the whole
// chunk; chunks are never split.
//
// The drain is single-flighted: if another goroutine is already
// draining, this call returns and leaves delivery to it. That keeps
// completion resolutions, which happen outside the lock, in strict
// submission order even when Write and OnWritable race.
func (b *Bridge) drainAndUnlock() {
	if b.draining || b.handle == nil {
		b.mu.Unlock()
		return
	}
	b.draining = true

	for {
		var resolved []resolution

		for b.abortErr == nil && len(b.queue) > 0 {
			head := b.queue[0]
			remaining := b.handle.Remaining()
			if remaining <= 0 || len(head.chunk) > remaining {
				break
			}
			b.queue = b.queue[1:]
			b.handle.Accept(head.chunk)
			b.inst.writeSuccesses.Inc()
			b.inst.bytes.Add(int64(len(head.chunk)))
			resolved = append(resolved, resolution{c: head.c})
		}

		// An abort observed mid-drain flushes whatever is left, still in
		// submission order behind the successes above.
		if cause := b.abortErr; cause != nil {
			for _, w := range b.queue {
				b.inst.writeFailures.Inc()
				resolved = append(resolved, resolution{c: w.c, err: cause})
			}
			b.queue = nil
		}

		if len(resolved) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}

		b.mu.Unlock()
		for _, r := range resolved {
			r.c.resolve(r.err)
		}
		// Waiters may have enqueued more writes while we were resolving;
		// take the lock back and re-check before giving up the drain.
		b.mu.Lock()
	}
}
