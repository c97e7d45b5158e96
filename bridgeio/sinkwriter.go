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
	"sync"

	"go.uber.org/streambridge"
	"go.uber.org/zap"
)

type sinkWriterOptions struct {
	logger *zap.Logger
}

// SinkWriterOption customizes a SinkWriter.
type SinkWriterOption func(*sinkWriterOptions)

// SinkLogger specifies the logger the sink writes diagnostics to.
//
// Defaults to a no-op logger.
func SinkLogger(logger *zap.Logger) SinkWriterOption {
	return func(options *sinkWriterOptions) {
		options.logger = logger
	}
}

// SinkWriter drives the consumer half of a Bridge into an io.Writer.
// It grants the bridge a credit window of a fixed number of bytes:
// chunks the bridge delivers land on an internal queue without blocking
// the bridge, and a pump goroutine flushes them to the writer and
// re-arms the bridge as credit frees up.
//
// The window bounds both the sink's buffered bytes and the largest
// deliverable chunk; a producer chunk larger than the window will never
// fit the advertised quota and stalls the stream.
type SinkWriter struct {
	w      io.Writer
	window int
	logger *zap.Logger

	bridge *streambridge.Bridge

	mu      sync.Mutex
	queue   [][]byte
	pending int
	closing bool
	failure error

	wake chan struct{}
	done chan struct{}
	err  error
}

// NewSinkWriter builds a SinkWriter that copies stream bytes to w with
// the given credit window, in bytes.
func NewSinkWriter(w io.Writer, window int, opts ...SinkWriterOption) *SinkWriter {
	options := sinkWriterOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}
	return &SinkWriter{
		w:      w,
		window: window,
		logger: options.logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Attach installs the sink on b and starts the pump. It must be called
// exactly once.
func (s *SinkWriter) Attach(b *streambridge.Bridge) {
	s.bridge = b
	go s.pump()
	b.OnInit(sinkHandle{s})
	b.OnWritable()
}

// Wait blocks until the stream has fully flushed or failed, or until ctx
// ends. It returns the terminal stream error, if any.
func (s *SinkWriter) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sinkHandle is the Handle the bridge sees. Its methods run under the
// bridge's lock, so they only touch the sink's own state and leave all
// bridge calls to the pump goroutine.
type sinkHandle struct {
	s *SinkWriter
}

func (h sinkHandle) Remaining() int {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing || s.failure != nil {
		return 0
	}
	return s.window - s.pending
}

func (h sinkHandle) Accept(p []byte) {
	s := h.s
	s.mu.Lock()
	s.pending += len(p)
	s.queue = append(s.queue, p)
	s.mu.Unlock()
	s.signal()
}

func (h sinkHandle) Close() {
	s := h.s
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.signal()
}

func (h sinkHandle) Fail(err error) {
	s := h.s
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
	s.signal()
}

func (s *SinkWriter) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump flushes accepted chunks to the underlying writer on its own
// goroutine. Running outside the bridge's lock, it is the one place the
// sink is allowed to call back into the bridge.
func (s *SinkWriter) pump() {
	for range s.wake {
		for {
			s.mu.Lock()
			if cause := s.failure; cause != nil {
				dropped := len(s.queue)
				s.queue = nil
				s.mu.Unlock()
				if dropped > 0 {
					s.logger.Debug("dropping undelivered chunks after stream failure",
						zap.Int("chunks", dropped), zap.Error(cause))
				}
				s.finish(cause)
				return
			}
			if len(s.queue) == 0 {
				if s.closing {
					s.mu.Unlock()
					s.finish(nil)
					return
				}
				s.mu.Unlock()
				break
			}
			chunk := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			if _, err := s.w.Write(chunk); err != nil {
				s.logger.Debug("sink write failed", zap.Error(err))
				s.finish(err)
				return
			}

			s.mu.Lock()
			s.pending -= len(chunk)
			s.mu.Unlock()
			s.bridge.OnWritable()
		}
	}
}

// finish tears the stream down exactly once. A non-nil err is echoed
// back to the bridge as an abort so queued producer writes resolve
// instead of hanging.
func (s *SinkWriter) finish(err error) {
	if err != nil {
		s.bridge.OnAbort(err)
	}
	s.err = err
	close(s.done)
}
