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

// Package streambridgetest provides scriptable stream consumers for
// testing code built on streambridge.
package streambridgetest

import (
	"fmt"
	"sync"
)

// RecordingHandle is a Handle that records everything the bridge pushes
// at it. Its capacity only changes when the test changes it, so tests
// control exactly how far a drain may proceed.
//
// The handle panics if the bridge ever pushes a chunk larger than the
// capacity it last reported, which turns quota violations into loud test
// failures.
//
// RecordingHandle is safe for concurrent use.
type RecordingHandle struct {
	mu       sync.Mutex
	capacity int
	chunks   [][]byte
	closed   bool
	failErr  error
}

// NewRecordingHandle builds a RecordingHandle with the given starting
// capacity, in bytes.
func NewRecordingHandle(capacity int) *RecordingHandle {
	return &RecordingHandle{capacity: capacity}
}

// Remaining reports the unconsumed capacity.
func (h *RecordingHandle) Remaining() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.capacity
}

// Accept records the chunk and consumes capacity for it.
func (h *RecordingHandle) Accept(p []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(p) > h.capacity {
		panic(fmt.Sprintf(
			"streambridgetest: accepted %d bytes with only %d remaining", len(p), h.capacity))
	}
	h.capacity -= len(p)
	chunk := make([]byte, len(p))
	copy(chunk, p)
	h.chunks = append(h.chunks, chunk)
}

// Close records the graceful end of stream.
func (h *RecordingHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

// Fail records the stream failure.
func (h *RecordingHandle) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failErr = err
}

// SetCapacity replaces the reported capacity. The caller still decides
// when the bridge learns about it, usually with Bridge.OnWritable.
func (h *RecordingHandle) SetCapacity(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.capacity = n
}

// AddCapacity grows the reported capacity by n bytes.
func (h *RecordingHandle) AddCapacity(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.capacity += n
}

// Chunks returns the recorded chunks in delivery order.
func (h *RecordingHandle) Chunks() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	chunks := make([][]byte, len(h.chunks))
	copy(chunks, h.chunks)
	return chunks
}

// Bytes returns every delivered byte, concatenated in delivery order.
func (h *RecordingHandle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []byte
	for _, c := range h.chunks {
		out = append(out, c...)
	}
	return out
}

// Closed reports whether the bridge delivered a graceful close.
func (h *RecordingHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// FailedWith returns the failure the bridge delivered, if any.
func (h *RecordingHandle) FailedWith() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failErr
}
