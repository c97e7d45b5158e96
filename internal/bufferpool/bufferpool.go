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

// Package bufferpool maintains a pool of staging buffers for slicing
// readers into stream chunks without allocating per read.
package bufferpool

import "sync"

const (
	// _chunkSize is the default read size, and so the largest chunk a
	// pooled pump hands to a bridge in one write.
	_chunkSize = 32 * 1024

	// _maxRetain caps the capacity of buffers returned to the pool.
	_maxRetain = 64 * 1024
)

var _pool = sync.Pool{
	New: func() interface{} {
		return &Buffer{bs: make([]byte, _chunkSize)}
	},
}

// Buffer is a pooled staging buffer. It is only a scratch area: bytes
// must be copied out before the buffer is released.
type Buffer struct {
	bs []byte
}

// Bytes returns the buffer's backing slice at full length.
func (b *Buffer) Bytes() []byte {
	return b.bs
}

// Get fetches a buffer from the pool.
func Get() *Buffer {
	return _pool.Get().(*Buffer)
}

// Put releases a buffer back to the pool. Buffers grown past the
// retention cap are dropped instead.
func Put(b *Buffer) {
	if cap(b.bs) <= _maxRetain {
		_pool.Put(b)
	}
}
