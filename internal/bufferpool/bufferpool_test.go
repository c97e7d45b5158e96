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

package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsFullChunk(t *testing.T) {
	buf := Get()
	defer Put(buf)
	assert.Len(t, buf.Bytes(), _chunkSize)
}

func TestPutDropsOversizedBuffers(t *testing.T) {
	big := &Buffer{bs: make([]byte, _maxRetain+1)}
	Put(big)

	buf := Get()
	defer Put(buf)
	assert.LessOrEqual(t, cap(buf.Bytes()), _maxRetain,
		"the pool must not retain buffers past the cap")
}

func TestReuseRoundTrip(t *testing.T) {
	buf := Get()
	copy(buf.Bytes(), "sentinel")
	Put(buf)

	again := Get()
	defer Put(again)
	assert.Len(t, again.Bytes(), _chunkSize, "reused buffers keep their full length")
}
