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
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/streambridge"
	"go.uber.org/streambridge/internal/testtime"
	"go.uber.org/streambridge/streambridgetest"
)

func TestWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(5*time.Second))
	defer cancel()

	var out bytes.Buffer
	b := streambridge.New()
	sink := NewSinkWriter(&out, 1024)
	sink.Attach(b)

	w := NewWriter(ctx, b)
	_, err := io.WriteString(w, "hello ")
	require.NoError(t, err)
	_, err = io.WriteString(w, "world")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, sink.Wait(ctx))
	assert.Equal(t, "hello world", out.String())
}

func TestWriterBufferReuseIsSafe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(5*time.Second))
	defer cancel()

	b, h := streambridgetest.Pipe(1024)
	w := NewWriter(ctx, b)

	buf := []byte("aaaa")
	_, err := w.Write(buf)
	require.NoError(t, err)
	copy(buf, "bbbb")
	_, err = w.Write(buf)
	require.NoError(t, err)

	assert.Equal(t, [][]byte{[]byte("aaaa"), []byte("bbbb")}, h.Chunks(),
		"Writer must copy chunks so callers can reuse their buffer")
}

func TestWriterContextEndsWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(20*time.Millisecond))
	defer cancel()

	b, h := streambridgetest.Pipe(0)
	w := NewWriter(ctx, b)

	_, err := w.Write([]byte("stuck"))
	require.Equal(t, context.DeadlineExceeded, err)

	_, err = w.Write([]byte("more"))
	assert.Equal(t, context.DeadlineExceeded, err, "Writer errors must be sticky")

	assert.Equal(t, context.DeadlineExceeded, w.Close())
	assert.Equal(t, context.DeadlineExceeded, h.FailedWith(),
		"a Writer that gave up must fail the stream downstream")
}

func TestWriterCloseWithError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(5*time.Second))
	defer cancel()

	boom := errors.New("boom")
	b, h := streambridgetest.Pipe(1024)
	w := NewWriter(ctx, b)

	_, err := io.WriteString(w, "partial")
	require.NoError(t, err)
	require.NoError(t, w.CloseWithError(boom))
	assert.Equal(t, boom, h.FailedWith())
	assert.False(t, h.Closed())
}
