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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/streambridge"
	"go.uber.org/streambridge/internal/testtime"
)

// failingWriter rejects every write.
type failingWriter struct {
	err error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

func TestSinkWriterBackpressure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(10*time.Second))
	defer cancel()

	// A window much smaller than the payload forces the producer through
	// many writable cycles.
	payload := bytes.Repeat([]byte("0123456789abcdef"), 64)

	var out bytes.Buffer
	b := streambridge.New()
	sink := NewSinkWriter(&out, 16)
	sink.Attach(b)

	for i := 0; i < len(payload); i += 16 {
		require.NoError(t, b.Write(payload[i:i+16]).Wait(ctx))
	}
	require.NoError(t, b.Done(ctx))

	require.NoError(t, sink.Wait(ctx))
	assert.Equal(t, payload, out.Bytes())
}

func TestSinkWriterUnderlyingFailureAbortsStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(5*time.Second))
	defer cancel()

	boom := errors.New("connection reset")
	b := streambridge.New()
	sink := NewSinkWriter(&failingWriter{err: boom}, 1024)
	sink.Attach(b)

	// The first chunk is accepted into the window; the flush then fails
	// and tears the stream down.
	b.Write([]byte("doomed"))
	require.Equal(t, boom, sink.Wait(ctx))

	err := b.Write([]byte("after")).Wait(ctx)
	assert.Equal(t, boom, err, "writes after the sink failure must fail with its cause")
}

func TestSinkWriterReportsProducerFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(5*time.Second))
	defer cancel()

	boom := errors.New("upstream hiccup")
	var out bytes.Buffer
	b := streambridge.New()
	sink := NewSinkWriter(&out, 1024)
	sink.Attach(b)

	require.NoError(t, b.Fail(ctx, boom))
	assert.Equal(t, boom, sink.Wait(ctx))
}
