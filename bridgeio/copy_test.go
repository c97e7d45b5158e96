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

// errAfterReader yields its payload, then fails.
type errAfterReader struct {
	payload *bytes.Reader
	err     error
}

func (r *errAfterReader) Read(p []byte) (int, error) {
	if r.payload.Len() > 0 {
		return r.payload.Read(p)
	}
	return 0, r.err
}

func TestCopyRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(10*time.Second))
	defer cancel()

	payload := bytes.Repeat([]byte("streambridge"), 20000)

	var out bytes.Buffer
	b := streambridge.New()
	sink := NewSinkWriter(&out, 64*1024)
	sink.Attach(b)

	n, err := Copy(ctx, b, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	require.NoError(t, sink.Wait(ctx), "the sink must observe a clean close")
	assert.Equal(t, payload, out.Bytes(), "every byte must arrive exactly once, in order")
}

func TestCopyEmptyReader(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(5*time.Second))
	defer cancel()

	var out bytes.Buffer
	b := streambridge.New()
	sink := NewSinkWriter(&out, 1024)
	sink.Attach(b)

	n, err := Copy(ctx, b, bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, sink.Wait(ctx))
	assert.Empty(t, out.Bytes())
}

func TestCopyReadErrorFailsStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testtime.Scale(5*time.Second))
	defer cancel()

	boom := errors.New("disk on fire")
	var out bytes.Buffer
	b := streambridge.New()
	sink := NewSinkWriter(&out, 1024)
	sink.Attach(b)

	_, err := Copy(ctx, b, &errAfterReader{payload: bytes.NewReader([]byte("partial")), err: boom})
	require.Equal(t, boom, err)
	assert.Equal(t, boom, sink.Wait(ctx), "the sink must observe the producer's failure")
}
