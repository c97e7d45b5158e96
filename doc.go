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

// Package streambridge mediates between a push-style byte producer and a
// pull-style, capacity-limited consumer.
//
// Producers submit chunks with Bridge.Write and receive a one-shot
// Completion per chunk. Consumers grant the bridge a Handle with
// Bridge.OnInit and announce spare capacity with Bridge.OnWritable. The
// bridge buffers submitted chunks in arrival order and delivers them to
// the handle whenever its reported quota allows, so neither side ever
// blocks on the other: producers observe backpressure by awaiting their
// Completions, and consumers are never handed more bytes than they asked
// for.
//
// A bridge serves exactly one logical stream. It ends in one of three
// ways: the producer calls Done (graceful close), the producer calls Fail
// (producer-side failure, forwarded to the handle), or the consumer calls
// OnAbort (consumer-side failure, failing every queued chunk). All three
// are terminal and first-wins; once a stream is terminal, further writes
// fail immediately with the recorded cause.
package streambridge
