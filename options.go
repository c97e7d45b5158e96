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
	"go.uber.org/net/metrics"
	"go.uber.org/zap"
)

type options struct {
	logger *zap.Logger
	meter  *metrics.Scope
}

func newOptions() options {
	return options{logger: zap.NewNop()}
}

// Option customizes the behavior of a Bridge.
type Option func(*options)

// Logger specifies the logger the bridge writes diagnostics to.
//
// Defaults to a no-op logger.
func Logger(logger *zap.Logger) Option {
	return func(options *options) {
		options.logger = logger
	}
}

// Meter specifies a metrics scope to register the bridge's instruments
// on. Instruments are registered once per scope and shared by every
// bridge constructed against it.
//
// Defaults to no metrics.
func Meter(meter *metrics.Scope) Option {
	return func(options *options) {
		options.meter = meter
	}
}
