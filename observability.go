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
	"sync"

	"go.uber.org/net/metrics"
	"go.uber.org/zap"
)

var _tags = metrics.Tags{"component": "streambridge"}

// Registries enforce metric uniqueness, so instruments are cached and
// shared by every bridge constructed against the same scope.
var (
	_instrumentsMu    sync.Mutex
	_instrumentsCache = make(map[*metrics.Scope]*instruments)
)

// instruments holds the per-scope stream metrics. All methods on nil
// counters and gauges are no-ops, so a zero instruments value is valid
// for bridges constructed without a Meter.
type instruments struct {
	writes         *metrics.Counter
	writeSuccesses *metrics.Counter
	writeFailures  *metrics.Counter
	aborts         *metrics.Counter
	bytes          *metrics.Counter
	streamsActive  *metrics.Gauge
}

func newInstruments(meter *metrics.Scope, logger *zap.Logger) *instruments {
	if meter == nil {
		return &instruments{}
	}

	_instrumentsMu.Lock()
	defer _instrumentsMu.Unlock()
	if inst, ok := _instrumentsCache[meter]; ok {
		return inst
	}

	inst := &instruments{}
	var err error

	inst.writes, err = meter.Counter(metrics.Spec{
		Name:      "stream_writes",
		Help:      "Total number of chunks submitted to the bridge.",
		ConstTags: _tags,
	})
	if err != nil {
		logger.Error("Failed to create stream_writes counter.", zap.Error(err))
	}
	inst.writeSuccesses, err = meter.Counter(metrics.Spec{
		Name:      "stream_write_successes",
		Help:      "Number of chunks accepted downstream.",
		ConstTags: _tags,
	})
	if err != nil {
		logger.Error("Failed to create stream_write_successes counter.", zap.Error(err))
	}
	inst.writeFailures, err = meter.Counter(metrics.Spec{
		Name:      "stream_write_failures",
		Help:      "Number of chunks failed by a terminal stream error.",
		ConstTags: _tags,
	})
	if err != nil {
		logger.Error("Failed to create stream_write_failures counter.", zap.Error(err))
	}
	inst.aborts, err = meter.Counter(metrics.Spec{
		Name:      "stream_aborts",
		Help:      "Number of streams torn down by an abort.",
		ConstTags: _tags,
	})
	if err != nil {
		logger.Error("Failed to create stream_aborts counter.", zap.Error(err))
	}
	inst.bytes, err = meter.Counter(metrics.Spec{
		Name:      "stream_bytes",
		Help:      "Total bytes delivered downstream.",
		ConstTags: _tags,
	})
	if err != nil {
		logger.Error("Failed to create stream_bytes counter.", zap.Error(err))
	}
	inst.streamsActive, err = meter.Gauge(metrics.Spec{
		Name:      "streams_active",
		Help:      "Number of streams that are not yet terminal.",
		ConstTags: _tags,
	})
	if err != nil {
		logger.Error("Failed to create streams_active gauge.", zap.Error(err))
	}

	_instrumentsCache[meter] = inst
	return inst
}
