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

// Package errorsync runs subtasks concurrently and collects their
// failures, which keeps fan-out assertions in stream tests short.
package errorsync

import "sync"

// ErrorWaiter runs functions on their own goroutines and remembers every
// error they return. The zero value is ready to use.
type ErrorWaiter struct {
	wait sync.WaitGroup

	lock sync.Mutex
	errs []error
}

// Go starts f on a new goroutine. A non-nil return is recorded for Wait.
func (ew *ErrorWaiter) Go(f func() error) {
	ew.wait.Add(1)
	go func() {
		defer ew.wait.Done()
		if err := f(); err != nil {
			ew.lock.Lock()
			ew.errs = append(ew.errs, err)
			ew.lock.Unlock()
		}
	}()
}

// Wait blocks until every started function has returned and reports the
// recorded errors in no particular order.
func (ew *ErrorWaiter) Wait() []error {
	ew.wait.Wait()

	ew.lock.Lock()
	defer ew.lock.Unlock()
	return ew.errs
}

// FirstError waits like Wait and returns one of the recorded errors, or
// nil if every function succeeded.
func (ew *ErrorWaiter) FirstError() error {
	errs := ew.Wait()
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}
