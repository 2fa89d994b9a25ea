/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package semaphore bounds the number of in-flight workers sharing one
// parent context. A Semaphore IS a context.Context: it cancels when its
// parent does, and callers select on it exactly like any other context.
package semaphore

import (
	"context"
	"sync"
)

// Semaphore bounds concurrent workers to a fixed weight. A negative weight
// means unlimited: NewWorker/NewWorkerTry never block or fail for capacity.
type Semaphore interface {
	context.Context

	// NewWorker blocks until a slot is available or the Semaphore's context
	// is done, whichever comes first.
	NewWorker() error

	// NewWorkerTry acquires a slot without blocking; false means no slot
	// was immediately available.
	NewWorkerTry() bool

	// DeferWorker releases one previously-acquired slot. Safe to call more
	// times than NewWorker succeeded; extra calls are no-ops.
	DeferWorker()

	// WaitAll blocks until every acquired slot has been released, or the
	// Semaphore's context ends first.
	WaitAll() error

	// Weighted returns the configured capacity, or -1 if unlimited.
	Weighted() int64

	// DeferMain cancels the Semaphore's context, releasing anyone blocked
	// in NewWorker or WaitAll.
	DeferMain()
}

// New returns a Semaphore bounding concurrent workers to n (or unlimited
// when n < 0), derived from ctx. withProgress is accepted for interface
// compatibility with the teacher's progress-bar-enabled constructor but is
// otherwise unused here — no component in this tree renders a semaphore
// progress bar.
func New(ctx context.Context, n int64, withProgress bool) Semaphore {
	if ctx == nil {
		ctx = context.Background()
	}

	c, cancel := context.WithCancel(ctx)
	s := &sem{Context: c, cancel: cancel, limit: n}
	if n >= 0 {
		s.slots = make(chan struct{}, n)
	}
	return s
}

type sem struct {
	context.Context

	cancel context.CancelFunc
	limit  int64
	slots  chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	active int64
}

func (s *sem) NewWorker() error {
	if s.slots == nil {
		s.track(1)
		return nil
	}

	select {
	case s.slots <- struct{}{}:
		s.track(1)
		return nil
	case <-s.Done():
		return s.Err()
	}
}

func (s *sem) NewWorkerTry() bool {
	if s.slots == nil {
		s.track(1)
		return true
	}

	select {
	case s.slots <- struct{}{}:
		s.track(1)
		return true
	default:
		return false
	}
}

func (s *sem) track(delta int) {
	s.mu.Lock()
	s.active += int64(delta)
	if delta > 0 {
		s.wg.Add(1)
	}
	s.mu.Unlock()
}

func (s *sem) DeferWorker() {
	s.mu.Lock()
	if s.active <= 0 {
		s.mu.Unlock()
		return
	}
	s.active--
	s.mu.Unlock()

	if s.slots != nil {
		select {
		case <-s.slots:
		default:
		}
	}
	s.wg.Done()
}

func (s *sem) WaitAll() error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-s.Done():
		return s.Err()
	}
}

func (s *sem) Weighted() int64 {
	if s.slots == nil {
		return -1
	}
	return s.limit
}

func (s *sem) DeferMain() {
	s.cancel()
}
