/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package startStop wraps a pair of start/stop functions into a restartable
// background-task lifecycle, tracking running state, uptime, and the errors
// each invocation produced.
package startStop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoStartFunc and ErrNoStopFunc are recorded (not returned) when Start or
// Stop is invoked with a nil function — the runner still transitions state
// consistently rather than panicking on a nil call.
var (
	ErrNoStartFunc = errors.New("startStop: no start function configured")
	ErrNoStopFunc  = errors.New("startStop: no stop function configured")
)

// StartStop is a restartable background task: Start and Stop return as soon
// as the transition has been requested, running the configured function
// asynchronously and recording any error it returns.
type StartStop interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
	ErrorsLast() error
	ErrorsList() []error
}

// New returns a StartStop driving start on Start and stop on Stop. Either
// function may be nil; invoking the corresponding phase then records
// ErrNoStartFunc/ErrNoStopFunc instead of calling it.
func New(start, stop func(ctx context.Context) error) StartStop {
	return &runner{start: start, stop: stop}
}

type runner struct {
	mu      sync.Mutex
	start   func(ctx context.Context) error
	stop    func(ctx context.Context) error
	running bool
	since   time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	errs    []error
}

func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		cancel := r.cancel
		done := r.done
		r.mu.Unlock()
		cancel()
		<-done
		r.mu.Lock()
	}

	c, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.running = true
	r.since = time.Now()
	start := r.start
	r.mu.Unlock()

	go func() {
		defer close(done)

		var err error
		if start == nil {
			err = ErrNoStartFunc
		} else {
			err = start(c)
		}

		r.mu.Lock()
		if err != nil {
			r.errs = append(r.errs, err)
		}
		r.running = false
		r.mu.Unlock()
	}()

	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	stop := r.stop
	r.mu.Unlock()

	cancel()

	var err error
	if stop == nil {
		err = ErrNoStopFunc
	} else {
		err = stop(ctx)
	}

	r.mu.Lock()
	if err != nil {
		r.errs = append(r.errs, err)
	}
	r.running = false
	r.mu.Unlock()

	return nil
}

func (r *runner) Restart(ctx context.Context) error {
	_ = r.Stop(ctx)
	return r.Start(ctx)
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return 0
	}
	return time.Since(r.since)
}

func (r *runner) ErrorsLast() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func (r *runner) ErrorsList() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}
