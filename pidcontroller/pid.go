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

// Package pidcontroller implements a small discrete PID controller used to
// generate a non-uniformly-spaced series of float64 steps converging from a
// start value to a target value — the basis of duration.Duration's
// Range*To/Range*From helpers, which turn that series into a schedule of
// durations (e.g. retry/backoff steps) rather than a uniform linear ramp.
package pidcontroller

import "context"

// Controller computes successive correction steps toward a target using
// proportional, integral and derivative terms.
type Controller interface {
	// Step advances the controller by one tick given the current measured
	// value and returns the corrected next value.
	Step(current, target float64) float64

	// Range generates the step series from start to target, stopping once
	// the series converges (or after a bounded number of steps).
	Range(start, target float64) []float64

	// RangeCtx is Range, abandoning generation early if ctx ends first.
	RangeCtx(ctx context.Context, start, target float64) []float64
}

// maxSteps bounds the series length so a degenerate (non-converging) rate
// combination cannot loop forever.
const maxSteps = 64

// epsilon is the convergence threshold relative to the total span.
const epsilon = 1e-3

// New returns a Controller with the given proportional, integral and
// derivative rates.
func New(rateP, rateI, rateD float64) Controller {
	return &pid{kp: rateP, ki: rateI, kd: rateD}
}

type pid struct {
	kp, ki, kd float64
	integral   float64
	lastErr    float64
	primed     bool
}

func (p *pid) Step(current, target float64) float64 {
	err := target - current
	p.integral += err
	deriv := 0.0
	if p.primed {
		deriv = err - p.lastErr
	}
	p.lastErr = err
	p.primed = true

	correction := p.kp*err + p.ki*p.integral + p.kd*deriv
	return current + correction
}

func (p *pid) Range(start, target float64) []float64 {
	return p.RangeCtx(context.Background(), start, target)
}

func (p *pid) RangeCtx(ctx context.Context, start, target float64) []float64 {
	span := target - start
	if span == 0 {
		return []float64{start}
	}

	out := []float64{start}
	current := start

	for i := 0; i < maxSteps; i++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		next := p.Step(current, target)
		out = append(out, next)

		if abs(target-next) <= abs(span)*epsilon {
			break
		}
		current = next
	}

	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
