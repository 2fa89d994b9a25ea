/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package ferrupstream

import "math/rand"

// Algorithm selects which of the four balancing strategies a Pool uses.
type Algorithm int

const (
	RoundRobin Algorithm = iota
	Random
	TwoRandomChoices
	LeastConnections
)

// ParseAlgorithm maps a configuration string to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "round-robin", "round_robin", "":
		return RoundRobin, nil
	case "random":
		return Random, nil
	case "two-random-choices", "two_random_choices":
		return TwoRandomChoices, nil
	case "least-connections", "least_connections":
		return LeastConnections, nil
	default:
		return 0, ErrorUnknownAlgorithm.Error()
	}
}

// pick chooses one of candidates per the pool's configured Algorithm.
// candidates is never empty; callers guarantee that.
func (p *Pool) pick(candidates []*Upstream) *Upstream {
	switch p.algo {
	case RoundRobin:
		idx := int(p.counter.Add(1)-1) % len(candidates)
		return candidates[idx]
	case Random:
		return candidates[rand.Intn(len(candidates))]
	case TwoRandomChoices:
		return pickTwoRandomChoices(candidates)
	case LeastConnections:
		return pickLeastConnections(candidates)
	default:
		return candidates[0]
	}
}

// pickTwoRandomChoices draws two indices (possibly the same, when there is
// only one candidate) and keeps the one with fewer live connections, ties
// going to the first draw.
func pickTwoRandomChoices(candidates []*Upstream) *Upstream {
	if len(candidates) == 1 {
		return candidates[0]
	}
	first := candidates[rand.Intn(len(candidates))]
	second := candidates[rand.Intn(len(candidates))]
	if second.LiveConnections() < first.LiveConnections() {
		return second
	}
	return first
}

// pickLeastConnections scans every candidate, collects the set with the
// fewest live connections, and picks uniformly among that set.
func pickLeastConnections(candidates []*Upstream) *Upstream {
	min := candidates[0].LiveConnections()
	minima := []*Upstream{candidates[0]}
	for _, c := range candidates[1:] {
		lc := c.LiveConnections()
		switch {
		case lc < min:
			min = lc
			minima = []*Upstream{c}
		case lc == min:
			minima = append(minima, c)
		}
	}
	return minima[rand.Intn(len(minima))]
}
