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

package ferrcfg

// Resolve produces the EffectiveConfiguration for ctx by composing the
// global block with the most specific matching host and location, and (when
// ctx.ErrorStatus is set) the matching error-handler blocks, in specificity
// order global < host < location < error, ties within a tier broken by
// declaration order.
func (s Set) Resolve(ctx RequestContext) (Effective, error) {
	eff := Effective{Entries: map[string]EntryList{}}

	global, ok, err := s.matchGlobal(ctx)
	if err != nil {
		return Effective{}, err
	}
	if ok {
		eff = applyBlock(eff, global)
	}

	host, ok, err := s.matchHost(ctx)
	if err != nil {
		return Effective{}, err
	}
	if ok {
		eff = applyBlock(eff, host)
	}

	locations, err := s.matchLocations(ctx)
	if err != nil {
		return Effective{}, err
	}
	for _, loc := range locations {
		eff = applyBlock(eff, loc)
	}

	if ctx.ErrorStatus != 0 {
		handlers, err := s.matchErrorHandlers(ctx)
		if err != nil {
			return Effective{}, err
		}
		for _, h := range handlers {
			eff = applyBlock(eff, h)
		}
	}

	return eff, nil
}

func applyBlock(eff Effective, b Block) Effective {
	eff.Entries = mergeEntries(eff.Entries, b.Entries)
	eff.Modules = mergeModules(eff.Modules, b.Modules)
	return eff
}

func (s Set) matchGlobal(ctx RequestContext) (Block, bool, error) {
	for _, b := range s {
		if b.Filters.tier() != tierGlobal {
			continue
		}
		ok, err := filtersMatch(b.Filters, ctx)
		if err != nil {
			return Block{}, false, err
		}
		if ok {
			return b, true, nil
		}
	}
	return Block{}, false, nil
}

// matchHost picks the single most-specific matching host block: an exact
// hostname match beats a wildcard match; ties within the same specificity
// are broken by declaration order (first wins).
func (s Set) matchHost(ctx RequestContext) (Block, bool, error) {
	var (
		best      Block
		found     bool
		bestScore = -1
	)

	for _, b := range s {
		if b.Filters.tier() != tierHost {
			continue
		}
		ok, err := filtersMatch(b.Filters, ctx)
		if err != nil {
			return Block{}, false, err
		}
		if !ok {
			continue
		}

		score := hostSpecificity(b.Filters.Hostname)
		if score > bestScore {
			best, bestScore, found = b, score, true
		}
	}

	return best, found, nil
}

func (s Set) matchLocations(ctx RequestContext) ([]Block, error) {
	var out []Block

	for _, b := range s {
		if b.Filters.tier() != tierLocation {
			continue
		}
		ok, err := filtersMatch(b.Filters, ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, b)
		}
	}

	return out, nil
}

// matchErrorHandlers returns matching error-handler blocks ordered so that a
// block nested inside a location (innermost) is merged after one declared at
// host level, implementing innermost-wins when both match.
func (s Set) matchErrorHandlers(ctx RequestContext) ([]Block, error) {
	var out []Block

	for _, b := range s {
		if b.Filters.tier() != tierError || b.Filters.ErrorStatus != ctx.ErrorStatus {
			continue
		}
		ok, err := filtersMatch(b.Filters, ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, b)
		}
	}

	sortByNestingThenDeclaration(out)

	return out, nil
}

func sortByNestingThenDeclaration(blocks []Block) {
	// Declaration order already holds block-by-block; a stable, nesting-depth
	// sort moves host-level error handlers (Path == "") ahead of
	// location-level ones (Path != "") without disturbing declaration order
	// within the same nesting depth.
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && nestingDepth(blocks[j-1]) > nestingDepth(blocks[j]); j-- {
			blocks[j-1], blocks[j] = blocks[j], blocks[j-1]
		}
	}
}

func nestingDepth(b Block) int {
	if b.Filters.Path == "" {
		return 0
	}
	return 1
}
