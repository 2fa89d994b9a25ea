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

import (
	"fmt"

	"github.com/ferronweb/ferron/errors"
)

// Validate checks the structural invariant a ConfigurationSet must hold:
// exactly one global block (empty filters, Host false), declared first, and
// no block whose Filters mix a non-zero ErrorStatus with a Path (a block is
// either a location or an error handler, never both).
func (s Set) Validate() errors.Error {
	globals := 0

	for i, b := range s {
		if b.Filters.tier() == tierGlobal {
			globals++
			if i != 0 {
				return ErrorFiltersConflict.Error(fmt.Errorf("global block must be declared first, found at index %d", i))
			}
		}
		if b.Filters.ErrorStatus != 0 && b.Filters.Path != "" {
			return ErrorFiltersConflict.Error(fmt.Errorf("block at index %d mixes an error status with a location path", i))
		}
	}

	if globals == 0 {
		return ErrorNoGlobalBlock.Error()
	}
	if globals > 1 {
		return ErrorFiltersConflict.Error(fmt.Errorf("configuration set declares %d global blocks, want exactly 1", globals))
	}

	return nil
}
