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

// Package condition evaluates the boolean expressions a Block's Filters.Condition
// carries, against the fields of a single request.
package condition

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the set of fields an expression may reference. Undeclared names are
// a compile error: expressions are never compiled with
// expr.AllowUndefinedVariables, so a typo in a condition fails loudly instead
// of silently evaluating to false.
type Env struct {
	Hostname  string
	IP        string
	Port      int
	Path      string
	Encrypted bool
}

var (
	cacheMut sync.RWMutex
	cache    = map[string]*vm.Program{}
)

// Eval compiles expr (caching the program by source text) and runs it
// against env, returning its boolean result.
func Eval(source string, env Env) (bool, error) {
	program, err := compile(source)
	if err != nil {
		return false, ErrorConditionCompile.Error(err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return false, ErrorConditionRun.Error(err)
	}

	result, ok := out.(bool)
	if !ok {
		return false, ErrorConditionType.Error(fmt.Errorf("condition %q did not evaluate to a boolean, got %T", source, out))
	}

	return result, nil
}

func compile(source string) (*vm.Program, error) {
	cacheMut.RLock()
	program, ok := cache[source]
	cacheMut.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, err
	}

	cacheMut.Lock()
	cache[source] = program
	cacheMut.Unlock()

	return program, nil
}
