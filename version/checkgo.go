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

package version

import (
	"fmt"
	"runtime"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/ferronweb/ferron/errors"
)

// CheckGo verifies that the Go runtime the binary was built with satisfies
// requiredVersion under operator (one of >=, >, <=, <, ==, ~>).
func (v *version) CheckGo(requiredVersion string, operator string) errors.Error {
	operator = strings.TrimSpace(operator)

	constraintStr, err := goConstraintString(operator, requiredVersion)
	if err != nil {
		return ErrorGoVersionInit.Error(err)
	}

	constraint, err := goversion.NewConstraint(constraintStr)
	if err != nil {
		return ErrorGoVersionInit.Error(err)
	}

	runtimeVer, err := goversion.NewVersion(strings.TrimPrefix(runtime.Version(), "go"))
	if err != nil {
		return ErrorGoVersionRuntime.Error(err)
	}

	if !constraint.Check(runtimeVer) {
		return ErrorGoVersionConstraint.Error(fmt.Errorf("runtime %s does not satisfy %s", runtimeVer.String(), constraintStr))
	}

	return nil
}

func goConstraintString(operator, requiredVersion string) (string, error) {
	requiredVersion = strings.TrimSpace(requiredVersion)
	if requiredVersion == "" {
		return "", fmt.Errorf("version: empty required version")
	}

	if _, err := goversion.NewVersion(requiredVersion); err != nil {
		return "", fmt.Errorf("version: invalid required version %q: %w", requiredVersion, err)
	}

	switch operator {
	case ">=", ">", "<=", "<", "==":
		return operator + " " + requiredVersion, nil
	case "~>":
		return "~> " + requiredVersion, nil
	default:
		return "", fmt.Errorf("version: unknown constraint operator %q", operator)
	}
}
