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

import "github.com/ferronweb/ferron/errors"

const (
	ErrorFiltersConflict errors.CodeError = iota + errors.MinPkgConfigCR
	ErrorNoGlobalBlock
	ErrorResolve
	ErrorEnvVarMissing
	ErrorDocumentRead
	ErrorDocumentParse
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorFiltersConflict)
	errors.RegisterIdFctMessage(ErrorFiltersConflict, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorFiltersConflict:
		return "block declares conflicting filters for its tier"
	case ErrorNoGlobalBlock:
		return "configuration set has no global block"
	case ErrorResolve:
		return "cannot resolve effective configuration for request"
	case ErrorEnvVarMissing:
		return "{env:NAME} reference in configuration has no matching environment variable"
	case ErrorDocumentRead:
		return "cannot read configuration file"
	case ErrorDocumentParse:
		return "cannot parse configuration file"
	}

	return ""
}
