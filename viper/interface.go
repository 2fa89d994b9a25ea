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

// Package viper wraps github.com/spf13/viper behind a narrow, mockable
// interface so the cobra package's SetViper/FuncViper hook doesn't force
// every caller to depend on viper's concrete type.
package viper

import (
	"io"

	spfvpr "github.com/spf13/viper"
)

// Viper is the subset of *viper.Viper that command wiring needs: reading a
// config file (by explicit path or by name/paths/type), binding it onto a
// struct, and plain key lookups for flags that want to fall back to a
// config value.
type Viper interface {
	SetConfigFile(path string)
	SetConfigName(name string)
	SetConfigType(typ string)
	AddConfigPath(path string)

	ReadInConfig() error
	ReadConfig(in io.Reader) error

	Unmarshal(out any) error

	Get(key string) any
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	Set(key string, value any)
	AllSettings() map[string]any

	// Raw exposes the underlying *viper.Viper for callers that need a
	// feature this interface doesn't wrap.
	Raw() *spfvpr.Viper
}

// New returns a Viper backed by a fresh *viper.Viper instance.
func New() Viper {
	return &wrapper{v: spfvpr.New()}
}
