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

package viper

import (
	"io"

	spfvpr "github.com/spf13/viper"
)

type wrapper struct {
	v *spfvpr.Viper
}

func (w *wrapper) SetConfigFile(path string) { w.v.SetConfigFile(path) }
func (w *wrapper) SetConfigName(name string) { w.v.SetConfigName(name) }
func (w *wrapper) SetConfigType(typ string)  { w.v.SetConfigType(typ) }
func (w *wrapper) AddConfigPath(path string) { w.v.AddConfigPath(path) }

func (w *wrapper) ReadInConfig() error          { return w.v.ReadInConfig() }
func (w *wrapper) ReadConfig(in io.Reader) error { return w.v.ReadConfig(in) }

func (w *wrapper) Unmarshal(out any) error { return w.v.Unmarshal(out) }

func (w *wrapper) Get(key string) any       { return w.v.Get(key) }
func (w *wrapper) GetString(key string) string { return w.v.GetString(key) }
func (w *wrapper) GetInt(key string) int    { return w.v.GetInt(key) }
func (w *wrapper) GetBool(key string) bool  { return w.v.GetBool(key) }

func (w *wrapper) Set(key string, value any)    { w.v.Set(key, value) }
func (w *wrapper) AllSettings() map[string]any { return w.v.AllSettings() }

func (w *wrapper) Raw() *spfvpr.Viper { return w.v }
