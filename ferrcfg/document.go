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
	"os"

	"gopkg.in/yaml.v3"
)

// ListenSpec describes one bound address from the top of a configuration
// file — the one piece of information Set/Block/Filters deliberately don't
// carry, since Filters.Port/IP select which requests a block answers, not
// which sockets the process listens on.
type ListenSpec struct {
	Address       string `yaml:"address"`
	TLS           bool   `yaml:"tls"`
	ProxyProtocol bool   `yaml:"proxy_protocol"`
	Workers       int    `yaml:"workers"`
	CertFile      string `yaml:"cert_file"`
	KeyFile       string `yaml:"key_file"`
}

// Document is the top-level shape of a configuration file: the sockets to
// bind plus the ConfigurationSet those sockets serve.
type Document struct {
	Listen []ListenSpec `yaml:"listen"`
	Blocks Set          `yaml:"blocks"`
}

// LoadDocument reads path, expands every `{env:NAME}` token against the
// process environment, and parses the result as YAML. A referenced
// environment variable that isn't set fails the load — matching the
// Configuration error disposition — rather than silently leaving the
// literal token in place.
func LoadDocument(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, ErrorDocumentRead.Error(err)
	}

	expanded, err := ExpandEnv(string(raw))
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return Document{}, ErrorDocumentParse.Error(err)
	}

	return doc, nil
}
