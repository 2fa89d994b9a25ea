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

package ferrpipe

import (
	"net/http"
	"strconv"
	"strings"
)

// placeholderResolver returns the replacement value for a recognised token
// and whether it applies; a false return leaves the token literal (used for
// socket-derived tokens when sock is nil).
type placeholderResolver func(req *http.Request, sock *SocketData) (string, bool)

var placeholderTable = map[string]placeholderResolver{
	"path": func(req *http.Request, _ *SocketData) (string, bool) {
		return req.URL.Path, true
	},
	"path_and_query": func(req *http.Request, _ *SocketData) (string, bool) {
		if req.URL.RawQuery == "" {
			return req.URL.Path, true
		}
		return req.URL.Path + "?" + req.URL.RawQuery, true
	},
	"method": func(req *http.Request, _ *SocketData) (string, bool) {
		return req.Method, true
	},
	"version": func(req *http.Request, _ *SocketData) (string, bool) {
		return httpVersionName(req.ProtoMajor, req.ProtoMinor), true
	},
	"scheme": func(_ *http.Request, sock *SocketData) (string, bool) {
		if sock == nil {
			return "", false
		}
		if sock.Encrypted {
			return "https", true
		}
		return "http", true
	},
	"client_ip": func(_ *http.Request, sock *SocketData) (string, bool) {
		return hostPort(sock, true, true)
	},
	"client_port": func(_ *http.Request, sock *SocketData) (string, bool) {
		return hostPort(sock, true, false)
	},
	"server_ip": func(_ *http.Request, sock *SocketData) (string, bool) {
		return hostPort(sock, false, true)
	},
	"server_port": func(_ *http.Request, sock *SocketData) (string, bool) {
		return hostPort(sock, false, false)
	},
}

func httpVersionName(major, minor int) string {
	switch {
	case major == 0 && minor == 9:
		return "HTTP/0.9"
	case major == 1 && minor == 0:
		return "HTTP/1.0"
	case major == 1 && minor == 1:
		return "HTTP/1.1"
	case major == 2:
		return "HTTP/2.0"
	case major == 3:
		return "HTTP/3.0"
	default:
		return "HTTP/Unknown"
	}
}

func hostPort(sock *SocketData, client, wantHost bool) (string, bool) {
	if sock == nil {
		return "", false
	}

	addr := sock.LocalAddr
	if client {
		addr = sock.RemoteAddr
	}
	if addr == nil {
		return "", false
	}

	host, port, err := splitHostPort(addr.String())
	if err != nil {
		return "", false
	}
	if wantHost {
		return host, true
	}
	return port, true
}

func splitHostPort(s string) (host, port string, err error) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return s, "", nil
	}
	host = strings.TrimSuffix(strings.TrimPrefix(s[:idx], "["), "]")
	port = s[idx+1:]
	if _, convErr := strconv.Atoi(port); convErr != nil {
		return s, "", nil
	}
	return host, port, nil
}

// ExpandHeaderPlaceholders substitutes every {token} occurrence in input per
// the table above, falling back to a case-insensitive {header:Name} lookup
// against req's headers, and leaving anything else (including an unknown
// token or a socket-derived token with sock == nil) exactly as written.
func ExpandHeaderPlaceholders(input string, req *http.Request, sock *SocketData) string {
	var out strings.Builder
	rest := input

	for {
		lb := strings.IndexByte(rest, '{')
		if lb < 0 {
			out.WriteString(rest)
			break
		}

		rb := strings.IndexByte(rest[lb+1:], '}')
		if rb < 0 {
			out.WriteString(rest)
			break
		}
		rb += lb + 1

		out.WriteString(rest[:lb])
		token := rest[lb+1 : rb]
		out.WriteString(resolveToken(token, req, sock))
		rest = rest[rb+1:]
	}

	return out.String()
}

func resolveToken(token string, req *http.Request, sock *SocketData) string {
	if resolver, ok := placeholderTable[token]; ok {
		if value, applies := resolver(req, sock); applies {
			return value
		}
		return "{" + token + "}"
	}

	if name, ok := strings.CutPrefix(token, "header:"); ok {
		return req.Header.Get(name)
	}

	return "{" + token + "}"
}
