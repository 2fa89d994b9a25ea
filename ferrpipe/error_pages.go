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
	"fmt"
	"html"
	"net/http"
	"sort"
)

// builtinErrorStatuses is the fixed status set with a built-in page; any
// other code renders with generic phrasing instead of being rejected.
var builtinErrorStatuses = buildBuiltinStatusSet()

func buildBuiltinStatusSet() map[int]struct{} {
	set := map[int]struct{}{}
	addRange := func(lo, hi int) {
		for s := lo; s <= hi; s++ {
			set[s] = struct{}{}
		}
	}
	addRange(200, 202)
	addRange(400, 418)
	addRange(421, 426)
	set[428] = struct{}{}
	set[429] = struct{}{}
	set[431] = struct{}{}
	set[451] = struct{}{}
	set[497] = struct{}{}
	addRange(500, 511)
	set[598] = struct{}{}
	set[599] = struct{}{}
	return set
}

// IsBuiltinErrorStatus reports whether status has a specific built-in
// description; other codes still render, with generic phrasing.
func IsBuiltinErrorStatus(status int) bool {
	_, ok := builtinErrorStatuses[status]
	return ok
}

var statusDescriptions = map[int]string{
	200: "The request was successful!",
	201: "A new resource was successfully created.",
	202: "The request was accepted but hasn't been fully processed yet.",
	400: "The request was invalid.",
	401: "Authentication is required to access the resource.",
	402: "Payment is required to access the resource.",
	403: "You're not authorized to access this resource.",
	404: "The requested resource wasn't found. Double-check the URL if entered manually.",
	405: "The request method is not allowed for this resource.",
	406: "The server cannot provide a response in an acceptable format.",
	407: "Proxy authentication is required.",
	408: "The request took too long and timed out.",
	409: "There's a conflict with the current state of the server.",
	410: "The requested resource has been permanently removed.",
	411: "The request must include a Content-Length header.",
	412: "The request doesn't meet the server's preconditions.",
	413: "The request is too large for the server to process.",
	414: "The requested URL is too long.",
	415: "The server doesn't support the request's media type.",
	416: "The requested content range is invalid or unavailable.",
	417: "The expectation in the Expect header couldn't be met.",
	418: "This server (a teapot) refuses to make coffee!",
	421: "The request was directed to the wrong server.",
	422: "The server couldn't process the provided content.",
	423: "The requested resource is locked.",
	424: "The request failed due to a dependency on another failed request.",
	425: "The server refuses to process a request that might be replayed.",
	426: "The client must upgrade its protocol to proceed.",
	428: "A precondition is required for this request, but it wasn't included.",
	429: "Too many requests were sent in a short period.",
	431: "The request headers are too large.",
	451: "Access to this resource is restricted due to legal reasons.",
	497: "A non-TLS request was sent to an HTTPS server.",
	501: "The server doesn't support the requested functionality.",
	502: "The server, acting as a gateway, received an invalid response.",
	503: "The server is temporarily unavailable (e.g., maintenance or overload). Try again later.",
	504: "The server, acting as a gateway, timed out waiting for a response.",
	505: "The HTTP version used in the request isn't supported.",
	506: "The Variant header caused a content negotiation loop.",
	507: "The server lacks sufficient storage to complete the request.",
	508: "The server detected an infinite loop while processing the request.",
	509: "Bandwidth limit exceeded on the server.",
	510: "The server requires an extended HTTP request, but the client didn't send one.",
	511: "Authentication is required to access the network.",
	598: "The proxy server didn't receive a response in time.",
	599: "The proxy server couldn't establish a connection in time.",
}

func statusDescription(status int, adminEmail string) string {
	if status == 500 {
		if adminEmail != "" {
			return fmt.Sprintf("The server encountered an unexpected error. You may need to contact the server administrator at %s to resolve the error.", adminEmail)
		}
		return "The server encountered an unexpected error. You may need to contact the server administrator to resolve the error."
	}
	if d, ok := statusDescriptions[status]; ok {
		return d
	}
	return "No description found for the status code."
}

// DefaultErrorPage renders the built-in minimal HTML error document for
// status, substituting the status code, its canonical phrase, and a short
// per-status description (500 optionally naming an administrator contact).
func DefaultErrorPage(status int, adminEmail string) string {
	phrase := http.StatusText(status)
	var title string
	if phrase != "" {
		title = fmt.Sprintf("%d %s", status, phrase)
	} else {
		title = fmt.Sprintf("%d", status)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
</head>
<body>
    <h1>%s</h1>
    <p>%s</p>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(title), html.EscapeString(statusDescription(status, adminEmail)))
}

// sortedBuiltinStatuses is exposed for tests that want to assert membership
// without depending on map iteration order.
func sortedBuiltinStatuses() []int {
	out := make([]int, 0, len(builtinErrorStatuses))
	for s := range builtinErrorStatuses {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
