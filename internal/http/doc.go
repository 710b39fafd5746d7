// Package http serves resolved pages over net/http.
//
// The front handler resolves the request path against the page tree,
// answers redirects and misses, gives content items a chance to take over
// the request and otherwise renders the page template regions. The
// unmatched path suffix of a best match is available to item handlers via
// MatchFromContext and the X-Extra-Path response header.
package http
