// Package clientip resolves the originating client address of an
// *http.Request.
//
// Requests forwarded by a proxy or load balancer are attributed to the first
// valid address in X-Forwarded-For, then X-Real-IP; direct connections fall
// back to the transport peer in RemoteAddr. Invalid entries are skipped and
// results are normalized through net.ParseIP.
//
// Middleware stores the resolved address in the request context so that
// later consumers (FromRequest, GetIPFromContext) do not repeat the work.
package clientip
