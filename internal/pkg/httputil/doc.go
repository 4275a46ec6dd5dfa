// Package httputil provides shared HTTP response helpers for handlers.
//
// Handlers use these instead of raw http.ResponseWriter calls so every
// endpoint returns the same JSON envelope and 5xx errors are logged
// without leaking internals to the client.
package httputil
