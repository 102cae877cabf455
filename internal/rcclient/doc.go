// Package rcclient wraps the sync daemon's JSON-over-HTTP remote-control API.
//
// Every call authenticates with HTTP basic auth against a fixed base URL.
// Calls impose no client-side timeout: the daemon's endpoints are long-poll
// friendly and context cancellation is the only bound.
package rcclient
