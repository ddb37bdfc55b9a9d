// Package client provides the top level API: it owns the connection,
// the channel registry and the dispatch queue, and exposes subscribe
// and unsubscribe operations for all channel kinds.
package client
