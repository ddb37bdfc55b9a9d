// Package connection implements the WebSocket transport collaborator.
//
// A connection owns the socket lifecycle: it dials the service, waits for the
// server's connection_established handshake (which assigns the socket ID used
// by the authorization flow), pumps inbound frames, and routes channel-scoped
// envelopes to the owning client's registry. Outbound envelopes built by the
// channel layer are sent verbatim as text frames.
//
// The inbound pump decodes each frame's outer envelope exactly once; events
// without a channel routing key are connection-level (established, error,
// ping) and are handled here. Everything else is handed to the MessageRouter
// untouched.
//
// Reconnect/backoff policy and TLS configuration are deliberately not part of
// this layer; callers own when (and whether) to dial again.
package connection
