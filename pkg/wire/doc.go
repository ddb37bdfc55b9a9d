// Package wire defines the JSON wire format for the pub/sub protocol.
//
// Every frame on the socket is a JSON envelope:
//
//	{"event": <string>, "data": <string>, "id"?: <string>, "channel"?: <string>}
//
// Outbound control envelopes (subscribe/unsubscribe) carry their payload as a
// JSON object. Inbound envelopes carry "data" as a string holding JSON that is
// only decoded a second time when the event requires inspecting its fields;
// application event payloads pass through to listeners unparsed.
//
// # Reserved names
//
// Event names starting with "pusher_internal:" are protocol-internal and are
// never delivered to application listeners. Channel names starting with
// "private-" or "presence-" belong to restricted channel classes.
//
// # Absent vs empty
//
// Optional envelope fields ("id", "channel") use the empty string to mean
// absent; the protocol never sends them empty.
package wire
