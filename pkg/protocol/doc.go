// Package protocol defines the JSON wire format spoken between the arena
// server and its clients.
//
// Clients send Inbound envelopes of the form {type, payload} and receive
// Outbound envelopes of the form {type, data}. The payload and data shapes
// for each message type are defined in messages.go. Timestamps on the wire
// are Unix milliseconds and durations are milliseconds, matching what the
// JavaScript client expects.
package protocol
