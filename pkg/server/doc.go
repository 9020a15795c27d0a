// Package server exposes the arena over WebSocket.
//
// Each accepted connection gets a Peer, which owns the socket's write side
// through a buffered send queue. The read loop decodes envelopes and hands
// them to the Router, which validates payloads and dispatches into the
// arena orchestrator. HTTP surface beyond /ws is limited to health and
// Prometheus metrics.
package server
