// Package arena implements the match orchestration core: the session
// registry, combat resolution, the match state machine, the orchestrator
// that drives matches to completion, and the broadcast fan-out.
//
// Concurrency model: the Orchestrator owns a single mutex and every inbound
// message handler and timer callback runs entirely under it, so each event
// is applied to shared state as an indivisible unit. Outbound sends only
// enqueue onto per-connection buffers and never block under the lock.
package arena
