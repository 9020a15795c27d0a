package arena

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/suiarena/arena/pkg/protocol"
)

// MaxHealth is the health a session has when fresh or respawned.
const MaxHealth = 100

// Transport is the capability the core holds for pushing bytes to a
// connected client. The connection layer owns the socket and its teardown;
// the core only sends and never closes. Send must not block: implementations
// enqueue onto a bounded buffer and report failure immediately.
type Transport interface {
	Send(data []byte) error
	Close() error
}

// Session is a joined player's live state plus a handle to its transport.
// The wallet address is the durable identity: a reconnect swaps the
// transport and keeps everything else.
//
// Field mutation is arbitrated by the owning Registry and Orchestrator;
// Session itself carries no lock.
type Session struct {
	ID            string
	WalletAddress string
	Position      protocol.Position
	Health        int
	Kills         int
	Deaths        int
	Alive         bool
	JoinedAt      time.Time

	transport Transport
}

// newID generates a random 128-bit hex identifier.
func newID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(wallet string, t Transport) *Session {
	return &Session{
		ID:            newID(),
		WalletAddress: wallet,
		Health:        MaxHealth,
		Alive:         true,
		JoinedAt:      time.Now(),
		transport:     t,
	}
}

// Transport returns the current transport handle. May be nil for sessions
// created without a connection (tests).
func (s *Session) Transport() Transport {
	return s.transport
}

// SetTransport replaces the transport handle, e.g. on reconnect.
func (s *Session) SetTransport(t Transport) {
	s.transport = t
}

// Snapshot returns the session's public stats as a wire-format Player.
// The copy is stable: later mutations of the session do not affect it.
func (s *Session) Snapshot() protocol.Player {
	return protocol.Player{
		ID:            s.ID,
		WalletAddress: s.WalletAddress,
		Position:      s.Position,
		Health:        s.Health,
		Kills:         s.Kills,
		Deaths:        s.Deaths,
		Alive:         s.Alive,
	}
}
