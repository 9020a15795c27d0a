package arena

import (
	crand "crypto/rand"
	"encoding/binary"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/suiarena/arena/pkg/protocol"
)

// Bounds is the playable area. Spawn positions are drawn uniformly from
// [0, Width) x [0, Height).
type Bounds struct {
	Width  float64
	Height float64
}

// DefaultBounds matches the client's 800x600 viewport.
var DefaultBounds = Bounds{Width: 800, Height: 600}

// Registry tracks connected sessions under two indexes: the opaque session
// id and the wallet address. Both indexes are kept consistent under one
// lock, so a session is either in both or in neither.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]*Session
	byWallet map[string]*Session

	bounds Bounds
	rng    *rand.Rand
	logger *slog.Logger
}

// NewRegistry creates an empty registry with the given spawn bounds.
func NewRegistry(bounds Bounds, logger *slog.Logger) *Registry {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = DefaultBounds
	}
	if logger == nil {
		logger = slog.Default()
	}

	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}

	return &Registry{
		byID:     make(map[string]*Session),
		byWallet: make(map[string]*Session),
		bounds:   bounds,
		rng:      rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:])))),
		logger:   logger.With("component", "registry"),
	}
}

// Join creates a session for the wallet, or, if one exists, swaps its
// transport and returns it with stats untouched. The second return reports
// whether the session is new.
func (r *Registry) Join(wallet string, t Transport) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byWallet[wallet]; ok {
		existing.transport = t
		r.logger.Info("returning player", "player_id", existing.ID, "wallet", wallet)
		return existing, false
	}

	s := newSession(wallet, t)
	r.byID[s.ID] = s
	r.byWallet[wallet] = s

	r.logger.Info("new player joined", "player_id", s.ID, "wallet", wallet)
	return s, true
}

// Get returns the session with the given id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// GetByWallet returns the session bound to the wallet, or nil.
func (r *Registry) GetByWallet(wallet string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byWallet[wallet]
}

// Remove deletes the session from both indexes and returns it, or nil if
// absent.
func (r *Registry) Remove(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byID, id)
	delete(r.byWallet, s.WalletAddress)
	return s
}

// UpdatePosition moves the session. Returns false when the session does not
// exist; lookups racing a disconnect are expected and not an error.
func (r *Registry) UpdatePosition(id string, pos protocol.Position) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return false
	}
	s.Position = pos
	return true
}

// Respawn restores the session to full health at a random position and
// returns it, or nil if the session no longer exists.
func (r *Registry) Respawn(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return nil
	}
	s.Health = MaxHealth
	s.Alive = true
	s.Position = protocol.Position{
		X: r.rng.Float64() * r.bounds.Width,
		Y: r.rng.Float64() * r.bounds.Height,
	}
	return s
}

// FindByTransport returns the session currently bound to the given
// transport, or nil. Used to map a closed connection back to its player;
// a stale connection replaced by a reconnect matches nothing.
func (r *Registry) FindByTransport(t Transport) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.transport == t {
			return s
		}
	}
	return nil
}

// Count returns the number of connected sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Bounds returns the configured spawn bounds.
func (r *Registry) Bounds() Bounds {
	return r.bounds
}
