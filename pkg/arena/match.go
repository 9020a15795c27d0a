package arena

import (
	"time"

	"github.com/suiarena/arena/pkg/protocol"
)

// MatchStatus is the lifecycle state of a match. Transitions only move
// forward: waiting -> active -> finished.
type MatchStatus string

const (
	StatusWaiting  MatchStatus = "waiting"
	StatusActive   MatchStatus = "active"
	StatusFinished MatchStatus = "finished"
)

// DefaultMatchDuration is the fixed length of an active match.
const DefaultMatchDuration = 2 * time.Minute

// Match is one bounded-duration contest among a set of sessions.
// Membership is kept in join order, which fixes the winner tie-break.
//
// Match carries no lock of its own; the Orchestrator serializes access.
type Match struct {
	ID       string
	Duration time.Duration
	Status   MatchStatus

	// StartedAt and EndsAt are zero until Start; EndedAt is zero until
	// Finish. Winner is non-nil only when Status is finished and the match
	// had members at finish time.
	StartedAt time.Time
	EndsAt    time.Time
	EndedAt   time.Time
	Winner    *Session

	sessions []*Session
}

// NewMatch creates a waiting match. The duration is fixed for the match's
// lifetime; d <= 0 falls back to DefaultMatchDuration.
func NewMatch(id string, d time.Duration) *Match {
	if d <= 0 {
		d = DefaultMatchDuration
	}
	return &Match{
		ID:       id,
		Duration: d,
		Status:   StatusWaiting,
	}
}

// AddSession appends the session to membership. Legal only while waiting;
// the orchestrator routes joins so this is never called on a started match.
func (m *Match) AddSession(s *Session) {
	m.sessions = append(m.sessions, s)
}

// RemoveSession drops the session from membership. Legal in any state and
// never triggers a transition; empty-match detection is the orchestrator's
// job.
func (m *Match) RemoveSession(id string) {
	for i, s := range m.sessions {
		if s.ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return
		}
	}
}

// Sessions returns the membership in join order.
func (m *Match) Sessions() []*Session {
	out := make([]*Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Snapshots returns wire-format snapshots of the membership in join order.
func (m *Match) Snapshots() []protocol.Player {
	out := make([]protocol.Player, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Len returns the membership count.
func (m *Match) Len() int {
	return len(m.sessions)
}

// Start moves the match from waiting to active and fixes the deadline.
func (m *Match) Start() {
	if m.Status != StatusWaiting {
		return
	}
	m.Status = StatusActive
	m.StartedAt = time.Now()
	m.EndsAt = m.StartedAt.Add(m.Duration)
}

// Finish moves the match to finished, records the end time, and determines
// the winner: the session with the strictly highest kill count, ties broken
// by join order. Idempotent; only the first call has effect.
func (m *Match) Finish() {
	if m.Status == StatusFinished {
		return
	}
	m.Status = StatusFinished
	m.EndedAt = time.Now()

	var winner *Session
	best := -1
	for _, s := range m.sessions {
		if s.Kills > best {
			best = s.Kills
			winner = s
		}
	}
	m.Winner = winner
}

// IsExpired reports whether the active deadline has passed. Finished and
// waiting matches never expire.
func (m *Match) IsExpired() bool {
	return m.Status == StatusActive && !time.Now().Before(m.EndsAt)
}

// TimeRemaining returns the time left before the deadline, or 0 when the
// match is not active.
func (m *Match) TimeRemaining() time.Duration {
	if m.Status != StatusActive {
		return 0
	}
	remaining := time.Until(m.EndsAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
