package arena

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/suiarena/arena/internal/metrics"
	"github.com/suiarena/arena/pkg/protocol"
)

// SettlementService records a finished match's result with the external
// ledger. Implementations live in pkg/settlement; failures are always
// non-fatal to the match lifecycle.
type SettlementService interface {
	SubmitMatchResult(ctx context.Context, matchID, winnerWallet string, kills int) error
}

// OrchestratorConfig holds the gameplay timing knobs.
type OrchestratorConfig struct {
	// MatchDuration is the fixed length of a match once active.
	// Default: 2 minutes.
	MatchDuration time.Duration

	// MinPlayers is the membership count that flips a waiting match to
	// active. Default: 2.
	MinPlayers int

	// TickInterval is how often the expiry timer checks the active match
	// and broadcasts time updates. Default: 1 second.
	TickInterval time.Duration

	// RespawnDelay is the wait between a kill and the victim's respawn.
	// Default: 3 seconds.
	RespawnDelay time.Duration

	// SettlementTimeout bounds a single settlement submission.
	// Default: 30 seconds.
	SettlementTimeout time.Duration
}

// DefaultOrchestratorConfig returns the production gameplay defaults.
func DefaultOrchestratorConfig() *OrchestratorConfig {
	return &OrchestratorConfig{
		MatchDuration:     DefaultMatchDuration,
		MinPlayers:        2,
		TickInterval:      time.Second,
		RespawnDelay:      3 * time.Second,
		SettlementTimeout: 30 * time.Second,
	}
}

// Orchestrator enforces the single-joinable-match policy, drives the active
// match to completion, and hands finished results to settlement.
//
// A single mutex serializes every inbound handler and timer callback, so
// each event mutates sessions, matches, and the current-match pointer as
// one indivisible unit. Broadcasts happen under the lock; transports only
// enqueue, so no send can stall another player's event.
type Orchestrator struct {
	mu sync.Mutex

	cfg         *OrchestratorConfig
	registry    *Registry
	resolver    *Resolver
	broadcaster *Broadcaster
	settlement  SettlementService
	metrics     *metrics.Metrics
	logger      *slog.Logger

	// matches retains every match for the process lifetime; long-term
	// storage belongs to the settlement collaborator.
	matches map[string]*Match
	current *Match

	// timerStop is the stop handle of the one live expiry timer, nil when
	// none is running. Arming a timer always replaces the previous handle.
	timerStop chan struct{}
}

// NewOrchestrator wires the orchestrator. settlement and m may be nil.
func NewOrchestrator(cfg *OrchestratorConfig, registry *Registry, resolver *Resolver, broadcaster *Broadcaster, settlement SettlementService, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultOrchestratorConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:         cfg,
		registry:    registry,
		resolver:    resolver,
		broadcaster: broadcaster,
		settlement:  settlement,
		metrics:     m,
		logger:      logger.With("component", "orchestrator"),
		matches:     make(map[string]*Match),
	}
}

// HandleJoin upserts a session for the wallet, places it in the current
// match (creating one if none is joinable), confirms the join to the
// client, and broadcasts the updated roster. Reaching the minimum player
// count starts the match.
func (o *Orchestrator) HandleJoin(wallet string, t Transport) (*Session, *Match) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, _ := o.registry.Join(wallet, t)
	match := o.addToCurrentLocked(sess)

	o.metrics.SetConnectedPlayers(o.registry.Count())

	o.broadcaster.SendTo(sess, protocol.TypePlayerJoined, protocol.PlayerJoinedData{
		PlayerID:    sess.ID,
		MatchID:     match.ID,
		MatchStatus: string(match.Status),
	})
	o.broadcaster.BroadcastToMatch(match, protocol.TypePlayersUpdate, protocol.PlayersUpdateData{
		Players: match.Snapshots(),
	})

	return sess, match
}

func (o *Orchestrator) addToCurrentLocked(s *Session) *Match {
	if o.current == nil || o.current.Status != StatusWaiting {
		m := NewMatch(newID(), o.cfg.MatchDuration)
		o.matches[m.ID] = m
		o.current = m
		o.syncGaugesLocked()
		o.logger.Info("created match", "match_id", m.ID)
	}

	m := o.current
	m.AddSession(s)

	if m.Len() >= o.cfg.MinPlayers && m.Status == StatusWaiting {
		o.startMatchLocked(m)
	}
	return m
}

func (o *Orchestrator) startMatchLocked(m *Match) {
	m.Start()
	o.metrics.IncMatchesStarted()
	o.logger.Info("match started", "match_id", m.ID, "players", m.Len())

	o.broadcaster.BroadcastToMatch(m, protocol.TypeMatchStarted, protocol.MatchStartedData{
		MatchID:  m.ID,
		Duration: m.Duration.Milliseconds(),
		Players:  m.Snapshots(),
	})

	o.armTimerLocked(m)
}

// armTimerLocked starts the expiry timer for m, replacing any previous
// timer so at most one is ever live.
func (o *Orchestrator) armTimerLocked(m *Match) {
	if o.timerStop != nil {
		close(o.timerStop)
	}
	stop := make(chan struct{})
	o.timerStop = stop
	go o.runTimer(m, stop)
}

func (o *Orchestrator) runTimer(m *Match, stop chan struct{}) {
	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if o.tick(m) {
				return
			}
		case <-stop:
			return
		}
	}
}

// tick checks the match once; it reports true when the timer should stop.
// The status re-check guards the race where the match was ended between
// the ticker firing and the lock being acquired.
func (o *Orchestrator) tick(m *Match) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if m.Status == StatusFinished {
		return true
	}
	if m.IsExpired() {
		o.endMatchLocked(m)
		return true
	}

	o.broadcaster.BroadcastToMatch(m, protocol.TypeTimeUpdate, protocol.TimeUpdateData{
		TimeRemaining: m.TimeRemaining().Milliseconds(),
	})
	return false
}

// HandleMove updates the session's position and broadcasts it to the
// current match. Returns false when the session no longer exists.
func (o *Orchestrator) HandleMove(playerID string, pos protocol.Position) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.registry.UpdatePosition(playerID, pos) {
		return false
	}
	if o.current != nil {
		o.broadcaster.BroadcastToMatch(o.current, protocol.TypePlayerMoved, protocol.PlayerMovedData{
			PlayerID: playerID,
			Position: pos,
		})
	}
	return true
}

// HandleShoot resolves a shot and broadcasts the result. A kill schedules
// the victim's delayed respawn. Returns nil when the shot was a no-op.
func (o *Orchestrator) HandleShoot(shooterID, targetID string, pos protocol.Position) *ShotOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	outcome := o.resolver.ResolveShot(shooterID, targetID)
	if outcome == nil || o.current == nil {
		return outcome
	}

	o.broadcaster.BroadcastToMatch(o.current, protocol.TypeShotFired, protocol.ShotFiredData{
		Result: protocol.ShotResult{
			Type:    string(outcome.Kind),
			Shooter: outcome.Shooter,
			Target:  outcome.Target,
		},
		Position:  pos,
		Timestamp: time.Now().UnixMilli(),
	})

	if outcome.Kind == OutcomeKill {
		matchID := o.current.ID
		time.AfterFunc(o.cfg.RespawnDelay, func() {
			o.respawnInMatch(targetID, matchID)
		})
	}
	return outcome
}

// respawnInMatch is the delayed-respawn callback. Both the match and the
// session are re-validated: either may have vanished since scheduling, and
// then the respawn is a no-op.
func (o *Orchestrator) respawnInMatch(playerID, matchID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	m, ok := o.matches[matchID]
	if !ok {
		return
	}
	s := o.registry.Respawn(playerID)
	if s == nil {
		return
	}

	o.broadcaster.BroadcastToMatch(m, protocol.TypePlayerRespawned, s.Snapshot())
}

// HandleRespawn handles an explicit respawn request. Returns false when the
// session no longer exists.
func (o *Orchestrator) HandleRespawn(playerID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.registry.Respawn(playerID)
	if s == nil {
		return false
	}
	if o.current != nil {
		o.broadcaster.BroadcastToMatch(o.current, protocol.TypePlayerRespawned, s.Snapshot())
	}
	return true
}

// HandleDisconnect maps a closed transport back to its session, removes the
// player from the current match, and drops the session. Unknown transports
// (already replaced by a reconnect) are ignored.
func (o *Orchestrator) HandleDisconnect(t Transport) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.registry.FindByTransport(t)
	if s == nil {
		return
	}

	o.logger.Info("player disconnected", "player_id", s.ID, "wallet", s.WalletAddress)
	o.removeFromMatchLocked(s.ID)
	o.registry.Remove(s.ID)
	o.metrics.SetConnectedPlayers(o.registry.Count())
}

// RemovePlayerFromMatch removes the player from the current match. An
// abandoned match (no members left) ends immediately rather than running
// out its clock.
func (o *Orchestrator) RemovePlayerFromMatch(playerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removeFromMatchLocked(playerID)
}

func (o *Orchestrator) removeFromMatchLocked(playerID string) {
	if o.current == nil {
		return
	}
	o.current.RemoveSession(playerID)
	if o.current.Len() == 0 {
		o.endMatchLocked(o.current)
	}
}

// EndMatch finishes the match if it is not already finished. Safe to call
// from both the expiry timer and empty-match cleanup; only the first call
// broadcasts and submits.
func (o *Orchestrator) EndMatch(m *Match) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.endMatchLocked(m)
}

func (o *Orchestrator) endMatchLocked(m *Match) {
	if m.Status == StatusFinished {
		return
	}

	m.Finish()

	// The timer must be dead before match_ended goes out so a stale tick
	// can never fire against a finished match.
	if o.timerStop != nil {
		close(o.timerStop)
		o.timerStop = nil
	}

	winner := m.Winner
	var winnerSnap *protocol.Player
	if winner != nil {
		snap := winner.Snapshot()
		winnerSnap = &snap
	}

	scores := make([]protocol.FinalScore, 0, m.Len())
	for _, s := range m.Sessions() {
		scores = append(scores, protocol.FinalScore{
			ID:            s.ID,
			WalletAddress: s.WalletAddress,
			Kills:         s.Kills,
			Deaths:        s.Deaths,
		})
	}

	o.broadcaster.BroadcastToMatch(m, protocol.TypeMatchEnded, protocol.MatchEndedData{
		MatchID:     m.ID,
		Winner:      winnerSnap,
		FinalScores: scores,
	})

	o.metrics.IncMatchesEnded()
	o.logger.Info("match ended", "match_id", m.ID, "players", m.Len())

	if o.current == m {
		o.current = nil
	}
	o.syncGaugesLocked()

	if winner != nil && o.settlement != nil {
		go o.submitResult(m.ID, winner, *winnerSnap)
	}
}

// submitResult runs outside the lock so a slow ledger cannot stall match
// processing. The match is already terminal; failure is logged, not rolled
// back.
func (o *Orchestrator) submitResult(matchID string, winner *Session, snap protocol.Player) {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.SettlementTimeout)
	defer cancel()

	if err := o.settlement.SubmitMatchResult(ctx, matchID, snap.WalletAddress, snap.Kills); err != nil {
		o.metrics.IncSettlements("error")
		o.logger.Error("settlement submission failed",
			"match_id", matchID,
			"wallet", snap.WalletAddress,
			"error", err)
		return
	}

	o.metrics.IncSettlements("ok")
	o.logger.Info("match result submitted", "match_id", matchID, "wallet", snap.WalletAddress)

	o.broadcaster.SendTo(winner, protocol.TypeRewardReady, protocol.RewardReadyData{
		Message: "You won! Claim your reward token!",
		MatchID: matchID,
		Kills:   snap.Kills,
	})
}

// CurrentMatch returns the match currently accepting joiners, or nil.
func (o *Orchestrator) CurrentMatch() *Match {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Match returns a match by id, or nil.
func (o *Orchestrator) Match(id string) *Match {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.matches[id]
}

// Stats is a point-in-time summary for periodic logging.
type Stats struct {
	ConnectedPlayers int
	TotalMatches     int
	CurrentMatch     *MatchStats
}

// MatchStats summarizes the current match inside Stats.
type MatchStats struct {
	ID      string
	Status  MatchStatus
	Players int
}

// Stats returns a snapshot of the orchestrator's state.
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Stats{
		ConnectedPlayers: o.registry.Count(),
		TotalMatches:     len(o.matches),
	}
	if o.current != nil {
		st.CurrentMatch = &MatchStats{
			ID:      o.current.ID,
			Status:  o.current.Status,
			Players: o.current.Len(),
		}
	}
	return st
}

// Shutdown stops the expiry timer. Sessions and matches are left as-is;
// the process is going away.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timerStop != nil {
		close(o.timerStop)
		o.timerStop = nil
	}
}

func (o *Orchestrator) syncGaugesLocked() {
	if o.current != nil {
		o.metrics.SetActiveMatches(1)
	} else {
		o.metrics.SetActiveMatches(0)
	}
}
