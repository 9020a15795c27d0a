package protocol

// Position is a 2D arena coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Player is the public snapshot of a session as it appears on the wire.
type Player struct {
	ID            string   `json:"id"`
	WalletAddress string   `json:"walletAddress"`
	Position      Position `json:"position"`
	Health        int      `json:"health"`
	Kills         int      `json:"kills"`
	Deaths        int      `json:"deaths"`
	Alive         bool     `json:"isAlive"`
}

// Inbound payloads.

// JoinPayload carries the wallet identity for player_join.
type JoinPayload struct {
	WalletAddress string `json:"walletAddress"`
}

// MovePayload carries a position update for player_move.
type MovePayload struct {
	PlayerID string   `json:"playerId"`
	Position Position `json:"position"`
}

// ShootPayload carries the participants of a player_shoot.
type ShootPayload struct {
	ShooterID string   `json:"shooterId"`
	TargetID  string   `json:"targetId"`
	Position  Position `json:"position"`
}

// RespawnPayload carries the subject of a player_respawn request.
type RespawnPayload struct {
	PlayerID string `json:"playerId"`
}

// Outbound data shapes.

// ConnectionEstablishedData is sent once when a socket is accepted.
type ConnectionEstablishedData struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// PlayerJoinedData confirms a join to the joining client only.
type PlayerJoinedData struct {
	PlayerID    string `json:"playerId"`
	MatchID     string `json:"matchId"`
	MatchStatus string `json:"matchStatus"`
}

// PlayersUpdateData carries the full roster of the joined match.
type PlayersUpdateData struct {
	Players []Player `json:"players"`
}

// PlayerMovedData broadcasts a single position change.
type PlayerMovedData struct {
	PlayerID string   `json:"playerId"`
	Position Position `json:"position"`
}

// ShotResult describes a resolved shot. Type is "hit" or "kill".
type ShotResult struct {
	Type    string `json:"type"`
	Shooter Player `json:"shooter"`
	Target  Player `json:"target"`
}

// ShotFiredData broadcasts a resolved shot with the reported position.
type ShotFiredData struct {
	Result    ShotResult `json:"result"`
	Position  Position   `json:"position"`
	Timestamp int64      `json:"timestamp"`
}

// MatchStartedData announces a match going active. Duration is in
// milliseconds.
type MatchStartedData struct {
	MatchID  string   `json:"matchId"`
	Duration int64    `json:"duration"`
	Players  []Player `json:"players"`
}

// TimeUpdateData carries the remaining match time in milliseconds.
type TimeUpdateData struct {
	TimeRemaining int64 `json:"timeRemaining"`
}

// FinalScore is one row of the end-of-match scoreboard.
type FinalScore struct {
	ID            string `json:"id"`
	WalletAddress string `json:"walletAddress"`
	Kills         int    `json:"kills"`
	Deaths        int    `json:"deaths"`
}

// MatchEndedData announces a finished match. Winner is null when the match
// ended with no members.
type MatchEndedData struct {
	MatchID     string       `json:"matchId"`
	Winner      *Player      `json:"winner"`
	FinalScores []FinalScore `json:"finalScores"`
}

// RewardReadyData is sent to the winner after a successful settlement
// submission.
type RewardReadyData struct {
	Message string `json:"message"`
	MatchID string `json:"matchId"`
	Kills   int    `json:"kills"`
}

// ErrorData is the payload of an error reply to a single sender.
type ErrorData struct {
	Message string `json:"message"`
}
