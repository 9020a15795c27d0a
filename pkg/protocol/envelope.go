package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound message types sent by clients.
const (
	TypePlayerJoin    = "player_join"
	TypePlayerMove    = "player_move"
	TypePlayerShoot   = "player_shoot"
	TypePlayerRespawn = "player_respawn"
)

// Outbound message types emitted by the server.
const (
	TypeConnectionEstablished = "connection_established"
	TypePlayerJoined          = "player_joined"
	TypePlayersUpdate         = "players_update"
	TypePlayerMoved           = "player_moved"
	TypeShotFired             = "shot_fired"
	TypePlayerRespawned       = "player_respawned"
	TypeMatchStarted          = "match_started"
	TypeTimeUpdate            = "time_update"
	TypeMatchEnded            = "match_ended"
	TypeRewardReady           = "reward_ready"
	TypeError                 = "error"
)

// Sentinel errors for envelope decoding.
var (
	// ErrMalformed is returned when an inbound message is not a valid envelope.
	ErrMalformed = errors.New("protocol: malformed envelope")

	// ErrMissingField is returned when a payload lacks a required field.
	ErrMissingField = errors.New("protocol: missing required field")
)

// Inbound is the client-to-server envelope. Payload is left raw so the
// router can decode it against the shape dictated by Type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Outbound is the server-to-client envelope.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// DecodeInbound parses an inbound envelope. It validates only the envelope
// frame, not the payload shape.
func DecodeInbound(data []byte) (*Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.Type == "" {
		return nil, fmt.Errorf("%w: empty type", ErrMalformed)
	}
	return &in, nil
}

// DecodePayload unmarshals an inbound payload into v.
func (in *Inbound) DecodePayload(v any) error {
	if len(in.Payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// EncodeOutbound serializes an outbound envelope.
func EncodeOutbound(typ string, data any) ([]byte, error) {
	b, err := json.Marshal(Outbound{Type: typ, Data: data})
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", typ, err)
	}
	return b, nil
}
