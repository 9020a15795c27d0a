package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/suiarena/arena/pkg/arena"
	"github.com/suiarena/arena/pkg/protocol"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := testLogger()
	reg := arena.NewRegistry(arena.DefaultBounds, logger)
	res := arena.NewResolver(reg, arena.DefaultShotDamage)
	bc := arena.NewBroadcaster(logger, nil)
	cfg := &arena.OrchestratorConfig{
		MatchDuration:     2 * time.Minute,
		MinPlayers:        2,
		TickInterval:      time.Hour,
		RespawnDelay:      3 * time.Second,
		SettlementTimeout: time.Second,
	}
	orch := arena.NewOrchestrator(cfg, reg, res, bc, nil, nil, logger)
	t.Cleanup(orch.Shutdown)

	srv := New(DefaultConfig(), orch, nil, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads envelopes until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) recordedMsg {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg recordedMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("not an envelope: %v", err)
		}
		if msg.Type == typ {
			return msg
		}
	}
	t.Fatalf("no %s message before deadline", typ)
	return recordedMsg{}
}

func sendJoin(t *testing.T, conn *websocket.Conn, wallet string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, joinMessage(wallet)); err != nil {
		t.Fatalf("send join: %v", err)
	}
}

func TestWelcomeMessage(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	msg := readUntil(t, conn, protocol.TypeConnectionEstablished)
	var data protocol.ConnectionEstablishedData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("welcome data: %v", err)
	}
	if data.Message != "Connected to Sui Arena server" {
		t.Errorf("welcome message = %q", data.Message)
	}
	if data.Timestamp == 0 {
		t.Error("welcome timestamp should be set")
	}
}

func TestJoinOverWebSocket(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	readUntil(t, conn, protocol.TypeConnectionEstablished)
	sendJoin(t, conn, "0xabc")

	msg := readUntil(t, conn, protocol.TypePlayerJoined)
	var joined protocol.PlayerJoinedData
	if err := json.Unmarshal(msg.Data, &joined); err != nil {
		t.Fatalf("player_joined data: %v", err)
	}
	if joined.PlayerID == "" || joined.MatchID == "" {
		t.Errorf("player_joined = %+v, want ids assigned", joined)
	}
	if joined.MatchStatus != "waiting" {
		t.Errorf("matchStatus = %q, want waiting", joined.MatchStatus)
	}

	roster := readUntil(t, conn, protocol.TypePlayersUpdate)
	var update protocol.PlayersUpdateData
	if err := json.Unmarshal(roster.Data, &update); err != nil {
		t.Fatalf("players_update data: %v", err)
	}
	if len(update.Players) != 1 {
		t.Errorf("roster = %d players, want 1", len(update.Players))
	}
}

func TestTwoPlayersStartMatch(t *testing.T) {
	ts := newTestServer(t)

	c1 := dial(t, ts)
	c2 := dial(t, ts)
	readUntil(t, c1, protocol.TypeConnectionEstablished)
	readUntil(t, c2, protocol.TypeConnectionEstablished)

	sendJoin(t, c1, "0xa")
	readUntil(t, c1, protocol.TypePlayerJoined)
	sendJoin(t, c2, "0xb")

	for _, conn := range []*websocket.Conn{c1, c2} {
		msg := readUntil(t, conn, protocol.TypeMatchStarted)
		var started protocol.MatchStartedData
		if err := json.Unmarshal(msg.Data, &started); err != nil {
			t.Fatalf("match_started data: %v", err)
		}
		if started.Duration != 120000 {
			t.Errorf("duration = %d, want 120000", started.Duration)
		}
		if len(started.Players) != 2 {
			t.Errorf("players = %d, want 2", len(started.Players))
		}
	}
}

func TestMalformedMessageGetsErrorReply(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	readUntil(t, conn, protocol.TypeConnectionEstablished)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("send: %v", err)
	}

	msg := readUntil(t, conn, protocol.TypeError)
	var data protocol.ErrorData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("error data: %v", err)
	}
	if data.Message != "Invalid message format" {
		t.Errorf("error message = %q", data.Message)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
