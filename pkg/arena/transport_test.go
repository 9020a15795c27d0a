package arena

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// capturedMsg is a decoded outbound envelope as seen by a fake transport.
type capturedMsg struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// fakeTransport records everything sent to it. fail makes every Send
// return ErrTransportClosed.
type fakeTransport struct {
	mu   sync.Mutex
	fail bool
	msgs [][]byte
}

func (f *fakeTransport) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return ErrTransportClosed
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	f.msgs = append(f.msgs, buf)
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) captured(t *testing.T) []capturedMsg {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]capturedMsg, 0, len(f.msgs))
	for _, raw := range f.msgs {
		var msg capturedMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("captured message is not an envelope: %v", err)
		}
		out = append(out, msg)
	}
	return out
}

func (f *fakeTransport) types(t *testing.T) []string {
	t.Helper()
	msgs := f.captured(t)
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func (f *fakeTransport) count(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, m := range f.captured(t) {
		if m.Type == typ {
			n++
		}
	}
	return n
}

func (f *fakeTransport) last(t *testing.T, typ string) (json.RawMessage, bool) {
	t.Helper()
	var data json.RawMessage
	found := false
	for _, m := range f.captured(t) {
		if m.Type == typ {
			data = m.Data
			found = true
		}
	}
	return data, found
}
