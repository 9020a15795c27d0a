package arena

import (
	"log/slog"

	"github.com/suiarena/arena/internal/metrics"
	"github.com/suiarena/arena/pkg/protocol"
)

// Broadcaster fans a message out to every session of a match. Delivery is
// best effort: a failed or missing transport is logged and skipped, and
// never aborts delivery to the rest.
type Broadcaster struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewBroadcaster creates a broadcaster. metrics may be nil.
func NewBroadcaster(logger *slog.Logger, m *metrics.Metrics) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		logger:  logger.With("component", "broadcaster"),
		metrics: m,
	}
}

// BroadcastToMatch serializes the envelope once and sends it to every
// member of the match.
func (b *Broadcaster) BroadcastToMatch(m *Match, typ string, data any) {
	raw, err := protocol.EncodeOutbound(typ, data)
	if err != nil {
		b.logger.Error("encode broadcast", "type", typ, "error", err)
		return
	}

	b.metrics.IncBroadcasts(typ)

	for _, s := range m.Sessions() {
		b.sendRaw(s, typ, raw)
	}
}

// SendTo delivers an envelope to a single session, best effort.
func (b *Broadcaster) SendTo(s *Session, typ string, data any) {
	raw, err := protocol.EncodeOutbound(typ, data)
	if err != nil {
		b.logger.Error("encode message", "type", typ, "error", err)
		return
	}
	b.sendRaw(s, typ, raw)
}

func (b *Broadcaster) sendRaw(s *Session, typ string, raw []byte) {
	t := s.Transport()
	if t == nil {
		return
	}
	if err := t.Send(raw); err != nil {
		b.metrics.IncSendFailures()
		b.logger.Warn("send failed",
			"type", typ,
			"player_id", s.ID,
			"error", err)
	}
}
