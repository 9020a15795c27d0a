package server

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/suiarena/arena/pkg/arena"
)

// Peer owns one WebSocket connection's write side. Sends go through a
// buffered queue drained by writePump, so callers holding game locks never
// block on a slow socket.
type Peer struct {
	conn   *websocket.Conn
	cfg    *Config
	logger *slog.Logger

	send   chan []byte
	done   chan struct{}
	closed atomic.Bool
}

func newPeer(conn *websocket.Conn, cfg *Config, logger *slog.Logger) *Peer {
	return &Peer{
		conn:   conn,
		cfg:    cfg,
		logger: logger,
		send:   make(chan []byte, cfg.SendBuffer),
		done:   make(chan struct{}),
	}
}

// Send enqueues data for delivery. It never blocks: a peer whose queue is
// full is dropped, since it is too far behind to keep playing.
func (p *Peer) Send(data []byte) error {
	if p.closed.Load() {
		return arena.ErrTransportClosed
	}
	select {
	case p.send <- data:
		return nil
	default:
		p.logger.Warn("peer send queue full, dropping connection")
		p.Close()
		return fmt.Errorf("%w: send queue full", arena.ErrTransportClosed)
	}
}

// Close shuts the peer down. Safe to call more than once and from any
// goroutine; the read loop's ReadMessage fails once the socket closes.
func (p *Peer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(p.done)
	return p.conn.Close()
}

// writePump drains the send queue and keeps the connection alive with
// periodic pings. It exits when the peer closes or a write fails.
func (p *Peer) writePump() {
	ticker := time.NewTicker(p.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.logger.Debug("write error", "error", err)
				p.Close()
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.Close()
				return
			}

		case <-p.done:
			p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			p.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
