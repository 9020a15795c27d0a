package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suiarena/arena/internal/metrics"
	"github.com/suiarena/arena/pkg/arena"
	"github.com/suiarena/arena/pkg/protocol"
)

// Server is the HTTP/WebSocket front of the arena.
type Server struct {
	cfg      *Config
	orch     *arena.Orchestrator
	router   *Router
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// New builds a server. cfg, m, and logger may be nil.
func New(cfg *Config, orch *arena.Orchestrator, m *metrics.Metrics, logger *slog.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Server{
		cfg:     cfg,
		orch:    orch,
		router:  NewRouter(orch, m, logger),
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Handler returns the HTTP routes: the WebSocket endpoint, a health check,
// and Prometheus metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s.logger.Info("connection established", "remote", conn.RemoteAddr().String())

	peer := newPeer(conn, s.cfg, s.logger)
	go peer.writePump()

	welcome, err := protocol.EncodeOutbound(protocol.TypeConnectionEstablished, protocol.ConnectionEstablishedData{
		Message:   "Connected to Sui Arena server",
		Timestamp: time.Now().UnixMilli(),
	})
	if err == nil {
		peer.Send(welcome)
	}

	s.readLoop(r.Context(), peer)
}

// readLoop reads until the connection dies, then reports the disconnect.
func (s *Server) readLoop(ctx context.Context, peer *Peer) {
	defer func() {
		peer.Close()
		s.router.HandleDisconnect(peer)
	}()

	peer.conn.SetReadLimit(s.cfg.MaxMessageSize)
	peer.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	peer.conn.SetPongHandler(func(string) error {
		peer.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, msg, err := peer.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		peer.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		s.router.HandleMessage(ctx, peer, msg)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	statsDone := make(chan struct{})
	go s.statsLoop(statsDone)
	defer close(statsDone)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("game server started", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops accepting connections and drains the HTTP server within
// the configured timeout.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down")
	s.orch.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// statsLoop periodically logs a snapshot of the orchestrator's state.
func (s *Server) statsLoop(done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st := s.orch.Stats()
			attrs := []any{
				"connected_players", st.ConnectedPlayers,
				"total_matches", st.TotalMatches,
			}
			if st.CurrentMatch != nil {
				attrs = append(attrs,
					"match_id", st.CurrentMatch.ID,
					"match_status", st.CurrentMatch.Status,
					"match_players", st.CurrentMatch.Players,
				)
			}
			s.logger.Info("server stats", attrs...)

		case <-done:
			return
		}
	}
}
