package server

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/suiarena/arena/internal/metrics"
	"github.com/suiarena/arena/pkg/arena"
	"github.com/suiarena/arena/pkg/protocol"
)

// Router decodes inbound envelopes and dispatches them into the
// orchestrator. Validation failures are answered with an error message to
// the sender only; nothing is ever broadcast for a bad message.
type Router struct {
	orch    *arena.Orchestrator
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRouter wires a router. m may be nil.
func NewRouter(orch *arena.Orchestrator, m *metrics.Metrics, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		orch:    orch,
		metrics: m,
		logger:  logger.With("component", "router"),
		tracer:  otel.Tracer("arena"),
	}
}

// HandleMessage processes one raw message from t.
func (r *Router) HandleMessage(ctx context.Context, t arena.Transport, raw []byte) {
	in, err := protocol.DecodeInbound(raw)
	if err != nil {
		r.metrics.IncProtocolErrors()
		r.logger.Warn("malformed message", "error", err)
		r.sendError(t, "Invalid message format")
		return
	}

	_, span := r.tracer.Start(ctx, fmt.Sprintf("arena.%s", in.Type),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("message.type", in.Type)),
	)
	defer span.End()

	r.metrics.IncMessages(in.Type)

	if err := r.dispatch(t, in); err != nil {
		r.metrics.IncProtocolErrors()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn("message rejected", "type", in.Type, "error", err)
		r.sendError(t, "Invalid message format")
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (r *Router) dispatch(t arena.Transport, in *protocol.Inbound) error {
	switch in.Type {
	case protocol.TypePlayerJoin:
		var p protocol.JoinPayload
		if err := in.DecodePayload(&p); err != nil {
			return err
		}
		if p.WalletAddress == "" {
			return fmt.Errorf("%w: walletAddress", protocol.ErrMissingField)
		}
		r.orch.HandleJoin(p.WalletAddress, t)

	case protocol.TypePlayerMove:
		var p protocol.MovePayload
		if err := in.DecodePayload(&p); err != nil {
			return err
		}
		if p.PlayerID == "" {
			return fmt.Errorf("%w: playerId", protocol.ErrMissingField)
		}
		if !r.orch.HandleMove(p.PlayerID, p.Position) {
			r.logger.Debug("move for unknown player", "player_id", p.PlayerID)
		}

	case protocol.TypePlayerShoot:
		var p protocol.ShootPayload
		if err := in.DecodePayload(&p); err != nil {
			return err
		}
		if p.ShooterID == "" || p.TargetID == "" {
			return fmt.Errorf("%w: shooterId and targetId", protocol.ErrMissingField)
		}
		r.orch.HandleShoot(p.ShooterID, p.TargetID, p.Position)

	case protocol.TypePlayerRespawn:
		var p protocol.RespawnPayload
		if err := in.DecodePayload(&p); err != nil {
			return err
		}
		if p.PlayerID == "" {
			return fmt.Errorf("%w: playerId", protocol.ErrMissingField)
		}
		r.orch.HandleRespawn(p.PlayerID)

	default:
		// Unknown types are logged and dropped, not answered.
		r.logger.Warn("unknown message type", "type", in.Type)
	}
	return nil
}

// HandleDisconnect tells the orchestrator a transport is gone.
func (r *Router) HandleDisconnect(t arena.Transport) {
	r.orch.HandleDisconnect(t)
}

func (r *Router) sendError(t arena.Transport, msg string) {
	data, err := protocol.EncodeOutbound(protocol.TypeError, protocol.ErrorData{Message: msg})
	if err != nil {
		return
	}
	if err := t.Send(data); err != nil {
		r.logger.Debug("error reply failed", "error", err)
	}
}
