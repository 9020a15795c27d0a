package settlement

import (
	"context"
	"log/slog"
)

// Noop logs results instead of submitting them. It stands in for the real
// client until an arena registry contract is deployed and configured.
type Noop struct {
	logger *slog.Logger
}

// NewNoop builds a no-op service. logger may be nil.
func NewNoop(logger *slog.Logger) *Noop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Noop{logger: logger.With("component", "settlement")}
}

func (n *Noop) SubmitMatchResult(_ context.Context, matchID, winnerWallet string, kills int) error {
	n.logger.Info("match result recorded locally, no contract configured",
		"match_id", matchID,
		"wallet", winnerWallet,
		"kills", kills)
	return nil
}
