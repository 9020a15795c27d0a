package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/suiarena/arena/internal/config"
	"github.com/suiarena/arena/internal/metrics"
	"github.com/suiarena/arena/pkg/arena"
	"github.com/suiarena/arena/pkg/server"
	"github.com/suiarena/arena/pkg/settlement"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the arena game server",
		Long: `Run the WebSocket game server.

Configuration comes from the environment (ARENA_* and SUI_*
variables); flags override it. Without an ARENA_REGISTRY_CONTRACT
the server runs with settlement disabled and logs match results
instead of submitting them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return runServer(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ARENA_ADDR)")

	return cmd
}

func runServer(cfg *config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	var settle arena.SettlementService
	if cfg.ArenaRegistryContract != "" {
		settle = settlement.NewSuiClient(&settlement.Config{
			RPCURL:                cfg.SuiRPCURL,
			SignerAddress:         cfg.SuiSignerAddress,
			ArenaRegistryContract: cfg.ArenaRegistryContract,
		}, nil, logger)
		logger.Info("settlement enabled",
			"rpc_url", cfg.SuiRPCURL,
			"contract", cfg.ArenaRegistryContract)
	} else {
		settle = settlement.NewNoop(logger)
		logger.Warn("no arena registry contract configured, settlement disabled")
	}

	bounds := arena.Bounds{Width: cfg.ArenaWidth, Height: cfg.ArenaHeight}
	registry := arena.NewRegistry(bounds, logger)
	resolver := arena.NewResolver(registry, cfg.ShotDamage)
	broadcaster := arena.NewBroadcaster(logger, m)
	orch := arena.NewOrchestrator(&arena.OrchestratorConfig{
		MatchDuration:     cfg.MatchDuration,
		MinPlayers:        cfg.MinPlayers,
		TickInterval:      cfg.TickInterval,
		RespawnDelay:      cfg.RespawnDelay,
		SettlementTimeout: cfg.SettlementTimeout,
	}, registry, resolver, broadcaster, settle, m, logger)

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Addr
	srvCfg.StatsInterval = cfg.StatsInterval
	srv := server.New(srvCfg, orch, m, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
