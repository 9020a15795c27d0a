// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration. Every field has a working
// default; a bare environment starts a playable server with settlement
// disabled.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"ARENA_ADDR" envDefault:":8080"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel slog.Level `env:"ARENA_LOG_LEVEL" envDefault:"info"`

	// MatchDuration is how long a match runs once active.
	MatchDuration time.Duration `env:"ARENA_MATCH_DURATION" envDefault:"2m"`

	// MinPlayers starts a waiting match when reached.
	MinPlayers int `env:"ARENA_MIN_PLAYERS" envDefault:"2"`

	// ShotDamage is the health removed per successful shot.
	ShotDamage int `env:"ARENA_SHOT_DAMAGE" envDefault:"25"`

	// RespawnDelay is the wait between a kill and the victim's respawn.
	RespawnDelay time.Duration `env:"ARENA_RESPAWN_DELAY" envDefault:"3s"`

	// TickInterval drives time updates and expiry checks.
	TickInterval time.Duration `env:"ARENA_TICK_INTERVAL" envDefault:"1s"`

	// ArenaWidth and ArenaHeight bound the respawn spawn area.
	ArenaWidth  float64 `env:"ARENA_WIDTH" envDefault:"800"`
	ArenaHeight float64 `env:"ARENA_HEIGHT" envDefault:"600"`

	// StatsInterval is how often server stats are logged.
	StatsInterval time.Duration `env:"ARENA_STATS_INTERVAL" envDefault:"30s"`

	// SuiRPCURL is the fullnode JSON-RPC endpoint.
	SuiRPCURL string `env:"SUI_RPC_URL" envDefault:"https://fullnode.testnet.sui.io:443"`

	// SuiSignerAddress is the server's Sui address used as the transaction
	// sender.
	SuiSignerAddress string `env:"SUI_SIGNER_ADDRESS"`

	// ArenaRegistryContract is the deployed arena registry package id.
	// When empty, match results are logged instead of submitted.
	ArenaRegistryContract string `env:"ARENA_REGISTRY_CONTRACT"`

	// SettlementTimeout bounds a single settlement submission.
	SettlementTimeout time.Duration `env:"ARENA_SETTLEMENT_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinPlayers < 1 {
		return fmt.Errorf("config: ARENA_MIN_PLAYERS must be at least 1, got %d", c.MinPlayers)
	}
	if c.ShotDamage < 1 {
		return fmt.Errorf("config: ARENA_SHOT_DAMAGE must be positive, got %d", c.ShotDamage)
	}
	if c.MatchDuration <= 0 {
		return fmt.Errorf("config: ARENA_MATCH_DURATION must be positive, got %s", c.MatchDuration)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: ARENA_TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.ArenaWidth <= 0 || c.ArenaHeight <= 0 {
		return fmt.Errorf("config: arena bounds must be positive, got %gx%g", c.ArenaWidth, c.ArenaHeight)
	}
	return nil
}
