package server

import (
	"net/http"
	"time"
)

// Config holds configuration for the HTTP/WebSocket server.
type Config struct {
	// Addr is the address to listen on (e.g., ":8080").
	// Default: ":8080".
	Addr string

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin validates the request origin during the upgrade.
	// Default: nil, which accepts every origin. Game clients are served
	// from a separate host, so there is no same-origin relationship to
	// enforce.
	CheckOrigin func(r *http.Request) bool

	// ReadTimeout is the maximum time to wait for a message from the
	// client before the connection is considered dead. Pongs reset it.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the time between heartbeat pings. Must be shorter
	// than ReadTimeout.
	// Default: 30 seconds.
	PingInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// SendBuffer is the size of a peer's outbound queue. A peer that
	// cannot drain it is dropped.
	// Default: 256.
	SendBuffer int

	// StatsInterval is how often server stats are logged.
	// Default: 30 seconds.
	StatsInterval time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  64 * 1024,
		SendBuffer:      256,
		StatsInterval:   30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	defaults := DefaultConfig()
	if out.Addr == "" {
		out.Addr = defaults.Addr
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.PingInterval == 0 {
		out.PingInterval = defaults.PingInterval
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.SendBuffer == 0 {
		out.SendBuffer = defaults.SendBuffer
	}
	if out.StatsInterval == 0 {
		out.StatsInterval = defaults.StatsInterval
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	return &out
}
