package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRPCURL is the Sui testnet fullnode.
const DefaultRPCURL = "https://fullnode.testnet.sui.io:443"

// DefaultGasBudget is the gas budget attached to record_match_result calls,
// in MIST.
const DefaultGasBudget = "10000000"

var (
	// ErrNotConfigured is returned when no arena registry contract address
	// has been set. Deployments without a contract should use Noop instead.
	ErrNotConfigured = errors.New("settlement: arena registry contract not configured")
)

// Service records a finished match with the ledger.
type Service interface {
	SubmitMatchResult(ctx context.Context, matchID, winnerWallet string, kills int) error
}

// Config holds the Sui client settings.
type Config struct {
	// RPCURL is the fullnode JSON-RPC endpoint.
	// Default: DefaultRPCURL.
	RPCURL string

	// SignerAddress is the server's Sui address used as the transaction
	// sender.
	SignerAddress string

	// ArenaRegistryContract is the package id of the deployed arena
	// registry. Required; SubmitMatchResult fails with ErrNotConfigured
	// when empty.
	ArenaRegistryContract string

	// GasBudget for each move call, in MIST. Default: DefaultGasBudget.
	GasBudget string
}

// DefaultConfig returns a Config pointed at the testnet fullnode. The
// contract address and signer still have to be filled in.
func DefaultConfig() *Config {
	return &Config{
		RPCURL:    DefaultRPCURL,
		GasBudget: DefaultGasBudget,
	}
}

// SuiClient submits match results to a Sui fullnode over JSON-RPC. It calls
// the arena registry package's record_match_result entry function.
type SuiClient struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// NewSuiClient builds a client. httpClient may be nil, in which case
// http.DefaultClient is used; per-call deadlines come from the caller's
// context.
func NewSuiClient(cfg *Config, httpClient *http.Client, logger *slog.Logger) *SuiClient {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = DefaultRPCURL
	}
	if cfg.GasBudget == "" {
		cfg.GasBudget = DefaultGasBudget
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SuiClient{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.With("component", "settlement"),
		tracer: otel.Tracer("settlement"),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("settlement: rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// SubmitMatchResult records the winner on chain via
// <contract>::arena_registry::record_match_result.
func (c *SuiClient) SubmitMatchResult(ctx context.Context, matchID, winnerWallet string, kills int) error {
	ctx, span := c.tracer.Start(ctx, "settlement.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("match.id", matchID),
			attribute.String("winner.wallet", winnerWallet),
			attribute.Int("winner.kills", kills),
		),
	)
	defer span.End()

	if c.cfg.ArenaRegistryContract == "" {
		span.SetStatus(codes.Error, ErrNotConfigured.Error())
		return ErrNotConfigured
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "unsafe_moveCall",
		Params: []any{
			c.cfg.SignerAddress,
			c.cfg.ArenaRegistryContract,
			"arena_registry",
			"record_match_result",
			[]any{},
			[]any{matchID, winnerWallet, strconv.Itoa(kills)},
			nil,
			c.cfg.GasBudget,
		},
	}

	c.logger.Info("submitting match result",
		"match_id", matchID,
		"wallet", winnerWallet,
		"kills", kills)

	if err := c.call(ctx, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *SuiClient) call(ctx context.Context, req rpcRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("settlement: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("settlement: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("settlement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("settlement: fullnode returned %s", resp.Status)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("settlement: decode response: %w", err)
	}
	if out.Error != nil {
		return out.Error
	}
	return nil
}
