package bankflow

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rpatil/bankflow/internal/flow"
	"github.com/rpatil/bankflow/internal/host"
	"github.com/rpatil/bankflow/internal/persistence"
	"github.com/rpatil/bankflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	View                 = api.View
	Session              = api.Session
	StepID               = api.StepID
	Outcome              = api.Outcome
	OpKind               = api.OpKind
	TransferDraft        = api.TransferDraft
	ValidationError      = api.ValidationError
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
	Clock                = api.Clock
	Latencies            = api.Latencies
)

// Re-export common observer and clock helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	SystemClock          = api.SystemClock
	InstantClock         = api.InstantClock
	DefaultLatencies     = api.DefaultLatencies
)

// Re-export step IDs for convenience.

const (
	StepLogin             = api.StepLogin
	StepOTPEntry          = api.StepOTPEntry
	StepAccountSelection  = api.StepAccountSelection
	StepPINEntry          = api.StepPINEntry
	StepMainMenu          = api.StepMainMenu
	StepCheckBalance      = api.StepCheckBalance
	StepSendMoneyDetails  = api.StepSendMoneyDetails
	StepSendMoneyConfirm  = api.StepSendMoneyConfirm
	StepSendMoneyComplete = api.StepSendMoneyComplete
	StepFraudAlert        = api.StepFraudAlert
	StepLocked            = api.StepLocked
	StepNotFound          = api.StepNotFound
)

// Option customizes an engine at construction time.
type Option func(*flow.Config)

// WithObserver attaches an Observer to the engine.
func WithObserver(obs Observer) Option {
	return func(cfg *flow.Config) {
		cfg.Observer = obs
	}
}

// WithClock replaces the delay source, letting tests and demos skip the
// simulated latencies.
func WithClock(clock Clock) Option {
	return func(cfg *flow.Config) {
		cfg.Clock = clock
	}
}

// WithMaxPINAttempts overrides the lockout threshold.
func WithMaxPINAttempts(n int) Option {
	return func(cfg *flow.Config) {
		cfg.Settings.MaxPINAttempts = n
	}
}

// WithReferencePIN overrides the PIN accepted by the simulated gateway.
func WithReferencePIN(pin string) Option {
	return func(cfg *flow.Config) {
		cfg.Settings.ReferencePIN = pin
	}
}

// WithLatencies overrides the simulated per-operation delays.
func WithLatencies(lat Latencies) Option {
	return func(cfg *flow.Config) {
		cfg.Settings.Latencies = lat
	}
}

// Engine constructors
// These wrap the internal/flow package so external callers never need to
// import internal packages.

// NewInMemoryEngine returns an Engine keeping sessions entirely in memory.
func NewInMemoryEngine(opts ...Option) Engine {
	cfg := flow.Config{Store: persistence.NewInMemoryStore()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return flow.NewEngine(cfg)
}

// NewSQLiteEngine returns an Engine that persists sessions in a SQLite
// database, so an interrupted interaction can be resumed by session ID.
func NewSQLiteEngine(db *sql.DB, opts ...Option) (Engine, error) {
	store, err := persistence.NewSQLiteSessionStore(db)
	if err != nil {
		return nil, err
	}

	cfg := flow.Config{Store: store}
	for _, opt := range opts {
		opt(&cfg)
	}
	return flow.NewEngine(cfg), nil
}

// NewRedisEngine returns an Engine that persists sessions in Redis with
// the given TTL (zero means no expiry).
func NewRedisEngine(client *redis.Client, ttl time.Duration, opts ...Option) Engine {
	store := persistence.NewRedisSessionStore(client, persistence.WithTTL(ttl))

	cfg := flow.Config{Store: store}
	for _, opt := range opts {
		opt(&cfg)
	}
	return flow.NewEngine(cfg)
}

// NewHTTPHandler exposes an engine as the reference JSON-over-HTTP Flow
// Host (chi router).
func NewHTTPHandler(eng Engine) http.Handler {
	return host.NewHandler(eng)
}

// Convenience helpers that just forward to the underlying Engine.

// StartSession creates a new session at the Login step.
func StartSession(ctx context.Context, eng Engine) (*View, error) {
	return eng.StartSession(ctx)
}

// UpdateField normalizes and stores one field of the active step's form.
func UpdateField(ctx context.Context, eng Engine, sessionID, field, raw string) (*View, error) {
	return eng.UpdateField(ctx, sessionID, field, raw)
}

// Submit validates the current step and applies its transition.
func Submit(ctx context.Context, eng Engine, sessionID string) (*View, error) {
	return eng.Submit(ctx, sessionID)
}

// GoBack moves to the current step's declared predecessor.
func GoBack(ctx context.Context, eng Engine, sessionID string) (*View, error) {
	return eng.GoBack(ctx, sessionID)
}

// Reset returns the session to its initial state.
func Reset(ctx context.Context, eng Engine, sessionID string) (*View, error) {
	return eng.Reset(ctx, sessionID)
}
