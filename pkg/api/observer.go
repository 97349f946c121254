package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the flow engine for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay session processing.
type Observer interface {
	// OnSessionStart is called once when a session is created.
	OnSessionStart(ctx context.Context, sess *Session)

	// OnStepEnter is called whenever a session transitions to a
	// different step (including terminals).
	OnStepEnter(ctx context.Context, sess *Session, from, to StepID)

	// OnValidationFailed is called when Submit rejects the current
	// step's form before any operation runs.
	OnValidationFailed(ctx context.Context, sess *Session, verr *ValidationError)

	// OnOperationStart is called before a simulated remote operation
	// begins its delay.
	OnOperationStart(ctx context.Context, sess *Session, kind OpKind)

	// OnOperationCompleted is called after an operation resolves, for
	// both successes and business failures.
	OnOperationCompleted(ctx context.Context, sess *Session, kind OpKind, out Outcome, d time.Duration)

	// OnSessionLocked is called when PIN attempts are exhausted and the
	// session enters the Locked terminal.
	OnSessionLocked(ctx context.Context, sess *Session)

	// OnSessionReset is called when a session is returned to its
	// initial state.
	OnSessionReset(ctx context.Context, sess *Session)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnSessionStart(ctx context.Context, sess *Session)               {}
func (NoopObserver) OnStepEnter(ctx context.Context, sess *Session, from, to StepID) {}
func (NoopObserver) OnValidationFailed(ctx context.Context, sess *Session, v *ValidationError) {
}
func (NoopObserver) OnOperationStart(ctx context.Context, sess *Session, kind OpKind) {}
func (NoopObserver) OnOperationCompleted(ctx context.Context, sess *Session, kind OpKind, out Outcome, d time.Duration) {
}
func (NoopObserver) OnSessionLocked(ctx context.Context, sess *Session) {}
func (NoopObserver) OnSessionReset(ctx context.Context, sess *Session)  {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnSessionStart(ctx context.Context, sess *Session) {
	for _, o := range c.observers {
		o.OnSessionStart(ctx, sess)
	}
}

func (c *CompositeObserver) OnStepEnter(ctx context.Context, sess *Session, from, to StepID) {
	for _, o := range c.observers {
		o.OnStepEnter(ctx, sess, from, to)
	}
}

func (c *CompositeObserver) OnValidationFailed(ctx context.Context, sess *Session, verr *ValidationError) {
	for _, o := range c.observers {
		o.OnValidationFailed(ctx, sess, verr)
	}
}

func (c *CompositeObserver) OnOperationStart(ctx context.Context, sess *Session, kind OpKind) {
	for _, o := range c.observers {
		o.OnOperationStart(ctx, sess, kind)
	}
}

func (c *CompositeObserver) OnOperationCompleted(ctx context.Context, sess *Session, kind OpKind, out Outcome, d time.Duration) {
	for _, o := range c.observers {
		o.OnOperationCompleted(ctx, sess, kind, out, d)
	}
}

func (c *CompositeObserver) OnSessionLocked(ctx context.Context, sess *Session) {
	for _, o := range c.observers {
		o.OnSessionLocked(ctx, sess)
	}
}

func (c *CompositeObserver) OnSessionReset(ctx context.Context, sess *Session) {
	for _, o := range c.observers {
		o.OnSessionReset(ctx, sess)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs session / step lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnSessionStart(ctx context.Context, sess *Session) {
	o.Logger.InfoContext(ctx, "session_start",
		slog.String("session_id", sess.ID),
	)
}

func (o *LoggingObserver) OnStepEnter(ctx context.Context, sess *Session, from, to StepID) {
	o.Logger.InfoContext(ctx, "step_enter",
		slog.String("session_id", sess.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
}

func (o *LoggingObserver) OnValidationFailed(ctx context.Context, sess *Session, verr *ValidationError) {
	o.Logger.WarnContext(ctx, "validation_failed",
		slog.String("session_id", sess.ID),
		slog.String("step", string(sess.Step)),
		slog.String("field", verr.Field),
		slog.String("reason", verr.Reason),
	)
}

func (o *LoggingObserver) OnOperationStart(ctx context.Context, sess *Session, kind OpKind) {
	o.Logger.DebugContext(ctx, "operation_start",
		slog.String("session_id", sess.ID),
		slog.String("step", string(sess.Step)),
		slog.String("kind", string(kind)),
	)
}

func (o *LoggingObserver) OnOperationCompleted(ctx context.Context, sess *Session, kind OpKind, out Outcome, d time.Duration) {
	level := slog.LevelDebug
	if !out.OK() {
		level = slog.LevelWarn
	}
	o.Logger.Log(ctx, level, "operation_completed",
		slog.String("session_id", sess.ID),
		slog.String("kind", string(kind)),
		slog.Bool("success", out.OK()),
		slog.String("reason", string(out.Reason)),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnSessionLocked(ctx context.Context, sess *Session) {
	o.Logger.ErrorContext(ctx, "session_locked",
		slog.String("session_id", sess.ID),
		slog.Int("pin_attempts", sess.PINAttempts),
	)
}

func (o *LoggingObserver) OnSessionReset(ctx context.Context, sess *Session) {
	o.Logger.InfoContext(ctx, "session_reset",
		slog.String("session_id", sess.ID),
	)
}

// BasicMetrics collects simple counters and aggregate operation durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	sessionsStarted atomic.Int64
	sessionsLocked  atomic.Int64
	sessionsReset   atomic.Int64
	validationFails atomic.Int64
	opsCompleted    atomic.Int64
	opsFailed       atomic.Int64
	totalOpDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	SessionsStarted  int64
	SessionsLocked   int64
	SessionsReset    int64
	ValidationFailed int64
	OperationsOK     int64
	OperationsFailed int64
	AvgOpDuration    time.Duration
}

func (m *BasicMetrics) OnSessionStart(ctx context.Context, sess *Session) {
	m.sessionsStarted.Add(1)
}

func (m *BasicMetrics) OnValidationFailed(ctx context.Context, sess *Session, verr *ValidationError) {
	m.validationFails.Add(1)
}

func (m *BasicMetrics) OnOperationCompleted(ctx context.Context, sess *Session, kind OpKind, out Outcome, d time.Duration) {
	if out.OK() {
		m.opsCompleted.Add(1)
		m.totalOpDuration.Add(d.Nanoseconds())
	} else {
		m.opsFailed.Add(1)
	}
}

func (m *BasicMetrics) OnSessionLocked(ctx context.Context, sess *Session) {
	m.sessionsLocked.Add(1)
}

func (m *BasicMetrics) OnSessionReset(ctx context.Context, sess *Session) {
	m.sessionsReset.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	ok := m.opsCompleted.Load()
	totalNs := m.totalOpDuration.Load()

	var avg time.Duration
	if ok > 0 {
		avg = time.Duration(totalNs / ok)
	}

	return BasicMetricsSnapshot{
		SessionsStarted:  m.sessionsStarted.Load(),
		SessionsLocked:   m.sessionsLocked.Load(),
		SessionsReset:    m.sessionsReset.Load(),
		ValidationFailed: m.validationFails.Load(),
		OperationsOK:     ok,
		OperationsFailed: m.opsFailed.Load(),
		AvgOpDuration:    avg,
	}
}
