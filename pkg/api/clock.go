package api

import (
	"context"
	"time"
)

// Clock abstracts the simulated-latency delay so that tests and demos can
// run synchronously instead of waiting on real timers.
type Clock interface {
	// Sleep blocks for d or until the context is cancelled, in which
	// case it returns ctx.Err.
	Sleep(ctx context.Context, d time.Duration) error
}

// Latencies holds the fixed delay per simulated operation kind.
type Latencies struct {
	SendOTP        time.Duration
	VerifyOTP      time.Duration
	VerifyPIN      time.Duration
	FetchBalance   time.Duration
	SubmitTransfer time.Duration
}

// DefaultLatencies returns the reference delays for each operation.
func DefaultLatencies() Latencies {
	return Latencies{
		SendOTP:        1500 * time.Millisecond,
		VerifyOTP:      1000 * time.Millisecond,
		VerifyPIN:      1000 * time.Millisecond,
		FetchBalance:   1000 * time.Millisecond,
		SubmitTransfer: 2000 * time.Millisecond,
	}
}

// For returns the configured delay for the given operation kind.
func (l Latencies) For(kind OpKind) time.Duration {
	switch kind {
	case OpSendOTP:
		return l.SendOTP
	case OpVerifyOTP:
		return l.VerifyOTP
	case OpVerifyPIN:
		return l.VerifyPIN
	case OpFetchBalance:
		return l.FetchBalance
	case OpSubmitTransfer:
		return l.SubmitTransfer
	}
	return 0
}

type systemClock struct{}

// SystemClock returns a Clock backed by real timers.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

type instantClock struct{}

// InstantClock returns a Clock whose Sleep returns immediately (still
// honoring an already-cancelled context). Intended for tests and demos.
func InstantClock() Clock { return instantClock{} }

func (instantClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
