package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLatencies_For(t *testing.T) {
	lat := DefaultLatencies()

	cases := map[OpKind]time.Duration{
		OpSendOTP:        1500 * time.Millisecond,
		OpVerifyOTP:      1000 * time.Millisecond,
		OpVerifyPIN:      1000 * time.Millisecond,
		OpFetchBalance:   1000 * time.Millisecond,
		OpSubmitTransfer: 2000 * time.Millisecond,
	}
	for kind, want := range cases {
		if got := lat.For(kind); got != want {
			t.Fatalf("For(%s) = %v, want %v", kind, got, want)
		}
	}
	if got := lat.For(OpKind("unknown")); got != 0 {
		t.Fatalf("unknown kind should have no delay, got %v", got)
	}
}

func TestSystemClock(t *testing.T) {
	clock := SystemClock()

	if err := clock.Sleep(context.Background(), 0); err != nil {
		t.Fatalf("zero sleep failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := clock.Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInstantClock(t *testing.T) {
	clock := InstantClock()

	start := time.Now()
	if err := clock.Sleep(context.Background(), time.Hour); err != nil {
		t.Fatalf("Sleep failed: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("instant clock actually slept")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := clock.Sleep(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
