package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

var (
	errQuota     = errors.New("quota exhausted")
	errTransient = errors.New("internal server error")
	errAuth      = errors.New("unauthorized")
)

func classify(err error) Class {
	switch {
	case errors.Is(err, errQuota):
		return Quota
	case errors.Is(err, errTransient):
		return Transient
	default:
		return Fatal
	}
}

// testExecutor records sleeps instead of performing them and disables
// jitter so delays are exact.
func testExecutor(t *testing.T) (*Executor, *[]time.Duration) {
	t.Helper()

	var sleeps []time.Duration
	ex := NewExecutor(classify, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ex.Sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	ex.Jitter = func(time.Duration) time.Duration { return 0 }
	return ex, &sleeps
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	ex, sleeps := testExecutor(t)

	calls := 0
	got, err := Do(context.Background(), ex, "embed", func(context.Context) (string, error) {
		calls++
		return "vector", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "vector" {
		t.Errorf("Do() = %q, want %q", got, "vector")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", *sleeps)
	}
}

func TestDo_TransientTwiceThenSuccess(t *testing.T) {
	ex, sleeps := testExecutor(t)

	calls := 0
	got, err := Do(context.Background(), ex, "embed", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Do() = %d, want 42", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	// Exponential backoff: the second wait is strictly longer.
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want 2 entries", *sleeps)
	}
	if (*sleeps)[0] != time.Second || (*sleeps)[1] != 2*time.Second {
		t.Errorf("backoff delays = %v, want [1s 2s]", *sleeps)
	}
}

func TestDo_TransientExhaustsAttempts(t *testing.T) {
	ex, _ := testExecutor(t)

	calls := 0
	_, err := Do(context.Background(), ex, "embed", func(context.Context) (int, error) {
		calls++
		return 0, errTransient
	})
	if err == nil {
		t.Fatal("Do() error = nil, want terminal error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("Do() error type = %T, want *Error", err)
	}
	if rerr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", rerr.Attempts)
	}
	if rerr.Class != Transient {
		t.Errorf("Class = %v, want Transient", rerr.Class)
	}
	if !errors.Is(err, errTransient) {
		t.Error("terminal error does not wrap the original failure")
	}
}

func TestDo_FatalStopsImmediately(t *testing.T) {
	ex, sleeps := testExecutor(t)

	calls := 0
	_, err := Do(context.Background(), ex, "embed", func(context.Context) (int, error) {
		calls++
		return 0, errAuth
	})
	if err == nil {
		t.Fatal("Do() error = nil, want fatal error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want exactly 1", calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %v, want none for fatal failure", *sleeps)
	}

	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("Do() error type = %T, want *Error", err)
	}
	if rerr.Class != Fatal {
		t.Errorf("Class = %v, want Fatal", rerr.Class)
	}
}

func TestDo_QuotaUsesFixedCooldown(t *testing.T) {
	ex, sleeps := testExecutor(t)

	calls := 0
	_, err := Do(context.Background(), ex, "embed", func(context.Context) (int, error) {
		calls++
		return 0, errQuota
	})
	if err == nil {
		t.Fatal("Do() error = nil, want terminal error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	// The cooldown never grows: it is not congestion backoff.
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want 2 entries", *sleeps)
	}
	for i, d := range *sleeps {
		if d != ex.QuotaCooldown {
			t.Errorf("sleeps[%d] = %v, want fixed cooldown %v", i, d, ex.QuotaCooldown)
		}
	}
}

func TestDo_QuotaDoesNotAdvanceBackoff(t *testing.T) {
	ex, sleeps := testExecutor(t)

	// Quota, then transient: the transient wait must still be the base
	// delay because the quota attempt does not touch the backoff counter.
	calls := 0
	_, err := Do(context.Background(), ex, "embed", func(context.Context) (int, error) {
		calls++
		switch calls {
		case 1:
			return 0, errQuota
		case 2:
			return 0, errTransient
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	want := []time.Duration{ex.QuotaCooldown, time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i := range want {
		if (*sleeps)[i] != want[i] {
			t.Errorf("sleeps[%d] = %v, want %v", i, (*sleeps)[i], want[i])
		}
	}
}

func TestDo_DelayCappedAtMaxDelay(t *testing.T) {
	ex, sleeps := testExecutor(t)
	ex.MaxAttempts = 10
	ex.BaseDelay = 16 * time.Second
	ex.MaxDelay = 60 * time.Second

	_, _ = Do(context.Background(), ex, "embed", func(context.Context) (int, error) {
		return 0, errTransient
	})

	// 16, 32, 60, 60, ...: doubling stops at the ceiling.
	for i, d := range *sleeps {
		if d > ex.MaxDelay {
			t.Errorf("sleeps[%d] = %v, exceeds max delay %v", i, d, ex.MaxDelay)
		}
	}
	if (*sleeps)[2] != 60*time.Second || (*sleeps)[3] != 60*time.Second {
		t.Errorf("sleeps = %v, want capped at 60s from the third wait", *sleeps)
	}
}

func TestDo_ContextCancelledDuringSleep(t *testing.T) {
	ex, _ := testExecutor(t)
	ex.Sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, ex, "embed", func(context.Context) (int, error) {
		calls++
		return 0, errTransient
	})
	if err == nil {
		t.Fatal("Do() error = nil, want context error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry after cancellation)", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want wrapped context.Canceled", err)
	}
}

func TestDefaultJitter_Range(t *testing.T) {
	base := 10 * time.Second
	for i := 0; i < 100; i++ {
		j := defaultJitter(base)
		if j < 0 || j >= time.Second {
			t.Fatalf("defaultJitter(%v) = %v, want in [0, 1s)", base, j)
		}
	}
}
