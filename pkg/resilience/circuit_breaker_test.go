package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NicoQuitService/pkg/apperrors"

	"go.uber.org/zap"
)

// fakeClock управляемое время для тестов
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(threshold int, reset time.Duration, ignored ...error) (*CircuitBreaker, *fakeClock, *[]CircuitState) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	var transitions []CircuitState

	cb := NewCircuitBreaker(BreakerSettings{
		Name:             "test",
		FailureThreshold: threshold,
		ResetTimeout:     reset,
		IgnoredErrors:    ignored,
		OnStateChange: func(name string, from, to CircuitState) {
			transitions = append(transitions, to)
		},
	}, zap.NewNop())
	cb.now = clock.Now
	cb.lastStateChange = clock.Now()

	return cb, clock, &transitions
}

func TestCircuitBreaker_States(t *testing.T) {
	cb, clock, transitions := newTestBreaker(3, 30*time.Second)
	ctx := context.Background()
	testErr := errors.New("connection refused")

	if cb.GetState() != CircuitClosed {
		t.Fatalf("Expected initial state CLOSED, got %v", cb.GetState())
	}

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, "op", func(ctx context.Context) error { return testErr }); !errors.Is(err, testErr) {
			t.Errorf("Expected test error, got %v", err)
		}
	}

	if cb.GetState() != CircuitOpen {
		t.Fatalf("Expected OPEN after 3 failures, got %v", cb.GetState())
	}

	called := false
	err := cb.Execute(ctx, "op", func(ctx context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Error("Operation was called when circuit is open")
	}
	if !errors.Is(err, apperrors.ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}

	clock.Advance(31 * time.Second)

	if err := cb.Execute(ctx, "op", func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("Expected probe to succeed, got %v", err)
	}
	if cb.GetState() != CircuitClosed {
		t.Errorf("Expected CLOSED after successful probe, got %v", cb.GetState())
	}

	want := []CircuitState{CircuitOpen, CircuitHalfOpen, CircuitClosed}
	if len(*transitions) != len(want) {
		t.Fatalf("Expected transitions %v, got %v", want, *transitions)
	}
	for i := range want {
		if (*transitions)[i] != want[i] {
			t.Errorf("Transition %d: expected %v, got %v", i, want[i], (*transitions)[i])
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, clock, _ := newTestBreaker(1, time.Second)
	ctx := context.Background()

	_ = cb.Execute(ctx, "op", func(ctx context.Context) error { return errors.New("down") })
	clock.Advance(2 * time.Second)
	_ = cb.Execute(ctx, "op", func(ctx context.Context) error { return errors.New("still down") })

	if cb.GetState() != CircuitOpen {
		t.Errorf("Expected OPEN after failed probe, got %v", cb.GetState())
	}
}

func TestCircuitBreaker_HalfOpenAllowsSingleProbe(t *testing.T) {
	cb, clock, _ := newTestBreaker(1, time.Second)
	ctx := context.Background()

	_ = cb.Execute(ctx, "op", func(ctx context.Context) error { return errors.New("down") })
	clock.Advance(2 * time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)

	go func() {
		done <- cb.Execute(ctx, "probe", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := cb.Execute(ctx, "second", func(ctx context.Context) error { return nil }); !errors.Is(err, apperrors.ErrCircuitOpen) {
		t.Errorf("Expected second request to be rejected while probing, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("Probe failed: %v", err)
	}
	if cb.GetState() != CircuitClosed {
		t.Errorf("Expected CLOSED, got %v", cb.GetState())
	}
}

func TestCircuitBreaker_IgnoredErrors(t *testing.T) {
	cb, _, _ := newTestBreaker(1, time.Second, apperrors.ErrRecordNotFound)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = cb.Execute(ctx, "get", func(ctx context.Context) error { return apperrors.ErrRecordNotFound })
	}
	_ = cb.Execute(ctx, "get", func(ctx context.Context) error { return context.Canceled })

	if cb.GetState() != CircuitClosed {
		t.Errorf("Ignored errors must not open the circuit, got %v", cb.GetState())
	}
}

func TestCircuitBreaker_Concurrency(t *testing.T) {
	cb, _, _ := newTestBreaker(5, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = cb.Execute(ctx, "concurrent", func(ctx context.Context) error {
					return errors.New("deliberate test error")
				})
			}
		}()
	}
	wg.Wait()

	if cb.GetState() != CircuitOpen {
		t.Errorf("Expected OPEN after concurrent failures, got %v", cb.GetState())
	}
}

func TestCircuitBreaker_ZeroThresholdOpensOnFirstFailure(t *testing.T) {
	cb, _, _ := newTestBreaker(0, time.Second)

	_ = cb.Execute(context.Background(), "op", func(ctx context.Context) error { return errors.New("boom") })

	if cb.GetState() != CircuitOpen {
		t.Errorf("Expected OPEN, got %v", cb.GetState())
	}
}
