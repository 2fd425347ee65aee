package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream failure")

func tripped(t *testing.T, cb *CircuitBreaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("management.azure.com"))
	if cb.State() != StateClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
	called := false
	if err := cb.Execute(func() error { called = true; return nil }); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("function was not called")
	}
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute})
	tripped(t, cb, 3)

	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}
	err := cb.Execute(func() error {
		t.Error("function should not run while open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3})
	tripped(t, cb, 2)
	_ = cb.Execute(func() error { return nil })
	if cb.Failures() != 0 {
		t.Errorf("expected failures reset, got %d", cb.Failures())
	}
	tripped(t, cb, 2)
	if cb.State() != StateClosed {
		t.Errorf("non-consecutive failures should not open the circuit, got %s", cb.State())
	}
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	clientErr := errors.New("404")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return !errors.Is(err, clientErr) },
	})

	err := cb.Execute(func() error { return clientErr })
	if !errors.Is(err, clientErr) {
		t.Errorf("error should be passed through, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("filtered errors must not open the circuit, got %s", cb.State())
	}

	tripped(t, cb, 1)
	if cb.State() != StateOpen {
		t.Errorf("expected open after counted failure, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: 20 * time.Millisecond})
	tripped(t, cb, 1)

	time.Sleep(30 * time.Millisecond)
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe should be admitted, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("expected closed after successful probe, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: 20 * time.Millisecond})
	tripped(t, cb, 1)
	time.Sleep(30 * time.Millisecond)

	tripped(t, cb, 1)
	if cb.State() != StateOpen {
		t.Errorf("expected open after failed probe, got %s", cb.State())
	}
}

func TestCircuitBreaker_ResetAndCallback(t *testing.T) {
	var mu sync.Mutex
	var transitions []State
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "eastus.management.azure.com",
		MaxFailures: 1,
		OnStateChange: func(name string, from, to State) {
			mu.Lock()
			transitions = append(transitions, to)
			mu.Unlock()
		},
	})
	tripped(t, cb, 1)
	cb.Reset()

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 2 || transitions[0] != StateOpen || transitions[1] != StateClosed {
		t.Errorf("expected [open closed], got %v", transitions)
	}
}

func TestCircuitBreakers_PerKey(t *testing.T) {
	set := NewCircuitBreakers(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute})

	a := set.Get("westeurope.management.azure.com")
	if set.Get("westeurope.management.azure.com") != a {
		t.Fatal("expected the same breaker for the same key")
	}
	tripped(t, a, 1)

	b := set.Get("management.azure.com")
	if b.State() != StateClosed {
		t.Errorf("breaker for another host should be unaffected, got %s", b.State())
	}
	if a.State() != StateOpen {
		t.Errorf("expected open breaker for failing host, got %s", a.State())
	}
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1000})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cb.Execute(func() error {
				if i%2 == 0 {
					return errUpstream
				}
				return nil
			})
			_ = cb.State()
		}(i)
	}
	wg.Wait()
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(42):     "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("expected %q, got %q", want, s.String())
		}
	}
}
