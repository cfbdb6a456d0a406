package circuitbreaker

import (
	"testing"
	"time"
)

func TestTripsOpenAfterFailureThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, 1, time.Minute)

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		if cb.GetState() != StateClosed {
			t.Fatalf("breaker tripped early after %d failures", i+1)
		}
	}

	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after threshold, got %v", cb.GetState())
	}
	if cb.AllowRequest() {
		t.Fatalf("open breaker must reject requests before timeout")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(2, 1, time.Minute)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()

	if cb.GetState() != StateClosed {
		t.Fatalf("interleaved success must reset the failure count")
	}
}

func TestHalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, 20*time.Millisecond)

	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open, got %v", cb.GetState())
	}

	time.Sleep(30 * time.Millisecond)
	if !cb.AllowRequest() {
		t.Fatalf("expected a probe request after the timeout")
	}
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("expected half-open, got %v", cb.GetState())
	}

	cb.RecordSuccess()
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %v", cb.GetState())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, 20*time.Millisecond)

	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)
	if !cb.AllowRequest() {
		t.Fatalf("expected a probe request after the timeout")
	}

	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected reopen after failed probe, got %v", cb.GetState())
	}
}

func TestStateChangeCallback(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, time.Minute)

	var from, to State
	cb.SetStateChangeCallback(func(f, tt State) { from, to = f, tt })

	cb.RecordFailure()
	if from != StateClosed || to != StateOpen {
		t.Fatalf("expected closed->open callback, got %v->%v", from, to)
	}
}
