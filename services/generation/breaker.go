package generation

import (
	"fmt"
	"sync"
	"time"
)

// CircuitState represents the state of the circuit breaker.
//
// # States
//
//   - Closed: Normal operation, requests flow through
//   - Open: Circuit tripped, requests are rejected immediately
//   - HalfOpen: Testing if the upstream recovered, one trial allowed
//
// # State Diagram
//
//	   ┌─────────────────────────────────────┐
//	   │                                     │
//	   ▼                                     │
//	CLOSED ──[failure threshold]──► OPEN ───┘
//	   ▲                              │
//	   │                              │
//	   └───[success]◄── HALF_OPEN ◄──┘
//	                    [timeout]
type CircuitState int

const (
	// CircuitClosed is the normal operating state.
	CircuitClosed CircuitState = iota

	// CircuitOpen means the circuit has tripped and calls are rejected.
	CircuitOpen

	// CircuitHalfOpen means a single trial call is testing recovery.
	CircuitHalfOpen
)

// String returns a human-readable state name.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// FailureThreshold is consecutive failures before opening the circuit.
	// Default: DefaultFailureThreshold
	FailureThreshold int

	// OpenTimeout is how long to stay open before allowing a trial call.
	// Default: DefaultOpenTimeout
	OpenTimeout time.Duration

	// OnStateChange is called when the state transitions.
	// Called asynchronously to avoid blocking.
	OnStateChange func(from, to CircuitState)
}

// CircuitBreaker tracks consecutive upstream failures and short-circuits
// calls while the upstream is known to be degraded.
//
// Reaching the failure threshold opens the circuit; while open every call
// is rejected with ErrCircuitOpen and no network attempt is made. Once the
// open timeout elapses, exactly one trial call is let through (half-open):
// its success closes the circuit and zeroes the failure count, its failure
// re-opens the circuit and restarts the timeout.
//
// # Thread Safety
//
// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	config        CircuitBreakerConfig
	state         CircuitState
	failures      int
	openedAt      time.Time
	trialInFlight bool
	mu            sync.Mutex

	// now is swappable in tests.
	now func() time.Time
}

// NewCircuitBreaker creates a breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultFailureThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = DefaultOpenTimeout
	}
	return &CircuitBreaker{
		config: config,
		state:  CircuitClosed,
		now:    time.Now,
	}
}

// Allow reports whether a call may proceed right now.
//
// Returns nil when the call is admitted, ErrCircuitOpen otherwise. An
// admitted call must be followed by exactly one RecordSuccess or
// RecordFailure once its outcome is known.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil

	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) > cb.config.OpenTimeout {
			cb.transitionTo(CircuitHalfOpen)
			cb.trialInFlight = true
			return nil
		}
		return ErrCircuitOpen

	case CircuitHalfOpen:
		// One trial at a time.
		if cb.trialInFlight {
			return ErrCircuitOpen
		}
		cb.trialInFlight = true
		return nil

	default:
		return ErrCircuitOpen
	}
}

// RecordSuccess reports a successful upstream call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state == CircuitHalfOpen {
		cb.trialInFlight = false
		cb.transitionTo(CircuitClosed)
	}
}

// RecordFailure reports a failed upstream call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.openedAt = cb.now()
			cb.transitionTo(CircuitOpen)
		}
	case CircuitHalfOpen:
		// The trial failed; back to open with a fresh timeout.
		cb.trialInFlight = false
		cb.openedAt = cb.now()
		cb.transitionTo(CircuitOpen)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset forces the circuit to the closed state, clearing all counts.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.trialInFlight = false
	cb.transitionTo(CircuitClosed)
}

// transitionTo changes state and fires the callback. Caller holds cb.mu.
func (cb *CircuitBreaker) transitionTo(state CircuitState) {
	if cb.state == state {
		return
	}

	old := cb.state
	cb.state = state

	if cb.config.OnStateChange != nil {
		// Call without holding the lock to prevent deadlocks.
		go cb.config.OnStateChange(old, state)
	}
}
