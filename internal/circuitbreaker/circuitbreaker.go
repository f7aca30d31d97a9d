// Package circuitbreaker guards MongoDB calls so that a failing database degrades the
// reference catalog and the history instead of stalling every request.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/compliance-track/internal/metrics"
)

// ErrCircuitOpen is returned instead of calling through an open breaker, or a half-open
// one that already has its trial calls in flight.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of a breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Config tunes a breaker. FailureThreshold consecutive failures open it; after Timeout
// it lets up to SuccessThreshold trial calls through, and closes once they all succeed.
type Config struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
	// Name labels logs and the state gauge.
	Name string
	// IsFailure decides which errors count against the circuit. Nil counts every error
	// except context cancellation.
	IsFailure func(error) bool
	Clock     func() time.Time
}

// DefaultConfig is the breaker used for a MongoDB collection.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Name:             "mongodb",
	}
}

func countsAsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// CircuitBreaker tracks consecutive failures of a dependency.
type CircuitBreaker struct {
	cfg Config

	mu    sync.Mutex
	state State
	// generation changes on every transition; results of calls started in an older
	// generation are ignored
	generation  uint64
	failures    int
	successes   int
	inFlight    int
	openedAt    time.Time
	lastFailure time.Time
}

// New creates a closed breaker. Thresholds below one are raised to one.
func New(cfg Config) *CircuitBreaker {
	cfg.FailureThreshold = max(cfg.FailureThreshold, 1)
	cfg.SuccessThreshold = max(cfg.SuccessThreshold, 1)
	if cfg.IsFailure == nil {
		cfg.IsFailure = countsAsFailure
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	metrics.SetCircuitBreakerState(cfg.Name, int(StateClosed))
	return &CircuitBreaker{cfg: cfg}
}

// Name returns the configured name.
func (cb *CircuitBreaker) Name() string {
	return cb.cfg.Name
}

// Execute runs fn unless the breaker rejects the call with ErrCircuitOpen. Errors rejected
// by Config.IsFailure are returned without affecting the circuit.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	generation, err := cb.admit()
	if err != nil {
		return err
	}
	err = fn()
	cb.settle(generation, err == nil || !cb.cfg.IsFailure(err))
	return err
}

// Call runs fn through the breaker and returns its value.
func Call[T any](ctx context.Context, cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var result T
	err := cb.Execute(ctx, func() error {
		var callErr error
		result, callErr = fn()
		return callErr
	})
	return result, err
}

func (cb *CircuitBreaker) admit() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.cfg.Clock()
	if cb.state == StateOpen {
		if now.Sub(cb.openedAt) < cb.cfg.Timeout {
			return 0, ErrCircuitOpen
		}
		cb.moveTo(StateHalfOpen, now)
	}
	if cb.state == StateHalfOpen {
		if cb.inFlight >= cb.cfg.SuccessThreshold {
			return 0, ErrCircuitOpen
		}
		cb.inFlight++
	}
	return cb.generation, nil
}

func (cb *CircuitBreaker) settle(generation uint64, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if generation != cb.generation {
		return
	}
	now := cb.cfg.Clock()
	if cb.state == StateHalfOpen {
		cb.inFlight--
	}

	if !ok {
		cb.failures++
		cb.lastFailure = now
		if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.moveTo(StateOpen, now)
		}
		return
	}

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.moveTo(StateClosed, now)
		}
	}
}

// moveTo starts a new generation in state to. Callers hold cb.mu.
func (cb *CircuitBreaker) moveTo(to State, now time.Time) {
	from := cb.state
	cb.state = to
	cb.generation++
	cb.successes, cb.inFlight = 0, 0
	switch to {
	case StateOpen:
		cb.openedAt = now
	case StateClosed:
		cb.failures = 0
	}
	metrics.SetCircuitBreakerState(cb.cfg.Name, int(to))

	event := log.Info()
	if to == StateOpen {
		event = log.Warn().Int("failures", cb.failures)
	}
	event.Str("circuit_breaker", cb.cfg.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("circuit breaker state changed")
}

// State reports the current state. An open breaker whose timeout elapsed stays open
// until the next call.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// IsOpen reports whether calls are currently rejected outright.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// Stats is a point-in-time view of a breaker.
type Stats struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	Successes   int       `json:"successes"`
	LastFailure time.Time `json:"last_failure,omitzero"`
	IsHealthy   bool      `json:"healthy"`
}

// Snapshot returns the current counters.
func (cb *CircuitBreaker) Snapshot() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Stats{
		Name:        cb.cfg.Name,
		State:       cb.state.String(),
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
		IsHealthy:   cb.state == StateClosed,
	}
}
