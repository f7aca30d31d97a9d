//go:build !integration

package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDB = errors.New("connection reset")

func failing() error { return errDB }
func passing() error { return nil }

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// tripped returns an open breaker with a two failure threshold and a one minute timeout.
func tripped(t *testing.T, trials int) (*CircuitBreaker, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cb := New(Config{
		FailureThreshold: 2,
		SuccessThreshold: trials,
		Timeout:          time.Minute,
		Name:             "mongodb-chemicals",
		Clock:            c.now,
	})
	_ = cb.Execute(context.Background(), failing)
	_ = cb.Execute(context.Background(), failing)
	require.Equal(t, StateOpen, cb.State())
	return cb, c
}

func TestCircuitBreaker_Execute(t *testing.T) {
	tests := []struct {
		name      string
		calls     []func() error
		wantState State
		wantErr   error
	}{
		{"success keeps circuit closed", []func() error{passing}, StateClosed, nil},
		{"single failure below threshold", []func() error{failing}, StateClosed, errDB},
		{"threshold reached opens circuit", []func() error{failing, failing}, StateOpen, errDB},
		{"open circuit rejects calls", []func() error{failing, failing, passing}, StateOpen, ErrCircuitOpen},
		{"success resets the failure count", []func() error{failing, passing, failing}, StateClosed, errDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := New(Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute, Name: "mongodb-logs"})

			var err error
			for _, call := range tt.calls {
				err = cb.Execute(context.Background(), call)
			}

			assert.Equal(t, tt.wantState, cb.State())
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNew_RaisesThresholds(t *testing.T) {
	cb := New(Config{Name: "zero"})
	_ = cb.Execute(context.Background(), failing)
	assert.True(t, cb.IsOpen(), "a zero failure threshold behaves like one")
}

func TestCircuitBreaker_StaysOpenUntilTimeout(t *testing.T) {
	cb, c := tripped(t, 1)

	c.advance(time.Minute - time.Second)
	called := false
	err := cb.Execute(context.Background(), func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	c.advance(time.Second)
	require.NoError(t, cb.Execute(context.Background(), passing))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Recovery(t *testing.T) {
	cb, c := tripped(t, 2)
	c.advance(time.Minute)

	require.NoError(t, cb.Execute(context.Background(), passing))
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), passing))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Snapshot().Failures)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, c := tripped(t, 2)
	c.advance(time.Minute)

	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errDB)
	assert.Equal(t, StateOpen, cb.State())

	// the timeout starts over from the failed trial
	c.advance(30 * time.Second)
	assert.ErrorIs(t, cb.Execute(context.Background(), passing), ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenLimitsTrials(t *testing.T) {
	cb, c := tripped(t, 1)
	c.advance(time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(context.Background(), func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	assert.ErrorIs(t, cb.Execute(context.Background(), passing), ErrCircuitOpen,
		"a second caller waits for the trial in flight")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IgnoresResultsFromEarlierState(t *testing.T) {
	c := &clock{t: time.Now()}
	cb := New(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute, Name: "mongodb-regulations", Clock: c.now})

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(context.Background(), func() error {
			close(entered)
			<-release
			return errDB
		})
	}()
	<-entered

	_ = cb.Execute(context.Background(), failing)
	require.True(t, cb.IsOpen())
	c.advance(time.Minute)
	require.NoError(t, cb.Execute(context.Background(), passing))
	require.Equal(t, StateClosed, cb.State())

	// the slow call started before the circuit opened and must not reopen it
	close(release)
	assert.ErrorIs(t, <-done, errDB)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IsFailure(t *testing.T) {
	errNotFound := errors.New("not found")
	cb := New(Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             "mongodb-chemicals",
		IsFailure:        func(err error) bool { return !errors.Is(err, errNotFound) },
	})

	err := cb.Execute(context.Background(), func() error { return errNotFound })
	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(context.Background(), failing)
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_CanceledContext(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute, Name: "mongodb-logs"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := cb.Execute(ctx, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)

	// cancellation inside fn does not count as a failure either
	err = cb.Execute(context.Background(), func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCall(t *testing.T) {
	cb := New(DefaultConfig())

	n, err := Call(context.Background(), cb, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = Call(context.Background(), cb, func() (string, error) { return "", errDB })
	assert.ErrorIs(t, err, errDB)
}

func TestCircuitBreaker_Snapshot(t *testing.T) {
	cb, _ := tripped(t, 1)

	stats := cb.Snapshot()
	assert.Equal(t, "mongodb-chemicals", stats.Name)
	assert.Equal(t, "open", stats.State)
	assert.False(t, stats.IsHealthy)
	assert.Equal(t, 2, stats.Failures)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), stats.LastFailure)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
