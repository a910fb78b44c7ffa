// Package breaker implements the circuit breaker pattern around unreliable
// external dependencies.
//
// State flow:
//
//	CLOSED --(failures)--> OPEN --(timeout)--> HALF_OPEN --(successes)--> CLOSED
//	                                               |
//	                                            (failure)
//	                                               |
//	                                             OPEN
package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/finsight-ai/finsight/pkg/models"
)

// ErrOpen is returned when a call is rejected because the circuit is open.
// The wrapped operation was never invoked; callers should treat this as
// data-unavailable, not as a new failure of the dependency.
var ErrOpen = errors.New("circuit breaker is open")

// State is a circuit breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Config controls breaker thresholds.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit while closed.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive successes that closes
	// the circuit from half-open.
	SuccessThreshold int
	// Timeout is how long after the last failure an open circuit allows a
	// recovery probe.
	Timeout time.Duration
}

// DefaultConfig returns the thresholds used when none are configured.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          time.Minute,
	}
}

// Breaker isolates one named external dependency. All state is in-memory
// and guarded by a mutex; a breaker lives for the process lifetime.
type Breaker struct {
	name string
	cfg  Config

	mu            sync.Mutex
	state         State
	failureCount  int
	successCount  int
	lastFailure   time.Time
	lastSuccess   time.Time
	totalCalls    int64
	totalFailures int64
}

// New creates a Breaker in the closed state.
func New(name string, cfg Config) *Breaker {
	return &Breaker{name: name, cfg: cfg, state: StateClosed}
}

// Name returns the breaker's dependency name.
func (b *Breaker) Name() string { return b.name }

// Do runs fn through the breaker. While open, fn is not invoked and ErrOpen
// is returned, unless the timeout since the last failure has elapsed, in
// which case the breaker moves to half-open and attempts the call.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	b.totalCalls++

	if b.state == StateOpen {
		if !b.shouldAttemptReset() {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = StateHalfOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
		return err
	}
	b.onSuccess()
	return nil
}

// shouldAttemptReset reports whether enough time has passed since the last
// failure to probe for recovery. Caller holds the lock.
func (b *Breaker) shouldAttemptReset() bool {
	if b.lastFailure.IsZero() {
		return true
	}
	return time.Since(b.lastFailure) >= b.cfg.Timeout
}

func (b *Breaker) onSuccess() {
	b.lastSuccess = time.Now()

	if b.state == StateHalfOpen {
		b.successCount++
		if b.successCount >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
		}
		return
	}
	b.failureCount = 0
}

func (b *Breaker) onFailure() {
	b.lastFailure = time.Now()
	b.failureCount++
	b.totalFailures++

	if b.state == StateHalfOpen {
		// Failed during a recovery probe; no threshold in half-open.
		b.open()
	} else if b.failureCount >= b.cfg.FailureThreshold {
		b.open()
	}
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.successCount = 0
}

// Reset forces the breaker closed and zeroes the consecutive counters.
// Cumulative call/failure totals are reset-immune; they exist for
// observability and survive operator intervention.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Status returns a point-in-time snapshot for the health surface.
func (b *Breaker) Status() models.BreakerStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	successRate := 1.0
	if b.totalCalls > 0 {
		successRate = 1.0 - float64(b.totalFailures)/float64(b.totalCalls)
	}
	return models.BreakerStatus{
		Name:          b.name,
		State:         string(b.state),
		FailureCount:  b.failureCount,
		SuccessCount:  b.successCount,
		TotalCalls:    b.totalCalls,
		TotalFailures: b.totalFailures,
		SuccessRate:   successRate,
		LastFailure:   b.lastFailure,
		LastSuccess:   b.lastSuccess,
	}
}
