package poller

import (
	"errors"
	"sync"
	"time"
)

// State is the circuit breaker state
type State int

const (
	StateClosed   State = iota // polls go through
	StateOpen                  // polls are skipped
	StateHalfOpen              // a limited number of probe polls go through
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerConfig configures a Breaker
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that open the breaker
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes that close it again
	SuccessThreshold int
	// Timeout is how long the breaker stays open before probing
	Timeout time.Duration
	// HalfOpenMaxRequests caps concurrent probes
	HalfOpenMaxRequests int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

// Breaker stops a poller from hammering a backend that keeps failing.
type Breaker struct {
	config BreakerConfig
	now    func() time.Time

	mu            sync.Mutex
	state         State
	failureCount  int
	successCount  int
	halfOpenCount int
	lastStateTime time.Time
}

func NewBreaker(config BreakerConfig) *Breaker {
	return &Breaker{
		config:        config,
		now:           time.Now,
		state:         StateClosed,
		lastStateTime: time.Now(),
	}
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	b.checkStateTransition()

	switch b.state {
	case StateOpen:
		b.mu.Unlock()
		return ErrBreakerOpen
	case StateHalfOpen:
		if b.halfOpenCount >= b.config.HalfOpenMaxRequests {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.halfOpenCount++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) checkStateTransition() {
	now := b.now()
	switch b.state {
	case StateOpen:
		if now.Sub(b.lastStateTime) >= b.config.Timeout {
			b.setState(StateHalfOpen, now)
		}
	case StateHalfOpen:
		if b.successCount >= b.config.SuccessThreshold {
			b.setState(StateClosed, now)
		}
	}
}

func (b *Breaker) onFailure() {
	b.failureCount++
	switch b.state {
	case StateHalfOpen:
		b.setState(StateOpen, b.now())
	case StateClosed:
		if b.failureCount >= b.config.FailureThreshold {
			b.setState(StateOpen, b.now())
		}
	}
}

func (b *Breaker) onSuccess() {
	b.failureCount = 0
	if b.state == StateHalfOpen {
		b.successCount++
		b.halfOpenCount--
		if b.successCount >= b.config.SuccessThreshold {
			b.setState(StateClosed, b.now())
		}
	}
}

// setState must be called with mu held.
func (b *Breaker) setState(state State, at time.Time) {
	b.state = state
	b.lastStateTime = at
	b.halfOpenCount = 0
	b.successCount = 0
	if state == StateClosed {
		b.failureCount = 0
	}
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
