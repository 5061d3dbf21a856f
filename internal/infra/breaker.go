package infra

import (
	"errors"
	"sync"
	"time"
)

// ErrWebhookQuarantined is returned while the webhook endpoint is
// quarantined after repeated delivery failures.
var ErrWebhookQuarantined = errors.New("webhook en cuarentena por fallas consecutivas")

// BreakerState is reported by the health endpoint.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerTrial
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerTrial:
		return "trial"
	default:
		return "closed"
	}
}

// Breaker quarantines an endpoint after tripAfter consecutive delivery
// failures. While the quarantine window runs, every call is rejected with
// ErrWebhookQuarantined. Once it elapses exactly one trial delivery is let
// through: success lifts the quarantine, failure restarts the window.
type Breaker struct {
	tripAfter  int
	quarantine time.Duration

	mu            sync.Mutex
	failures      int
	rejectedUntil time.Time // zero while not quarantined
	trialInFlight bool
}

func NewBreaker(tripAfter int, quarantine time.Duration) *Breaker {
	if tripAfter <= 0 {
		tripAfter = 5
	}
	if quarantine <= 0 {
		quarantine = time.Minute
	}
	return &Breaker{tripAfter: tripAfter, quarantine: quarantine}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.trialInFlight:
		return BreakerTrial
	case b.rejectedUntil.IsZero():
		return BreakerClosed
	case time.Now().Before(b.rejectedUntil):
		return BreakerOpen
	default:
		// Window elapsed; the next delivery will be the trial.
		return BreakerTrial
	}
}

// Do runs one delivery attempt through the breaker.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if !b.rejectedUntil.IsZero() {
		if time.Now().Before(b.rejectedUntil) || b.trialInFlight {
			b.mu.Unlock()
			return ErrWebhookQuarantined
		}
		b.trialInFlight = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.trialInFlight || b.failures >= b.tripAfter {
			b.rejectedUntil = time.Now().Add(b.quarantine)
			b.failures = 0
		}
		b.trialInFlight = false
		return err
	}
	b.failures = 0
	b.rejectedUntil = time.Time{}
	b.trialInFlight = false
	return nil
}
