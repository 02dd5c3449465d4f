package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/metrics"
)

// ErrCircuitOpen is returned without contacting the provider while the breaker is open.
var ErrCircuitOpen = errors.New("mail circuit breaker is open")

type BreakerState int

const (
	// BreakerClosed passes every send through
	BreakerClosed BreakerState = iota

	// BreakerOpen fails sends immediately
	BreakerOpen

	// BreakerHalfOpen lets one probe through
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type BreakerConfig struct {
	MaxFailures int           // Default: 5
	Timeout     time.Duration // Default: 30 seconds
}

// GuardedTransport stops hammering a provider that keeps failing.
// After MaxFailures consecutive failures it fails fast for Timeout, then lets a single probe through.
// Other sends fail fast while the probe is in flight.
// Sends are never retried.
type GuardedTransport struct {
	inner    Transport
	provider string

	mu              sync.Mutex
	state           BreakerState
	failures        int
	lastFailureTime time.Time

	maxFailures int
	timeout     time.Duration
	now         func() time.Time
}

func NewGuardedTransport(provider string, inner Transport, cfg BreakerConfig) *GuardedTransport {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &GuardedTransport{
		inner:       inner,
		provider:    provider,
		state:       BreakerClosed,
		maxFailures: cfg.MaxFailures,
		timeout:     cfg.Timeout,
		now:         time.Now,
	}
}

func (g *GuardedTransport) Send(ctx context.Context, msg Message) error {
	g.mu.Lock()
	switch g.state {
	case BreakerOpen:
		if g.now().Sub(g.lastFailureTime) <= g.timeout {
			g.mu.Unlock()
			return g.rejectOpen()
		}
		g.state = BreakerHalfOpen
	case BreakerHalfOpen:
		// A probe is already in flight
		g.mu.Unlock()
		return g.rejectOpen()
	}
	g.mu.Unlock()

	err := g.inner.Send(ctx, msg)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		metrics.MailSends.WithLabelValues(g.provider, "failed").Inc()
		g.failures++
		g.lastFailureTime = g.now()
		if g.state == BreakerHalfOpen || g.failures >= g.maxFailures {
			g.state = BreakerOpen
		}
		return err
	}

	metrics.MailSends.WithLabelValues(g.provider, "sent").Inc()
	g.state = BreakerClosed
	g.failures = 0
	return nil
}

func (g *GuardedTransport) rejectOpen() error {
	metrics.MailSends.WithLabelValues(g.provider, "circuit_open").Inc()
	return ErrCircuitOpen
}

func (g *GuardedTransport) State() BreakerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
