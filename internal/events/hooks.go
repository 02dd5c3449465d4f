package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Field filter names
const (
	FilterName    = "ml_subscription_name"
	FilterSurname = "ml_subscription_surname"
	FilterEmail   = "ml_subscription_email"
)

// FieldFilter rewrites one submitted field before it is persisted.
type FieldFilter func(value string) string

// SubscriptionCreated describes a persisted subscription.
type SubscriptionCreated struct {
	SubscriberID uuid.UUID `json:"subscriber_id"`
	ListID       uint      `json:"list_id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	IP           string    `json:"ip"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Listener interface {
	SubscriptionCreated(ctx context.Context, event SubscriptionCreated) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, event SubscriptionCreated) error

func (f ListenerFunc) SubscriptionCreated(ctx context.Context, event SubscriptionCreated) error {
	return f(ctx, event)
}

// Hooks holds the extension points around subscription persistence.
type Hooks struct {
	mu        sync.RWMutex
	filters   map[string][]FieldFilter
	listeners []Listener
	logger    *zap.Logger
}

func NewHooks(logger *zap.Logger) *Hooks {
	return &Hooks{
		filters: make(map[string][]FieldFilter),
		logger:  logger.Named("hooks"),
	}
}

func (h *Hooks) AddFilter(name string, filter FieldFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.filters[name] = append(h.filters[name], filter)
}

func (h *Hooks) AddListener(listener Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.listeners = append(h.listeners, listener)
}

// ApplyFilter runs the filters registered under name in registration order.
func (h *Hooks) ApplyFilter(name, value string) string {
	h.mu.RLock()
	filters := h.filters[name]
	h.mu.RUnlock()

	for _, filter := range filters {
		value = filter(value)
	}
	return value
}

// Created notifies every listener. Failures are logged and do not affect the subscription.
func (h *Hooks) Created(ctx context.Context, event SubscriptionCreated) {
	h.mu.RLock()
	listeners := h.listeners
	h.mu.RUnlock()

	for _, listener := range listeners {
		if err := listener.SubscriptionCreated(ctx, event); err != nil {
			h.logger.Warn("subscription listener failed",
				zap.Uint("list_id", event.ListID),
				zap.String("subscriber_id", event.SubscriberID.String()),
				zap.Error(err))
		}
	}
}
