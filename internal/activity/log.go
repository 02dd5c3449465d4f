package activity

import (
	"context"
	"fmt"
	"sync"
)

// OptionStore persists one serialized value per name.
type OptionStore interface {
	Get(ctx context.Context, name string, dst interface{}) (bool, error)
	Set(ctx context.Context, name string, value interface{}) error
}

// BoundedLog is an append-only array stored as a single option.
// Once it holds capacity entries, appending drops the oldest.
//
// The mutex serializes read-modify-write cycles within one process only.
type BoundedLog[T any] struct {
	store    OptionStore
	name     string
	capacity int
	mu       sync.Mutex
}

func NewBoundedLog[T any](store OptionStore, name string, capacity int) *BoundedLog[T] {
	return &BoundedLog[T]{
		store:    store,
		name:     name,
		capacity: capacity,
	}
}

func (l *BoundedLog[T]) Append(ctx context.Context, entry T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if over := len(entries) - l.capacity; over > 0 {
		entries = entries[over:]
	}

	if err := l.store.Set(ctx, l.name, entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", l.name, err)
	}

	return nil
}

// All returns every entry, oldest first.
func (l *BoundedLog[T]) All(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.load(ctx)
}

// Recent returns up to limit entries, newest first.
func (l *BoundedLog[T]) Recent(ctx context.Context, limit int) ([]T, error) {
	entries, err := l.All(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	recent := make([]T, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, entries[i])
	}

	return recent, nil
}

func (l *BoundedLog[T]) Capacity() int {
	return l.capacity
}

func (l *BoundedLog[T]) load(ctx context.Context) ([]T, error) {
	var entries []T
	if _, err := l.store.Get(ctx, l.name, &entries); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.name, err)
	}
	return entries, nil
}
