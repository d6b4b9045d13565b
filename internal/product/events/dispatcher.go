// Package events delivers product domain events to listeners after commit.
//
// Delivery is synchronous, in call order, in-process and best-effort: a
// listener failure does not stop delivery to the remaining listeners, and
// failures are joined into the returned error.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"productverification/internal/product/models"
)

// Dispatcher delivers domain events.
type Dispatcher interface {
	Dispatch(ctx context.Context, e models.DomainEvent) error
	DispatchAll(ctx context.Context, es []models.DomainEvent) error
}

// Listener receives dispatched events.
type Listener interface {
	Handle(ctx context.Context, e models.DomainEvent) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, e models.DomainEvent) error

func (f ListenerFunc) Handle(ctx context.Context, e models.DomainEvent) error {
	return f(ctx, e)
}

// Bus fans events out to its listeners.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewBus(listeners ...Listener) *Bus {
	return &Bus{listeners: listeners}
}

// Subscribe adds a listener. Listeners run in subscription order.
func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Bus) Dispatch(ctx context.Context, e models.DomainEvent) error {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners...)
	b.mu.RUnlock()

	var errs []error
	for _, l := range listeners {
		if err := l.Handle(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", e.EventName(), e.EventID(), err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) DispatchAll(ctx context.Context, es []models.DomainEvent) error {
	var errs []error
	for _, e := range es {
		if err := b.Dispatch(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
