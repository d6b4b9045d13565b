package events

import (
	"context"
	"sync"

	"productverification/internal/product/models"
)

// Recorder captures events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []models.DomainEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Handle(_ context.Context, e models.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []models.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.DomainEvent(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.EventName()
	}
	return names
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
