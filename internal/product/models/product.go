package models

import (
	"fmt"
	"time"

	id "productverification/pkg/domain"
	dErrors "productverification/pkg/domain-errors"
)

// Fields are the caller-supplied attributes of a product.
// Nothing here is validated at construction; the verification policy judges them later.
type Fields struct {
	Name          string
	Price         float64
	Currency      string
	Category      string
	StockQuantity int
	Assets        []string
}

// Product is the aggregate root for the verification lifecycle.
//
// Invariants:
//   - ID is immutable after construction
//   - Status starts at pending_verification
//   - Status transitions: pending_verification -> active | rejected only
//   - UpdatedAt changes exactly when Status changes
//   - the domain event queue is transient and never persisted
type Product struct {
	ID            id.ProductID `json:"product_id"`
	Name          string       `json:"name"`
	Price         float64      `json:"price"`
	Currency      string       `json:"currency"`
	Category      string       `json:"category"`
	StockQuantity int          `json:"stock_quantity"`
	Assets        []string     `json:"assets"`
	Status        Status       `json:"status"`
	Version       int          `json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	events []DomainEvent
}

// NewProduct builds a pending product. Timestamps are normalized by stamp.
func NewProduct(productID id.ProductID, f Fields, now time.Time) *Product {
	now = stamp(now)
	return &Product{
		ID:            productID,
		Name:          f.Name,
		Price:         f.Price,
		Currency:      f.Currency,
		Category:      f.Category,
		StockQuantity: f.StockQuantity,
		Assets:        append([]string(nil), f.Assets...),
		Status:        StatusPendingVerification,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Fields returns the attributes the policy evaluates.
func (p *Product) Fields() Fields {
	return Fields{
		Name:          p.Name,
		Price:         p.Price,
		Currency:      p.Currency,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		Assets:        append([]string(nil), p.Assets...),
	}
}

func (p *Product) IsPending() bool {
	return p.Status == StatusPendingVerification
}

// TransitionToActive moves a pending product to active.
func (p *Product) TransitionToActive(now time.Time) error {
	return p.transition(StatusActive, now)
}

// TransitionToRejected moves a pending product to rejected.
func (p *Product) TransitionToRejected(now time.Time) error {
	return p.transition(StatusRejected, now)
}

func (p *Product) transition(target Status, now time.Time) error {
	if !p.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			fmt.Sprintf("cannot transition product from %s to %s", p.Status, target))
	}
	p.Status = target
	p.UpdatedAt = stamp(now)
	return nil
}

// stamp normalizes entity timestamps to UTC at microsecond precision, the
// resolution of a TIMESTAMPTZ column, so a stored product reads back equal.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// AddDomainEvent appends e to the pending event queue.
func (p *Product) AddDomainEvent(e DomainEvent) {
	p.events = append(p.events, e)
}

// DomainEvents returns a copy of the queued events in insertion order.
func (p *Product) DomainEvents() []DomainEvent {
	if len(p.events) == 0 {
		return nil
	}
	out := make([]DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *Product) ClearDomainEvents() {
	p.events = nil
}

// DrainDomainEvents returns the queued events and empties the queue.
func (p *Product) DrainDomainEvents() []DomainEvent {
	out := p.DomainEvents()
	p.ClearDomainEvents()
	return out
}

// Clone returns a deep copy without the event queue. Stores hand out clones
// so callers never alias stored state.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Assets = append([]string(nil), p.Assets...)
	c.events = nil
	return &c
}
