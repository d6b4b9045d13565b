package models

import (
	"time"

	"github.com/google/uuid"

	id "productverification/pkg/domain"
)

// Event names as they appear on the wire.
const (
	EventProductCreatedPendingVerification = "product.created_pending_verification"
	EventProductVerificationCompleted      = "product.verification_completed"
)

// DomainEvent is a fact about a product queued for delivery after commit.
type DomainEvent interface {
	EventID() string
	OccurredAt() time.Time
	EventName() string
	AggregateID() id.ProductID
}

// eventBase carries the fields shared by every event.
type eventBase struct {
	ID   string    `json:"event_id"`
	When time.Time `json:"occurred_at"`
}

func newEventBase(now time.Time) eventBase {
	return eventBase{ID: uuid.NewString(), When: now.UTC()}
}

func (b eventBase) EventID() string       { return b.ID }
func (b eventBase) OccurredAt() time.Time { return b.When }

type ProductCreatedPendingVerification struct {
	eventBase
	ProductID id.ProductID `json:"product_id"`
	Name      string       `json:"name"`
	Price     float64      `json:"price"`
	Currency  string       `json:"currency"`
}

func NewProductCreatedPendingVerification(p *Product, now time.Time) ProductCreatedPendingVerification {
	return ProductCreatedPendingVerification{
		eventBase: newEventBase(now),
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Currency:  p.Currency,
	}
}

func (ProductCreatedPendingVerification) EventName() string {
	return EventProductCreatedPendingVerification
}

func (e ProductCreatedPendingVerification) AggregateID() id.ProductID { return e.ProductID }

type ProductVerificationCompleted struct {
	eventBase
	ProductID id.ProductID `json:"product_id"`
	Status    Status       `json:"status"`
	Reasons   []string     `json:"reasons"`
}

func NewProductVerificationCompleted(p *Product, reasons []string, now time.Time) ProductVerificationCompleted {
	return ProductVerificationCompleted{
		eventBase: newEventBase(now),
		ProductID: p.ID,
		Status:    p.Status,
		Reasons:   append([]string{}, reasons...),
	}
}

func (ProductVerificationCompleted) EventName() string {
	return EventProductVerificationCompleted
}

func (e ProductVerificationCompleted) AggregateID() id.ProductID { return e.ProductID }
