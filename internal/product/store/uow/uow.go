// Package uow scopes one use case's writes.
//
// Entity writes made through Products() are transactional: they become
// durable on Commit and are discarded on Rollback. Writes made through
// Verifications() go to the audit store, which is independent and commits
// each write immediately. A rolled back unit can therefore leave an audit
// record with no matching entity change; that gap is accepted.
package uow

import (
	"context"
	"errors"

	"productverification/internal/product/service"
)

// ErrClosed is returned when a unit is used after Commit or Rollback.
var ErrClosed = errors.New("unit of work already closed")

// UnitOfWork bundles the repository handles of one request.
// Rollback after a successful Commit is a no-op, so callers may defer it.
type UnitOfWork interface {
	Products() service.ProductStore
	Verifications() service.VerificationStore
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory opens a new unit per request. Units are never shared.
type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
