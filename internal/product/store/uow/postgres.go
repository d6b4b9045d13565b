package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"productverification/internal/product/service"
	"productverification/internal/product/store/product"
	dErrors "productverification/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// Postgres opens a database transaction per unit. The product handle is
// bound to that transaction; the audit handle is shared and commits on its own.
type Postgres struct {
	db            *sql.DB
	verifications service.VerificationStore
	timeout       time.Duration
	logger        *slog.Logger
}

type PostgresOption func(*Postgres)

// WithTimeout bounds transactions whose context carries no deadline.
func WithTimeout(d time.Duration) PostgresOption {
	return func(p *Postgres) {
		p.timeout = d
	}
}

func WithLogger(logger *slog.Logger) PostgresOption {
	return func(p *Postgres) {
		p.logger = logger
	}
}

func NewPostgres(db *sql.DB, verifications service.VerificationStore, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, verifications: verifications, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Postgres) Begin(ctx context.Context) (UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	cancel := context.CancelFunc(func() {})
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && p.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &postgresUnit{
		tx:            tx,
		cancel:        cancel,
		products:      product.NewPostgres(tx),
		verifications: p.verifications,
		logger:        p.logger,
	}, nil
}

type postgresUnit struct {
	mu            sync.Mutex
	tx            *sql.Tx
	cancel        context.CancelFunc
	products      *product.PostgresStore
	verifications service.VerificationStore
	logger        *slog.Logger
	closed        bool
}

func (u *postgresUnit) Products() service.ProductStore           { return u.products }
func (u *postgresUnit) Verifications() service.VerificationStore { return u.verifications }

func (u *postgresUnit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrClosed
	}
	u.closed = true
	defer u.cancel()

	if err := u.tx.Commit(); err != nil {
		if rbErr := u.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && u.logger != nil {
			u.logger.ErrorContext(ctx, "rollback after failed commit", "error", rbErr)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (u *postgresUnit) Rollback(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	defer u.cancel()

	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
