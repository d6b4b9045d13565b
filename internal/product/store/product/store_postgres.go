package product

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"productverification/internal/product/models"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
)

//go:embed schema.sql
var Schema string

const uniqueViolation = "23505"

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists products in PostgreSQL. Bound to a *sql.Tx it
// participates in the caller's transaction.
type PostgresStore struct {
	db DBTX
}

// NewPostgres constructs a PostgreSQL-backed product store.
func NewPostgres(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the products table when missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure products schema: %w", err)
	}
	return nil
}

const insertProduct = `
INSERT INTO products (id, name, price, currency, category, stock_quantity, assets, status, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (s *PostgresStore) Save(ctx context.Context, p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is required")
	}
	_, err := s.db.ExecContext(ctx, insertProduct,
		p.ID.String(), p.Name, p.Price, p.Currency, p.Category, p.StockQuantity,
		pq.Array(assetsOrEmpty(p.Assets)), string(p.Status), p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("save product %s: %w", p.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

const selectProduct = `
SELECT id, name, price, currency, category, stock_quantity, assets, status, version, created_at, updated_at
FROM products WHERE id = $1`

func (s *PostgresStore) FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	var (
		p      models.Product
		rawID  string
		status string
		assets []string
	)
	err := s.db.QueryRowContext(ctx, selectProduct, productID.String()).Scan(
		&rawID, &p.Name, &p.Price, &p.Currency, &p.Category, &p.StockQuantity,
		pq.Array(&assets), &status, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	p.ID = id.ProductID(rawID)
	p.Status = models.Status(status)
	p.Assets = assetsOrEmpty(assets)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

const updateProduct = `
UPDATE products
SET name = $2, price = $3, currency = $4, category = $5, stock_quantity = $6,
    assets = $7, status = $8, updated_at = $9, version = version + 1
WHERE id = $1 AND version = $10`

const productExists = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

// Update writes p when the stored version equals p.Version, then advances p.Version.
func (s *PostgresStore) Update(ctx context.Context, p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is required")
	}
	res, err := s.db.ExecContext(ctx, updateProduct,
		p.ID.String(), p.Name, p.Price, p.Currency, p.Category, p.StockQuantity,
		pq.Array(assetsOrEmpty(p.Assets)), string(p.Status), p.UpdatedAt, p.Version,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, productExists, p.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("product %s version %d: %w", p.ID, p.Version, sentinel.ErrConflict)
	}
	p.Version++
	return nil
}

func assetsOrEmpty(assets []string) []string {
	if assets == nil {
		return []string{}
	}
	return assets
}
