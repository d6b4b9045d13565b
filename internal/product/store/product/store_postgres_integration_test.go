//go:build integration

package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"productverification/internal/product/models"
	"productverification/internal/product/store/product"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
	"productverification/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *product.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(product.EnsureSchema(context.Background(), s.postgres.DB))
	s.store = product.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "products"))
}

func (s *PostgresStoreSuite) newProduct() *models.Product {
	return models.NewProduct(id.NewProductID(), models.Fields{
		Name:          "iPhone 15",
		Price:         999.99,
		Currency:      "USD",
		Category:      "Electronics",
		StockQuantity: 50,
		Assets:        []string{"image1.jpg", "image2.jpg"},
	}, time.Now())
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	p := s.newProduct()
	s.Require().NoError(s.store.Save(ctx, p))

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)
	s.Equal(p.Assets, found.Assets)
	s.Equal(models.StatusPendingVerification, found.Status)
	s.True(p.CreatedAt.Equal(found.CreatedAt))
	s.Equal(time.UTC, found.CreatedAt.Location())
}

func (s *PostgresStoreSuite) TestTimestampsReadBackUnchanged() {
	ctx := context.Background()
	created := time.Date(2026, 4, 1, 8, 30, 0, 123456789, time.UTC)
	p := models.NewProduct(id.NewProductID(), models.Fields{Name: "Lamp", Price: 10, Currency: "EUR"}, created)
	s.Require().NoError(s.store.Save(ctx, p))

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.True(p.CreatedAt.Equal(found.CreatedAt), "created_at %s != %s", p.CreatedAt, found.CreatedAt)
	s.True(p.UpdatedAt.Equal(found.UpdatedAt), "updated_at %s != %s", p.UpdatedAt, found.UpdatedAt)

	s.Require().NoError(found.TransitionToActive(created.Add(987654321 * time.Nanosecond)))
	s.Require().NoError(s.store.Update(ctx, found))

	updated, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.True(found.UpdatedAt.Equal(updated.UpdatedAt), "updated_at %s != %s", found.UpdatedAt, updated.UpdatedAt)
	s.True(p.CreatedAt.Equal(updated.CreatedAt))
}

func (s *PostgresStoreSuite) TestEmptyAssets() {
	ctx := context.Background()
	p := models.NewProduct(id.NewProductID(), models.Fields{Price: -10, StockQuantity: -5}, time.Now())
	s.Require().NoError(s.store.Save(ctx, p))

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(found.Assets)
}

func (s *PostgresStoreSuite) TestDuplicateSave() {
	ctx := context.Background()
	p := s.newProduct()
	s.Require().NoError(s.store.Save(ctx, p))
	s.ErrorIs(s.store.Save(ctx, p), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(context.Background(), "nonexistent-id")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(context.Background(), s.newProduct()), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestOptimisticUpdate() {
	ctx := context.Background()
	p := s.newProduct()
	s.Require().NoError(s.store.Save(ctx, p))

	first, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	second, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)

	s.Require().NoError(first.TransitionToActive(time.Now()))
	s.Require().NoError(s.store.Update(ctx, first))
	s.Equal(2, first.Version)

	s.Require().NoError(second.TransitionToRejected(time.Now()))
	s.ErrorIs(s.store.Update(ctx, second), sentinel.ErrConflict)

	stored, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, stored.Status)
}
