package uow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"productverification/internal/product/models"
	"productverification/internal/product/store/product"
	"productverification/internal/product/store/verification"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
)

type MemoryUnitSuite struct {
	suite.Suite
	products      *product.InMemory
	verifications *verification.InMemory
	factory       *Memory
	ctx           context.Context
}

func TestMemoryUnitSuite(t *testing.T) {
	suite.Run(t, new(MemoryUnitSuite))
}

func (s *MemoryUnitSuite) SetupTest() {
	s.products = product.NewInMemory()
	s.verifications = verification.NewInMemory()
	s.factory = NewMemory(s.products, s.verifications)
	s.ctx = context.Background()
}

func (s *MemoryUnitSuite) newProduct() *models.Product {
	return models.NewProduct(id.NewProductID(), models.Fields{Name: "Chair", Price: 80, Currency: "EUR"}, time.Now())
}

func (s *MemoryUnitSuite) TestCommit() {
	s.Run("staged writes are visible inside the unit only", func() {
		unit, err := s.factory.Begin(s.ctx)
		s.Require().NoError(err)
		p := s.newProduct()
		s.Require().NoError(unit.Products().Save(s.ctx, p))

		_, err = unit.Products().FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		_, err = s.products.FindByID(s.ctx, p.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().NoError(unit.Commit(s.ctx))
		_, err = s.products.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
	})

	s.Run("rollback after commit is a no-op", func() {
		unit, err := s.factory.Begin(s.ctx)
		s.Require().NoError(err)
		p := s.newProduct()
		s.Require().NoError(unit.Products().Save(s.ctx, p))
		s.Require().NoError(unit.Commit(s.ctx))
		s.Require().NoError(unit.Rollback(s.ctx))

		_, err = s.products.FindByID(s.ctx, p.ID)
		s.NoError(err)
	})

	s.Run("second commit fails", func() {
		unit, err := s.factory.Begin(s.ctx)
		s.Require().NoError(err)
		s.Require().NoError(unit.Commit(s.ctx))
		s.ErrorIs(unit.Commit(s.ctx), ErrClosed)
	})

	s.Run("update of committed product advances version on commit", func() {
		p := s.newProduct()
		s.Require().NoError(s.products.Save(s.ctx, p))

		unit, err := s.factory.Begin(s.ctx)
		s.Require().NoError(err)
		loaded, err := unit.Products().FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Require().NoError(loaded.TransitionToActive(time.Now()))
		s.Require().NoError(unit.Products().Update(s.ctx, loaded))
		s.Require().NoError(unit.Commit(s.ctx))

		stored, err := s.products.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, stored.Status)
		s.Equal(2, stored.Version)
	})
}

func (s *MemoryUnitSuite) TestRollback() {
	s.Run("discards entity writes but keeps audit writes", func() {
		unit, err := s.factory.Begin(s.ctx)
		s.Require().NoError(err)
		p := s.newProduct()
		s.Require().NoError(unit.Products().Save(s.ctx, p))
		s.Require().NoError(unit.Verifications().SaveVerification(s.ctx, &models.VerificationRecord{
			ProductID: p.ID, VerifiedAt: time.Now(),
		}))

		s.Require().NoError(unit.Rollback(s.ctx))

		_, err = s.products.FindByID(s.ctx, p.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Equal(1, s.verifications.CountByProductID(p.ID), "audit store commits independently")
	})

	s.Run("closed unit rejects further writes", func() {
		unit, err := s.factory.Begin(s.ctx)
		s.Require().NoError(err)
		s.Require().NoError(unit.Rollback(s.ctx))
		s.ErrorIs(unit.Products().Save(s.ctx, s.newProduct()), ErrClosed)
	})
}

func (s *MemoryUnitSuite) TestConcurrentUnitsConflict() {
	p := s.newProduct()
	s.Require().NoError(s.products.Save(s.ctx, p))

	first, err := s.factory.Begin(s.ctx)
	s.Require().NoError(err)
	second, err := s.factory.Begin(s.ctx)
	s.Require().NoError(err)

	a, err := first.Products().FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	b, err := second.Products().FindByID(s.ctx, p.ID)
	s.Require().NoError(err)

	s.Require().NoError(a.TransitionToActive(time.Now()))
	s.Require().NoError(first.Products().Update(s.ctx, a))
	s.Require().NoError(b.TransitionToRejected(time.Now()))
	s.Require().NoError(second.Products().Update(s.ctx, b))

	s.Require().NoError(first.Commit(s.ctx))
	s.ErrorIs(second.Commit(s.ctx), sentinel.ErrConflict)

	stored, err := s.products.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, stored.Status)
}

func (s *MemoryUnitSuite) TestBeginHonoursCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.factory.Begin(ctx)
	s.ErrorIs(err, context.Canceled)
}
