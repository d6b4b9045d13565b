package product

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"productverification/internal/product/models"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newProduct() *models.Product {
	return models.NewProduct(id.NewProductID(), models.Fields{
		Name:     "Desk Lamp",
		Price:    39.5,
		Currency: "EUR",
		Category: "Home",
		Assets:   []string{"lamp.png"},
	}, time.Now())
}

func (s *InMemoryStoreSuite) TestSaveAndFind() {
	s.Run("round trips a product", func() {
		p := s.newProduct()
		s.Require().NoError(s.store.Save(s.ctx, p))

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.Name, found.Name)
		s.Equal(p.Assets, found.Assets)
		s.Equal(1, found.Version)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, "nonexistent-id")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate id", func() {
		p := s.newProduct()
		s.Require().NoError(s.store.Save(s.ctx, p))
		s.Require().ErrorIs(s.store.Save(s.ctx, p), sentinel.ErrConflict)
	})

	s.Run("does not alias stored state or keep events", func() {
		p := s.newProduct()
		p.AddDomainEvent(models.NewProductCreatedPendingVerification(p, time.Now()))
		s.Require().NoError(s.store.Save(s.ctx, p))

		p.Name = "changed after save"
		p.Assets[0] = "changed.png"

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Desk Lamp", found.Name)
		s.Equal([]string{"lamp.png"}, found.Assets)
		s.Empty(found.DomainEvents())
	})
}

func (s *InMemoryStoreSuite) TestUpdate() {
	s.Run("advances version", func() {
		p := s.newProduct()
		s.Require().NoError(s.store.Save(s.ctx, p))
		s.Require().NoError(p.TransitionToActive(time.Now()))

		s.Require().NoError(s.store.Update(s.ctx, p))
		s.Equal(2, p.Version)

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, found.Status)
		s.Equal(2, found.Version)
	})

	s.Run("stale version conflicts", func() {
		p := s.newProduct()
		s.Require().NoError(s.store.Save(s.ctx, p))
		a, _ := s.store.FindByID(s.ctx, p.ID)
		b, _ := s.store.FindByID(s.ctx, p.ID)

		s.Require().NoError(s.store.Update(s.ctx, a))
		s.Require().ErrorIs(s.store.Update(s.ctx, b), sentinel.ErrConflict)
	})

	s.Run("unknown product is not found", func() {
		s.Require().ErrorIs(s.store.Update(s.ctx, s.newProduct()), sentinel.ErrNotFound)
	})

	s.Run("only one concurrent writer wins", func() {
		p := s.newProduct()
		s.Require().NoError(s.store.Save(s.ctx, p))

		var wg sync.WaitGroup
		var wins atomic.Int32
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				loaded := p.Clone()
				if s.store.Update(s.ctx, loaded) == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}

func (s *InMemoryStoreSuite) TestApply() {
	s.Run("applies inserts and updates together", func() {
		existing := s.newProduct()
		s.Require().NoError(s.store.Save(s.ctx, existing))
		fresh := s.newProduct()

		updated := existing.Clone()
		s.Require().NoError(updated.TransitionToRejected(time.Now()))
		updated.Version = 2

		err := s.store.Apply(s.ctx, []Change{
			{Product: fresh, Insert: true},
			{Product: updated, ExpectedVersion: 1},
		})
		s.Require().NoError(err)
		s.Equal(2, s.store.Len())

		found, _ := s.store.FindByID(s.ctx, existing.ID)
		s.Equal(models.StatusRejected, found.Status)
		s.Equal(2, found.Version)
	})

	s.Run("applies nothing when one change conflicts", func() {
		store := NewInMemory()
		existing := s.newProduct()
		s.Require().NoError(store.Save(s.ctx, existing))
		fresh := s.newProduct()

		err := store.Apply(s.ctx, []Change{
			{Product: fresh, Insert: true},
			{Product: existing.Clone(), ExpectedVersion: 7},
		})
		s.Require().ErrorIs(err, sentinel.ErrConflict)
		_, err = store.FindByID(s.ctx, fresh.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
