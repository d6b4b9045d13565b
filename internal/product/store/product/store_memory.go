package product

import (
	"context"
	"fmt"
	"sync"

	"productverification/internal/product/models"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
)

// InMemory is a thread-safe in-memory product store.
// Stored values are clones; callers never alias store state.
type InMemory struct {
	mu       sync.RWMutex
	products map[id.ProductID]*models.Product
}

func NewInMemory() *InMemory {
	return &InMemory{products: make(map[id.ProductID]*models.Product)}
}

func (s *InMemory) Save(_ context.Context, p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.ID]; exists {
		return fmt.Errorf("product %s: %w", p.ID, sentinel.ErrConflict)
	}
	s.products[p.ID] = p.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// Update replaces the stored product when its version matches p.Version,
// then advances p.Version.
func (s *InMemory) Update(_ context.Context, p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUpdate(p); err != nil {
		return err
	}
	p.Version++
	s.products[p.ID] = p.Clone()
	return nil
}

// Change is one staged write applied by Apply. Product holds the final state
// to store; for updates ExpectedVersion is the version the write was based on.
type Change struct {
	Product         *models.Product
	Insert          bool
	ExpectedVersion int
}

// Apply validates every change against current state and then applies all of
// them under one lock. Either every change lands or none does.
func (s *InMemory) Apply(_ context.Context, changes []Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range changes {
		current, exists := s.products[c.Product.ID]
		switch {
		case c.Insert && exists:
			return fmt.Errorf("product %s: %w", c.Product.ID, sentinel.ErrConflict)
		case !c.Insert && !exists:
			return sentinel.ErrNotFound
		case !c.Insert && current.Version != c.ExpectedVersion:
			return fmt.Errorf("product %s version %d, have %d: %w",
				c.Product.ID, c.ExpectedVersion, current.Version, sentinel.ErrConflict)
		}
	}
	for _, c := range changes {
		s.products[c.Product.ID] = c.Product.Clone()
	}
	return nil
}

func (s *InMemory) checkUpdate(p *models.Product) error {
	current, ok := s.products[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != p.Version {
		return fmt.Errorf("product %s version %d, have %d: %w", p.ID, p.Version, current.Version, sentinel.ErrConflict)
	}
	return nil
}

// Len reports the number of stored products.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
