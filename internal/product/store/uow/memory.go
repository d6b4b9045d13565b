package uow

import (
	"context"
	"sync"

	"productverification/internal/product/models"
	"productverification/internal/product/service"
	"productverification/internal/product/store/product"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
)

// Memory opens units over an in-memory product store. Entity writes are
// staged per unit and applied atomically on Commit.
type Memory struct {
	products      *product.InMemory
	verifications service.VerificationStore
}

func NewMemory(products *product.InMemory, verifications service.VerificationStore) *Memory {
	return &Memory{products: products, verifications: verifications}
}

func (m *Memory) Begin(ctx context.Context) (UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryUnit{
		staged: &stagedProducts{
			base:    m.products,
			entries: make(map[id.ProductID]*stagedEntry),
		},
		verifications: m.verifications,
	}, nil
}

type memoryUnit struct {
	staged        *stagedProducts
	verifications service.VerificationStore
}

func (u *memoryUnit) Products() service.ProductStore           { return u.staged }
func (u *memoryUnit) Verifications() service.VerificationStore { return u.verifications }

func (u *memoryUnit) Commit(ctx context.Context) error {
	changes, err := u.staged.close()
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}
	return u.staged.base.Apply(ctx, changes)
}

func (u *memoryUnit) Rollback(context.Context) error {
	_, _ = u.staged.close()
	return nil
}

type stagedEntry struct {
	product         *models.Product
	insert          bool
	expectedVersion int
}

// stagedProducts reads through to the base store and buffers writes.
type stagedProducts struct {
	mu      sync.Mutex
	base    *product.InMemory
	entries map[id.ProductID]*stagedEntry
	order   []id.ProductID
	closed  bool
}

func (s *stagedProducts) Save(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.entries[p.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, err := s.base.FindByID(ctx, p.ID); err == nil {
		return sentinel.ErrConflict
	}
	s.stage(p.ID, &stagedEntry{product: p.Clone(), insert: true})
	return nil
}

func (s *stagedProducts) FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if e, ok := s.entries[productID]; ok {
		return e.product.Clone(), nil
	}
	return s.base.FindByID(ctx, productID)
}

func (s *stagedProducts) Update(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if e, ok := s.entries[p.ID]; ok {
		if e.product.Version != p.Version {
			return sentinel.ErrConflict
		}
		p.Version++
		e.product = p.Clone()
		return nil
	}
	current, err := s.base.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if current.Version != p.Version {
		return sentinel.ErrConflict
	}
	expected := p.Version
	p.Version++
	s.stage(p.ID, &stagedEntry{product: p.Clone(), expectedVersion: expected})
	return nil
}

func (s *stagedProducts) stage(productID id.ProductID, e *stagedEntry) {
	s.entries[productID] = e
	s.order = append(s.order, productID)
}

func (s *stagedProducts) close() ([]product.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.closed = true
	changes := make([]product.Change, 0, len(s.order))
	for _, pid := range s.order {
		e := s.entries[pid]
		changes = append(changes, product.Change{
			Product:         e.product,
			Insert:          e.insert,
			ExpectedVersion: e.expectedVersion,
		})
	}
	s.entries = nil
	s.order = nil
	return changes, nil
}
