package verification

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"productverification/internal/product/models"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
)

// InMemory keeps verification records in append order per product.
// Writes are visible immediately; there is no transaction to roll back.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.ProductID][]models.VerificationRecord
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.ProductID][]models.VerificationRecord)}
}

func (s *InMemory) SaveVerification(_ context.Context, record *models.VerificationRecord) error {
	if record == nil {
		return fmt.Errorf("verification record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ProductID] = append(s.records[record.ProductID], copyRecord(*record))
	return nil
}

// FindByProductID returns the most recent record for the product.
func (s *InMemory) FindByProductID(_ context.Context, productID id.ProductID) (*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.records[productID]
	if len(list) == 0 {
		return nil, sentinel.ErrNotFound
	}
	latest := list[0]
	for _, r := range list[1:] {
		if !r.VerifiedAt.Before(latest.VerifiedAt) {
			latest = r
		}
	}
	out := copyRecord(latest)
	return &out, nil
}

// CountByProductID reports how many records exist for a product.
func (s *InMemory) CountByProductID(productID id.ProductID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[productID])
}

func copyRecord(r models.VerificationRecord) models.VerificationRecord {
	r.Checks = maps.Clone(r.Checks)
	r.Reasons = append([]string{}, r.Reasons...)
	return r
}
