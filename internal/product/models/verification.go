package models

import (
	"time"

	id "productverification/pkg/domain"
)

// VerificationResult is the verdict of the verification policy.
// Passed is true iff Reasons is empty. Checks holds one entry per rule,
// false exactly for the rules that contributed a reason.
type VerificationResult struct {
	Passed  bool
	Reasons []string
	Checks  map[string]bool
}

// VerificationRecord is the write-once audit entry for one verification attempt.
type VerificationRecord struct {
	ProductID  id.ProductID    `json:"product_id"`
	Checks     map[string]bool `json:"checks"`
	Reasons    []string        `json:"reasons"`
	VerifiedAt time.Time       `json:"verified_at"`
}
