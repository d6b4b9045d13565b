package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "productverification/pkg/domain-errors"
)

// ProductID identifies a product. It is opaque to callers: the service
// generates uuid strings, but lookups accept any printable identifier so an
// unknown id surfaces as not-found rather than as malformed input.
type ProductID string

const maxProductIDLength = 128

// NewProductID generates a fresh identifier.
func NewProductID() ProductID {
	return ProductID(uuid.NewString())
}

// ParseProductID validates an identifier received at a trust boundary.
func ParseProductID(s string) (ProductID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "product id is required")
	}
	if len(s) > maxProductIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "product id is too long")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "product id contains invalid characters")
		}
	}
	return ProductID(s), nil
}

func (id ProductID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ProductID) IsZero() bool {
	return id == ""
}
