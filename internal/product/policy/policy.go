// Package policy decides whether a product may be activated.
//
// The policy is pure: no I/O, no clock, no side effects. It receives the
// product's fields and returns a verdict. Rules are evaluated independently
// and every failure is reported; there is no short-circuit.
package policy

import (
	"strings"

	"productverification/internal/product/models"
)

// Check names recorded in the verification audit trail.
const (
	CheckNamePresent        = "name_present"
	CheckCategoryPresent    = "category_present"
	CheckCurrencyPresent    = "currency_present"
	CheckPriceValid         = "price_valid"
	CheckStockQuantityValid = "stock_quantity_valid"
	CheckAssetsPresent      = "assets_present"
)

// Failure reasons. Their order in a result follows rule order.
const (
	ReasonNameMissing     = "name is missing or empty"
	ReasonCategoryMissing = "category is missing or empty"
	ReasonCurrencyMissing = "currency is missing or empty"
	ReasonPriceInvalid    = "price must be greater than 0"
	ReasonStockInvalid    = "stock_quantity must be >= 0"
	ReasonAssetsMissing   = "at least 1 asset is required"
)

type rule struct {
	check  string
	reason string
	passes func(models.Fields) bool
}

// rules is the single source for both the reasons list and the checks map.
var rules = []rule{
	{CheckNamePresent, ReasonNameMissing, func(f models.Fields) bool { return notBlank(f.Name) }},
	{CheckCategoryPresent, ReasonCategoryMissing, func(f models.Fields) bool { return notBlank(f.Category) }},
	{CheckCurrencyPresent, ReasonCurrencyMissing, func(f models.Fields) bool { return notBlank(f.Currency) }},
	{CheckPriceValid, ReasonPriceInvalid, func(f models.Fields) bool { return f.Price > 0 }},
	{CheckStockQuantityValid, ReasonStockInvalid, func(f models.Fields) bool { return f.StockQuantity >= 0 }},
	{CheckAssetsPresent, ReasonAssetsMissing, func(f models.Fields) bool { return len(f.Assets) > 0 }},
}

// Policy evaluates the fixed verification rule set.
type Policy struct{}

func New() *Policy {
	return &Policy{}
}

// Evaluate applies every rule to f. Passed is true iff no rule failed.
func (p *Policy) Evaluate(f models.Fields) models.VerificationResult {
	return Evaluate(f)
}

// Evaluate is the package-level form of Policy.Evaluate.
func Evaluate(f models.Fields) models.VerificationResult {
	result := models.VerificationResult{
		Reasons: []string{},
		Checks:  make(map[string]bool, len(rules)),
	}
	for _, r := range rules {
		ok := r.passes(f)
		result.Checks[r.check] = ok
		if !ok {
			result.Reasons = append(result.Reasons, r.reason)
		}
	}
	result.Passed = len(result.Reasons) == 0
	return result
}

// CheckNames lists the check names in rule order.
func CheckNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.check
	}
	return names
}

// Reasons lists every reason in rule order.
func Reasons() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.reason
	}
	return out
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
