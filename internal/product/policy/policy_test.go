package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productverification/internal/product/models"
)

func validFields() models.Fields {
	return models.Fields{
		Name:          "iPhone 15",
		Price:         999.99,
		Currency:      "USD",
		Category:      "Electronics",
		StockQuantity: 50,
		Assets:        []string{"image1.jpg", "image2.jpg"},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Fields)
		passed  bool
		reasons []string
	}{
		{
			name:    "valid product passes",
			mutate:  func(*models.Fields) {},
			passed:  true,
			reasons: []string{},
		},
		{
			name:    "zero stock is valid",
			mutate:  func(f *models.Fields) { f.StockQuantity = 0 },
			passed:  true,
			reasons: []string{},
		},
		{
			name:    "blank name after trimming",
			mutate:  func(f *models.Fields) { f.Name = "   \t" },
			reasons: []string{ReasonNameMissing},
		},
		{
			name:    "zero price",
			mutate:  func(f *models.Fields) { f.Price = 0 },
			reasons: []string{ReasonPriceInvalid},
		},
		{
			name:    "negative stock",
			mutate:  func(f *models.Fields) { f.StockQuantity = -1 },
			reasons: []string{ReasonStockInvalid},
		},
		{
			name:    "nil assets",
			mutate:  func(f *models.Fields) { f.Assets = nil },
			reasons: []string{ReasonAssetsMissing},
		},
		{
			name: "everything invalid reports all six in rule order",
			mutate: func(f *models.Fields) {
				*f = models.Fields{Price: -10, StockQuantity: -5, Assets: []string{}}
			},
			reasons: []string{
				ReasonNameMissing,
				ReasonCategoryMissing,
				ReasonCurrencyMissing,
				ReasonPriceInvalid,
				ReasonStockInvalid,
				ReasonAssetsMissing,
			},
		},
		{
			name: "currency and category together keep rule order",
			mutate: func(f *models.Fields) {
				f.Currency = ""
				f.Category = " "
			},
			reasons: []string{ReasonCategoryMissing, ReasonCurrencyMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)

			result := New().Evaluate(f)

			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, tt.reasons, result.Reasons)
		})
	}
}

func TestEvaluateChecksAgreeWithReasons(t *testing.T) {
	result := Evaluate(models.Fields{Name: "x", Price: -1, Currency: "EUR"})

	require.Len(t, result.Checks, 6)
	assert.True(t, result.Checks[CheckNamePresent])
	assert.True(t, result.Checks[CheckCurrencyPresent])
	assert.True(t, result.Checks[CheckStockQuantityValid])
	assert.False(t, result.Checks[CheckCategoryPresent])
	assert.False(t, result.Checks[CheckPriceValid])
	assert.False(t, result.Checks[CheckAssetsPresent])
	assert.Equal(t, []string{ReasonCategoryMissing, ReasonPriceInvalid, ReasonAssetsMissing}, result.Reasons)
}

func TestCatalogOrder(t *testing.T) {
	assert.Equal(t, []string{
		CheckNamePresent,
		CheckCategoryPresent,
		CheckCurrencyPresent,
		CheckPriceValid,
		CheckStockQuantityValid,
		CheckAssetsPresent,
	}, CheckNames())
	assert.Len(t, Reasons(), 6)
}
