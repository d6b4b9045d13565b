package policy

import (
	"testing"

	"pgregory.net/rapid"

	"productverification/internal/product/models"
)

func fieldsGen() *rapid.Generator[models.Fields] {
	text := rapid.SampledFrom([]string{"", " ", "\t\n", "x", " USD ", "Electronics"})
	return rapid.Custom(func(t *rapid.T) models.Fields {
		return models.Fields{
			Name:          text.Draw(t, "name"),
			Category:      text.Draw(t, "category"),
			Currency:      text.Draw(t, "currency"),
			Price:         rapid.Float64Range(-1000, 1000).Draw(t, "price"),
			StockQuantity: rapid.IntRange(-100, 100).Draw(t, "stock"),
			Assets:        rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}\.jpg`), 0, 3).Draw(t, "assets"),
		}
	})
}

// TestEvaluateProperties checks the verdict contract over arbitrary inputs:
// passed iff no reasons, reasons are an ordered subset of the catalog, and
// the checks map flags exactly the rules that produced a reason.
func TestEvaluateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := fieldsGen().Draw(t, "fields")
		result := Evaluate(f)

		if result.Passed != (len(result.Reasons) == 0) {
			t.Fatalf("passed=%v with %d reasons", result.Passed, len(result.Reasons))
		}

		catalog := Reasons()
		names := CheckNames()
		next := 0
		failed := make(map[string]bool)
		for _, reason := range result.Reasons {
			for next < len(catalog) && catalog[next] != reason {
				next++
			}
			if next == len(catalog) {
				t.Fatalf("reason %q out of order or unknown in %v", reason, result.Reasons)
			}
			failed[names[next]] = true
			next++
		}

		for _, name := range names {
			ok, present := result.Checks[name]
			if !present {
				t.Fatalf("check %q missing", name)
			}
			if ok == failed[name] {
				t.Fatalf("check %q=%v disagrees with reasons %v", name, ok, result.Reasons)
			}
		}

		if result.Passed && (f.Price <= 0 || f.StockQuantity < 0 || len(f.Assets) == 0) {
			t.Fatalf("invalid numeric fields passed: %+v", f)
		}
	})
}
