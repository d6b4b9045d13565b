// Package strings provides string slice helpers.
package strings

import (
	"strings"
)

// DedupeAndTrim trims every element and drops empties and repeats.
// Order of first occurrence is preserved.
//
//	DedupeAndTrim([]string{" b1:9092", "b2:9092", "b1:9092", ""})
//	// []string{"b1:9092", "b2:9092"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var result []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
