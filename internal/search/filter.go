// Package search implements metadata filtering and hybrid reranking over
// vector index candidates.
package search

import (
	"strings"

	"docquery-go/internal/model"
)

// Apply narrows candidates by the structured constraints of the filter. All
// present constraint types must pass; within a set-valued constraint any
// intersection passes. An absent filter is a pass-through. The result is an
// order-preserving subset; candidates are never mutated.
//
// The index already pushes these constraints down, but re-checking in memory
// keeps the contract independent of index behaviour.
func Apply(candidates []model.Candidate, f model.QueryFilter) []model.Candidate {
	if f.IsZero() {
		return candidates
	}

	industries := normalizeSet(f.Industries)
	countries := normalizeSet(f.CountryCodes)

	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		meta := c.Entry.Meta()
		if len(industries) > 0 && !intersects(meta.Industries, industries) {
			continue
		}
		if len(countries) > 0 && !intersects(meta.CountryCodes, countries) {
			continue
		}
		if f.DateFrom != 0 && meta.DateTS < f.DateFrom {
			continue
		}
		if f.DateTo != 0 && (meta.DateTS == 0 || meta.DateTS > f.DateTo) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func normalizeSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}

func intersects(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[strings.ToLower(strings.TrimSpace(v))] {
			return true
		}
	}
	return false
}
