package service

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"repairhub-backend/internal/domains/discount/model"
)

// TieBreakPolicy chooses one discount when several apply.
type TieBreakPolicy string

const (
	// TieBreakFirstCreated picks the oldest discount, then the lowest id.
	TieBreakFirstCreated TieBreakPolicy = "first_created"
	// TieBreakMostSpecific prefers model > series > brand > service >
	// all_models > all_services, then falls back to first_created.
	TieBreakMostSpecific TieBreakPolicy = "most_specific"
)

func ParseTieBreakPolicy(s string) (TieBreakPolicy, error) {
	switch p := TieBreakPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case TieBreakFirstCreated, TieBreakMostSpecific:
		return p, nil
	case "":
		return TieBreakFirstCreated, nil
	default:
		return "", fmt.Errorf("unknown tie-break policy %q", s)
	}
}

// Less orders a ahead of b under the policy.
func (p TieBreakPolicy) Less(a, b *model.Discount) bool {
	if p == TieBreakMostSpecific {
		sa, sb := a.ScopeType.Specificity(), b.ScopeType.Specificity()
		if sa != sb {
			return sa > sb
		}
	}
	return createdBefore(a, b)
}

func createdBefore(a, b *model.Discount) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// PickWinner returns the first discount under the policy, nil for none.
// The input slice is not reordered.
func (p TieBreakPolicy) PickWinner(candidates []*model.Discount) *model.Discount {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]*model.Discount, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return p.Less(ordered[i], ordered[j])
	})
	return ordered[0]
}
