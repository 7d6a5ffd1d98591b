// Package ranking orders filtered providers best-first and charges each
// ranked provider one unit of popularity.
package ranking

import (
	"cmp"
	"context"
	"slices"

	"github.com/okian/providex/internal/domain/model"
)

// PopularityTracker is the slice of the provider store ranking depends on.
type PopularityTracker interface {
	// BumpPopularity increments the counter for id and returns the new value.
	BumpPopularity(ctx context.Context, id int) int64
}

// candidate pairs a record with the popularity it had before this ranking.
type candidate struct {
	provider   model.Provider
	popularity int64
}

// compare orders candidates: rating DESC, then popularity ASC, then id ASC.
// A negative result means a ranks before b.
func compare(a, b candidate) int {
	if c := cmp.Compare(b.provider.Rating, a.provider.Rating); c != 0 {
		return c
	}
	if c := cmp.Compare(a.popularity, b.popularity); c != 0 {
		return c
	}
	return cmp.Compare(a.provider.ID, b.provider.ID)
}

// Rank bumps the popularity of every record exactly once and returns the
// records ordered best-first. Ordering uses the popularity read before this
// call's increment. The result shares no slices with the input.
func Rank(ctx context.Context, tracker PopularityTracker, records []model.Provider) []model.Provider {
	if len(records) == 0 {
		return []model.Provider{}
	}

	cands := make([]candidate, len(records))
	for i, p := range records {
		cands[i] = candidate{
			provider:   p,
			popularity: tracker.BumpPopularity(ctx, p.ID) - 1,
		}
	}

	slices.SortFunc(cands, compare)

	out := make([]model.Provider, len(cands))
	for i, c := range cands {
		out[i] = c.provider.Clone()
	}
	return out
}
