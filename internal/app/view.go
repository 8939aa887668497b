package app

import (
	"cmp"
	"slices"

	"safari_reviews/internal/domain"
)

// View filters records, then orders the survivors. It never mutates its
// input and returns a fresh slice.
func View(records []domain.Review, filter domain.FilterMode, sort domain.SortMode) []domain.Review {
	out := make([]domain.Review, 0, len(records))
	for _, r := range records {
		if keep(r, filter) {
			out = append(out, r)
		}
	}

	switch sort {
	case domain.SortNewest:
		slices.SortStableFunc(out, func(a, b domain.Review) int { return cmp.Compare(b.Timestamp, a.Timestamp) })
	case domain.SortOldest:
		slices.SortStableFunc(out, func(a, b domain.Review) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
	case domain.SortHighest:
		// ties keep the order they had in the filtered input
		slices.SortStableFunc(out, func(a, b domain.Review) int { return cmp.Compare(b.Rating, a.Rating) })
	default:
		slices.SortStableFunc(out, func(a, b domain.Review) int { return cmp.Compare(a.SourceIndex, b.SourceIndex) })
	}
	return out
}

func keep(r domain.Review, f domain.FilterMode) bool {
	switch f {
	case domain.FilterFive:
		return r.Rating == 5
	case domain.FilterFourPlus:
		return r.Rating >= 4
	default:
		return true
	}
}
