// Package stats derives gallery statistics from the full list of phones.
package stats

import (
	"sort"

	"github.com/vbonduro/phonegallery/internal/domain"
)

// BrandCount is the per-brand tally. Brand names are compared exactly.
type BrandCount struct {
	Brand    string `json:"brand"`
	Total    int    `json:"total"`
	Liked    int    `json:"liked"`
	Disliked int    `json:"disliked"`
}

// BrandTally names a brand and one of its counts.
type BrandTally struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

type Statistics struct {
	Total                 int          `json:"totalPhones"`
	Kept                  int          `json:"phonesStillOwned"`
	Liked                 int          `json:"totalLikes"`
	Disliked              int          `json:"totalDislikes"`
	Current               int          `json:"currentPhones"`
	AverageOwnershipYears float64      `json:"averageOwnershipYears"`
	Brands                []BrandCount `json:"brands"`
	MaxBrandCount         int          `json:"maxBrandCount"`
	MostLiked             *BrandTally  `json:"mostLikedBrand"`
	MostDisliked          *BrandTally  `json:"mostDislikedBrand"`
}

// Compute folds phones into Statistics. currentYear closes the ownership
// span of phones that are still in use.
//
// Brands are ordered by total, highest first; equal totals keep the order in
// which the brand first appeared in phones. MostLiked and MostDisliked pick
// the first brand in that first-appearance order holding the maximum, and are
// nil when nothing was liked (or disliked).
func Compute(phones []*domain.Phone, currentYear int) Statistics {
	st := Statistics{Brands: make([]BrandCount, 0), MaxBrandCount: 1}

	index := make(map[string]int)
	ownedYears := 0
	for _, p := range phones {
		st.Total++
		if p.Kept {
			st.Kept++
		}
		if p.IsCurrent() {
			st.Current++
		}

		i, ok := index[p.Brand]
		if !ok {
			i = len(st.Brands)
			index[p.Brand] = i
			st.Brands = append(st.Brands, BrandCount{Brand: p.Brand})
		}
		st.Brands[i].Total++
		if p.Liked {
			st.Liked++
			st.Brands[i].Liked++
		} else {
			st.Disliked++
			st.Brands[i].Disliked++
		}

		ownedYears += ownershipYears(p, currentYear)
	}

	st.MostLiked = maxTally(st.Brands, func(b BrandCount) int { return b.Liked })
	st.MostDisliked = maxTally(st.Brands, func(b BrandCount) int { return b.Disliked })

	if st.Total > 0 {
		st.AverageOwnershipYears = float64(ownedYears) / float64(st.Total)
	}

	sort.SliceStable(st.Brands, func(a, b int) bool {
		return st.Brands[a].Total > st.Brands[b].Total
	})
	if len(st.Brands) > 0 {
		st.MaxBrandCount = st.Brands[0].Total
	}

	return st
}

func maxTally(brands []BrandCount, count func(BrandCount) int) *BrandTally {
	var best *BrandTally
	for _, b := range brands {
		n := count(b)
		if n == 0 {
			continue
		}
		if best == nil || n > best.Count {
			best = &BrandTally{Brand: b.Brand, Count: n}
		}
	}
	return best
}

// ownershipYears counts calendar years of ownership, both ends included.
func ownershipYears(p *domain.Phone, currentYear int) int {
	end := currentYear
	if p.YearEnd != nil {
		end = *p.YearEnd
	}
	if end < p.YearStart {
		return 0
	}
	return end - p.YearStart + 1
}
