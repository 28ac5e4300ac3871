package services

import (
	"sort"

	"price-scout/models"
)

const (
	goodDealRank  = 0.30
	highPriceRank = 0.70
)

// Trend annotations attached during cold-start ranking. They override any
// trend already stored on the listing.
const (
	TrendGoodDeal  = "✅ Good Deal vs peers (low percentile)"
	TrendHighPrice = "⏳ High Price vs peers (consider waiting)"
	TrendFairPrice = "➡️ Fair Price vs peers"
)

// ApplyPeerTrends computes each listing's price percentile against the
// positive prices in the current batch and attaches the classification as
// its trend. Listings without a positive price are left unannotated. This
// is the cold-start ranking: it needs no history, just the batch itself.
func ApplyPeerTrends(listings []*models.Listing) {
	var ref []float64
	for _, l := range listings {
		if l.Price > 0 {
			ref = append(ref, l.Price)
		}
	}
	if len(ref) == 0 {
		return
	}
	sort.Float64s(ref)

	for _, l := range listings {
		if l.Price <= 0 {
			continue
		}
		rank := percentileRank(ref, l.Price)
		switch {
		case rank <= goodDealRank:
			l.Trend = TrendGoodDeal
		case rank >= highPriceRank:
			l.Trend = TrendHighPrice
		default:
			l.Trend = TrendFairPrice
		}
	}
}

// percentileRank returns the fraction of reference prices ≤ price. The
// reference set is sorted and non-empty by construction.
func percentileRank(sorted []float64, price float64) float64 {
	i := sort.SearchFloat64s(sorted, price)
	for i < len(sorted) && sorted[i] <= price {
		i++
	}
	return float64(i) / float64(len(sorted))
}

// SortByPrice orders listings ascending by price, with non-positive prices
// last. The sort is stable so equal prices keep their merge order.
func SortByPrice(listings []*models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		pi, pj := listings[i].Price, listings[j].Price
		if pi <= 0 {
			return false
		}
		if pj <= 0 {
			return true
		}
		return pi < pj
	})
}

func topN(listings []*models.Listing, n int) []*models.Listing {
	if len(listings) > n {
		return listings[:n]
	}
	return listings
}
