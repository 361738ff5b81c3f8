package usecase

import (
	"math"
	"sort"

	"github.com/cartcompare/backend/internal/domain"
)

// BuildStoreTotals prices the whole list at each store. For every item
// the cheapest available match from that store is chosen, ties going to
// the earlier (more relevant) match. Stores are ordered cheapest first,
// with stores that matched nothing pushed to the end.
func BuildStoreTotals(results []domain.ItemSearchResult) []domain.StoreTotal {
	totals := make([]domain.StoreTotal, 0, len(domain.AllStores))
	for _, store := range domain.AllStores {
		items := make([]domain.StoreItemResult, 0, len(results))
		total := 0.0
		unavailable := 0
		for _, result := range results {
			match := cheapestForStore(result.Matches, store)
			lineTotal := 0.0
			if match != nil {
				lineTotal = match.Price * float64(result.Quantity)
			} else {
				unavailable++
			}
			total += lineTotal
			items = append(items, domain.StoreItemResult{
				ShoppingListItemID:   result.ShoppingListItemID,
				ShoppingListItemName: result.ShoppingListItemName,
				Quantity:             result.Quantity,
				Match:                match,
				LineTotal:            lineTotal,
			})
		}
		totals = append(totals, domain.StoreTotal{
			Store:             store,
			StoreName:         domain.StoreDisplayNames[store],
			Items:             items,
			Total:             roundCents(total),
			UnavailableCount:  unavailable,
			AllItemsAvailable: unavailable == 0,
		})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		// Stores with nothing matched sink below stores with prices.
		aEmpty := !a.AllItemsAvailable && a.Total == 0
		bEmpty := !b.AllItemsAvailable && b.Total == 0
		if aEmpty != bEmpty {
			return bEmpty
		}
		return a.Total < b.Total
	})
	return totals
}

// cheapestForStore picks the cheapest available match from one store,
// preserving input order on ties.
func cheapestForStore(matches []domain.ProductMatch, store domain.StoreName) *domain.ProductMatch {
	var best *domain.ProductMatch
	for i := range matches {
		m := &matches[i]
		if m.Store != store || !m.Available {
			continue
		}
		if best == nil || m.Price < best.Price {
			best = m
		}
	}
	return best
}

// BuildMixAndMatch picks, per item, the globally cheapest available
// match by absolute price across all stores. Absolute price — not the
// normalised unit price — is deliberate: the view optimises total spend,
// not unit value.
func BuildMixAndMatch(results []domain.ItemSearchResult) domain.MixAndMatchResult {
	items := make([]domain.MixAndMatchItem, 0, len(results))
	total := 0.0
	for _, result := range results {
		var cheapest *domain.ProductMatch
		for i := range result.Matches {
			m := &result.Matches[i]
			if !m.Available {
				continue
			}
			if cheapest == nil || m.Price < cheapest.Price {
				cheapest = m
			}
		}
		lineTotal := 0.0
		if cheapest != nil {
			lineTotal = roundCents(cheapest.Price * float64(result.Quantity))
		}
		total += lineTotal
		items = append(items, domain.MixAndMatchItem{
			ShoppingListItemID:   result.ShoppingListItemID,
			ShoppingListItemName: result.ShoppingListItemName,
			Quantity:             result.Quantity,
			CheapestMatch:        cheapest,
			LineTotal:            lineTotal,
		})
	}
	return domain.MixAndMatchResult{Items: items, Total: roundCents(total)}
}

// BuildComparisonResponse assembles both views over merged per-item
// match lists. Pure: no network or cache access.
func BuildComparisonResponse(results []domain.ItemSearchResult) *domain.ComparisonResponse {
	return &domain.ComparisonResponse{
		StoreTotals:   BuildStoreTotals(results),
		MixAndMatch:   BuildMixAndMatch(results),
		SearchResults: results,
	}
}

func roundCents(f float64) float64 { return math.Round(f*100) / 100 }
