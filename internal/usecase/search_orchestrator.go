package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cartcompare/backend/internal/domain"
	"github.com/cartcompare/backend/internal/infrastructure/ratelimit"
)

// SearchOrchestrator fans a shopping list out across every store
// adapter, tolerates per-store failure, and caches whole responses by a
// content-derived key. It owns the cache and the adapter set; the rate
// limiter is shared state it references.
type SearchOrchestrator struct {
	adapters []domain.StoreAdapter
	limiter  *ratelimit.Limiter
	cache    domain.ComparisonCache
	limits   Limits
	logger   *zap.Logger
}

func NewSearchOrchestrator(
	adapters []domain.StoreAdapter,
	limiter *ratelimit.Limiter,
	cache domain.ComparisonCache,
	limits Limits,
	logger *zap.Logger,
) *SearchOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchOrchestrator{
		adapters: adapters,
		limiter:  limiter,
		cache:    cache,
		limits:   limits,
		logger:   logger,
	}
}

// outcome is one (adapter, item) fan-out result. Success and failure are
// both data; neither unwinds the fan-out.
type outcome struct {
	matches []domain.ProductMatch
	err     error
}

// Search prices the list across all stores. It always returns a
// structurally complete response unless validation fails; stores that
// errored appear in StoreErrors with a sanitized summary.
func (o *SearchOrchestrator) Search(ctx context.Context, items []domain.ShoppingListItem) (*domain.ComparisonResponse, error) {
	if err := ValidateItems(items, o.limits); err != nil {
		return nil, err
	}

	key := buildCacheKey(items)
	if cached, err := o.cache.Get(ctx, key); err == nil {
		o.logger.Debug("search served from cache", zap.String("key", key))
		return cached, nil
	}

	// Fan out: one goroutine per (adapter, item) cell, each call gated
	// by the adapter's rate-limiter key. Cells are disjoint, so the grid
	// needs no locking; the WaitGroup is the only synchronisation.
	grid := make([][]outcome, len(o.adapters))
	var wg sync.WaitGroup
	for ai, adapter := range o.adapters {
		grid[ai] = make([]outcome, len(items))
		for ii, item := range items {
			wg.Add(1)
			go func(ai, ii int, adapter domain.StoreAdapter, query string) {
				defer wg.Done()
				err := o.limiter.Execute(ctx, string(adapter.Store()), func() error {
					matches, err := adapter.SearchProduct(ctx, query)
					grid[ai][ii].matches = matches
					return err
				})
				grid[ai][ii].err = err
			}(ai, ii, adapter, item.Name)
		}
	}
	wg.Wait()

	results := o.mergeResults(items, grid)
	response := BuildComparisonResponse(results)
	response.StoreErrors = o.collectStoreErrors(grid, len(items))

	if err := o.cache.Set(ctx, key, response); err != nil {
		// Cache bookkeeping failures just mean a fresh fetch next time.
		o.logger.Warn("failed to cache search response", zap.Error(err))
	}
	return response, nil
}

// mergeResults combines the fan-out grid into per-item match lists in
// adapter fan-out order. Brand-specific items keep only each store's
// first (most relevant) match.
func (o *SearchOrchestrator) mergeResults(items []domain.ShoppingListItem, grid [][]outcome) []domain.ItemSearchResult {
	results := make([]domain.ItemSearchResult, len(items))
	for ii, item := range items {
		var matches []domain.ProductMatch
		for ai := range o.adapters {
			cell := grid[ai][ii]
			if cell.err != nil {
				continue
			}
			adapterMatches := cell.matches
			if item.IsBrandSpecific && len(adapterMatches) > 1 {
				adapterMatches = adapterMatches[:1]
			}
			matches = append(matches, adapterMatches...)
		}
		results[ii] = domain.ItemSearchResult{
			ShoppingListItemID:   item.ID,
			ShoppingListItemName: item.Name,
			Quantity:             item.Quantity,
			Matches:              matches,
		}
	}
	return results
}

// collectStoreErrors summarises per-store failures without leaking raw
// upstream error text.
func (o *SearchOrchestrator) collectStoreErrors(grid [][]outcome, itemCount int) []domain.StoreError {
	var storeErrors []domain.StoreError
	for ai, adapter := range o.adapters {
		failed := 0
		for ii := 0; ii < itemCount; ii++ {
			if grid[ai][ii].err != nil {
				failed++
				o.logger.Warn("store search failed",
					zap.String("store", string(adapter.Store())),
					zap.Error(grid[ai][ii].err))
			}
		}
		if failed == 0 {
			continue
		}
		msg := fmt.Sprintf("%s: %d of %d item lookups failed", adapter.DisplayName(), failed, itemCount)
		if failed == itemCount {
			msg = fmt.Sprintf("%s: store unavailable", adapter.DisplayName())
		}
		storeErrors = append(storeErrors, domain.StoreError{
			Store:   adapter.Store(),
			Message: msg,
		})
	}
	return storeErrors
}

// buildCacheKey derives an order-independent digest of the list: items
// sorted by name, then quantity/name/brand-flag joined and hashed.
func buildCacheKey(items []domain.ShoppingListItem) string {
	sorted := make([]domain.ShoppingListItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	parts := make([]string, len(sorted))
	for i, item := range sorted {
		flag := "G"
		if item.IsBrandSpecific {
			flag = "B"
		}
		parts[i] = fmt.Sprintf("%d×%s×%s", item.Quantity, item.Name, flag)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}
