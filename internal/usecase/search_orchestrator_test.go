package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartcompare/backend/internal/domain"
	"github.com/cartcompare/backend/internal/infrastructure/cache"
	"github.com/cartcompare/backend/internal/infrastructure/ratelimit"
)

// fakeAdapter serves canned matches keyed by query and counts calls.
type fakeAdapter struct {
	store   domain.StoreName
	display string
	matches map[string][]domain.ProductMatch
	err     error

	mu    sync.Mutex
	calls int
}

func (f *fakeAdapter) Store() domain.StoreName { return f.store }

func (f *fakeAdapter) DisplayName() string { return f.display }

func (f *fakeAdapter) SearchProduct(ctx context.Context, query string) ([]domain.ProductMatch, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.matches[query], nil
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func adapterMatch(store domain.StoreName, name string, price float64) domain.ProductMatch {
	return domain.ProductMatch{Store: store, ProductName: name, Price: price, Available: true}
}

func newOrchestrator(adapters ...domain.StoreAdapter) *SearchOrchestrator {
	return NewSearchOrchestrator(
		adapters,
		ratelimit.New(2, 50),
		cache.NewResponseCache(0, 0),
		Limits{},
		nil,
	)
}

func TestSearchFansOutAcrossAllAdapters(t *testing.T) {
	woolies := &fakeAdapter{
		store: domain.StoreWoolworths, display: "Woolworths",
		matches: map[string][]domain.ProductMatch{
			"milk": {adapterMatch(domain.StoreWoolworths, "Milk 2L", 3.10)},
		},
	}
	coles := &fakeAdapter{
		store: domain.StoreColes, display: "Coles",
		matches: map[string][]domain.ProductMatch{
			"milk": {adapterMatch(domain.StoreColes, "Milk 2L", 3.00)},
		},
	}
	o := newOrchestrator(woolies, coles)

	resp, err := o.Search(context.Background(), []domain.ShoppingListItem{
		{ID: "i1", Name: "milk", Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, resp.SearchResults, 1)
	assert.Len(t, resp.SearchResults[0].Matches, 2)
	assert.Empty(t, resp.StoreErrors)
	assert.Equal(t, 1, woolies.callCount())
	assert.Equal(t, 1, coles.callCount())
}

func TestSearchRejectsInvalidList(t *testing.T) {
	o := newOrchestrator(&fakeAdapter{store: domain.StoreWoolworths, display: "Woolworths"})

	_, err := o.Search(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSearchServedFromCacheRegardlessOfItemOrder(t *testing.T) {
	adapter := &fakeAdapter{
		store: domain.StoreWoolworths, display: "Woolworths",
		matches: map[string][]domain.ProductMatch{
			"milk":  {adapterMatch(domain.StoreWoolworths, "Milk 2L", 3.10)},
			"bread": {adapterMatch(domain.StoreWoolworths, "Bread", 2.50)},
		},
	}
	o := newOrchestrator(adapter)
	ctx := context.Background()

	first, err := o.Search(ctx, []domain.ShoppingListItem{
		{ID: "i1", Name: "milk", Quantity: 1},
		{ID: "i2", Name: "bread", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.callCount())

	// Same list, reversed order: cache hit, no new adapter calls.
	second, err := o.Search(ctx, []domain.ShoppingListItem{
		{ID: "i2", Name: "bread", Quantity: 2},
		{ID: "i1", Name: "milk", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.callCount())
	assert.Same(t, first, second)
}

func TestSearchDifferentQuantityMissesCache(t *testing.T) {
	adapter := &fakeAdapter{
		store: domain.StoreWoolworths, display: "Woolworths",
		matches: map[string][]domain.ProductMatch{
			"milk": {adapterMatch(domain.StoreWoolworths, "Milk 2L", 3.10)},
		},
	}
	o := newOrchestrator(adapter)
	ctx := context.Background()

	_, err := o.Search(ctx, []domain.ShoppingListItem{{ID: "i1", Name: "milk", Quantity: 1}})
	require.NoError(t, err)
	_, err = o.Search(ctx, []domain.ShoppingListItem{{ID: "i1", Name: "milk", Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, 2, adapter.callCount())
}

func TestSearchPartialFailureYieldsStoreError(t *testing.T) {
	healthy := &fakeAdapter{
		store: domain.StoreWoolworths, display: "Woolworths",
		matches: map[string][]domain.ProductMatch{
			"milk": {adapterMatch(domain.StoreWoolworths, "Milk 2L", 3.10)},
		},
	}
	broken := &fakeAdapter{
		store: domain.StoreColes, display: "Coles",
		err:   errors.New("upstream 503: internal gateway panic at 10.0.3.7"),
	}
	o := newOrchestrator(healthy, broken)

	resp, err := o.Search(context.Background(), []domain.ShoppingListItem{
		{ID: "i1", Name: "milk", Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, resp.SearchResults, 1)
	require.Len(t, resp.SearchResults[0].Matches, 1)
	assert.Equal(t, domain.StoreWoolworths, resp.SearchResults[0].Matches[0].Store)

	require.Len(t, resp.StoreErrors, 1)
	assert.Equal(t, domain.StoreColes, resp.StoreErrors[0].Store)
	assert.Equal(t, "Coles: store unavailable", resp.StoreErrors[0].Message)
	assert.NotContains(t, resp.StoreErrors[0].Message, "10.0.3.7")
}

func TestSearchPartialFailureCountsFailedLookups(t *testing.T) {
	flaky := &flakyAdapter{
		store: domain.StoreAldi, display: "Aldi",
		failFor: "bread",
		matches: map[string][]domain.ProductMatch{
			"milk": {adapterMatch(domain.StoreAldi, "Milk 2L", 3.10)},
		},
	}
	o := newOrchestrator(flaky)

	resp, err := o.Search(context.Background(), []domain.ShoppingListItem{
		{ID: "i1", Name: "milk", Quantity: 1},
		{ID: "i2", Name: "bread", Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, resp.StoreErrors, 1)
	assert.Equal(t, "Aldi: 1 of 2 item lookups failed", resp.StoreErrors[0].Message)
}

type flakyAdapter struct {
	store   domain.StoreName
	display string
	failFor string
	matches map[string][]domain.ProductMatch
}

func (f *flakyAdapter) Store() domain.StoreName { return f.store }

func (f *flakyAdapter) DisplayName() string { return f.display }

func (f *flakyAdapter) SearchProduct(ctx context.Context, query string) ([]domain.ProductMatch, error) {
	if query == f.failFor {
		return nil, errors.New("timeout")
	}
	return f.matches[query], nil
}

func TestSearchBrandSpecificKeepsOneMatchPerStore(t *testing.T) {
	adapter := &fakeAdapter{
		store: domain.StoreWoolworths, display: "Woolworths",
		matches: map[string][]domain.ProductMatch{
			"vegemite": {
				adapterMatch(domain.StoreWoolworths, "Vegemite 380g", 6.00),
				adapterMatch(domain.StoreWoolworths, "Vegemite 560g", 8.50),
				adapterMatch(domain.StoreWoolworths, "Promite 290g", 5.20),
			},
		},
	}
	o := newOrchestrator(adapter)

	resp, err := o.Search(context.Background(), []domain.ShoppingListItem{
		{ID: "i1", Name: "vegemite", Quantity: 1, IsBrandSpecific: true},
	})
	require.NoError(t, err)

	require.Len(t, resp.SearchResults, 1)
	require.Len(t, resp.SearchResults[0].Matches, 1)
	assert.Equal(t, "Vegemite 380g", resp.SearchResults[0].Matches[0].ProductName)
}

func TestSearchAllStoresFailStillReturnsResponse(t *testing.T) {
	o := newOrchestrator(
		&fakeAdapter{store: domain.StoreWoolworths, display: "Woolworths", err: errors.New("down")},
		&fakeAdapter{store: domain.StoreColes, display: "Coles", err: errors.New("down")},
	)

	resp, err := o.Search(context.Background(), []domain.ShoppingListItem{
		{ID: "i1", Name: "milk", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Len(t, resp.StoreErrors, 2)
	require.Len(t, resp.SearchResults, 1)
	assert.Empty(t, resp.SearchResults[0].Matches)
	assert.Len(t, resp.StoreTotals, len(domain.AllStores))
}

func TestBuildCacheKeyOrderIndependent(t *testing.T) {
	a := []domain.ShoppingListItem{
		{ID: "x", Name: "milk", Quantity: 1},
		{ID: "y", Name: "bread", Quantity: 2, IsBrandSpecific: true},
	}
	b := []domain.ShoppingListItem{
		{ID: "p", Name: "bread", Quantity: 2, IsBrandSpecific: true},
		{ID: "q", Name: "milk", Quantity: 1},
	}
	assert.Equal(t, buildCacheKey(a), buildCacheKey(b))

	c := []domain.ShoppingListItem{
		{Name: "bread", Quantity: 2},
		{Name: "milk", Quantity: 1},
	}
	assert.NotEqual(t, buildCacheKey(a), buildCacheKey(c), "brand flag must feed the key")
}
