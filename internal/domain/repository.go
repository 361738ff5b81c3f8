package domain

import "context"

// StoreAdapter translates one retailer's search API into the common
// ProductMatch shape. One implementation exists per store.
type StoreAdapter interface {
	Store() StoreName
	DisplayName() string
	// SearchProduct runs one store search and maps in-stock catalogue
	// entries to matches, in the store's own relevance order.
	SearchProduct(ctx context.Context, query string) ([]ProductMatch, error)
}

// ComparisonCache stores assembled comparison responses keyed by a
// canonical digest of the shopping list.
type ComparisonCache interface {
	// Get returns the cached response or ErrCacheMiss.
	Get(ctx context.Context, key string) (*ComparisonResponse, error)
	Set(ctx context.Context, key string, response *ComparisonResponse) error
}
