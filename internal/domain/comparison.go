package domain

// StoreItemResult is one shopping list item priced at one store.
type StoreItemResult struct {
	ShoppingListItemID   string        `json:"shoppingListItemId"`
	ShoppingListItemName string        `json:"shoppingListItemName"`
	Quantity             int           `json:"quantity"`
	Match                *ProductMatch `json:"match"`
	LineTotal            float64       `json:"lineTotal"`
}

// StoreTotal is the cost of the whole list bought at a single store.
type StoreTotal struct {
	Store             StoreName         `json:"store"`
	StoreName         string            `json:"storeName"`
	Items             []StoreItemResult `json:"items"`
	Total             float64           `json:"total"`
	UnavailableCount  int               `json:"unavailableCount"`
	AllItemsAvailable bool              `json:"allItemsAvailable"`
}

// MixAndMatchItem is the globally cheapest available match for one item.
type MixAndMatchItem struct {
	ShoppingListItemID   string        `json:"shoppingListItemId"`
	ShoppingListItemName string        `json:"shoppingListItemName"`
	Quantity             int           `json:"quantity"`
	CheapestMatch        *ProductMatch `json:"cheapestMatch"`
	LineTotal            float64       `json:"lineTotal"`
}

// MixAndMatchResult is the cheapest-per-item view across all stores.
type MixAndMatchResult struct {
	Items []MixAndMatchItem `json:"items"`
	Total float64           `json:"total"`
}

// StoreError is a sanitized, store-scoped failure summary. The raw
// upstream error text never leaves the backend.
type StoreError struct {
	Store   StoreName `json:"store"`
	Message string    `json:"message"`
}

// ComparisonResponse is the full answer to a shopping list search.
// It is always structurally complete; stores that failed show up in
// StoreErrors rather than aborting the response.
type ComparisonResponse struct {
	StoreTotals   []StoreTotal       `json:"storeTotals"`
	MixAndMatch   MixAndMatchResult  `json:"mixAndMatch"`
	SearchResults []ItemSearchResult `json:"searchResults"`
	StoreErrors   []StoreError       `json:"storeErrors,omitempty"`
}
