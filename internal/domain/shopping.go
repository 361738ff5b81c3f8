package domain

// ShoppingListItem is one entry of the list a caller wants priced.
// Items are immutable once submitted to a search.
type ShoppingListItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	// IsBrandSpecific marks an item where the shopper wants exactly the
	// named product, so only each store's most relevant match counts.
	IsBrandSpecific bool `json:"isBrandSpecific"`
}
