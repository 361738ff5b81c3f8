package domain

// StoreName identifies one of the supported grocery retailers.
type StoreName string

const (
	StoreWoolworths StoreName = "woolworths"
	StoreColes      StoreName = "coles"
	StoreAldi       StoreName = "aldi"
	StoreHarrisFarm StoreName = "harrisfarm"
)

// AllStores lists every supported store in fan-out order.
var AllStores = []StoreName{StoreWoolworths, StoreColes, StoreAldi, StoreHarrisFarm}

// StoreDisplayNames maps store identifiers to human-readable names.
var StoreDisplayNames = map[StoreName]string{
	StoreWoolworths: "Woolworths",
	StoreColes:      "Coles",
	StoreAldi:       "Aldi",
	StoreHarrisFarm: "Harris Farm",
}

// ProductMatch is one store's candidate product for a shopping list item.
// Instances are built fresh per search and never mutated afterwards.
type ProductMatch struct {
	Store       StoreName `json:"store"`
	ProductName string    `json:"productName"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	PackageSize string    `json:"packageSize"`
	// UnitPrice and UnitMeasure carry the store's own shelf unit pricing,
	// when the store provides one.
	UnitPrice   *float64 `json:"unitPrice"`
	UnitMeasure *string  `json:"unitMeasure"`
	// UnitPriceNormalised is the price per 100 base units (100g or 100ml),
	// computed from the raw price and package size. It is the only figure
	// safe for cross-store value comparison.
	UnitPriceNormalised *float64 `json:"unitPriceNormalised"`
	Available           bool     `json:"available"`
	ProductURL          *string  `json:"productUrl"`
}

// ItemSearchResult is the union of all stores' matches for one list item.
// Matches appear in store fan-out order; within a store, the store's own
// relevance order is preserved.
type ItemSearchResult struct {
	ShoppingListItemID   string         `json:"shoppingListItemId"`
	ShoppingListItemName string         `json:"shoppingListItemName"`
	Quantity             int            `json:"quantity"`
	Matches              []ProductMatch `json:"matches"`
}
