package stores

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/cartcompare/backend/internal/domain"
	"github.com/cartcompare/backend/internal/infrastructure/httpclient"
	"github.com/cartcompare/backend/internal/pricing"
)

type aldiCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// aldiProduct is the already-decoded shape of one ALDI search entry.
// Categories are ordered general to specific. Price amounts are cents.
type aldiProduct struct {
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	BrandName   string         `json:"brandName"`
	SellingSize string         `json:"sellingSize"`
	NotForSale  bool           `json:"notForSale"`
	URLSlugText string         `json:"urlSlugText"`
	Categories  []aldiCategory `json:"categories"`
	Price       struct {
		Amount                float64 `json:"amount"`
		AmountRelevantDisplay string  `json:"amountRelevantDisplay"`
		CurrencyCode          string  `json:"currencyCode"`
	} `json:"price"`
}

type aldiResponse struct {
	Data []aldiProduct `json:"data"`
}

// AldiAdapter queries the ALDI product search API. ALDI keyword searches
// span departments, so results are narrowed to the top hit's category
// cluster before mapping.
type AldiAdapter struct {
	client JSONGetter
	logger *zap.Logger
}

// aldiHeaders are required by the ALDI API gateway; requests without a
// storefront origin are rejected.
var aldiHeaders = map[string]string{
	"Origin":  "https://www.aldi.com.au",
	"Referer": "https://www.aldi.com.au/",
}

func NewAldiAdapter(client JSONGetter, logger *zap.Logger) *AldiAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AldiAdapter{client: client, logger: logger}
}

func (a *AldiAdapter) Store() domain.StoreName { return domain.StoreAldi }

func (a *AldiAdapter) DisplayName() string { return "Aldi" }

func (a *AldiAdapter) SearchProduct(ctx context.Context, query string) ([]domain.ProductMatch, error) {
	searchURL := fmt.Sprintf(
		"https://api.aldi.com.au/v3/product-search?q=%s&serviceType=walk-in",
		url.QueryEscape(query))

	var resp aldiResponse
	opts := httpclient.Options{Store: a.Store(), Headers: aldiHeaders}
	if err := a.client.GetJSON(ctx, searchURL, opts, &resp); err != nil {
		return nil, err
	}

	inStock := make([]aldiProduct, 0, len(resp.Data))
	for _, p := range resp.Data {
		if p.NotForSale {
			continue
		}
		inStock = append(inStock, p)
	}

	paths := make([][]string, len(inStock))
	for i, p := range inStock {
		path := make([]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			path = append(path, c.Name)
		}
		paths[i] = path
	}

	var matches []domain.ProductMatch
	for _, i := range narrowToRelevant(paths) {
		matches = append(matches, a.mapProduct(inStock[i]))
	}
	a.logger.Debug("aldi search mapped",
		zap.String("query", query),
		zap.Int("candidates", len(inStock)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

func (a *AldiAdapter) mapProduct(p aldiProduct) domain.ProductMatch {
	price := roundCents(p.Price.Amount / 100)

	var unitPrice *float64
	var unitMeasure *string
	var normalised *float64
	if pkg, ok := pricing.ParsePackageSize(p.SellingSize); ok {
		if v, m, ok := pricing.ComputeDisplayUnitPrice(price, pkg.Qty, pkg.Unit); ok {
			unitPrice = floatPtr(v)
			unitMeasure = strPtr(m)
		}
		if v, ok := pricing.ComputeNormalisedUnitPrice(price, pkg.Qty, pkg.Unit); ok {
			normalised = floatPtr(v)
		}
	}

	var productURL *string
	if p.URLSlugText != "" {
		rawURL := fmt.Sprintf("https://www.aldi.com.au/product/%s-%s", p.URLSlugText, p.SKU)
		productURL = validateProductURL(rawURL, a.Store())
	}

	return domain.ProductMatch{
		Store:               a.Store(),
		ProductName:         p.Name,
		Brand:               p.BrandName,
		Price:               price,
		PackageSize:         p.SellingSize,
		UnitPrice:           unitPrice,
		UnitMeasure:         unitMeasure,
		UnitPriceNormalised: normalised,
		Available:           true,
		ProductURL:          productURL,
	}
}
