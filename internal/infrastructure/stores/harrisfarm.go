package stores

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/cartcompare/backend/internal/domain"
	"github.com/cartcompare/backend/internal/infrastructure/httpclient"
	"github.com/cartcompare/backend/internal/pricing"
)

// shopifyProduct is the already-decoded shape of one Shopify suggest
// entry. Prices arrive as strings; tags carry the collection taxonomy.
type shopifyProduct struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Handle    string   `json:"handle"`
	Available bool     `json:"available"`
	Price     string   `json:"price"`
	PriceMax  string   `json:"price_max"`
	Tags      []string `json:"tags"`
	Vendor    string   `json:"vendor"`
}

type shopifySuggestResponse struct {
	Resources struct {
		Results struct {
			Products []shopifyProduct `json:"products"`
		} `json:"results"`
	} `json:"resources"`
}

// HarrisFarmAdapter queries the Harris Farm Shopify storefront suggest
// API. Suggest results mix collections, so they are narrowed to the top
// hit's tag cluster before mapping.
type HarrisFarmAdapter struct {
	client JSONGetter
	logger *zap.Logger
}

func NewHarrisFarmAdapter(client JSONGetter, logger *zap.Logger) *HarrisFarmAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HarrisFarmAdapter{client: client, logger: logger}
}

func (a *HarrisFarmAdapter) Store() domain.StoreName { return domain.StoreHarrisFarm }

func (a *HarrisFarmAdapter) DisplayName() string { return "Harris Farm" }

func (a *HarrisFarmAdapter) SearchProduct(ctx context.Context, query string) ([]domain.ProductMatch, error) {
	searchURL := fmt.Sprintf(
		"https://www.harrisfarm.com.au/search/suggest.json?q=%s&resources[type]=product&resources[limit]=%d",
		url.QueryEscape(query), searchPageSize)

	var resp shopifySuggestResponse
	if err := a.client.GetJSON(ctx, searchURL, httpclient.Options{Store: a.Store()}, &resp); err != nil {
		return nil, err
	}

	inStock := make([]shopifyProduct, 0, len(resp.Resources.Results.Products))
	for _, p := range resp.Resources.Results.Products {
		if !p.Available {
			continue
		}
		inStock = append(inStock, p)
	}

	paths := make([][]string, len(inStock))
	for i, p := range inStock {
		paths[i] = p.Tags
	}

	var matches []domain.ProductMatch
	for _, i := range narrowToRelevant(paths) {
		matches = append(matches, a.mapProduct(inStock[i]))
	}
	a.logger.Debug("harris farm search mapped",
		zap.String("query", query),
		zap.Int("candidates", len(inStock)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

func (a *HarrisFarmAdapter) mapProduct(p shopifyProduct) domain.ProductMatch {
	raw := p.PriceMax
	if raw == "" {
		raw = p.Price
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		price = 0
	}

	// Harris Farm has no size field; the title usually embeds one
	// ("Lurpak Butter 250g").
	var packageSize string
	if m := titleSizeRe.FindStringSubmatch(p.Title); m != nil {
		packageSize = m[1] + m[2]
	}
	var unitPrice *float64
	var unitMeasure *string
	var normalised *float64
	if pkg, ok := pricing.ParsePackageSize(p.Title); ok {
		if v, m, ok := pricing.ComputeDisplayUnitPrice(price, pkg.Qty, pkg.Unit); ok {
			unitPrice = floatPtr(v)
			unitMeasure = strPtr(m)
		}
		if v, ok := pricing.ComputeNormalisedUnitPrice(price, pkg.Qty, pkg.Unit); ok {
			normalised = floatPtr(v)
		}
	}

	brand := p.Vendor
	if brand == "HFM" {
		brand = "Harris Farm"
	}

	var productURL *string
	if p.Handle != "" {
		rawURL := "https://www.harrisfarm.com.au/products/" + p.Handle
		productURL = validateProductURL(rawURL, a.Store())
	}

	return domain.ProductMatch{
		Store:               a.Store(),
		ProductName:         p.Title,
		Brand:               brand,
		Price:               price,
		PackageSize:         packageSize,
		UnitPrice:           unitPrice,
		UnitMeasure:         unitMeasure,
		UnitPriceNormalised: normalised,
		Available:           true,
		ProductURL:          productURL,
	}
}

var titleSizeRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|ml|g|l)\b`)
