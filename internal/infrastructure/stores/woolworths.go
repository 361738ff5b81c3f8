package stores

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cartcompare/backend/internal/domain"
	"github.com/cartcompare/backend/internal/infrastructure/httpclient"
	"github.com/cartcompare/backend/internal/pricing"
)

// woolworthsProduct is the already-decoded shape of one product entry in
// the Woolworths search payload.
type woolworthsProduct struct {
	DisplayName string   `json:"DisplayName"`
	Price       float64  `json:"Price"`
	PackageSize string   `json:"PackageSize"`
	CupPrice    *float64 `json:"CupPrice"`
	CupMeasure  string   `json:"CupMeasure"`
	Brand       string   `json:"Brand"`
	IsAvailable bool     `json:"IsAvailable"`
}

// Woolworths groups products; the groups themselves carry no signal for
// a keyword search and are flattened away.
type woolworthsResponse struct {
	Products []struct {
		Products []woolworthsProduct `json:"Products"`
	} `json:"Products"`
}

// WoolworthsAdapter queries the Woolworths online-shopping search API.
type WoolworthsAdapter struct {
	client JSONGetter
	logger *zap.Logger
}

func NewWoolworthsAdapter(client JSONGetter, logger *zap.Logger) *WoolworthsAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WoolworthsAdapter{client: client, logger: logger}
}

func (a *WoolworthsAdapter) Store() domain.StoreName { return domain.StoreWoolworths }

func (a *WoolworthsAdapter) DisplayName() string { return "Woolworths" }

func (a *WoolworthsAdapter) SearchProduct(ctx context.Context, query string) ([]domain.ProductMatch, error) {
	searchURL := fmt.Sprintf(
		"https://www.woolworths.com.au/apis/ui/Search/products?searchTerm=%s&pageSize=%d",
		url.QueryEscape(query), searchPageSize)

	var resp woolworthsResponse
	if err := a.client.GetJSON(ctx, searchURL, httpclient.Options{Store: a.Store()}, &resp); err != nil {
		return nil, err
	}

	var matches []domain.ProductMatch
	for _, group := range resp.Products {
		for _, p := range group.Products {
			if !p.IsAvailable {
				continue
			}
			matches = append(matches, a.mapProduct(p))
		}
	}
	a.logger.Debug("woolworths search mapped",
		zap.String("query", query), zap.Int("matches", len(matches)))
	return matches, nil
}

func (a *WoolworthsAdapter) mapProduct(p woolworthsProduct) domain.ProductMatch {
	var unitMeasure *string
	if p.CupMeasure != "" {
		unitMeasure = strPtr(normaliseCupMeasure(p.CupMeasure))
	}

	var normalised *float64
	if pkg, ok := pricing.ParsePackageSize(p.PackageSize); ok {
		if v, ok := pricing.ComputeNormalisedUnitPrice(p.Price, pkg.Qty, pkg.Unit); ok {
			normalised = floatPtr(v)
		}
	}

	rawURL := "https://www.woolworths.com.au/shop/search/products?searchTerm=" +
		url.QueryEscape(p.DisplayName)

	return domain.ProductMatch{
		Store:               a.Store(),
		ProductName:         p.DisplayName,
		Brand:               p.Brand,
		Price:               p.Price,
		PackageSize:         p.PackageSize,
		UnitPrice:           p.CupPrice,
		UnitMeasure:         unitMeasure,
		UnitPriceNormalised: normalised,
		Available:           true,
		ProductURL:          validateProductURL(rawURL, a.Store()),
	}
}

var cupMeasureRe = regexp.MustCompile(`^(\d*)([a-zA-Z]+)$`)

// normaliseCupMeasure cleans up Woolworths shelf measures: "1L" -> "L",
// "1KG" -> "kg", "100G" -> "100g". Litres keep their conventional
// uppercase L.
func normaliseCupMeasure(measure string) string {
	stripped := measure
	if len(measure) > 1 && measure[0] == '1' && isLetter(measure[1]) {
		stripped = measure[1:]
	}
	m := cupMeasureRe.FindStringSubmatch(stripped)
	if m == nil {
		return stripped
	}
	unit := strings.ToLower(m[2])
	if unit == "l" {
		unit = "L"
	}
	return m[1] + unit
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
