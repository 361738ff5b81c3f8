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
	"github.com/cartcompare/backend/internal/infrastructure/session"
	"github.com/cartcompare/backend/internal/pricing"
)

// SessionSource supplies the ephemeral Coles session the search API
// requires. Injected explicitly: Coles is the one store needing extra
// state, and nothing else should know about it.
type SessionSource interface {
	EnsureSession(ctx context.Context) (session.Session, error)
}

type colesUnitPricing struct {
	Price          float64 `json:"price"`
	OfMeasureUnits string  `json:"ofMeasureUnits"`
}

type colesPricing struct {
	Now  float64           `json:"now"`
	Unit *colesUnitPricing `json:"unit"`
}

// colesProduct is the already-decoded shape of one search result entry.
// Non-product entries (ads, banners) share the list and are tagged by
// Type.
type colesProduct struct {
	Type         string        `json:"_type"`
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand"`
	Size         string        `json:"size"`
	Availability bool          `json:"availability"`
	Pricing      *colesPricing `json:"pricing"`
}

type colesResponse struct {
	PageProps struct {
		SearchResults struct {
			Results []colesProduct `json:"results"`
		} `json:"searchResults"`
	} `json:"pageProps"`
}

// ColesAdapter queries the Coles Next.js data API under the session
// manager's current build id.
type ColesAdapter struct {
	client   JSONGetter
	sessions SessionSource
	logger   *zap.Logger
}

func NewColesAdapter(client JSONGetter, sessions SessionSource, logger *zap.Logger) *ColesAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ColesAdapter{client: client, sessions: sessions, logger: logger}
}

func (a *ColesAdapter) Store() domain.StoreName { return domain.StoreColes }

func (a *ColesAdapter) DisplayName() string { return "Coles" }

func (a *ColesAdapter) SearchProduct(ctx context.Context, query string) ([]domain.ProductMatch, error) {
	sess, err := a.sessions.EnsureSession(ctx)
	if err != nil {
		return nil, &domain.StoreAPIError{
			Store: a.Store(), Retryable: true,
			Message: "session refresh failed", Err: err,
		}
	}

	searchURL := fmt.Sprintf(
		"https://www.coles.com.au/_next/data/%s/search/products.json?keyword=%s",
		sess.BuildID, url.QueryEscape(query))

	var resp colesResponse
	opts := httpclient.Options{
		Store:   a.Store(),
		Headers: map[string]string{"Cookie": sess.Cookies},
	}
	if err := a.client.GetJSON(ctx, searchURL, opts, &resp); err != nil {
		return nil, err
	}

	var matches []domain.ProductMatch
	for _, p := range resp.PageProps.SearchResults.Results {
		if p.Type != "PRODUCT" || !p.Availability || p.Pricing == nil {
			continue
		}
		matches = append(matches, a.mapProduct(p))
	}
	a.logger.Debug("coles search mapped",
		zap.String("query", query), zap.Int("matches", len(matches)))
	return matches, nil
}

func (a *ColesAdapter) mapProduct(p colesProduct) domain.ProductMatch {
	var unitPrice *float64
	var unitMeasure *string
	if p.Pricing.Unit != nil {
		unitPrice = floatPtr(p.Pricing.Unit.Price)
		measure := p.Pricing.Unit.OfMeasureUnits
		if measure == "l" {
			measure = "L"
		}
		if measure != "" {
			unitMeasure = strPtr(measure)
		}
	}

	var normalised *float64
	if pkg, ok := pricing.ParsePackageSize(p.Size); ok {
		if v, ok := pricing.ComputeNormalisedUnitPrice(p.Pricing.Now, pkg.Qty, pkg.Unit); ok {
			normalised = floatPtr(v)
		}
	}

	rawURL := fmt.Sprintf("https://www.coles.com.au/product/%s-%d", slugify(p.Name), p.ID)

	return domain.ProductMatch{
		Store:               a.Store(),
		ProductName:         p.Name,
		Brand:               p.Brand,
		Price:               p.Pricing.Now,
		PackageSize:         p.Size,
		UnitPrice:           unitPrice,
		UnitMeasure:         unitMeasure,
		UnitPriceNormalised: normalised,
		Available:           true,
		ProductURL:          validateProductURL(rawURL, a.Store()),
	}
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
