package stores

import (
	"net/url"

	"github.com/cartcompare/backend/internal/domain"
)

// allowedProductHosts are the public storefront hosts an outbound product
// link may point at, per store. Unlike the fetch allowlist, these are
// exact display hosts.
var allowedProductHosts = map[domain.StoreName][]string{
	domain.StoreWoolworths: {"www.woolworths.com.au"},
	domain.StoreColes:      {"www.coles.com.au"},
	domain.StoreAldi:       {"www.aldi.com.au"},
	domain.StoreHarrisFarm: {"www.harrisfarm.com.au"},
}

// validateProductURL re-checks an outbound product link before it is
// surfaced to the caller. Invalid links degrade to nil; a bad URL from a
// store payload is never worth failing a search over.
func validateProductURL(raw string, store domain.StoreName) *string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	if parsed.Scheme != "https" {
		return nil
	}
	for _, host := range allowedProductHosts[store] {
		if parsed.Hostname() == host {
			s := parsed.String()
			return &s
		}
	}
	return nil
}
