// Package stores implements one adapter per supported retailer, mapping
// each store's decoded search payload into the common ProductMatch shape.
package stores

import (
	"context"
	"math"

	"github.com/cartcompare/backend/internal/infrastructure/httpclient"
)

// JSONGetter is the slice of the fetch client the adapters consume.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, opts httpclient.Options, out any) error
}

const searchPageSize = 10

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func roundCents(f float64) float64 { return math.Round(f*100) / 100 }
