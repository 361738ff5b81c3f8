package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartcompare/backend/internal/domain"
)

const aldiPayload = `{
  "data": [
    {"sku": "000111", "name": "Farmdale Full Cream Milk 2L", "brandName": "Farmdale",
     "sellingSize": "2L", "notForSale": false, "urlSlugText": "farmdale-full-cream-milk",
     "categories": [{"id": "c1", "name": "Dairy & Eggs"}, {"id": "c2", "name": "Milk"}],
     "price": {"amount": 310, "amountRelevantDisplay": "$3.10", "currencyCode": "AUD"}},
    {"sku": "000222", "name": "Farmdale Lite Milk 2L", "brandName": "Farmdale",
     "sellingSize": "2L", "notForSale": false, "urlSlugText": "farmdale-lite-milk",
     "categories": [{"id": "c1", "name": "Dairy & Eggs"}, {"id": "c2", "name": "Milk"}],
     "price": {"amount": 310, "amountRelevantDisplay": "$3.10", "currencyCode": "AUD"}},
    {"sku": "000333", "name": "Milk Chocolate Block 200g", "brandName": "Choceur",
     "sellingSize": "200g", "notForSale": false, "urlSlugText": "milk-chocolate-block",
     "categories": [{"id": "c9", "name": "Pantry"}, {"id": "c10", "name": "Chocolate"}],
     "price": {"amount": 450, "amountRelevantDisplay": "$4.50", "currencyCode": "AUD"}},
    {"sku": "000444", "name": "Delisted Milk 1L", "brandName": "Farmdale",
     "sellingSize": "1L", "notForSale": true, "urlSlugText": "delisted-milk",
     "categories": [{"id": "c1", "name": "Dairy & Eggs"}, {"id": "c2", "name": "Milk"}],
     "price": {"amount": 155, "amountRelevantDisplay": "$1.55", "currencyCode": "AUD"}}
  ]
}`

func TestAldiSearchNarrowsToTopCategoryCluster(t *testing.T) {
	getter := &fakeGetter{payload: aldiPayload}
	a := NewAldiAdapter(getter, nil)

	matches, err := a.SearchProduct(context.Background(), "milk")
	require.NoError(t, err)

	// The chocolate block shares the keyword but not the top hit's
	// category; the delisted product is dropped before narrowing.
	require.Len(t, matches, 2)
	assert.Equal(t, "Farmdale Full Cream Milk 2L", matches[0].ProductName)
	assert.Equal(t, "Farmdale Lite Milk 2L", matches[1].ProductName)

	assert.Contains(t, getter.lastURL, "q=milk")
	assert.Equal(t, "https://www.aldi.com.au", getter.lastOpts.Headers["Origin"])
}

func TestAldiMapProductConvertsCents(t *testing.T) {
	getter := &fakeGetter{payload: aldiPayload}
	a := NewAldiAdapter(getter, nil)

	matches, err := a.SearchProduct(context.Background(), "milk")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	m := matches[0]
	assert.Equal(t, domain.StoreAldi, m.Store)
	assert.Equal(t, "Farmdale", m.Brand)
	assert.Equal(t, 3.10, m.Price)
	assert.Equal(t, "2L", m.PackageSize)
	require.NotNil(t, m.UnitPrice)
	assert.Equal(t, 1.55, *m.UnitPrice)
	require.NotNil(t, m.UnitMeasure)
	assert.Equal(t, "L", *m.UnitMeasure)
	require.NotNil(t, m.UnitPriceNormalised)
	assert.Equal(t, 0.155, *m.UnitPriceNormalised)
	require.NotNil(t, m.ProductURL)
	assert.Equal(t, "https://www.aldi.com.au/product/farmdale-full-cream-milk-000111", *m.ProductURL)
}

func TestAldiProductWithoutSlugHasNoURL(t *testing.T) {
	payload := `{"data": [
	  {"sku": "000555", "name": "Mystery Item", "brandName": "", "sellingSize": "",
	   "notForSale": false, "urlSlugText": "", "categories": [],
	   "price": {"amount": 199, "amountRelevantDisplay": "$1.99", "currencyCode": "AUD"}}
	]}`
	a := NewAldiAdapter(&fakeGetter{payload: payload}, nil)

	matches, err := a.SearchProduct(context.Background(), "mystery")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Nil(t, matches[0].ProductURL)
	assert.Nil(t, matches[0].UnitPrice)
	assert.Equal(t, 1.99, matches[0].Price)
}
