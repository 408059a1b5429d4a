package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func queryGetter(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseProductListQueryPriceBounds(t *testing.T) {
	q, err := parseProductListQuery(queryGetter(map[string]string{
		"minPrice": "50",
		"maxPrice": "100",
	}))
	require.NoError(t, err)
	require.NotNil(t, q.MinPrice)
	require.NotNil(t, q.MaxPrice)
	assert.Equal(t, 50.0, *q.MinPrice)
	assert.Equal(t, 100.0, *q.MaxPrice)
}

func TestParseProductListQueryRejectsBadPrices(t *testing.T) {
	for _, values := range []map[string]string{
		{"minPrice": "abc"},
		{"maxPrice": "-1"},
		{"minPrice": "-0.01"},
	} {
		_, err := parseProductListQuery(queryGetter(values))
		assert.Error(t, err, "values=%v", values)
	}
}

func TestBuildProductFilterEmpty(t *testing.T) {
	filter, err := buildProductFilter(productListQuery{})
	require.NoError(t, err)
	assert.Empty(t, filter)
}

func TestBuildProductFilterCategoryExactMatch(t *testing.T) {
	id := primitive.NewObjectID()
	filter, err := buildProductFilter(productListQuery{Category: id.Hex()})
	require.NoError(t, err)
	assert.Equal(t, id, filter["category"])
}

func TestBuildProductFilterRejectsBadCategory(t *testing.T) {
	_, err := buildProductFilter(productListQuery{Category: "not-an-id"})
	assert.Error(t, err)
}

func TestBuildProductFilterInclusivePriceRange(t *testing.T) {
	min, max := 50.0, 100.0
	filter, err := buildProductFilter(productListQuery{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)

	price, ok := filter["price"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 50.0, price["$gte"])
	assert.Equal(t, 100.0, price["$lte"])
}

func TestBuildProductFilterSearchORsOverFields(t *testing.T) {
	filter, err := buildProductFilter(productListQuery{Search: "boot"})
	require.NoError(t, err)

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	fields := make([]string, 0, 3)
	for _, clause := range or {
		m := clause.(bson.M)
		for field, pattern := range m {
			fields = append(fields, field)
			p := pattern.(bson.M)
			assert.Equal(t, "boot", p["$regex"])
			assert.Equal(t, "i", p["$options"])
		}
	}
	assert.ElementsMatch(t, []string{"name", "description", "brand"}, fields)
}

func TestBuildProductFilterEscapesRegexMeta(t *testing.T) {
	filter, err := buildProductFilter(productListQuery{Brand: "A+B (new)"})
	require.NoError(t, err)

	brand := filter["brand"].(bson.M)
	assert.Equal(t, `A\+B \(new\)`, brand["$regex"])
}
