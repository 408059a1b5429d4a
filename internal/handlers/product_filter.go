package handlers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productListQuery struct {
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

func parseProductListQuery(get func(string) string) (productListQuery, error) {
	q := productListQuery{
		Category: strings.TrimSpace(get("category")),
		Brand:    strings.TrimSpace(get("brand")),
		Search:   strings.TrimSpace(get("search")),
	}

	if raw := strings.TrimSpace(get("minPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			return productListQuery{}, errors.New("invalid minPrice")
		}
		q.MinPrice = &value
	}

	if raw := strings.TrimSpace(get("maxPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			return productListQuery{}, errors.New("invalid maxPrice")
		}
		q.MaxPrice = &value
	}

	return q, nil
}

// buildProductFilter converts the parsed query into a mongo filter. Brand and
// search are case-insensitive substring matches; search ORs over
// name/description/brand; price bounds are inclusive.
func buildProductFilter(q productListQuery) (bson.M, error) {
	filter := bson.M{}

	if q.Category != "" {
		categoryID, err := primitive.ObjectIDFromHex(q.Category)
		if err != nil {
			return nil, errors.New("invalid category id")
		}
		filter["category"] = categoryID
	}

	if q.Brand != "" {
		filter["brand"] = bson.M{"$regex": regexp.QuoteMeta(q.Brand), "$options": "i"}
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}

	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"brand": pattern},
		}
	}

	return filter, nil
}
