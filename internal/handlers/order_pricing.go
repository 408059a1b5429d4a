package handlers

import (
	"math"

	"backend/internal/models"
)

const (
	taxRate         = 0.10
	shippingFlat    = 10.0
	freeShippingMin = 100.0
)

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func orderItemsPrice(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return round2(total)
}

func orderTaxPrice(itemsPrice float64) float64 {
	return round2(itemsPrice * taxRate)
}

// orderShippingPrice is a flat fee waived once the items subtotal reaches the
// free-shipping threshold.
func orderShippingPrice(itemsPrice float64) float64 {
	if itemsPrice >= freeShippingMin {
		return 0
	}
	return shippingFlat
}

// orderTotals computes the item subtotal, tax, shipping and grand total for a
// snapshotted item list.
func orderTotals(items []models.OrderItem) (itemsPrice, taxPrice, shippingPrice, totalPrice float64) {
	itemsPrice = orderItemsPrice(items)
	taxPrice = orderTaxPrice(itemsPrice)
	shippingPrice = orderShippingPrice(itemsPrice)
	totalPrice = round2(itemsPrice + taxPrice + shippingPrice)
	return itemsPrice, taxPrice, shippingPrice, totalPrice
}
