package handlers

import (
	"testing"

	"backend/internal/models"
)

func TestOrderItemsPrice(t *testing.T) {
	items := []models.OrderItem{
		{Price: 19.99, Quantity: 2},
		{Price: 5.0, Quantity: 1},
	}
	if got := orderItemsPrice(items); got != 44.98 {
		t.Fatalf("expected 44.98, got %v", got)
	}
}

func TestOrderShippingPriceWaivedAtThreshold(t *testing.T) {
	if got := orderShippingPrice(99.99); got != shippingFlat {
		t.Fatalf("expected flat shipping below threshold, got %v", got)
	}
	if got := orderShippingPrice(100); got != 0 {
		t.Fatalf("expected free shipping at threshold, got %v", got)
	}
	if got := orderShippingPrice(250); got != 0 {
		t.Fatalf("expected free shipping above threshold, got %v", got)
	}
}

func TestOrderTotals(t *testing.T) {
	items := []models.OrderItem{
		{Price: 25, Quantity: 2}, // 50
	}
	itemsPrice, taxPrice, shippingPrice, totalPrice := orderTotals(items)
	if itemsPrice != 50 {
		t.Fatalf("expected itemsPrice 50, got %v", itemsPrice)
	}
	if taxPrice != 5 {
		t.Fatalf("expected taxPrice 5, got %v", taxPrice)
	}
	if shippingPrice != shippingFlat {
		t.Fatalf("expected shippingPrice %v, got %v", shippingFlat, shippingPrice)
	}
	if totalPrice != 65 {
		t.Fatalf("expected totalPrice 65, got %v", totalPrice)
	}
}

func TestOrderTotalsFreeShipping(t *testing.T) {
	items := []models.OrderItem{
		{Price: 60, Quantity: 2}, // 120
	}
	itemsPrice, taxPrice, shippingPrice, totalPrice := orderTotals(items)
	if itemsPrice != 120 || taxPrice != 12 || shippingPrice != 0 {
		t.Fatalf("unexpected totals: %v %v %v", itemsPrice, taxPrice, shippingPrice)
	}
	if totalPrice != 132 {
		t.Fatalf("expected totalPrice 132, got %v", totalPrice)
	}
}

func TestOrderTotalsEmpty(t *testing.T) {
	itemsPrice, taxPrice, shippingPrice, totalPrice := orderTotals(nil)
	if itemsPrice != 0 || taxPrice != 0 {
		t.Fatalf("expected zero subtotal and tax, got %v %v", itemsPrice, taxPrice)
	}
	if shippingPrice != shippingFlat || totalPrice != shippingFlat {
		t.Fatalf("expected flat shipping only, got shipping=%v total=%v", shippingPrice, totalPrice)
	}
}
