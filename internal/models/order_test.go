package models

import "testing"

func TestKnownOrderStatus(t *testing.T) {
	for _, s := range []string{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled} {
		if !KnownOrderStatus(s) {
			t.Fatalf("expected %q to be a known status", s)
		}
	}
	for _, s := range []string{"", "PAID", "refunded", "complete"} {
		if KnownOrderStatus(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestCanTransitionOrder(t *testing.T) {
	allowed := map[[2]string]bool{
		{OrderPending, OrderPaid}:      true,
		{OrderPending, OrderCancelled}: true,
		{OrderPaid, OrderShipped}:      true,
		{OrderPaid, OrderCancelled}:    true,
		{OrderShipped, OrderDelivered}: true,
	}

	statuses := []string{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := CanTransitionOrder(from, to); got != want {
				t.Fatalf("CanTransitionOrder(%q, %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesHaveNoMoves(t *testing.T) {
	for _, from := range []string{OrderDelivered, OrderCancelled} {
		for _, to := range []string{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled} {
			if CanTransitionOrder(from, to) {
				t.Fatalf("expected %q to be terminal, but %q -> %q allowed", from, from, to)
			}
		}
	}
}
