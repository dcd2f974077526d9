package enums

import "testing"

func TestOrderStatusLegalEdges(t *testing.T) {
	legal := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipping},
		{OrderStatusShipping, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusCancelled},
	}
	for _, edge := range legal {
		if !edge.from.CanTransitionTo(edge.to) {
			t.Fatalf("expected %s -> %s to be legal", edge.from, edge.to)
		}
	}
}

func TestOrderStatusIllegalEdges(t *testing.T) {
	illegal := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusShipping, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusPending, OrderStatusShipping},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusProcessing, OrderStatusDelivered},
		{OrderStatusShipping, OrderStatusShipping},
	}
	for _, edge := range illegal {
		if edge.from.CanTransitionTo(edge.to) {
			t.Fatalf("expected %s -> %s to be rejected", edge.from, edge.to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	for code := 0; code <= 4; code++ {
		if _, err := ParseOrderStatus(code); err != nil {
			t.Fatalf("code %d should parse: %v", code, err)
		}
	}
	if _, err := ParseOrderStatus(5); err == nil {
		t.Fatalf("code 5 should be rejected")
	}
	if _, err := ParseOrderStatus(-1); err == nil {
		t.Fatalf("code -1 should be rejected")
	}
}
