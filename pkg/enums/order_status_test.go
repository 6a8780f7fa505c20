package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderStatusNew, OrderStatusConfirmed},
		{OrderStatusNew, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusShipped, OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to OrderStatus
	}{
		{OrderStatusDelivered, OrderStatusNew},
		{OrderStatusCancelled, OrderStatusConfirmed},
		{OrderStatusNew, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusNew},
		{OrderStatusDelivered, OrderStatusCancelled},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusDelivered.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatal("DELIVERED and CANCELLED must be terminal")
	}
	if OrderStatusNew.IsTerminal() {
		t.Fatal("NEW must not be terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("SHIPPED"); err != nil {
		t.Fatalf("parse SHIPPED: %v", err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("lowercase input must be rejected")
	}
	if _, err := ParseOrderStatus("RETURNED"); err == nil {
		t.Fatal("unknown status must be rejected")
	}
}
