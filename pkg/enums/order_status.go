package enums

import "fmt"

// OrderStatus is the numeric order lifecycle state stored on the order row.
// The integer codes are part of the wire contract with the legacy schema.
type OrderStatus int

const (
	OrderStatusCancelled  OrderStatus = 0
	OrderStatusPending    OrderStatus = 1
	OrderStatusProcessing OrderStatus = 2
	OrderStatusShipping   OrderStatus = 3
	OrderStatusDelivered  OrderStatus = 4
)

var orderStatusNames = map[OrderStatus]string{
	OrderStatusCancelled:  "cancelled",
	OrderStatusPending:    "pending",
	OrderStatusProcessing: "processing",
	OrderStatusShipping:   "shipping",
	OrderStatusDelivered:  "delivered",
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

// IsTerminal reports whether no further transition may leave this state.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusDelivered
}

// CanTransitionTo reports whether moving from s to next is a legal edge.
// Forward moves advance one step at a time; cancellation is allowed only
// while the order has not started shipping.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusProcessing
	}
	return int(next) == int(s)+1
}

// ParseOrderStatus converts a raw status code into an OrderStatus.
func ParseOrderStatus(code int) (OrderStatus, error) {
	status := OrderStatus(code)
	if !status.IsValid() {
		return 0, fmt.Errorf("invalid order status %d", code)
	}
	return status, nil
}
