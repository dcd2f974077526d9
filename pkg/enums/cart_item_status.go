package enums

import "fmt"

// CartItemStatus marks a cart line as live or soft-deleted.
type CartItemStatus string

const (
	CartItemStatusActive  CartItemStatus = "active"
	CartItemStatusRemoved CartItemStatus = "removed"
)

var validCartItemStatuses = []CartItemStatus{
	CartItemStatusActive,
	CartItemStatusRemoved,
}

// String implements fmt.Stringer.
func (c CartItemStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartItemStatus.
func (c CartItemStatus) IsValid() bool {
	for _, candidate := range validCartItemStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartItemStatus converts raw input into a CartItemStatus.
func ParseCartItemStatus(value string) (CartItemStatus, error) {
	for _, candidate := range validCartItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item status %q", value)
}
