package enums

import "fmt"

// OrderItemStatus mirrors the picking flags on a line item.
type OrderItemStatus string

const (
	OrderItemStatusCreated    OrderItemStatus = "created"
	OrderItemStatusPicked     OrderItemStatus = "picked"
	OrderItemStatusOutOfStock OrderItemStatus = "out_of_stock"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusCreated,
	OrderItemStatusPicked,
	OrderItemStatusOutOfStock,
}

// String implements fmt.Stringer.
func (o OrderItemStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (o OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
