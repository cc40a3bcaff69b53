package enums

import "fmt"

// ChangeLogType names the mutating event recorded against an order.
type ChangeLogType string

const (
	ChangeLogOrderCreated      ChangeLogType = "order_created"
	ChangeLogMergedOrderUpdate ChangeLogType = "merged_order_update"
	ChangeLogItemAdded         ChangeLogType = "item_added"
	ChangeLogItemRemoved       ChangeLogType = "item_removed"
	ChangeLogItemUpdated       ChangeLogType = "item_updated"
)

var validChangeLogTypes = []ChangeLogType{
	ChangeLogOrderCreated,
	ChangeLogMergedOrderUpdate,
	ChangeLogItemAdded,
	ChangeLogItemRemoved,
	ChangeLogItemUpdated,
}

// String implements fmt.Stringer.
func (c ChangeLogType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChangeLogType.
func (c ChangeLogType) IsValid() bool {
	for _, candidate := range validChangeLogTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChangeLogType converts raw input into a ChangeLogType.
func ParseChangeLogType(value string) (ChangeLogType, error) {
	for _, candidate := range validChangeLogTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change log type %q", value)
}
