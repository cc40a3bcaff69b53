package enums

import "fmt"

// StockMovementType classifies a stock ledger mutation.
type StockMovementType string

const (
	StockMovementInbound    StockMovementType = "inbound"
	StockMovementOutbound   StockMovementType = "outbound"
	StockMovementAdjustment StockMovementType = "adjustment"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementInbound,
	StockMovementOutbound,
	StockMovementAdjustment,
}

// String implements fmt.Stringer.
func (s StockMovementType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockMovementType.
func (s StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// StockMovementRef names the entity a stock movement points back at.
type StockMovementRef string

const (
	StockMovementRefBatch  StockMovementRef = "receiving_batch"
	StockMovementRefOrder  StockMovementRef = "order"
	StockMovementRefManual StockMovementRef = "manual"
)

// ParseStockMovementType converts raw input into a StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
