package enums

import "fmt"

// ProductUnit is the selling unit for a catalog product. Weight-based units
// are continuous; container units are discrete counts.
type ProductUnit string

const (
	ProductUnitKg     ProductUnit = "kg"
	ProductUnitBox    ProductUnit = "box"
	ProductUnitBucket ProductUnit = "bucket"
	ProductUnitBag    ProductUnit = "bag"
)

var validProductUnits = []ProductUnit{
	ProductUnitKg,
	ProductUnitBox,
	ProductUnitBucket,
	ProductUnitBag,
}

// String implements fmt.Stringer.
func (p ProductUnit) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductUnit.
func (p ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsContinuous reports whether quantities in this unit may carry decimals.
func (p ProductUnit) IsContinuous() bool {
	return p == ProductUnitKg
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
