package enums

import "fmt"

// GearCondition describes the wear of a listed item.
type GearCondition string

const (
	GearConditionNew     GearCondition = "New"
	GearConditionLikeNew GearCondition = "LikeNew"
	GearConditionGood    GearCondition = "Good"
	GearConditionFair    GearCondition = "Fair"
)

var validGearConditions = []GearCondition{
	GearConditionNew,
	GearConditionLikeNew,
	GearConditionGood,
	GearConditionFair,
}

// String implements fmt.Stringer.
func (v GearCondition) String() string {
	return string(v)
}

// IsValid reports whether the value is a known GearCondition.
func (v GearCondition) IsValid() bool {
	for _, candidate := range validGearConditions {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseGearCondition converts raw input into a GearCondition.
func ParseGearCondition(value string) (GearCondition, error) {
	for _, candidate := range validGearConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gear condition %q", value)
}

// GearConditionOrder returns the values in display order.
func GearConditionOrder() []string {
	return stringsOf(validGearConditions)
}

// GearStatus is the sale state of a listing.
type GearStatus string

const (
	GearStatusSelling  GearStatus = "Selling"
	GearStatusReserved GearStatus = "Reserved"
	GearStatusSold     GearStatus = "Sold"
)

var validGearStatuses = []GearStatus{
	GearStatusSelling,
	GearStatusReserved,
	GearStatusSold,
}

// String implements fmt.Stringer.
func (v GearStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known GearStatus.
func (v GearStatus) IsValid() bool {
	for _, candidate := range validGearStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseGearStatus converts raw input into a GearStatus.
func ParseGearStatus(value string) (GearStatus, error) {
	for _, candidate := range validGearStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gear status %q", value)
}

// GearStatusOrder returns the values in display order.
func GearStatusOrder() []string {
	return stringsOf(validGearStatuses)
}

// TradeMethod is how buyer and seller exchange the item.
type TradeMethod string

const (
	TradeMethodDirect   TradeMethod = "Direct"
	TradeMethodDelivery TradeMethod = "Delivery"
	TradeMethodBoth     TradeMethod = "Both"
)

var validTradeMethods = []TradeMethod{
	TradeMethodDirect,
	TradeMethodDelivery,
	TradeMethodBoth,
}

// String implements fmt.Stringer.
func (v TradeMethod) String() string {
	return string(v)
}

// IsValid reports whether the value is a known TradeMethod.
func (v TradeMethod) IsValid() bool {
	for _, candidate := range validTradeMethods {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseTradeMethod converts raw input into a TradeMethod.
func ParseTradeMethod(value string) (TradeMethod, error) {
	for _, candidate := range validTradeMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trade method %q", value)
}

// TradeMethodOrder returns the values in display order.
func TradeMethodOrder() []string {
	return stringsOf(validTradeMethods)
}
