package enums

import "fmt"

// GearSortBy is a listing sort key accepted by the listing API.
type GearSortBy string

const (
	GearSortByCreatedAt GearSortBy = "created_at"
	GearSortByPrice     GearSortBy = "price"
	GearSortByViewCount GearSortBy = "view_count"
)

var validGearSortFields = []GearSortBy{
	GearSortByCreatedAt,
	GearSortByPrice,
	GearSortByViewCount,
}

// String implements fmt.Stringer.
func (v GearSortBy) String() string {
	return string(v)
}

// IsValid reports whether the value is a known GearSortBy.
func (v GearSortBy) IsValid() bool {
	for _, candidate := range validGearSortFields {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseGearSortBy converts raw input into a GearSortBy.
func ParseGearSortBy(value string) (GearSortBy, error) {
	for _, candidate := range validGearSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gear sort by %q", value)
}

// GearSortByOrder returns the values in display order.
func GearSortByOrder() []string {
	return stringsOf(validGearSortFields)
}

// SortOrder is a sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

var validSortOrders = []SortOrder{
	SortOrderAsc,
	SortOrderDesc,
}

// String implements fmt.Stringer.
func (v SortOrder) String() string {
	return string(v)
}

// IsValid reports whether the value is a known SortOrder.
func (v SortOrder) IsValid() bool {
	for _, candidate := range validSortOrders {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseSortOrder converts raw input into a SortOrder.
func ParseSortOrder(value string) (SortOrder, error) {
	for _, candidate := range validSortOrders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}

// SortOrderOrder returns the values in display order.
func SortOrderOrder() []string {
	return stringsOf(validSortOrders)
}
