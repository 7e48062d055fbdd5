package enums

import "fmt"

// Region is the province or metropolitan city a listing trades in.
type Region string

const (
	RegionSeoul     Region = "Seoul"
	RegionBusan     Region = "Busan"
	RegionDaegu     Region = "Daegu"
	RegionIncheon   Region = "Incheon"
	RegionGwangju   Region = "Gwangju"
	RegionDaejeon   Region = "Daejeon"
	RegionUlsan     Region = "Ulsan"
	RegionSejong    Region = "Sejong"
	RegionGyeonggi  Region = "Gyeonggi"
	RegionGangwon   Region = "Gangwon"
	RegionChungbuk  Region = "Chungbuk"
	RegionChungnam  Region = "Chungnam"
	RegionJeonbuk   Region = "Jeonbuk"
	RegionJeonnam   Region = "Jeonnam"
	RegionGyeongbuk Region = "Gyeongbuk"
	RegionGyeongnam Region = "Gyeongnam"
	RegionJeju      Region = "Jeju"
)

var validRegions = []Region{
	RegionSeoul,
	RegionBusan,
	RegionDaegu,
	RegionIncheon,
	RegionGwangju,
	RegionDaejeon,
	RegionUlsan,
	RegionSejong,
	RegionGyeonggi,
	RegionGangwon,
	RegionChungbuk,
	RegionChungnam,
	RegionJeonbuk,
	RegionJeonnam,
	RegionGyeongbuk,
	RegionGyeongnam,
	RegionJeju,
}

// String implements fmt.Stringer.
func (v Region) String() string {
	return string(v)
}

// IsValid reports whether the value is a known Region.
func (v Region) IsValid() bool {
	for _, candidate := range validRegions {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseRegion converts raw input into a Region.
func ParseRegion(value string) (Region, error) {
	for _, candidate := range validRegions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid region %q", value)
}

// RegionOrder returns the values in display order.
func RegionOrder() []string {
	return stringsOf(validRegions)
}
