package gears

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxPrice is the largest price the listing API stores.
const MaxPrice = math.MaxInt32

var (
	errPriceRequired = errors.New("price is required")
	errPriceFormat   = errors.New("price must contain digits only")
	errPriceRange    = errors.New("price is out of range")
)

var priceMax = decimal.NewFromInt(MaxPrice)

// ParsePrice accepts a whole number of won, optionally with thousands commas.
func ParsePrice(raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, errPriceRequired
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errPriceFormat
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errPriceFormat
	}
	if d.IsNegative() || d.GreaterThan(priceMax) {
		return 0, errPriceRange
	}
	return d.IntPart(), nil
}

var koreanPrinter = message.NewPrinter(language.Korean)

// FormatPrice renders a price with thousands separators and the won suffix.
func FormatPrice(price int64) string {
	return koreanPrinter.Sprintf("%d원", price)
}
