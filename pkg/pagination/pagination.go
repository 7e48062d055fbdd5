package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the first page; pages are 1-based.
	DefaultPage = 1
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 20
	// MaxPageSize caps how many listings any page can request.
	MaxPageSize = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize applies the defaults and the page size cap.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), PageSize: NormalizePageSize(p.PageSize)}
}

func NormalizePage(page int) int {
	if page < DefaultPage {
		return DefaultPage
	}
	return page
}

// NormalizePageSize enforces the default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Parse reads page and pageSize query values. Blank values fall back to the defaults.
func Parse(page, pageSize string) (Params, error) {
	var p Params
	if v := strings.TrimSpace(page); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, fmt.Errorf("invalid page: %w", err)
		}
		p.Page = n
	}
	if v := strings.TrimSpace(pageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, fmt.Errorf("invalid pageSize: %w", err)
		}
		p.PageSize = n
	}
	return p.Normalize(), nil
}

// TotalPages returns how many pages hold total items at the given size.
func TotalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	size := NormalizePageSize(pageSize)
	return (total + size - 1) / size
}
