package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// AllCategories is the slug the catalog treats as every category at once.
const AllCategories = "allgrails"

var ErrInvalidPriceRange = errors.New("minPrice must not exceed maxPrice")

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// BrowsePage is one page of a category listing as the catalog returns it.
type BrowsePage struct {
	Items      []Item `json:"items"`
	TotalPages int    `json:"totalPages"`
	Page       int    `json:"page"`
}

// SellPageCategory groups a category's best sellers for the sell landing page.
type SellPageCategory struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Items []Item `json:"items"`
}

// BrowseFilter narrows a listing page. A nil MaxPrice leaves the top open and
// an empty Brands keeps every brand.
type BrowseFilter struct {
	Brands   []string
	MinPrice decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (f BrowseFilter) Validate() error {
	if f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return ErrInvalidPriceRange
	}
	return nil
}

func (f BrowseFilter) Match(item Item) bool {
	if item.Price.LessThan(f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && item.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if len(f.Brands) == 0 {
		return true
	}
	for _, b := range f.Brands {
		if b == item.Brand {
			return true
		}
	}
	return false
}

// Apply returns the matching items in catalog order.
func (f BrowseFilter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Brands lists the distinct non-blank brands on a page, first seen first.
func Brands(items []Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		b := strings.TrimSpace(it.Brand)
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
