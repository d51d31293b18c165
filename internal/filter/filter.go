// Package filter is the pure, in-memory search side of the catalog:
// predicate conjunction and stable sorting over product slices. No I/O.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/example/boutique/internal/models"
)

// SortKey selects the ordering of a product listing.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

// Query is a conjunction of optional predicates. A zero-valued field skips
// its predicate.
type Query struct {
	Classification string
	Gender         string
	Store          string
	Size           string
	Text           string
	PriceCeiling   float64
}

// Apply returns the products matching every set predicate. The input slice
// is never modified.
func Apply(products []models.Product, q Query) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (q Query) matches(p models.Product) bool {
	if q.Classification != "" && p.Classification != q.Classification {
		return false
	}
	if q.Gender != "" && p.Gender != q.Gender {
		return false
	}
	if q.PriceCeiling > 0 && p.DiscountPrice > q.PriceCeiling {
		return false
	}
	if q.Store != "" && p.Store != q.Store {
		return false
	}
	if q.Size != "" && !p.HasSize(q.Size) {
		return false
	}
	if q.Text != "" {
		needle := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!strings.Contains(strings.ToLower(p.Code), needle) {
			return false
		}
	}
	return true
}

// Sort returns a sorted copy of products. Ties keep their input order and
// the input slice is never mutated. Name ordering follows the catalog's
// working locale.
func Sort(products []models.Product, key SortKey) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectivePrice() < out[j].EffectivePrice()
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectivePrice() > out[j].EffectivePrice()
		})
	case SortNameAsc:
		c := collate.New(language.Spanish)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortNameDesc:
		c := collate.New(language.Spanish)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) > 0
		})
	}
	return out
}
