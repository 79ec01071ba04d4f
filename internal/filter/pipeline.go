// Package filter narrows and orders the product listing. Everything here is
// pure: the input slice is never modified.
package filter

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/kahvecikaan/probagno/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey orders a listing
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortName      SortKey = "name"
	SortNewest    SortKey = "newest"
)

// SortKeys lists the accepted sort keys, default first
var SortKeys = []SortKey{SortFeatured, SortPriceAsc, SortPriceDesc, SortName, SortNewest}

// AllCategories in a category selection disables the category filter
const AllCategories = "all"

// DefaultMaxPrice is the slider bound of an empty listing
const DefaultMaxPrice = 3000

var ErrUnknownSort = errors.New("unknown sort key")

// ParseSort returns the sort key named s. An empty string is the default.
func ParseSort(s string) (SortKey, error) {
	if s == "" {
		return SortFeatured, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownSort
}

// PriceRange is inclusive on both ends. A nil Max leaves the upper side open.
type PriceRange struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max,omitempty"`
}

func (r PriceRange) contains(price float64) bool {
	if price < r.Min {
		return false
	}
	return r.Max == nil || price <= *r.Max
}

// Criteria selects and orders products. Zero values disable a criterion.
type Criteria struct {
	Search     string
	Categories []string
	Colors     []string
	Materials  []string
	Price      PriceRange
	Sort       SortKey
}

// Apply returns the products matching every active criterion in c, sorted
func Apply(products []*domain.Product, c Criteria) []*domain.Product {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	categories := categorySet(c.Categories)
	colors := normalisedSet(c.Colors, normaliseColor)
	materials := normalisedSet(c.Materials, strings.TrimSpace)

	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if categories != nil && !anyIn(p.Tags, categories, identity) {
			continue
		}
		if colors != nil && !anyIn(p.Colors, colors, normaliseColor) {
			continue
		}
		if materials != nil && !anyIn(p.Materials, materials, strings.TrimSpace) {
			continue
		}
		if !c.Price.contains(p.EffectivePrice()) {
			continue
		}
		out = append(out, p)
	}

	Sort(out, c.Sort)
	return out
}

// Search returns the products whose names or description contain query,
// ignoring case. Input order is kept.
func Search(products []*domain.Product, query string) []*domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if q == "" || matchesSearch(p, q) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders products in place by key. Ties keep their input order.
func Sort(products []*domain.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() < products[j].EffectivePrice()
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() > products[j].EffectivePrice()
		})
	case SortName:
		col := collate.New(language.Greek, collate.IgnoreCase)
		sort.SliceStable(products, func(i, j int) bool {
			return col.CompareString(products[i].Name, products[j].Name) < 0
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Featured && !products[j].Featured
		})
	}
}

// MaxPrice is the slider bound: the highest effective price rounded up to
// the next hundred
func MaxPrice(products []*domain.Product) float64 {
	if len(products) == 0 {
		return DefaultMaxPrice
	}
	highest := 0.0
	for _, p := range products {
		highest = math.Max(highest, p.EffectivePrice())
	}
	return math.Ceil(highest/100) * 100
}

func matchesSearch(p *domain.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.NameEn), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// categorySet returns nil when the selection does not filter
func categorySet(selected []string) map[string]struct{} {
	if len(selected) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		if s == AllCategories {
			return nil
		}
		set[s] = struct{}{}
	}
	return set
}

func normalisedSet(selected []string, norm func(string) string) map[string]struct{} {
	if len(selected) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[norm(s)] = struct{}{}
	}
	return set
}

func anyIn(values []string, set map[string]struct{}, norm func(string) string) bool {
	for _, v := range values {
		if _, ok := set[norm(v)]; ok {
			return true
		}
	}
	return false
}

func normaliseColor(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func identity(s string) string { return s }
