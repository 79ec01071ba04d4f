package filter

import (
	"github.com/kahvecikaan/probagno/internal/domain"
)

// Listing is the filter state of one product listing together with the
// slider bound derived from the unfiltered products
type Listing struct {
	Criteria
	bound float64
}

// NewListing starts with no filters and the range spanning the bound of
// products
func NewListing(products []*domain.Product) *Listing {
	l := &Listing{}
	l.Refresh(products)
	l.Clear()
	return l
}

// Refresh recomputes the slider bound. A range the user already narrowed
// is left alone.
func (l *Listing) Refresh(products []*domain.Product) {
	l.bound = MaxPrice(products)
}

// Bound is the slider's upper bound
func (l *Listing) Bound() float64 {
	return l.bound
}

// Clear drops every criterion and resets the range to the full bound
func (l *Listing) Clear() {
	l.Criteria = Criteria{
		Price: PriceRange{Min: 0, Max: domain.Price(l.bound)},
		Sort:  SortFeatured,
	}
}

func (l *Listing) priceNarrowed() bool {
	return l.Price.Min > 0 || (l.Price.Max != nil && *l.Price.Max < l.bound)
}

// HasFilters reports whether any criterion narrows the listing
func (l *Listing) HasFilters() bool {
	return l.Search != "" ||
		len(l.Categories) > 0 ||
		len(l.Colors) > 0 ||
		len(l.Materials) > 0 ||
		l.priceNarrowed()
}

// ActiveFilterCount is the number shown on the filter badge: one per
// selected value plus one for a narrowed price range
func (l *Listing) ActiveFilterCount() int {
	n := len(l.Categories) + len(l.Colors) + len(l.Materials)
	if l.priceNarrowed() {
		n++
	}
	return n
}

// Apply runs the pipeline over products with the listing's criteria
func (l *Listing) Apply(products []*domain.Product) []*domain.Product {
	return Apply(products, l.Criteria)
}
