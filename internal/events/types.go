package events

import "github.com/kahvecikaan/probagno/internal/domain"

// Change signals that rows of a table may have changed. It carries no diff;
// receivers refetch.
type Change struct {
	Table domain.EntityKind `json:"table"`
	// Slug of the affected row when known
	Slug string `json:"slug,omitempty"`
	// Key of the affected settings record when Table is store_settings
	Key string `json:"key,omitempty"`
}

// Filter selects the changes a subscriber is interested in. An empty Slug
// matches every row of the table.
type Filter struct {
	Table domain.EntityKind
	Slug  string
}

// Matches reports whether c passes the filter. A change without a slug
// matches slug filters too, since any row may have changed.
func (f Filter) Matches(c Change) bool {
	if f.Table != "" && f.Table != c.Table {
		return false
	}
	if f.Slug == "" || c.Slug == "" {
		return true
	}
	return f.Slug == c.Slug
}

// ChangeBus is the bus shared by the repository and its consumers
type ChangeBus = EventBus[Change]
