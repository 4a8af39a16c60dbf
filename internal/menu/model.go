package menu

import (
	"time"

	"lunchbox-be/internal/cart"
)

// Item is a catalog entry. Ids are slugs ("dumpling-1") so menu references
// stay stable across reseeds.
type Item struct {
	ID          string
	Name        string
	Description *string
	FullPrice   float64
	HalfPrice   float64
	Weekday     string
	Active      bool
	CreatedAt   time.Time
}

// PriceFor returns the current catalog price for a portion.
func (m *Item) PriceFor(portion cart.PortionType) float64 {
	if portion == cart.PortionHalf {
		return m.HalfPrice
	}
	return m.FullPrice
}
