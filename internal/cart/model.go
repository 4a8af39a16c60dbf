package cart

type PortionType string

const (
	PortionFull PortionType = "FULL"
	PortionHalf PortionType = "HALF"
)

// MenuItemRef is the slice of the catalog a cart line needs to render and
// re-submit itself. The price is snapshotted separately at add-time.
type MenuItemRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Line is a single cart entry for one (child, date) slot.
type Line struct {
	MenuItemID   string      `json:"menuItemId"`
	MenuItemName string      `json:"menuItemName"`
	Portion      PortionType `json:"portionType"`
	Quantity     int         `json:"quantity"`
	// UnitPrice is captured when the line is added so later catalog price
	// changes do not retroactively alter an uncommitted cart.
	UnitPrice float64 `json:"unitPrice"`
}

// Key addresses one day of one child's cart.
type Key struct {
	ChildID uint   `json:"childId"`
	Date    string `json:"date"`
}
