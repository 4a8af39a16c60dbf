package cart

import "sync"

// Store holds per-child per-day cart lines. It is an explicitly injected
// instance, not a process-wide singleton: the cart is a client concern and a
// request handler receives the store it should mutate.
//
// The store cannot fail; malformed keys are programmer error.
type Store struct {
	mu    sync.Mutex
	lines map[Key][]Line
}

func NewStore() *Store {
	return &Store{lines: make(map[Key][]Line)}
}

// AddLine appends a new line with quantity 1, or increments the quantity of an
// existing line matching the same (child, date, menu item, portion).
func (s *Store) AddLine(childID uint, date string, item MenuItemRef, portion PortionType, unitPrice float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ChildID: childID, Date: date}
	for i, line := range s.lines[key] {
		if line.MenuItemID == item.ID && line.Portion == portion {
			s.lines[key][i].Quantity++
			return
		}
	}

	s.lines[key] = append(s.lines[key], Line{
		MenuItemID:   item.ID,
		MenuItemName: item.Name,
		Portion:      portion,
		Quantity:     1,
		UnitPrice:    unitPrice,
	})
}

// UpdateQuantity sets the quantity of the matching line. Quantity <= 0 removes
// the line. Portion is always required: with both portions of an item in the
// same slot, matching by menu item id alone would be ambiguous.
func (s *Store) UpdateQuantity(childID uint, date string, menuItemID string, portion PortionType, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ChildID: childID, Date: date}
	if quantity <= 0 {
		s.removeLocked(key, menuItemID, portion)
		return
	}

	for i, line := range s.lines[key] {
		if line.MenuItemID == menuItemID && line.Portion == portion {
			s.lines[key][i].Quantity = quantity
			return
		}
	}
}

// RemoveLine removes the matching line, leaving other portions of the same
// menu item untouched.
func (s *Store) RemoveLine(childID uint, date string, menuItemID string, portion PortionType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(Key{ChildID: childID, Date: date}, menuItemID, portion)
}

func (s *Store) removeLocked(key Key, menuItemID string, portion PortionType) {
	lines := s.lines[key]
	for i, line := range lines {
		if line.MenuItemID == menuItemID && line.Portion == portion {
			s.lines[key] = append(lines[:i], lines[i+1:]...)
			if len(s.lines[key]) == 0 {
				delete(s.lines, key)
			}
			return
		}
	}
}

func (s *Store) ClearDay(childID uint, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines, Key{ChildID: childID, Date: date})
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[Key][]Line)
}

// Lines returns a copy of the lines for one (child, date) slot in insertion
// order.
func (s *Store) Lines(childID uint, date string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.lines[Key{ChildID: childID, Date: date}]
	out := make([]Line, len(src))
	copy(out, src)
	return out
}

// Days returns every key currently holding at least one line.
func (s *Store) Days() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]Key, 0, len(s.lines))
	for k := range s.lines {
		keys = append(keys, k)
	}
	return keys
}

// TotalForDay sums unitPrice * quantity over one (child, date) slot.
func (s *Store) TotalForDay(childID uint, date string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, line := range s.lines[Key{ChildID: childID, Date: date}] {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// TotalLineCount counts lines across every slot.
func (s *Store) TotalLineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, lines := range s.lines {
		n += len(lines)
	}
	return n
}
