package children

import "time"

type Child struct {
	ID        uint
	ParentID  uint
	Name      string
	CreatedAt time.Time
}
