package order

import (
	"sort"

	"lunchbox-be/internal/utils"
)

// WeekGroup buckets a parent's orders by ISO week start (Monday), then by
// child, then by day. Totals are sums of the frozen Order.TotalAmount; line
// items are never re-summed here.
type WeekGroup struct {
	WeekStart string       `json:"weekStart"`
	Total     float64      `json:"total"`
	Children  []ChildGroup `json:"children"`
}

type ChildGroup struct {
	ChildID   uint       `json:"childId"`
	ChildName string     `json:"childName"`
	Total     float64    `json:"total"`
	Days      []DayGroup `json:"days"`
}

type DayGroup struct {
	Date   string   `json:"date"`
	Total  float64  `json:"total"`
	Orders []*Order `json:"orders"`
}

// GroupOrders is a pure, synchronous fold over already-loaded orders.
func GroupOrders(orders []*Order) []WeekGroup {
	type childKey struct {
		week    string
		childID uint
	}
	type dayKey struct {
		week    string
		childID uint
		date    string
	}

	weeks := make(map[string]*WeekGroup)
	children := make(map[childKey]*ChildGroup)
	days := make(map[dayKey]*DayGroup)

	for _, o := range orders {
		week := utils.FormatDate(utils.WeekStart(o.OrderDate))
		date := utils.FormatDate(o.OrderDate)

		wg, ok := weeks[week]
		if !ok {
			wg = &WeekGroup{WeekStart: week}
			weeks[week] = wg
		}
		wg.Total = utils.Round2(wg.Total + o.TotalAmount)

		ck := childKey{week: week, childID: o.ChildID}
		cg, ok := children[ck]
		if !ok {
			cg = &ChildGroup{ChildID: o.ChildID, ChildName: o.ChildName}
			children[ck] = cg
		}
		cg.Total = utils.Round2(cg.Total + o.TotalAmount)

		dk := dayKey{week: week, childID: o.ChildID, date: date}
		dg, ok := days[dk]
		if !ok {
			dg = &DayGroup{Date: date}
			days[dk] = dg
		}
		dg.Total = utils.Round2(dg.Total + o.TotalAmount)
		dg.Orders = append(dg.Orders, o)
	}

	for dk, dg := range days {
		cg := children[childKey{week: dk.week, childID: dk.childID}]
		cg.Days = append(cg.Days, *dg)
	}
	for ck, cg := range children {
		sort.Slice(cg.Days, func(i, j int) bool {
			return cg.Days[i].Date > cg.Days[j].Date
		})
		wg := weeks[ck.week]
		wg.Children = append(wg.Children, *cg)
	}

	out := make([]WeekGroup, 0, len(weeks))
	for _, wg := range weeks {
		sort.Slice(wg.Children, func(i, j int) bool {
			return wg.Children[i].ChildID < wg.Children[j].ChildID
		})
		out = append(out, *wg)
	}

	// Most recent week first, matching the date-descending order listing.
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStart > out[j].WeekStart
	})

	return out
}
