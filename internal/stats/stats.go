// Package stats reduces item collections into dashboard counters.
package stats

import (
	"math"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// ItemStats holds headline counters. Lost and Found partition the
// collection by type; the other counters are by status.
type ItemStats struct {
	Total    int `json:"total"`
	Lost     int `json:"lost"`
	Found    int `json:"found"`
	Claimed  int `json:"claimed"`
	Pending  int `json:"pending"`
	Returned int `json:"returned"`
}

// TimeStats counts items by reported date relative to a reference time.
type TimeStats struct {
	Today     int `json:"today"`
	ThisWeek  int `json:"thisWeek"`
	ThisMonth int `json:"thisMonth"`
}

// Summary bundles every reducer.
type Summary struct {
	Items      ItemStats      `json:"items"`
	ByStatus   map[string]int `json:"byStatus"`
	ByCategory map[string]int `json:"byCategory"`
	ByLocation map[string]int `json:"byLocation"`
	ByTime     TimeStats      `json:"byTime"`
}

// Counts computes headline counters.
func Counts(items []domain.Item) ItemStats {
	var s ItemStats
	s.Total = len(items)
	for _, item := range items {
		switch item.Type {
		case domain.ItemTypeLost:
			s.Lost++
		case domain.ItemTypeFound:
			s.Found++
		}
		switch item.Status {
		case domain.ItemStatusClaimed:
			s.Claimed++
		case domain.ItemStatusPending:
			s.Pending++
		case domain.ItemStatusReturned:
			s.Returned++
		}
	}
	return s
}

// ByStatus counts items per status.
func ByStatus(items []domain.Item) map[string]int {
	return countBy(items, func(item domain.Item) string { return string(item.Status) })
}

// ByCategory counts items per category.
func ByCategory(items []domain.Item) map[string]int {
	return countBy(items, func(item domain.Item) string { return item.Category })
}

// ByLocation counts items per location.
func ByLocation(items []domain.Item) map[string]int {
	return countBy(items, func(item domain.Item) string { return item.Location })
}

func countBy(items []domain.Item, key func(domain.Item) string) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// ByTimeWindow buckets items relative to now. "This week" is any item whose
// reported date lies within seven days of now in either direction, rounded up
// to whole days; it is not aligned to calendar weeks. Dates are compared in
// now's location.
func ByTimeWindow(items []domain.Item, now time.Time) TimeStats {
	var s TimeStats
	ny, nm, nd := now.Date()
	for _, item := range items {
		reported := item.ReportedDate.In(now.Location())
		y, m, d := reported.Date()

		if y == ny && m == nm && d == nd {
			s.Today++
		}
		if daysApart(now, reported) <= 7 {
			s.ThisWeek++
		}
		if y == ny && m == nm {
			s.ThisMonth++
		}
	}
	return s
}

func daysApart(a, b time.Time) float64 {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return math.Ceil(diff.Hours() / 24)
}

// Summarize runs every reducer over items.
func Summarize(items []domain.Item, now time.Time) Summary {
	return Summary{
		Items:      Counts(items),
		ByStatus:   ByStatus(items),
		ByCategory: ByCategory(items),
		ByLocation: ByLocation(items),
		ByTime:     ByTimeWindow(items, now),
	}
}
