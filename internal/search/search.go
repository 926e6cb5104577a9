// Package search filters item listings in memory.
package search

import (
	"strings"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// Scope selects which fields a keyword is matched against.
type Scope int

const (
	// ScopePublic matches description and location.
	ScopePublic Scope = iota
	// ScopeAdmin also matches category.
	ScopeAdmin
)

// Filter narrows an item listing. Zero values mean "no constraint".
type Filter struct {
	Keyword    string
	Scope      Scope
	Statuses   []domain.ItemStatus
	Types      []domain.ItemType
	Categories []string
	Locations  []string
	ReportedBy *int64
	From       *time.Time
	To         *time.Time
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Keyword) == "" &&
		len(f.Statuses) == 0 &&
		len(f.Types) == 0 &&
		len(f.Categories) == 0 &&
		len(f.Locations) == 0 &&
		f.ReportedBy == nil &&
		f.From == nil &&
		f.To == nil
}

// Apply returns the items accepted by f, preserving order.
func Apply(items []domain.Item, f Filter) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether item satisfies every constraint of f.
func (f Filter) Match(item domain.Item) bool {
	if !MatchKeyword(item, f.Keyword, f.Scope) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, item.Status) {
		return false
	}
	if len(f.Types) > 0 && !contains(f.Types, item.Type) {
		return false
	}
	if len(f.Categories) > 0 && !containsFold(f.Categories, item.Category) {
		return false
	}
	if len(f.Locations) > 0 && !containsFold(f.Locations, item.Location) {
		return false
	}
	if f.ReportedBy != nil && item.ReportedByUserID != *f.ReportedBy {
		return false
	}
	if f.From != nil && item.ReportedDate.Before(*f.From) {
		return false
	}
	if f.To != nil && item.ReportedDate.After(*f.To) {
		return false
	}
	return true
}

// MatchKeyword performs a case-insensitive substring match. An empty keyword
// matches everything.
func MatchKeyword(item domain.Item, keyword string, scope Scope) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Description), kw) ||
		strings.Contains(strings.ToLower(item.Location), kw) {
		return true
	}
	return scope == ScopeAdmin && strings.Contains(strings.ToLower(item.Category), kw)
}

// Paginate slices items for a 1-based page. Out-of-range pages yield an empty slice.
func Paginate(items []domain.Item, page, pageSize int) []domain.Item {
	if pageSize <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	if len(items) == 0 || page-1 > (len(items)-1)/pageSize {
		return []domain.Item{}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(strings.TrimSpace(candidate), v) {
			return true
		}
	}
	return false
}
