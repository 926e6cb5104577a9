package domain

import (
	"strings"
	"time"
)

// ItemType tells whether an item was lost or found.
type ItemType string

const (
	ItemTypeLost  ItemType = "Lost"
	ItemTypeFound ItemType = "Found"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ItemStatus enumerates lifecycle states for a reported item.
type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusApproved ItemStatus = "approved"
	ItemStatusRejected ItemStatus = "rejected"
	ItemStatusFound    ItemStatus = "found"
	ItemStatusLost     ItemStatus = "lost"
	ItemStatusClaimed  ItemStatus = "claimed"
	ItemStatusReturned ItemStatus = "returned"
)

// ItemStatuses lists every status in display order.
var ItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusApproved,
	ItemStatusRejected,
	ItemStatusFound,
	ItemStatusLost,
	ItemStatusClaimed,
	ItemStatusReturned,
}

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	for _, known := range ItemStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Well-known categories. Items may carry other values.
const (
	CategoryElectronics = "electronics"
	CategoryDocuments   = "documents"
	CategoryAccessories = "accessories"
	CategoryClothing    = "clothing"
	CategoryOther       = "other"
)

// Categories lists the well-known categories.
var Categories = []string{
	CategoryElectronics,
	CategoryDocuments,
	CategoryAccessories,
	CategoryClothing,
	CategoryOther,
}

// Item is a reported lost or found object.
type Item struct {
	ID               int64
	Description      string
	Location         string
	ReportedDate     time.Time
	Status           ItemStatus
	Type             ItemType
	Category         string
	ImageURL         string
	ReportedByUserID int64
	ClaimedByUserID  *int64
	ClaimedDate      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LostOwner returns the reporter of whichever of a and b is the Lost item.
func LostOwner(a, b Item) int64 {
	if a.Type == ItemTypeLost {
		return a.ReportedByUserID
	}
	return b.ReportedByUserID
}

// NormalizeCategory trims and lower-cases a category value.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
