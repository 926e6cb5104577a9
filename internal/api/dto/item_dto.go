package dto

import (
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// ItemRequest is the report payload. Admins may also set status and
// reporter.
type ItemRequest struct {
	Description  string            `json:"description"`
	Location     string            `json:"location"`
	Type         domain.ItemType   `json:"type"`
	Category     string            `json:"category"`
	ImageURL     string            `json:"imageUrl"`
	ReportedDate *time.Time        `json:"reportedDate"`
	Status       domain.ItemStatus `json:"status"`
	ReportedBy   *int64            `json:"reportedByUserId"`
}

// ItemUpdateRequest carries optional changes.
type ItemUpdateRequest struct {
	Description *string            `json:"description"`
	Location    *string            `json:"location"`
	Type        *domain.ItemType   `json:"type"`
	Category    *string            `json:"category"`
	ImageURL    *string            `json:"imageUrl"`
	Status      *domain.ItemStatus `json:"status"`
}

// StatusRequest moves an item to a new status.
type StatusRequest struct {
	Status domain.ItemStatus `json:"status"`
}

// ItemResponse is the public item shape.
type ItemResponse struct {
	ID               int64             `json:"id"`
	Description      string            `json:"description"`
	Location         string            `json:"location"`
	ReportedDate     time.Time         `json:"reportedDate"`
	Status           domain.ItemStatus `json:"status"`
	Type             domain.ItemType   `json:"type"`
	Category         string            `json:"category"`
	ImageURL         string            `json:"imageUrl,omitempty"`
	ReportedByUserID int64             `json:"reportedByUserId"`
	ClaimedByUserID  *int64            `json:"claimedByUserId,omitempty"`
	ClaimedDate      *time.Time        `json:"claimedDate,omitempty"`
}

// ItemPageResponse is one page of a listing.
type ItemPageResponse struct {
	Items    []ItemResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// ReportResponse pairs a stored report with its potential matches.
type ReportResponse struct {
	Item    ItemResponse   `json:"item"`
	Matches []ItemResponse `json:"matches"`
}

// UploadResponse carries the stored image URL.
type UploadResponse struct {
	URL string `json:"url"`
}

// NewItemResponse converts a domain item.
func NewItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:               item.ID,
		Description:      item.Description,
		Location:         item.Location,
		ReportedDate:     item.ReportedDate,
		Status:           item.Status,
		Type:             item.Type,
		Category:         item.Category,
		ImageURL:         item.ImageURL,
		ReportedByUserID: item.ReportedByUserID,
		ClaimedByUserID:  item.ClaimedByUserID,
		ClaimedDate:      item.ClaimedDate,
	}
}

// NewItemList converts a slice of items.
func NewItemList(items []domain.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewItemResponse(&items[i]))
	}
	return out
}
