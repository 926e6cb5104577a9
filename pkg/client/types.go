package client

import "time"

// Role values returned by the API.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is the account record cached with the session.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Item is a lost or found report.
type Item struct {
	ID               int64      `json:"id"`
	Description      string     `json:"description"`
	Location         string     `json:"location"`
	ReportedDate     time.Time  `json:"reportedDate"`
	Status           string     `json:"status"`
	Type             string     `json:"type"`
	Category         string     `json:"category"`
	ImageURL         string     `json:"imageUrl,omitempty"`
	ReportedByUserID int64      `json:"reportedByUserId"`
	ClaimedByUserID  *int64     `json:"claimedByUserId,omitempty"`
	ClaimedDate      *time.Time `json:"claimedDate,omitempty"`
}

// ItemInput is the payload for reporting or admin-creating an item.
type ItemInput struct {
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Type         string     `json:"type"`
	Category     string     `json:"category"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	ReportedDate *time.Time `json:"reportedDate,omitempty"`
	Status       string     `json:"status,omitempty"`
	ReportedBy   *int64     `json:"reportedByUserId,omitempty"`
}

// ItemUpdate carries optional changes.
type ItemUpdate struct {
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Type        *string `json:"type,omitempty"`
	Category    *string `json:"category,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ItemPage is one page of a listing.
type ItemPage struct {
	Items    []Item `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Report is a stored report and its potential matches.
type Report struct {
	Item    Item   `json:"item"`
	Matches []Item `json:"matches"`
}

// ItemQuery filters item listings. Empty fields are omitted.
type ItemQuery struct {
	Keyword    string
	Statuses   []string
	Types      []string
	Categories []string
	Locations  []string
	ReportedBy int64
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// Notification is addressed to the current user.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	UserID    int64     `json:"userId"`
	ItemID    int64     `json:"itemId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is a contact message about an item.
type Message struct {
	ID          int64     `json:"id"`
	ItemID      int64     `json:"itemId"`
	SenderID    int64     `json:"senderId"`
	RecipientID int64     `json:"recipientId"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserInput is the admin payload for accounts. Nil fields are omitted.
type UserInput struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// ItemStats holds headline counters.
type ItemStats struct {
	Total    int `json:"total"`
	Lost     int `json:"lost"`
	Found    int `json:"found"`
	Claimed  int `json:"claimed"`
	Pending  int `json:"pending"`
	Returned int `json:"returned"`
}

// Stats is the dashboard summary.
type Stats struct {
	Items      ItemStats      `json:"items"`
	ByStatus   map[string]int `json:"byStatus"`
	ByCategory map[string]int `json:"byCategory"`
	ByLocation map[string]int `json:"byLocation"`
	ByTime     struct {
		Today     int `json:"today"`
		ThisWeek  int `json:"thisWeek"`
		ThisMonth int `json:"thisMonth"`
	} `json:"byTime"`
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// ResetRequest is returned by ForgotPassword. Token is only set when the
// server exposes it.
type ResetRequest struct {
	Message    string    `json:"message"`
	ResetToken string    `json:"resetToken,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt,omitempty"`
}
