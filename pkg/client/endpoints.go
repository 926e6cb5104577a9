package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Login exchanges credentials for a token. It does not touch the session
// store; Authenticator does.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email": email, "password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, map[string]string{
		"name": name, "email": email, "password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout revokes the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// ForgotPassword starts a password reset.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*ResetRequest, error) {
	var res ResetRequest
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", nil, map[string]string{"email": email}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ResetPassword redeems a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", nil, map[string]string{
		"token": token, "password": password,
	}, nil)
}

// ChangePassword replaces the current user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/change-password", nil, map[string]string{
		"currentPassword": current, "newPassword": next,
	}, nil)
}

// Me returns the current user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe edits the current user's name and email.
func (c *Client) UpdateMe(ctx context.Context, name, email *string) (*User, error) {
	var user User
	body := map[string]*string{"name": name, "email": email}
	if err := c.do(ctx, http.MethodPut, "/api/users/me", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (q ItemQuery) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("q", q.Keyword)
	set("status", strings.Join(q.Statuses, ","))
	set("type", strings.Join(q.Types, ","))
	set("category", strings.Join(q.Categories, ","))
	set("location", strings.Join(q.Locations, ","))
	if q.ReportedBy > 0 {
		v.Set("reportedBy", strconv.FormatInt(q.ReportedBy, 10))
	}
	if q.From != nil {
		v.Set("from", q.From.Format(time.RFC3339))
	}
	if q.To != nil {
		v.Set("to", q.To.Format(time.RFC3339))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

// ListItems returns one page of items.
func (c *Client) ListItems(ctx context.Context, q ItemQuery) (*ItemPage, error) {
	var page ItemPage
	if err := c.do(ctx, http.MethodGet, "/api/items", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchItems matches keyword against description and location.
func (c *Client) SearchItems(ctx context.Context, keyword string) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, "/api/items/search", url.Values{"q": {keyword}}, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem fetches one item.
func (c *Client) GetItem(ctx context.Context, id int64) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodGet, itemPath(id, ""), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ReportItem submits a new report.
func (c *Client) ReportItem(ctx context.Context, in ItemInput) (*Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodPost, "/api/items", nil, in, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateItem edits one of the current user's reports.
func (c *Client) UpdateItem(ctx context.Context, id int64, in ItemUpdate) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodPut, itemPath(id, ""), nil, in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CancelItem withdraws one of the current user's reports.
func (c *Client) CancelItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(id, ""), nil, nil, nil)
}

// ClaimItem claims an item for the current user.
func (c *Client) ClaimItem(ctx context.Context, id int64) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodPost, itemPath(id, "/claim"), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Matches lists the potential matches of an item.
func (c *Client) Matches(ctx context.Context, id int64) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, itemPath(id, "/matches"), nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UploadImage stores an item photo and returns its URL.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/items/upload", nil, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	var res struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

// Stats returns the public dashboard summary.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Notifications lists the current user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var list []Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/unread-count", nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", id), nil, nil, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil, nil)
}

// SendMessage contacts the reporter of an item.
func (c *Client) SendMessage(ctx context.Context, itemID int64, message string) (*Message, error) {
	var msg Message
	body := map[string]any{"itemId": itemID, "message": message}
	if err := c.do(ctx, http.MethodPost, "/api/contact/send", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Inbox lists messages received by the current user.
func (c *Client) Inbox(ctx context.Context) ([]Message, error) {
	var list []Message
	if err := c.do(ctx, http.MethodGet, "/api/contact/messages", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func itemPath(id int64, suffix string) string {
	return "/api/items/" + strconv.FormatInt(id, 10) + suffix
}
