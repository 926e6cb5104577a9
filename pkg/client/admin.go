package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AdminListItems lists items; the keyword also matches category.
func (c *Client) AdminListItems(ctx context.Context, q ItemQuery) (*ItemPage, error) {
	var page ItemPage
	if err := c.do(ctx, http.MethodGet, "/api/admin/items", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AdminCreateItem creates an item with any status and reporter.
func (c *Client) AdminCreateItem(ctx context.Context, in ItemInput) (*Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodPost, "/api/admin/items", nil, in, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// AdminUpdateItem edits any item.
func (c *Client) AdminUpdateItem(ctx context.Context, id int64, in ItemUpdate) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/items/%d", id), nil, in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItemStatus moves an item to status.
func (c *Client) SetItemStatus(ctx context.Context, id int64, status string) (*Item, error) {
	var item Item
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/admin/items/%d/status", id), nil, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ApproveItem approves a pending report.
func (c *Client) ApproveItem(ctx context.Context, id int64) (*Item, error) {
	return c.adminItemAction(ctx, id, "approve")
}

// RejectItem rejects a report.
func (c *Client) RejectItem(ctx context.Context, id int64) (*Item, error) {
	return c.adminItemAction(ctx, id, "reject")
}

func (c *Client) adminItemAction(ctx context.Context, id int64, action string) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/admin/items/%d/%s", id, action), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AdminDeleteItem removes any item.
func (c *Client) AdminDeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/items/%d", id), nil, nil, nil)
}

// ListUsers lists every account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser adds an account.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/admin/users", nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser edits an account.
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserInput) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account. Administrators cannot be deleted.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), nil, nil, nil)
}

// AdminMessages lists contact messages, optionally by status.
func (c *Client) AdminMessages(ctx context.Context, status string) ([]Message, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status}}
	}
	var list []Message
	if err := c.do(ctx, http.MethodGet, "/api/admin/messages", query, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ArchiveMessage archives a contact message.
func (c *Client) ArchiveMessage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/admin/messages/%d/archive", id), nil, nil, nil)
}

// DeleteMessage removes a contact message.
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/messages/%d", id), nil, nil, nil)
}

// AdminStats returns the admin dashboard summary.
func (c *Client) AdminStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
