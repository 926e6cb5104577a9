package client

import (
	"context"
	"sync"
)

// NotificationCenter caches the current user's notifications and keeps the
// unread count in step with read-state changes.
type NotificationCenter struct {
	client *Client

	mu        sync.Mutex
	items     []Notification
	listeners []func([]Notification, int)
}

// NewNotificationCenter creates an empty center.
func NewNotificationCenter(c *Client) *NotificationCenter {
	return &NotificationCenter{client: c}
}

// Refresh reloads notifications from the server.
func (n *NotificationCenter) Refresh(ctx context.Context) error {
	list, err := n.client.Notifications(ctx)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.items = list
	n.mu.Unlock()
	n.notify()
	return nil
}

// Notifications returns a copy of the cached list.
func (n *NotificationCenter) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.items...)
}

// UnreadCount counts unread cached notifications.
func (n *NotificationCenter) UnreadCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return unread(n.items)
}

// MarkRead marks one notification read on the server and in the cache.
func (n *NotificationCenter) MarkRead(ctx context.Context, id int64) error {
	if err := n.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	n.mu.Lock()
	for i := range n.items {
		if n.items[i].ID == id {
			n.items[i].Read = true
		}
	}
	n.mu.Unlock()
	n.notify()
	return nil
}

// MarkAllRead marks every notification read.
func (n *NotificationCenter) MarkAllRead(ctx context.Context) error {
	if err := n.client.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	n.mu.Lock()
	for i := range n.items {
		n.items[i].Read = true
	}
	n.mu.Unlock()
	n.notify()
	return nil
}

// Reset drops the cache, e.g. after logout.
func (n *NotificationCenter) Reset() {
	n.mu.Lock()
	n.items = nil
	n.mu.Unlock()
	n.notify()
}

// Subscribe registers fn for cache changes.
func (n *NotificationCenter) Subscribe(fn func(list []Notification, unread int)) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

func (n *NotificationCenter) notify() {
	n.mu.Lock()
	list := append([]Notification(nil), n.items...)
	listeners := append([]func([]Notification, int){}, n.listeners...)
	n.mu.Unlock()

	count := unread(list)
	for _, fn := range listeners {
		fn(list, count)
	}
}

func unread(list []Notification) int {
	count := 0
	for _, item := range list {
		if !item.Read {
			count++
		}
	}
	return count
}
