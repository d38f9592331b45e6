package agent

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Gsus07/tichat-push/internal/push"
)

// Notification is one visible notification tracked by the center.
type Notification struct {
	ID      uuid.UUID
	Payload push.Payload
}

// NotificationCenter tracks the notifications currently on screen. Tags
// coalesce: showing a payload whose tag matches a visible notification
// replaces it instead of stacking a duplicate, which also makes rendering
// idempotent when push events for the same entity arrive concurrently.
type NotificationCenter struct {
	mu    sync.RWMutex
	byTag map[string]*Notification
}

func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{
		byTag: make(map[string]*Notification),
	}
}

// Show renders a payload and returns the notification ID. Same tag
// replaces, never duplicates.
func (c *NotificationCenter) Show(p push.Payload) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := &Notification{ID: uuid.New(), Payload: p}
	c.byTag[p.Tag] = n
	return n.ID
}

// Get returns a visible notification by ID.
func (c *NotificationCenter) Get(id uuid.UUID) (Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, n := range c.byTag {
		if n.ID == id {
			return *n, true
		}
	}
	return Notification{}, false
}

// Close removes a notification and returns it, so the caller can still
// route the interaction that closed it.
func (c *NotificationCenter) Close(id uuid.UUID) (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for tag, n := range c.byTag {
		if n.ID == id {
			delete(c.byTag, tag)
			return *n, true
		}
	}
	return Notification{}, false
}

// Visible returns the currently displayed notifications.
func (c *NotificationCenter) Visible() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Notification, 0, len(c.byTag))
	for _, n := range c.byTag {
		out = append(out, *n)
	}
	return out
}

// Count returns how many notifications are on screen.
func (c *NotificationCenter) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byTag)
}
