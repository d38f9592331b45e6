package agent

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Message types exchanged between the agent and application windows.
const (
	MessageNotificationClick = "NOTIFICATION_CLICK"
	MessageSkipWaiting       = "SKIP_WAITING"
)

// Message is the structured payload posted across the page/agent boundary.
// The two contexts share no memory; this is the whole contract.
type Message struct {
	Type string         `json:"type"`
	URL  string         `json:"url,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// Client is one open application window. Each window owns an inbox channel
// for messages posted by the agent.
type Client struct {
	ID uuid.UUID

	mu      sync.Mutex
	url     string
	focused bool
	claimed bool
	inbox   chan Message
}

// Post delivers a message to the window. Windows that stopped draining
// their inbox lose messages rather than blocking the agent.
func (c *Client) Post(msg Message) {
	select {
	case c.inbox <- msg:
	default:
	}
}

// Inbox exposes the window's message stream.
func (c *Client) Inbox() <-chan Message {
	return c.inbox
}

func (c *Client) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = true
}

func (c *Client) Focused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

func (c *Client) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

func (c *Client) Claimed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.claimed
}

// ClientRegistry is the set of open application windows reachable from the
// agent. Windows opened before the current agent version existed are listed
// too; claiming only marks control, it never filters lookups.
type ClientRegistry struct {
	mu      sync.RWMutex
	origin  string
	clients map[uuid.UUID]*Client
}

// NewClientRegistry builds a registry for one origin, e.g.
// "https://tichat.gg".
func NewClientRegistry(origin string) *ClientRegistry {
	return &ClientRegistry{
		origin:  strings.TrimSuffix(origin, "/"),
		clients: make(map[uuid.UUID]*Client),
	}
}

// Open registers a new window at the given URL and returns it.
func (r *ClientRegistry) Open(url string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Client{
		ID:    uuid.New(),
		url:   url,
		inbox: make(chan Message, 16),
	}
	r.clients[c.ID] = c
	return c
}

// Close removes a window from the registry.
func (r *ClientRegistry) Close(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

// All returns every open window.
func (r *ClientRegistry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// FindSameOrigin returns an open window belonging to this origin, or nil.
func (r *ClientRegistry) FindSameOrigin() *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		if r.sameOrigin(c.URL()) {
			return c
		}
	}
	return nil
}

// ClaimAll puts every open window, including pre-existing ones, under the
// control of the newly activated agent.
func (r *ClientRegistry) ClaimAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		c.mu.Lock()
		c.claimed = true
		c.mu.Unlock()
	}
}

// Count returns the number of open windows.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// relative URLs always belong to the origin
func (r *ClientRegistry) sameOrigin(url string) bool {
	if strings.HasPrefix(url, "/") {
		return true
	}
	return r.origin != "" && strings.HasPrefix(url, r.origin)
}
