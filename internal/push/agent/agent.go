// The agent package implements the background delivery agent: the
// page-independent actor that receives push messages from the platform
// transport, renders notifications and routes user interaction back into
// the application. It runs in its own goroutine and shares no memory with
// the page side; everything crosses the boundary as events and messages.
package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gsus07/tichat-push/internal/push"
)

// TrackCloser records dismissed notifications server side. Implemented by
// store.Client. Calls are best effort.
type TrackCloser interface {
	TrackClose(ctx context.Context, notificationID string) error
}

// Event is one unit of work delivered to the agent's inbox.
type Event interface{ isEvent() }

// PushEvent carries the raw bytes of one push message from the transport.
type PushEvent struct{ Data []byte }

// ClickEvent reports a user click on a visible notification. Action is
// empty for a plain body click.
type ClickEvent struct {
	NotificationID uuid.UUID
	Action         string
}

// CloseEvent reports a notification dismissed without a click.
type CloseEvent struct{ NotificationID uuid.UUID }

// ClientMessageEvent carries a message posted by an application window.
type ClientMessageEvent struct{ Message Message }

func (PushEvent) isEvent()          {}
func (ClickEvent) isEvent()         {}
func (CloseEvent) isEvent()         {}
func (ClientMessageEvent) isEvent() {}

// settleEvent is an internal barrier: handled in the run loop after every
// event queued before it.
type settleEvent struct{ done chan struct{} }

func (settleEvent) isEvent() {}

const trackCloseTimeout = 5 * time.Second

// Agent is one version of the background delivery agent. At most one agent
// is active at a time; the Host owns promotion between versions.
type Agent struct {
	Version string

	center  *NotificationCenter
	clients *ClientRegistry
	tracker TrackCloser
	logger  *slog.Logger

	// skipOnInstall makes a freshly installed update activate immediately
	// instead of waiting for the old version to be released.
	skipOnInstall bool

	inbox   chan Event
	quit    chan struct{}
	pending sync.WaitGroup
}

// New builds an agent version. Updates activate immediately on install;
// pass waiting=true to keep the update parked until a SKIP_WAITING message
// arrives.
func New(version string, center *NotificationCenter, clients *ClientRegistry, tracker TrackCloser, logger *slog.Logger) *Agent {
	return &Agent{
		Version:       version,
		center:        center,
		clients:       clients,
		tracker:       tracker,
		logger:        logger,
		skipOnInstall: true,
		inbox:         make(chan Event, 32),
		quit:          make(chan struct{}),
	}
}

// WaitOnInstall disables immediate activation, leaving promotion to an
// explicit SKIP_WAITING message.
func (a *Agent) WaitOnInstall() *Agent {
	a.skipOnInstall = false
	return a
}

// Dispatch queues an event for the agent. Safe from any goroutine; a
// stopped agent drops events instead of blocking the sender.
func (a *Agent) Dispatch(ev Event) {
	select {
	case a.inbox <- ev:
	case <-a.quit:
	}
}

// Settle blocks until every event queued so far is handled and all
// fire-and-forget work has finished.
func (a *Agent) Settle() {
	done := make(chan struct{})
	a.Dispatch(settleEvent{done: done})
	select {
	case <-done:
	case <-a.quit:
	}
	a.pending.Wait()
}

// activate claims every open window and starts the event loop. Install has
// no asynchronous work of its own, so activation is the first real
// lifecycle step.
func (a *Agent) activate() {
	a.clients.ClaimAll()
	go a.run()
	a.logger.Info("push agent activated", "version", a.Version, "clients", a.clients.Count())
}

// stop waits for in-flight work, then shuts the event loop down.
func (a *Agent) stop() {
	a.pending.Wait()
	close(a.quit)
}

func (a *Agent) run() {
	for {
		select {
		case ev := <-a.inbox:
			a.handle(ev)
		case <-a.quit:
			return
		}
	}
}

// handle never lets a failure escape an event: every branch degrades to
// defaults or logs and continues.
func (a *Agent) handle(ev Event) {
	switch e := ev.(type) {
	case PushEvent:
		a.handlePush(e)
	case ClickEvent:
		a.handleClick(e)
	case CloseEvent:
		a.handleClose(e)
	case ClientMessageEvent:
		// SKIP_WAITING is consumed by the host before dispatch
		a.logger.Debug("client message ignored", "type", e.Message.Type)
	case settleEvent:
		close(e.done)
	}
}

func (a *Agent) handlePush(ev PushEvent) {
	payload, err := push.DecodePayload(ev.Data)
	if err != nil {
		// a broken payload still renders with defaults, delivery never
		// silently no-ops
		a.logger.Warn("push payload not valid JSON, using defaults", "error", err)
	}
	id := a.center.Show(payload)
	a.logger.Debug("notification shown", "id", id, "tag", payload.Tag)
}

func (a *Agent) handleClick(ev ClickEvent) {
	// the notification closes immediately, whatever the routing outcome
	n, ok := a.center.Close(ev.NotificationID)
	if !ok {
		a.logger.Debug("click on unknown notification", "id", ev.NotificationID)
		return
	}

	url, navigate := n.Payload.TargetURL(ev.Action)
	if !navigate {
		return
	}

	if c := a.clients.FindSameOrigin(); c != nil {
		c.Post(Message{
			Type: MessageNotificationClick,
			URL:  url,
			Data: n.Payload.Data,
		})
		c.Focus()
		return
	}
	a.clients.Open(url)
}

func (a *Agent) handleClose(ev CloseEvent) {
	n, ok := a.center.Close(ev.NotificationID)
	if !ok {
		return
	}
	if !n.Payload.TrackClose() || a.tracker == nil {
		return
	}

	// best effort, failures are logged and never retried
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), trackCloseTimeout)
		defer cancel()
		if err := a.tracker.TrackClose(ctx, n.Payload.NotificationID()); err != nil {
			a.logger.Warn("close tracking failed", "error", err)
		}
	}()
}

// Host owns the at-most-one-active-agent rule for the origin. New versions
// install through Register; SKIP_WAITING messages promote a parked update.
type Host struct {
	mu      sync.Mutex
	clients *ClientRegistry
	logger  *slog.Logger
	active  *Agent
	waiting *Agent
}

func NewHost(clients *ClientRegistry, logger *slog.Logger) *Host {
	return &Host{clients: clients, logger: logger}
}

// Register installs an agent version. The first version activates at once;
// later versions replace the active one immediately unless they were built
// with WaitOnInstall.
func (h *Host) Register(a *Agent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.active == nil {
		h.active = a
		a.activate()
		return
	}
	h.waiting = a
	if a.skipOnInstall {
		h.promote()
	}
}

// Dispatch routes an event to the active agent. SKIP_WAITING is a host
// concern and handled here.
func (h *Host) Dispatch(ev Event) {
	if msg, ok := ev.(ClientMessageEvent); ok && msg.Message.Type == MessageSkipWaiting {
		h.mu.Lock()
		h.promote()
		h.mu.Unlock()
		return
	}

	h.mu.Lock()
	active := h.active
	h.mu.Unlock()
	if active == nil {
		h.logger.Warn("event dropped, no active agent")
		return
	}
	active.Dispatch(ev)
}

// Push is shorthand for dispatching a raw push message.
func (h *Host) Push(data []byte) {
	h.Dispatch(PushEvent{Data: data})
}

// Active returns the currently active agent, nil before the first Register.
func (h *Host) Active() *Agent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Waiting returns the parked update, if any.
func (h *Host) Waiting() *Agent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waiting
}

// Settle waits until the active agent has handled everything queued so far.
func (h *Host) Settle() {
	h.mu.Lock()
	active := h.active
	h.mu.Unlock()
	if active != nil {
		active.Settle()
	}
}

// callers must hold h.mu
func (h *Host) promote() {
	if h.waiting == nil {
		return
	}
	old := h.active
	h.active = h.waiting
	h.waiting = nil
	h.active.activate()
	if old != nil {
		old.stop()
		h.logger.Info("push agent replaced", "old", old.Version, "new", h.active.Version)
	}
}
