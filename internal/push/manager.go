package push

import (
	"context"
	"log/slog"
	"sync"
)

// State is the manager's lifecycle position for this installation.
type State string

const (
	StateUnsupported  State = "unsupported"
	StateUnregistered State = "unregistered"
	StateNoPermission State = "no_permission"
	StateUnsubscribed State = "unsubscribed"
	StateSubscribed   State = "subscribed"
)

// Store is the remote subscription store the manager keeps in sync with the
// platform subscription. Implemented by store.Client.
type Store interface {
	RegisterToken(ctx context.Context, sub Subscription) error
	RemoveToken(ctx context.Context, sub Subscription) error
	Preferences(ctx context.Context) (Preferences, error)
	SavePreferences(ctx context.Context, prefs Preferences) error
}

// Manager mediates between platform capability, user consent and the remote
// store. Public operations never panic and report success as a boolean;
// failures are logged and folded into state. Mutating operations are
// serialized by a mutex, reads are idempotent and safe from any goroutine.
//
// State changes are published to Watch channels instead of being polled.
type Manager struct {
	mu       sync.Mutex
	platform Platform
	store    Store
	appKey   string
	logger   *slog.Logger

	state       State
	watchers    map[int]chan State
	nextWatcher int
}

// NewManager builds a manager for one installation. The application server
// key is fixed configuration shared by every subscribe call.
func NewManager(platform Platform, store Store, applicationServerKey string, logger *slog.Logger) *Manager {
	m := &Manager{
		platform: platform,
		store:    store,
		appKey:   applicationServerKey,
		logger:   logger,
		state:    StateUnregistered,
		watchers: make(map[int]chan State),
	}
	if !platform.Supported() {
		m.state = StateUnsupported
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Watch returns a channel receiving every state change plus the current
// state, and a cancel func that releases it. Slow consumers miss updates
// rather than blocking the manager.
func (m *Manager) Watch() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan State, 8)
	ch <- m.state
	id := m.nextWatcher
	m.nextWatcher++
	m.watchers[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.watchers[id]; ok {
			delete(m.watchers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// RegisterAgent installs the background delivery agent and settles the
// state from the current permission value. Registration failure is
// non-fatal: the app works without push, so it logs and stays unregistered.
func (m *Manager) RegisterAgent(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateUnsupported:
		return false
	case StateUnregistered:
		// proceed
	default:
		return true
	}

	if err := m.platform.RegisterAgent(ctx); err != nil {
		m.logger.Warn("push agent registration failed", "error", err)
		return false
	}
	m.setState(m.stateFromPermission())
	return true
}

// RequestPermission prompts the user for notification permission. A denied
// answer is sticky until the user changes it in browser settings; the
// manager never re-prompts on its own.
func (m *Manager) RequestPermission(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateUnsupported, StateUnregistered:
		return false
	case StateUnsubscribed, StateSubscribed:
		return true
	}

	perm, err := m.platform.RequestPermission(ctx)
	if err != nil {
		m.logger.Warn("permission request failed", "error", err)
		return false
	}
	m.setState(m.stateFromPermission())
	return perm == PermissionGranted
}

// Subscribe creates the platform subscription and persists it remotely.
// Idempotent while already subscribed. A failed store write rolls the
// platform subscription back so a Subscribed state always implies a
// store-side record.
func (m *Manager) Subscribe(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateSubscribed:
		return true
	case StateUnsubscribed:
		// proceed
	default:
		return false
	}

	sub, err := m.platform.Subscribe(ctx, m.appKey)
	if err != nil {
		m.logger.Error("platform subscribe failed", "error", err)
		return false
	}

	if err := m.store.RegisterToken(ctx, *sub); err != nil {
		m.logger.Error("subscription store write failed, rolling back", "error", err)
		if uerr := m.platform.Unsubscribe(ctx); uerr != nil {
			m.logger.Error("rollback unsubscribe failed", "error", uerr)
		}
		m.setState(StateUnsubscribed)
		return false
	}

	m.setState(StateSubscribed)
	return true
}

// Unsubscribe tears the subscription down, platform first. A platform
// failure keeps the Subscribed state; a store delete failure is logged and
// accepted (the store reconciles invalidated endpoints on its own).
func (m *Manager) Unsubscribe(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateUnsubscribed:
		return true
	case StateSubscribed:
		// proceed
	default:
		return false
	}

	sub := m.platform.Subscription()
	if err := m.platform.Unsubscribe(ctx); err != nil {
		m.logger.Error("platform unsubscribe failed", "error", err)
		return false
	}
	if sub != nil {
		if err := m.store.RemoveToken(ctx, *sub); err != nil {
			m.logger.Warn("subscription store delete failed", "error", err)
		}
	}
	m.setState(StateUnsubscribed)
	return true
}

// TestNotification renders a local notification so the user can verify
// delivery works. No network involved, no state change.
func (m *Manager) TestNotification(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateUnsubscribed && m.state != StateSubscribed {
		return false
	}

	payload := Payload{
		Title: "TiChat",
		Body:  "Las notificaciones funcionan correctamente",
		Icon:  DefaultIcon,
		Badge: DefaultIcon,
		Tag:   "test",
		Data:  map[string]any{},
	}
	if err := m.platform.ShowNotification(ctx, payload); err != nil {
		m.logger.Warn("test notification failed", "error", err)
		return false
	}
	return true
}

// Preferences loads the opt-in matrix from the store, falling back to
// defaults when the store is unreachable.
func (m *Manager) Preferences(ctx context.Context) (Preferences, bool) {
	prefs, err := m.store.Preferences(ctx)
	if err != nil {
		m.logger.Warn("loading preferences failed", "error", err)
		return DefaultPreferences(), false
	}
	return prefs, true
}

// SavePreferences persists the matrix and keeps the push toggle consistent
// with the subscription lifecycle: enabling subscribes first, disabling
// unsubscribes. When subscribing fails the toggle reverts to off and the
// save is reported as failed.
func (m *Manager) SavePreferences(ctx context.Context, prefs Preferences) bool {
	if prefs.PushNotifications {
		if !m.Subscribe(ctx) {
			return false
		}
	} else if m.State() == StateSubscribed {
		if !m.Unsubscribe(ctx) {
			return false
		}
	}

	if err := m.store.SavePreferences(ctx, prefs); err != nil {
		m.logger.Error("saving preferences failed", "error", err)
		return false
	}
	return true
}

// callers must hold m.mu
func (m *Manager) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	for _, ch := range m.watchers {
		select {
		case ch <- s:
		default:
		}
	}
}

func (m *Manager) stateFromPermission() State {
	switch m.platform.Permission() {
	case PermissionGranted:
		if m.platform.Subscription() != nil {
			return StateSubscribed
		}
		return StateUnsubscribed
	default:
		return StateNoPermission
	}
}
