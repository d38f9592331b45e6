package push

import "context"

// Permission mirrors the three browser notification permission values.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Platform abstracts the browser push capability the manager drives:
// support detection, agent registration, permission negotiation and the
// subscribe/unsubscribe pair. Permission and Subscription are synchronous
// reads; everything else may suspend.
type Platform interface {
	// Supported reports whether this installation can receive push at all.
	// Checked once at startup; a false value is sticky.
	Supported() bool

	// RegisterAgent installs the background delivery agent. Repeated calls
	// after a successful registration are no-ops.
	RegisterAgent(ctx context.Context) error
	AgentRegistered() bool

	Permission() Permission

	// RequestPermission prompts the user unless the value is already
	// decided, in which case the current value comes back unchanged.
	RequestPermission(ctx context.Context) (Permission, error)

	// Subscribe creates (or returns the existing) subscription for this
	// installation using the fixed application server key.
	Subscribe(ctx context.Context, applicationServerKey string) (*Subscription, error)

	// Subscription returns the current subscription, nil when none exists.
	Subscription() *Subscription

	Unsubscribe(ctx context.Context) error

	// ShowNotification renders a local notification without touching the
	// network. Used for the user-facing test notification.
	ShowNotification(ctx context.Context, p Payload) error
}
