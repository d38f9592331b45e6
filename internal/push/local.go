package push

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrUnsupported     = errors.New("push is not supported on this installation")
	ErrNoAgent         = errors.New("delivery agent is not registered")
	ErrPermissionState = errors.New("notification permission not granted")
)

// LocalPlatform is an in-memory Platform used by the CLI and by tests. It
// behaves like a capable browser: permission prompts resolve to a
// configurable answer, subscribe hands out one subscription per
// installation, and shown notifications are recorded for inspection.
type LocalPlatform struct {
	mu           sync.Mutex
	supported    bool
	registered   bool
	permission   Permission
	promptAnswer Permission
	subscription *Subscription
	shown        []Payload
}

func NewLocalPlatform() *LocalPlatform {
	return &LocalPlatform{
		supported:    true,
		permission:   PermissionDefault,
		promptAnswer: PermissionGranted,
	}
}

// NewUnsupportedPlatform simulates an installation without push capability.
func NewUnsupportedPlatform() *LocalPlatform {
	p := NewLocalPlatform()
	p.supported = false
	return p
}

// SetPromptAnswer controls how the next permission prompt resolves.
func (p *LocalPlatform) SetPromptAnswer(answer Permission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promptAnswer = answer
}

func (p *LocalPlatform) Supported() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.supported
}

func (p *LocalPlatform) RegisterAgent(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.supported {
		return ErrUnsupported
	}
	p.registered = true
	return nil
}

func (p *LocalPlatform) AgentRegistered() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registered
}

func (p *LocalPlatform) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

func (p *LocalPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.supported {
		return PermissionDenied, ErrUnsupported
	}
	// denied and granted are both sticky, only "default" prompts
	if p.permission == PermissionDefault {
		p.permission = p.promptAnswer
	}
	return p.permission, nil
}

func (p *LocalPlatform) Subscribe(ctx context.Context, applicationServerKey string) (*Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.registered {
		return nil, ErrNoAgent
	}
	if p.permission != PermissionGranted {
		return nil, ErrPermissionState
	}
	if applicationServerKey == "" {
		return nil, errors.New("application server key is required")
	}
	// one subscription per installation, repeated calls converge on it
	if p.subscription == nil {
		p.subscription = &Subscription{
			Endpoint: fmt.Sprintf("https://push.tichat.local/send/%s", uuid.NewString()),
			Keys: Keys{
				P256dh: uuid.NewString(),
				Auth:   uuid.NewString(),
			},
		}
	}
	sub := *p.subscription
	return &sub, nil
}

func (p *LocalPlatform) Subscription() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subscription == nil {
		return nil
	}
	sub := *p.subscription
	return &sub
}

func (p *LocalPlatform) Unsubscribe(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscription = nil
	return nil
}

func (p *LocalPlatform) ShowNotification(ctx context.Context, payload Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.permission != PermissionGranted {
		return ErrPermissionState
	}
	p.shown = append(p.shown, payload)
	return nil
}

// Shown returns the notifications rendered so far.
func (p *LocalPlatform) Shown() []Payload {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Payload, len(p.shown))
	copy(out, p.shown)
	return out
}
