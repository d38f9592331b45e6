package push

import (
	"encoding/json"
	"strconv"
)

// Defaults applied when a push message omits fields. A partial or malformed
// payload always renders; delivery never silently no-ops.
const (
	DefaultTitle = "Nueva notificación"
	DefaultBody  = "Tienes una nueva notificación"
	DefaultIcon  = "/favicon.svg"
	DefaultTag   = "default"
)

// ActionDismiss closes the notification without navigating anywhere.
const ActionDismiss = "dismiss"

// Action is one button rendered on a notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Payload describes one notification to show. Constructed transiently from
// the raw push message bytes at delivery time; never persisted.
type Payload struct {
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon"`
	Badge              string         `json:"badge"`
	Tag                string         `json:"tag"`
	Data               map[string]any `json:"data"`
	Actions            []Action       `json:"actions"`
	RequireInteraction bool           `json:"requireInteraction"`
	Silent             bool           `json:"silent"`
}

// wirePayload matches the wire format delivered by the push transport.
// "message" and "body" are both accepted for the body text, and "id" feeds
// the tag fallback so repeated pushes for the same entity coalesce.
type wirePayload struct {
	Title              string         `json:"title"`
	Message            string         `json:"message"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon"`
	Badge              string         `json:"badge"`
	Tag                string         `json:"tag"`
	ID                 any            `json:"id"`
	Data               map[string]any `json:"data"`
	Actions            []Action       `json:"actions"`
	RequireInteraction bool           `json:"requireInteraction"`
	Silent             bool           `json:"silent"`
}

// DecodePayload parses raw push message bytes into a fully populated
// Payload. The returned payload is always renderable: every missing field
// falls back to its default. The error only reports why defaults were used
// so the caller can log it.
func DecodePayload(raw []byte) (Payload, error) {
	p := Payload{
		Title:   DefaultTitle,
		Body:    DefaultBody,
		Icon:    DefaultIcon,
		Badge:   DefaultIcon,
		Tag:     DefaultTag,
		Data:    map[string]any{},
		Actions: []Action{},
	}

	var wire wirePayload
	if err := json.Unmarshal(raw, &wire); err != nil {
		return p, err
	}

	if wire.Title != "" {
		p.Title = wire.Title
	}
	if wire.Message != "" {
		p.Body = wire.Message
	} else if wire.Body != "" {
		p.Body = wire.Body
	}
	if wire.Icon != "" {
		p.Icon = wire.Icon
	}
	if wire.Badge != "" {
		p.Badge = wire.Badge
	}
	if wire.Data != nil {
		p.Data = wire.Data
	}
	if wire.Actions != nil {
		p.Actions = wire.Actions
	}
	p.RequireInteraction = wire.RequireInteraction
	p.Silent = wire.Silent

	switch {
	case wire.Tag != "":
		p.Tag = wire.Tag
	case asString(wire.ID) != "":
		p.Tag = asString(wire.ID)
	case p.dataString("id") != "":
		p.Tag = p.dataString("id")
	}

	return p, nil
}

// TargetURL resolves where a click on this notification should navigate.
// Precedence: dismiss action wins (no navigation at all), then an explicit
// data.url, then postId, gameId, serverId, and finally the root page.
func (p Payload) TargetURL(action string) (string, bool) {
	if action == ActionDismiss {
		return "", false
	}
	if url := p.dataString("url"); url != "" {
		return url, true
	}
	if id := p.dataString("postId"); id != "" {
		return "/post/" + id, true
	}
	if id := p.dataString("gameId"); id != "" {
		return "/game/" + id, true
	}
	if id := p.dataString("serverId"); id != "" {
		return "/server/" + id, true
	}
	return "/", true
}

// TrackClose reports whether dismissing this notification should be
// recorded server side.
func (p Payload) TrackClose() bool {
	v, ok := p.Data["trackClose"].(bool)
	return ok && v
}

// NotificationID returns the identifier reported to the close tracking
// endpoint. Falls back to the tag, which is never empty after decoding.
func (p Payload) NotificationID() string {
	if id := p.dataString("id"); id != "" {
		return id
	}
	return p.Tag
}

func (p Payload) dataString(key string) string {
	return asString(p.Data[key])
}

// asString stringifies JSON scalar values; routing hints arrive either as
// strings or numbers depending on who produced the payload.
func asString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}
