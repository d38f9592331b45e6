package push

import "encoding/json"

// DeviceTypeWeb is the only device type this client registers; mobile apps
// register through their own token endpoints.
const DeviceTypeWeb = "web"

// Keys holds the client cryptographic material the push transport needs to
// encrypt payloads for this installation.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription identifies where push messages for one browser installation
// are delivered. The endpoint is the natural identity: at most one active
// subscription exists per installation.
type Subscription struct {
	Endpoint string `json:"endpoint"`
	Keys     Keys   `json:"keys"`
}

// Token returns the JSON encoding sent to the subscription store as the
// opaque token value.
func (s Subscription) Token() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
