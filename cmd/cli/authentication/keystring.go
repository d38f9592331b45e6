package authentication

// Keyring-backed storage for the CLI: the bearer token for the notification
// API and the locally created push subscription, so unsubscribe works from
// a later invocation.

import (
	"encoding/json"

	"github.com/zalando/go-keyring"

	"github.com/Gsus07/tichat-push/internal/push"
)

const (
	serviceName     = "tichat-cli"
	tokenKey        = "auth_token"
	subscriptionKey = "push_subscription"
)

func StoreToken(token string) error {
	return keyring.Set(serviceName, tokenKey, token)
}

func GetToken() (string, error) {
	return keyring.Get(serviceName, tokenKey)
}

func DeleteToken() error {
	return keyring.Delete(serviceName, tokenKey)
}

func StoreSubscription(sub push.Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, subscriptionKey, string(data))
}

func GetSubscription() (*push.Subscription, error) {
	value, err := keyring.Get(serviceName, subscriptionKey)
	if err != nil {
		return nil, err
	}

	var sub push.Subscription
	if err := json.Unmarshal([]byte(value), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func DeleteSubscription() error {
	return keyring.Delete(serviceName, subscriptionKey)
}
