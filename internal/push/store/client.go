package store

// client.go = thin HTTP client for the notification API. Pure
// request/response translation, no business logic; the manager decides what
// a failure means.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Gsus07/tichat-push/internal/push"
)

// Client talks to the subscription store REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// request/response bodies for the notification API
type pushTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type,omitempty"`
}

type preferencesResponse struct {
	Preferences push.Preferences `json:"preferences"`
}

type trackCloseRequest struct {
	NotificationID string `json:"notificationId"`
	Action         string `json:"action"`
}

// constructor for the store client
func NewClient(apiURL string) *Client {
	return &Client{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken sets the bearer token used on every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// RegisterToken creates (or refreshes) the subscription record. The server
// upserts by endpoint, so repeated calls from different tabs converge on
// one record.
func (c *Client) RegisterToken(ctx context.Context, sub push.Subscription) error {
	token, err := sub.Token()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/notifications/push-token", pushTokenRequest{
		Token:      token,
		DeviceType: push.DeviceTypeWeb,
	}, nil)
}

// RemoveToken deletes the subscription record.
func (c *Client) RemoveToken(ctx context.Context, sub push.Subscription) error {
	token, err := sub.Token()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/notifications/push-token", pushTokenRequest{
		Token: token,
	}, nil)
}

// Preferences loads the user's opt-in matrix.
func (c *Client) Preferences(ctx context.Context) (push.Preferences, error) {
	var resp preferencesResponse
	if err := c.do(ctx, http.MethodGet, "/api/notifications/preferences", nil, &resp); err != nil {
		return push.Preferences{}, err
	}
	return resp.Preferences, nil
}

// SavePreferences persists the full matrix.
func (c *Client) SavePreferences(ctx context.Context, prefs push.Preferences) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/preferences", prefs, nil)
}

// TrackClose records a dismissed notification. Fire and forget; the caller
// only logs failures.
func (c *Client) TrackClose(ctx context.Context, notificationID string) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/track-close", trackCloseRequest{
		NotificationID: notificationID,
		Action:         "close",
	}, nil)
}

// do sends one JSON request. Any 2xx counts as success, everything else is
// an error surfaced to the manager.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonData)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close() // Ensure the response body is closed

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed with status: %s", method, path, response.Status)
	}

	if out != nil {
		if err := json.NewDecoder(response.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
