package push

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStore mocks the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) RegisterToken(ctx context.Context, sub Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockStore) RemoveToken(ctx context.Context, sub Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockStore) Preferences(ctx context.Context) (Preferences, error) {
	args := m.Called(ctx)
	return args.Get(0).(Preferences), args.Error(1)
}

func (m *MockStore) SavePreferences(ctx context.Context, prefs Preferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testAppKey = "test-application-server-key"

func newTestManager(platform Platform, store Store) *Manager {
	return NewManager(platform, store, testAppKey, testLogger())
}

func TestManager_UnsupportedPlatformIsTerminal(t *testing.T) {
	m := newTestManager(NewUnsupportedPlatform(), new(MockStore))
	ctx := context.Background()

	assert.Equal(t, StateUnsupported, m.State())
	assert.False(t, m.RegisterAgent(ctx))
	assert.False(t, m.RequestPermission(ctx))
	assert.False(t, m.Subscribe(ctx))
	assert.False(t, m.Unsubscribe(ctx))
	assert.False(t, m.TestNotification(ctx))
	assert.Equal(t, StateUnsupported, m.State())
}

func TestManager_RegisterAgentSettlesPermissionState(t *testing.T) {
	platform := NewLocalPlatform()
	m := newTestManager(platform, new(MockStore))

	assert.Equal(t, StateUnregistered, m.State())
	assert.True(t, m.RegisterAgent(context.Background()))
	assert.Equal(t, StateNoPermission, m.State())
	assert.True(t, platform.AgentRegistered())
}

func TestManager_OperationsRequireRegistration(t *testing.T) {
	m := newTestManager(NewLocalPlatform(), new(MockStore))
	ctx := context.Background()

	assert.False(t, m.RequestPermission(ctx))
	assert.False(t, m.Subscribe(ctx))
}

func TestManager_PermissionDeniedIsSticky(t *testing.T) {
	platform := NewLocalPlatform()
	platform.SetPromptAnswer(PermissionDenied)
	m := newTestManager(platform, new(MockStore))
	ctx := context.Background()

	m.RegisterAgent(ctx)
	assert.False(t, m.RequestPermission(ctx))
	assert.Equal(t, StateNoPermission, m.State())

	// asking again never re-prompts its way past a denial
	platform.SetPromptAnswer(PermissionGranted)
	assert.False(t, m.RequestPermission(ctx))
	assert.Equal(t, StateNoPermission, m.State())
}

func TestManager_SubscribeHappyPath(t *testing.T) {
	platform := NewLocalPlatform()
	store := new(MockStore)
	store.On("RegisterToken", mock.Anything, mock.AnythingOfType("push.Subscription")).Return(nil)

	m := newTestManager(platform, store)
	ctx := context.Background()

	assert.True(t, m.RegisterAgent(ctx))
	assert.True(t, m.RequestPermission(ctx))
	assert.Equal(t, StateUnsubscribed, m.State())

	assert.True(t, m.Subscribe(ctx))
	assert.Equal(t, StateSubscribed, m.State())
	assert.NotNil(t, platform.Subscription())
	store.AssertNumberOfCalls(t, "RegisterToken", 1)
}

func TestManager_SubscribeIsIdempotent(t *testing.T) {
	platform := NewLocalPlatform()
	store := new(MockStore)
	store.On("RegisterToken", mock.Anything, mock.Anything).Return(nil)

	m := newTestManager(platform, store)
	ctx := context.Background()
	m.RegisterAgent(ctx)
	m.RequestPermission(ctx)

	assert.True(t, m.Subscribe(ctx))
	endpoint := platform.Subscription().Endpoint

	// second call succeeds without a new platform subscription or store write
	assert.True(t, m.Subscribe(ctx))
	assert.Equal(t, endpoint, platform.Subscription().Endpoint)
	store.AssertNumberOfCalls(t, "RegisterToken", 1)
}

func TestManager_SubscribeRollsBackOnStoreFailure(t *testing.T) {
	platform := NewLocalPlatform()
	store := new(MockStore)
	store.On("RegisterToken", mock.Anything, mock.Anything).Return(errors.New("store unreachable"))

	m := newTestManager(platform, store)
	ctx := context.Background()
	m.RegisterAgent(ctx)
	m.RequestPermission(ctx)

	assert.False(t, m.Subscribe(ctx))

	// subscribed state must imply a store record, so the platform
	// subscription rolls back
	assert.Equal(t, StateUnsubscribed, m.State())
	assert.Nil(t, platform.Subscription())
}

func TestManager_UnsubscribeThenSubscribe(t *testing.T) {
	platform := NewLocalPlatform()
	store := new(MockStore)
	store.On("RegisterToken", mock.Anything, mock.Anything).Return(nil)
	store.On("RemoveToken", mock.Anything, mock.Anything).Return(nil)

	m := newTestManager(platform, store)
	ctx := context.Background()
	m.RegisterAgent(ctx)
	m.RequestPermission(ctx)

	assert.True(t, m.Subscribe(ctx))
	assert.True(t, m.Unsubscribe(ctx))
	assert.Equal(t, StateUnsubscribed, m.State())
	assert.Nil(t, platform.Subscription())

	assert.True(t, m.Subscribe(ctx))
	assert.Equal(t, StateSubscribed, m.State())
	assert.NotNil(t, platform.Subscription())
	store.AssertNumberOfCalls(t, "RegisterToken", 2)
}

func TestManager_UnsubscribeWhileUnsubscribedSucceeds(t *testing.T) {
	platform := NewLocalPlatform()
	m := newTestManager(platform, new(MockStore))
	ctx := context.Background()
	m.RegisterAgent(ctx)
	m.RequestPermission(ctx)

	assert.True(t, m.Unsubscribe(ctx))
	assert.Equal(t, StateUnsubscribed, m.State())
}

func TestManager_TestNotificationNeedsPermission(t *testing.T) {
	platform := NewLocalPlatform()
	m := newTestManager(platform, new(MockStore))
	ctx := context.Background()

	m.RegisterAgent(ctx)
	assert.False(t, m.TestNotification(ctx))

	m.RequestPermission(ctx)
	assert.True(t, m.TestNotification(ctx))
	assert.Len(t, platform.Shown(), 1)
	assert.Equal(t, StateUnsubscribed, m.State())
}

func TestManager_WatchPublishesStateChanges(t *testing.T) {
	platform := NewLocalPlatform()
	store := new(MockStore)
	store.On("RegisterToken", mock.Anything, mock.Anything).Return(nil)

	m := newTestManager(platform, store)
	ch, cancel := m.Watch()
	defer cancel()

	ctx := context.Background()
	m.RegisterAgent(ctx)
	m.RequestPermission(ctx)
	m.Subscribe(ctx)

	var seen []State
	for len(ch) > 0 {
		seen = append(seen, <-ch)
	}
	assert.Equal(t, []State{StateUnregistered, StateNoPermission, StateUnsubscribed, StateSubscribed}, seen)
}

func TestManager_SavePreferencesKeepsToggleConsistent(t *testing.T) {
	platform := NewLocalPlatform()
	store := new(MockStore)
	store.On("RegisterToken", mock.Anything, mock.Anything).Return(nil)
	store.On("RemoveToken", mock.Anything, mock.Anything).Return(nil)
	store.On("SavePreferences", mock.Anything, mock.Anything).Return(nil)

	m := newTestManager(platform, store)
	ctx := context.Background()
	m.RegisterAgent(ctx)
	m.RequestPermission(ctx)

	prefs := DefaultPreferences()
	prefs.PushNotifications = true
	assert.True(t, m.SavePreferences(ctx, prefs))
	assert.Equal(t, StateSubscribed, m.State())

	prefs.PushNotifications = false
	assert.True(t, m.SavePreferences(ctx, prefs))
	assert.Equal(t, StateUnsubscribed, m.State())
	store.AssertNumberOfCalls(t, "SavePreferences", 2)
}

func TestManager_SavePreferencesRevertsToggleOnStoreFailure(t *testing.T) {
	platform := NewLocalPlatform()
	store := new(MockStore)
	store.On("RegisterToken", mock.Anything, mock.Anything).Return(errors.New("boom"))

	m := newTestManager(platform, store)
	ctx := context.Background()
	m.RegisterAgent(ctx)
	m.RequestPermission(ctx)

	prefs := DefaultPreferences()
	prefs.PushNotifications = true

	assert.False(t, m.SavePreferences(ctx, prefs))
	assert.Equal(t, StateUnsubscribed, m.State())
	store.AssertNotCalled(t, "SavePreferences", mock.Anything, mock.Anything)
}
