package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielBingham/communities-sub006/internal/domain"
	"github.com/danielBingham/communities-sub006/internal/port"
)

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []port.EmailMessage
	fail func(msg port.EmailMessage) error
}

func (f *fakeEmailSender) Send(_ context.Context, msg port.EmailMessage) error {
	if f.fail != nil {
		if err := f.fail(msg); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []domain.Notification
	err   error
}

func (f *fakeStore) Save(_ context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *n)
	return nil
}

func (f *fakeStore) ListByRecipient(context.Context, string, int, int) ([]domain.Notification, error) {
	return nil, nil
}

func (f *fakeStore) MarkRead(context.Context, string) error { return nil }

type fakePushSender struct {
	mu   sync.Mutex
	sent []port.PushMessage
}

func (f *fakePushSender) Send(_ context.Context, msg port.PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fakeRealtime struct {
	mu     sync.Mutex
	events []port.RealtimeEvent
	err    error
}

func (f *fakeRealtime) Publish(_ context.Context, ev port.RealtimeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type fakeMutes struct {
	muted map[string]bool
}

func (f *fakeMutes) IsMuted(_ context.Context, userID, muteKey string) (bool, error) {
	return f.muted[userID+":"+muteKey], nil
}
func (f *fakeMutes) Mute(context.Context, string, string, time.Duration) error { return nil }
func (f *fakeMutes) Unmute(context.Context, string, string) error              { return nil }

func inviteRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Load(Definitions(), slog.Default()))
	return r
}

func allChannels() []string {
	return []string{"email", "web", "mobile"}
}

func inviteContext() Context {
	return Context{
		"inviter": map[string]any{"name": "Alice"},
		"group":   map[string]any{"title": "Gardening", "slug": "gardening"},
		"user":    map[string]any{"name": "Dana"},
		"host":    "https://communities.social/",
	}
}

func findDelivery(t *testing.T, result *DispatchResult, recipientID string, ch Channel) Delivery {
	t.Helper()
	for _, d := range result.Deliveries {
		if d.RecipientID == recipientID && d.Channel == ch {
			return d
		}
	}
	t.Fatalf("no delivery recorded for %s/%s", recipientID, ch)
	return Delivery{}
}

func TestDispatchUnknownKey(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(NewRegistry(), Sinks{}, DispatcherOptions{}, slog.Default())
	result, err := d.Dispatch(context.Background(), "Foo:bar:baz", Context{}, []domain.Recipient{
		{ID: "u1", Channels: allChannels()},
	})
	var unknown *UnknownKeyError
	require.ErrorAs(t, err, &unknown)
	assert.Nil(t, result)
}

func TestDispatchRendersEveryChannel(t *testing.T) {
	t.Parallel()

	email := &fakeEmailSender{}
	store := &fakeStore{}
	pushed := &fakePushSender{}
	rt := &fakeRealtime{}

	d := NewDispatcher(inviteRegistry(t), Sinks{
		Email:    email,
		Store:    store,
		Push:     pushed,
		Realtime: rt,
	}, DispatcherOptions{MaxInFlight: 4}, slog.Default())

	recipients := []domain.Recipient{
		{ID: "u1", Name: "Dana", Email: "dana@example.com", DeviceTokens: []string{"tok-1"}, Channels: allChannels()},
	}

	result, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count(StatusDelivered))
	assert.Equal(t, 0, result.Count(StatusFailed))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "dana@example.com", email.sent[0].To)
	assert.Equal(t, `[Communities] Alice invited you to join group "Gardening"`, email.sent[0].Subject)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "u1", store.saved[0].RecipientID)
	assert.Equal(t, `Alice invited you to join group "Gardening"`, store.saved[0].Text)
	assert.Equal(t, "/group/gardening", store.saved[0].Path)
	assert.NotEmpty(t, store.saved[0].ID)

	require.Len(t, pushed.sent, 1)
	assert.Equal(t, "tok-1", pushed.sent[0].DeviceToken)
	assert.Equal(t, "[Communities] You've been invited to join a group.", pushed.sent[0].Title)
	assert.Equal(t, "", pushed.sent[0].Body)

	require.Len(t, rt.events, 1)
	assert.Equal(t, "u1", rt.events[0].RecipientID)
	assert.Equal(t, "notification", rt.events[0].Event)
}

func TestDispatchFailureIsolation(t *testing.T) {
	t.Parallel()

	email := &fakeEmailSender{
		fail: func(msg port.EmailMessage) error {
			if msg.To == "u2@example.com" {
				return fmt.Errorf("smtp: mailbox unavailable")
			}
			return nil
		},
	}
	store := &fakeStore{}

	d := NewDispatcher(inviteRegistry(t), Sinks{Email: email, Store: store}, DispatcherOptions{MaxInFlight: 4}, slog.Default())

	recipients := []domain.Recipient{
		{ID: "u1", Email: "u1@example.com", Channels: allChannels()},
		{ID: "u2", Email: "u2@example.com", Channels: allChannels()},
		{ID: "u3", Email: "u3@example.com", Channels: allChannels()},
	}

	result, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)

	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u1", ChannelEmail).Status)
	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u3", ChannelEmail).Status)

	failed := findDelivery(t, result, "u2", ChannelEmail)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Contains(t, failed.Reason, "mailbox unavailable")

	// u2 still receives the in-app feed entry.
	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u2", ChannelWeb).Status)
	assert.Len(t, store.saved, 3)
}

func TestDispatchSkipsDisabledChannels(t *testing.T) {
	t.Parallel()

	email := &fakeEmailSender{}
	store := &fakeStore{}
	d := NewDispatcher(inviteRegistry(t), Sinks{Email: email, Store: store}, DispatcherOptions{}, slog.Default())

	recipients := []domain.Recipient{
		{ID: "u1", Email: "u1@example.com", Channels: []string{"web"}},
	}

	result, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)

	skipped := findDelivery(t, result, "u1", ChannelEmail)
	assert.Equal(t, StatusSkipped, skipped.Status)
	assert.Equal(t, "channel disabled by recipient", skipped.Reason)
	assert.Empty(t, email.sent)
	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u1", ChannelWeb).Status)
}

func TestDispatchSkipsChannelsWithoutTemplates(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	pushed := &fakePushSender{}
	d := NewDispatcher(inviteRegistry(t), Sinks{Store: store, Push: pushed}, DispatcherOptions{}, slog.Default())

	recipients := []domain.Recipient{
		{ID: "u1", DeviceTokens: []string{"tok"}, Channels: allChannels()},
	}

	// Moderation definitions render web only.
	result, err := d.Dispatch(context.Background(), "Post:moderation:update:status:rejected:author",
		Context{"group": map[string]any{"title": "Gardening", "slug": "gardening"}}, recipients)
	require.NoError(t, err)

	mobile := findDelivery(t, result, "u1", ChannelMobile)
	assert.Equal(t, StatusSkipped, mobile.Status)
	assert.Equal(t, "definition has no template for channel", mobile.Reason)
	assert.Empty(t, pushed.sent)
	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u1", ChannelWeb).Status)
}

func TestDispatchMissingContextDegradesToEmpty(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	d := NewDispatcher(inviteRegistry(t), Sinks{Store: store}, DispatcherOptions{}, slog.Default())

	recipients := []domain.Recipient{{ID: "u1", Channels: []string{"web"}}}

	result, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", Context{}, recipients)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u1", ChannelWeb).Status)

	require.Len(t, store.saved, 1)
	assert.Equal(t, ` invited you to join group ""`, store.saved[0].Text)
	assert.NotContains(t, store.saved[0].Text, "undefined")
}

func TestDispatchMutedRecipient(t *testing.T) {
	t.Parallel()

	email := &fakeEmailSender{}
	store := &fakeStore{}
	mutes := &fakeMutes{muted: map[string]bool{"u1:group-invites": true}}
	d := NewDispatcher(inviteRegistry(t), Sinks{Email: email, Store: store, Mutes: mutes}, DispatcherOptions{}, slog.Default())

	recipients := []domain.Recipient{
		{ID: "u1", Email: "u1@example.com", Channels: allChannels()},
		{ID: "u2", Email: "u2@example.com", Channels: allChannels()},
	}

	result, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, findDelivery(t, result, "u1", ChannelEmail).Status)
	assert.Equal(t, StatusSkipped, findDelivery(t, result, "u1", ChannelWeb).Status)
	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u2", ChannelEmail).Status)
}

func TestDispatchCanceledContext(t *testing.T) {
	t.Parallel()

	email := &fakeEmailSender{}
	d := NewDispatcher(inviteRegistry(t), Sinks{Email: email}, DispatcherOptions{}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recipients := []domain.Recipient{{ID: "u1", Email: "u1@example.com", Channels: []string{"email"}}}
	result, err := d.Dispatch(ctx, "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)

	unit := findDelivery(t, result, "u1", ChannelEmail)
	assert.Equal(t, StatusSkipped, unit.Status)
	assert.Equal(t, "dispatch canceled", unit.Reason)
	assert.Empty(t, email.sent)
}

func TestDispatchRealtimeFailureDoesNotFailWeb(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rt := &fakeRealtime{err: fmt.Errorf("socket gone")}
	d := NewDispatcher(inviteRegistry(t), Sinks{Store: store, Realtime: rt}, DispatcherOptions{}, slog.Default())

	recipients := []domain.Recipient{{ID: "u1", Channels: []string{"web"}}}
	result, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, findDelivery(t, result, "u1", ChannelWeb).Status)
	assert.Len(t, store.saved, 1)
}

func TestDispatchSkipsRecipientsWithoutAddressOrDevice(t *testing.T) {
	t.Parallel()

	email := &fakeEmailSender{}
	pushed := &fakePushSender{}
	d := NewDispatcher(inviteRegistry(t), Sinks{Email: email, Push: pushed}, DispatcherOptions{}, slog.Default())

	recipients := []domain.Recipient{{ID: "u1", Channels: []string{"email", "mobile"}}}
	result, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)

	assert.Equal(t, "recipient has no email address", findDelivery(t, result, "u1", ChannelEmail).Reason)
	assert.Equal(t, "recipient has no registered device", findDelivery(t, result, "u1", ChannelMobile).Reason)
	assert.Equal(t, 0, result.Count(StatusDelivered))
}

func TestDispatchRecipientRateLimit(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	// One token per minute with burst 1: the second dispatch is limited.
	d := NewDispatcher(inviteRegistry(t), Sinks{Store: store}, DispatcherOptions{RecipientPerMinute: 1}, slog.Default())

	recipients := []domain.Recipient{{ID: "u1", Channels: []string{"web"}}}

	first, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count(StatusDelivered))

	second, err := d.Dispatch(context.Background(), "GroupMember:create:status:pending-invited:member", inviteContext(), recipients)
	require.NoError(t, err)
	unit := findDelivery(t, second, "u1", ChannelWeb)
	assert.Equal(t, StatusSkipped, unit.Status)
	assert.Equal(t, "recipient rate limited", unit.Reason)
}
