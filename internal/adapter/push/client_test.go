package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielBingham/communities-sub006/internal/pkg/circuitbreaker"
	"github.com/danielBingham/communities-sub006/internal/port"
)

func TestSendPostsPayload(t *testing.T) {
	t.Parallel()

	var got port.PushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Send(context.Background(), port.PushMessage{
		DeviceToken: "tok-1",
		Title:       "[Communities] You've been invited to join a group.",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.DeviceToken)
	assert.Equal(t, "[Communities] You've been invited to join a group.", got.Title)
}

func TestSendProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Send(context.Background(), port.PushMessage{DeviceToken: "tok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSendUnconfigured(t *testing.T) {
	t.Parallel()

	c := NewClient("", time.Second)
	err := c.Send(context.Background(), port.PushMessage{DeviceToken: "tok"})
	assert.Error(t, err)
}

func TestCircuitOpensOnRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		_ = c.Send(context.Background(), port.PushMessage{DeviceToken: "tok"})
	}
	require.EqualValues(t, 5, calls.Load())

	err := c.Send(context.Background(), port.PushMessage{DeviceToken: "tok"})
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.EqualValues(t, 5, calls.Load(), "open breaker must not reach the provider")
}
