package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() notification.Event {
	return notification.Event{
		Kind:        notification.KindNewOrder,
		Title:       "🛒 طلب جديد",
		Description: "**رقم الطلب:** #DX1",
		Color:       notification.ColorOrder,
		Fields: []notification.Field{
			{Name: "👤 العميل", Value: "Sara", Inline: true},
			{Name: "📦 المنتجات", Value: "• laptop (×1) - 4,999 ريال", Inline: false},
		},
		Thumbnail: "https://i.imgur.com/order-icon.png",
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestClient(url string, attempts int) *Client {
	c := NewClient(Config{URL: url, MaxAttempts: attempts}, nil, nil)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestDispatchPostsEmbedPayload(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ack, err := newTestClient(srv.URL, 3).Dispatch(context.Background(), sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, ack.StatusCode)
	assert.Equal(t, 1, ack.Attempts)

	assert.Equal(t, "DEVIX Store", got.Username)
	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]
	assert.Equal(t, "🛒 طلب جديد", e.Title)
	assert.Equal(t, 15844367, e.Color)
	assert.Equal(t, "DEVIX Store © 2024", e.Footer.Text)
	assert.Equal(t, "2024-05-01T10:00:00Z", e.Timestamp)
	require.NotNil(t, e.Thumbnail)
	assert.Equal(t, "https://i.imgur.com/order-icon.png", e.Thumbnail.URL)
	require.Len(t, e.Fields, 2)
	assert.True(t, e.Fields[0].Inline)
	assert.False(t, e.Fields[1].Inline)
}

func TestDispatchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ack, err := newTestClient(srv.URL, 3).Dispatch(context.Background(), sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, 3, ack.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDispatchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Dispatch(context.Background(), sampleEvent())
	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusTooManyRequests, de.StatusCode)
	assert.Equal(t, 2, de.Attempts)
	assert.Equal(t, 10*time.Millisecond, de.RetryAfter)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDispatchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message": "Invalid Webhook Token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Dispatch(context.Background(), sampleEvent())
	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusUnauthorized, de.StatusCode)
	assert.Contains(t, de.Body, "Invalid Webhook Token")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDispatchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, 2).Dispatch(context.Background(), sampleEvent())
	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Zero(t, de.StatusCode)
	assert.Equal(t, 2, de.Attempts)
}

func TestDispatchDisabledWithoutURL(t *testing.T) {
	c := newTestClient("", 3)
	assert.False(t, c.Enabled())

	ack, err := c.Dispatch(context.Background(), sampleEvent())
	require.NoError(t, err)
	assert.True(t, ack.Skipped)
}

func TestNewPayloadOmitsEmptyThumbnail(t *testing.T) {
	ev := sampleEvent()
	ev.Thumbnail = ""
	p := NewPayload(DefaultIdentity(), ev)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "thumbnail")
}
