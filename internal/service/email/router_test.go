package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/model"
	"github.com/neomnia/content-mania-sub004/internal/provider"
)

func testMessage() *model.Message {
	return &model.Message{
		To:      []string{"to@example.com"},
		Subject: "hello",
		Text:    "body",
	}
}

func TestRouterSend(t *testing.T) {
	t.Parallel()

	t.Run("explicit provider success", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", messageID: "msg-1"}
		router := NewRouter(lazyOver(smtp), zap.NewNop())

		res := router.Send(context.Background(), testMessage(), "smtp")
		require.True(t, res.Success)
		require.Equal(t, "msg-1", res.MessageID)
		require.Equal(t, "smtp", res.Provider)
		require.NoError(t, res.Err())
	})

	t.Run("unknown provider is not configured, no fallback", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", messageID: "msg-1"}
		router := NewRouter(lazyOver(smtp), zap.NewNop())

		res := router.Send(context.Background(), testMessage(), "sendgrid")
		require.False(t, res.Success)
		require.ErrorIs(t, res.Err(), provider.ErrNotConfigured)
		require.Zero(t, smtp.callCount())
	})

	t.Run("explicit provider failure does not fall back", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", err: provider.ErrTransport}
		http := &fakeProvider{name: "http", messageID: "msg-2"}
		router := NewRouter(lazyOver(smtp, http), zap.NewNop())

		res := router.Send(context.Background(), testMessage(), "smtp")
		require.False(t, res.Success)
		require.Equal(t, "smtp", res.Provider)
		require.Equal(t, 1, smtp.callCount())
		require.Zero(t, http.callCount())
	})
}

func TestRouterSendWithFallback(t *testing.T) {
	t.Parallel()

	t.Run("primary success stops the walk", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", messageID: "msg-1"}
		http := &fakeProvider{name: "http", messageID: "msg-2"}
		router := NewRouter(lazyOver(smtp, http), zap.NewNop())

		res := router.SendWithFallback(context.Background(), testMessage())
		require.True(t, res.Success)
		require.Equal(t, "smtp", res.Provider)
		require.Equal(t, 1, smtp.callCount())
		require.Zero(t, http.callCount())
	})

	t.Run("failing primary falls back to secondary", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", err: provider.ErrTransport}
		http := &fakeProvider{name: "http", messageID: "msg-2"}
		router := NewRouter(lazyOver(smtp, http), zap.NewNop())

		res := router.SendWithFallback(context.Background(), testMessage())
		require.True(t, res.Success)
		require.Equal(t, "http", res.Provider)
		require.Equal(t, "msg-2", res.MessageID)
		require.Equal(t, 1, smtp.callCount())
		require.Equal(t, 1, http.callCount())
	})

	t.Run("all tiers failing yields the last failure", func(t *testing.T) {
		smtpErr := errors.New("smtp down")
		httpErr := errors.New("http down")
		smtp := &fakeProvider{name: "smtp", err: smtpErr}
		http := &fakeProvider{name: "http", err: httpErr}
		router := NewRouter(lazyOver(smtp, http), zap.NewNop())

		res := router.SendWithFallback(context.Background(), testMessage())
		require.False(t, res.Success)
		require.Equal(t, "http", res.Provider)
		require.ErrorIs(t, res.Err(), httpErr)
		require.Equal(t, 1, smtp.callCount())
		require.Equal(t, 1, http.callCount())
	})

	t.Run("attempts are bounded by chain length", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", err: provider.ErrTransport}
		router := NewRouter(lazyOver(smtp), zap.NewNop())

		res := router.SendWithFallback(context.Background(), testMessage())
		require.False(t, res.Success)
		require.Equal(t, 1, smtp.callCount())
	})

	t.Run("empty chain is not configured", func(t *testing.T) {
		router := NewRouter(lazyOver(), zap.NewNop())

		res := router.SendWithFallback(context.Background(), testMessage())
		require.False(t, res.Success)
		require.ErrorIs(t, res.Err(), provider.ErrNotConfigured)
	})

	t.Run("registry build failure is not configured", func(t *testing.T) {
		lazy := NewLazyRegistry(func() (*Registry, error) {
			return nil, errors.New("bad config")
		})
		router := NewRouter(lazy, zap.NewNop())

		res := router.SendWithFallback(context.Background(), testMessage())
		require.False(t, res.Success)
		require.ErrorIs(t, res.Err(), provider.ErrNotConfigured)
	})
}
