package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neomnia/content-mania-sub004/internal/config"
	"github.com/neomnia/content-mania-sub004/internal/model"
)

func httpTestMessage() *model.Message {
	return &model.Message{
		To:      []string{"to@example.com"},
		From:    "no-reply@example.com",
		Subject: "hello",
		HTML:    "<p>hi</p>",
	}
}

func TestHTTPProviderSend(t *testing.T) {
	t.Parallel()

	t.Run("successful send returns the API message id", func(t *testing.T) {
		var gotAuth string
		var gotReq httpSendRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/emails", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			json.NewEncoder(w).Encode(httpSendResponse{ID: "api-msg-1"})
		}))
		defer srv.Close()

		p := NewHTTPProvider(config.HTTPProviderConfig{BaseURL: srv.URL, APIKey: "secret-key"})

		id, err := p.Send(context.Background(), httpTestMessage())
		require.NoError(t, err)
		require.Equal(t, "api-msg-1", id)
		require.Equal(t, "Bearer secret-key", gotAuth)
		require.Equal(t, []string{"to@example.com"}, gotReq.To)
		require.Equal(t, "hello", gotReq.Subject)
	})

	t.Run("non-2xx response is a rejection with the API detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(httpSendResponse{Error: "invalid recipient"})
		}))
		defer srv.Close()

		p := NewHTTPProvider(config.HTTPProviderConfig{BaseURL: srv.URL, APIKey: "k"})

		_, err := p.Send(context.Background(), httpTestMessage())
		require.ErrorIs(t, err, ErrRejected)
		require.Contains(t, err.Error(), "invalid recipient")
	})

	t.Run("unreachable endpoint is a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		p := NewHTTPProvider(config.HTTPProviderConfig{BaseURL: srv.URL, APIKey: "k"})

		_, err := p.Send(context.Background(), httpTestMessage())
		require.ErrorIs(t, err, ErrTransport)
	})

	t.Run("empty recipient list is rejected before any request", func(t *testing.T) {
		p := NewHTTPProvider(config.HTTPProviderConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k"})

		msg := httpTestMessage()
		msg.To = nil
		_, err := p.Send(context.Background(), msg)
		require.ErrorIs(t, err, ErrRejected)
	})

	t.Run("2xx without an id is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		p := NewHTTPProvider(config.HTTPProviderConfig{BaseURL: srv.URL, APIKey: "k"})

		_, err := p.Send(context.Background(), httpTestMessage())
		require.ErrorIs(t, err, ErrRejected)
	})
}
