package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/provider"
)

// fakeHistoryStore records the transitions the dispatcher applies.
type fakeHistoryStore struct {
	nextID    int
	createErr error
	markErr   error

	pendingProvider string
	sentID          int
	sentProvider    string
	sentMessageID   string
	failedID        int
	failedProvider  string
	failedDetail    string
}

func (f *fakeHistoryStore) CreatePending(ctx context.Context, provider, recipientSummary, subject string) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.pendingProvider = provider
	return f.nextID, nil
}

func (f *fakeHistoryStore) MarkSent(ctx context.Context, id int, provider, messageID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.sentID = id
	f.sentProvider = provider
	f.sentMessageID = messageID
	return nil
}

func (f *fakeHistoryStore) MarkFailed(ctx context.Context, id int, provider, errorDetail string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.failedID = id
	f.failedProvider = provider
	f.failedDetail = errorDetail
	return nil
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("successful send marks the record sent", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", messageID: "msg-9"}
		store := &fakeHistoryStore{nextID: 11}
		d := NewDispatcher(NewRouter(lazyOver(smtp), zap.NewNop()), store, zap.NewNop())

		res, historyID := d.Dispatch(context.Background(), testMessage(), "smtp")
		require.True(t, res.Success)
		require.Equal(t, 11, historyID)
		require.Equal(t, "smtp", store.pendingProvider)
		require.Equal(t, 11, store.sentID)
		require.Equal(t, "smtp", store.sentProvider)
		require.Equal(t, "msg-9", store.sentMessageID)
		require.Zero(t, store.failedID)
	})

	t.Run("failed send marks the record failed with detail", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", err: errors.New("connection refused")}
		store := &fakeHistoryStore{nextID: 12}
		d := NewDispatcher(NewRouter(lazyOver(smtp), zap.NewNop()), store, zap.NewNop())

		res, historyID := d.Dispatch(context.Background(), testMessage(), "smtp")
		require.False(t, res.Success)
		require.Equal(t, 12, historyID)
		require.Equal(t, 12, store.failedID)
		require.Equal(t, "smtp", store.failedProvider)
		require.Contains(t, store.failedDetail, "connection refused")
		require.Zero(t, store.sentID)
	})

	t.Run("fallback path records the primary as pending provider", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", err: provider.ErrTransport}
		http := &fakeProvider{name: "http", messageID: "msg-5"}
		store := &fakeHistoryStore{nextID: 13}
		d := NewDispatcher(NewRouter(lazyOver(smtp, http), zap.NewNop()), store, zap.NewNop())

		res, _ := d.Dispatch(context.Background(), testMessage(), "")
		require.True(t, res.Success)
		require.Equal(t, "smtp", store.pendingProvider)
		require.Equal(t, "http", store.sentProvider)
	})

	t.Run("history create failure does not block the send", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", messageID: "msg-6"}
		store := &fakeHistoryStore{createErr: errors.New("db down")}
		d := NewDispatcher(NewRouter(lazyOver(smtp), zap.NewNop()), store, zap.NewNop())

		res, historyID := d.Dispatch(context.Background(), testMessage(), "smtp")
		require.True(t, res.Success)
		require.Zero(t, historyID)
		require.Equal(t, 1, smtp.callCount())
	})

	t.Run("terminal write failure does not block the result", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", messageID: "msg-7"}
		store := &fakeHistoryStore{nextID: 14, markErr: errors.New("db down")}
		d := NewDispatcher(NewRouter(lazyOver(smtp), zap.NewNop()), store, zap.NewNop())

		res, historyID := d.Dispatch(context.Background(), testMessage(), "smtp")
		require.True(t, res.Success)
		require.Equal(t, 14, historyID)
	})
}

func TestDispatchExisting(t *testing.T) {
	t.Parallel()

	t.Run("uses the given history id, no new pending row", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", messageID: "msg-8"}
		store := &fakeHistoryStore{nextID: 99}
		d := NewDispatcher(NewRouter(lazyOver(smtp), zap.NewNop()), store, zap.NewNop())

		res := d.DispatchExisting(context.Background(), 21, testMessage(), "")
		require.True(t, res.Success)
		require.Empty(t, store.pendingProvider)
		require.Equal(t, 21, store.sentID)
	})

	t.Run("failure on existing row marks it failed", func(t *testing.T) {
		smtp := &fakeProvider{name: "smtp", err: errors.New("rejected")}
		store := &fakeHistoryStore{}
		d := NewDispatcher(NewRouter(lazyOver(smtp), zap.NewNop()), store, zap.NewNop())

		res := d.DispatchExisting(context.Background(), 22, testMessage(), "smtp")
		require.False(t, res.Success)
		require.Equal(t, 22, store.failedID)
	})
}
