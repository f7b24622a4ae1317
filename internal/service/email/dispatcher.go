package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/model"
	"github.com/neomnia/content-mania-sub004/pkg/metrics"
)

// HistoryStore is the audit surface the dispatcher writes to. Implemented
// by repository.EmailHistoryRepository.
type HistoryStore interface {
	CreatePending(ctx context.Context, provider, recipientSummary, subject string) (int, error)
	MarkSent(ctx context.Context, id int, provider, messageID string) error
	MarkFailed(ctx context.Context, id int, provider, errorDetail string) error
}

// Dispatcher orchestrates one send attempt: history row in pending state
// before routing, exactly one terminal update after. A crash mid-attempt
// leaves the pending row as evidence of the incomplete operation.
type Dispatcher struct {
	router  *Router
	history HistoryStore
	logger  *zap.Logger
}

func NewDispatcher(router *Router, history HistoryStore, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{router: router, history: history, logger: logger}
}

// Dispatch creates the pending history row and drives the send. An empty
// providerName takes the fallback path. The returned history id is 0 only
// when the pending row itself could not be created.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *model.Message, providerName string) (Result, int) {
	pendingProvider := providerName
	if pendingProvider == "" {
		pendingProvider = d.primaryName()
	}

	historyID, err := d.history.CreatePending(ctx, pendingProvider, msg.RecipientSummary(), msg.Subject)
	if err != nil {
		// Best-effort audit: the send still proceeds.
		d.logger.Error("Failed to create history record", zap.Error(err))
	}

	result := d.route(ctx, msg, providerName)
	d.finalize(ctx, historyID, result)
	return result, historyID
}

// DispatchExisting drives a send whose pending history row already exists
// (the async queue path: the API created the row before enqueueing).
func (d *Dispatcher) DispatchExisting(ctx context.Context, historyID int, msg *model.Message, providerName string) Result {
	result := d.route(ctx, msg, providerName)
	d.finalize(ctx, historyID, result)
	return result
}

func (d *Dispatcher) route(ctx context.Context, msg *model.Message, providerName string) Result {
	if providerName == "" {
		return d.router.SendWithFallback(ctx, msg)
	}
	return d.router.Send(ctx, msg, providerName)
}

// finalize applies the single terminal transition. History write failures
// are logged and never block the result from reaching the caller.
func (d *Dispatcher) finalize(ctx context.Context, historyID int, result Result) {
	if historyID == 0 {
		return
	}

	if result.Success {
		metrics.RecordDelivery(result.Provider, model.HistoryStatusSent)
		if err := d.history.MarkSent(ctx, historyID, result.Provider, result.MessageID); err != nil {
			d.logger.Error("Failed to mark history record sent",
				zap.Int("history_id", historyID),
				zap.Error(err),
			)
		}
		return
	}

	metrics.RecordDelivery(result.Provider, model.HistoryStatusFailed)
	if err := d.history.MarkFailed(ctx, historyID, result.Provider, result.Error); err != nil {
		d.logger.Error("Failed to mark history record failed",
			zap.Int("history_id", historyID),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) primaryName() string {
	reg, err := d.router.lazy.Get()
	if err != nil {
		return ""
	}
	names := reg.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
