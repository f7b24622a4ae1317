package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "github.com/neomnia/content-mania-sub004/contracts/mq"
	"github.com/neomnia/content-mania-sub004/internal/service/email"
	"github.com/neomnia/content-mania-sub004/internal/util"
	"github.com/neomnia/content-mania-sub004/pkg/mq"
)

const dedupHandlerName = "email_requested"

// EmailRequestedHandler consumes email.requested events and drives the
// delivery for the already-pending history row.
type EmailRequestedHandler struct {
	dispatcher *email.Dispatcher
	deduper    *util.Deduper
	dlq        *mq.Publisher
	logger     *zap.Logger
}

func NewEmailRequestedHandler(dispatcher *email.Dispatcher, deduper *util.Deduper, dlq *mq.Publisher, logger *zap.Logger) *EmailRequestedHandler {
	return &EmailRequestedHandler{
		dispatcher: dispatcher,
		deduper:    deduper,
		dlq:        dlq,
		logger:     logger,
	}
}

// HandleEmailRequested delivers one queued message. Queue redeliveries of
// the same history id are suppressed so a row never gets two attempts.
func (h *EmailRequestedHandler) HandleEmailRequested(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.EmailRequestedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal email requested payload", zap.Error(err))
		// Malformed payloads are not retryable; dead-letter and ack away.
		h.deadLetter(raw, err)
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, dedupHandlerName, p.HistoryID) {
		return nil
	}

	h.logger.Info("Processing queued email",
		zap.Int("history_id", p.HistoryID),
		zap.Int("requested_by", p.RequestedBy),
		zap.String("provider", p.Provider),
	)

	result := h.dispatcher.DispatchExisting(ctx, p.HistoryID, &p.Message, p.Provider)
	if !result.Success {
		// The terminal failed state is already recorded; requeueing would
		// only produce a second attempt against a closed history row.
		h.logger.Error("Queued email delivery failed",
			zap.Int("history_id", p.HistoryID),
			zap.String("provider", result.Provider),
			zap.String("error", result.Error),
		)
		return nil
	}

	h.logger.Info("Queued email delivered",
		zap.Int("history_id", p.HistoryID),
		zap.String("provider", result.Provider),
		zap.String("message_id", result.MessageID),
	)
	return nil
}

func (h *EmailRequestedHandler) deadLetter(raw json.RawMessage, cause error) {
	if h.dlq == nil {
		return
	}
	if err := h.dlq.PublishToDLQ(mqcontracts.RoutingKeyEmailRequested, raw, cause.Error()); err != nil {
		h.logger.Error("Failed to dead-letter payload", zap.Error(err))
	}
}
