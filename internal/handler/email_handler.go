package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mqcontracts "github.com/neomnia/content-mania-sub004/contracts/mq"
	"github.com/neomnia/content-mania-sub004/internal/auth"
	"github.com/neomnia/content-mania-sub004/internal/model"
	"github.com/neomnia/content-mania-sub004/internal/provider"
	"github.com/neomnia/content-mania-sub004/internal/service/email"
	"github.com/neomnia/content-mania-sub004/pkg/mq"
)

type EmailHandler struct {
	dispatcher *email.Dispatcher
	history    email.HistoryStore
	publisher  *mq.Publisher
	logger     *zap.Logger
}

func NewEmailHandler(dispatcher *email.Dispatcher, history email.HistoryStore, publisher *mq.Publisher, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		dispatcher: dispatcher,
		history:    history,
		publisher:  publisher,
		logger:     logger,
	}
}

type sendEmailRequest struct {
	To       []string `json:"to" binding:"required,min=1"`
	Cc       []string `json:"cc"`
	Bcc      []string `json:"bcc"`
	From     string   `json:"from" binding:"required"`
	FromName string   `json:"from_name"`
	Subject  string   `json:"subject" binding:"required"`
	HTML     string   `json:"html"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	Provider string   `json:"provider"` // empty selects the fallback policy
}

func (r *sendEmailRequest) toMessage() *model.Message {
	return &model.Message{
		To:       r.To,
		Cc:       r.Cc,
		Bcc:      r.Bcc,
		From:     r.From,
		FromName: r.FromName,
		Subject:  r.Subject,
		HTML:     r.HTML,
		Text:     r.Text,
		Tags:     r.Tags,
	}
}

// SendEmail handles POST /email/send: synchronous delivery through the
// router, explicit provider or fallback chain.
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, historyID := h.dispatcher.Dispatch(c.Request.Context(), req.toMessage(), req.Provider)
	if !result.Success {
		status := http.StatusBadGateway
		if errors.Is(result.Err(), provider.ErrNotConfigured) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"success":    false,
			"error":      result.Error,
			"provider":   result.Provider,
			"history_id": historyID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message_id": result.MessageID,
		"provider":   result.Provider,
		"history_id": historyID,
	})
}

// EnqueueEmail handles POST /email/enqueue: creates the pending history
// row, then hands the send to the worker queue.
func (h *EmailHandler) EnqueueEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := 0
	if val, ok := c.Get("identity"); ok {
		if id, ok := val.(*auth.Identity); ok {
			userID = id.UserID
		}
	}

	msg := req.toMessage()
	historyID, err := h.history.CreatePending(c.Request.Context(), req.Provider, msg.RecipientSummary(), msg.Subject)
	if err != nil {
		h.logger.Error("Failed to create history record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record send attempt"})
		return
	}

	payload := mqcontracts.EmailRequestedPayload{
		HistoryID:   historyID,
		RequestedBy: userID,
		Provider:    req.Provider,
		Message:     *msg,
		RequestedAt: time.Now(),
	}

	if err := h.publisher.Publish(mqcontracts.RoutingKeyEmailRequested, payload); err != nil {
		// The pending row stays behind as evidence of the incomplete send.
		h.logger.Error("Failed to enqueue email",
			zap.Int("history_id", historyID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue email"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"queued":     true,
		"history_id": historyID,
	})
}
