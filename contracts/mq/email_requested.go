package mq

import (
	"time"

	"github.com/neomnia/content-mania-sub004/internal/model"
)

// Routing keys for the email delivery flow.
const (
	RoutingKeyEmailRequested = "email.requested"
)

// EmailRequestedPayload asks the worker to deliver a message. The history
// row already exists in pending state; the worker applies the terminal
// transition after the attempt.
type EmailRequestedPayload struct {
	HistoryID   int           `json:"history_id"`
	RequestedBy int           `json:"requested_by"`
	Provider    string        `json:"provider,omitempty"` // empty means fallback policy
	Message     model.Message `json:"message"`
	RequestedAt time.Time     `json:"requested_at"`
}
