package model

import (
	"strings"
	"time"
)

// Message is a provider-agnostic outbound email. It is built fresh per send
// and never persisted directly; only its delivery outcome is recorded.
type Message struct {
	To       []string `json:"to"`
	Cc       []string `json:"cc,omitempty"`
	Bcc      []string `json:"bcc,omitempty"`
	From     string   `json:"from"`
	FromName string   `json:"from_name,omitempty"`
	Subject  string   `json:"subject"`
	HTML     string   `json:"html"`
	Text     string   `json:"text,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// RecipientSummary is the compact form stored on the history record.
func (m *Message) RecipientSummary() string {
	return strings.Join(m.To, ", ")
}

// AllRecipients returns To+Cc+Bcc in envelope order.
func (m *Message) AllRecipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	out = append(out, m.Bcc...)
	return out
}

// Email history statuses. Transitions are one-directional:
// pending -> sent, or pending -> failed. Terminal states are final.
const (
	HistoryStatusPending = "pending"
	HistoryStatusSent    = "sent"
	HistoryStatusFailed  = "failed"
)

// EmailHistory is one row per send attempt.
type EmailHistory struct {
	ID               int        `json:"id"`
	Provider         string     `json:"provider"`
	Status           string     `json:"status"`
	RecipientSummary string     `json:"recipient_summary"`
	Subject          string     `json:"subject"`
	MessageID        *string    `json:"message_id,omitempty"`
	ErrorDetail      *string    `json:"error_detail,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	FailedAt         *time.Time `json:"failed_at,omitempty"`
}

// HistoryFilter narrows a history search. Zero values mean "any".
type HistoryFilter struct {
	Provider string
	Status   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ProviderStats aggregates delivery outcomes for one provider.
type ProviderStats struct {
	Provider string `json:"provider"`
	Total    int    `json:"total"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
	Pending  int    `json:"pending"`
}
