package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neomnia/content-mania-sub004/internal/model"
)

// EmailHistoryRepository persists one audit row per send attempt. Status
// transitions are guarded in SQL: a terminal row never regresses.
type EmailHistoryRepository struct {
	db *pgxpool.Pool
}

func NewEmailHistoryRepository(db *pgxpool.Pool) *EmailHistoryRepository {
	return &EmailHistoryRepository{db: db}
}

// CreatePending inserts the row before the send attempt.
func (r *EmailHistoryRepository) CreatePending(ctx context.Context, provider, recipientSummary, subject string) (int, error) {
	query := `
        INSERT INTO email_history (provider, status, recipient_summary, subject, created_at)
        VALUES ($1, 'pending', $2, $3, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, provider, recipientSummary, subject).Scan(&id)
	return id, err
}

// MarkSent transitions pending -> sent with the provider message id. The
// WHERE clause keeps the transition one-directional.
func (r *EmailHistoryRepository) MarkSent(ctx context.Context, id int, provider, messageID string) error {
	query := `
        UPDATE email_history
        SET status = 'sent', provider = $1, message_id = $2, sent_at = NOW()
        WHERE id = $3 AND status = 'pending'
    `
	tag, err := r.db.Exec(ctx, query, provider, messageID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("history record %d not pending", id)
	}
	return nil
}

// MarkFailed transitions pending -> failed with the error detail.
func (r *EmailHistoryRepository) MarkFailed(ctx context.Context, id int, provider, errorDetail string) error {
	query := `
        UPDATE email_history
        SET status = 'failed', provider = $1, error_detail = $2, failed_at = NOW()
        WHERE id = $3 AND status = 'pending'
    `
	tag, err := r.db.Exec(ctx, query, provider, errorDetail, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("history record %d not pending", id)
	}
	return nil
}

// FindByID returns one history record.
func (r *EmailHistoryRepository) FindByID(ctx context.Context, id int) (*model.EmailHistory, error) {
	query := `
        SELECT id, provider, status, recipient_summary, subject,
               message_id, error_detail, created_at, sent_at, failed_at
        FROM email_history
        WHERE id = $1
    `
	var h model.EmailHistory
	err := r.db.QueryRow(ctx, query, id).Scan(
		&h.ID, &h.Provider, &h.Status, &h.RecipientSummary, &h.Subject,
		&h.MessageID, &h.ErrorDetail, &h.CreatedAt, &h.SentAt, &h.FailedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Search returns history records matching the filter, newest first, with
// limit/offset pagination.
func (r *EmailHistoryRepository) Search(ctx context.Context, f model.HistoryFilter) ([]model.EmailHistory, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Provider != "" {
		conditions = append(conditions, "provider = "+arg(f.Provider))
	}
	if f.Status != "" {
		conditions = append(conditions, "status = "+arg(f.Status))
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		conditions = append(conditions, "created_at <= "+arg(*f.To))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := fmt.Sprintf(`
        SELECT id, provider, status, recipient_summary, subject,
               message_id, error_detail, created_at, sent_at, failed_at
        FROM email_history
        %s
        ORDER BY created_at DESC
        LIMIT %s OFFSET %s
    `, where, arg(limit), arg(f.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.EmailHistory{}
	for rows.Next() {
		var h model.EmailHistory
		err := rows.Scan(
			&h.ID, &h.Provider, &h.Status, &h.RecipientSummary, &h.Subject,
			&h.MessageID, &h.ErrorDetail, &h.CreatedAt, &h.SentAt, &h.FailedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

// Stats aggregates delivery outcomes per provider over a date range.
func (r *EmailHistoryRepository) Stats(ctx context.Context, f model.HistoryFilter) ([]model.ProviderStats, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Provider != "" {
		conditions = append(conditions, "provider = "+arg(f.Provider))
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		conditions = append(conditions, "created_at <= "+arg(*f.To))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
        SELECT provider,
               COUNT(*) AS total,
               COUNT(*) FILTER (WHERE status = 'sent') AS sent,
               COUNT(*) FILTER (WHERE status = 'failed') AS failed,
               COUNT(*) FILTER (WHERE status = 'pending') AS pending
        FROM email_history
        %s
        GROUP BY provider
        ORDER BY provider
    `, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []model.ProviderStats{}
	for rows.Next() {
		var s model.ProviderStats
		if err := rows.Scan(&s.Provider, &s.Total, &s.Sent, &s.Failed, &s.Pending); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
