package db

import (
	"context"
	"database/sql"
	"fmt"
)

// IsWebhookEventProcessed reports whether a Stripe event id was already handled.
func (d *DB) IsWebhookEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_webhook_events WHERE event_id = ?`, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}
	return true, nil
}

// MarkWebhookEventProcessed records a Stripe event id as handled.
// Recording the same event twice is not an error.
func (d *DB) MarkWebhookEventProcessed(ctx context.Context, eventID string, processedAt int64) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO processed_webhook_events (event_id, processed_at)
		VALUES (?, ?)
	`, eventID, processedAt)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	return nil
}
