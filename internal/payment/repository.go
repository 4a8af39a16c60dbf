package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// InboxEntry is the inbox row backing one webhook delivery. Duplicate means
// the event id was seen before; Processed means that earlier delivery also
// finished. A duplicate of an unfinished delivery must be retried, not acked,
// or a failed materialization would never get a second attempt.
type InboxEntry struct {
	ID        int64
	Duplicate bool
	Processed bool
}

// Repository is the webhook inbox. Every delivery is recorded before
// processing; the UNIQUE (provider, event_id) constraint makes redelivered
// events observable as duplicates without touching the reconciler.
type Repository interface {
	SaveWebhookEvent(
		ctx context.Context,
		eventID string,
		eventType string,
		intentID string,
		payload json.RawMessage,
	) (InboxEntry, error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveWebhookEvent(
	ctx context.Context,
	eventID string,
	eventType string,
	intentID string,
	payload json.RawMessage,
) (InboxEntry, error) {

	const insert = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		intent_id,
		payload
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (provider, event_id)
	DO NOTHING
	RETURNING id;
	`

	var entry InboxEntry
	err := r.db.QueryRowContext(
		ctx,
		insert,
		ProviderName,
		eventID,
		eventType,
		nullIfEmpty(intentID),
		payload,
	).Scan(&entry.ID)

	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return InboxEntry{}, err
	}

	// Redelivery: the insert hit the conflict branch. Load the existing row
	// so the caller can tell a finished delivery from one that still needs
	// the reconciler.
	const lookup = `
	SELECT id, processed_at IS NOT NULL
	FROM payment_webhooks
	WHERE provider = $1 AND event_id = $2;
	`

	entry.Duplicate = true
	if err := r.db.QueryRowContext(ctx, lookup, ProviderName, eventID).
		Scan(&entry.ID, &entry.Processed); err != nil {
		return InboxEntry{}, err
	}

	return entry, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
