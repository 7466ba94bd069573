package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// WebhookRepository records every inbound gateway callback. The
// (gateway, event_id) pair is unique so replayed deliveries are
// detected without touching order state.
type WebhookRepository interface {
	SaveWebhookDelivery(
		ctx context.Context,
		gateway string,
		eventID string,
		eventType string,
		orderReference string,
		payload json.RawMessage,
		signatureValid bool,
	) (deliveryID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, deliveryID int64) error
	MarkWebhookFailed(ctx context.Context, deliveryID int64, reason string) error
}

type webhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) SaveWebhookDelivery(
	ctx context.Context,
	gateway string,
	eventID string,
	eventType string,
	orderReference string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		gateway,
		event_type,
		event_id,
		order_reference,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (gateway, event_id)
	DO NOTHING
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		gateway,
		eventID,
		eventType,
		orderReference,
		signatureValid,
		payload,
	).Scan(&id)

	if err != nil {
		// Duplicate delivery, treat as idempotent success
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *webhookRepository) MarkWebhookProcessed(
	ctx context.Context,
	deliveryID int64,
) error {

	const q = `
	UPDATE payment_webhooks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, deliveryID)
	return err
}

func (r *webhookRepository) MarkWebhookFailed(
	ctx context.Context,
	deliveryID int64,
	reason string,
) error {

	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, deliveryID, reason)
	return err
}
