package order

import (
	"context"
	"database/sql"
	"errors"

	"soukly-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetOrderByID(ctx context.Context, id uint) (*Order, error)

	// UpdatePayment loads the order under a row lock, applies the given
	// mutation to its payment fields and writes payment_status,
	// payment_id and payment_details back in the same transaction.
	// Concurrent webhooks for the same order serialize on the lock.
	UpdatePayment(ctx context.Context, orderID uint, apply func(*Order) error) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectOrder = `
	SELECT id, user_id, total, payment_method, payment_status,
	       payment_id, payment_details, created_at, updated_at
	FROM orders
	WHERE id = $1
`

func scanOrder(row *sql.Row) (*Order, error) {
	var o Order
	var paymentID sql.NullString

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Total,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&paymentID,
		&o.PaymentDetails,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.PaymentID = paymentID.String
	return &o, nil
}

func (r *repository) GetOrderByID(ctx context.Context, id uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) UpdatePayment(
	ctx context.Context,
	orderID uint,
	apply func(*Order) error,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdatePayment"),
		zap.Uint("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	o, err := scanOrder(tx.QueryRowContext(ctx, selectOrder+" FOR UPDATE", orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order row", zap.Error(err))
		return nil, err
	}

	if err := apply(o); err != nil {
		return nil, err
	}

	var paymentID interface{}
	if o.PaymentID != "" {
		paymentID = o.PaymentID
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1,
		    payment_id = $2,
		    payment_details = $3,
		    updated_at = NOW()
		WHERE id = $4
	`, o.PaymentStatus, paymentID, o.PaymentDetails, o.ID)
	if err != nil {
		log.Error("failed to update payment fields", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit payment update", zap.Error(err))
		return nil, err
	}

	committed = true
	log.Debug("payment fields updated",
		zap.String("payment_status", string(o.PaymentStatus)),
	)

	return o, nil
}
