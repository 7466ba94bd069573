package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRows(t *testing.T, status PaymentStatus, paymentID interface{}, details string) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{
		"id", "user_id", "total", "payment_method", "payment_status",
		"payment_id", "payment_details", "created_at", "updated_at",
	}).AddRow(
		42, 7, 250.0, "credit_card", string(status),
		paymentID, []byte(details), time.Now(), time.Now(),
	)
}

func TestRepository_GetOrderByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs(uint(42)).
			WillReturnRows(orderRows(t, PaymentPending, nil, `{"gateway":"kashier"}`))

		o, err := repo.GetOrderByID(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, uint(42), o.ID)
		assert.Equal(t, MethodCreditCard, o.PaymentMethod)
		assert.Equal(t, PaymentPending, o.PaymentStatus)
		assert.Equal(t, "", o.PaymentID)
		assert.Equal(t, "kashier", o.PaymentDetails["gateway"])
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs(uint(999)).
			WillReturnError(sql.ErrNoRows)

		o, err := repo.GetOrderByID(context.Background(), 999)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.GetOrderByID(context.Background(), 42)
		assert.Error(t, err)
	})
}

func TestRepository_UpdatePayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(uint(42)).
			WillReturnRows(orderRows(t, PaymentPending, nil, `{}`))
		mock.ExpectExec(`UPDATE orders`).
			WithArgs("paid", "TX-100", sqlmock.AnyArg(), uint(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.UpdatePayment(ctx, 42, func(o *Order) error {
			o.PaymentStatus = PaymentPaid
			o.PaymentID = "TX-100"
			o.PaymentDetails = o.PaymentDetails.Merge(map[string]interface{}{
				"transaction_id": "TX-100",
			})
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, PaymentPaid, o.PaymentStatus)
		assert.Equal(t, "TX-100", o.PaymentID)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(uint(999)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.UpdatePayment(ctx, 999, func(o *Order) error { return nil })
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("ApplyError rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(uint(42)).
			WillReturnRows(orderRows(t, PaymentPending, nil, `{}`))
		mock.ExpectRollback()

		applyErr := errors.New("mutation rejected")
		_, err := repo.UpdatePayment(ctx, 42, func(o *Order) error { return applyErr })
		assert.ErrorIs(t, err, applyErr)
	})

	t.Run("UpdateError rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(uint(42)).
			WillReturnRows(orderRows(t, PaymentPending, nil, `{}`))
		mock.ExpectExec(`UPDATE orders`).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		_, err := repo.UpdatePayment(ctx, 42, func(o *Order) error {
			o.PaymentStatus = PaymentFailed
			return nil
		})
		assert.Error(t, err)
	})
}

func TestPaymentDetails_Merge(t *testing.T) {
	base := PaymentDetails{"gateway": "kashier", "mode": "test"}

	merged := base.Merge(map[string]interface{}{
		"transaction_id": "TX-1",
		"mode":           "live",
	})

	assert.Equal(t, "kashier", merged["gateway"])
	assert.Equal(t, "live", merged["mode"])
	assert.Equal(t, "TX-1", merged["transaction_id"])

	// Original map untouched
	assert.Equal(t, "test", base["mode"])
	_, ok := base["transaction_id"]
	assert.False(t, ok)
}
