package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateIntent(ctx context.Context, intent *Intent) error
	SetProcessorSession(ctx context.Context, intentID uuid.UUID, sessionID string) error
	GetIntent(ctx context.Context, intentID uuid.UUID) (*Intent, error)

	// MaterializeIntent turns an OPEN intent into durable order rows and
	// marks it CONSUMED, all in one transaction.
	MaterializeIntent(ctx context.Context, intentID uuid.UUID, paymentRef string) (MaterializeResult, error)

	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateIntent(ctx context.Context, intent *Intent) error {
	ordersJSON, err := json.Marshal(intent.OrdersData)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO checkout_sessions (
			id, user_id, status, orders_data,
			subtotal, sales_tax, service_fee, processor_fee, total_amount,
			created_at, expires_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		intent.ID,
		intent.UserID,
		intent.Status,
		ordersJSON,
		intent.Subtotal,
		intent.SalesTax,
		intent.ServiceFee,
		intent.ProcessorFee,
		intent.TotalAmount,
		intent.CreatedAt,
		intent.ExpiresAt,
	)
	return err
}

func (r *repository) SetProcessorSession(ctx context.Context, intentID uuid.UUID, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE checkout_sessions
		SET processor_session_id = $2
		WHERE id = $1
	`, intentID, sessionID)
	return err
}

func (r *repository) GetIntent(ctx context.Context, intentID uuid.UUID) (*Intent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, orders_data,
		       subtotal, sales_tax, service_fee, processor_fee, total_amount,
		       processor_session_id, created_at, expires_at, consumed_at
		FROM checkout_sessions
		WHERE id = $1
	`, intentID)

	var (
		intent     Intent
		ordersJSON []byte
	)
	err := row.Scan(
		&intent.ID,
		&intent.UserID,
		&intent.Status,
		&ordersJSON,
		&intent.Subtotal,
		&intent.SalesTax,
		&intent.ServiceFee,
		&intent.ProcessorFee,
		&intent.TotalAmount,
		&intent.ProcessorSessionID,
		&intent.CreatedAt,
		&intent.ExpiresAt,
		&intent.ConsumedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ordersJSON, &intent.OrdersData); err != nil {
		return nil, err
	}

	return &intent, nil
}

func (r *repository) MaterializeIntent(ctx context.Context, intentID uuid.UUID, paymentRef string) (MaterializeResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// 1. Lock the intent row. Concurrent deliveries of the same event
	// serialize here; the loser re-reads CONSUMED and no-ops.
	var (
		userID     uint
		status     IntentStatus
		ordersJSON []byte
	)
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, status, orders_data
		FROM checkout_sessions
		WHERE id = $1
		FOR UPDATE
	`, intentID).Scan(&userID, &status, &ordersJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return MaterializeIntentNotFound, nil
	}
	if err != nil {
		return 0, err
	}

	// 2. State machine: no transition out of CONSUMED or EXPIRED.
	switch status {
	case IntentConsumed:
		return MaterializeAlreadyConsumed, nil
	case IntentExpired:
		return MaterializeExpiredAnomaly, nil
	}

	var days []OrderDay
	if err := json.Unmarshal(ordersJSON, &days); err != nil {
		return 0, err
	}

	// 3. One order row per child/date entry, one line per cart line, with
	// the frozen prices from the intent. Any failure rolls the whole
	// invocation back and leaves the intent OPEN for the next retry.
	for _, day := range days {
		var orderID uint
		err = tx.QueryRowContext(ctx, `
			INSERT INTO orders (
				external_id, parent_id, child_id, order_date,
				total_amount, status, fulfillment_status,
				processor_payment_ref, intent_id
			) VALUES ($1,$2,$3,$4,$5,'PAID','PENDING_DELIVERY',$6,$7)
			RETURNING id
		`,
			uuid.New(),
			userID,
			day.ChildID,
			day.Date,
			day.ComputedTotal,
			paymentRef,
			intentID,
		).Scan(&orderID)
		if err != nil {
			return 0, err
		}

		for _, line := range day.Lines {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_details (
					order_id, menu_item_id, menu_item_name,
					quantity, portion_type, unit_price
				) VALUES ($1,$2,$3,$4,$5,$6)
			`,
				orderID,
				line.MenuItemID,
				line.MenuItemName,
				line.Quantity,
				line.Portion,
				line.UnitPrice,
			)
			if err != nil {
				return 0, err
			}
		}
	}

	// 4. Consume the intent only after every row is in.
	_, err = tx.ExecContext(ctx, `
		UPDATE checkout_sessions
		SET status = 'CONSUMED', consumed_at = now()
		WHERE id = $1
	`, intentID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return MaterializeCreated, nil
}

func (r *repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checkout_sessions
		SET status = 'EXPIRED'
		WHERE status = 'OPEN' AND expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
