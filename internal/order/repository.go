package order

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID uint) (*Order, error)
	FetchOrders(ctx context.Context, parentID uint, f Filter) ([]*Order, error)
	FetchOrderLines(ctx context.Context, orderIDs []uint) (map[uint][]OrderLine, error)
	UpdateStatus(ctx context.Context, orderID uint, status *OrderStatus, fulfillment *FulfillmentStatus) error
	PromotePaidBySession(ctx context.Context, parentID uint, sessionID, paymentRef string) (int64, error)
	DatesWithOrders(ctx context.Context, childID uint, dates []string) ([]string, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx inserts an order and its lines in one transaction (the
// direct/legacy path; webhook materialization has its own transaction in the
// checkout repository).
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			external_id, parent_id, child_id, order_date,
			total_amount, status, fulfillment_status,
			processor_session_id, special_requests
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`,
		o.ExternalID,
		o.ParentID,
		o.ChildID,
		o.OrderDate,
		o.TotalAmount,
		o.Status,
		o.FulfillmentStatus,
		o.ProcessorSessionID,
		o.SpecialRequests,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return err
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_details (
				order_id, menu_item_id, menu_item_name,
				quantity, portion_type, unit_price
			) VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`,
			line.OrderID,
			line.MenuItemID,
			line.MenuItemName,
			line.Quantity,
			line.Portion,
			line.UnitPrice,
		).Scan(&line.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

const orderColumns = `
	o.id, o.external_id, o.parent_id, o.child_id, c.name,
	o.order_date, o.total_amount, o.status, o.fulfillment_status,
	o.processor_payment_ref, o.intent_id, o.processor_session_id,
	o.special_requests, o.created_at
`

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.ExternalID, &o.ParentID, &o.ChildID, &o.ChildName,
		&o.OrderDate, &o.TotalAmount, &o.Status, &o.FulfillmentStatus,
		&o.ProcessorPaymentRef, &o.IntentID, &o.ProcessorSessionID,
		&o.SpecialRequests, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		LEFT JOIN children c ON c.id = o.child_id
		WHERE o.id = $1
	`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.FetchOrderLines(ctx, []uint{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]

	return o, nil
}

func (r *repository) FetchOrders(ctx context.Context, parentID uint, f Filter) ([]*Order, error) {
	qb := sq.Select(
		"o.id", "o.external_id", "o.parent_id", "o.child_id", "c.name",
		"o.order_date", "o.total_amount", "o.status", "o.fulfillment_status",
		"o.processor_payment_ref", "o.intent_id", "o.processor_session_id",
		"o.special_requests", "o.created_at",
	).
		From("orders o").
		LeftJoin("children c ON c.id = o.child_id").
		Where(sq.Eq{"o.parent_id": parentID}).
		OrderBy("o.order_date DESC", "o.id DESC").
		PlaceholderFormat(sq.Dollar)

	if f.Status != nil {
		qb = qb.Where(sq.Eq{"o.status": *f.Status})
	}
	if f.FromDate != nil {
		qb = qb.Where(sq.GtOrEq{"o.order_date": *f.FromDate})
	}
	if f.ToDate != nil {
		qb = qb.Where(sq.LtOrEq{"o.order_date": *f.ToDate})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	lines, err := r.FetchOrderLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Lines = lines[o.ID]
	}

	return orders, nil
}

func (r *repository) FetchOrderLines(ctx context.Context, orderIDs []uint) (map[uint][]OrderLine, error) {
	ids := make([]int64, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, int64(id))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, menu_item_name, quantity, portion_type, unit_price
		FROM order_details
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint][]OrderLine)
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.MenuItemName, &l.Quantity, &l.Portion, &l.UnitPrice); err != nil {
			return nil, err
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}

	return out, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uint, status *OrderStatus, fulfillment *FulfillmentStatus) error {
	qb := sq.Update("orders").
		Where(sq.Eq{"id": orderID}).
		PlaceholderFormat(sq.Dollar)

	if status != nil {
		qb = qb.Set("status", *status)
	}
	if fulfillment != nil {
		qb = qb.Set("fulfillment_status", *fulfillment)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// PromotePaidBySession promotes this parent's PENDING_PAYMENT orders tied to
// a hosted session to PAID. Idempotent: already-PAID rows are untouched.
func (r *repository) PromotePaidBySession(ctx context.Context, parentID uint, sessionID, paymentRef string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'PAID', processor_payment_ref = $3
		WHERE parent_id = $1
		  AND processor_session_id = $2
		  AND status = 'PENDING_PAYMENT'
	`, parentID, sessionID, paymentRef)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) DatesWithOrders(ctx context.Context, childID uint, dates []string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT to_char(order_date, 'YYYY-MM-DD')
		FROM orders
		WHERE child_id = $1
		  AND status <> 'CANCELLED'
		  AND to_char(order_date, 'YYYY-MM-DD') = ANY($2)
	`, childID, pq.Array(dates))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}
