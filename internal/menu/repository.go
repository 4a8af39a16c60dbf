package menu

import (
	"context"
	"database/sql"
	"errors"
)

var ErrItemNotFound = errors.New("menu item not found")

type Repository interface {
	GetItem(ctx context.Context, id string) (*Item, error)
	ListActive(ctx context.Context) ([]*Item, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetItem(ctx context.Context, id string) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, full_price, half_price, weekday, active, created_at
		FROM menu_items
		WHERE id = $1
	`, id)

	var m Item
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.FullPrice, &m.HalfPrice, &m.Weekday, &m.Active, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) ListActive(ctx context.Context) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, full_price, half_price, weekday, active, created_at
		FROM menu_items
		WHERE active = TRUE
		ORDER BY weekday, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var m Item
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.FullPrice, &m.HalfPrice, &m.Weekday, &m.Active, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}

	return items, rows.Err()
}
