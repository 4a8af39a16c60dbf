package children

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrChildNotFound = errors.New("child not found")
	ErrNotOwned      = errors.New("child does not belong to this parent")
)

type Repository interface {
	GetChild(ctx context.Context, childID uint) (*Child, error)
	GetChildForParent(ctx context.Context, childID, parentID uint) (*Child, error)
	ListByParent(ctx context.Context, parentID uint) ([]*Child, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetChild(ctx context.Context, childID uint) (*Child, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, parent_id, name, created_at
		FROM children
		WHERE id = $1
	`, childID)

	var c Child
	err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChildNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetChildForParent(ctx context.Context, childID, parentID uint) (*Child, error) {
	child, err := r.GetChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrNotOwned
	}
	return child, nil
}

func (r *repository) ListByParent(ctx context.Context, parentID uint) ([]*Child, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, parent_id, name, created_at
		FROM children
		WHERE parent_id = $1
		ORDER BY name
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Child
	for rows.Next() {
		var c Child
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}

	return out, rows.Err()
}
