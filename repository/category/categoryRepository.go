package categoryrepo

import (
	"context"
	"database/sql"

	"bookmarket/model"
)

type Repo interface {
	List(ctx context.Context) ([]model.Category, error)
	ByID(ctx context.Context, id int64) (*model.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context, id int64) (*model.CategoryStats, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) List(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name, description FROM categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Category, error) {
	const q = `SELECT id, name, description FROM categories WHERE id = $1`
	var c model.Category
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Description); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) Exists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ok)
	return ok, err
}

func (r *repo) Stats(ctx context.Context, id int64) (*model.CategoryStats, error) {
	const q = `
		SELECT c.name,
		       COUNT(DISTINCT b.id),
		       COUNT(DISTINCT b.id) FILTER (WHERE b.is_approved),
		       COUNT(DISTINCT b.id) FILTER (WHERE b.available_quantity > 0),
		       COUNT(DISTINCT r.id),
		       COALESCE(SUM(r.rental_price), 0),
		       COUNT(DISTINCT b.owner_id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
		LEFT JOIN rentals r ON r.book_id = b.id
		WHERE c.id = $1
		GROUP BY c.id, c.name`
	var s model.CategoryStats
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.CategoryName, &s.TotalBooks, &s.ApprovedBooks, &s.AvailableBooks,
		&s.TotalRentals, &s.TotalRevenue, &s.UniqueOwners,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
