package statsrepo

import (
	"context"
	"database/sql"

	"bookmarket/model"
)

type Repo interface {
	Platform(ctx context.Context) (*model.PlatformStats, error)
	ActivityChart(ctx context.Context) ([]model.ActivityPoint, error)
	TopBooks(ctx context.Context, limit int) ([]model.TopBook, error)
	TopCategories(ctx context.Context, limit int) ([]model.TopCategory, error)
	TopOwners(ctx context.Context, limit int) ([]model.TopOwner, error)
	TopUsers(ctx context.Context, limit int) ([]model.TopUser, error)
	RecentActivity(ctx context.Context, limit int) ([]model.ActivityEntry, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Platform(ctx context.Context) (*model.PlatformStats, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM owners),
			(SELECT COUNT(*) FROM books),
			(SELECT COUNT(*) FROM rentals),
			(SELECT COALESCE(SUM(rental_price), 0) FROM rentals),
			(SELECT COUNT(*) FROM books WHERE NOT is_approved) +
			(SELECT COUNT(*) FROM owners WHERE NOT is_approved),
			(SELECT COUNT(*) FROM rentals WHERE status = 'ACTIVE'),
			(SELECT COUNT(*) FROM rentals WHERE status = 'OVERDUE')`
	var s model.PlatformStats
	err := r.db.QueryRowContext(ctx, q).Scan(
		&s.TotalUsers, &s.TotalOwners, &s.TotalBooks, &s.TotalRentals,
		&s.TotalRevenue, &s.PendingApprovals, &s.ActiveRentals, &s.OverdueRentals,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ActivityChart(ctx context.Context) ([]model.ActivityPoint, error) {
	const q = `
		SELECT to_char(rental_date::date, 'Dy'), COUNT(*)
		FROM rentals
		WHERE rental_date >= NOW() - INTERVAL '7 days'
		GROUP BY rental_date::date
		ORDER BY rental_date::date`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivityPoint
	for rows.Next() {
		var p model.ActivityPoint
		if err := rows.Scan(&p.Day, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) TopBooks(ctx context.Context, limit int) ([]model.TopBook, error) {
	const q = `
		SELECT b.id, b.title, b.author, COUNT(r.id)
		FROM books b
		LEFT JOIN rentals r ON r.book_id = b.id
		WHERE b.is_approved
		GROUP BY b.id, b.title, b.author
		ORDER BY COUNT(r.id) DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TopBook
	for rows.Next() {
		var b model.TopBook
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.RentalCount); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// TopCategories ranks by approved catalog size, with rentals as the
// secondary signal.
func (r *repo) TopCategories(ctx context.Context, limit int) ([]model.TopCategory, error) {
	const q = `
		SELECT c.id, c.name, COUNT(DISTINCT b.id), COUNT(r.id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id AND b.is_approved
		LEFT JOIN rentals r ON r.book_id = b.id
		GROUP BY c.id, c.name
		ORDER BY COUNT(DISTINCT b.id) DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TopCategory
	for rows.Next() {
		var c model.TopCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.BookCount, &c.RentalCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) TopOwners(ctx context.Context, limit int) ([]model.TopOwner, error) {
	const q = `
		SELECT o.id, o.first_name, o.last_name, u.email,
		       COALESCE(SUM(r.rental_price), 0), COUNT(r.id)
		FROM owners o
		JOIN users u ON u.id = o.user_id
		LEFT JOIN rentals r ON r.owner_id = o.id
		WHERE o.is_approved
		GROUP BY o.id, o.first_name, o.last_name, u.email
		ORDER BY COALESCE(SUM(r.rental_price), 0) DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TopOwner
	for rows.Next() {
		var o model.TopOwner
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Email, &o.TotalRevenue, &o.TotalRentals); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repo) TopUsers(ctx context.Context, limit int) ([]model.TopUser, error) {
	const q = `
		SELECT u.id, u.email, COUNT(r.id), COALESCE(SUM(r.rental_price), 0)
		FROM users u
		LEFT JOIN rentals r ON r.user_id = u.id
		WHERE u.role = 'USER'
		GROUP BY u.id, u.email
		ORDER BY COUNT(r.id) DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TopUser
	for rows.Next() {
		var u model.TopUser
		if err := rows.Scan(&u.ID, &u.Email, &u.RentalCount, &u.TotalSpent); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) RecentActivity(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	const q = `
		SELECT 'rental', r.id, u.email, b.title, r.rental_date, 'rented'
		FROM rentals r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		UNION ALL
		SELECT 'return', r.id, u.email, b.title, r.return_date, 'returned'
		FROM rentals r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE r.return_date IS NOT NULL
		ORDER BY 5 DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivityEntry
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.Type, &e.RentalID, &e.UserEmail, &e.BookTitle, &e.Timestamp, &e.Action); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
