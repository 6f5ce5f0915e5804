package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookmarket/model"
)

type Repo interface {
	Insert(ctx context.Context, b *model.Book) error
	Detail(ctx context.Context, id int64) (*model.BookDetail, error)
	List(ctx context.Context, f model.BookFilter) ([]model.BookDetail, int64, error)
	Update(ctx context.Context, id int64, req model.UpdateBookReq, approverID int64, admin bool) error
	Delete(ctx context.Context, id int64) error
	CountActiveRentals(ctx context.Context, id int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, b *model.Book) error {
	// New books start with every copy on the shelf.
	const q = `
		INSERT INTO books (owner_id, category_id, title, author, isbn, description,
		                   rental_price, total_quantity, available_quantity, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9)
		RETURNING id, available_quantity, is_approved, created_at`
	return r.db.QueryRowContext(ctx, q,
		b.OwnerID, b.CategoryID, b.Title, b.Author, b.ISBN, b.Description,
		b.RentalPrice, b.TotalQuantity, b.ImageURL,
	).Scan(&b.ID, &b.AvailableQuantity, &b.IsApproved, &b.CreatedAt)
}

const detailSelect = `
	SELECT b.id, b.owner_id, b.category_id, b.title, b.author, b.isbn,
	       b.description, b.rental_price, b.total_quantity, b.available_quantity,
	       b.is_approved, b.approved_by, b.approved_at, b.image_url, b.created_at,
	       o.first_name, o.last_name, o.location, o.is_approved, u.email, c.name
	FROM books b
	JOIN owners o ON o.id = b.owner_id
	JOIN users u ON u.id = o.user_id
	JOIN categories c ON c.id = b.category_id`

func scanDetail(s interface{ Scan(...any) error }) (*model.BookDetail, error) {
	var d model.BookDetail
	err := s.Scan(
		&d.ID, &d.OwnerID, &d.CategoryID, &d.Title, &d.Author, &d.ISBN,
		&d.Description, &d.RentalPrice, &d.TotalQuantity, &d.AvailableQuantity,
		&d.IsApproved, &d.ApprovedBy, &d.ApprovedAt, &d.ImageURL, &d.CreatedAt,
		&d.OwnerFirstName, &d.OwnerLastName, &d.OwnerLocation, &d.OwnerApproved,
		&d.OwnerEmail, &d.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.BookDetail, error) {
	return scanDetail(r.db.QueryRowContext(ctx, detailSelect+` WHERE b.id = $1`, id))
}

func (r *repo) List(ctx context.Context, f model.BookFilter) ([]model.BookDetail, int64, error) {
	var conds []string
	var args []any

	if f.ApprovedOnly {
		conds = append(conds, "b.is_approved = true AND o.is_approved = true")
	}
	if f.OwnerID > 0 {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("b.owner_id = $%d", len(args)))
	}
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("b.category_id = $%d", len(args)))
	}
	if f.Author != "" {
		args = append(args, "%"+f.Author+"%")
		conds = append(conds, fmt.Sprintf("b.author ILIKE $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, "%"+f.Location+"%")
		conds = append(conds, fmt.Sprintf("o.location ILIKE $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d OR b.description ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQ := `
		SELECT COUNT(*)
		FROM books b
		JOIN owners o ON o.id = b.owner_id
		JOIN users u ON u.id = o.user_id
		JOIN categories c ON c.id = b.category_id` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	q := detailSelect + where +
		fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.BookDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *repo) Update(ctx context.Context, id int64, req model.UpdateBookReq, approverID int64, admin bool) error {
	var sets []string
	var args []any

	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Author != nil {
		set("author", *req.Author)
	}
	if req.CategoryID != nil {
		set("category_id", *req.CategoryID)
	}
	if req.ISBN != nil {
		set("isbn", *req.ISBN)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.RentalPrice != nil {
		set("rental_price", *req.RentalPrice)
	}
	if req.TotalQuantity != nil {
		set("total_quantity", *req.TotalQuantity)
	}
	if req.AvailableQuantity != nil {
		set("available_quantity", *req.AvailableQuantity)
	}
	if req.ImageURL != nil {
		set("image_url", *req.ImageURL)
	}
	if req.IsApproved != nil && admin {
		set("is_approved", *req.IsApproved)
		if *req.IsApproved {
			set("approved_by", approverID)
			sets = append(sets, "approved_at = NOW()")
		}
	}

	if len(sets) == 0 {
		return ErrNoFields
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE books SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) CountActiveRentals(ctx context.Context, id int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM rentals WHERE book_id = $1 AND status = 'ACTIVE'`
	var n int64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&n)
	return n, err
}

var ErrNoFields = errors.New("no fields to update")
