package rentalrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bookmarket/model"
)

// BookForRent is the snapshot the ledger validates against, read under a
// row lock on the book.
type BookForRent struct {
	ID                int64
	OwnerID           int64
	RentalPrice       float64
	AvailableQuantity int64
	TotalQuantity     int64
	IsApproved        bool
	OwnerApproved     bool
}

// RentalForReturn is the minimal row the return path needs, read FOR UPDATE.
type RentalForReturn struct {
	ID      int64
	UserID  int64
	OwnerID int64
	BookID  int64
	Status  model.RentalStatus
}

// StatsScope narrows the overview aggregate to one user or one owner.
// Zero values mean platform-wide.
type StatsScope struct {
	UserID  int64
	OwnerID int64
}

type Repo interface {
	// Rent path. All methods run on the caller's transaction.
	LockBookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (*BookForRent, error)
	HasActiveRental(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	InsertRental(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error)
	DecrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)

	// Return path.
	LockRentalForReturn(ctx context.Context, tx *sql.Tx, rentalID int64) (*RentalForReturn, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, rentalID int64) error
	IncrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)

	// Overdue sweep.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)

	// Reads.
	Detail(ctx context.Context, id int64) (*model.RentalDetail, error)
	List(ctx context.Context, f model.RentalFilter) ([]model.RentalDetail, int64, error)
	StatsOverview(ctx context.Context, scope StatsScope) (*model.RentalStats, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// LockBookForRent reads the book + owner approval snapshot and takes a row
// lock on the book. The lock serializes concurrent rents of the same book,
// so check-then-decrement behaves as one atomic unit.
func (r *repo) LockBookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (*BookForRent, error) {
	const q = `
		SELECT b.id, b.owner_id, b.rental_price, b.available_quantity,
		       b.total_quantity, b.is_approved, o.is_approved
		FROM books b
		JOIN owners o ON o.id = b.owner_id
		WHERE b.id = $1
		FOR UPDATE OF b`
	var b BookForRent
	err := tx.QueryRowContext(ctx, q, bookID).Scan(
		&b.ID, &b.OwnerID, &b.RentalPrice, &b.AvailableQuantity,
		&b.TotalQuantity, &b.IsApproved, &b.OwnerApproved,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) HasActiveRental(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE user_id = $1 AND book_id = $2 AND status = 'ACTIVE'
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) InsertRental(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error) {
	const q = `
		INSERT INTO rentals (user_id, book_id, owner_id, rental_price, status, due_date)
		VALUES ($1, $2, $3, $4, 'ACTIVE', $5)
		RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, q, userID, bookID, ownerID, price, due).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// DecrementAvailability takes one copy off the shelf. The guard keeps the
// count from ever going negative; false means no copy was available.
func (r *repo) DecrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `
		UPDATE books
		SET available_quantity = available_quantity - 1
		WHERE id = $1 AND available_quantity > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) LockRentalForReturn(ctx context.Context, tx *sql.Tx, rentalID int64) (*RentalForReturn, error) {
	const q = `
		SELECT id, user_id, owner_id, book_id, status
		FROM rentals
		WHERE id = $1
		FOR UPDATE`
	var row RentalForReturn
	err := tx.QueryRowContext(ctx, q, rentalID).Scan(
		&row.ID, &row.UserID, &row.OwnerID, &row.BookID, &row.Status,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, rentalID int64) error {
	const q = `
		UPDATE rentals
		SET status = 'RETURNED', return_date = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, rentalID)
	return err
}

// IncrementAvailability puts a copy back, capped at total_quantity. A false
// result means the cap blocked the write, which indicates the availability
// count had already drifted from the active-rental count.
func (r *repo) IncrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `
		UPDATE books
		SET available_quantity = available_quantity + 1
		WHERE id = $1 AND available_quantity < total_quantity`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE rentals
		SET status = 'OVERDUE'
		WHERE status = 'ACTIVE' AND due_date < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

const detailSelect = `
	SELECT r.id, r.user_id, r.book_id, r.owner_id, r.rental_price, r.status,
	       r.rental_date, r.due_date, r.return_date,
	       b.title, b.author, b.image_url,
	       u.email, o.first_name, o.last_name, c.name
	FROM rentals r
	JOIN books b ON b.id = r.book_id
	JOIN users u ON u.id = r.user_id
	JOIN owners o ON o.id = r.owner_id
	JOIN categories c ON c.id = b.category_id`

func scanDetail(s interface{ Scan(...any) error }) (*model.RentalDetail, error) {
	var d model.RentalDetail
	err := s.Scan(
		&d.ID, &d.UserID, &d.BookID, &d.OwnerID, &d.RentalPrice, &d.Status,
		&d.RentalDate, &d.DueDate, &d.ReturnDate,
		&d.BookTitle, &d.BookAuthor, &d.BookImage,
		&d.UserEmail, &d.OwnerFirstName, &d.OwnerLastName, &d.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.RentalDetail, error) {
	return scanDetail(r.db.QueryRowContext(ctx, detailSelect+` WHERE r.id = $1`, id))
}

func (r *repo) List(ctx context.Context, f model.RentalFilter) ([]model.RentalDetail, int64, error) {
	var conds []string
	var args []any

	if f.UserID > 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if f.OwnerID > 0 {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("r.owner_id = $%d", len(args)))
	}
	if f.BookID > 0 {
		args = append(args, f.BookID)
		conds = append(conds, fmt.Sprintf("r.book_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d OR u.email ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQ := `
		SELECT COUNT(*)
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		JOIN users u ON u.id = r.user_id
		JOIN owners o ON o.id = r.owner_id` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	q := detailSelect + where +
		fmt.Sprintf(" ORDER BY r.rental_date DESC, r.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.RentalDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *repo) StatsOverview(ctx context.Context, scope StatsScope) (*model.RentalStats, error) {
	var conds []string
	var args []any
	if scope.UserID > 0 {
		args = append(args, scope.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if scope.OwnerID > 0 {
		args = append(args, scope.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	q := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		       COUNT(*) FILTER (WHERE status = 'RETURNED'),
		       COUNT(*) FILTER (WHERE status = 'OVERDUE'),
		       COALESCE(SUM(rental_price), 0),
		       COALESCE(AVG(rental_price), 0)
		FROM rentals` + where

	var s model.RentalStats
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&s.TotalRentals, &s.ActiveRentals, &s.ReturnedRentals,
		&s.OverdueRentals, &s.TotalAmount, &s.AveragePrice,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
