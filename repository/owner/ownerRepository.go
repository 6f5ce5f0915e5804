package ownerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookmarket/model"
)

type Filter struct {
	Page     int
	Limit    int
	Location string
	Approved *bool
	Search   string
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, o *model.Owner) error
	ByID(ctx context.Context, id int64) (*model.Owner, error)
	Detail(ctx context.Context, id int64) (*model.OwnerDetail, error)
	List(ctx context.Context, f Filter) ([]model.OwnerDetail, int64, error)
	Update(ctx context.Context, id int64, req model.UpdateOwnerReq, approverID int64, admin bool) error
	Stats(ctx context.Context, id int64) (*model.OwnerStats, error)

	// Availability overrides used by disable/enable/reconcile.
	ZeroBookAvailability(ctx context.Context, tx *sql.Tx, ownerID int64) error
	RestoreBookAvailability(ctx context.Context, tx *sql.Tx, ownerID int64) error
	ReconcileBookAvailability(ctx context.Context, tx *sql.Tx, ownerID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, o *model.Owner) error {
	const q = `
		INSERT INTO owners (user_id, first_name, last_name, phone, address, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_approved, created_at`
	return tx.QueryRowContext(ctx, q,
		o.UserID, o.FirstName, o.LastName, o.Phone, o.Address, o.Location,
	).Scan(&o.ID, &o.IsApproved, &o.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Owner, error) {
	const q = `
		SELECT id, user_id, first_name, last_name, phone, address, location,
		       is_approved, approved_by, approved_at, created_at
		FROM owners
		WHERE id = $1`
	var o model.Owner
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.UserID, &o.FirstName, &o.LastName, &o.Phone, &o.Address,
		&o.Location, &o.IsApproved, &o.ApprovedBy, &o.ApprovedAt, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const detailSelect = `
	SELECT o.id, o.user_id, o.first_name, o.last_name, o.phone, o.address,
	       o.location, o.is_approved, o.approved_by, o.approved_at, o.created_at,
	       u.email, u.is_active,
	       COALESCE(w.balance, 0), COALESCE(w.total_earned, 0),
	       COUNT(DISTINCT b.id),
	       COUNT(DISTINCT b.id) FILTER (WHERE b.is_approved),
	       COUNT(DISTINCT r.id)
	FROM owners o
	JOIN users u ON u.id = o.user_id
	LEFT JOIN wallets w ON w.owner_id = o.id
	LEFT JOIN books b ON b.owner_id = o.id
	LEFT JOIN rentals r ON r.owner_id = o.id`

const detailGroup = `
	GROUP BY o.id, u.email, u.is_active, w.balance, w.total_earned`

func scanDetail(s interface{ Scan(...any) error }) (*model.OwnerDetail, error) {
	var d model.OwnerDetail
	err := s.Scan(
		&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.Phone, &d.Address,
		&d.Location, &d.IsApproved, &d.ApprovedBy, &d.ApprovedAt, &d.CreatedAt,
		&d.Email, &d.IsActive, &d.Balance, &d.TotalEarned,
		&d.TotalBooks, &d.ApprovedBooks, &d.TotalRentals,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.OwnerDetail, error) {
	q := detailSelect + ` WHERE o.id = $1` + detailGroup
	return scanDetail(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.OwnerDetail, int64, error) {
	var conds []string
	var args []any

	if f.Location != "" {
		args = append(args, "%"+f.Location+"%")
		conds = append(conds, fmt.Sprintf("o.location ILIKE $%d", len(args)))
	}
	if f.Approved != nil {
		args = append(args, *f.Approved)
		conds = append(conds, fmt.Sprintf("o.is_approved = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(o.first_name ILIKE $%d OR o.last_name ILIKE $%d OR u.email ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQ := `SELECT COUNT(*) FROM owners o JOIN users u ON u.id = o.user_id` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	q := detailSelect + where + detailGroup +
		fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.OwnerDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// Update builds the SET list from the supplied fields only. Approval flips
// are accepted only when admin is true; approving stamps approved_by/at and
// un-approving clears them.
func (r *repo) Update(ctx context.Context, id int64, req model.UpdateOwnerReq, approverID int64, admin bool) error {
	var sets []string
	var args []any

	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.FirstName != nil {
		set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		set("last_name", *req.LastName)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Address != nil {
		set("address", *req.Address)
	}
	if req.Location != nil {
		set("location", *req.Location)
	}
	if req.IsApproved != nil && admin {
		set("is_approved", *req.IsApproved)
		if *req.IsApproved {
			set("approved_by", approverID)
			sets = append(sets, "approved_at = NOW()")
		} else {
			sets = append(sets, "approved_by = NULL", "approved_at = NULL")
		}
	}

	if len(sets) == 0 {
		return ErrNoFields
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE owners SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Stats(ctx context.Context, id int64) (*model.OwnerStats, error) {
	const q = `
		SELECT COUNT(DISTINCT b.id),
		       COUNT(DISTINCT b.id) FILTER (WHERE b.is_approved),
		       COUNT(DISTINCT r.id),
		       COUNT(DISTINCT r.id) FILTER (WHERE r.status = 'ACTIVE'),
		       COALESCE(SUM(r.rental_price), 0),
		       COALESCE(MAX(w.balance), 0)
		FROM owners o
		LEFT JOIN books b ON b.owner_id = o.id
		LEFT JOIN rentals r ON r.owner_id = o.id
		LEFT JOIN wallets w ON w.owner_id = o.id
		WHERE o.id = $1`
	var s model.OwnerStats
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.TotalBooks, &s.ApprovedBooks, &s.TotalRentals,
		&s.ActiveRentals, &s.TotalRevenue, &s.CurrentBalance,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ZeroBookAvailability(ctx context.Context, tx *sql.Tx, ownerID int64) error {
	const q = `UPDATE books SET available_quantity = 0 WHERE owner_id = $1`
	_, err := tx.ExecContext(ctx, q, ownerID)
	return err
}

// RestoreBookAvailability resets approved books to full stock. Copies still
// out on loan at disable time are not subtracted; that is the documented
// override behavior, with ReconcileBookAvailability as the corrective path.
func (r *repo) RestoreBookAvailability(ctx context.Context, tx *sql.Tx, ownerID int64) error {
	const q = `
		UPDATE books
		SET available_quantity = total_quantity
		WHERE owner_id = $1 AND is_approved = true`
	_, err := tx.ExecContext(ctx, q, ownerID)
	return err
}

func (r *repo) ReconcileBookAvailability(ctx context.Context, tx *sql.Tx, ownerID int64) (int64, error) {
	const q = `
		UPDATE books b
		SET available_quantity = GREATEST(
			b.total_quantity - (
				SELECT COUNT(*) FROM rentals r
				WHERE r.book_id = b.id AND r.status <> 'RETURNED'
			), 0)
		WHERE b.owner_id = $1`
	res, err := tx.ExecContext(ctx, q, ownerID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ErrNoFields is returned when an update request carries nothing to change.
var ErrNoFields = errors.New("no fields to update")
