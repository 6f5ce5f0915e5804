package userrepo

import (
	"context"
	"database/sql"

	"bookmarket/model"
)

// AccountRow is a user joined with its owner profile when one exists.
type AccountRow struct {
	User          model.User
	OwnerID       *int64
	OwnerApproved *bool
	FirstName     *string
	LastName      *string
	Location      *string
}

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, u *model.User) error
	ByEmail(ctx context.Context, email string) (*AccountRow, error)
	ByID(ctx context.Context, id int64) (*AccountRow, error)
	SetActive(ctx context.Context, tx *sql.Tx, userID int64, active bool) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, tx *sql.Tx, u *model.User) error {
	const q = `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at`
	return tx.QueryRowContext(ctx, q, u.Email, u.PasswordHash, u.Role).
		Scan(&u.ID, &u.IsActive, &u.CreatedAt)
}

const accountQuery = `
	SELECT u.id, u.email, u.password_hash, u.role, u.is_active, u.created_at,
	       o.id, o.is_approved, o.first_name, o.last_name, o.location
	FROM users u
	LEFT JOIN owners o ON o.user_id = u.id`

func (r *repo) scanAccount(row *sql.Row) (*AccountRow, error) {
	var a AccountRow
	err := row.Scan(
		&a.User.ID, &a.User.Email, &a.User.PasswordHash, &a.User.Role,
		&a.User.IsActive, &a.User.CreatedAt,
		&a.OwnerID, &a.OwnerApproved, &a.FirstName, &a.LastName, &a.Location,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) ByEmail(ctx context.Context, email string) (*AccountRow, error) {
	return r.scanAccount(r.db.QueryRowContext(ctx, accountQuery+` WHERE lower(u.email) = lower($1)`, email))
}

func (r *repo) ByID(ctx context.Context, id int64) (*AccountRow, error) {
	return r.scanAccount(r.db.QueryRowContext(ctx, accountQuery+` WHERE u.id = $1`, id))
}

func (r *repo) SetActive(ctx context.Context, tx *sql.Tx, userID int64, active bool) error {
	const q = `UPDATE users SET is_active = $2 WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, userID, active)
	return err
}
