package walletrepo

import (
	"context"
	"database/sql"

	"bookmarket/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, ownerID int64) error
	ByOwner(ctx context.Context, ownerID int64) (*model.Wallet, error)
	Credit(ctx context.Context, tx *sql.Tx, ownerID int64, amount float64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, ownerID int64) error {
	const q = `INSERT INTO wallets (owner_id) VALUES ($1)`
	_, err := tx.ExecContext(ctx, q, ownerID)
	return err
}

func (r *repo) ByOwner(ctx context.Context, ownerID int64) (*model.Wallet, error) {
	const q = `
		SELECT owner_id, balance, total_earned, updated_at
		FROM wallets
		WHERE owner_id = $1`
	var w model.Wallet
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(
		&w.OwnerID, &w.Balance, &w.TotalEarned, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit bumps balance and the lifetime counter in one in-place update, so
// concurrent credits to the same wallet cannot lose each other.
func (r *repo) Credit(ctx context.Context, tx *sql.Tx, ownerID int64, amount float64) error {
	const q = `
		UPDATE wallets
		SET balance = balance + $2,
		    total_earned = total_earned + $2,
		    updated_at = NOW()
		WHERE owner_id = $1`
	res, err := tx.ExecContext(ctx, q, ownerID, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
