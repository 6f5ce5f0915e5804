package ownersvc

import (
	"context"
	"database/sql"
	"errors"

	"bookmarket/authz"
	"bookmarket/model"
	ownerrepo "bookmarket/repository/owner"
	userrepo "bookmarket/repository/user"
)

type ErrCode string

const (
	ErrOwnerNotFound   ErrCode = "OWNER_NOT_FOUND"
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrNothingToUpdate ErrCode = "NOTHING_TO_UPDATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	List(ctx context.Context, actor model.Actor, f ownerrepo.Filter) ([]model.OwnerDetail, *model.Pagination, error)
	Get(ctx context.Context, actor model.Actor, id int64) (*model.OwnerDetail, error)
	Update(ctx context.Context, actor model.Actor, id int64, req model.UpdateOwnerReq) (*model.OwnerDetail, error)
	Stats(ctx context.Context, actor model.Actor, id int64) (*model.OwnerStats, error)

	// Disable locks the account out and pulls every copy off the shelf.
	Disable(ctx context.Context, actor model.Actor, id int64) error

	// Enable reactivates the account and restores approved books to full
	// stock. Copies still out on loan are not subtracted; Reconcile exists
	// to correct the counts afterwards.
	Enable(ctx context.Context, actor model.Actor, id int64) error

	// Reconcile recomputes availability from open rentals for every book
	// the owner has.
	Reconcile(ctx context.Context, actor model.Actor, id int64) (int64, error)
}

type service struct {
	db     *sql.DB
	owners ownerrepo.Repo
	users  userrepo.Repo
}

func New(db *sql.DB, owners ownerrepo.Repo, users userrepo.Repo) Service {
	return &service{db: db, owners: owners, users: users}
}

func (s *service) List(ctx context.Context, actor model.Actor, f ownerrepo.Filter) ([]model.OwnerDetail, *model.Pagination, error) {
	if !authz.Can(actor, authz.Read, authz.Platform{}) {
		return nil, nil, makeErr(ErrForbidden)
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}

	rows, total, err := s.owners.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	pages := (total + int64(f.Limit) - 1) / int64(f.Limit)
	return rows, &model.Pagination{Page: f.Page, Limit: f.Limit, Total: total, Pages: pages}, nil
}

func (s *service) Get(ctx context.Context, actor model.Actor, id int64) (*model.OwnerDetail, error) {
	if !authz.Can(actor, authz.Read, authz.OwnerProfile{ID: id}) {
		return nil, makeErr(ErrForbidden)
	}
	d, err := s.owners.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrOwnerNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *service) Update(ctx context.Context, actor model.Actor, id int64, req model.UpdateOwnerReq) (*model.OwnerDetail, error) {
	action := authz.Update
	if req.IsApproved != nil {
		action = authz.Approve
	}
	if !authz.Can(actor, action, authz.OwnerProfile{ID: id}) {
		return nil, makeErr(ErrForbidden)
	}

	admin := actor.Role == model.RoleAdmin
	if err := s.owners.Update(ctx, id, req, actor.UserID, admin); err != nil {
		switch {
		case errors.Is(err, ownerrepo.ErrNoFields):
			return nil, makeErr(ErrNothingToUpdate)
		case errors.Is(err, sql.ErrNoRows):
			return nil, makeErr(ErrOwnerNotFound)
		}
		return nil, err
	}
	return s.owners.Detail(ctx, id)
}

func (s *service) Stats(ctx context.Context, actor model.Actor, id int64) (*model.OwnerStats, error) {
	if !authz.Can(actor, authz.Read, authz.OwnerProfile{ID: id}) {
		return nil, makeErr(ErrForbidden)
	}
	return s.owners.Stats(ctx, id)
}

func (s *service) Disable(ctx context.Context, actor model.Actor, id int64) (err error) {
	if !authz.Can(actor, authz.Update, authz.Platform{}) {
		return makeErr(ErrForbidden)
	}
	o, err := s.owners.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrOwnerNotFound)
		}
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.users.SetActive(ctx, tx, o.UserID, false); err != nil {
		return err
	}
	if err = s.owners.ZeroBookAvailability(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Enable(ctx context.Context, actor model.Actor, id int64) (err error) {
	if !authz.Can(actor, authz.Update, authz.Platform{}) {
		return makeErr(ErrForbidden)
	}
	o, err := s.owners.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrOwnerNotFound)
		}
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.users.SetActive(ctx, tx, o.UserID, true); err != nil {
		return err
	}
	if err = s.owners.RestoreBookAvailability(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Reconcile(ctx context.Context, actor model.Actor, id int64) (n int64, err error) {
	if !authz.Can(actor, authz.Update, authz.Platform{}) {
		return 0, makeErr(ErrForbidden)
	}
	if _, err = s.owners.ByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, makeErr(ErrOwnerNotFound)
		}
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	n, err = s.owners.ReconcileBookAvailability(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
