// Package rentalsvc is the rental ledger: it creates and closes rental
// agreements while keeping book availability and owner wallet balances
// consistent. Every mutating operation runs inside one transaction; a
// failure at any step rolls the whole operation back.
package rentalsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookmarket/authz"
	"bookmarket/model"
	rentalrepo "bookmarket/repository/rental"
)

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrNotForRental    ErrCode = "NOT_FOR_RENTAL"  // book or owner not approved
	ErrNotAvailable    ErrCode = "NOT_AVAILABLE"   // no copies on the shelf
	ErrDuplicateRental ErrCode = "DUPLICATE_RENTAL"
	ErrRentalNotFound  ErrCode = "RENTAL_NOT_FOUND"
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrInconsistent    ErrCode = "INVENTORY_INCONSISTENT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const DefaultRentalDays = 7

// Repo is the slice of the rental repository the ledger uses.
type Repo interface {
	LockBookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error)
	HasActiveRental(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	InsertRental(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error)
	DecrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)

	LockRentalForReturn(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, rentalID int64) error
	IncrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)

	MarkOverdue(ctx context.Context, now time.Time) (int64, error)

	Detail(ctx context.Context, id int64) (*model.RentalDetail, error)
	List(ctx context.Context, f model.RentalFilter) ([]model.RentalDetail, int64, error)
	StatsOverview(ctx context.Context, scope rentalrepo.StatsScope) (*model.RentalStats, error)
}

// Wallets is the slice of the wallet repository the ledger uses.
type Wallets interface {
	Credit(ctx context.Context, tx *sql.Tx, ownerID int64, amount float64) error
}

type Service interface {
	// Create rents one copy of a book to the actor: validates approval,
	// availability and the single-active-rental rule, then writes the
	// rental, the stock decrement and the wallet credit atomically.
	Create(ctx context.Context, actor model.Actor, req model.CreateRentalReq) (*model.RentalDetail, error)

	// Return closes a rental (from ACTIVE or OVERDUE) and puts the copy
	// back. The wallet is untouched: rentals are non-refundable.
	Return(ctx context.Context, actor model.Actor, rentalID int64) error

	// SweepOverdue flips every ACTIVE rental past its due date to OVERDUE.
	SweepOverdue(ctx context.Context) (int64, error)

	Get(ctx context.Context, actor model.Actor, id int64) (*model.RentalDetail, error)
	List(ctx context.Context, actor model.Actor, f model.RentalFilter) ([]model.RentalDetail, *model.Pagination, error)
	Stats(ctx context.Context, actor model.Actor) (*model.RentalStats, error)
}

type service struct {
	db *sql.DB
	r  Repo
	w  Wallets
}

func New(db *sql.DB, r Repo, w Wallets) Service { return &service{db: db, r: r, w: w} }

func (s *service) Create(ctx context.Context, actor model.Actor, req model.CreateRentalReq) (out *model.RentalDetail, err error) {
	if !authz.Can(actor, authz.Create, authz.Rental{}) {
		return nil, makeErr(ErrForbidden)
	}

	days := req.RentalDays
	if days <= 0 {
		days = DefaultRentalDays
	}
	due := time.Now().UTC().AddDate(0, 0, days)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The row lock taken here serializes concurrent rents of this book:
	// everything below happens against a stable snapshot.
	book, err := s.r.LockBookForRent(ctx, tx, req.BookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if !book.IsApproved || !book.OwnerApproved {
		return nil, makeErr(ErrNotForRental)
	}
	if book.AvailableQuantity <= 0 {
		return nil, makeErr(ErrNotAvailable)
	}

	dup, err := s.r.HasActiveRental(ctx, tx, actor.UserID, req.BookID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, makeErr(ErrDuplicateRental)
	}

	rentalID, err := s.r.InsertRental(ctx, tx, actor.UserID, req.BookID, book.OwnerID, book.RentalPrice, due)
	if err != nil {
		return nil, err
	}

	ok, err := s.r.DecrementAvailability(ctx, tx, req.BookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The guard refused even though the locked read saw stock.
		err = makeErr(ErrNotAvailable)
		return nil, err
	}

	if err = s.w.Credit(ctx, tx, book.OwnerID, book.RentalPrice); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return s.r.Detail(ctx, rentalID)
}

func (s *service) Return(ctx context.Context, actor model.Actor, rentalID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row, err := s.r.LockRentalForReturn(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrRentalNotFound)
		}
		return err
	}

	if !authz.Can(actor, authz.Return, authz.Rental{UserID: row.UserID, OwnerID: row.OwnerID}) {
		return makeErr(ErrForbidden)
	}
	if row.Status == model.RentalReturned {
		return makeErr(ErrAlreadyReturned)
	}

	if err = s.r.MarkReturned(ctx, tx, rentalID); err != nil {
		return err
	}

	ok, err := s.r.IncrementAvailability(ctx, tx, row.BookID)
	if err != nil {
		return err
	}
	if !ok {
		// Putting the copy back would push availability above
		// total_quantity: the counts have drifted. Roll back rather
		// than widen the damage.
		err = makeErr(ErrInconsistent)
		return err
	}

	return tx.Commit()
}

func (s *service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.r.MarkOverdue(ctx, time.Now().UTC())
}

func (s *service) Get(ctx context.Context, actor model.Actor, id int64) (*model.RentalDetail, error) {
	d, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if !authz.Can(actor, authz.Read, authz.Rental{UserID: d.UserID, OwnerID: d.OwnerID}) {
		return nil, makeErr(ErrForbidden)
	}
	return d, nil
}

// List scopes the query to the caller: users see their rentals, owners
// their lendings, admins everything (with optional user/owner filters).
func (s *service) List(ctx context.Context, actor model.Actor, f model.RentalFilter) ([]model.RentalDetail, *model.Pagination, error) {
	switch actor.Role {
	case model.RoleUser:
		f.UserID = actor.UserID
		f.OwnerID = 0
	case model.RoleOwner:
		f.OwnerID = actor.OwnerID
		f.UserID = 0
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}

	rows, total, err := s.r.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	pages := (total + int64(f.Limit) - 1) / int64(f.Limit)
	return rows, &model.Pagination{Page: f.Page, Limit: f.Limit, Total: total, Pages: pages}, nil
}

func (s *service) Stats(ctx context.Context, actor model.Actor) (*model.RentalStats, error) {
	scope := rentalrepo.StatsScope{}
	switch actor.Role {
	case model.RoleUser:
		scope.UserID = actor.UserID
	case model.RoleOwner:
		scope.OwnerID = actor.OwnerID
	}
	return s.r.StatsOverview(ctx, scope)
}
