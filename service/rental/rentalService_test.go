package rentalsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bookmarket/model"
	rentalrepo "bookmarket/repository/rental"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	lockBookFn    func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error)
	hasActiveFn   func(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	insertFn      func(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error)
	decrementFn   func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	lockRentalFn  func(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error)
	markRetFn     func(ctx context.Context, tx *sql.Tx, rentalID int64) error
	incrementFn   func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	markOverdueFn func(ctx context.Context, now time.Time) (int64, error)
	detailFn      func(ctx context.Context, id int64) (*model.RentalDetail, error)
	listFn        func(ctx context.Context, f model.RentalFilter) ([]model.RentalDetail, int64, error)
	statsFn       func(ctx context.Context, scope rentalrepo.StatsScope) (*model.RentalStats, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) LockBookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) {
	return m.lockBookFn(ctx, tx, bookID)
}
func (m *mockRepo) HasActiveRental(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	return m.hasActiveFn(ctx, tx, userID, bookID)
}
func (m *mockRepo) InsertRental(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error) {
	return m.insertFn(ctx, tx, userID, bookID, ownerID, price, due)
}
func (m *mockRepo) DecrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	return m.decrementFn(ctx, tx, bookID)
}
func (m *mockRepo) LockRentalForReturn(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error) {
	return m.lockRentalFn(ctx, tx, rentalID)
}
func (m *mockRepo) MarkReturned(ctx context.Context, tx *sql.Tx, rentalID int64) error {
	return m.markRetFn(ctx, tx, rentalID)
}
func (m *mockRepo) IncrementAvailability(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	return m.incrementFn(ctx, tx, bookID)
}
func (m *mockRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	return m.markOverdueFn(ctx, now)
}
func (m *mockRepo) Detail(ctx context.Context, id int64) (*model.RentalDetail, error) {
	return m.detailFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context, f model.RentalFilter) ([]model.RentalDetail, int64, error) {
	return m.listFn(ctx, f)
}
func (m *mockRepo) StatsOverview(ctx context.Context, scope rentalrepo.StatsScope) (*model.RentalStats, error) {
	return m.statsFn(ctx, scope)
}

type mockWallets struct {
	creditFn func(ctx context.Context, tx *sql.Tx, ownerID int64, amount float64) error
	credits  int
}

func (m *mockWallets) Credit(ctx context.Context, tx *sql.Tx, ownerID int64, amount float64) error {
	m.credits++
	if m.creditFn == nil {
		return nil
	}
	return m.creditFn(ctx, tx, ownerID, amount)
}

var (
	borrower = model.Actor{UserID: 10, Role: model.RoleUser}
	lender   = model.Actor{UserID: 20, Role: model.RoleOwner, OwnerID: 5, OwnerApproved: true}
	admin    = model.Actor{UserID: 1, Role: model.RoleAdmin}
)

func approvedBook() *rentalrepo.BookForRent {
	return &rentalrepo.BookForRent{
		ID: 3, OwnerID: 5, RentalPrice: 10.00,
		AvailableQuantity: 1, TotalQuantity: 2,
		IsApproved: true, OwnerApproved: true,
	}
}

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreate_Success(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var insertedDue time.Time
	r := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) {
			require.Equal(t, int64(3), bookID)
			return approvedBook(), nil
		},
		hasActiveFn: func(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
			require.Equal(t, int64(10), userID)
			return false, nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error) {
			require.Equal(t, int64(5), ownerID)
			require.Equal(t, 10.00, price)
			insertedDue = due
			return 42, nil
		},
		decrementFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) { return true, nil },
		detailFn: func(ctx context.Context, id int64) (*model.RentalDetail, error) {
			require.Equal(t, int64(42), id)
			return &model.RentalDetail{Rental: model.Rental{ID: 42, Status: model.RentalActive}}, nil
		},
	}
	w := &mockWallets{creditFn: func(ctx context.Context, tx *sql.Tx, ownerID int64, amount float64) error {
		require.Equal(t, int64(5), ownerID)
		require.Equal(t, 10.00, amount)
		return nil
	}}

	svc := New(db, r, w)
	out, err := svc.Create(context.Background(), borrower, model.CreateRentalReq{BookID: 3, RentalDays: 14})
	require.NoError(t, err)
	require.Equal(t, int64(42), out.ID)
	require.Equal(t, model.RentalActive, out.Status)
	require.Equal(t, 1, w.credits)
	require.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 14), insertedDue, time.Minute)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DefaultsToSevenDays(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var insertedDue time.Time
	r := &mockRepo{
		lockBookFn:  func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) { return approvedBook(), nil },
		hasActiveFn: func(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) { return false, nil },
		insertFn: func(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error) {
			insertedDue = due
			return 1, nil
		},
		decrementFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) { return true, nil },
		detailFn: func(ctx context.Context, id int64) (*model.RentalDetail, error) {
			return &model.RentalDetail{}, nil
		},
	}

	svc := New(db, r, &mockWallets{})
	_, err := svc.Create(context.Background(), borrower, model.CreateRentalReq{BookID: 3})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC().AddDate(0, 0, DefaultRentalDays), insertedDue, time.Minute)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BookNotFound(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	r := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(db, r, &mockWallets{})
	_, err := svc.Create(context.Background(), borrower, model.CreateRentalReq{BookID: 99})
	require.Equal(t, ErrBookNotFound, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UnapprovedBookOrOwner(t *testing.T) {
	for name, book := range map[string]*rentalrepo.BookForRent{
		"book pending":  {ID: 3, IsApproved: false, OwnerApproved: true, AvailableQuantity: 1},
		"owner pending": {ID: 3, IsApproved: true, OwnerApproved: false, AvailableQuantity: 1},
	} {
		t.Run(name, func(t *testing.T) {
			db, mock := newDB(t)
			mock.ExpectBegin()
			mock.ExpectRollback()

			b := book
			r := &mockRepo{
				lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) {
					return b, nil
				},
			}
			svc := New(db, r, &mockWallets{})
			_, err := svc.Create(context.Background(), borrower, model.CreateRentalReq{BookID: 3})
			require.Equal(t, ErrNotForRental, Code(err))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_NoStock(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	b := approvedBook()
	b.AvailableQuantity = 0
	r := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) {
			return b, nil
		},
	}
	svc := New(db, r, &mockWallets{})
	_, err := svc.Create(context.Background(), borrower, model.CreateRentalReq{BookID: 3})
	require.Equal(t, ErrNotAvailable, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateActiveRental(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	r := &mockRepo{
		lockBookFn:  func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) { return approvedBook(), nil },
		hasActiveFn: func(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) { return true, nil },
	}
	w := &mockWallets{}
	svc := New(db, r, w)
	_, err := svc.Create(context.Background(), borrower, model.CreateRentalReq{BookID: 3})
	require.Equal(t, ErrDuplicateRental, Code(err))
	require.Zero(t, w.credits, "failed rent must not credit the wallet")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_GuardedDecrementRollsBack(t *testing.T) {
	// The locked read saw stock but the guarded UPDATE matched no row:
	// the whole transaction must roll back, wallet untouched.
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	r := &mockRepo{
		lockBookFn:  func(ctx context.Context, tx *sql.Tx, bookID int64) (*rentalrepo.BookForRent, error) { return approvedBook(), nil },
		hasActiveFn: func(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) { return false, nil },
		insertFn: func(ctx context.Context, tx *sql.Tx, userID, bookID, ownerID int64, price float64, due time.Time) (int64, error) {
			return 42, nil
		},
		decrementFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) { return false, nil },
	}
	w := &mockWallets{}
	svc := New(db, r, w)
	_, err := svc.Create(context.Background(), borrower, model.CreateRentalReq{BookID: 3})
	require.Equal(t, ErrNotAvailable, Code(err))
	require.Zero(t, w.credits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_OnlyUsersCanRent(t *testing.T) {
	db, _ := newDB(t)
	svc := New(db, &mockRepo{}, &mockWallets{})
	_, err := svc.Create(context.Background(), lender, model.CreateRentalReq{BookID: 3})
	require.Equal(t, ErrForbidden, Code(err))
}

func returnRow(status model.RentalStatus) *rentalrepo.RentalForReturn {
	return &rentalrepo.RentalForReturn{ID: 42, UserID: 10, OwnerID: 5, BookID: 3, Status: status}
}

func TestReturn_Success(t *testing.T) {
	for name, tc := range map[string]struct {
		actor  model.Actor
		status model.RentalStatus
	}{
		"borrower returns active":  {borrower, model.RentalActive},
		"borrower returns overdue": {borrower, model.RentalOverdue},
		"lender accepts return":    {lender, model.RentalActive},
		"admin closes rental":      {admin, model.RentalActive},
	} {
		t.Run(name, func(t *testing.T) {
			db, mock := newDB(t)
			mock.ExpectBegin()
			mock.ExpectCommit()

			status := tc.status
			marked := false
			r := &mockRepo{
				lockRentalFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error) {
					return returnRow(status), nil
				},
				markRetFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) error {
					marked = true
					return nil
				},
				incrementFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
					require.Equal(t, int64(3), bookID)
					return true, nil
				},
			}
			w := &mockWallets{}
			svc := New(db, r, w)
			require.NoError(t, svc.Return(context.Background(), tc.actor, 42))
			require.True(t, marked)
			require.Zero(t, w.credits, "returns never touch the wallet")
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReturn_NotFound(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	r := &mockRepo{
		lockRentalFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(db, r, &mockWallets{})
	err := svc.Return(context.Background(), borrower, 42)
	require.Equal(t, ErrRentalNotFound, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturn_WrongActor(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	stranger := model.Actor{UserID: 777, Role: model.RoleUser}
	r := &mockRepo{
		lockRentalFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error) {
			return returnRow(model.RentalActive), nil
		},
	}
	svc := New(db, r, &mockWallets{})
	err := svc.Return(context.Background(), stranger, 42)
	require.Equal(t, ErrForbidden, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturn_AlreadyReturned(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	r := &mockRepo{
		lockRentalFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error) {
			return returnRow(model.RentalReturned), nil
		},
	}
	svc := New(db, r, &mockWallets{})
	err := svc.Return(context.Background(), borrower, 42)
	require.Equal(t, ErrAlreadyReturned, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturn_AvailabilityCapIsInternalFault(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	r := &mockRepo{
		lockRentalFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*rentalrepo.RentalForReturn, error) {
			return returnRow(model.RentalActive), nil
		},
		markRetFn:   func(ctx context.Context, tx *sql.Tx, rentalID int64) error { return nil },
		incrementFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) { return false, nil },
	}
	svc := New(db, r, &mockWallets{})
	err := svc.Return(context.Background(), borrower, 42)
	require.Equal(t, ErrInconsistent, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepOverdue_Idempotent(t *testing.T) {
	db, _ := newDB(t)
	calls := 0
	r := &mockRepo{
		markOverdueFn: func(ctx context.Context, now time.Time) (int64, error) {
			calls++
			if calls == 1 {
				return 3, nil
			}
			return 0, nil
		},
	}
	svc := New(db, r, &mockWallets{})

	n, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	n, err = svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.Zero(t, n, "second sweep finds nothing left to flip")
}

func TestList_ScopedByRole(t *testing.T) {
	db, _ := newDB(t)
	var got model.RentalFilter
	r := &mockRepo{
		listFn: func(ctx context.Context, f model.RentalFilter) ([]model.RentalDetail, int64, error) {
			got = f
			return []model.RentalDetail{{}}, 21, nil
		},
	}
	svc := New(db, r, &mockWallets{})

	// A user asking for someone else's rentals still only gets their own.
	_, p, err := svc.List(context.Background(), borrower, model.RentalFilter{UserID: 999, OwnerID: 4})
	require.NoError(t, err)
	require.Equal(t, int64(10), got.UserID)
	require.Zero(t, got.OwnerID)
	require.Equal(t, int64(21), p.Total)
	require.Equal(t, int64(3), p.Pages)

	_, _, err = svc.List(context.Background(), lender, model.RentalFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(5), got.OwnerID)
	require.Zero(t, got.UserID)

	_, _, err = svc.List(context.Background(), admin, model.RentalFilter{UserID: 999})
	require.NoError(t, err)
	require.Equal(t, int64(999), got.UserID)
}

func TestGet_Authz(t *testing.T) {
	db, _ := newDB(t)
	r := &mockRepo{
		detailFn: func(ctx context.Context, id int64) (*model.RentalDetail, error) {
			return &model.RentalDetail{Rental: model.Rental{ID: id, UserID: 10, OwnerID: 5}}, nil
		},
	}
	svc := New(db, r, &mockWallets{})

	_, err := svc.Get(context.Background(), borrower, 42)
	require.NoError(t, err)

	stranger := model.Actor{UserID: 777, Role: model.RoleUser}
	_, err = svc.Get(context.Background(), stranger, 42)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestStats_Scope(t *testing.T) {
	db, _ := newDB(t)
	var got rentalrepo.StatsScope
	r := &mockRepo{
		statsFn: func(ctx context.Context, scope rentalrepo.StatsScope) (*model.RentalStats, error) {
			got = scope
			return &model.RentalStats{}, nil
		},
	}
	svc := New(db, r, &mockWallets{})

	_, err := svc.Stats(context.Background(), borrower)
	require.NoError(t, err)
	require.Equal(t, rentalrepo.StatsScope{UserID: 10}, got)

	_, err = svc.Stats(context.Background(), lender)
	require.NoError(t, err)
	require.Equal(t, rentalrepo.StatsScope{OwnerID: 5}, got)

	_, err = svc.Stats(context.Background(), admin)
	require.NoError(t, err)
	require.Equal(t, rentalrepo.StatsScope{}, got)
}
