package authsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bookmarket/model"
	ownerrepo "bookmarket/repository/owner"
	userrepo "bookmarket/repository/user"
	walletrepo "bookmarket/repository/wallet"
	"bookmarket/util/hash"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type mockUsers struct {
	userrepo.Repo
	createFn  func(ctx context.Context, tx *sql.Tx, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*userrepo.AccountRow, error)
}

func (m *mockUsers) Create(ctx context.Context, tx *sql.Tx, u *model.User) error {
	return m.createFn(ctx, tx, u)
}

func (m *mockUsers) ByEmail(ctx context.Context, email string) (*userrepo.AccountRow, error) {
	return m.byEmailFn(ctx, email)
}

type mockOwners struct {
	ownerrepo.Repo
	insertFn func(ctx context.Context, tx *sql.Tx, o *model.Owner) error
}

func (m *mockOwners) Insert(ctx context.Context, tx *sql.Tx, o *model.Owner) error {
	return m.insertFn(ctx, tx, o)
}

type mockWallets struct {
	walletrepo.Repo
	inserted []int64
}

func (m *mockWallets) Insert(ctx context.Context, tx *sql.Tx, ownerID int64) error {
	m.inserted = append(m.inserted, ownerID)
	return nil
}

func newDB(t *testing.T, commit bool) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
	return db
}

func parseToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestRegister_User(t *testing.T) {
	users := &mockUsers{
		createFn: func(_ context.Context, _ *sql.Tx, u *model.User) error {
			u.ID = 42
			u.IsActive = true
			u.CreatedAt = time.Now()
			return nil
		},
	}
	wallets := &mockWallets{}
	svc := New(newDB(t, true), users, &mockOwners{}, wallets, testSecret, 24)

	out, err := svc.Register(context.Background(), model.RegisterReq{
		Email:    "Reader@Example.com",
		Password: "secret1",
		Role:     "USER",
	})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", out.User.Email)
	assert.Nil(t, out.Owner)
	assert.Empty(t, wallets.inserted, "plain users get no wallet")

	claims := parseToken(t, out.Token)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "USER", claims["role"])
}

func TestRegister_OwnerGetsProfileAndWallet(t *testing.T) {
	users := &mockUsers{
		createFn: func(_ context.Context, _ *sql.Tx, u *model.User) error {
			u.ID = 7
			u.IsActive = true
			return nil
		},
	}
	owners := &mockOwners{
		insertFn: func(_ context.Context, _ *sql.Tx, o *model.Owner) error {
			o.ID = 11
			return nil
		},
	}
	wallets := &mockWallets{}
	svc := New(newDB(t, true), users, owners, wallets, testSecret, 24)

	out, err := svc.Register(context.Background(), model.RegisterReq{
		Email:     "lender@example.com",
		Password:  "secret1",
		Role:      "OWNER",
		FirstName: "Abebe",
		LastName:  "Kebede",
		Location:  "Addis Ababa",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Owner)
	assert.Equal(t, int64(11), out.Owner.ID)
	assert.Equal(t, int64(7), out.Owner.UserID)
	assert.False(t, out.Owner.IsApproved, "new owners start unapproved")
	assert.Equal(t, []int64{11}, wallets.inserted)
}

func TestRegister_EmailTaken(t *testing.T) {
	users := &mockUsers{
		createFn: func(context.Context, *sql.Tx, *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(newDB(t, false), users, &mockOwners{}, &mockWallets{}, testSecret, 24)

	_, err := svc.Register(context.Background(), model.RegisterReq{
		Email:    "taken@example.com",
		Password: "secret1",
		Role:     "USER",
	})
	assert.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_OwnerInsertFailureRollsBack(t *testing.T) {
	users := &mockUsers{
		createFn: func(_ context.Context, _ *sql.Tx, u *model.User) error {
			u.ID = 7
			return nil
		},
	}
	owners := &mockOwners{
		insertFn: func(context.Context, *sql.Tx, *model.Owner) error {
			return sql.ErrConnDone
		},
	}
	wallets := &mockWallets{}
	svc := New(newDB(t, false), users, owners, wallets, testSecret, 24)

	_, err := svc.Register(context.Background(), model.RegisterReq{
		Email:     "lender@example.com",
		Password:  "secret1",
		Role:      "OWNER",
		FirstName: "Abebe",
		LastName:  "Kebede",
	})
	assert.Error(t, err)
	assert.Empty(t, wallets.inserted)
}

func TestRegister_BadInput(t *testing.T) {
	svc := New(nil, &mockUsers{}, &mockOwners{}, &mockWallets{}, testSecret, 24)

	cases := map[string]model.RegisterReq{
		"short password": {Email: "a@b.c", Password: "123", Role: "USER"},
		"bad role":       {Email: "a@b.c", Password: "secret1", Role: "ADMIN"},
		"owner no name":  {Email: "a@b.c", Password: "secret1", Role: "OWNER"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), req)
			assert.Equal(t, ErrBadInput, Code(err))
		})
	}
}

func TestLogin_Success(t *testing.T) {
	hashed, err := hash.HashPassword("secret1")
	require.NoError(t, err)

	ownerID := int64(11)
	approved := true
	first := "Abebe"
	users := &mockUsers{
		byEmailFn: func(_ context.Context, email string) (*userrepo.AccountRow, error) {
			assert.Equal(t, "lender@example.com", email)
			return &userrepo.AccountRow{
				User: model.User{
					ID: 7, Email: email, PasswordHash: hashed,
					Role: model.RoleOwner, IsActive: true,
				},
				OwnerID:       &ownerID,
				OwnerApproved: &approved,
				FirstName:     &first,
			}, nil
		},
	}
	svc := New(nil, users, &mockOwners{}, &mockWallets{}, testSecret, 24)

	out, err := svc.Login(context.Background(), model.LoginReq{
		Email: "Lender@Example.com", Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Owner)
	assert.Equal(t, int64(11), out.Owner.ID)
	assert.True(t, out.Owner.IsApproved)
	assert.Equal(t, "OWNER", parseToken(t, out.Token)["role"].(string))
}

func TestLogin_RejectsWithoutLeaking(t *testing.T) {
	hashed, err := hash.HashPassword("secret1")
	require.NoError(t, err)

	cases := map[string]func(ctx context.Context, email string) (*userrepo.AccountRow, error){
		"unknown email": func(context.Context, string) (*userrepo.AccountRow, error) {
			return nil, sql.ErrNoRows
		},
		"wrong password": func(_ context.Context, email string) (*userrepo.AccountRow, error) {
			return &userrepo.AccountRow{User: model.User{
				ID: 1, Email: email, PasswordHash: hashed, Role: model.RoleUser, IsActive: true,
			}}, nil
		},
		"disabled account": func(_ context.Context, email string) (*userrepo.AccountRow, error) {
			return &userrepo.AccountRow{User: model.User{
				ID: 1, Email: email, PasswordHash: hashed, Role: model.RoleUser, IsActive: false,
			}}, nil
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			svc := New(nil, &mockUsers{byEmailFn: fn}, &mockOwners{}, &mockWallets{}, testSecret, 24)
			pw := "secret1"
			if name == "wrong password" {
				pw = "not-it"
			}
			_, err := svc.Login(context.Background(), model.LoginReq{Email: "x@y.z", Password: pw})
			assert.Equal(t, ErrInvalidCreds, Code(err))
		})
	}
}
