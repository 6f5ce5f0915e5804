package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"bookmarket/model"
	ownerrepo "bookmarket/repository/owner"
	userrepo "bookmarket/repository/user"
	walletrepo "bookmarket/repository/wallet"
	"bookmarket/util/hash"
	jwtutil "bookmarket/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrEmailTaken   ErrCode = "EMAIL_TAKEN"
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrBadInput     ErrCode = "BAD_INPUT"
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

// Registered is what a successful registration returns: the account, the
// owner profile when one was created, and a ready-to-use token.
type Registered struct {
	User  *model.User
	Owner *model.Owner
	Token string
}

type LoggedIn struct {
	User  *model.User
	Owner *model.Owner
	Token string
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*Registered, error)
	Login(ctx context.Context, req model.LoginReq) (*LoggedIn, error)
}

type service struct {
	db       *sql.DB
	users    userrepo.Repo
	owners   ownerrepo.Repo
	wallets  walletrepo.Repo
	secret   string
	ttlHours int
}

func New(db *sql.DB, users userrepo.Repo, owners ownerrepo.Repo, wallets walletrepo.Repo, secret string, ttlHours int) Service {
	return &service{db: db, users: users, owners: owners, wallets: wallets, secret: secret, ttlHours: ttlHours}
}

// Register creates the account and, for owners, the profile plus a zero
// wallet in one transaction so a half-registered owner cannot exist.
func (s *service) Register(ctx context.Context, req model.RegisterReq) (out *Registered, err error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 6 {
		return nil, makeErr(ErrBadInput)
	}
	role := model.Role(req.Role)
	if role != model.RoleUser && role != model.RoleOwner {
		return nil, makeErr(ErrBadInput)
	}
	if role == model.RoleOwner && (req.FirstName == "" || req.LastName == "") {
		return nil, makeErr(ErrBadInput)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	u := &model.User{Email: email, PasswordHash: hashed, Role: role}
	if err = s.users.Create(ctx, tx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}

	var owner *model.Owner
	if role == model.RoleOwner {
		owner = &model.Owner{
			UserID:    u.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     optional(req.Phone),
			Address:   optional(req.Address),
			Location:  optional(req.Location),
		}
		if err = s.owners.Insert(ctx, tx, owner); err != nil {
			return nil, err
		}
		if err = s.wallets.Insert(ctx, tx, owner.ID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), s.ttlHours)
	if err != nil {
		return nil, err
	}
	return &Registered{User: u, Owner: owner, Token: token}, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*LoggedIn, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, makeErr(ErrBadInput)
	}

	acc, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrInvalidCreds)
		}
		return nil, err
	}
	// Disabled accounts get the same answer as unknown ones.
	if !acc.User.IsActive || !hash.Check(acc.User.PasswordHash, req.Password) {
		return nil, makeErr(ErrInvalidCreds)
	}

	token, err := jwtutil.Issue(s.secret, acc.User.ID, string(acc.User.Role), s.ttlHours)
	if err != nil {
		return nil, err
	}

	out := &LoggedIn{User: &acc.User, Token: token}
	if acc.OwnerID != nil {
		out.Owner = &model.Owner{
			ID:         *acc.OwnerID,
			UserID:     acc.User.ID,
			IsApproved: acc.OwnerApproved != nil && *acc.OwnerApproved,
		}
		if acc.FirstName != nil {
			out.Owner.FirstName = *acc.FirstName
		}
		if acc.LastName != nil {
			out.Owner.LastName = *acc.LastName
		}
		out.Owner.Location = acc.Location
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
