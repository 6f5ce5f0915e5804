package walletsvc

import (
	"context"
	"database/sql"
	"errors"

	"bookmarket/authz"
	"bookmarket/model"
	walletrepo "bookmarket/repository/wallet"
)

type ErrCode string

const (
	ErrWalletNotFound ErrCode = "WALLET_NOT_FOUND"
	ErrForbidden      ErrCode = "FORBIDDEN"
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
	// Mine returns the calling owner's wallet.
	Mine(ctx context.Context, actor model.Actor) (*model.Wallet, error)

	// ByOwner is the admin view of any owner's wallet.
	ByOwner(ctx context.Context, actor model.Actor, ownerID int64) (*model.Wallet, error)
}

type service struct {
	wallets walletrepo.Repo
}

func New(wallets walletrepo.Repo) Service { return &service{wallets: wallets} }

func (s *service) Mine(ctx context.Context, actor model.Actor) (*model.Wallet, error) {
	return s.ByOwner(ctx, actor, actor.OwnerID)
}

func (s *service) ByOwner(ctx context.Context, actor model.Actor, ownerID int64) (*model.Wallet, error) {
	if !authz.Can(actor, authz.Read, authz.Wallet{OwnerID: ownerID}) {
		return nil, makeErr(ErrForbidden)
	}
	w, err := s.wallets.ByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrWalletNotFound)
		}
		return nil, err
	}
	return w, nil
}
