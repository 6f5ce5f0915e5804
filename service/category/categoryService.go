package categorysvc

import (
	"context"
	"database/sql"
	"errors"

	"bookmarket/authz"
	"bookmarket/model"
	categoryrepo "bookmarket/repository/category"
)

type ErrCode string

const (
	ErrCategoryNotFound ErrCode = "CATEGORY_NOT_FOUND"
	ErrForbidden        ErrCode = "FORBIDDEN"
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
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)

	// Stats is an admin dashboard aggregate.
	Stats(ctx context.Context, actor model.Actor, id int64) (*model.CategoryStats, error)
}

type service struct {
	categories categoryrepo.Repo
}

func New(categories categoryrepo.Repo) Service { return &service{categories: categories} }

func (s *service) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.categories.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrCategoryNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Stats(ctx context.Context, actor model.Actor, id int64) (*model.CategoryStats, error) {
	if !authz.Can(actor, authz.Read, authz.Platform{}) {
		return nil, makeErr(ErrForbidden)
	}
	st, err := s.categories.Stats(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrCategoryNotFound)
		}
		return nil, err
	}
	return st, nil
}
