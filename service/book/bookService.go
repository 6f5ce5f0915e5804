package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"bookmarket/authz"
	"bookmarket/model"
	bookrepo "bookmarket/repository/book"
	categoryrepo "bookmarket/repository/category"
)

type ErrCode string

const (
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrCategoryNotFound ErrCode = "CATEGORY_NOT_FOUND"
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrHasActiveRentals ErrCode = "HAS_ACTIVE_RENTALS"
	ErrNothingToUpdate  ErrCode = "NOTHING_TO_UPDATE"
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
	Create(ctx context.Context, actor model.Actor, req model.CreateBookReq) (*model.BookDetail, error)
	Get(ctx context.Context, actor model.Actor, id int64) (*model.BookDetail, error)
	List(ctx context.Context, actor model.Actor, f model.BookFilter) ([]model.BookDetail, *model.Pagination, error)
	Update(ctx context.Context, actor model.Actor, id int64, req model.UpdateBookReq) (*model.BookDetail, error)
	Delete(ctx context.Context, actor model.Actor, id int64) error
}

type service struct {
	books      bookrepo.Repo
	categories categoryrepo.Repo
}

func New(books bookrepo.Repo, categories categoryrepo.Repo) Service {
	return &service{books: books, categories: categories}
}

// Create lists a new book under the calling owner. Only approved owners may
// list; admins create on behalf of nobody, so the call needs an owner actor.
func (s *service) Create(ctx context.Context, actor model.Actor, req model.CreateBookReq) (*model.BookDetail, error) {
	if actor.Role != model.RoleOwner || !authz.Can(actor, authz.Create, authz.Book{}) {
		return nil, makeErr(ErrForbidden)
	}

	ok, err := s.categories.Exists(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrCategoryNotFound)
	}

	qty := req.TotalQuantity
	if qty <= 0 {
		qty = 1
	}
	b := &model.Book{
		OwnerID:       actor.OwnerID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Description:   req.Description,
		RentalPrice:   req.RentalPrice,
		TotalQuantity: qty,
		ImageURL:      req.ImageURL,
	}
	if err := s.books.Insert(ctx, b); err != nil {
		return nil, err
	}
	return s.books.Detail(ctx, b.ID)
}

func (s *service) Get(ctx context.Context, actor model.Actor, id int64) (*model.BookDetail, error) {
	d, err := s.books.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	res := authz.Book{OwnerID: d.OwnerID, Approved: d.IsApproved, OwnerApproved: d.OwnerApproved}
	if !authz.Can(actor, authz.Read, res) {
		// Unlisted books look absent to readers without access.
		return nil, makeErr(ErrBookNotFound)
	}
	return d, nil
}

// List scopes by role: users browse the approved catalog, owners see their
// own shelf (approved or not), admins see everything.
func (s *service) List(ctx context.Context, actor model.Actor, f model.BookFilter) ([]model.BookDetail, *model.Pagination, error) {
	switch actor.Role {
	case model.RoleUser:
		f.ApprovedOnly = true
	case model.RoleOwner:
		f.OwnerID = actor.OwnerID
		f.ApprovedOnly = false
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}

	rows, total, err := s.books.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	pages := (total + int64(f.Limit) - 1) / int64(f.Limit)
	return rows, &model.Pagination{Page: f.Page, Limit: f.Limit, Total: total, Pages: pages}, nil
}

func (s *service) Update(ctx context.Context, actor model.Actor, id int64, req model.UpdateBookReq) (*model.BookDetail, error) {
	d, err := s.books.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	action := authz.Update
	if req.IsApproved != nil {
		action = authz.Approve
	}
	res := authz.Book{OwnerID: d.OwnerID, Approved: d.IsApproved, OwnerApproved: d.OwnerApproved}
	if !authz.Can(actor, action, res) {
		return nil, makeErr(ErrForbidden)
	}

	if req.CategoryID != nil {
		ok, err := s.categories.Exists(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, makeErr(ErrCategoryNotFound)
		}
	}

	admin := actor.Role == model.RoleAdmin
	if err := s.books.Update(ctx, id, req, actor.UserID, admin); err != nil {
		switch {
		case errors.Is(err, bookrepo.ErrNoFields):
			return nil, makeErr(ErrNothingToUpdate)
		case errors.Is(err, sql.ErrNoRows):
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	return s.books.Detail(ctx, id)
}

// Delete refuses while copies are out on loan; the rental history would
// dangle otherwise.
func (s *service) Delete(ctx context.Context, actor model.Actor, id int64) error {
	d, err := s.books.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookNotFound)
		}
		return err
	}
	res := authz.Book{OwnerID: d.OwnerID, Approved: d.IsApproved, OwnerApproved: d.OwnerApproved}
	if !authz.Can(actor, authz.Delete, res) {
		return makeErr(ErrForbidden)
	}

	active, err := s.books.CountActiveRentals(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return makeErr(ErrHasActiveRentals)
	}

	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookNotFound)
		}
		return err
	}
	return nil
}
