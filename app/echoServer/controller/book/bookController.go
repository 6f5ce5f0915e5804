package book

import (
	"log/slog"
	"net/http"

	"bookmarket/app/echoServer/authx"
	"bookmarket/app/echoServer/controller/param"
	"bookmarket/model"
	bs "bookmarket/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.Create(c.Request().Context(), actor, req)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only approved owners can list books"})
		case bs.ErrCategoryNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown category"})
		default:
			h.Log.Error("book create", "err", err, "user_id", actor.UserID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "book listed", "book": out})
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	f := model.BookFilter{
		Page:       param.QueryInt(c, "page"),
		Limit:      param.QueryInt(c, "limit"),
		CategoryID: param.QueryInt64(c, "category_id"),
		OwnerID:    param.QueryInt64(c, "owner_id"),
		Author:     c.QueryParam("author"),
		Location:   c.QueryParam("location"),
		Search:     c.QueryParam("search"),
	}

	rows, p, err := h.Svc.List(c.Request().Context(), actor, f)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "pagination": p})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("book detail", "err", err, "book_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// PATCH /v1/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case bs.ErrCategoryNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown category"})
		case bs.ErrNothingToUpdate:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "nothing to update"})
		default:
			h.Log.Error("book update", "err", err, "book_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book updated", "book": out})
}

// DELETE /v1/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Delete(c.Request().Context(), actor, id); err != nil {
		switch bs.Code(err) {
		case bs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case bs.ErrHasActiveRentals:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book has active rentals"})
		default:
			h.Log.Error("book delete", "err", err, "book_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book removed"})
}
