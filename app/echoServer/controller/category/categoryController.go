package category

import (
	"log/slog"
	"net/http"

	"bookmarket/app/echoServer/authx"
	"bookmarket/app/echoServer/controller/param"
	"bookmarket/model"
	bs "bookmarket/service/book"
	cs "bookmarket/service/category"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc  cs.Service
	Book bs.Service
	Log  *slog.Logger
}

// GET /v1/categories
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("category list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/categories/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		switch cs.Code(err) {
		case cs.ErrCategoryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
		default:
			h.Log.Error("category detail", "err", err, "category_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// Books lists a category's shelf through the book service, so the caller
// gets the same role scoping as the main catalog.
// GET /v1/categories/:id/books
func (h *Controller) Books(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if _, err := h.Svc.Get(c.Request().Context(), id); err != nil {
		switch cs.Code(err) {
		case cs.ErrCategoryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
		default:
			h.Log.Error("category books", "err", err, "category_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	f := model.BookFilter{
		Page:       param.QueryInt(c, "page"),
		Limit:      param.QueryInt(c, "limit"),
		CategoryID: id,
		Search:     c.QueryParam("search"),
	}
	rows, p, err := h.Book.List(c.Request().Context(), actor, f)
	if err != nil {
		h.Log.Error("category books", "err", err, "category_id", id)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "pagination": p})
}

// GET /v1/categories/:id/stats
func (h *Controller) Stats(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	st, err := h.Svc.Stats(c.Request().Context(), actor, id)
	if err != nil {
		switch cs.Code(err) {
		case cs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case cs.ErrCategoryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
		default:
			h.Log.Error("category stats", "err", err, "category_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}
