package rental

import (
	"log/slog"
	"net/http"

	"bookmarket/app/echoServer/authx"
	"bookmarket/app/echoServer/controller/param"
	"bookmarket/model"
	rs "bookmarket/service/rental"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/rentals
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateRentalReq
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
		switch rs.Code(err) {
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case rs.ErrNotForRental:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book not available for rental"})
		case rs.ErrNotAvailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not available"})
		case rs.ErrDuplicateRental:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already have an active rental for this book"})
		case rs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("rental create", "err", err, "user_id", actor.UserID, "book_id", req.BookID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Book rented successfully",
		"rental":  out,
	})
}

// POST /v1/rentals/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Return(c.Request().Context(), actor, id); err != nil {
		switch rs.Code(err) {
		case rs.ErrRentalNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case rs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case rs.ErrAlreadyReturned:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rental already returned"})
		default:
			h.Log.Error("rental return", "err", err, "rental_id", id, "user_id", actor.UserID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book returned successfully"})
}

// GET /v1/rentals
func (h *Controller) List(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	f := model.RentalFilter{
		Page:    param.QueryInt(c, "page"),
		Limit:   param.QueryInt(c, "limit"),
		Status:  c.QueryParam("status"),
		Search:  c.QueryParam("search"),
		BookID:  param.QueryInt64(c, "book_id"),
		UserID:  param.QueryInt64(c, "user_id"),
		OwnerID: param.QueryInt64(c, "owner_id"),
	}

	rows, p, err := h.Svc.List(c.Request().Context(), actor, f)
	if err != nil {
		h.Log.Error("rental list", "err", err, "user_id", actor.UserID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "pagination": p})
}

// GET /v1/rentals/:id
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
		switch rs.Code(err) {
		case rs.ErrRentalNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case rs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("rental detail", "err", err, "rental_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// GET /v1/rentals/stats/overview
func (h *Controller) Stats(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	st, err := h.Svc.Stats(c.Request().Context(), actor)
	if err != nil {
		h.Log.Error("rental stats", "err", err, "user_id", actor.UserID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}

// SweepOverdue flips every past-due ACTIVE rental to OVERDUE.
// PATCH /v1/rentals/update-overdue
func (h *Controller) SweepOverdue(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if actor.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	n, err := h.Svc.SweepOverdue(c.Request().Context())
	if err != nil {
		h.Log.Error("overdue sweep", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated_count": n})
}
