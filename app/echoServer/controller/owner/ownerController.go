package owner

import (
	"log/slog"
	"net/http"

	"bookmarket/app/echoServer/authx"
	"bookmarket/app/echoServer/controller/param"
	"bookmarket/model"
	ownerrepo "bookmarket/repository/owner"
	osvc "bookmarket/service/owner"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc osvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) status(err error, op string, kv ...any) (int, string) {
	switch osvc.Code(err) {
	case osvc.ErrOwnerNotFound:
		return http.StatusNotFound, "owner not found"
	case osvc.ErrForbidden:
		return http.StatusForbidden, "forbidden"
	case osvc.ErrNothingToUpdate:
		return http.StatusBadRequest, "nothing to update"
	default:
		h.Log.Error(op, append([]any{"err", err}, kv...)...)
		return http.StatusInternalServerError, "internal error"
	}
}

// GET /v1/owners
func (h *Controller) List(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	f := ownerrepo.Filter{
		Page:     param.QueryInt(c, "page"),
		Limit:    param.QueryInt(c, "limit"),
		Location: c.QueryParam("location"),
		Approved: param.QueryBool(c, "approved"),
		Search:   c.QueryParam("search"),
	}

	rows, p, err := h.Svc.List(c.Request().Context(), actor, f)
	if err != nil {
		code, msg := h.status(err, "owner list")
		return c.JSON(code, echo.Map{"message": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "pagination": p})
}

// GET /v1/owners/:id
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
		code, msg := h.status(err, "owner detail", "owner_id", id)
		return c.JSON(code, echo.Map{"message": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// PATCH /v1/owners/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.UpdateOwnerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		code, msg := h.status(err, "owner update", "owner_id", id)
		return c.JSON(code, echo.Map{"message": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "owner updated", "owner": out})
}

// GET /v1/owners/:id/stats
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
		code, msg := h.status(err, "owner stats", "owner_id", id)
		return c.JSON(code, echo.Map{"message": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}

// PATCH /v1/owners/:id/disable
func (h *Controller) Disable(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Disable(c.Request().Context(), actor, id); err != nil {
		code, msg := h.status(err, "owner disable", "owner_id", id)
		return c.JSON(code, echo.Map{"message": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "owner disabled"})
}

// PATCH /v1/owners/:id/enable
func (h *Controller) Enable(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Enable(c.Request().Context(), actor, id); err != nil {
		code, msg := h.status(err, "owner enable", "owner_id", id)
		return c.JSON(code, echo.Map{"message": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "owner enabled"})
}

// POST /v1/owners/:id/reconcile
func (h *Controller) Reconcile(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	n, err := h.Svc.Reconcile(c.Request().Context(), actor, id)
	if err != nil {
		code, msg := h.status(err, "owner reconcile", "owner_id", id)
		return c.JSON(code, echo.Map{"message": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "availability reconciled", "books_updated": n})
}
