package admin

import (
	"log/slog"
	"net/http"

	"bookmarket/app/echoServer/authx"
	ss "bookmarket/service/stats"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ss.Service
	Log *slog.Logger
}

// GET /v1/admin/stats
func (h *Controller) Stats(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	st, err := h.Svc.Platform(c.Request().Context(), actor)
	if err != nil {
		if ss.Code(err) == ss.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("platform stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": st})
}

// GET /v1/admin/dashboard
func (h *Controller) Dashboard(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	d, err := h.Svc.Dashboard(c.Request().Context(), actor)
	if err != nil {
		if ss.Code(err) == ss.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("dashboard", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": d})
}
