package wallet

import (
	"log/slog"
	"net/http"

	"bookmarket/app/echoServer/authx"
	"bookmarket/app/echoServer/controller/param"
	ws "bookmarket/service/wallet"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ws.Service
	Log *slog.Logger
}

// GET /v1/wallets/me
func (h *Controller) Mine(c echo.Context) error {
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	w, err := h.Svc.Mine(c.Request().Context(), actor)
	if err != nil {
		switch ws.Code(err) {
		case ws.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case ws.ErrWalletNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "wallet not found"})
		default:
			h.Log.Error("wallet mine", "err", err, "user_id", actor.UserID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": w})
}

// GET /v1/owners/:id/wallet
func (h *Controller) ByOwner(c echo.Context) error {
	id, ok := param.ID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	actor, err := authx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	w, err := h.Svc.ByOwner(c.Request().Context(), actor, id)
	if err != nil {
		switch ws.Code(err) {
		case ws.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case ws.ErrWalletNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "wallet not found"})
		default:
			h.Log.Error("wallet by owner", "err", err, "owner_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": w})
}
