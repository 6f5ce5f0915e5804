// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"net/http"
	"time"

	"bookmarket/app/echoServer/authx"
	"bookmarket/model"
	userrepo "bookmarket/repository/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// LoadActor turns the validated JWT into a model.Actor backed by the
// database: role and owner linkage come from the current user row, not the
// token, so deactivation and approval flips take effect immediately.
func LoadActor(users userrepo.Repo, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := c.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			acc, err := users.ByID(c.Request().Context(), int64(sub))
			if err != nil {
				rid := c.Response().Header().Get(echo.HeaderXRequestID)
				log.Warn("actor lookup failed", "user_id", int64(sub), "req_id", rid, "err", err)
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			if !acc.User.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "account disabled"})
			}

			actor := model.Actor{UserID: acc.User.ID, Role: acc.User.Role}
			if acc.OwnerID != nil {
				actor.OwnerID = *acc.OwnerID
			}
			if acc.OwnerApproved != nil {
				actor.OwnerApproved = *acc.OwnerApproved
			}
			authx.SetActor(c, actor)
			return next(c)
		}
	}
}
