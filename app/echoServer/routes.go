package echoServer

import (
	"log/slog"

	"bookmarket/app/echoServer/controller/admin"
	"bookmarket/app/echoServer/controller/auth"
	"bookmarket/app/echoServer/controller/book"
	"bookmarket/app/echoServer/controller/category"
	"bookmarket/app/echoServer/controller/owner"
	"bookmarket/app/echoServer/controller/rental"
	"bookmarket/app/echoServer/controller/wallet"
	userrepo "bookmarket/repository/user"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth     *auth.Controller
	Book     *book.Controller
	Category *category.Controller
	Owner    *owner.Controller
	Rental   *rental.Controller
	Wallet   *wallet.Controller
	Admin    *admin.Controller

	Users     userrepo.Repo
	JWTSecret string
	Log       *slog.Logger
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Authenticated
	api := e.Group("/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	api.Use(LoadActor(c.Users, c.Log))

	// Books
	api.GET("/books", c.Book.List)
	api.GET("/books/:id", c.Book.Detail)
	api.POST("/books", c.Book.Create)
	api.PATCH("/books/:id", c.Book.Update)
	api.DELETE("/books/:id", c.Book.Delete)

	// Categories
	api.GET("/categories", c.Category.List)
	api.GET("/categories/:id", c.Category.Detail)
	api.GET("/categories/:id/books", c.Category.Books)
	api.GET("/categories/:id/stats", c.Category.Stats)

	// Owners
	api.GET("/owners", c.Owner.List)
	api.GET("/owners/:id", c.Owner.Detail)
	api.PATCH("/owners/:id", c.Owner.Update)
	api.GET("/owners/:id/stats", c.Owner.Stats)
	api.PATCH("/owners/:id/disable", c.Owner.Disable)
	api.PATCH("/owners/:id/enable", c.Owner.Enable)
	api.POST("/owners/:id/reconcile", c.Owner.Reconcile)
	api.GET("/owners/:id/wallet", c.Wallet.ByOwner)

	// Wallet
	api.GET("/wallets/me", c.Wallet.Mine)

	// Rentals
	api.POST("/rentals", c.Rental.Create)
	api.GET("/rentals", c.Rental.List)
	api.GET("/rentals/stats/overview", c.Rental.Stats)
	api.GET("/rentals/:id", c.Rental.Detail)
	api.POST("/rentals/:id/return", c.Rental.Return)
	api.PATCH("/rentals/update-overdue", c.Rental.SweepOverdue)

	// Admin dashboards
	api.GET("/admin/stats", c.Admin.Stats)
	api.GET("/admin/dashboard", c.Admin.Dashboard)
}
