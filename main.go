// Package main book rental marketplace API.
//
// @title           Book Rental Marketplace API
// @version         1.0
// @description     Peer-to-peer book rental platform: owners list books, users rent them, the platform keeps inventory and wallets consistent.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"bookmarket/app/echoServer"
	adminctrl "bookmarket/app/echoServer/controller/admin"
	authctrl "bookmarket/app/echoServer/controller/auth"
	bookctrl "bookmarket/app/echoServer/controller/book"
	categoryctrl "bookmarket/app/echoServer/controller/category"
	ownerctrl "bookmarket/app/echoServer/controller/owner"
	rentalctrl "bookmarket/app/echoServer/controller/rental"
	walletctrl "bookmarket/app/echoServer/controller/wallet"
	"bookmarket/app/echoServer/validation"
	"bookmarket/config"
	bookrepo "bookmarket/repository/book"
	categoryrepo "bookmarket/repository/category"
	ownerrepo "bookmarket/repository/owner"
	rentalrepo "bookmarket/repository/rental"
	statsrepo "bookmarket/repository/stats"
	userrepo "bookmarket/repository/user"
	walletrepo "bookmarket/repository/wallet"
	authsvc "bookmarket/service/auth"
	booksvc "bookmarket/service/book"
	categorysvc "bookmarket/service/category"
	ownersvc "bookmarket/service/owner"
	rentalsvc "bookmarket/service/rental"
	statssvc "bookmarket/service/stats"
	walletsvc "bookmarket/service/wallet"
	"bookmarket/util/cache"
	"bookmarket/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// cache (nil when unavailable)
	rdb := cache.New(ctx)

	// repos
	ur := userrepo.New(db)
	or := ownerrepo.New(db)
	cr := categoryrepo.New(db)
	br := bookrepo.New(db)
	rr := rentalrepo.New(db)
	wr := walletrepo.New(db)
	sr := statsrepo.New(db)

	// services
	as := authsvc.New(db, ur, or, wr, cfg.JWTSecret, cfg.JWTTTLHours)
	bs := booksvc.New(br, cr)
	cs := categorysvc.New(cr)
	osvc := ownersvc.New(db, or, ur)
	rs := rentalsvc.New(db, rr, wr)
	ws := walletsvc.New(wr)
	ss := statssvc.New(sr, rdb, cfg.StatsCacheTTL, log)

	// background overdue sweep
	go rentalsvc.RunSweeper(ctx, rs, cfg.SweepInterval, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, Book: bs, Log: log}
	ownerC := &ownerctrl.Controller{Svc: osvc, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	walletC := &walletctrl.Controller{Svc: ws, Log: log}
	adminC := &adminctrl.Controller{Svc: ss, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Book:     bookC,
		Category: categoryC,
		Owner:    ownerC,
		Rental:   rentalC,
		Wallet:   walletC,
		Admin:    adminC,

		Users:     ur,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
