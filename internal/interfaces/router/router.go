package router

import (
	"errors"

	"stockex-backend/bootstrap"
	authsvc "stockex-backend/internal/application/auth"
	authhandler "stockex-backend/internal/interfaces/handlers/auth"
	healthhandler "stockex-backend/internal/interfaces/handlers/health"
	ipohandler "stockex-backend/internal/interfaces/handlers/ipos"
	notifhandler "stockex-backend/internal/interfaces/handlers/notifications"
	portfoliohandler "stockex-backend/internal/interfaces/handlers/portfolio"
	stockhandler "stockex-backend/internal/interfaces/handlers/stocks"
	tradehandler "stockex-backend/internal/interfaces/handlers/trading"
	txhandler "stockex-backend/internal/interfaces/handlers/transactions"
	userhandler "stockex-backend/internal/interfaces/handlers/user"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
)

// CreateApp builds the HTTP surface over the composed services. Sessions live in Redis,
// so REDIS_URL is required here.
func CreateApp(s *bootstrap.Services) (*fiber.App, error) {
	if s.Rdb == nil {
		return nil, errors.New("REDIS_URL is not set")
	}
	cfg := s.Config
	rdb := s.Rdb

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	hh := &healthhandler.Handlers{Rdb: rdb, Collector: s.Health, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: s.DB},
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)
	authGroup.Delete("/sessions", ah.LogoutAll)

	uh := &userhandler.Handlers{Service: s.Users, Rdb: rdb, Config: sessionCfg}
	app.Post("/api/v1/users/register", uh.Register)
	app.Get("/api/v1/users/me", middleware.RequireAuth(), uh.Me)

	sh := &stockhandler.Handlers{Service: s.Stocks}
	sg := app.Group("/api/v1/stocks", middleware.RequireAuth())
	sg.Get("/", middleware.AuthorizePermission(constants.ViewData), sh.List)
	sg.Get("/:id", middleware.AuthorizePermission(constants.ViewData), sh.Get)
	sg.Post("/", middleware.AuthorizePermission(constants.ManageStocks), sh.Create)

	ih := &ipohandler.Handlers{Rounds: s.Rounds, Allotment: s.Allotment}
	ig := app.Group("/api/v1/ipos", middleware.RequireAuth())
	ig.Get("/", middleware.AuthorizePermission(constants.ViewData), ih.List)
	ig.Post("/", middleware.AuthorizePermission(constants.ManageIpos), ih.Create)
	ig.Get("/applications/me", middleware.AuthorizePermission(constants.ViewData), ih.MyApplications)
	ig.Get("/:id", middleware.AuthorizePermission(constants.ViewData), ih.Get)
	ig.Post("/:id/apply", middleware.AuthorizePermission(constants.ApplyIpo), ih.Apply)
	ig.Get("/:id/applications", middleware.AuthorizePermission(constants.ManageIpos), ih.Applications)
	ig.Post("/:id/allot", middleware.AuthorizePermission(constants.RunAllotment), ih.Allot)

	ph := &portfoliohandler.Handlers{Service: s.Portfolio}
	app.Get("/api/v1/portfolio", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewData), ph.View)

	th := &tradehandler.Handlers{Service: s.Trading}
	tg := app.Group("/api/v1/trading", middleware.RequireAuth(), middleware.AuthorizePermission(constants.Trade))
	tg.Post("/buy", th.Buy)
	tg.Post("/sell", th.Sell)

	txh := &txhandler.Handlers{Service: s.Transactions}
	app.Get("/api/v1/transactions", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewData), txh.List)

	nh := &notifhandler.Handlers{Service: s.Notifications}
	ng := app.Group("/api/v1/notifications", middleware.RequireAuth())
	ng.Get("/", nh.List)
	ng.Patch("/:id/read", nh.MarkRead)

	return app, nil
}
