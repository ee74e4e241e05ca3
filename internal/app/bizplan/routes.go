// Package bizplan собирает HTTP API генератора бизнес-планов.
package bizplan

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/contactread"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/contacts"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/dashboard"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/deleteuser"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/planread"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/planremove"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/plans"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/userplans"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/userrole"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/admin/userstatus"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/auth/register"
	contacthandler "github.com/magabrotheeeer/bizplan/internal/http/handlers/contact"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/credits"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/health"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/packs"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/payment/free"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/payment/history"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/payment/verify"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/plan/generate"
	planlist "github.com/magabrotheeeer/bizplan/internal/http/handlers/plan/list"
	planremoveown "github.com/magabrotheeeer/bizplan/internal/http/handlers/plan/remove"
	plansave "github.com/magabrotheeeer/bizplan/internal/http/handlers/plan/save"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/profile/avatar"
	profileread "github.com/magabrotheeeer/bizplan/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/bizplan/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/bizplan/internal/http/middlewarectx"
	adminservice "github.com/magabrotheeeer/bizplan/internal/services/admin"
	authservice "github.com/magabrotheeeer/bizplan/internal/services/auth"
	contactservice "github.com/magabrotheeeer/bizplan/internal/services/contact"
	paymentservice "github.com/magabrotheeeer/bizplan/internal/services/payment"
	planservice "github.com/magabrotheeeer/bizplan/internal/services/plan"
	profileservice "github.com/magabrotheeeer/bizplan/internal/services/profile"
)

// Services зависимости, которые нужны маршрутам.
type Services struct {
	Auth    *authservice.Service
	Payment *paymentservice.Service
	Plan    *planservice.Service
	Contact *contactservice.Service
	Admin   *adminservice.Service
	Gate    *adminservice.Gate
	Profile *profileservice.Service
}

// RouteOptions параметры маршрутизации из конфига.
type RouteOptions struct {
	Currency       string
	PaystackPublic string
	AllowedOrigins []string
	GenerateRPS    float64
	GenerateBurst  int
	AvatarMaxSize  int64
	Health         map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, opts RouteOptions) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics,
		cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
			AllowCredentials: true,
		}).Handler,
	)

	generateLimiter := middlewarectx.NewUserRateLimiter(opts.GenerateRPS, opts.GenerateBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/packs", packs.New(logger, opts.Currency, opts.PaystackPublic).ServeHTTP)
		r.Post("/contact", contacthandler.New(logger, svc.Contact).ServeHTTP)

		// Оплата подтверждается и без входа: userId тогда берётся из тела
		r.With(middlewarectx.OptionalAuth(svc.Auth, logger)).
			Post("/payments/verify", verify.New(logger, svc.Payment).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))

			r.Get("/credits", credits.New(logger, svc.Payment).ServeHTTP)
			r.Post("/payments/free", free.New(logger, svc.Payment).ServeHTTP)
			r.Get("/payments/history", history.New(logger, svc.Payment).ServeHTTP)

			r.With(middlewarectx.RateLimitMiddleware(generateLimiter, logger)).
				Post("/plans/generate", generate.New(logger, svc.Plan).ServeHTTP)
			r.Post("/plans", plansave.New(logger, svc.Plan).ServeHTTP)
			r.Get("/plans", planlist.New(logger, svc.Plan).ServeHTTP)
			r.Delete("/plans/{id}", planremoveown.New(logger, svc.Plan).ServeHTTP)

			r.Get("/profile", profileread.New(logger, svc.Profile).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, svc.Profile).ServeHTTP)
			r.Put("/profile/avatar", avatar.New(logger, svc.Profile, opts.AvatarMaxSize).ServeHTTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RequireAdmin(svc.Gate, logger))

			r.Get("/dashboard", dashboard.New(logger, svc.Admin).ServeHTTP)
			r.Get("/users", users.New(logger, svc.Admin).ServeHTTP)
			r.Post("/users/delete", deleteuser.New(logger, svc.Admin).ServeHTTP)
			r.Post("/users/status", userstatus.New(logger, svc.Admin).ServeHTTP)
			r.Post("/users/role", userrole.New(logger, svc.Admin).ServeHTTP)
			r.Get("/users/{id}/plans", userplans.New(logger, svc.Admin).ServeHTTP)

			r.Get("/plans", plans.New(logger, svc.Plan).ServeHTTP)
			r.Get("/plans/{id}", planread.New(logger, svc.Plan).ServeHTTP)
			r.Delete("/plans/{id}", planremove.New(logger, svc.Plan).ServeHTTP)

			r.Get("/contacts", contacts.New(logger, svc.Contact).ServeHTTP)
			r.Post("/contacts/{id}/read", contactread.New(logger, svc.Contact).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, opts.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
