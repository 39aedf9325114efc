package diarysync

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/diary-sync/internal/http/handlers/health"
	"github.com/magabrotheeeer/diary-sync/internal/http/handlers/jobs/status"
	"github.com/magabrotheeeer/diary-sync/internal/http/handlers/jobs/trigger"
	"github.com/magabrotheeeer/diary-sync/internal/http/middlewarectx"
	"github.com/magabrotheeeer/diary-sync/internal/lib/jwt"
)

// Scheduler часть планировщика, нужная управляющему API.
type Scheduler interface {
	trigger.Scheduler
	status.Scheduler
}

// Deps зависимости маршрутов.
type Deps struct {
	Version   string
	Tokens    middlewarectx.TokenParser
	Scheduler Scheduler
	Statuses  status.Store
	DB        health.Checker
	Cache     health.Checker
	RateLimit float64
	RateBurst int
}

// RegisterRoutes регистрирует маршруты управляющего API.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	checks := map[string]health.Checker{}
	if d.DB != nil {
		checks["postgres"] = d.DB
	}
	if d.Cache != nil {
		checks["redis"] = d.Cache
	}
	r.Get("/health", health.New(logger, d.Version, checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	limiter := rate.NewLimiter(rate.Limit(d.RateLimit), d.RateBurst)
	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(d.Tokens, logger))
		r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

		r.Get("/{name}", status.New(logger, d.Scheduler, d.Statuses).ServeHTTP)
		r.With(middlewarectx.RequireRole(jwt.RoleOperator, logger)).
			Post("/{name}", trigger.New(logger, d.Scheduler).ServeHTTP)
	})
}
