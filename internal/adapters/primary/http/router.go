package http

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/repair-desk/internal/adapters/primary/http/middleware"
	"github.com/lorrc/repair-desk/internal/auth"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

// RouterConfig collects everything NewRouter mounts. Nil limiters disable
// rate limiting.
type RouterConfig struct {
	Logger          *slog.Logger
	TokenManager    *auth.TokenManager
	AllowedOrigins  []string
	TrustedProxies  []netip.Prefix
	RateLimiter     *mw.RateLimiter
	BulkRateLimiter *mw.RateLimitByKey
	Health          *HealthHandler
	Tickets         *TicketHandler
	Technicians     *TechnicianHandler
	Reports         *ReportHandler
	Presets         *PresetHandler
}

// NewRouter assembles the middleware stack and the /api/v1 routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RealIP(cfg.TrustedProxies))
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
			ExposedHeaders:   []string{"Content-Disposition", mw.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeAppError(w, apperrors.NewNotFoundError(apperrors.ErrNotFound, "Route not found"))
	})

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.JWTMiddleware(cfg.TokenManager))

		bulk := func(r chi.Router) chi.Router {
			if cfg.BulkRateLimiter != nil {
				return r.With(cfg.BulkRateLimiter.PerUser)
			}
			return r
		}

		r.Route("/tickets", func(r chi.Router) {
			cfg.Tickets.RegisterBulkRoutes(bulk(r))
			cfg.Tickets.RegisterRoutes(r)
		})

		r.Route("/technicians", cfg.Technicians.RegisterRoutes)

		r.Route("/reports", func(r chi.Router) {
			cfg.Reports.RegisterRoutes(r)
			cfg.Reports.RegisterExportRoutes(bulk(r))
			r.Route("/presets", cfg.Presets.RegisterRoutes)
		})
	})

	return r
}
