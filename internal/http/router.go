// Package httpapi assembles the HTTP surface: middleware chain, public auth
// endpoints, and the authenticated API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "taxsync/internal/auth/handler"
	authmiddleware "taxsync/internal/auth/middleware"
	clienthandler "taxsync/internal/client/handler"
	documenthandler "taxsync/internal/document/handler"
	taxyearhandler "taxsync/internal/taxyear/handler"
	validationhandler "taxsync/internal/validation/handler"
	"taxsync/pkg/platform/httputil"
	"taxsync/pkg/platform/middleware/metadata"
	"taxsync/pkg/platform/middleware/requestid"
	"taxsync/pkg/platform/middleware/requesttime"
)

// Registrar mounts a handler's routes on a router group.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Config carries everything the router needs.
type Config struct {
	Auth          *authhandler.Handler
	Authenticator authmiddleware.Authenticator
	Clients       *clienthandler.Handler
	TaxYears      *taxyearhandler.Handler
	Documents     *documenthandler.Handler
	Validations   *validationhandler.Handler
	Health        map[string]HealthChecker
}

// New builds the full router.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.Middleware)

	r.Get("/healthz", healthHandler(cfg.Health))
	r.Handle("/metrics", promhttp.Handler())

	cfg.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAuth(cfg.Authenticator))

		cfg.Auth.RegisterProtected(r)
		for _, registrar := range []Registrar{cfg.Clients, cfg.TaxYears, cfg.Documents, cfg.Validations} {
			registrar.Register(r)
		}
	})

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status[name] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.WriteJSON(w, code, status)
	}
}
