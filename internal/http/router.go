// Package httpapi assembles the public router: middleware chain, ops
// endpoints and the registration routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enroll/internal/platform/metrics"
	"enroll/internal/platform/middleware"
	"enroll/pkg/platform/httputil"
	"enroll/pkg/platform/middleware/metadata"
)

const requestTimeout = 30 * time.Second

// Registrar mounts a feature's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports a dependency's readiness.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger   *slog.Logger
	Metrics  *metrics.HTTP
	Gatherer prometheus.Gatherer
	// Health checks keyed by dependency name. All must pass for /healthz.
	Health map[string]HealthCheck
}

// NewRouter wires the middleware chain around the given feature routes.
func NewRouter(cfg Config, features ...Registrar) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.Get("/healthz", healthz(cfg.Health))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		for _, f := range features {
			f.Register(r)
		}
	})
	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]any{"healthy": healthy, "checks": status})
	}
}
