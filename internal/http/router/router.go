package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Nyctonit/feature-flags-service/internal/http/handler"
	"github.com/Nyctonit/feature-flags-service/internal/http/middleware"
)

type Dependencies struct {
	Logger      *slog.Logger
	FlagHandler *handler.FeatureFlagHandler
	Health      *handler.HealthHandler
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(requestLogger(dep.Logger))

	r.Get("/health", dep.Health.Check)

	r.Route("/api/v1", func(r chi.Router) {
		if dep.RateLimiter != nil {
			r.Use(dep.RateLimiter.Middleware())
		}
		r.Route("/flags", func(r chi.Router) {
			r.Post("/", dep.FlagHandler.CreateFlag)
			r.Get("/", dep.FlagHandler.ListFlags)
			r.Get("/{name}", dep.FlagHandler.GetFlag)
			r.Put("/{name}", dep.FlagHandler.UpdateFlag)
			r.Delete("/{name}", dep.FlagHandler.DeleteFlag)
		})
		r.Route("/users/{user_id}/flags", func(r chi.Router) {
			r.Get("/", dep.FlagHandler.EvaluateAll)
			r.Get("/{flag_name}", dep.FlagHandler.EvaluateOne)
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
