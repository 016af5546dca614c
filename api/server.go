/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, the middleware stack and the routes. This is
  the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging, request-scoped logger in context
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend
  5. Messages:   Locale from ?lang= or Accept-Language

ROUTE GROUPS:
  /api/login            Public
  /api/*                Any logged-in employee (RequireSession)
  /api/admin/*          Administrators only (RequireAdmin)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/leave-registry/logctx"
	"go.uber.org/zap"
)

// RouterOptions are the deployment-specific router settings.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(h.messages.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Get("/me", h.Me)
			r.Get("/leave-kinds", h.ListLeaveKinds)
			r.Get("/quota", h.GetQuota)
			r.Get("/usage", h.GetUsage)

			// Leave routes
			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", h.ListLeaves)
				r.Post("/", h.RegisterLeave)
				r.Get("/mine", h.ListMyLeaves)
				r.Get("/cancellable", h.ListCancellable)
				r.Post("/{row}/cancel", h.CancelLeave)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Get("/pending", h.ListPending)
				r.Get("/approved", h.ListApproved)
				r.Get("/employees", h.ListEmployees)
				r.Post("/leaves/{row}/approve", h.ApproveLeave)
				r.Post("/leaves/{row}/reject", h.RejectLeave)
				r.Post("/leaves/{row}/cancel", h.AdminCancelLeave)
			})
		})
	})

	return r
}

// RequestLogger logs one line per request and stores a logger carrying the
// request id in the request context.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := middleware.GetReqID(r.Context())
			l := logger.With(zap.String("request_id", rid))

			ctx := logctx.WithRequestID(r.Context(), rid)
			ctx = logctx.WithLogger(ctx, l)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			l.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
