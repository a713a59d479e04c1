// Package server composes the HTTP router and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/auth"
	"github.com/axdbertuol/carford/config"
	_ "github.com/axdbertuol/carford/docs"
	"github.com/axdbertuol/carford/logging"
	"github.com/axdbertuol/carford/metrics"
)

const (
	healthTimeout   = 2 * time.Second
	shutdownTimeout = 30 * time.Second
)

// RouteRegistrar mounts a group of endpoints on a router.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps is everything the router needs.
type Deps struct {
	Config  *config.ServerConfig
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	DB      Pinger
	Tokens  auth.TokenVerifier

	Auth   RouteRegistrar
	Owners RouteRegistrar
	Cars   RouteRegistrar
}

// NewRouter builds the application router. /auth is public, /main requires a bearer token.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(d.Logger))
	r.Use(d.Metrics.Middleware)
	r.Use(apperror.Recoverer)
	r.Use(middleware.Timeout(d.Config.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusNotFound, apperror.ErrorResponse{Msg: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusMethodNotAllowed, apperror.ErrorResponse{Msg: "Method not allowed"})
	})

	r.Get("/healthz", handleHealth(d.DB))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/auth", d.Auth.RegisterRoutes)

	r.Route("/main", func(r chi.Router) {
		r.Use(auth.Middleware(d.Tokens))
		r.Route("/owners", d.Owners.RegisterRoutes)
		r.Route("/cars", d.Cars.RegisterRoutes)
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth godoc
// @Summary Liveness and database check
// @Tags Ops
// @Produce json
// @Success 200 {object} server.healthResponse
// @Failure 503 {object} server.healthResponse
// @Router /healthz [get]
func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			zap.L().Warn("health check failed", zap.Error(err))
			apperror.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		apperror.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

// New returns an http.Server for handler listening on addr.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
