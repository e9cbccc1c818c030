package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/reactkit/internal/api/v1"
	"github.com/gosuda/reactkit/internal/api/ws"
	"github.com/gosuda/reactkit/internal/config"
	"github.com/gosuda/reactkit/internal/messenger"
	rkslack "github.com/gosuda/reactkit/internal/messenger/slack"
	"github.com/gosuda/reactkit/internal/server/middleware"
)

// EventBus is the event source the live feed and status report read from.
// *messenger.Broker satisfies this interface.
type EventBus interface {
	messenger.EventSource
	v1.SubscriberCounter
}

// Deps are the runtime components the HTTP surface reports on or feeds.
type Deps struct {
	Menus     v1.MenuLister
	Events    EventBus
	Platforms v1.PlatformLister
	Slack     *rkslack.Handler // nil when Slack is not configured
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds background
// middleware goroutines.
func New(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.AccessLog(log.Logger))
	router.Use(chimw.Recoverer)

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}).Handler)
		r.Use(middleware.RateLimit(ctx, 20, 40, middleware.ByRemoteAddr))
		r.Use(middleware.Auth(cfg.Server.OpsToken))

		apiConfig := huma.DefaultConfig("Reactkit API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, deps)
	})

	// Live event feed.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Server.OpsToken))
		registerWSRoutes(r, ws.NewHub(deps.Events))
	})

	// Slack webhook routes: real handler if configured, 501 placeholder otherwise.
	router.Route("/slack", func(r chi.Router) {
		if deps.Slack != nil {
			registerSlackRoutes(r, deps.Slack)
			log.Info().Msg("Slack events endpoint enabled")
		} else {
			r.Post("/events", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotImplemented)
			})
		}
	})

	// Health check.
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Handler returns the root router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
