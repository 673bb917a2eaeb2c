package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"filedepot/internal/depot"
)

// Server wires the HTTP surface: file and audit endpoints, the websocket
// audit stream, health and metrics.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server listening on addr. allowedOrigins configures CORS for
// the browser UI; an empty list allows every origin.
func New(addr string, service *depot.Service, hub *AuditHub, logger *slog.Logger, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	files := NewFilesHandler(service)
	audit := NewAuditHandler(service)

	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware())
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Route("/files", func(r chi.Router) {
		r.Get("/", files.List)
		r.Post("/", files.Create)
		r.Delete("/", files.Delete)
		r.Post("/move", files.Move)
	})
	r.Route("/audit", func(r chi.Router) {
		r.Get("/", audit.List)
		r.Post("/", audit.Append)
		r.Get("/stream", hub.HandleStream)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0, // websocket stream needs unbounded writes
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully with a
// 10 second drain window.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
