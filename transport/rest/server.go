package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger  *slog.Logger
	handler http.Handler
}

// New wires routes. metricsHandler is mounted on /metrics when not nil.
func New(logger *slog.Logger, uGame uGame, metricsHandler http.Handler) *Server {
	h := &handlers{
		logger: logger.With("component", "rest"),
		uGame:  uGame,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.ping)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Post("/sessions", h.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Delete("/", h.endSession)
		r.Post("/play", h.play)
		r.Post("/jump", h.jump)
	})

	return &Server{logger: logger, handler: r}
}

func (that *Server) Handler() http.Handler {
	return that.handler
}

// Start - starts HTTP server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
