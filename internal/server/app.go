package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/auth"
	"github.com/desertthunder/mixtape/internal/forms"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Server wires services, handlers and middleware into an HTTP server.
type Server struct {
	addr     string
	router   *BasicRouter
	sessions *auth.Manager
	logger   *log.Logger
}

// New builds the playlist web service.
func New(cfg shared.ServerConfig, store *repositories.Store, files storage.Storage, logger *log.Logger) (*Server, error) {
	sessions, err := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL.Duration)
	if err != nil {
		return nil, err
	}
	sessions.SetSecure(cfg.SecureCookies)

	decoder := forms.NewDecoder(sessions)
	playlists := services.NewPlaylistService(store, files, shared.WithLogger(logger, "service", "playlists"),
		services.WithLegacyUploadErrors(cfg.LegacyUploadErrors))
	accounts := services.NewAccountService(store, shared.WithLogger(logger, "service", "accounts"))

	router := NewBasicRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))
	if cfg.RateLimit > 0 {
		router.Use(NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware)
	}
	router.Use(Authenticate(sessions))

	router.Handler(NewAuthHandler(accounts, sessions, decoder, logger))
	router.Handler(NewPlaylistHandler(playlists, decoder, logger), RequireAuth)

	if local, ok := files.(*storage.LocalStorage); ok {
		router.Handle(http.MethodGet, "/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	}

	return &Server{addr: cfg.Addr(), router: router, sessions: sessions, logger: logger}, nil
}

// Sessions returns the session manager, which also verifies CSRF tokens.
func (s *Server) Sessions() *auth.Manager { return s.sessions }

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
