package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/idleclans-market/internal/market"
	"github.com/rickgao/idleclans-market/internal/monitor"
	"github.com/rickgao/idleclans-market/internal/poller"
)

// Controller is the part of *monitor.Monitor the server drives.
type Controller interface {
	Table(q market.Query) market.Table
	Suggest(query string, limit int) []string
	Cards() []monitor.Card
	Current() monitor.Update
	Pin(ctx context.Context, itemID int) error
	Unpin(ctx context.Context, itemID int) error
	SetOffer(ctx context.Context, itemID int, raw string) error
	ToggleMute() bool
	SetMuted(muted bool)
}

// Refresher is the part of *poller.Poller the server drives.
type Refresher interface {
	Trigger() bool
	Remaining() time.Duration
	Stats() poller.Stats
}

// Server serves the HTTP API and WebSocket feed.
type Server struct {
	mon       Controller
	refresher Refresher
	hub       *Hub
	logger    *slog.Logger
	started   time.Time
	mux       *http.ServeMux
}

// New creates a Server. refresher may be nil, in which case /api/refresh
// answers 503.
func New(mon Controller, refresher Refresher, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = NewHub(DefaultHubConfig(), logger)
	}
	s := &Server{
		mon:       mon,
		refresher: refresher,
		hub:       hub,
		logger:    logger,
		started:   time.Now(),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/market", s.handleMarket)
	s.mux.HandleFunc("GET /api/suggest", s.handleSuggest)
	s.mux.HandleFunc("GET /api/watchlist", s.handleWatchlist)
	s.mux.HandleFunc("POST /api/watchlist/{id}", s.handlePin)
	s.mux.HandleFunc("DELETE /api/watchlist/{id}", s.handleUnpin)
	s.mux.HandleFunc("PUT /api/watchlist/{id}/offer", s.handleOffer)
	s.mux.HandleFunc("POST /api/mute", s.handleMute)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
