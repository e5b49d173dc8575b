package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	"github.com/frsammm1/FranklinReplyTGBot/internal/service"
)

// Server exposes health and aggregate statistics over HTTP for operators.
type Server struct {
	addr   string
	db     *sqlx.DB
	users  *service.Users
	keys   *service.Keys
	router *chi.Mux
}

func NewServer(addr string, db *sqlx.DB, users *service.Users, keys *service.Keys) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:   addr,
		db:     db,
		users:  users,
		keys:   keys,
		router: r,
	}
	r.Get("/healthz", s.handleHealthz)
	r.Get("/stats", s.handleStats)
	return s
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.OPS.Error("shutdown error", slog.String("err", err.Error()))
		}
	}()

	logger.OPS.Info("ops server listening",
		slog.String("event", "listen"),
		slog.String("addr", s.addr),
	)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ops listen: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	err := s.db.PingContext(r.Context())
	logger.OPS.Debug("healthz",
		slog.String("event", "healthz"),
		slog.String("status", logger.Status(err)),
	)
	if err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statsResponse struct {
	TotalUsers  int `json:"total_users"`
	BannedUsers int `json:"banned_users"`
	ActiveUsers int `json:"active_users"`
	ActiveKeys  int `json:"active_keys"`
	Redeemed    int `json:"redeemed_keys"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.users.Stats(ctx)
	if err != nil {
		logger.OPS.Error("stats query failed", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	active, err := s.keys.ListActive(ctx)
	if err != nil {
		logger.OPS.Error("keys query failed", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	redeemed, err := s.keys.ListRedeemed(ctx)
	if err != nil {
		logger.OPS.Error("keys query failed", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statsResponse{
		TotalUsers:  stats.Total,
		BannedUsers: stats.Banned,
		ActiveUsers: stats.Active(),
		ActiveKeys:  len(active),
		Redeemed:    len(redeemed),
	})
}
