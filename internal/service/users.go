package service

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

// UserStore is the persistence surface the access registry needs.
type UserStore interface {
	Upsert(ctx context.Context, userID int64, username, firstName string) error
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
	IsBanned(ctx context.Context, userID int64) (bool, error)
	ListBanned(ctx context.Context) ([]models.BanRecord, error)
	ListRecipients(ctx context.Context) ([]int64, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// Users is the access registry: user upserts on interaction plus ban state.
type Users struct {
	store UserStore
}

func NewUsers(store UserStore) *Users {
	return &Users{store: store}
}

// Ensure records the interacting user, refreshing profile and last-seen.
func (s *Users) Ensure(ctx context.Context, userID int64, username, firstName string) error {
	if err := s.store.Upsert(ctx, userID, username, firstName); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// Ban blocks the user. Banning an already banned user is a no-op.
func (s *Users) Ban(ctx context.Context, userID int64) error {
	if err := s.store.SetBanned(ctx, userID, true); err != nil {
		return fmt.Errorf("ban user: %w", err)
	}
	logger.SVCUsers.Info("user banned",
		slog.String("event", "user.ban"),
		slog.Int64("target_id", userID),
	)
	return nil
}

// Unban lifts a ban. Unbanning a user that is not banned is a no-op.
func (s *Users) Unban(ctx context.Context, userID int64) error {
	if err := s.store.SetBanned(ctx, userID, false); err != nil {
		return fmt.Errorf("unban user: %w", err)
	}
	logger.SVCUsers.Info("user unbanned",
		slog.String("event", "user.unban"),
		slog.Int64("target_id", userID),
	)
	return nil
}

// GetUserByTelegramID returns nil without error for unknown users.
func (s *Users) GetUserByTelegramID(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.FindByID(ctx, userID)
}

// IsBanned reports false for unknown users.
func (s *Users) IsBanned(ctx context.Context, userID int64) (bool, error) {
	return s.store.IsBanned(ctx, userID)
}

// ListBanned returns current ban records newest first.
func (s *Users) ListBanned(ctx context.Context) ([]models.BanRecord, error) {
	return s.store.ListBanned(ctx)
}

// Recipients snapshots all non-banned user ids.
func (s *Users) Recipients(ctx context.Context) ([]int64, error) {
	return s.store.ListRecipients(ctx)
}

// Stats aggregates user counts for the admin panel.
func (s *Users) Stats(ctx context.Context) (models.Stats, error) {
	return s.store.Stats(ctx)
}
