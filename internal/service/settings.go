package service

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

// SettingsStore is the persistence surface for the singleton settings row.
type SettingsStore interface {
	Get(ctx context.Context) (models.Settings, error)
	SetBackupLink(ctx context.Context, link *string) error
	SetPricingText(ctx context.Context, text *string) error
}

// Settings manages the two optional owner-configured values: the backup
// channel link and the pricing text.
type Settings struct {
	store SettingsStore
}

func NewSettings(store SettingsStore) *Settings {
	return &Settings{store: store}
}

func (s *Settings) Get(ctx context.Context) (models.Settings, error) {
	return s.store.Get(ctx)
}

// SetBackupLink stores the link; empty clears it.
func (s *Settings) SetBackupLink(ctx context.Context, link string) error {
	var value *string
	if link != "" {
		value = &link
	}
	if err := s.store.SetBackupLink(ctx, value); err != nil {
		return fmt.Errorf("set backup link: %w", err)
	}
	logger.SVCSettings.Info("backup link updated",
		slog.String("event", "settings.backup"),
		slog.Bool("cleared", value == nil),
	)
	return nil
}

// SetPricingText stores the pricing text; empty clears it.
func (s *Settings) SetPricingText(ctx context.Context, text string) error {
	var value *string
	if text != "" {
		value = &text
	}
	if err := s.store.SetPricingText(ctx, value); err != nil {
		return fmt.Errorf("set pricing text: %w", err)
	}
	logger.SVCSettings.Info("pricing text updated",
		slog.String("event", "settings.pricing"),
		slog.Bool("cleared", value == nil),
	)
	return nil
}
