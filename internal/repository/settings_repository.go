package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

const settingsRowID = "config"

// SettingsRepository persists the singleton settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row, seeding it if migrations have not. A missing
// row is not an error.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	const query = `SELECT id, backup_link, pricing_text FROM settings WHERE id = $1`
	var s models.Settings
	if err := r.db.GetContext(ctx, &s, query, settingsRowID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Settings{ID: settingsRowID}, nil
		}
		return models.Settings{}, fmt.Errorf("select settings: %w", err)
	}
	return s, nil
}

// SetBackupLink stores the backup channel link; nil clears it.
func (r *SettingsRepository) SetBackupLink(ctx context.Context, link *string) error {
	const query = `
INSERT INTO settings (id, backup_link) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET backup_link = EXCLUDED.backup_link`
	if _, err := r.db.ExecContext(ctx, query, settingsRowID, link); err != nil {
		return fmt.Errorf("update backup link: %w", err)
	}
	return nil
}

// SetPricingText stores the pricing text; nil clears it.
func (r *SettingsRepository) SetPricingText(ctx context.Context, text *string) error {
	const query = `
INSERT INTO settings (id, pricing_text) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET pricing_text = EXCLUDED.pricing_text`
	if _, err := r.db.ExecContext(ctx, query, settingsRowID, text); err != nil {
		return fmt.Errorf("update pricing text: %w", err)
	}
	return nil
}
