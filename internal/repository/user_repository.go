package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

// UserRepository persists Telegram accounts and their ban state.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert records the user on interaction, refreshing profile fields and
// last_seen. The ban flag is never touched here.
func (r *UserRepository) Upsert(ctx context.Context, userID int64, username, firstName string) error {
	const query = `
INSERT INTO users (user_id, username, first_name)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET username = EXCLUDED.username,
    first_name = EXCLUDED.first_name,
    last_seen = now()`
	if _, err := r.db.ExecContext(ctx, query, userID, username, firstName); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// FindByID returns nil without error when the user is unknown.
func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	const query = `
SELECT user_id, username, first_name, is_banned, joined_at, last_seen
FROM users WHERE user_id = $1`
	var u models.User
	if err := r.db.GetContext(ctx, &u, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// SetBanned flips the ban flag and keeps ban_records in sync. Banning an
// unknown user creates the row first so the record always has a subject.
func (r *UserRepository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ban tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
INSERT INTO users (user_id, is_banned) VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET is_banned = EXCLUDED.is_banned`
	if _, err := tx.ExecContext(ctx, upsert, userID, banned); err != nil {
		return fmt.Errorf("update ban flag: %w", err)
	}

	if banned {
		const record = `
INSERT INTO ban_records (user_id) VALUES ($1)
ON CONFLICT (user_id) DO NOTHING`
		if _, err := tx.ExecContext(ctx, record, userID); err != nil {
			return fmt.Errorf("insert ban record: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ban_records WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete ban record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ban tx: %w", err)
	}
	return nil
}

// IsBanned reports false for unknown users.
func (r *UserRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT is_banned FROM users WHERE user_id = $1`
	var banned bool
	if err := r.db.GetContext(ctx, &banned, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select ban flag: %w", err)
	}
	return banned, nil
}

// ListBanned returns ban records newest first.
func (r *UserRepository) ListBanned(ctx context.Context) ([]models.BanRecord, error) {
	const query = `SELECT user_id, banned_at FROM ban_records ORDER BY banned_at DESC`
	var records []models.BanRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("select ban records: %w", err)
	}
	return records, nil
}

// ListRecipients returns the ids of all non-banned users.
func (r *UserRepository) ListRecipients(ctx context.Context) ([]int64, error) {
	const query = `SELECT user_id FROM users WHERE NOT is_banned ORDER BY user_id`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("select recipients: %w", err)
	}
	return ids, nil
}

// Stats aggregates total and banned user counts.
func (r *UserRepository) Stats(ctx context.Context) (models.Stats, error) {
	const query = `
SELECT COUNT(*) AS total,
       COUNT(*) FILTER (WHERE is_banned) AS banned
FROM users`
	var stats models.Stats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return models.Stats{}, fmt.Errorf("select user stats: %w", err)
	}
	return stats, nil
}
