package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

// KeyRepository persists license keys. Key rows are append-only identities;
// only status and redemption metadata mutate.
type KeyRepository struct {
	db *sqlx.DB
}

func NewKeyRepository(db *sqlx.DB) *KeyRepository {
	return &KeyRepository{db: db}
}

func (r *KeyRepository) Insert(ctx context.Context, key *models.LicenseKey) error {
	const query = `
INSERT INTO license_keys (key, purchaser_id, purchaser_name, status)
VALUES (:key, :purchaser_id, :purchaser_name, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("insert key: %w", err)
	}
	return nil
}

// FindByKey returns nil without error when the key does not exist.
func (r *KeyRepository) FindByKey(ctx context.Context, key string) (*models.LicenseKey, error) {
	const query = `
SELECT key, purchaser_id, purchaser_name, status, used_by, used_at, revoked_at, created_at
FROM license_keys WHERE key = $1`
	var k models.LicenseKey
	if err := r.db.GetContext(ctx, &k, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select key: %w", err)
	}
	return &k, nil
}

// Claim atomically transitions an unused key to used. The conditional update
// guarantees at most one caller observes claimed=true for a given key.
func (r *KeyRepository) Claim(ctx context.Context, key string, redeemerID int64) (bool, error) {
	const query = `
UPDATE license_keys
SET status = 'used', used_by = $2, used_at = now()
WHERE key = $1 AND status = 'unused'`
	res, err := r.db.ExecContext(ctx, query, key, redeemerID)
	if err != nil {
		return false, fmt.Errorf("claim key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim key rows: %w", err)
	}
	return affected == 1, nil
}

// MarkRevoked revokes the key regardless of its prior state and reports
// whether the key existed.
func (r *KeyRepository) MarkRevoked(ctx context.Context, key string) (bool, error) {
	const query = `
UPDATE license_keys
SET status = 'revoked', revoked_at = now()
WHERE key = $1`
	res, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("revoke key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke key rows: %w", err)
	}
	return affected == 1, nil
}

// ListActive returns non-revoked keys ordered by creation time.
func (r *KeyRepository) ListActive(ctx context.Context) ([]models.LicenseKey, error) {
	const query = `
SELECT key, purchaser_id, purchaser_name, status, used_by, used_at, revoked_at, created_at
FROM license_keys WHERE status <> 'revoked' ORDER BY created_at`
	var keys []models.LicenseKey
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("select active keys: %w", err)
	}
	return keys, nil
}

// ListRedeemed returns used, non-revoked keys ordered by redemption time.
func (r *KeyRepository) ListRedeemed(ctx context.Context) ([]models.LicenseKey, error) {
	const query = `
SELECT key, purchaser_id, purchaser_name, status, used_by, used_at, revoked_at, created_at
FROM license_keys WHERE status = 'used' ORDER BY used_at`
	var keys []models.LicenseKey
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("select redeemed keys: %w", err)
	}
	return keys, nil
}
