package service

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/google/uuid"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

// ErrKeyInvalid means the key does not exist or is no longer redeemable.
// It is an expected negative outcome, not a fault.
var ErrKeyInvalid = errors.New("license key invalid or already used")

// KeyStore is the persistence surface the key ledger needs.
type KeyStore interface {
	Insert(ctx context.Context, key *models.LicenseKey) error
	FindByKey(ctx context.Context, key string) (*models.LicenseKey, error)
	Claim(ctx context.Context, key string, redeemerID int64) (bool, error)
	MarkRevoked(ctx context.Context, key string) (bool, error)
	ListActive(ctx context.Context) ([]models.LicenseKey, error)
	ListRedeemed(ctx context.Context) ([]models.LicenseKey, error)
}

// Keys manages the license key lifecycle: issue, single-use redemption,
// revoke-and-reissue.
type Keys struct {
	store KeyStore
}

func NewKeys(store KeyStore) *Keys {
	return &Keys{store: store}
}

// Issue creates a fresh unused key bound to the purchaser.
func (s *Keys) Issue(ctx context.Context, purchaserID int64, purchaserName string) (models.LicenseKey, error) {
	key := models.LicenseKey{
		Key:           uuid.NewString(),
		PurchaserID:   purchaserID,
		PurchaserName: purchaserName,
		Status:        models.KeyStatusUnused,
	}
	if err := s.store.Insert(ctx, &key); err != nil {
		return models.LicenseKey{}, fmt.Errorf("issue key: %w", err)
	}
	logger.SVCKeys.Info("key issued",
		slog.String("event", "key.issue"),
		slog.String("key", key.Key),
		slog.Int64("purchaser_id", purchaserID),
	)
	return key, nil
}

// Redeem claims an unused key for the redeemer. Exactly one concurrent caller
// wins; every other outcome is ErrKeyInvalid.
func (s *Keys) Redeem(ctx context.Context, key string, redeemerID int64) (models.LicenseKey, error) {
	claimed, err := s.store.Claim(ctx, key, redeemerID)
	if err != nil {
		return models.LicenseKey{}, fmt.Errorf("redeem key: %w", err)
	}
	if !claimed {
		logger.SVCKeys.Info("redeem rejected",
			slog.String("event", "key.redeem.rejected"),
			slog.Int64("user_id", redeemerID),
		)
		return models.LicenseKey{}, ErrKeyInvalid
	}
	redeemed, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return models.LicenseKey{}, fmt.Errorf("redeem key reload: %w", err)
	}
	if redeemed == nil {
		return models.LicenseKey{}, ErrKeyInvalid
	}
	logger.SVCKeys.Info("key redeemed",
		slog.String("event", "key.redeem"),
		slog.String("key", key),
		slog.Int64("user_id", redeemerID),
	)
	return *redeemed, nil
}

// Revoke marks the key revoked regardless of its prior state and issues a
// replacement to the same purchaser.
func (s *Keys) Revoke(ctx context.Context, key string) (models.LicenseKey, error) {
	existing, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return models.LicenseKey{}, fmt.Errorf("revoke key lookup: %w", err)
	}
	if existing == nil {
		return models.LicenseKey{}, ErrKeyInvalid
	}
	if _, err := s.store.MarkRevoked(ctx, key); err != nil {
		return models.LicenseKey{}, fmt.Errorf("revoke key: %w", err)
	}
	logger.SVCKeys.Info("key revoked",
		slog.String("event", "key.revoke"),
		slog.String("key", key),
		slog.String("key_status", string(existing.Status)),
	)
	return s.Issue(ctx, existing.PurchaserID, existing.PurchaserName)
}

// ListActive returns non-revoked keys ordered by creation.
func (s *Keys) ListActive(ctx context.Context) ([]models.LicenseKey, error) {
	return s.store.ListActive(ctx)
}

// ListRedeemed returns used, non-revoked keys.
func (s *Keys) ListRedeemed(ctx context.Context) ([]models.LicenseKey, error) {
	return s.store.ListRedeemed(ctx)
}
