package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

type memKeyStore struct {
	mu   sync.Mutex
	keys map[string]models.LicenseKey
}

func newMemKeyStore() *memKeyStore {
	return &memKeyStore{keys: make(map[string]models.LicenseKey)}
}

func (s *memKeyStore) Insert(_ context.Context, key *models.LicenseKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key.CreatedAt = time.Now()
	s.keys[key.Key] = *key
	return nil
}

func (s *memKeyStore) FindByKey(_ context.Context, key string) (*models.LicenseKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (s *memKeyStore) Claim(_ context.Context, key string, redeemerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[key]
	if !ok || k.Status != models.KeyStatusUnused {
		return false, nil
	}
	now := time.Now()
	k.Status = models.KeyStatusUsed
	k.UsedBy = &redeemerID
	k.UsedAt = &now
	s.keys[key] = k
	return true, nil
}

func (s *memKeyStore) MarkRevoked(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[key]
	if !ok {
		return false, nil
	}
	now := time.Now()
	k.Status = models.KeyStatusRevoked
	k.RevokedAt = &now
	s.keys[key] = k
	return true, nil
}

func (s *memKeyStore) list(filter func(models.LicenseKey) bool) []models.LicenseKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LicenseKey
	for _, k := range s.keys {
		if filter(k) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memKeyStore) ListActive(context.Context) ([]models.LicenseKey, error) {
	return s.list(func(k models.LicenseKey) bool { return k.Status != models.KeyStatusRevoked }), nil
}

func (s *memKeyStore) ListRedeemed(context.Context) ([]models.LicenseKey, error) {
	return s.list(func(k models.LicenseKey) bool { return k.Status == models.KeyStatusUsed }), nil
}

func TestIssueCreatesUnusedKey(t *testing.T) {
	svc := NewKeys(newMemKeyStore())

	key, err := svc.Issue(context.Background(), 42, "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if key.Key == "" {
		t.Fatal("expected non-empty key")
	}
	if key.Status != models.KeyStatusUnused {
		t.Fatalf("expected unused status, got %s", key.Status)
	}
	if key.PurchaserID != 42 || key.PurchaserName != "Alice" {
		t.Fatalf("unexpected purchaser: %+v", key)
	}
}

func TestRedeemUnknownKey(t *testing.T) {
	svc := NewKeys(newMemKeyStore())

	if _, err := svc.Redeem(context.Background(), "no-such-key", 7); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("expected ErrKeyInvalid, got %v", err)
	}
}

func TestRedeemRecordsRedeemer(t *testing.T) {
	svc := NewKeys(newMemKeyStore())
	ctx := context.Background()

	issued, err := svc.Issue(ctx, 42, "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	redeemed, err := svc.Redeem(ctx, issued.Key, 777)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if redeemed.Status != models.KeyStatusUsed {
		t.Fatalf("expected used status, got %s", redeemed.Status)
	}
	if redeemed.UsedBy == nil || *redeemed.UsedBy != 777 {
		t.Fatalf("expected used_by 777, got %+v", redeemed.UsedBy)
	}
	if redeemed.UsedAt == nil {
		t.Fatal("expected used_at set")
	}
}

func TestRedeemExactlyOnceUnderContention(t *testing.T) {
	svc := NewKeys(newMemKeyStore())
	ctx := context.Background()

	issued, err := svc.Issue(ctx, 42, "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const racers = 32
	var wg sync.WaitGroup
	results := make(chan error, racers)
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(id int64) {
			defer wg.Done()
			_, err := svc.Redeem(ctx, issued.Key, id)
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrKeyInvalid):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if losses != racers-1 {
		t.Fatalf("expected %d losers, got %d", racers-1, losses)
	}
}

func TestRedeemTwiceFails(t *testing.T) {
	svc := NewKeys(newMemKeyStore())
	ctx := context.Background()

	issued, err := svc.Issue(ctx, 1, "Bob")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Redeem(ctx, issued.Key, 10); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if _, err := svc.Redeem(ctx, issued.Key, 11); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("expected ErrKeyInvalid on second redeem, got %v", err)
	}
}

func TestRevokeReissuesToSamePurchaser(t *testing.T) {
	store := newMemKeyStore()
	svc := NewKeys(store)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, 42, "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	replacement, err := svc.Revoke(ctx, issued.Key)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if replacement.Key == issued.Key {
		t.Fatal("replacement must be a fresh key")
	}
	if replacement.PurchaserID != 42 || replacement.PurchaserName != "Alice" {
		t.Fatalf("replacement must keep purchaser, got %+v", replacement)
	}
	if replacement.Status != models.KeyStatusUnused {
		t.Fatalf("replacement must start unused, got %s", replacement.Status)
	}

	old, err := store.FindByKey(ctx, issued.Key)
	if err != nil || old == nil {
		t.Fatalf("find old key: %v", err)
	}
	if old.Status != models.KeyStatusRevoked {
		t.Fatalf("old key must be revoked, got %s", old.Status)
	}

	if _, err := svc.Redeem(ctx, issued.Key, 9); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("revoked key must not redeem, got %v", err)
	}
}

func TestRevokeUsedKeyStillReissues(t *testing.T) {
	svc := NewKeys(newMemKeyStore())
	ctx := context.Background()

	issued, err := svc.Issue(ctx, 5, "Carol")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Redeem(ctx, issued.Key, 99); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	replacement, err := svc.Revoke(ctx, issued.Key)
	if err != nil {
		t.Fatalf("revoke used key: %v", err)
	}
	if replacement.Status != models.KeyStatusUnused {
		t.Fatalf("replacement must start unused, got %s", replacement.Status)
	}

	redeemed, err := svc.ListRedeemed(ctx)
	if err != nil {
		t.Fatalf("list redeemed: %v", err)
	}
	if len(redeemed) != 0 {
		t.Fatalf("revoked-used key must leave the redeemed list, got %d", len(redeemed))
	}
}

func TestRevokeUnknownKey(t *testing.T) {
	svc := NewKeys(newMemKeyStore())

	if _, err := svc.Revoke(context.Background(), "missing"); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("expected ErrKeyInvalid, got %v", err)
	}
}

func TestListActiveExcludesRevoked(t *testing.T) {
	svc := NewKeys(newMemKeyStore())
	ctx := context.Background()

	first, err := svc.Issue(ctx, 1, "A")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Issue(ctx, 2, "B"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Revoke(ctx, first.Key); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	// B plus the replacement issued for A.
	if len(active) != 2 {
		t.Fatalf("expected 2 active keys, got %d", len(active))
	}
	for _, k := range active {
		if k.Key == first.Key {
			t.Fatal("revoked key must not be listed as active")
		}
	}
}
