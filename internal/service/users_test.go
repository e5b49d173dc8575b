package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[int64]models.User
	bans  map[int64]time.Time
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users: make(map[int64]models.User),
		bans:  make(map[int64]time.Time),
	}
}

func (s *memUserStore) Upsert(_ context.Context, userID int64, username, firstName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = models.User{UserID: userID, JoinedAt: time.Now()}
	}
	u.Username = username
	u.FirstName = firstName
	u.LastSeen = time.Now()
	s.users[userID] = u
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *memUserStore) SetBanned(_ context.Context, userID int64, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = models.User{UserID: userID, JoinedAt: time.Now()}
	}
	u.IsBanned = banned
	s.users[userID] = u
	if banned {
		if _, exists := s.bans[userID]; !exists {
			s.bans[userID] = time.Now()
		}
	} else {
		delete(s.bans, userID)
	}
	return nil
}

func (s *memUserStore) IsBanned(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].IsBanned, nil
}

func (s *memUserStore) ListBanned(context.Context) ([]models.BanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BanRecord
	for id, at := range s.bans {
		out = append(out, models.BanRecord{UserID: id, BannedAt: at})
	}
	return out, nil
}

func (s *memUserStore) ListRecipients(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for id, u := range s.users {
		if !u.IsBanned {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memUserStore) Stats(context.Context) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.Stats{Total: len(s.users)}
	for _, u := range s.users {
		if u.IsBanned {
			stats.Banned++
		}
	}
	return stats, nil
}

func TestIsBannedUnknownUser(t *testing.T) {
	svc := NewUsers(newMemUserStore())

	banned, err := svc.IsBanned(context.Background(), 12345)
	if err != nil {
		t.Fatalf("is banned: %v", err)
	}
	if banned {
		t.Fatal("unknown user must not be banned")
	}
}

func TestBanUnbanRoundTrip(t *testing.T) {
	svc := NewUsers(newMemUserStore())
	ctx := context.Background()

	if err := svc.Ensure(ctx, 1, "alice", "Alice"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := svc.Ban(ctx, 1); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if err := svc.Ban(ctx, 1); err != nil {
		t.Fatalf("repeat ban must be a no-op: %v", err)
	}

	banned, err := svc.IsBanned(ctx, 1)
	if err != nil || !banned {
		t.Fatalf("expected banned, got %v %v", banned, err)
	}
	records, err := svc.ListBanned(ctx)
	if err != nil {
		t.Fatalf("list banned: %v", err)
	}
	if len(records) != 1 || records[0].UserID != 1 {
		t.Fatalf("unexpected ban records: %+v", records)
	}

	if err := svc.Unban(ctx, 1); err != nil {
		t.Fatalf("unban: %v", err)
	}
	banned, err = svc.IsBanned(ctx, 1)
	if err != nil || banned {
		t.Fatalf("expected unbanned, got %v %v", banned, err)
	}
	records, err = svc.ListBanned(ctx)
	if err != nil {
		t.Fatalf("list banned: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("ban record must be gone, got %+v", records)
	}
}

func TestBanUnknownUserCreatesSubject(t *testing.T) {
	svc := NewUsers(newMemUserStore())
	ctx := context.Background()

	if err := svc.Ban(ctx, 999); err != nil {
		t.Fatalf("ban unknown: %v", err)
	}
	banned, err := svc.IsBanned(ctx, 999)
	if err != nil || !banned {
		t.Fatalf("expected banned, got %v %v", banned, err)
	}
}

func TestRecipientsExcludeBanned(t *testing.T) {
	svc := NewUsers(newMemUserStore())
	ctx := context.Background()

	for id := int64(1); id <= 5; id++ {
		if err := svc.Ensure(ctx, id, "", "User"); err != nil {
			t.Fatalf("ensure: %v", err)
		}
	}
	if err := svc.Ban(ctx, 3); err != nil {
		t.Fatalf("ban: %v", err)
	}

	ids, err := svc.Recipients(ctx)
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("expected 4 recipients, got %d", len(ids))
	}
	for _, id := range ids {
		if id == 3 {
			t.Fatal("banned user must not be a recipient")
		}
	}
}

func TestStatsCounts(t *testing.T) {
	svc := NewUsers(newMemUserStore())
	ctx := context.Background()

	for id := int64(1); id <= 4; id++ {
		if err := svc.Ensure(ctx, id, "", ""); err != nil {
			t.Fatalf("ensure: %v", err)
		}
	}
	if err := svc.Ban(ctx, 2); err != nil {
		t.Fatalf("ban: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 4 || stats.Banned != 1 || stats.Active() != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
