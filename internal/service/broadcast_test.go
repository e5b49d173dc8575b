package service

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type staticRecipients struct {
	ids []int64
	err error
}

func (s staticRecipients) Recipients(context.Context) ([]int64, error) {
	return s.ids, s.err
}

type recordingSender struct {
	mu     sync.Mutex
	sent   []int64
	failOn map[int64]bool
}

func (s *recordingSender) SendMessage(_ context.Context, userID int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[userID] {
		return errors.New("blocked by peer")
	}
	s.sent = append(s.sent, userID)
	return nil
}

func TestBroadcastCountsFailuresWithoutAborting(t *testing.T) {
	ids := make([]int64, 20)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	sender := &recordingSender{failOn: map[int64]bool{4: true, 8: true, 16: true}}

	b := NewBroadcast(staticRecipients{ids: ids}, 4)
	b.Bind(sender)

	tally, err := b.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if tally.Sent != 17 {
		t.Fatalf("expected 17 sent, got %d", tally.Sent)
	}
	if tally.Failed != 3 {
		t.Fatalf("expected 3 failed, got %d", tally.Failed)
	}
	if len(sender.sent) != 17 {
		t.Fatalf("expected 17 deliveries, got %d", len(sender.sent))
	}
}

func TestBroadcastEmptyAudience(t *testing.T) {
	b := NewBroadcast(staticRecipients{}, 4)
	b.Bind(&recordingSender{})

	tally, err := b.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if tally.Sent != 0 || tally.Failed != 0 {
		t.Fatalf("expected zero tally, got %+v", tally)
	}
}

func TestBroadcastRecipientsError(t *testing.T) {
	b := NewBroadcast(staticRecipients{err: errors.New("db down")}, 4)
	b.Bind(&recordingSender{})

	if _, err := b.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected snapshot error")
	}
}

func TestBroadcastWithoutSender(t *testing.T) {
	b := NewBroadcast(staticRecipients{ids: []int64{1}}, 4)

	if _, err := b.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected wiring error when no sender is bound")
	}
}
