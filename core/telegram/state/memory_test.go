package state

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

const ownerID = int64(1000)

func TestBeginRejectsNonOwner(t *testing.T) {
	m := NewMemoryManager(ownerID)

	if err := m.Begin(2000, StepAwaitBanTarget); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if m.InProgress(2000) {
		t.Fatal("denied Begin must not open a session")
	}
}

func TestBeginReplacesExistingSession(t *testing.T) {
	m := NewMemoryManager(ownerID)

	if err := m.Begin(ownerID, StepAwaitPurchaserID); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.Begin(ownerID, StepAwaitBroadcast); err != nil {
		t.Fatalf("begin: %v", err)
	}

	sess, ok := m.Session(ownerID)
	if !ok {
		t.Fatal("expected open session")
	}
	if sess.Step != StepAwaitBroadcast {
		t.Fatalf("expected StepAwaitBroadcast, got %v", sess.Step)
	}
	if sess.PurchaserID != 0 {
		t.Fatalf("replacement must reset payload, got %d", sess.PurchaserID)
	}
}

func TestAdvanceCarriesPayload(t *testing.T) {
	m := NewMemoryManager(ownerID)

	if err := m.Begin(ownerID, StepAwaitPurchaserID); err != nil {
		t.Fatalf("begin: %v", err)
	}
	m.Advance(ownerID, Session{Step: StepAwaitPurchaserName, PurchaserID: 555})

	sess, ok := m.Session(ownerID)
	if !ok {
		t.Fatal("expected open session")
	}
	if sess.Step != StepAwaitPurchaserName || sess.PurchaserID != 555 {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestClearClosesSession(t *testing.T) {
	m := NewMemoryManager(ownerID)

	if err := m.Begin(ownerID, StepAwaitBackupLink); err != nil {
		t.Fatalf("begin: %v", err)
	}
	m.Clear(ownerID)

	if m.InProgress(ownerID) {
		t.Fatal("expected closed session")
	}
	if _, ok := m.Session(ownerID); ok {
		t.Fatal("Session must report no open session after Clear")
	}
}

func TestIdleSessionNotReported(t *testing.T) {
	m := NewMemoryManager(ownerID)
	m.Advance(ownerID, Session{Step: StepIdle})

	if m.InProgress(ownerID) {
		t.Fatal("idle session must not count as in progress")
	}
}

func TestTakeClosesSession(t *testing.T) {
	m := NewMemoryManager(ownerID)

	if err := m.Begin(ownerID, StepAwaitPurchaserID); err != nil {
		t.Fatalf("begin: %v", err)
	}
	m.Advance(ownerID, Session{Step: StepAwaitPurchaserName, PurchaserID: 555})

	sess, ok := m.Take(ownerID)
	if !ok {
		t.Fatal("expected to claim the open session")
	}
	if sess.Step != StepAwaitPurchaserName || sess.PurchaserID != 555 {
		t.Fatalf("unexpected claimed session: %+v", sess)
	}
	if m.InProgress(ownerID) {
		t.Fatal("Take must close the session")
	}
	if _, ok := m.Take(ownerID); ok {
		t.Fatal("second Take must find no session")
	}
}

func TestTakeClaimsSessionExactlyOnce(t *testing.T) {
	m := NewMemoryManager(ownerID)
	if err := m.Begin(ownerID, StepAwaitBroadcast); err != nil {
		t.Fatalf("begin: %v", err)
	}

	const claimers = 32
	var (
		wg   sync.WaitGroup
		wins atomic.Int64
	)
	start := make(chan struct{})
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := m.Take(ownerID); ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("expected exactly one claimer to win, got %d", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewMemoryManager(ownerID)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Begin(ownerID, StepAwaitBroadcast)
			m.Clear(ownerID)
		}()
		go func() {
			defer wg.Done()
			_, _ = m.Session(ownerID)
			m.InProgress(ownerID)
		}()
	}
	wg.Wait()
}
