package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/state"
	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
	"github.com/frsammm1/FranklinReplyTGBot/internal/service"
)

const ownerID = int64(500)

type fakeLedger struct {
	issued []models.LicenseKey
	err    error
}

func (f *fakeLedger) Issue(_ context.Context, purchaserID int64, purchaserName string) (models.LicenseKey, error) {
	if f.err != nil {
		return models.LicenseKey{}, f.err
	}
	key := models.LicenseKey{
		Key:           fmt.Sprintf("key-%d", len(f.issued)+1),
		PurchaserID:   purchaserID,
		PurchaserName: purchaserName,
		Status:        models.KeyStatusUnused,
	}
	f.issued = append(f.issued, key)
	return key, nil
}

type fakeRegistry struct {
	banned []int64
	err    error
}

func (f *fakeRegistry) Ban(_ context.Context, userID int64) error {
	if f.err != nil {
		return f.err
	}
	f.banned = append(f.banned, userID)
	return nil
}

type fakeSettings struct {
	backup  *string
	pricing *string
}

func (f *fakeSettings) SetBackupLink(_ context.Context, link string) error {
	f.backup = &link
	return nil
}

func (f *fakeSettings) SetPricingText(_ context.Context, text string) error {
	f.pricing = &text
	return nil
}

type fakeBroadcaster struct {
	texts []string
	tally service.Tally
	err   error
}

func (f *fakeBroadcaster) Send(_ context.Context, text string) (service.Tally, error) {
	if f.err != nil {
		return service.Tally{}, f.err
	}
	f.texts = append(f.texts, text)
	return f.tally, nil
}

type fixture struct {
	sessions  state.Manager
	ledger    *fakeLedger
	registry  *fakeRegistry
	settings  *fakeSettings
	broadcast *fakeBroadcaster
	interp    *Interpreter
}

func newFixture() *fixture {
	f := &fixture{
		sessions:  state.NewMemoryManager(ownerID),
		ledger:    &fakeLedger{},
		registry:  &fakeRegistry{},
		settings:  &fakeSettings{},
		broadcast: &fakeBroadcaster{tally: service.Tally{Sent: 5, Failed: 1}},
	}
	f.interp = NewInterpreter(f.sessions, f.ledger, f.registry, f.settings, f.broadcast)
	return f
}

func (f *fixture) consume(t *testing.T, text string) Outcome {
	t.Helper()
	outcome, err := f.interp.Consume(context.Background(), ownerID, text)
	if err != nil {
		t.Fatalf("consume %q: %v", text, err)
	}
	return outcome
}

func TestConsumeWithoutSession(t *testing.T) {
	f := newFixture()

	outcome := f.consume(t, "hello")
	if outcome.Kind != OutcomeNone {
		t.Fatalf("expected OutcomeNone, got %v", outcome.Kind)
	}
}

func TestKeyGenerationFlow(t *testing.T) {
	f := newFixture()
	if err := f.sessions.Begin(ownerID, state.StepAwaitPurchaserID); err != nil {
		t.Fatalf("begin: %v", err)
	}

	outcome := f.consume(t, "not-a-number")
	if outcome.Kind != OutcomeInvalidID {
		t.Fatalf("expected OutcomeInvalidID, got %v", outcome.Kind)
	}
	sess, ok := f.sessions.Session(ownerID)
	if !ok || sess.Step != state.StepAwaitPurchaserID {
		t.Fatalf("invalid id must keep the step open, got %+v %v", sess, ok)
	}

	outcome = f.consume(t, "42")
	if outcome.Kind != OutcomePromptName {
		t.Fatalf("expected OutcomePromptName, got %v", outcome.Kind)
	}
	sess, ok = f.sessions.Session(ownerID)
	if !ok || sess.Step != state.StepAwaitPurchaserName || sess.PurchaserID != 42 {
		t.Fatalf("expected name step carrying id 42, got %+v", sess)
	}

	outcome = f.consume(t, "Alice")
	if outcome.Kind != OutcomeKeyIssued {
		t.Fatalf("expected OutcomeKeyIssued, got %v", outcome.Kind)
	}
	if outcome.Key.PurchaserID != 42 || outcome.Key.PurchaserName != "Alice" {
		t.Fatalf("unexpected issued key: %+v", outcome.Key)
	}
	if f.interp.InProgress(ownerID) {
		t.Fatal("completion must clear the session")
	}
}

func TestBanFlow(t *testing.T) {
	f := newFixture()
	if err := f.sessions.Begin(ownerID, state.StepAwaitBanTarget); err != nil {
		t.Fatalf("begin: %v", err)
	}

	outcome := f.consume(t, "???")
	if outcome.Kind != OutcomeInvalidID {
		t.Fatalf("expected OutcomeInvalidID, got %v", outcome.Kind)
	}
	if !f.interp.InProgress(ownerID) {
		t.Fatal("invalid id must keep the session open")
	}

	outcome = f.consume(t, "321")
	if outcome.Kind != OutcomeBanned || outcome.TargetID != 321 {
		t.Fatalf("expected ban of 321, got %+v", outcome)
	}
	if len(f.registry.banned) != 1 || f.registry.banned[0] != 321 {
		t.Fatalf("registry not called: %+v", f.registry.banned)
	}
	if f.interp.InProgress(ownerID) {
		t.Fatal("ban must clear the session")
	}
}

func TestSelfBanRetriesInPlace(t *testing.T) {
	f := newFixture()
	if err := f.sessions.Begin(ownerID, state.StepAwaitBanTarget); err != nil {
		t.Fatalf("begin: %v", err)
	}

	outcome := f.consume(t, fmt.Sprintf("%d", ownerID))
	if outcome.Kind != OutcomeSelfBan {
		t.Fatalf("expected OutcomeSelfBan, got %v", outcome.Kind)
	}
	if len(f.registry.banned) != 0 {
		t.Fatal("self-ban must not reach the registry")
	}
	if !f.interp.InProgress(ownerID) {
		t.Fatal("self-ban keeps the session open for another target")
	}

	outcome = f.consume(t, "321")
	if outcome.Kind != OutcomeBanned || outcome.TargetID != 321 {
		t.Fatalf("expected ban of 321 after retry, got %+v", outcome)
	}
}

func TestBackupAndPricingFlows(t *testing.T) {
	f := newFixture()

	if err := f.sessions.Begin(ownerID, state.StepAwaitBackupLink); err != nil {
		t.Fatalf("begin: %v", err)
	}
	outcome := f.consume(t, "https://t.me/backup")
	if outcome.Kind != OutcomeBackupSaved {
		t.Fatalf("expected OutcomeBackupSaved, got %v", outcome.Kind)
	}
	if f.settings.backup == nil || *f.settings.backup != "https://t.me/backup" {
		t.Fatalf("backup link not saved: %v", f.settings.backup)
	}

	if err := f.sessions.Begin(ownerID, state.StepAwaitPricingText); err != nil {
		t.Fatalf("begin: %v", err)
	}
	outcome = f.consume(t, "Basic: $10")
	if outcome.Kind != OutcomePricingSaved {
		t.Fatalf("expected OutcomePricingSaved, got %v", outcome.Kind)
	}
	if f.settings.pricing == nil || *f.settings.pricing != "Basic: $10" {
		t.Fatalf("pricing not saved: %v", f.settings.pricing)
	}
	if f.interp.InProgress(ownerID) {
		t.Fatal("settings steps clear the session")
	}
}

func TestBroadcastFlow(t *testing.T) {
	f := newFixture()
	if err := f.sessions.Begin(ownerID, state.StepAwaitBroadcast); err != nil {
		t.Fatalf("begin: %v", err)
	}

	outcome := f.consume(t, "big news")
	if outcome.Kind != OutcomeBroadcastDone {
		t.Fatalf("expected OutcomeBroadcastDone, got %v", outcome.Kind)
	}
	if outcome.Tally.Sent != 5 || outcome.Tally.Failed != 1 {
		t.Fatalf("unexpected tally: %+v", outcome.Tally)
	}
	if len(f.broadcast.texts) != 1 || f.broadcast.texts[0] != "big news" {
		t.Fatalf("broadcast not invoked: %+v", f.broadcast.texts)
	}
	if f.interp.InProgress(ownerID) {
		t.Fatal("broadcast clears the session")
	}
}

// gatedBroadcaster blocks inside Send until released, so a test can hold
// one delivery in flight while a second text arrives.
type gatedBroadcaster struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBroadcaster) Send(_ context.Context, _ string) (service.Tally, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.entered <- struct{}{}
	<-g.release
	return service.Tally{Sent: 1}, nil
}

func TestConcurrentConsumeBroadcastsOnce(t *testing.T) {
	gate := &gatedBroadcaster{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	sessions := state.NewMemoryManager(ownerID)
	interp := NewInterpreter(sessions, &fakeLedger{}, &fakeRegistry{}, &fakeSettings{}, gate)

	if err := sessions.Begin(ownerID, state.StepAwaitBroadcast); err != nil {
		t.Fatalf("begin: %v", err)
	}

	outcomes := make(chan Outcome, 2)
	for i := 0; i < 2; i++ {
		go func() {
			outcome, err := interp.Consume(context.Background(), ownerID, "big news")
			if err != nil {
				t.Errorf("consume: %v", err)
			}
			outcomes <- outcome
		}()
	}

	// Only the winner reaches the broadcaster; the loser finds no session
	// and returns immediately.
	<-gate.entered
	close(gate.release)

	first, second := <-outcomes, <-outcomes
	kinds := map[OutcomeKind]int{first.Kind: 0, second.Kind: 0}
	kinds[first.Kind]++
	kinds[second.Kind]++
	if kinds[OutcomeBroadcastDone] != 1 || kinds[OutcomeNone] != 1 {
		t.Fatalf("expected one broadcast and one no-op, got %v and %v", first.Kind, second.Kind)
	}
	if gate.calls != 1 {
		t.Fatalf("broadcaster called %d times, want 1", gate.calls)
	}
}

func TestFreeFormInputKeptVerbatim(t *testing.T) {
	f := newFixture()

	if err := f.sessions.Begin(ownerID, state.StepAwaitPurchaserID); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if outcome := f.consume(t, "  42  "); outcome.Kind != OutcomePromptName {
		t.Fatalf("padded id must still parse, got %v", outcome.Kind)
	}
	outcome := f.consume(t, " Alice Smith ")
	if outcome.Kind != OutcomeKeyIssued || outcome.Key.PurchaserName != " Alice Smith " {
		t.Fatalf("purchaser name must be stored as typed, got %+v", outcome.Key)
	}

	if err := f.sessions.Begin(ownerID, state.StepAwaitPricingText); err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.consume(t, "  Basic: $10  ")
	if f.settings.pricing == nil || *f.settings.pricing != "  Basic: $10  " {
		t.Fatalf("pricing must be stored as typed, got %v", f.settings.pricing)
	}

	if err := f.sessions.Begin(ownerID, state.StepAwaitBroadcast); err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.consume(t, "  hello everyone  ")
	if len(f.broadcast.texts) != 1 || f.broadcast.texts[0] != "  hello everyone  " {
		t.Fatalf("broadcast text must pass through as typed, got %+v", f.broadcast.texts)
	}
}

func TestBanAcceptsNegativeID(t *testing.T) {
	f := newFixture()
	if err := f.sessions.Begin(ownerID, state.StepAwaitBanTarget); err != nil {
		t.Fatalf("begin: %v", err)
	}

	outcome := f.consume(t, "-42")
	if outcome.Kind != OutcomeBanned || outcome.TargetID != -42 {
		t.Fatalf("expected ban of -42, got %+v", outcome)
	}
	if len(f.registry.banned) != 1 || f.registry.banned[0] != -42 {
		t.Fatalf("registry not called with -42: %+v", f.registry.banned)
	}
}

func TestServiceFailureClearsSession(t *testing.T) {
	f := newFixture()
	f.broadcast.err = errors.New("transport down")
	if err := f.sessions.Begin(ownerID, state.StepAwaitBroadcast); err != nil {
		t.Fatalf("begin: %v", err)
	}

	_, err := f.interp.Consume(context.Background(), ownerID, "big news")
	if err == nil {
		t.Fatal("expected error from failing broadcast")
	}
	if f.interp.InProgress(ownerID) {
		t.Fatal("failure must clear the session")
	}
}
