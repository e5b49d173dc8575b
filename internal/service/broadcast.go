package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
)

// Tally reports per-recipient delivery results of one broadcast.
type Tally struct {
	Sent   int
	Failed int
}

// BroadcastSender delivers one message to one recipient.
type BroadcastSender interface {
	SendMessage(ctx context.Context, userID int64, text string) error
}

// RecipientSource snapshots the ids eligible for a broadcast.
type RecipientSource interface {
	Recipients(ctx context.Context) ([]int64, error)
}

// Broadcast fans a message out to every non-banned user. Each recipient gets
// exactly one delivery attempt; a failure is counted and never aborts or
// cancels sibling sends.
type Broadcast struct {
	recipients RecipientSource
	workers    int

	mu     sync.RWMutex
	sender BroadcastSender
}

func NewBroadcast(recipients RecipientSource, workers int) *Broadcast {
	if workers <= 0 {
		workers = 8
	}
	return &Broadcast{recipients: recipients, workers: workers}
}

// Bind attaches the outbound transport. The bot instance only exists once the
// runtime is up, so wiring happens in the start hook.
func (b *Broadcast) Bind(sender BroadcastSender) {
	b.mu.Lock()
	b.sender = sender
	b.mu.Unlock()
}

func (b *Broadcast) currentSender() BroadcastSender {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sender
}

// Send snapshots eligible recipients and delivers the text through a bounded
// worker pool. The returned error covers only snapshot or wiring failures;
// individual delivery errors land in the tally.
func (b *Broadcast) Send(ctx context.Context, text string) (Tally, error) {
	sender := b.currentSender()
	if sender == nil {
		return Tally{}, errors.New("broadcast: no sender bound")
	}

	ids, err := b.recipients.Recipients(ctx)
	if err != nil {
		return Tally{}, fmt.Errorf("broadcast recipients: %w", err)
	}

	started := time.Now()
	var sent, failed atomic.Int64

	jobs := make(chan int64)
	var wg sync.WaitGroup
	workers := b.workers
	if workers > len(ids) {
		workers = len(ids)
	}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := sender.SendMessage(ctx, id, text); err != nil {
					failed.Add(1)
					logger.SVCBroadcast.Debug("delivery failed",
						slog.String("event", "broadcast.delivery"),
						slog.Int64("user_id", id),
						slog.String("err", err.Error()),
					)
					continue
				}
				sent.Add(1)
			}
		}()
	}
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	tally := Tally{Sent: int(sent.Load()), Failed: int(failed.Load())}
	logger.SVCBroadcast.Info("broadcast finished",
		slog.String("event", "broadcast.done"),
		slog.Int("recipients", len(ids)),
		slog.Int("sent", tally.Sent),
		slog.Int("failed", tally.Failed),
		slog.Duration("duration", logger.RoundMS(time.Since(started))),
	)
	return tally, nil
}
