package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"log/slog"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/state"
	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
	"github.com/frsammm1/FranklinReplyTGBot/internal/service"
)

// OutcomeKind enumerates what a consumed text produced.
type OutcomeKind int

const (
	// OutcomeNone means the actor had no open session; the text is ignored.
	OutcomeNone OutcomeKind = iota
	// OutcomePromptName acknowledges the purchaser id and asks for a name.
	OutcomePromptName
	// OutcomeInvalidID signals a non-numeric id; the session stays open on
	// the same step so the actor can retry in place.
	OutcomeInvalidID
	// OutcomeSelfBan rejects the owner banning themselves; the session stays
	// open so another target can be supplied.
	OutcomeSelfBan
	// OutcomeKeyIssued completes key generation; Key carries the result.
	OutcomeKeyIssued
	// OutcomeBanned completes a ban; TargetID carries the subject.
	OutcomeBanned
	// OutcomeBackupSaved completes the backup link update.
	OutcomeBackupSaved
	// OutcomePricingSaved completes the pricing text update.
	OutcomePricingSaved
	// OutcomeBroadcastDone completes a broadcast; Tally carries the counts.
	OutcomeBroadcastDone
)

// Outcome is the typed result of consuming one text message against an open
// session. The transport layer renders it; tests assert on it directly.
type Outcome struct {
	Kind     OutcomeKind
	Key      models.LicenseKey
	TargetID int64
	Tally    service.Tally
}

type keyLedger interface {
	Issue(ctx context.Context, purchaserID int64, purchaserName string) (models.LicenseKey, error)
}

type accessRegistry interface {
	Ban(ctx context.Context, userID int64) error
}

type settingsWriter interface {
	SetBackupLink(ctx context.Context, link string) error
	SetPricingText(ctx context.Context, text string) error
}

type broadcaster interface {
	Send(ctx context.Context, text string) (service.Tally, error)
}

// Interpreter advances open admin sessions with incoming free text.
type Interpreter struct {
	sessions  state.Manager
	keys      keyLedger
	users     accessRegistry
	settings  settingsWriter
	broadcast broadcaster
}

func NewInterpreter(sessions state.Manager, keys keyLedger, users accessRegistry, settings settingsWriter, broadcast broadcaster) *Interpreter {
	return &Interpreter{
		sessions:  sessions,
		keys:      keys,
		users:     users,
		settings:  settings,
		broadcast: broadcast,
	}
}

// Consume maps (actor, open step, text) to a typed outcome. The session is
// claimed atomically up front, so when two messages from the same actor race,
// exactly one of them consumes the step; the loser sees no session. Invalid
// numeric input reopens the same step (retry in place). Service failures
// leave the session closed and surface as errors. Free-form payloads (name,
// link, pricing, broadcast) pass through verbatim; only the numeric steps
// trim whitespace before parsing.
func (i *Interpreter) Consume(ctx context.Context, actorID int64, text string) (Outcome, error) {
	sess, ok := i.sessions.Take(actorID)
	if !ok {
		return Outcome{Kind: OutcomeNone}, nil
	}

	logger.TG.Debug("session input",
		slog.String("event", "fsm.consume"),
		slog.Int64("user_id", actorID),
		slog.String("state", sess.Step.String()),
	)

	switch sess.Step {
	case state.StepAwaitPurchaserID:
		id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			i.sessions.Advance(actorID, sess)
			return Outcome{Kind: OutcomeInvalidID}, nil
		}
		i.sessions.Advance(actorID, state.Session{Step: state.StepAwaitPurchaserName, PurchaserID: id})
		return Outcome{Kind: OutcomePromptName, TargetID: id}, nil

	case state.StepAwaitPurchaserName:
		key, err := i.keys.Issue(ctx, sess.PurchaserID, text)
		if err != nil {
			return Outcome{}, fmt.Errorf("issue key for %d: %w", sess.PurchaserID, err)
		}
		return Outcome{Kind: OutcomeKeyIssued, Key: key}, nil

	case state.StepAwaitBanTarget:
		id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			i.sessions.Advance(actorID, sess)
			return Outcome{Kind: OutcomeInvalidID}, nil
		}
		if id == actorID {
			i.sessions.Advance(actorID, sess)
			return Outcome{Kind: OutcomeSelfBan}, nil
		}
		if err := i.users.Ban(ctx, id); err != nil {
			return Outcome{}, fmt.Errorf("ban %d: %w", id, err)
		}
		return Outcome{Kind: OutcomeBanned, TargetID: id}, nil

	case state.StepAwaitBackupLink:
		if err := i.settings.SetBackupLink(ctx, text); err != nil {
			return Outcome{}, fmt.Errorf("save backup link: %w", err)
		}
		return Outcome{Kind: OutcomeBackupSaved}, nil

	case state.StepAwaitPricingText:
		if err := i.settings.SetPricingText(ctx, text); err != nil {
			return Outcome{}, fmt.Errorf("save pricing text: %w", err)
		}
		return Outcome{Kind: OutcomePricingSaved}, nil

	case state.StepAwaitBroadcast:
		// the session is already closed here, so a second broadcast text
		// arriving mid-send cannot trigger a second fan-out
		tally, err := i.broadcast.Send(ctx, text)
		if err != nil {
			return Outcome{}, fmt.Errorf("broadcast: %w", err)
		}
		return Outcome{Kind: OutcomeBroadcastDone, Tally: tally}, nil
	}

	return Outcome{Kind: OutcomeNone}, nil
}

// InProgress reports whether the actor has an open session.
func (i *Interpreter) InProgress(actorID int64) bool {
	return i.sessions.InProgress(actorID)
}
