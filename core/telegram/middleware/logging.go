package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	tghelpers "github.com/frsammm1/FranklinReplyTGBot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// recentUpdates keeps a short-lived set of processed update IDs to avoid double logging.
var (
	recentMu     sync.Mutex
	recentUpdate = make(map[int]time.Time)
	keepFor      = 10 * time.Second
)

func alreadyLogged(updateID int) bool {
	now := time.Now()
	recentMu.Lock()
	defer recentMu.Unlock()
	for id, ts := range recentUpdate {
		if now.Sub(ts) > keepFor {
			delete(recentUpdate, id)
		}
	}
	if _, ok := recentUpdate[updateID]; ok {
		return true
	}
	recentUpdate[updateID] = now
	return false
}

// LoggerMiddleware logs a single receipt line per update and sets rid.
// It deduplicates by update_id to prevent double logging when middleware is applied on multiple branches.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()

		chatID, userID := int64(0), int64(0)
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		if user := c.Sender(); user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && !alreadyLogged(upd.ID) {
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received",
				receiptAttrs(c, rid)...)
		}

		return next(c)
	}
}

// receiptAttrs collects the identity and payload fields for the per-update
// receipt line. Free-form payloads are sanitized and truncated.
func receiptAttrs(c tele.Context, rid string) []slog.Attr {
	upd := c.Update()
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("rid", rid),
		slog.Int("update_id", upd.ID),
	}
	if chat := c.Chat(); chat != nil && chat.ID != 0 {
		attrs = append(attrs,
			slog.Int64("chat_id", chat.ID),
			slog.String("chat_type", string(chat.Type)),
		)
	}
	if user := c.Sender(); user != nil && user.ID != 0 {
		attrs = append(attrs, slog.Int64("user_id", user.ID))
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}

	switch {
	case upd.Callback != nil:
		key, payload := parseCallback(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}

func parseCallback(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	key, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(key), payload
}
