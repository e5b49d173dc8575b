package middleware

import (
	"runtime/debug"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				attrs := []any{
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				}
				if rid, ok := c.Get("rid").(string); ok && rid != "" {
					attrs = append(attrs, slog.String("rid", rid))
				}
				logger.TG.Error("panic recovered", attrs...)
			}
		}()
		return next(c)
	}
}
