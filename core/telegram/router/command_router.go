package router

import (
	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	tg "github.com/frsammm1/FranklinReplyTGBot/core/telegram"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	OwnerID       int64
	OnOwnerReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	ownerOpts := middleware.OwnerOptions{
		OwnerID:  opts.OwnerID,
		OnReject: opts.OnOwnerReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.OwnerOnly {
			h = middleware.OwnerOnlyMiddleware(ownerOpts)(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
