package bot

import (
	"context"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/frsammm1/FranklinReplyTGBot/core/config"
	coretelegram "github.com/frsammm1/FranklinReplyTGBot/core/telegram"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/commands"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/helpers"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/router"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/state"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/ui"
	"github.com/frsammm1/FranklinReplyTGBot/internal/flow"
	"github.com/frsammm1/FranklinReplyTGBot/internal/repository"
	"github.com/frsammm1/FranklinReplyTGBot/internal/service"
)

// App wires repositories, services, and handlers into a runnable bot.
type App struct {
	ownerID   int64
	sessions  state.Manager
	users     *service.Users
	keys      *service.Keys
	settings  *service.Settings
	broadcast *service.Broadcast
	flow      *flow.Interpreter
}

// New builds the application graph on top of an open database handle.
func New(ownerID int64, db *sqlx.DB) *App {
	users := service.NewUsers(repository.NewUserRepository(db))
	keys := service.NewKeys(repository.NewKeyRepository(db))
	settings := service.NewSettings(repository.NewSettingsRepository(db))
	broadcast := service.NewBroadcast(users, 0)
	sessions := state.NewMemoryManager(ownerID)

	return &App{
		ownerID:   ownerID,
		sessions:  sessions,
		users:     users,
		keys:      keys,
		settings:  settings,
		broadcast: broadcast,
		flow:      flow.NewInterpreter(sessions, keys, users, settings, broadcast),
	}
}

// Users exposes the access registry for auxiliary surfaces.
func (a *App) Users() *service.Users { return a.users }

// Keys exposes the license key ledger for auxiliary surfaces.
func (a *App) Keys() *service.Keys { return a.keys }

// Registry assembles all commands and callbacks.
func (a *App) Registry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Show the help message",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.handleAdmin,
		Description: "Open the admin panel",
		OwnerOnly:   true,
	})
	reg.RegisterCommand("/redeem", commands.Command{
		Handler:     a.handleRedeem,
		Description: "Redeem a license key",
		Hidden:      true,
	})

	_ = reg.RegisterCallback(cbHelp, a.cbHelp)
	_ = reg.RegisterCallback(cbShowPricing, a.cbShowPricing)
	_ = reg.RegisterCallback(cbGetClone, a.cbGetClone)

	_ = reg.RegisterCallback(cbAdminStats, a.ownerCallback(a.cbAdminStats))
	_ = reg.RegisterCallback(cbAdminGenKey, a.ownerCallback(a.cbAdminGenKey))
	_ = reg.RegisterCallback(cbAdminKeys, a.ownerCallback(a.cbAdminKeys))
	_ = reg.RegisterCallback(cbAdminClones, a.ownerCallback(a.cbAdminClones))
	_ = reg.RegisterCallback(cbAdminBan, a.ownerCallback(a.cbAdminBan))
	_ = reg.RegisterCallback(cbAdminUnban, a.ownerCallback(a.cbAdminUnban))
	_ = reg.RegisterCallback(cbAdminBackup, a.ownerCallback(a.cbAdminBackup))
	_ = reg.RegisterCallback(cbAdminNoBackup, a.ownerCallback(a.cbAdminNoBackup))
	_ = reg.RegisterCallback(cbAdminPricing, a.ownerCallback(a.cbAdminPricing))
	_ = reg.RegisterCallback(cbAdminNoPricing, a.ownerCallback(a.cbAdminNoPricing))
	_ = reg.RegisterCallback(cbAdminBroadcast, a.ownerCallback(a.cbAdminBroadcast))
	_ = reg.RegisterCallback(cbAdminBack, a.ownerCallback(a.cbAdminBack))
	_ = reg.RegisterCallback(cbUnban, a.ownerCallback(a.cbUnban))
	_ = reg.RegisterCallback(cbRevoke, a.ownerCallback(a.cbRevoke))

	return reg
}

// RunOptions assembles the full runtime configuration for RunTelegram.
func (a *App) RunOptions(cfg *coreconfig.Config) coretelegram.RunOptions {
	reg := a.Registry()

	var fallbacks ui.FallbackProvider = a
	reg.SetCallbackNotFound(fallbacks.UnknownCallback())

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		OwnerID:       a.ownerID,
		OnOwnerReject: a.denyOwnerOnly,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fallbacks.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownText:     fallbacks.UnknownText(),
		UnknownDocument: fallbacks.UnknownDocument(),
	})...)

	return coretelegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.broadcast.Bind(newTeleSender(rt.Bot))
			return nil
		},
	}
}

func (a *App) denyOwnerOnly(c tele.Context) error {
	return helpers.SendText(c, "❌ You don't have permission to access admin panel.")
}
