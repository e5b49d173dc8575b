package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/frsammm1/FranklinReplyTGBot/core/bootstrap"
	"github.com/frsammm1/FranklinReplyTGBot/core/cmd"
	coreconfig "github.com/frsammm1/FranklinReplyTGBot/core/config"
	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	coretelegram "github.com/frsammm1/FranklinReplyTGBot/core/telegram"
	"github.com/frsammm1/FranklinReplyTGBot/internal/bot"
	"github.com/frsammm1/FranklinReplyTGBot/internal/ops"

	"log/slog"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		Build:             buildRunOptions,
	})
	if err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}

func buildRunOptions(cfg *coreconfig.Config, res *bootstrap.Result) (coretelegram.RunOptions, error) {
	app := bot.New(cfg.Telegram.OwnerID, res.DB)
	opts := app.RunOptions(cfg)

	if cfg.Ops.Listen != "" {
		opsSrv := ops.NewServer(cfg.Ops.Listen, res.DB, app.Users(), app.Keys())
		prevStart := opts.OnStart
		opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
			if prevStart != nil {
				if err := prevStart(ctx, rt); err != nil {
					return err
				}
			}
			go func() {
				if err := opsSrv.Run(ctx); err != nil {
					logger.OPS.Error("ops server stopped", slog.String("err", err.Error()))
				}
			}()
			return nil
		}
	}

	return opts, nil
}
