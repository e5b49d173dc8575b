package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/frsammm1/FranklinReplyTGBot/core/bootstrap"
	coreconfig "github.com/frsammm1/FranklinReplyTGBot/core/config"
	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	coretelegram "github.com/frsammm1/FranklinReplyTGBot/core/telegram"
)

// BuildFunc assembles the Telegram run options from loaded config and
// bootstrapped infrastructure.
type BuildFunc func(cfg *coreconfig.Config, res *bootstrap.Result) (coretelegram.RunOptions, error)

// Options describe how to locate configuration and assemble the bot runtime.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	Build BuildFunc
}

// Run loads configuration, bootstraps infrastructure, and starts the bot
// runtime until the process receives an interrupt or termination signal.
func Run(opts Options) error {
	if opts.Build == nil {
		return fmt.Errorf("cmd: Build is required")
	}

	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}
	if cfgPath == "" {
		return fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	res, err := bootstrap.Run(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer func() {
		if res.DB != nil {
			if err := res.DB.Close(); err != nil {
				logger.DB.Warn("database close error", slog.Any("error", err))
			}
		}
	}()
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts, err := opts.Build(cfg, res)
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}

	startedAt := time.Now()
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.L.With("component", "app").Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}

	prevStop := runOpts.OnStop
	runOpts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.L.With("component", "app").Info("shutting down...",
			slog.String("event", "shutdown"),
		)
		if prevStop != nil {
			return prevStop(ctx, rt)
		}
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return coretelegram.RunTelegram(ctx, runOpts)
}
