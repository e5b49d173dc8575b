package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/frsammm1/FranklinReplyTGBot/core/config"
	coredatabase "github.com/frsammm1/FranklinReplyTGBot/core/database"
	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
)

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, connects to the database, and applies migrations.
func Run(cfg *coreconfig.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.Init(logger.Settings{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		KeysOrder:   cfg.Logging.KeysOrder,
		DebugSample: cfg.Logging.DebugSample,
		Dir:         cfg.Logging.Dir,
		BotFile:     cfg.Logging.BotFile,
		Profile:     cfg.Logging.Profile,
	}); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	db, err := coredatabase.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if err := coredatabase.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	return &Result{DB: db}, nil
}
