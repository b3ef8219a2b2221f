// Package bootstrap prepares shared infrastructure before the bot starts.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/huellitas-unexpo/rescuebot/core/config"
	coredatabase "github.com/huellitas-unexpo/rescuebot/core/database"
	"github.com/huellitas-unexpo/rescuebot/core/logger"
)

const defaultReadyTimeout = 30 * time.Second

// Options control the bootstrap pipeline. Zero hooks use the core implementations.
type Options struct {
	Config *coreconfig.Config
	// Migrations holds the *.up.sql/*.down.sql files applied on start.
	Migrations   fs.FS
	ReadyTimeout time.Duration

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error)
	WaitReady  func(context.Context, *sqlx.DB, time.Duration) error
	Migrate    func(coreconfig.DatabaseConfig, fs.FS) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	// DB is nil when no database is configured.
	DB *sqlx.DB
}

// Run initializes the logger and, when a database is configured, connects
// to it and applies migrations.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.LoggerInit == nil {
		opts.LoggerInit = logger.InitLogger
	}
	if opts.Connect == nil {
		opts.Connect = coredatabase.Connect
	}
	if opts.WaitReady == nil {
		opts.WaitReady = coredatabase.WaitReady
	}
	if opts.Migrate == nil {
		opts.Migrate = coredatabase.RunMigrations
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = defaultReadyTimeout
	}

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	dbCfg := opts.Config.Database
	if !dbCfg.Enabled() {
		logger.DB.LogAttrs(ctx, slog.LevelInfo, "db.disabled",
			slog.String("reason", "database.host not set"),
		)
		return &Result{}, nil
	}

	db, err := opts.Connect(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := opts.WaitReady(ctx, db, opts.ReadyTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: database not ready: %w", err)
	}
	if opts.Migrations != nil {
		if err := opts.Migrate(dbCfg, opts.Migrations); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}
	return &Result{DB: db}, nil
}
