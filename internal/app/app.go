// Package app wires the rescue bot: configuration, storage, Telegram routes
// and the ops server.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/huellitas-unexpo/rescuebot/core/bootstrap"
	"github.com/huellitas-unexpo/rescuebot/core/cmd"
	coreconfig "github.com/huellitas-unexpo/rescuebot/core/config"
	"github.com/huellitas-unexpo/rescuebot/core/logger"
	"github.com/huellitas-unexpo/rescuebot/core/metrics"
	coretelegram "github.com/huellitas-unexpo/rescuebot/core/telegram"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/commands"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/router"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/sender"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/state"
	"github.com/huellitas-unexpo/rescuebot/internal/archive"
	"github.com/huellitas-unexpo/rescuebot/internal/bot"
	"github.com/huellitas-unexpo/rescuebot/internal/report"
	"github.com/huellitas-unexpo/rescuebot/migrations"
)

const rateLimitedText = "⏳ Please slow down a little and send your answer again."

// App holds the long-lived components of the bot.
type App struct {
	cfg      *coreconfig.Config
	db       *sqlx.DB
	store    *state.MemoryStore[report.Session]
	recorder *metrics.Recorder
	archive  *archive.Repository

	stopOps context.CancelFunc
	opsDone chan error
}

// Bootstrap prepares logging and storage, then builds the App.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (cmd.TelegramApp, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg, Migrations: migrations.FS})
	if err != nil {
		return nil, err
	}
	return New(cfg, res.DB), nil
}

// New builds the App. db may be nil, which disables the archive.
func New(cfg *coreconfig.Config, db *sqlx.DB) *App {
	a := &App{
		cfg:      cfg,
		db:       db,
		store:    state.NewMemoryStore[report.Session](),
		recorder: metrics.NewRecorder(),
	}
	if db != nil {
		a.archive = archive.NewRepository(db)
	}
	a.recorder.TrackSessions(a.store.Len)
	return a
}

// TelegramRunOptions builds the bot, the dispatcher and the routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	tb, err := coretelegram.NewBot(a.cfg)
	if err != nil {
		return coretelegram.RunOptions{}, err
	}
	return a.runOptions(tb)
}

func (a *App) runOptions(tb *tele.Bot) (coretelegram.RunOptions, error) {
	queue := sender.NewQueue(sender.Options{MaxRetries: 2, OnFailure: a.recorder.SendFailed})

	opts := bot.Options{
		Store:       a.store,
		Messenger:   bot.NewTelegramMessenger(tb, queue, a.cfg.Telegram.GroupChatID),
		GroupChatID: a.cfg.Telegram.GroupChatID,
		Recorder:    a.recorder,
	}
	if a.archive != nil {
		opts.Archive = a.archive
	}
	dispatcher, err := bot.NewDispatcher(opts)
	if err != nil {
		queue.Close()
		return coretelegram.RunOptions{}, err
	}

	reg := coretelegram.NewRegistry()
	for _, def := range bot.Commands() {
		reg.RegisterCommand(def.Name, commands.Command{
			Handler:     dispatcher.Handler(def.Name),
			Description: def.Description,
			Aliases:     def.Aliases,
		})
	}

	routes := append(router.CommandRoutes(reg, a.recorder),
		router.MessageRoutes(reg, dispatcher.Handler(""), a.recorder)...)

	return coretelegram.RunOptions{
		Config:   a.cfg,
		Bot:      tb,
		Registry: reg,
		Queue:    queue,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, coretelegram.MiddlewareHooks{
			OnLimited:     func(c tele.Context) error { return c.Send(rateLimitedText) },
			OnDropped:     a.recorder.Dropped,
			ObserveUpdate: a.recorder.ObserveUpdate,
		}),
		Routes:  routes,
		OnStart: a.start,
		OnStop:  a.stop,
	}, nil
}

func (a *App) start(ctx context.Context, _ coretelegram.Runtime) error {
	if a.cfg.Ops.Listen == "" {
		return nil
	}
	checks := map[string]metrics.Check{}
	if a.archive != nil {
		checks["archive"] = a.archive.Ping
	}
	srv := metrics.NewServer(a.cfg.Ops.Listen, a.recorder, checks)

	opsCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stopOps = cancel
	a.opsDone = make(chan error, 1)
	go func() {
		err := srv.Run(opsCtx)
		if err != nil {
			logger.Error(ctx, "ops", "ops.failed", slog.String("err", err.Error()))
		}
		a.opsDone <- err
	}()
	return nil
}

func (a *App) stop(ctx context.Context, _ coretelegram.Runtime) error {
	var errs []error
	if a.stopOps != nil {
		a.stopOps()
		errs = append(errs, <-a.opsDone)
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if n := a.store.Len(); n > 0 {
		logger.Info(ctx, "app", "sessions.dropped", slog.Int("active", n))
	}
	return errors.Join(errs...)
}
