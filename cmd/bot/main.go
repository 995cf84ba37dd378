package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"modwatch_bot/internal/bot"
	"modwatch_bot/internal/config"
	"modwatch_bot/internal/fetcher"
	"modwatch_bot/internal/render"
	"modwatch_bot/internal/scheduler"
	"modwatch_bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		log.Error("create data directory", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	store := storage.NewConfigStore(cfg.ConfigPath(), cfg.NotifyEnabled, log)
	states := storage.NewStateStore(cfg.StatePath(), log)

	clients := fetcher.NewClients(
		fetcher.NewModrinth(cfg.ModrinthAPIBase, cfg.FetchTimeout),
		fetcher.NewCurseForge(cfg.CurseForgeAPIBase, cfg.CurseForgeAPIKey, cfg.FetchTimeout),
	)

	// Platforms without a registered renderer fall back to text cards.
	renderers := render.Registry{}

	b, err := bot.New(cfg.TelegramBotToken, cfg, store, states, clients, renderers, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(store, b.Checker(), log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot")

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
