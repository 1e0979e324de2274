package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	chatdigestroot "github.com/set-night/chatdigest"
	"github.com/set-night/chatdigest/internal/config"
	"github.com/set-night/chatdigest/internal/handler"
	"github.com/set-night/chatdigest/internal/middleware"
	"github.com/set-night/chatdigest/internal/repository"
	"github.com/set-night/chatdigest/internal/service"
	"github.com/set-night/chatdigest/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(chatdigestroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	queries := repository.New(pool)

	// Initialize services
	userService := service.NewUserService(queries, cfg)
	openRouter := service.NewOpenRouterService(cfg.OpenRouterKey)
	frames := service.NewFrameService(cfg.FFmpegPath, cfg.FFprobePath)
	summarizer := service.NewSummarizerService(openRouter, frames)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(queries),
			middleware.UserLoader(userService),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			// Archive uploads arrive as document messages, not text
			if update.Message != nil && update.Message.Document != nil {
				h.HandleDocument(ctx, b, update)
				return
			}
		}),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true})
	}

	// Initialize ops logger
	opsLogger := telegram.NewOpsLogger(b, cfg.LogTelegramChatID)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:         b,
		Cfg:         cfg,
		UserService: userService,
		OpenRouter:  openRouter,
		Summarizer:  summarizer,
		Frames:      frames,
		Queries:     queries,
		OpsLogger:   opsLogger,
	})

	// Register all handlers
	h.Register()

	// Start stale request cleanup goroutine
	go func() {
		ticker := time.NewTicker(config.StaleRequestCleanup)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := queries.CleanupStaleRequests(context.Background(), config.StaleRequestAge); err != nil {
					slog.Error("cleanup stale requests", "error", err)
				}
			}
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
