package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/chatdigest/internal/config"
	"github.com/set-night/chatdigest/internal/repository"
	"github.com/set-night/chatdigest/internal/service"
	"github.com/set-night/chatdigest/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	userService *service.UserService
	openRouter  *service.OpenRouterService
	summarizer  *service.SummarizerService
	frames      *service.FrameService
	queries     *repository.Queries
	opsLogger   *telegram.OpsLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot         *bot.Bot
	Cfg         *config.Config
	UserService *service.UserService
	OpenRouter  *service.OpenRouterService
	Summarizer  *service.SummarizerService
	Frames      *service.FrameService
	Queries     *repository.Queries
	OpsLogger   *telegram.OpsLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		userService: deps.UserService,
		openRouter:  deps.OpenRouter,
		summarizer:  deps.Summarizer,
		frames:      deps.Frames,
		queries:     deps.Queries,
		opsLogger:   deps.OpsLogger,
	}
}
