package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/summarize", bot.MatchTypePrefix, h.handleSummarize)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, h.handleStats)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypePrefix, h.handleSettings)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/media", bot.MatchTypePrefix, h.handleMedia)

	// Settings callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_window_", bot.MatchTypePrefix, h.handleSetWindow)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_detail_", bot.MatchTypePrefix, h.handleSetDetail)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_budget_", bot.MatchTypePrefix, h.handleSetBudget)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "toggle_media", bot.MatchTypeExact, h.handleToggleMedia)

	// Media preview callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "preview_", bot.MatchTypePrefix, h.handlePreview)
}

// answerCallback acknowledges a callback query so the client stops
// showing the spinner.
func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}
