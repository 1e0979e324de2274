package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/chatdigest/internal/config"
	"github.com/set-night/chatdigest/internal/domain"
	"github.com/set-night/chatdigest/internal/middleware"
	tg "github.com/set-night/chatdigest/internal/telegram"
)

func (h *Handler) handleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	text, markup := h.renderSettings(user)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: markup,
	})
}

func (h *Handler) renderSettings(user *domain.User) (string, *models.InlineKeyboardMarkup) {
	mediaStatus := "❌ Off"
	if user.IncludeMedia {
		mediaStatus = "✅ On"
	}

	archive := "none"
	if user.HasArchive() {
		archive = user.ArchiveName
	}

	text := fmt.Sprintf(
		"⚙️ *Settings*\n\n"+
			"📦 Archive: `%s`\n"+
			"🕐 Period: *%s*\n"+
			"📝 Detail: *%s*\n"+
			"🖼 Media summaries: *%s* (max %d attachments)\n",
		archive,
		user.TimeWindow.Label(),
		user.DetailLevel,
		mediaStatus,
		user.MediaBudget,
	)

	windowButton := func(w domain.TimeWindow) models.InlineKeyboardButton {
		label := w.Label()
		if w == user.TimeWindow {
			label = "• " + label
		}
		return tg.InlineButton(label, "set_window_"+string(w))
	}
	detailButton := func(d domain.DetailLevel) models.InlineKeyboardButton {
		label := string(d)
		if d == user.DetailLevel {
			label = "• " + label
		}
		return tg.InlineButton(label, "set_detail_"+string(d))
	}

	var budgetRow []models.InlineKeyboardButton
	for _, budget := range config.MediaBudgetOptions {
		label := strconv.Itoa(budget)
		if budget == user.MediaBudget {
			label = "• " + label
		}
		budgetRow = append(budgetRow, tg.InlineButton(label, "set_budget_"+strconv.Itoa(budget)))
	}

	markup := tg.InlineKeyboard(
		tg.ButtonRow(windowButton(domain.WindowDay), windowButton(domain.WindowWeek)),
		tg.ButtonRow(windowButton(domain.WindowMonth), windowButton(domain.WindowAll)),
		tg.ButtonRow(detailButton(domain.DetailBrief), detailButton(domain.DetailStandard), detailButton(domain.DetailVerbose)),
		tg.ButtonRow(tg.InlineButton(fmt.Sprintf("🖼 Media: %s", mediaStatus), "toggle_media")),
		budgetRow,
	)
	return text, markup
}

func (h *Handler) handleSetWindow(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.updateSetting(ctx, b, update, func(user *domain.User, value string) bool {
		window := domain.TimeWindow(value)
		if !window.Valid() {
			return false
		}
		user.TimeWindow = window
		return true
	}, "set_window_")
}

func (h *Handler) handleSetDetail(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.updateSetting(ctx, b, update, func(user *domain.User, value string) bool {
		detail := domain.DetailLevel(value)
		if !detail.Valid() {
			return false
		}
		user.DetailLevel = detail
		return true
	}, "set_detail_")
}

func (h *Handler) handleSetBudget(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.updateSetting(ctx, b, update, func(user *domain.User, value string) bool {
		budget, err := strconv.Atoi(value)
		if err != nil || budget <= 0 {
			return false
		}
		user.MediaBudget = budget
		return true
	}, "set_budget_")
}

func (h *Handler) handleToggleMedia(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.updateSetting(ctx, b, update, func(user *domain.User, value string) bool {
		user.IncludeMedia = !user.IncludeMedia
		return true
	}, "toggle_media")
}

// updateSetting applies one settings mutation from a callback and
// re-renders the settings message in place.
func (h *Handler) updateSetting(ctx context.Context, b *bot.Bot, update *models.Update, apply func(*domain.User, string) bool, prefix string) {
	h.answerCallback(ctx, b, update)

	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	value := strings.TrimPrefix(update.CallbackQuery.Data, prefix)
	if !apply(user, value) {
		slog.Warn("rejected settings value", "data", update.CallbackQuery.Data)
		return
	}

	if err := h.userService.UpdateSettings(ctx, user); err != nil {
		slog.Error("update settings", "error", err)
		return
	}

	msg := update.CallbackQuery.Message.Message
	text, markup := h.renderSettings(user)
	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: markup,
	})
}
