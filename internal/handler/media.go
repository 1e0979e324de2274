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
	"github.com/set-night/chatdigest/internal/middleware"
	"github.com/set-night/chatdigest/internal/service"
	tg "github.com/set-night/chatdigest/internal/telegram"
)

// handleMedia lists the archive's media entries with preview buttons.
// Callback data carries the entry index, not the filename: WhatsApp
// export names routinely exceed Telegram's 64-byte callback limit.
func (h *Handler) handleMedia(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.HasArchive() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📦 Send me an exported WhatsApp chat (.zip) first.",
		})
		return
	}

	a, err := service.OpenArchive(user.ArchivePath)
	if err != nil {
		slog.Warn("reopen archive", "error", err, "chat_id", chatID)
		h.userService.ClearArchive(ctx, user)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ The stored archive is no longer readable. Please re-import it.",
		})
		return
	}

	media := append(append([]string(nil), a.Images...), a.Videos...)
	if len(media) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🖼 This archive contains no media files.",
		})
		return
	}

	shown := media
	if len(shown) > config.MediaListLimit {
		shown = shown[:config.MediaListLimit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🖼 *Media in archive* (%d total", len(media))
	if len(shown) < len(media) {
		fmt.Fprintf(&sb, ", showing first %d", len(shown))
	}
	sb.WriteString(")\n\n")

	var rows [][]models.InlineKeyboardButton
	for i, name := range shown {
		kind := "📷"
		if service.IsVideoName(name) {
			kind = "🎬"
		}
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, kind, name)
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(fmt.Sprintf("%s Preview %d", kind, i+1), "preview_"+strconv.Itoa(i)),
		))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        sb.String(),
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

// handlePreview renders one media entry as a photo: images are scaled
// to a thumbnail, videos yield a sampled frame. Frame extraction
// failures degrade to a plain notice.
func (h *Handler) handlePreview(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, b, update)

	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.HasArchive() {
		return
	}
	chatID := update.CallbackQuery.Message.Message.Chat.ID

	idx, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, "preview_"))
	if err != nil || idx < 0 {
		return
	}

	a, err := service.OpenArchive(user.ArchivePath)
	if err != nil {
		slog.Warn("reopen archive", "error", err, "chat_id", chatID)
		return
	}

	media := append(append([]string(nil), a.Images...), a.Videos...)
	if idx >= len(media) {
		return
	}
	name := media[idx]

	preview, err := h.frames.Preview(ctx, a, name)
	if err != nil {
		slog.Warn("media preview failed", "filename", name, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("🖼 %s — no preview available", name),
		})
		return
	}

	if err := tg.SendPhotoBytes(ctx, b, chatID, name, preview, name); err != nil {
		slog.Warn("send preview", "filename", name, "error", err)
	}
}
