package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/chatdigest/internal/middleware"
	"github.com/set-night/chatdigest/internal/service"
	tg "github.com/set-night/chatdigest/internal/telegram"
)

// handleStats reports participant activity for the loaded archive over
// the user's selected time window, without calling the model.
func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	timeline, err := service.BuildTimeline(a)
	if err != nil {
		slog.Error("rebuild timeline", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not parse the stored archive. Please re-import it.",
		})
		return
	}

	messages, err := service.FilterByWindow(timeline.Messages, user.TimeWindow, time.Now())
	if err != nil {
		slog.Error("filter timeline", "error", err, "window", user.TimeWindow)
	}
	if len(messages) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🔍 No messages found in the selected time frame.",
		})
		return
	}

	var mediaCount int
	for _, msg := range messages {
		if msg.HasMedia() {
			mediaCount++
		}
	}

	topText, topMedia := service.Analyze(messages)

	summaries, err := h.queries.CountSummaries(ctx, chatID)
	if err != nil {
		slog.Error("count summaries", "error", err, "chat_id", chatID)
	}

	text := fmt.Sprintf(
		"📊 *Chat stats* (%s)\n\n"+
			"💬 Messages: *%d* (%d with media)\n"+
			"🖼 Archive media: *%d* images, *%d* videos\n"+
			"🗣 Most active (text): *%s*\n"+
			"📷 Most active (media): *%s*\n\n"+
			"📝 Summaries generated here: *%d*",
		user.TimeWindow.Label(),
		len(messages), mediaCount,
		len(timeline.ImageFiles), len(timeline.VideoFiles),
		topText, topMedia,
		summaries,
	)
	if err := tg.SendLongMessage(ctx, b, chatID, text); err != nil {
		slog.Error("send stats", "error", err, "chat_id", chatID)
	}
}
