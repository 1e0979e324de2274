package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/chatdigest/internal/config"
	"github.com/set-night/chatdigest/internal/domain"
	"github.com/set-night/chatdigest/internal/middleware"
	"github.com/set-night/chatdigest/internal/repository"
	"github.com/set-night/chatdigest/internal/service"
	tg "github.com/set-night/chatdigest/internal/telegram"
)

// handleSummarize runs one summarization cycle: claim the chat's
// single worker slot, rebuild and filter the timeline, assemble the
// bounded request, call the external model, validate and render the
// reply. Every failure inside the cycle degrades to a visible error
// message; only archive-level failures clear the loaded archive.
func (h *Handler) handleSummarize(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	// Fixed post-completion cooldown; not a retry/backoff mechanism.
	if remaining := config.SummaryCooldown - time.Since(user.LastSummaryAt); remaining > 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("⏳ Please wait %d seconds before the next summary.", int(remaining.Seconds())+1),
		})
		return
	}

	// One summarization cycle per chat at a time.
	if err := h.queries.TrySetActiveRequest(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrActiveRequest) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "⏳ A summary is already being generated for this chat.",
			})
			return
		}
		slog.Error("claim active request", "error", err, "chat_id", chatID)
		return
	}
	defer h.queries.RemoveActiveRequest(context.WithoutCancel(ctx), chatID)

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
		// Unrecognized window is a configuration problem, surfaced as
		// an empty result rather than a crash.
		slog.Error("filter timeline", "error", err, "window", user.TimeWindow)
	}
	if len(messages) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🔍 No messages found in the selected time frame.",
		})
		return
	}

	model, err := h.openRouter.GetModel(ctx, user.SelectedModel)
	if err != nil {
		h.sendServiceError(ctx, b, chatID, err)
		return
	}

	budget := user.MediaBudget
	if !user.IncludeMedia {
		budget = 0
	}
	req := service.BuildSummaryRequest(messages, user.DetailLevel, budget)

	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	statusMsg, _ := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("⏳ Summarizing %d messages (%d attachments)...", req.MessageCount, req.MediaCount()),
	})

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	result, cost, err := h.summarizer.Summarize(reqCtx, a, req, model)

	// The cooldown applies whether the cycle succeeded or failed.
	h.queries.TouchLastSummary(context.WithoutCancel(ctx), user.ID)

	if err != nil {
		slog.Error("summarize", "error", err, "chat_id", chatID)
		h.opsLogger.LogError(err, "summarize")
		if statusMsg != nil {
			b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: statusMsg.ID})
		}
		h.sendServiceError(ctx, b, chatID, err)
		return
	}

	if statusMsg != nil {
		b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: statusMsg.ID})
	}

	h.renderSummary(ctx, b, chatID, a, result)

	if err := h.queries.CreateSummary(ctx, repository.SummaryRecord{
		ID:           uuid.New(),
		ChatID:       chatID,
		TimeWindow:   user.TimeWindow,
		DetailLevel:  user.DetailLevel,
		MessageCount: req.MessageCount,
		MediaCount:   req.MediaCount(),
		Model:        model.ID,
		Cost:         cost,
	}); err != nil {
		slog.Error("record summary", "error", err, "chat_id", chatID)
	}

	costF, _ := cost.Float64()
	h.opsLogger.LogSummary(user.TelegramID, user.TimeWindow.Label(), req.MessageCount, req.MediaCount(), costF)
}

// sendServiceError maps external-service failures onto the three
// canned explanations instead of leaking raw error strings.
func (h *Handler) sendServiceError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	var text string
	switch {
	case errors.Is(err, domain.ErrInvalidAPIKey):
		text = "🔑 The summarization service rejected the configured API key. Please contact the operator."
	case errors.Is(err, domain.ErrModelNotFound):
		text = "🤖 The configured model is not available. Please contact the operator."
	case errors.Is(err, context.DeadlineExceeded):
		text = "⏳ The summarization service took too long to respond. Please try again."
	default:
		text = "❌ The summarization service failed. Please try again later."
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

// renderSummary turns a validated SummaryResult into chat messages:
// one text message assembled from text and key_message parts, bullet
// points and sentiments, followed by one photo per media part.
func (h *Handler) renderSummary(ctx context.Context, b *bot.Bot, chatID int64, a *service.Archive, result *domain.SummaryResult) {
	var sb strings.Builder
	var mediaParts []domain.SummaryPart

	for _, part := range result.Parts {
		switch part.Type {
		case domain.PartText:
			sb.WriteString(part.Content)
			sb.WriteString("\n\n")
		case domain.PartKeyMessage:
			if part.Author != "" {
				fmt.Fprintf(&sb, "💬 *%s*: _%s_\n\n", part.Author, part.Content)
			} else {
				fmt.Fprintf(&sb, "💬 _%s_\n\n", part.Content)
			}
		case domain.PartMedia:
			mediaParts = append(mediaParts, part)
		}
	}

	if len(result.BulletPoints) > 0 {
		sb.WriteString("*Key points:*\n")
		for _, point := range result.BulletPoints {
			sb.WriteString("• ")
			sb.WriteString(point)
			sb.WriteString("\n")
		}
	}

	if len(result.Sentiments) > 0 {
		sb.WriteString("\n*Sentiment:* ")
		for i, bucket := range result.Sentiments {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s ×%d", bucket.Sentiment, bucket.Count)
		}
		sb.WriteString("\n")
	}

	if err := tg.SendLongMessage(ctx, b, chatID, strings.TrimSpace(sb.String())); err != nil {
		slog.Error("send summary", "error", err, "chat_id", chatID)
	}

	for _, part := range mediaParts {
		caption := part.Filename
		if part.Content != "" {
			caption = part.Content
		}
		preview, err := h.frames.Preview(ctx, a, part.Filename)
		if err != nil {
			slog.Warn("media part preview failed", "filename", part.Filename, "error", err)
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   fmt.Sprintf("🖼 %s — no preview available", part.Filename),
			})
			continue
		}
		if err := tg.SendPhotoBytes(ctx, b, chatID, part.Filename, preview, caption); err != nil {
			slog.Warn("send media part", "filename", part.Filename, "error", err)
		}
	}
}
