package handler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/chatdigest/internal/middleware"
	"github.com/set-night/chatdigest/internal/service"
	tg "github.com/set-night/chatdigest/internal/telegram"
)

// HandleDocument ingests an uploaded chat export. Invoked from the
// default handler in main since document uploads are not text updates.
func (h *Handler) HandleDocument(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Document == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	msg := update.Message
	doc := msg.Document
	chatID := msg.Chat.ID

	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".zip") {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📦 Please send a WhatsApp chat export as a *.zip* file.",
			ParseMode: models.ParseModeMarkdown,
		})
		return
	}

	if doc.FileSize > h.cfg.MaxArchiveBytes() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Archive too large. The limit is %d MB.", h.cfg.MaxArchiveMB),
		})
		return
	}

	statusMsg, _ := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "⏳ Downloading and parsing the archive...",
	})

	data, err := tg.DownloadFile(ctx, b, doc.FileID, h.cfg.MaxArchiveBytes())
	if err != nil {
		slog.Error("download archive", "error", err, "chat_id", chatID)
		h.editStatus(ctx, b, chatID, statusMsg, "❌ Could not download the file from Telegram. Please try again.")
		return
	}

	if err := os.MkdirAll(h.cfg.ArchiveDir, 0o755); err != nil {
		slog.Error("create archive dir", "error", err)
		h.editStatus(ctx, b, chatID, statusMsg, "❌ Could not store the archive.")
		return
	}

	path := filepath.Join(h.cfg.ArchiveDir, fmt.Sprintf("%d.zip", chatID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		slog.Error("write archive", "error", err, "path", path)
		h.editStatus(ctx, b, chatID, statusMsg, "❌ Could not store the archive.")
		return
	}

	// Archive-level failures are fatal to this load: the previous
	// archive reference is cleared and the user must re-import.
	a, err := service.OpenArchive(path)
	if err != nil {
		slog.Warn("open archive", "error", err, "chat_id", chatID)
		h.userService.ClearArchive(ctx, user)
		os.Remove(path)
		h.editStatus(ctx, b, chatID, statusMsg,
			"❌ That doesn't look like a WhatsApp export: no chat transcript (.txt) found inside the zip.")
		return
	}

	timeline, err := service.BuildTimeline(a)
	if err != nil || len(timeline.Messages) == 0 {
		slog.Warn("parse archive", "error", err, "chat_id", chatID)
		h.userService.ClearArchive(ctx, user)
		h.editStatus(ctx, b, chatID, statusMsg,
			"⚠️ No messages could be parsed from the transcript. The export format may be unsupported.")
		return
	}

	if err := h.userService.SetArchive(ctx, user, path, doc.FileName); err != nil {
		slog.Error("set archive", "error", err, "chat_id", chatID)
		h.editStatus(ctx, b, chatID, statusMsg, "❌ Could not save the archive reference.")
		return
	}

	topText, topMedia := service.Analyze(timeline.Messages)
	report := fmt.Sprintf(
		"✅ Parsed *%d* messages, *%d* images, *%d* videos.\n\n"+
			"🗣 Most active (text): *%s*\n"+
			"📷 Most active (media): *%s*\n\n"+
			"Use /summarize to generate a summary, or /settings to adjust it first.",
		len(timeline.Messages), len(timeline.ImageFiles), len(timeline.VideoFiles),
		topText, topMedia,
	)
	h.editStatus(ctx, b, chatID, statusMsg, report)
}

func (h *Handler) editStatus(ctx context.Context, b *bot.Bot, chatID int64, statusMsg *models.Message, text string) {
	if statusMsg == nil {
		tg.SendLongMessage(ctx, b, chatID, text)
		return
	}
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: statusMsg.ID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		// Markdown may fail on odd author names; retry plain.
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: statusMsg.ID,
			Text:      text,
		})
	}
}
